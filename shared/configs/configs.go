package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid-config")
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		GinMode        string   `yaml:"gin_mode"`
	} `yaml:"server"`

	Postgres struct {
		URL          string        `yaml:"url"`
		QueryTimeout time.Duration `yaml:"query_timeout"`
	} `yaml:"postgres"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Game struct {
		MaxPlayers    int           `yaml:"max_players"`
		MaxRounds     int           `yaml:"max_rounds"`
		DrawTime      int           `yaml:"draw_time"`
		WordsCount    int           `yaml:"words_count"`
		PickDuration  time.Duration `yaml:"pick_duration"`
		TurnEndDelay  time.Duration `yaml:"turn_end_delay"`
		GameOverDelay time.Duration `yaml:"game_over_delay"`
		WordsFile     string        `yaml:"words_file"`
		ChatRate      float64       `yaml:"chat_rate"`
		ChatBurst     int           `yaml:"chat_burst"`
		PingInterval  time.Duration `yaml:"ping_interval"`
	} `yaml:"game"`
}

func Default() *Config {
	c := &Config{}
	c.Server.Port = 5000
	c.Server.GinMode = "release"

	c.Postgres.QueryTimeout = 2 * time.Second

	c.Log.Level = "info"

	c.Game.MaxPlayers = 12
	c.Game.MaxRounds = 3
	c.Game.DrawTime = 80
	c.Game.WordsCount = 3
	c.Game.PickDuration = 15 * time.Second
	c.Game.TurnEndDelay = 4 * time.Second
	c.Game.GameOverDelay = 10 * time.Second
	c.Game.ChatRate = 2
	c.Game.ChatBurst = 5
	c.Game.PingInterval = 30 * time.Second
	return c
}

// Load layers defaults, the optional YAML file at path and the environment,
// then validates the result.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PORT: %w", ErrInvalidConfig, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("GIN_MODE"); ok {
		c.Server.GinMode = v
	}
	if v, ok := lookup("POSTGRES_URL"); ok {
		c.Postgres.URL = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_PRETTY"); ok {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: LOG_PRETTY: %w", ErrInvalidConfig, err)
		}
		c.Log.Pretty = pretty
	}
	if v, ok := lookup("WORDS_FILE"); ok {
		c.Game.WordsFile = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error
	positive := []struct {
		name  string
		value int
	}{
		{"server.port", c.Server.Port},
		{"game.max_players", c.Game.MaxPlayers},
		{"game.max_rounds", c.Game.MaxRounds},
		{"game.draw_time", c.Game.DrawTime},
		{"game.words_count", c.Game.WordsCount},
		{"game.chat_burst", c.Game.ChatBurst},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, p.name))
		}
	}
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"game.pick_duration", c.Game.PickDuration},
		{"game.turn_end_delay", c.Game.TurnEndDelay},
		{"game.game_over_delay", c.Game.GameOverDelay},
		{"game.ping_interval", c.Game.PingInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, d.name))
		}
	}
	if c.Game.MaxPlayers < 2 {
		errs = append(errs, fmt.Errorf("%w: game.max_players must allow two players", ErrInvalidConfig))
	}
	if c.Game.ChatRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: game.chat_rate must be positive", ErrInvalidConfig))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, fmt.Errorf("%w: missing allowed origins", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
