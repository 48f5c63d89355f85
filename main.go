package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sourabhmahato/scribble/game"
	"github.com/sourabhmahato/scribble/migrations"
	"github.com/sourabhmahato/scribble/shared/configs"
	"github.com/sourabhmahato/scribble/shared/logger"
	"github.com/sourabhmahato/scribble/storage"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func roomConfigs(cfg *configs.Config) game.RoomConfigs {
	return game.RoomConfigs{
		MaxPlayers:    cfg.Game.MaxPlayers,
		MaxRounds:     cfg.Game.MaxRounds,
		DrawTime:      cfg.Game.DrawTime,
		WordsCount:    cfg.Game.WordsCount,
		PickDuration:  cfg.Game.PickDuration,
		TurnEndDelay:  cfg.Game.TurnEndDelay,
		GameOverDelay: cfg.Game.GameOverDelay,
	}
}

// wordSource prefers Postgres when configured and always keeps the in-memory
// list as a fallback. The returned cleanup closes the pool.
func wordSource(ctx context.Context, cfg *configs.Config, lg zerolog.Logger) (game.RandomWordsGenerator, func(), error) {
	list := game.DefaultWordList()
	if cfg.Game.WordsFile != "" {
		loaded, err := game.LoadWordList(cfg.Game.WordsFile)
		if err != nil {
			return nil, nil, err
		}
		list = loaded
	}
	lg.Info().Int("words", list.Len()).Msg("word list loaded")

	if cfg.Postgres.URL == "" {
		return list, func() {}, nil
	}

	if err := migrations.Migrate(cfg.Postgres.URL); err != nil {
		return nil, nil, err
	}
	lg.Info().Msg("migrations applied")

	repo, err := storage.NewPostgresRepo(ctx, cfg.Postgres.URL, cfg.Postgres.QueryTimeout, lg.With().Str("component", "postgres").Logger())
	if err != nil {
		return nil, nil, err
	}

	if cfg.Game.WordsFile != "" {
		added, err := repo.AddWords(ctx, list.Words())
		if err != nil {
			lg.Error().Err(err).Msg("importing words file failed")
		} else {
			lg.Info().Int64("added", added).Msg("words file imported")
		}
	}
	if n, err := repo.CountWords(ctx); err == nil {
		lg.Info().Int("words", n).Msg("postgres word source ready")
	}

	return game.NewFallbackWords(repo, list, lg), repo.Close, nil
}

func main() {
	cfg, err := configs.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.GinMode)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	words, closeWords, err := wordSource(startCtx, cfg, lg)
	cancelStart()
	if err != nil {
		lg.Fatal().Err(err).Msg("word source setup failed")
	}
	defer closeWords()

	hub := game.NewHub(lg)
	registry := game.NewRegistry(game.RegistryOptions{
		Configs:   roomConfigs(cfg),
		Words:     words,
		IdGen:     game.NewRoomCodeGenerator(nil),
		Transport: hub,
		Scheduler: game.NewClockScheduler(),
		Logger:    lg,
	})
	gateway := game.NewGateway(registry, hub, game.GatewayOptions{
		ChatRate:     rate.Limit(cfg.Game.ChatRate),
		ChatBurst:    cfg.Game.ChatBurst,
		PingInterval: cfg.Game.PingInterval,
	}, lg)

	r := CreateServer(cfg.Server.AllowedOrigins)
	game.NewGameHandler(gateway, registry, hub, lg).Register(r)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server failed")
		}
	}()
	lg.Info().Int("port", cfg.Server.Port).Msg("server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	lg.Info().Msg("SIGTERM or SIGINT received, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Msg("http shutdown failed")
	}
	registry.Shutdown()
	lg.Info().Msg("bye")
}
