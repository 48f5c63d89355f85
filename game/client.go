package game

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	SEND_BUFFER_SIZE = 256
	PING_INTERVAL    = 30 * time.Second
)

type Client struct {
	id          string
	socket      WebsocketConnection
	send        chan []byte
	chatLimiter *rate.Limiter
	logger      zerolog.Logger
}

func NewClient(id string, socket WebsocketConnection, chatLimiter *rate.Limiter, logger zerolog.Logger) *Client {
	return &Client{
		id:          id,
		socket:      socket,
		send:        make(chan []byte, SEND_BUFFER_SIZE),
		chatLimiter: chatLimiter,
		logger:      logger.With().Str("conn", id).Logger(),
	}
}

func (c *Client) Id() string { return c.id }

// ReadPump feeds every frame to handle until the socket fails.
func (c *Client) ReadPump(handle func(data []byte)) {
	for {
		data, err := c.socket.Read()
		if err != nil {
			c.logger.Debug().Err(err).Msg("read loop ended")
			return
		}
		handle(data)
	}
}

// WritePump drains the send buffer and pings on every tick. It closes the
// socket once the buffer is closed or a write fails.
func (c *Client) WritePump(pings <-chan time.Time) {
	defer c.socket.Close("")

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.socket.Write(data); err != nil {
				c.logger.Debug().Err(err).Msg("write failed")
				return
			}
		case <-pings:
			if err := c.socket.Ping(); err != nil {
				c.logger.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}
