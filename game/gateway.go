package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const DISCONNECT_TIMEOUT = 5 * time.Second

type GatewayOptions struct {
	ChatRate     rate.Limit
	ChatBurst    int
	PingInterval time.Duration
}

func DefaultGatewayOptions() GatewayOptions {
	return GatewayOptions{
		ChatRate:     rate.Limit(2),
		ChatBurst:    5,
		PingInterval: PING_INTERVAL,
	}
}

// Gateway turns websocket frames into registry calls. Create and join are
// answered with an ack; everything else goes to the sender's room.
type Gateway struct {
	registry *Registry
	hub      *Hub
	opts     GatewayOptions
	logger   zerolog.Logger
}

func NewGateway(registry *Registry, hub *Hub, opts GatewayOptions, logger zerolog.Logger) *Gateway {
	return &Gateway{registry: registry, hub: hub, opts: opts, logger: logger}
}

// Serve runs one connection until its socket fails.
func (g *Gateway) Serve(ctx context.Context, socket WebsocketConnection) {
	c := NewClient(uuid.NewString(), socket, rate.NewLimiter(g.opts.ChatRate, g.opts.ChatBurst), g.logger)
	g.hub.Register(c)
	c.logger.Info().Msg("connected")

	pings := time.NewTicker(g.opts.PingInterval)
	defer pings.Stop()

	go c.WritePump(pings.C)
	c.ReadPump(func(data []byte) {
		g.HandleMessage(ctx, c, data)
	})

	g.HandleDisconnect(ctx, c.id)
}

func (g *Gateway) HandleMessage(ctx context.Context, c *Client, data []byte) {
	var packet ClientPacket
	if err := json.Unmarshal(data, &packet); err != nil {
		c.logger.Debug().Err(err).Msg("malformed frame")
		return
	}

	switch packet.Event {
	case EVENT_CREATE_ROOM:
		g.handleCreateRoom(ctx, c, packet)
	case EVENT_JOIN_ROOM:
		g.handleJoinRoom(ctx, c, packet)
	case EVENT_CHAT_MESSAGE:
		if !c.chatLimiter.Allow() {
			c.logger.Debug().Msg("chat rate limited")
			return
		}
		g.registry.Forward(ctx, c.id, packet)
	default:
		g.registry.Forward(ctx, c.id, packet)
	}
}

func (g *Gateway) handleCreateRoom(ctx context.Context, c *Client, packet ClientPacket) {
	var req CreateRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		g.nack(c, packet.Ack, ErrInvalidName)
		return
	}

	roomId, players, err := g.registry.CreateRoom(ctx, c.id, req.PlayerName, req.Avatar)
	if err != nil {
		g.nack(c, packet.Ack, err)
		return
	}
	c.logger.Info().Str("room", roomId).Msg("room created")
	g.hub.SendTo(c.id, MakePacketAck(packet.Ack, AckPayload{Success: true, RoomId: roomId, Players: players}))
}

func (g *Gateway) handleJoinRoom(ctx context.Context, c *Client, packet ClientPacket) {
	var req JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		g.nack(c, packet.Ack, ErrRoomNotFound)
		return
	}

	players, err := g.registry.JoinRoom(ctx, req.RoomId, c.id, req.PlayerName, req.Avatar)
	if err != nil {
		g.nack(c, packet.Ack, err)
		return
	}
	g.hub.SendTo(c.id, MakePacketAck(packet.Ack, AckPayload{
		Success: true,
		RoomId:  NormalizeRoomId(req.RoomId),
		Players: players,
	}))
}

func (g *Gateway) nack(c *Client, ack *int64, err error) {
	g.hub.SendTo(c.id, MakePacketAck(ack, AckPayload{Success: false, Error: err.Error()}))
}

func (g *Gateway) HandleDisconnect(ctx context.Context, connId string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DISCONNECT_TIMEOUT)
	defer cancel()

	g.registry.RemovePlayer(ctx, connId)
	g.hub.Unregister(connId)
	g.logger.Info().Str("conn", connId).Msg("disconnected")
}
