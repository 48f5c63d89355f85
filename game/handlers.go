package game

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type GameHandler struct {
	gateway  *Gateway
	registry *Registry
	hub      *Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewGameHandler builds the HTTP surface. Origin filtering happens in the
// router middleware, so the upgrader accepts whatever reaches it.
func NewGameHandler(gateway *Gateway, registry *Registry, hub *Hub, logger zerolog.Logger) *GameHandler {
	return &GameHandler{
		gateway:  gateway,
		registry: registry,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *GameHandler) Register(r gin.IRouter) {
	r.GET("/ws", h.WebsocketHandler)
	r.GET("/rooms", h.RoomsHandler)
	r.GET("/rooms/:roomid", h.RoomHandler)
	r.GET("/stats", h.StatsHandler)
}

func (h *GameHandler) WebsocketHandler(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("ip", ctx.ClientIP()).
			Str("user_agent", ctx.Request.UserAgent()).
			Msg("websocket upgrade failed")
		return
	}

	h.gateway.Serve(ctx.Request.Context(), NewWebsocketConnection(conn))
}

func (h *GameHandler) RoomHandler(ctx *gin.Context) {
	desc, err := h.registry.Describe(ctx.Request.Context(), ctx.Param("roomid"))
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "room-not-found"})
			return
		}
		h.logger.Error().Err(err).Msg("room description failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, desc)
}

func (h *GameHandler) RoomsHandler(ctx *gin.Context) {
	rooms, err := h.registry.List(ctx.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("room listing failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *GameHandler) StatsHandler(ctx *gin.Context) {
	stats := h.registry.Stats()
	ctx.JSON(http.StatusOK, gin.H{
		"rooms":       stats.Rooms,
		"players":     stats.Players,
		"connections": h.hub.Count(),
	})
}
