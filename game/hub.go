package game

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Hub implements Transport over the live websocket clients. Packets are
// encoded once and queued on every recipient's send buffer; a full buffer
// drops the packet for that client only.
type Hub struct {
	locker  sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(c *Client) {
	h.locker.Lock()
	h.clients[c.id] = c
	h.locker.Unlock()
}

// Unregister forgets the client, drops it from every group and closes its
// send buffer, which stops its WritePump.
func (h *Hub) Unregister(connId string) {
	h.locker.Lock()
	defer h.locker.Unlock()

	c, ok := h.clients[connId]
	if !ok {
		return
	}
	delete(h.clients, connId)
	for group, members := range h.groups {
		delete(members, connId)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	close(c.send)
}

func (h *Hub) Count() int {
	h.locker.RLock()
	defer h.locker.RUnlock()
	return len(h.clients)
}

func (h *Hub) JoinGroup(connId, group string) {
	h.locker.Lock()
	defer h.locker.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]struct{})
		h.groups[group] = members
	}
	members[connId] = struct{}{}
}

func (h *Hub) LeaveGroup(connId, group string) {
	h.locker.Lock()
	defer h.locker.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, connId)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

func (h *Hub) SendToGroup(group string, packet ServerPacket, except ...string) {
	data, ok := h.encode(packet)
	if !ok {
		return
	}

	h.locker.RLock()
	defer h.locker.RUnlock()

members:
	for connId := range h.groups[group] {
		for _, skip := range except {
			if skip == connId {
				continue members
			}
		}
		h.enqueue(connId, data)
	}
}

func (h *Hub) SendTo(connId string, packet ServerPacket) {
	data, ok := h.encode(packet)
	if !ok {
		return
	}

	h.locker.RLock()
	defer h.locker.RUnlock()
	h.enqueue(connId, data)
}

func (h *Hub) encode(packet ServerPacket) ([]byte, bool) {
	data, err := json.Marshal(packet)
	if err != nil {
		h.logger.Error().Err(err).Str("event", packet.Event).Msg("packet encoding failed")
		return nil, false
	}
	return data, true
}

// enqueue must run under the read lock so Unregister cannot close the buffer
// underneath it.
func (h *Hub) enqueue(connId string, data []byte) {
	c, ok := h.clients[connId]
	if !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		h.logger.Warn().Str("conn", connId).Err(ErrSendBufferFull).Msg("packet dropped")
	}
}
