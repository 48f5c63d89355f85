package game

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type RegistryOptions struct {
	Configs   RoomConfigs
	Words     RandomWordsGenerator
	IdGen     UniqueIdGenerator
	Transport Transport
	Scheduler Scheduler
	Logger    zerolog.Logger
}

type Stats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

// Registry owns every live room and remembers which room each connection is
// in. The lock is never held while talking to a room.
type Registry struct {
	locker    sync.Mutex
	rooms     map[string]*Room
	connRooms map[string]string

	ctx       context.Context
	cancel    context.CancelFunc
	configs   RoomConfigs
	words     RandomWordsGenerator
	idGen     UniqueIdGenerator
	transport Transport
	scheduler Scheduler
	logger    zerolog.Logger
}

func NewRegistry(opts RegistryOptions) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		rooms:     make(map[string]*Room),
		connRooms: make(map[string]string),
		ctx:       ctx,
		cancel:    cancel,
		configs:   opts.Configs,
		words:     opts.Words,
		idGen:     opts.IdGen,
		transport: opts.Transport,
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

func NormalizeRoomId(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// CreateRoom starts a fresh room hosted by connId and returns its code and
// roster.
func (reg *Registry) CreateRoom(ctx context.Context, connId, name, avatar string) (string, []Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return "", nil, err
	}
	reg.leaveCurrent(ctx, connId)

	host := Player{Id: connId, Name: name, Avatar: avatar, IsHost: true}

	reg.locker.Lock()
	if reg.ctx.Err() != nil {
		reg.locker.Unlock()
		return "", nil, ErrRoomNotFound
	}
	roomId := reg.idGen.Generate()
	room := NewRoom(reg.ctx, roomId, host, reg.configs, RoomDeps{
		Words:     reg.words,
		Transport: reg.transport,
		Scheduler: reg.scheduler,
		Logger:    reg.logger,
		OnEmpty:   reg.dropRoom,
	})
	reg.rooms[roomId] = room
	reg.connRooms[connId] = roomId
	reg.locker.Unlock()

	reg.transport.JoinGroup(connId, roomId)
	go room.GameLoop()

	return roomId, []Player{host}, nil
}

func (reg *Registry) JoinRoom(ctx context.Context, roomId, connId, name, avatar string) ([]Player, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	roomId = NormalizeRoomId(roomId)

	room := reg.room(roomId)
	if room == nil {
		return nil, ErrRoomNotFound
	}
	// Rejoining the same room takes the old seat out first.
	if reg.RoomOf(connId) == room {
		reg.leaveCurrent(ctx, connId)
	}

	players, err := room.RequestJoin(ctx, Player{Id: connId, Name: name, Avatar: avatar})
	if err != nil {
		return nil, err
	}

	// The previous room is only left once the new one has accepted.
	reg.locker.Lock()
	previous := reg.rooms[reg.connRooms[connId]]
	reg.connRooms[connId] = roomId
	reg.locker.Unlock()

	if previous != nil && previous != room {
		previous.RequestLeave(ctx, connId)
	}
	return players, nil
}

// RemovePlayer detaches connId from whatever room it is in.
func (reg *Registry) RemovePlayer(ctx context.Context, connId string) {
	reg.leaveCurrent(ctx, connId)
}

func (reg *Registry) leaveCurrent(ctx context.Context, connId string) {
	reg.locker.Lock()
	roomId, ok := reg.connRooms[connId]
	delete(reg.connRooms, connId)
	room := reg.rooms[roomId]
	reg.locker.Unlock()

	if !ok || room == nil {
		return
	}
	room.RequestLeave(ctx, connId)
}

// Forward hands a gameplay packet to the sender's room.
func (reg *Registry) Forward(ctx context.Context, connId string, packet ClientPacket) {
	room := reg.RoomOf(connId)
	if room == nil {
		reg.logger.Debug().Str("conn", connId).Str("event", packet.Event).Msg("packet outside a room dropped")
		return
	}
	room.RequestPacket(ctx, connId, packet)
}

func (reg *Registry) RoomOf(connId string) *Room {
	reg.locker.Lock()
	defer reg.locker.Unlock()

	roomId, ok := reg.connRooms[connId]
	if !ok {
		return nil
	}
	return reg.rooms[roomId]
}

func (reg *Registry) room(roomId string) *Room {
	reg.locker.Lock()
	defer reg.locker.Unlock()
	return reg.rooms[roomId]
}

func (reg *Registry) Describe(ctx context.Context, roomId string) (RoomDescription, error) {
	room := reg.room(NormalizeRoomId(roomId))
	if room == nil {
		return RoomDescription{}, ErrRoomNotFound
	}
	return room.RequestDescription(ctx)
}

// List describes every live room, ordered by id. Rooms that die while being
// asked are left out.
func (reg *Registry) List(ctx context.Context) ([]RoomDescription, error) {
	reg.locker.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.locker.Unlock()

	descs := make([]RoomDescription, 0, len(rooms))
	for _, room := range rooms {
		desc, err := room.RequestDescription(ctx)
		if errors.Is(err, ErrRoomNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	slices.SortFunc(descs, func(a, b RoomDescription) int {
		return strings.Compare(a.Id, b.Id)
	})
	return descs, nil
}

func (reg *Registry) Stats() Stats {
	reg.locker.Lock()
	defer reg.locker.Unlock()
	return Stats{Rooms: len(reg.rooms), Players: len(reg.connRooms)}
}

// dropRoom runs on the room goroutine of a room that just became empty.
func (reg *Registry) dropRoom(roomId string) {
	reg.locker.Lock()
	defer reg.locker.Unlock()

	delete(reg.rooms, roomId)
	for connId, id := range reg.connRooms {
		if id == roomId {
			delete(reg.connRooms, connId)
		}
	}
	reg.idGen.Dispose(roomId)
	reg.logger.Info().Str("room", roomId).Msg("room destroyed")
}

// Shutdown stops every room actor. The registry refuses new rooms afterwards.
func (reg *Registry) Shutdown() {
	reg.locker.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for id, room := range reg.rooms {
		rooms = append(rooms, room)
		reg.idGen.Dispose(id)
	}
	clear(reg.rooms)
	clear(reg.connRooms)
	reg.cancel()
	reg.locker.Unlock()

	for _, room := range rooms {
		<-room.Stopped()
	}
	reg.logger.Info().Int("rooms", len(rooms)).Msg("registry shut down")
}
