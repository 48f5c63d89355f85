package game

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog"
)

const ROOM_EVENTS_BUFFER = 1024

// roomEvent is anything the room actor consumes from its inbox.
type roomEvent interface {
	roomEvent()
}

type clientPacketEnvelope struct {
	from   string
	packet ClientPacket
}

type joinResult struct {
	players []Player
	err     error
}

type roomJoinRequest struct {
	player    Player
	replyChan chan joinResult
}

type roomLeaveRequest struct {
	connId string
}

type roomDescribeRequest struct {
	replyChan chan RoomDescription
}

type timerFire struct {
	epoch uint64
	phase RoomPhase
}

func (clientPacketEnvelope) roomEvent() {}
func (roomJoinRequest) roomEvent()      {}
func (roomLeaveRequest) roomEvent()     {}
func (roomDescribeRequest) roomEvent()  {}
func (timerFire) roomEvent()            {}

// RoomDeps are the collaborators a room talks to. OnEmpty is called from the
// room goroutine right before the actor stops.
type RoomDeps struct {
	Words     RandomWordsGenerator
	Transport Transport
	Scheduler Scheduler
	Rng       *rand.Rand
	Logger    zerolog.Logger
	OnEmpty   func(roomId string)
}

type Room struct {
	id      string
	configs RoomConfigs
	phase   RoomPhase

	// Runtime state
	players         []*Player
	drawerIndex     int
	round           int
	currentWord     string
	wordChoices     []string
	timeLeft        int
	hints           *HintScheduler
	turnOrder       []string
	drawingData     []Stroke
	correctGuessers []string

	// Timer handle; fires carrying another epoch are stale.
	timer      Timer
	timerEpoch uint64

	// Communication
	events  chan roomEvent
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	words     RandomWordsGenerator
	transport Transport
	scheduler Scheduler
	rng       *rand.Rand
	logger    zerolog.Logger
	onEmpty   func(roomId string)
}

// NewRoom seeds a waiting room holding only its host. The actor is not
// started; call GameLoop.
func NewRoom(parent context.Context, id string, host Player, configs RoomConfigs, deps RoomDeps) *Room {
	ctx, cancel := context.WithCancel(parent)

	rng := deps.Rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	host.IsHost = true
	host.Score = 0
	host.HasGuessed = false

	room := &Room{
		id:        id,
		configs:   configs,
		phase:     PHASE_WAITING,
		players:   make([]*Player, 0, configs.MaxPlayers),
		events:    make(chan roomEvent, ROOM_EVENTS_BUFFER),
		ctx:       ctx,
		cancel:    cancel,
		stopped:   make(chan struct{}),
		words:     deps.Words,
		transport: deps.Transport,
		scheduler: deps.Scheduler,
		rng:       rng,
		logger:    deps.Logger.With().Str("room", id).Logger(),
		onEmpty:   deps.OnEmpty,
	}
	room.players = append(room.players, &host)
	return room
}

func (r *Room) Id() string { return r.id }

// Done is closed once the room has been destroyed.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Stopped is closed once GameLoop has returned.
func (r *Room) Stopped() <-chan struct{} { return r.stopped }

func (r *Room) GameLoop() {
	r.logger.Info().Str("host", r.players[0].Name).Msg("room started")
	defer close(r.stopped)
	defer r.logger.Info().Msg("room closed")

	for {
		select {
		case <-r.ctx.Done():
			r.cancelTimer()
			return
		case ev := <-r.events:
			r.handleEvent(ev)
		}
	}
}

func (r *Room) handleEvent(ev roomEvent) {
	// A destroyed room may still have events queued behind the last leave.
	if r.ctx.Err() != nil {
		if join, ok := ev.(roomJoinRequest); ok {
			join.replyChan <- joinResult{err: ErrRoomNotFound}
		}
		return
	}

	switch ev := ev.(type) {
	case clientPacketEnvelope:
		r.handlePacket(ev.from, ev.packet)
	case roomJoinRequest:
		r.handleJoin(ev)
	case roomLeaveRequest:
		r.handleLeave(ev.connId)
	case roomDescribeRequest:
		ev.replyChan <- r.description()
	case timerFire:
		r.handleTimer(ev)
	}
}

// post enqueues an event, giving up when the room or the caller goes away.
func (r *Room) post(ctx context.Context, ev roomEvent) bool {
	select {
	case r.events <- ev:
		return true
	case <-r.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

func (r *Room) RequestPacket(ctx context.Context, connId string, packet ClientPacket) {
	r.post(ctx, clientPacketEnvelope{from: connId, packet: packet})
}

func (r *Room) RequestLeave(ctx context.Context, connId string) {
	r.post(ctx, roomLeaveRequest{connId: connId})
}

// RequestJoin blocks until the room accepted or refused the player.
func (r *Room) RequestJoin(ctx context.Context, player Player) ([]Player, error) {
	req := roomJoinRequest{player: player, replyChan: make(chan joinResult, 1)}
	if !r.post(ctx, req) {
		return nil, ErrRoomNotFound
	}
	select {
	case res := <-req.replyChan:
		return res.players, res.err
	case <-r.ctx.Done():
		// The answer may have been sent right before the room went away.
		select {
		case res := <-req.replyChan:
			return res.players, res.err
		default:
			return nil, ErrRoomNotFound
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Room) RequestDescription(ctx context.Context) (RoomDescription, error) {
	req := roomDescribeRequest{replyChan: make(chan RoomDescription, 1)}
	if !r.post(ctx, req) {
		return RoomDescription{}, ErrRoomNotFound
	}
	select {
	case desc := <-req.replyChan:
		return desc, nil
	case <-r.ctx.Done():
		return RoomDescription{}, ErrRoomNotFound
	case <-ctx.Done():
		return RoomDescription{}, ctx.Err()
	}
}

func (r *Room) description() RoomDescription {
	return RoomDescription{
		Id:           r.id,
		Phase:        r.phase,
		PlayersCount: len(r.players),
		MaxPlayers:   r.configs.MaxPlayers,
		Round:        r.round,
		MaxRounds:    r.configs.MaxRounds,
	}
}

// snapshot copies the roster so packets never alias live state.
func (r *Room) snapshot() []Player {
	players := make([]Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}
	return players
}

func (r *Room) indexOf(connId string) int {
	for i, p := range r.players {
		if p.Id == connId {
			return i
		}
	}
	return -1
}

func (r *Room) playerById(connId string) *Player {
	if i := r.indexOf(connId); i >= 0 {
		return r.players[i]
	}
	return nil
}

// drawer is nil in waiting and gameEnd.
func (r *Room) drawer() *Player {
	if !r.phase.inGame() || r.drawerIndex < 0 || r.drawerIndex >= len(r.players) {
		return nil
	}
	return r.players[r.drawerIndex]
}

func (r *Room) isDrawer(connId string) bool {
	d := r.drawer()
	return d != nil && d.Id == connId
}

func (r *Room) broadcast(packet ServerPacket, except ...string) {
	r.transport.SendToGroup(r.id, packet, except...)
}

func (r *Room) sendTo(connId string, packet ServerPacket) {
	r.transport.SendTo(connId, packet)
}
