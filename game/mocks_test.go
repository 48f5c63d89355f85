package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- WebsocketConnection ---

type MockWebsocketConnection struct {
	mock.Mock
}

func (m *MockWebsocketConnection) Close(reason string) {
	m.Called(reason)
}

func (m *MockWebsocketConnection) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockWebsocketConnection) Read() ([]byte, error) {
	args := m.Called()
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockWebsocketConnection) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- RandomWordsGenerator ---

type MockRandomWordsGenerator struct {
	mock.Mock
}

func (m *MockRandomWordsGenerator) Generate(count int) []string {
	args := m.Called(count)
	return args.Get(0).([]string)
}

// --- UniqueIdGenerator ---

type MockUniqueIdGenerator struct {
	mock.Mock
}

func (m *MockUniqueIdGenerator) Generate() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockUniqueIdGenerator) Dispose(id string) {
	m.Called(id)
}

// --- Scheduler ---

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (ft *fakeTimer) Stop() bool {
	wasActive := !ft.stopped
	ft.stopped = true
	return wasActive
}

// fakeScheduler never fires by itself; tests fire timers by hand.
type fakeScheduler struct {
	locker sync.Mutex
	timers []*fakeTimer
}

func (fs *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	fs.locker.Lock()
	defer fs.locker.Unlock()
	ft := &fakeTimer{d: d, f: f}
	fs.timers = append(fs.timers, ft)
	return ft
}

func (fs *fakeScheduler) last(t *testing.T) *fakeTimer {
	t.Helper()
	fs.locker.Lock()
	defer fs.locker.Unlock()
	require.NotEmpty(t, fs.timers, "no timer armed")
	return fs.timers[len(fs.timers)-1]
}

// fire runs the live timer and lets the room consume the resulting event.
func (fs *fakeScheduler) fire(t *testing.T, r *Room) {
	t.Helper()
	ft := fs.last(t)
	require.False(t, ft.stopped, "latest timer was stopped")
	ft.f()
	r.handleEvent(<-r.events)
}

// --- Transport ---

type sentPacket struct {
	to     []string
	packet ServerPacket
}

type recordingTransport struct {
	locker sync.Mutex
	groups map[string][]string
	sent   []sentPacket
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{groups: make(map[string][]string)}
}

func (rt *recordingTransport) JoinGroup(connId, group string) {
	rt.locker.Lock()
	defer rt.locker.Unlock()
	if !slices.Contains(rt.groups[group], connId) {
		rt.groups[group] = append(rt.groups[group], connId)
	}
}

func (rt *recordingTransport) LeaveGroup(connId, group string) {
	rt.locker.Lock()
	defer rt.locker.Unlock()
	rt.groups[group] = slices.DeleteFunc(rt.groups[group], func(id string) bool { return id == connId })
}

func (rt *recordingTransport) SendToGroup(group string, packet ServerPacket, except ...string) {
	rt.locker.Lock()
	defer rt.locker.Unlock()
	var to []string
	for _, id := range rt.groups[group] {
		if !slices.Contains(except, id) {
			to = append(to, id)
		}
	}
	rt.sent = append(rt.sent, sentPacket{to: to, packet: packet})
}

func (rt *recordingTransport) SendTo(connId string, packet ServerPacket) {
	rt.locker.Lock()
	defer rt.locker.Unlock()
	rt.sent = append(rt.sent, sentPacket{to: []string{connId}, packet: packet})
}

// received lists, in order, the packets connId would have been delivered.
func (rt *recordingTransport) received(connId string) []ServerPacket {
	rt.locker.Lock()
	defer rt.locker.Unlock()
	var out []ServerPacket
	for _, s := range rt.sent {
		if slices.Contains(s.to, connId) {
			out = append(out, s.packet)
		}
	}
	return out
}

func (rt *recordingTransport) receivedEvents(connId string) []string {
	var events []string
	for _, p := range rt.received(connId) {
		events = append(events, p.Event)
	}
	return events
}

func (rt *recordingTransport) lastOf(connId, event string) (ServerPacket, bool) {
	packets := rt.received(connId)
	for i := len(packets) - 1; i >= 0; i-- {
		if packets[i].Event == event {
			return packets[i], true
		}
	}
	return ServerPacket{}, false
}

func (rt *recordingTransport) countOf(connId, event string) int {
	n := 0
	for _, p := range rt.received(connId) {
		if p.Event == event {
			n++
		}
	}
	return n
}

func (rt *recordingTransport) reset() {
	rt.locker.Lock()
	defer rt.locker.Unlock()
	rt.sent = nil
}

// --- Room fixture ---

type roomFixture struct {
	room      *Room
	transport *recordingTransport
	scheduler *fakeScheduler
	words     *MockRandomWordsGenerator
	emptied   []string
}

// newRoomFixture builds a waiting room hosted by c1 and seats one more
// player per extra name (ids c2, c3, ...).
func newRoomFixture(t *testing.T, configs RoomConfigs, names ...string) *roomFixture {
	t.Helper()
	fx := &roomFixture{
		transport: newRecordingTransport(),
		scheduler: &fakeScheduler{},
		words:     &MockRandomWordsGenerator{},
	}
	fx.words.On("Generate", mock.Anything).Return([]string{"apple", "banana", "cherry"}).Maybe()

	host := Player{Id: "c1", Name: names[0]}
	fx.room = NewRoom(t.Context(), "ROOM01", host, configs, RoomDeps{
		Words:     fx.words,
		Transport: fx.transport,
		Scheduler: fx.scheduler,
		Rng:       rand.New(rand.NewPCG(1, 2)),
		Logger:    zerolog.Nop(),
		OnEmpty:   func(id string) { fx.emptied = append(fx.emptied, id) },
	})
	fx.transport.JoinGroup("c1", "ROOM01")

	for i, name := range names[1:] {
		require.NoError(t, fx.join(connIdOf(i+2), name))
	}
	fx.transport.reset()
	return fx
}

func connIdOf(n int) string {
	return "c" + string(rune('0'+n))
}

func (fx *roomFixture) join(connId, name string) error {
	req := roomJoinRequest{player: Player{Id: connId, Name: name}, replyChan: make(chan joinResult, 1)}
	fx.room.handleJoin(req)
	return (<-req.replyChan).err
}

func (fx *roomFixture) fire(t *testing.T) {
	t.Helper()
	fx.scheduler.fire(t, fx.room)
}

func (fx *roomFixture) drawerId() string {
	if d := fx.room.drawer(); d != nil {
		return d.Id
	}
	return ""
}

// startAndPick starts the game and has the first drawer choose "apple".
func (fx *roomFixture) startAndPick(t *testing.T) {
	t.Helper()
	fx.room.handleStart("c1")
	require.Equal(t, PHASE_PICKING, fx.room.phase)
	fx.room.handleChooseWord(fx.drawerId(), "apple")
	require.Equal(t, PHASE_DRAWING, fx.room.phase)
}

func testConfigs() RoomConfigs {
	return DefaultRoomConfigs()
}
