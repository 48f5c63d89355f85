package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type registryFixture struct {
	reg       *Registry
	transport *recordingTransport
	idGen     *MockUniqueIdGenerator
}

func newRegistryFixture(t *testing.T, codes ...string) *registryFixture {
	t.Helper()
	fx := &registryFixture{
		transport: newRecordingTransport(),
		idGen:     &MockUniqueIdGenerator{},
	}
	for _, code := range codes {
		fx.idGen.On("Generate").Return(code).Once()
	}
	fx.idGen.On("Dispose", mock.Anything).Maybe()

	words := &MockRandomWordsGenerator{}
	words.On("Generate", mock.Anything).Return([]string{"apple", "banana", "cherry"}).Maybe()

	fx.reg = NewRegistry(RegistryOptions{
		Configs:   testConfigs(),
		Words:     words,
		IdGen:     fx.idGen,
		Transport: fx.transport,
		Scheduler: &fakeScheduler{},
		Logger:    zerolog.Nop(),
	})
	t.Cleanup(fx.reg.Shutdown)
	return fx
}

func (fx *registryFixture) waitForRooms(t *testing.T, rooms int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return fx.reg.Stats().Rooms == rooms
	}, time.Second, 5*time.Millisecond)
}

func TestRegistry_CreateRoom(t *testing.T) {
	t.Run("Host seats alone", func(t *testing.T) {
		fx := newRegistryFixture(t, "ROOM01")

		roomId, players, err := fx.reg.CreateRoom(t.Context(), "c1", "  Alice ", "cat")
		require.NoError(t, err)
		assert.Equal(t, "ROOM01", roomId)
		assert.Equal(t, []Player{{Id: "c1", Name: "Alice", Avatar: "cat", IsHost: true}}, players)
		assert.Equal(t, Stats{Rooms: 1, Players: 1}, fx.reg.Stats())
		assert.Contains(t, fx.transport.groups["ROOM01"], "c1")
	})

	t.Run("Blank name refused", func(t *testing.T) {
		fx := newRegistryFixture(t)

		_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "   ", "")
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.Equal(t, Stats{}, fx.reg.Stats())
		fx.idGen.AssertNotCalled(t, "Generate")
	})

	t.Run("Creating again leaves the old room", func(t *testing.T) {
		fx := newRegistryFixture(t, "ROOM01", "ROOM02")

		_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
		require.NoError(t, err)
		roomId, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
		require.NoError(t, err)

		assert.Equal(t, "ROOM02", roomId)
		fx.waitForRooms(t, 1)
		fx.idGen.AssertCalled(t, "Dispose", "ROOM01")
		assert.Equal(t, "ROOM02", fx.reg.RoomOf("c1").Id())
	})
}

func TestRegistry_JoinRoom(t *testing.T) {
	t.Run("Room ids are case insensitive", func(t *testing.T) {
		fx := newRegistryFixture(t, "ROOM01")
		_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
		require.NoError(t, err)

		players, err := fx.reg.JoinRoom(t.Context(), " room01 ", "c2", "Bob", "dog")
		require.NoError(t, err)
		require.Len(t, players, 2)
		assert.Equal(t, "Bob", players[1].Name)
		assert.False(t, players[1].IsHost)
		assert.Equal(t, Stats{Rooms: 1, Players: 2}, fx.reg.Stats())
		assert.Equal(t, "ROOM01", fx.reg.RoomOf("c2").Id())
	})

	t.Run("Unknown room", func(t *testing.T) {
		fx := newRegistryFixture(t)

		_, err := fx.reg.JoinRoom(t.Context(), "NOPE00", "c2", "Bob", "")
		assert.ErrorIs(t, err, ErrRoomNotFound)
		assert.Nil(t, fx.reg.RoomOf("c2"))
	})

	t.Run("Refusal keeps the player out", func(t *testing.T) {
		fx := newRegistryFixture(t, "ROOM01")
		_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
		require.NoError(t, err)

		_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Alice", "")
		assert.ErrorIs(t, err, ErrNameTaken)
		_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "", "")
		assert.ErrorIs(t, err, ErrInvalidName)

		assert.Nil(t, fx.reg.RoomOf("c2"))
		assert.Equal(t, Stats{Rooms: 1, Players: 1}, fx.reg.Stats())
	})

	t.Run("Started game refuses joins", func(t *testing.T) {
		fx := newRegistryFixture(t, "ROOM01")
		_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
		require.NoError(t, err)
		_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Bob", "")
		require.NoError(t, err)

		fx.reg.Forward(t.Context(), "c1", ClientPacket{Event: EVENT_START_GAME})

		_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c3", "Carol", "")
		assert.ErrorIs(t, err, ErrGameInProgress)
	})
}

func TestRegistry_JoinRoomKeepsCurrentSeatOnFailure(t *testing.T) {
	fx := newRegistryFixture(t, "ROOM01", "ROOM02")
	_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
	require.NoError(t, err)
	_, _, err = fx.reg.CreateRoom(t.Context(), "c2", "Bob", "")
	require.NoError(t, err)

	_, err = fx.reg.JoinRoom(t.Context(), "NOPE00", "c2", "Bob", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Alice", "")
	assert.ErrorIs(t, err, ErrNameTaken)

	assert.Equal(t, "ROOM02", fx.reg.RoomOf("c2").Id())
	desc, err := fx.reg.Describe(t.Context(), "ROOM02")
	require.NoError(t, err)
	assert.Equal(t, 1, desc.PlayersCount)

	players, err := fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Bob", "")
	require.NoError(t, err)
	assert.Len(t, players, 2)
	assert.Equal(t, "ROOM01", fx.reg.RoomOf("c2").Id())

	// Bob was alone in ROOM02, so moving out destroys it.
	fx.waitForRooms(t, 1)
	fx.idGen.AssertCalled(t, "Dispose", "ROOM02")
	assert.Equal(t, Stats{Rooms: 1, Players: 2}, fx.reg.Stats())
}

func TestRegistry_RejoinSameRoom(t *testing.T) {
	fx := newRegistryFixture(t, "ROOM01")
	_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
	require.NoError(t, err)
	_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Bob", "")
	require.NoError(t, err)

	players, err := fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Bob", "")
	require.NoError(t, err)
	assert.Len(t, players, 2)
	assert.Equal(t, Stats{Rooms: 1, Players: 2}, fx.reg.Stats())
}

func TestRegistry_Leave(t *testing.T) {
	fx := newRegistryFixture(t, "ROOM01")
	_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
	require.NoError(t, err)
	_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Bob", "")
	require.NoError(t, err)
	room := fx.reg.RoomOf("c1")

	fx.reg.RemovePlayer(t.Context(), "c1")
	assert.Nil(t, fx.reg.RoomOf("c1"))

	desc, err := fx.reg.Describe(t.Context(), "room01")
	require.NoError(t, err)
	assert.Equal(t, 1, desc.PlayersCount)

	fx.reg.RemovePlayer(t.Context(), "c2")
	fx.waitForRooms(t, 0)

	select {
	case <-room.Done():
	case <-time.After(time.Second):
		t.Fatal("room actor still running")
	}
	fx.idGen.AssertCalled(t, "Dispose", "ROOM01")

	_, err = fx.reg.Describe(t.Context(), "ROOM01")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	// Unknown connections are a no-op.
	fx.reg.RemovePlayer(t.Context(), "ghost")
}

func TestRegistry_Describe(t *testing.T) {
	fx := newRegistryFixture(t, "ROOM01")
	_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
	require.NoError(t, err)
	_, err = fx.reg.JoinRoom(t.Context(), "ROOM01", "c2", "Bob", "")
	require.NoError(t, err)

	fx.reg.Forward(t.Context(), "c1", ClientPacket{Event: EVENT_START_GAME})

	desc, err := fx.reg.Describe(t.Context(), "ROOM01")
	require.NoError(t, err)
	assert.Equal(t, RoomDescription{
		Id:           "ROOM01",
		Phase:        PHASE_PICKING,
		PlayersCount: 2,
		MaxPlayers:   12,
		Round:        1,
		MaxRounds:    3,
	}, desc)
}

func TestRegistry_List(t *testing.T) {
	fx := newRegistryFixture(t, "ROOMBB", "ROOMAA")

	rooms, err := fx.reg.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, rooms)

	_, _, err = fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
	require.NoError(t, err)
	_, _, err = fx.reg.CreateRoom(t.Context(), "c2", "Bob", "")
	require.NoError(t, err)
	_, err = fx.reg.JoinRoom(t.Context(), "ROOMAA", "c3", "Carol", "")
	require.NoError(t, err)

	rooms, err = fx.reg.List(t.Context())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "ROOMAA", rooms[0].Id)
	assert.Equal(t, 2, rooms[0].PlayersCount)
	assert.Equal(t, "ROOMBB", rooms[1].Id)
	assert.Equal(t, PHASE_WAITING, rooms[1].Phase)
}

func TestRegistry_Forward(t *testing.T) {
	fx := newRegistryFixture(t, "ROOM01")
	_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
	require.NoError(t, err)

	// Not seated anywhere: dropped without a panic.
	fx.reg.Forward(t.Context(), "c9", ClientPacket{Event: EVENT_CHAT_MESSAGE})

	fx.reg.Forward(t.Context(), "c1", ClientPacket{Event: EVENT_CHAT_MESSAGE, Data: []byte(`{"message":"hi"}`)})
	require.Eventually(t, func() bool {
		return fx.transport.countOf("c1", EVENT_CHAT_MESSAGE) == 1
	}, time.Second, 5*time.Millisecond)

	packet, _ := fx.transport.lastOf("c1", EVENT_CHAT_MESSAGE)
	assert.Equal(t, ChatPayload{PlayerName: "Alice", Message: "hi", Type: CHAT_PLAIN}, packet.Data)
}

func TestRegistry_Shutdown(t *testing.T) {
	fx := newRegistryFixture(t, "ROOM01", "ROOM02")
	_, _, err := fx.reg.CreateRoom(t.Context(), "c1", "Alice", "")
	require.NoError(t, err)
	_, _, err = fx.reg.CreateRoom(t.Context(), "c2", "Bob", "")
	require.NoError(t, err)
	rooms := []*Room{fx.reg.RoomOf("c1"), fx.reg.RoomOf("c2")}

	fx.reg.Shutdown()

	for _, room := range rooms {
		select {
		case <-room.Stopped():
		default:
			t.Fatalf("room %s still running", room.Id())
		}
	}
	assert.Equal(t, Stats{}, fx.reg.Stats())

	_, _, err = fx.reg.CreateRoom(t.Context(), "c3", "Carol", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
