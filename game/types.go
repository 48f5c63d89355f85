package game

import (
	"time"
)

type RoomPhase int

const (
	PHASE_WAITING RoomPhase = iota
	PHASE_PICKING
	PHASE_DRAWING
	PHASE_ROUND_END
	PHASE_GAME_END
)

var phaseNames = map[RoomPhase]string{
	PHASE_WAITING:   "waiting",
	PHASE_PICKING:   "picking",
	PHASE_DRAWING:   "drawing",
	PHASE_ROUND_END: "roundEnd",
	PHASE_GAME_END:  "gameEnd",
}

func (p RoomPhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

func (p RoomPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// inGame is true for every phase in which a drawer is assigned.
func (p RoomPhase) inGame() bool {
	return p == PHASE_PICKING || p == PHASE_DRAWING || p == PHASE_ROUND_END
}

type Player struct {
	Id         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Score      int    `json:"score"`
	IsHost     bool   `json:"isHost"`
	HasGuessed bool   `json:"hasGuessed"`
}

const (
	STROKE_START = "start"
	STROKE_DRAW  = "draw"
	STROKE_FILL  = "fill"
)

type Stroke struct {
	Type  string  `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

type RoomConfigs struct {
	MaxPlayers    int
	MaxRounds     int
	DrawTime      int // seconds
	WordsCount    int
	PickDuration  time.Duration
	TurnEndDelay  time.Duration
	GameOverDelay time.Duration
}

func DefaultRoomConfigs() RoomConfigs {
	return RoomConfigs{
		MaxPlayers:    12,
		MaxRounds:     3,
		DrawTime:      80,
		WordsCount:    3,
		PickDuration:  15 * time.Second,
		TurnEndDelay:  4 * time.Second,
		GameOverDelay: 10 * time.Second,
	}
}

type RoomDescription struct {
	Id           string    `json:"roomId"`
	Phase        RoomPhase `json:"phase"`
	PlayersCount int       `json:"playersCount"`
	MaxPlayers   int       `json:"maxPlayers"`
	Round        int       `json:"round"`
	MaxRounds    int       `json:"maxRounds"`
}

type RandomWordsGenerator interface {
	Generate(count int) []string
}

type UniqueIdGenerator interface {
	Generate() string
	Dispose(id string)
}

// Transport is the connection layer the engine talks through. Groups are
// room ids.
type Transport interface {
	JoinGroup(connId, group string)
	LeaveGroup(connId, group string)
	SendToGroup(group string, packet ServerPacket, except ...string)
	SendTo(connId string, packet ServerPacket)
}

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type WebsocketConnection interface {
	Close(reason string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}
