package game

import "encoding/json"

// Inbound event names.
const (
	EVENT_CREATE_ROOM  = "createRoom"
	EVENT_JOIN_ROOM    = "joinRoom"
	EVENT_START_GAME   = "startGame"
	EVENT_WORD_CHOSEN  = "wordChosen"
	EVENT_DRAW         = "draw"
	EVENT_FILL         = "fill"
	EVENT_CLEAR_CANVAS = "clearCanvas"
	EVENT_UNDO_STROKE  = "undoStroke"
	EVENT_CHAT_MESSAGE = "chatMessage"
)

// Outbound-only event names.
const (
	EVENT_ACK             = "ack"
	EVENT_PLAYER_JOINED   = "playerJoined"
	EVENT_PLAYER_LEFT     = "playerLeft"
	EVENT_GAME_STARTED    = "gameStarted"
	EVENT_NEW_TURN        = "newTurn"
	EVENT_CHOOSE_WORD     = "chooseWord"
	EVENT_YOUR_WORD       = "yourWord"
	EVENT_DRAWING_STARTED = "drawingStarted"
	EVENT_REDRAW_CANVAS   = "redrawCanvas"
	EVENT_HINT            = "hint"
	EVENT_TIMER_UPDATE    = "timerUpdate"
	EVENT_CORRECT_GUESS   = "correctGuess"
	EVENT_TURN_END        = "turnEnd"
	EVENT_NEW_ROUND       = "newRound"
	EVENT_GAME_OVER       = "gameOver"
	EVENT_GAME_RESET      = "gameReset"
)

// Chat message tags.
const (
	CHAT_PLAIN   = "chat"
	CHAT_CLOSE   = "close"
	CHAT_CORRECT = "correct"
	CHAT_GUESSED = "guessed-chat"
	CHAT_SYSTEM  = "system"
)

type ClientPacket struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int64          `json:"ack,omitempty"`
}

type ServerPacket struct {
	Event string `json:"event"`
	Ack   *int64 `json:"ack,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar"`
}

type JoinRoomRequest struct {
	RoomId     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Avatar     string `json:"avatar"`
}

type WordChosenRequest struct {
	Word string `json:"word"`
}

type ChatMessageRequest struct {
	Message string `json:"message"`
}

type AckPayload struct {
	Success bool     `json:"success"`
	RoomId  string   `json:"roomId,omitempty"`
	Players []Player `json:"players,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type PlayersPayload struct {
	Players []Player `json:"players"`
}

type GameStartedPayload struct {
	Round     int `json:"round"`
	MaxRounds int `json:"maxRounds"`
}

type NewTurnPayload struct {
	DrawerId   string `json:"drawerId"`
	DrawerName string `json:"drawerName"`
	Round      int    `json:"round"`
	MaxRounds  int    `json:"maxRounds"`
}

type WordsPayload struct {
	Words []string `json:"words"`
}

type WordPayload struct {
	Word string `json:"word"`
}

type DrawingStartedPayload struct {
	DrawerId   string `json:"drawerId"`
	DrawerName string `json:"drawerName"`
	Hint       string `json:"hint"`
	WordLength int    `json:"wordLength"`
	DrawTime   int    `json:"drawTime"`
}

type HintPayload struct {
	Hint string `json:"hint"`
}

type TimerPayload struct {
	TimeLeft int `json:"timeLeft"`
}

type ChatPayload struct {
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Type       string `json:"type"`
}

type CorrectGuessPayload struct {
	PlayerName string   `json:"playerName"`
	PlayerId   string   `json:"playerId"`
	Players    []Player `json:"players"`
}

type TurnEndPayload struct {
	Word    string   `json:"word"`
	Players []Player `json:"players"`
}

type RoundPayload struct {
	Round int `json:"round"`
}

// --- Roster ---

func MakePacketAck(ack *int64, payload AckPayload) ServerPacket {
	return ServerPacket{Event: EVENT_ACK, Ack: ack, Data: payload}
}

func MakePacketPlayerJoined(players []Player) ServerPacket {
	return ServerPacket{Event: EVENT_PLAYER_JOINED, Data: PlayersPayload{Players: players}}
}

func MakePacketPlayerLeft(players []Player) ServerPacket {
	return ServerPacket{Event: EVENT_PLAYER_LEFT, Data: PlayersPayload{Players: players}}
}

// --- Game flow ---

func MakePacketGameStarted(round, maxRounds int) ServerPacket {
	return ServerPacket{Event: EVENT_GAME_STARTED, Data: GameStartedPayload{Round: round, MaxRounds: maxRounds}}
}

func MakePacketNewTurn(drawer Player, round, maxRounds int) ServerPacket {
	return ServerPacket{Event: EVENT_NEW_TURN, Data: NewTurnPayload{
		DrawerId:   drawer.Id,
		DrawerName: drawer.Name,
		Round:      round,
		MaxRounds:  maxRounds,
	}}
}

func MakePacketChooseWord(words []string) ServerPacket {
	return ServerPacket{Event: EVENT_CHOOSE_WORD, Data: WordsPayload{Words: words}}
}

func MakePacketYourWord(word string) ServerPacket {
	return ServerPacket{Event: EVENT_YOUR_WORD, Data: WordPayload{Word: word}}
}

func MakePacketDrawingStarted(drawer Player, hint string, wordLength, drawTime int) ServerPacket {
	return ServerPacket{Event: EVENT_DRAWING_STARTED, Data: DrawingStartedPayload{
		DrawerId:   drawer.Id,
		DrawerName: drawer.Name,
		Hint:       hint,
		WordLength: wordLength,
		DrawTime:   drawTime,
	}}
}

func MakePacketHint(hint string) ServerPacket {
	return ServerPacket{Event: EVENT_HINT, Data: HintPayload{Hint: hint}}
}

func MakePacketTimerUpdate(timeLeft int) ServerPacket {
	return ServerPacket{Event: EVENT_TIMER_UPDATE, Data: TimerPayload{TimeLeft: timeLeft}}
}

func MakePacketTurnEnd(word string, players []Player) ServerPacket {
	return ServerPacket{Event: EVENT_TURN_END, Data: TurnEndPayload{Word: word, Players: players}}
}

func MakePacketNewRound(round int) ServerPacket {
	return ServerPacket{Event: EVENT_NEW_ROUND, Data: RoundPayload{Round: round}}
}

func MakePacketGameOver(sorted []Player) ServerPacket {
	return ServerPacket{Event: EVENT_GAME_OVER, Data: PlayersPayload{Players: sorted}}
}

func MakePacketGameReset(players []Player) ServerPacket {
	return ServerPacket{Event: EVENT_GAME_RESET, Data: PlayersPayload{Players: players}}
}

// --- Canvas ---

func MakePacketDraw(stroke Stroke) ServerPacket {
	return ServerPacket{Event: EVENT_DRAW, Data: stroke}
}

func MakePacketFill(stroke Stroke) ServerPacket {
	return ServerPacket{Event: EVENT_FILL, Data: stroke}
}

func MakePacketClearCanvas() ServerPacket {
	return ServerPacket{Event: EVENT_CLEAR_CANVAS}
}

func MakePacketRedrawCanvas(drawingData []Stroke) ServerPacket {
	return ServerPacket{Event: EVENT_REDRAW_CANVAS, Data: drawingData}
}

// --- Chat ---

func MakePacketChat(playerName, message, chatType string) ServerPacket {
	return ServerPacket{Event: EVENT_CHAT_MESSAGE, Data: ChatPayload{
		PlayerName: playerName,
		Message:    message,
		Type:       chatType,
	}}
}

func MakePacketCorrectGuess(guesser Player, players []Player) ServerPacket {
	return ServerPacket{Event: EVENT_CORRECT_GUESS, Data: CorrectGuessPayload{
		PlayerName: guesser.Name,
		PlayerId:   guesser.Id,
		Players:    players,
	}}
}
