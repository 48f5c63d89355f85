package game

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

func (r *Room) handlePacket(from string, packet ClientPacket) {
	if r.playerById(from) == nil {
		r.logger.Debug().Str("conn", from).Str("event", packet.Event).Msg("packet from non-member dropped")
		return
	}

	switch packet.Event {
	case EVENT_START_GAME:
		r.handleStart(from)

	case EVENT_WORD_CHOSEN:
		var req WordChosenRequest
		if !r.decode(from, packet, &req) {
			return
		}
		r.handleChooseWord(from, req.Word)

	case EVENT_DRAW:
		var stroke Stroke
		if !r.decode(from, packet, &stroke) {
			return
		}
		r.handleDraw(from, stroke)

	case EVENT_FILL:
		var stroke Stroke
		if !r.decode(from, packet, &stroke) {
			return
		}
		r.handleFill(from, stroke)

	case EVENT_CLEAR_CANVAS:
		r.handleClear(from)

	case EVENT_UNDO_STROKE:
		r.handleUndo(from)

	case EVENT_CHAT_MESSAGE:
		var req ChatMessageRequest
		if !r.decode(from, packet, &req) {
			return
		}
		r.handleChat(from, req.Message)

	default:
		r.logger.Debug().Str("conn", from).Str("event", packet.Event).Msg("unknown event")
	}
}

func (r *Room) decode(from string, packet ClientPacket, v any) bool {
	if err := json.Unmarshal(packet.Data, v); err != nil {
		r.logger.Debug().Err(err).Str("conn", from).Str("event", packet.Event).Msg("malformed payload")
		return false
	}
	return true
}

func (r *Room) handleStart(from string) {
	player := r.playerById(from)
	if r.phase != PHASE_WAITING || !player.IsHost || len(r.players) < 2 {
		r.logger.Debug().Str("conn", from).Stringer("phase", r.phase).Msg("start refused")
		return
	}
	r.startGame()
}

func (r *Room) handleChooseWord(from, word string) {
	if r.phase != PHASE_PICKING || !r.isDrawer(from) {
		return
	}
	if !slices.Contains(r.wordChoices, word) {
		r.logger.Debug().Str("conn", from).Msg("chosen word not among candidates")
		return
	}
	r.beginDrawing(word)
}

func (r *Room) handleDraw(from string, stroke Stroke) {
	if r.phase != PHASE_DRAWING || !r.isDrawer(from) {
		return
	}
	r.drawingData = append(r.drawingData, stroke)
	r.broadcast(MakePacketDraw(stroke), from)
}

func (r *Room) handleFill(from string, stroke Stroke) {
	if r.phase != PHASE_DRAWING || !r.isDrawer(from) {
		return
	}
	stroke.Type = STROKE_FILL
	r.drawingData = append(r.drawingData, stroke)
	r.broadcast(MakePacketFill(stroke), from)
}

// canEditCanvas: during a game only the drawer owns the canvas.
func (r *Room) canEditCanvas(from string) bool {
	if r.phase.inGame() {
		return r.isDrawer(from)
	}
	return true
}

func (r *Room) handleClear(from string) {
	if !r.canEditCanvas(from) {
		return
	}
	r.drawingData = nil
	r.broadcast(MakePacketClearCanvas(), from)
}

func (r *Room) handleUndo(from string) {
	if !r.canEditCanvas(from) {
		return
	}
	r.drawingData = UndoLastStroke(r.drawingData)
	r.broadcast(MakePacketRedrawCanvas(slices.Clone(r.drawingData)))
}

// UndoLastStroke drops everything from the last stroke start onwards.
func UndoLastStroke(data []Stroke) []Stroke {
	for i := len(data) - 1; i >= 0; i-- {
		if data[i].Type == STROKE_START {
			return data[:i]
		}
	}
	return data
}

func (r *Room) handleChat(from, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	player := r.playerById(from)

	if r.isDrawer(from) {
		r.broadcast(MakePacketChat(player.Name, message, CHAT_PLAIN))
		return
	}

	if player.HasGuessed {
		packet := MakePacketChat(player.Name, message, CHAT_GUESSED)
		for _, p := range r.players {
			if p.HasGuessed || r.isDrawer(p.Id) {
				r.sendTo(p.Id, packet)
			}
		}
		return
	}

	if r.phase != PHASE_DRAWING {
		r.broadcast(MakePacketChat(player.Name, message, CHAT_PLAIN))
		return
	}

	switch EvaluateGuess(message, r.currentWord) {
	case GUESS_CORRECT:
		r.acceptGuess(player)
	case GUESS_CLOSE:
		r.broadcast(MakePacketChat(player.Name, message, CHAT_CLOSE))
	default:
		r.broadcast(MakePacketChat(player.Name, message, CHAT_PLAIN))
	}
}

func (r *Room) acceptGuess(player *Player) {
	drawer := r.drawer()

	points := GuessPoints(r.timeLeft, r.configs.DrawTime)
	player.HasGuessed = true
	player.Score += points
	drawer.Score += DrawerBonus(points)
	r.correctGuessers = append(r.correctGuessers, player.Id)

	r.logger.Debug().
		Str("conn", player.Id).
		Int("points", points).
		Msg("correct guess")

	r.broadcast(MakePacketCorrectGuess(*player, r.snapshot()))
	r.sendTo(player.Id, MakePacketChat(player.Name, fmt.Sprintf("You guessed it! +%d points", points), CHAT_CORRECT))

	if r.allGuessed() {
		r.endTurn()
	}
}
