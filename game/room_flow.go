package game

import (
	"slices"
	"time"
)

// armTimer replaces the live timer. The fire is delivered through the inbox so
// the transition runs on the room goroutine.
func (r *Room) armTimer(d time.Duration, phase RoomPhase) {
	r.cancelTimer()
	epoch := r.timerEpoch
	r.timer = r.scheduler.AfterFunc(d, func() {
		select {
		case r.events <- timerFire{epoch: epoch, phase: phase}:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) cancelTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerEpoch++
}

func (r *Room) handleTimer(fire timerFire) {
	if fire.epoch != r.timerEpoch || fire.phase != r.phase {
		r.logger.Debug().
			Uint64("epoch", fire.epoch).
			Stringer("phase", fire.phase).
			Msg("stale timer ignored")
		return
	}
	r.timer = nil

	switch r.phase {
	case PHASE_PICKING:
		r.autoPick()
	case PHASE_DRAWING:
		r.tick()
	case PHASE_ROUND_END:
		r.advanceTurn()
	case PHASE_GAME_END:
		r.resetGame()
	}
}

func (r *Room) startGame() {
	r.round = 1
	r.drawerIndex = 0
	r.turnOrder = make([]string, len(r.players))
	for i, p := range r.players {
		r.turnOrder[i] = p.Id
		p.Score = 0
		p.HasGuessed = false
	}

	r.logger.Info().Int("players", len(r.players)).Msg("game started")
	r.broadcast(MakePacketGameStarted(r.round, r.configs.MaxRounds))
	r.startTurn()
}

func (r *Room) startTurn() {
	drawer := r.players[r.drawerIndex]

	words := r.words.Generate(r.configs.WordsCount)
	if len(words) == 0 {
		r.logger.Warn().Str("drawer", drawer.Id).Msg("no words available, skipping turn")
		r.phase = PHASE_PICKING
		r.advanceTurn()
		return
	}

	r.phase = PHASE_PICKING
	r.wordChoices = words
	r.currentWord = ""
	r.drawingData = nil
	r.hints = nil

	r.logger.Info().
		Int("round", r.round).
		Str("drawer", drawer.Id).
		Msg("turn started")

	r.broadcast(MakePacketNewTurn(*drawer, r.round, r.configs.MaxRounds))
	r.sendTo(drawer.Id, MakePacketChooseWord(words))
	r.armTimer(r.configs.PickDuration, PHASE_PICKING)
}

func (r *Room) autoPick() {
	if len(r.wordChoices) == 0 {
		r.advanceTurn()
		return
	}
	word := r.wordChoices[r.rng.IntN(len(r.wordChoices))]
	r.logger.Debug().Msg("pick timeout, word auto-selected")
	r.beginDrawing(word)
}

func (r *Room) beginDrawing(word string) {
	drawer := r.players[r.drawerIndex]

	r.cancelTimer()
	r.phase = PHASE_DRAWING
	r.currentWord = word
	r.drawingData = nil
	r.correctGuessers = nil
	r.timeLeft = r.configs.DrawTime
	r.hints = NewHintScheduler(word, r.configs.DrawTime, r.rng)
	for _, p := range r.players {
		p.HasGuessed = false
	}

	r.broadcast(MakePacketDrawingStarted(*drawer, r.hints.Hint(), len([]rune(word)), r.configs.DrawTime))
	r.sendTo(drawer.Id, MakePacketYourWord(word))
	r.armTimer(time.Second, PHASE_DRAWING)
}

func (r *Room) tick() {
	r.timeLeft--

	if r.hints != nil && r.hints.Tick(r.timeLeft) {
		r.broadcast(MakePacketHint(r.hints.Hint()))
	}
	r.broadcast(MakePacketTimerUpdate(r.timeLeft))

	if r.timeLeft <= 0 {
		r.endTurn()
		return
	}
	r.armTimer(time.Second, PHASE_DRAWING)
}

func (r *Room) endTurn() {
	r.cancelTimer()
	r.phase = PHASE_ROUND_END

	r.logger.Info().
		Int("round", r.round).
		Int("guessers", len(r.correctGuessers)).
		Msg("turn ended")

	r.broadcast(MakePacketTurnEnd(r.currentWord, r.snapshot()))
	r.armTimer(r.configs.TurnEndDelay, PHASE_ROUND_END)
}

func (r *Room) advanceTurn() {
	r.drawerIndex++

	if r.drawerIndex >= len(r.players) {
		r.drawerIndex = 0
		r.round++

		if r.round > r.configs.MaxRounds {
			r.gameOver()
			return
		}
		r.broadcast(MakePacketNewRound(r.round))
	}

	r.startTurn()
}

func (r *Room) gameOver() {
	r.cancelTimer()
	r.phase = PHASE_GAME_END

	sorted := r.snapshot()
	slices.SortStableFunc(sorted, func(a, b Player) int {
		return b.Score - a.Score
	})

	r.logger.Info().Str("winner", sorted[0].Name).Msg("game over")
	r.broadcast(MakePacketGameOver(sorted))
	r.armTimer(r.configs.GameOverDelay, PHASE_GAME_END)
}

// resetGame ends the game-over screen and clears scores for the next game.
func (r *Room) resetGame() {
	for _, p := range r.players {
		p.Score = 0
	}
	r.backToWaiting()
}

// backToWaiting forces the room back to its lobby state. Scores are kept.
func (r *Room) backToWaiting() {
	r.cancelTimer()
	r.phase = PHASE_WAITING
	r.round = 0
	r.drawerIndex = 0
	r.currentWord = ""
	r.wordChoices = nil
	r.hints = nil
	r.timeLeft = 0
	r.turnOrder = nil
	r.correctGuessers = nil
	for _, p := range r.players {
		p.HasGuessed = false
	}

	r.logger.Info().Msg("room back to waiting")
	r.broadcast(MakePacketGameReset(r.snapshot()))
}

// allGuessed reports whether every player but the drawer has found the word.
func (r *Room) allGuessed() bool {
	d := r.drawer()
	for _, p := range r.players {
		if d != nil && p.Id == d.Id {
			continue
		}
		if !p.HasGuessed {
			return false
		}
	}
	return true
}
