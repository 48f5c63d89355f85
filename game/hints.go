package game

import (
	"math/rand/v2"
	"strings"
)

const HINT_LETTER_RATIO = 0.4

// HintScheduler decides when letters of the secret word are revealed during
// the drawing countdown.
type HintScheduler struct {
	word       []rune
	letters    []int
	revealed   []int
	isRevealed map[int]bool
	totalHints int
	interval   int
	rng        *rand.Rand
}

func NewHintScheduler(word string, drawTime int, rng *rand.Rand) *HintScheduler {
	runes := []rune(word)
	letters := make([]int, 0, len(runes))
	for i, ch := range runes {
		if ch != ' ' {
			letters = append(letters, i)
		}
	}

	totalHints := max(1, int(float64(len(letters))*HINT_LETTER_RATIO))
	interval := max(1, drawTime/(totalHints+1))

	return &HintScheduler{
		word:       runes,
		letters:    letters,
		isRevealed: make(map[int]bool, totalHints),
		totalHints: totalHints,
		interval:   interval,
		rng:        rng,
	}
}

func (h *HintScheduler) TotalHints() int { return h.totalHints }

func (h *HintScheduler) Interval() int { return h.interval }

// Revealed returns the revealed positions in reveal order.
func (h *HintScheduler) Revealed() []int {
	return append([]int(nil), h.revealed...)
}

// Tick is called once per countdown second with the already decremented time
// left. It reports whether a new letter was revealed.
func (h *HintScheduler) Tick(timeLeft int) bool {
	if timeLeft <= 0 || timeLeft%h.interval != 0 {
		return false
	}
	if len(h.revealed) >= h.totalHints {
		return false
	}

	unrevealed := make([]int, 0, len(h.letters))
	for _, i := range h.letters {
		if !h.isRevealed[i] {
			unrevealed = append(unrevealed, i)
		}
	}
	if len(unrevealed) == 0 {
		return false
	}

	pos := unrevealed[h.rng.IntN(len(unrevealed))]
	h.isRevealed[pos] = true
	h.revealed = append(h.revealed, pos)
	return true
}

func (h *HintScheduler) Hint() string {
	return RenderHint(h.word, h.isRevealed)
}

// RenderHint masks every unrevealed letter with an underscore. Spaces become
// two spaces and pieces are separated by one space.
func RenderHint(word []rune, revealed map[int]bool) string {
	parts := make([]string, len(word))
	for i, ch := range word {
		switch {
		case ch == ' ':
			parts[i] = "  "
		case revealed[i]:
			parts[i] = string(ch)
		default:
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}
