package game

import "strings"

type GuessResult int

const (
	GUESS_MISS GuessResult = iota
	GUESS_CLOSE
	GUESS_CORRECT
)

func normalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EvaluateGuess compares a chat message against the secret word.
func EvaluateGuess(guess, word string) GuessResult {
	g, w := normalizeGuess(guess), normalizeGuess(word)
	if w == "" {
		return GUESS_MISS
	}
	if g == w {
		return GUESS_CORRECT
	}
	if isClose(g, w) {
		return GUESS_CLOSE
	}
	return GUESS_MISS
}

// IsCloseGuess reports whether guess is within the "almost there" distance of word.
func IsCloseGuess(guess, word string) bool {
	return isClose(normalizeGuess(guess), normalizeGuess(word))
}

func isClose(guess, word string) bool {
	guessLen, wordLen := len([]rune(guess)), len([]rune(word))
	if guessLen < 2 || wordLen < 2 {
		return false
	}
	distance := Levenshtein(guess, word)
	return distance == 1 || (wordLen > 5 && distance == 2)
}

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
