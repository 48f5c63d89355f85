package game

import "math"

const (
	BASE_GUESS_POINTS  = 100
	BONUS_GUESS_POINTS = 400
	DRAWER_SHARE       = 0.25
)

// GuessPoints awards more points the earlier the word is found.
func GuessPoints(timeLeft, drawTime int) int {
	if drawTime <= 0 || timeLeft <= 0 {
		return BASE_GUESS_POINTS
	}
	ratio := float64(timeLeft) / float64(drawTime)
	return int(math.Round(BASE_GUESS_POINTS + BONUS_GUESS_POINTS*ratio))
}

// DrawerBonus is the drawer's cut of a single correct guess.
func DrawerBonus(points int) int {
	return int(math.Round(float64(points) * DRAWER_SHARE))
}
