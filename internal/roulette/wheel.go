package roulette

import "github.com/thoas/go-funk"

// Color of a pocket on a European wheel.
type Color string

const (
	Green Color = "green"
	Red   Color = "red"
	Black Color = "black"
)

// redNumbers is the fixed membership table of the 18 red pockets; zero is
// green and the remaining 18 pockets are black.
var redNumbers = []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

// ColorOf classifies a pocket number.
func ColorOf(n int) Color {
	if n == 0 {
		return Green
	}
	if funk.ContainsInt(redNumbers, n) {
		return Red
	}
	return Black
}
