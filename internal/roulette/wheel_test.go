package roulette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorOf(t *testing.T) {
	assert.Equal(t, Green, ColorOf(0))
	assert.Equal(t, Red, ColorOf(1))
	assert.Equal(t, Black, ColorOf(2))
	assert.Equal(t, Red, ColorOf(32))
	assert.Equal(t, Black, ColorOf(35))
	assert.Equal(t, Red, ColorOf(36))
}

func TestWheelHasEighteenOfEachColor(t *testing.T) {
	counts := make(map[Color]int)
	for n := 0; n <= 36; n++ {
		counts[ColorOf(n)]++
	}
	assert.Equal(t, 1, counts[Green])
	assert.Equal(t, 18, counts[Red])
	assert.Equal(t, 18, counts[Black])
}
