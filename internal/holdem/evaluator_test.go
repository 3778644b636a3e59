package holdem

import (
	"testing"

	"github.com/greenfelt/casino/internal/deck"
	"github.com/stretchr/testify/assert"
)

func c(suit deck.Suit, rank deck.Rank) deck.Card {
	return deck.Card{Suit: suit, Rank: rank}
}

func TestEvaluateCategories(t *testing.T) {
	tests := []struct {
		name     string
		cards    []deck.Card
		category Category
		value    int
	}{
		{
			name: "straight flush",
			cards: []deck.Card{
				c(deck.Spades, deck.Nine), c(deck.Spades, deck.Eight),
				c(deck.Spades, deck.Seven), c(deck.Spades, deck.Six),
				c(deck.Spades, deck.Five), c(deck.Hearts, deck.Two), c(deck.Clubs, deck.Three),
			},
			category: StraightFlush,
			value:    9,
		},
		{
			name: "four of a kind",
			cards: []deck.Card{
				c(deck.Spades, deck.King), c(deck.Hearts, deck.King),
				c(deck.Diamonds, deck.King), c(deck.Clubs, deck.King),
				c(deck.Spades, deck.Four), c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.Two),
			},
			category: FourOfAKind,
			value:    13,
		},
		{
			name: "full house",
			cards: []deck.Card{
				c(deck.Spades, deck.Jack), c(deck.Hearts, deck.Jack),
				c(deck.Diamonds, deck.Jack), c(deck.Clubs, deck.Four),
				c(deck.Spades, deck.Four), c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.Two),
			},
			category: FullHouse,
			value:    11,
		},
		{
			name: "flush",
			cards: []deck.Card{
				c(deck.Hearts, deck.Ace), c(deck.Hearts, deck.Ten),
				c(deck.Hearts, deck.Seven), c(deck.Hearts, deck.Five),
				c(deck.Hearts, deck.Two), c(deck.Spades, deck.King), c(deck.Clubs, deck.King),
			},
			category: Flush,
			value:    14,
		},
		{
			name: "straight",
			cards: []deck.Card{
				c(deck.Spades, deck.Nine), c(deck.Hearts, deck.Eight),
				c(deck.Diamonds, deck.Seven), c(deck.Clubs, deck.Six),
				c(deck.Spades, deck.Five), c(deck.Hearts, deck.Three), c(deck.Clubs, deck.Two),
			},
			category: Straight,
			value:    9,
		},
		{
			// The tie-break value is the highest of all seven ranks, even
			// when that card sits outside the straight.
			name: "straight with a higher off-straight card",
			cards: []deck.Card{
				c(deck.Spades, deck.Nine), c(deck.Hearts, deck.Eight),
				c(deck.Diamonds, deck.Seven), c(deck.Clubs, deck.Six),
				c(deck.Spades, deck.Five), c(deck.Hearts, deck.King), c(deck.Clubs, deck.King),
			},
			category: Straight,
			value:    13,
		},
		{
			name: "broadway straight",
			cards: []deck.Card{
				c(deck.Spades, deck.Ace), c(deck.Hearts, deck.King),
				c(deck.Diamonds, deck.Queen), c(deck.Clubs, deck.Jack),
				c(deck.Spades, deck.Ten), c(deck.Hearts, deck.Two), c(deck.Clubs, deck.Three),
			},
			category: Straight,
			value:    14,
		},
		{
			name: "three of a kind",
			cards: []deck.Card{
				c(deck.Spades, deck.Eight), c(deck.Hearts, deck.Eight),
				c(deck.Diamonds, deck.Eight), c(deck.Clubs, deck.King),
				c(deck.Spades, deck.Four), c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.Two),
			},
			category: ThreeOfAKind,
			value:    8,
		},
		{
			name: "two pair keeps the higher pair as the tie-break",
			cards: []deck.Card{
				c(deck.Spades, deck.Queen), c(deck.Hearts, deck.Queen),
				c(deck.Diamonds, deck.Six), c(deck.Clubs, deck.Six),
				c(deck.Spades, deck.Four), c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.Two),
			},
			category: TwoPair,
			value:    12,
		},
		{
			name: "pair",
			cards: []deck.Card{
				c(deck.Spades, deck.Ten), c(deck.Hearts, deck.Ten),
				c(deck.Diamonds, deck.Seven), c(deck.Clubs, deck.Five),
				c(deck.Spades, deck.Four), c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.Two),
			},
			category: Pair,
			value:    10,
		},
		{
			name: "high card",
			cards: []deck.Card{
				c(deck.Spades, deck.Ace), c(deck.Hearts, deck.Ten),
				c(deck.Diamonds, deck.Seven), c(deck.Clubs, deck.Five),
				c(deck.Spades, deck.Four), c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.Two),
			},
			category: HighCard,
			value:    14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Evaluate(tt.cards)
			assert.Equal(t, tt.category, h.Category, "category")
			assert.Equal(t, tt.value, h.Value, "tie-break value")
		})
	}
}

// Aces play high only here: A-2-3-4-5 is not a straight.
func TestNoLowAceStraight(t *testing.T) {
	h := Evaluate([]deck.Card{
		c(deck.Spades, deck.Ace), c(deck.Hearts, deck.Two),
		c(deck.Diamonds, deck.Three), c(deck.Clubs, deck.Four),
		c(deck.Spades, deck.Five), c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.Jack),
	})
	assert.Equal(t, HighCard, h.Category)
	assert.Equal(t, 14, h.Value)
}

func TestBeatsAndTies(t *testing.T) {
	flush := Hand{Flush, 14}
	straight := Hand{Straight, 14}
	smallFlush := Hand{Flush, 9}

	assert.True(t, flush.Beats(straight))
	assert.False(t, straight.Beats(flush))
	assert.True(t, flush.Beats(smallFlush))
	assert.True(t, flush.Ties(Hand{Flush, 14}))
	assert.False(t, flush.Ties(smallFlush))
}

// Same category and tie-break value are exact ties even when real poker
// rules would separate the hands on kickers.
func TestKickersDoNotSeparateHands(t *testing.T) {
	a := Evaluate([]deck.Card{
		c(deck.Spades, deck.Ten), c(deck.Hearts, deck.Ten),
		c(deck.Diamonds, deck.Ace), c(deck.Clubs, deck.Five),
		c(deck.Spades, deck.Four),
	})
	b := Evaluate([]deck.Card{
		c(deck.Clubs, deck.Ten), c(deck.Diamonds, deck.Ten),
		c(deck.Hearts, deck.King), c(deck.Spades, deck.Six),
		c(deck.Hearts, deck.Three),
	})
	assert.True(t, a.Ties(b))
}
