package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// Size is the number of cards in a fresh deck.
const Size = 52

// Deck is an ordered sequence of 52 unique cards, shuffled at construction
// and destructively drawn from. A deck is owned by exactly one engine
// instance and is never replenished mid-hand.
type Deck struct {
	cards []Card
}

// New builds a full 52-card deck and shuffles it with the provided source.
func New(rng *rand.Rand) *Deck {
	d := &Deck{cards: make([]Card, 0, Size)}
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, Card{Suit: suit, Rank: rank})
		}
	}
	d.shuffle(rng)
	return d
}

// shuffle applies a Fisher-Yates permutation.
func (d *Deck) shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card. Drawing from an empty deck means
// phase logic has dealt more than 52 cards, which is a programming defect,
// so it panics rather than returning a recoverable error.
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		panic(fmt.Sprintf("deck exhausted after %d draws", Size))
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
