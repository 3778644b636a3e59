package holdem

import (
	"sort"

	"github.com/greenfelt/casino/internal/deck"
)

// Category ranks a hand into one of the nine poker hand classes.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable hand description
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// Hand is an evaluated hand: a category plus a single tie-break value (the
// defining rank, or the highest card for high-card/flush/straight hands).
// Hands with equal category and value are exact ties.
//
// Known limitation kept on purpose: there is no full 5-card selection, no
// multi-level kicker comparison, and no low-ace (wheel) straight. Two 7-card
// hands that real poker rules would separate on kickers evaluate as equal
// here.
type Hand struct {
	Category Category `json:"category"`
	Value    int      `json:"value"`
}

// Beats reports whether h outranks other.
func (h Hand) Beats(other Hand) bool {
	if h.Category != other.Category {
		return h.Category > other.Category
	}
	return h.Value > other.Value
}

// Ties reports whether h and other are exactly equal in rank.
func (h Hand) Ties(other Hand) bool {
	return h.Category == other.Category && h.Value == other.Value
}

// Evaluate classifies a pool of 5-7 cards (hole cards plus community).
func Evaluate(cards []deck.Card) Hand {
	suitCounts := make(map[deck.Suit]int)
	valueCounts := make(map[int]int)
	for _, c := range cards {
		suitCounts[c.Suit]++
		valueCounts[c.PokerValue()]++
	}

	values := make([]int, 0, len(valueCounts))
	for v := range valueCounts {
		values = append(values, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(values)))

	isFlush := false
	for _, n := range suitCounts {
		if n >= 5 {
			isFlush = true
			break
		}
	}
	isStraight := hasStraight(values)

	counts := make([]int, 0, len(valueCounts))
	for _, n := range valueCounts {
		counts = append(counts, n)
	}

	switch {
	case isFlush && isStraight:
		return Hand{StraightFlush, values[0]}
	case contains(counts, 4):
		return Hand{FourOfAKind, highestWithCount(valueCounts, 4)}
	case contains(counts, 3) && contains(counts, 2):
		return Hand{FullHouse, highestWithCount(valueCounts, 3)}
	case isFlush:
		return Hand{Flush, values[0]}
	case isStraight:
		return Hand{Straight, values[0]}
	case contains(counts, 3):
		return Hand{ThreeOfAKind, highestWithCount(valueCounts, 3)}
	case countOf(counts, 2) >= 2:
		return Hand{TwoPair, highestWithCount(valueCounts, 2)}
	case contains(counts, 2):
		return Hand{Pair, highestWithCount(valueCounts, 2)}
	default:
		return Hand{HighCard, values[0]}
	}
}

// hasStraight checks for 5 consecutive values among the distinct values,
// sorted descending. Aces are high only; A-2-3-4-5 does not count.
func hasStraight(sorted []int) bool {
	for i := 0; i+4 < len(sorted); i++ {
		if sorted[i]-sorted[i+4] == 4 {
			return true
		}
	}
	return false
}

func highestWithCount(valueCounts map[int]int, count int) int {
	best := 0
	for v, n := range valueCounts {
		if n == count && v > best {
			best = v
		}
	}
	return best
}

func contains(counts []int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func countOf(counts []int, n int) int {
	total := 0
	for _, c := range counts {
		if c == n {
			total++
		}
	}
	return total
}
