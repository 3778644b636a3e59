package blackjack

import (
	rand "math/rand/v2"

	"github.com/greenfelt/casino/internal/game"
)

// Bot plays basic strategy for non-human seats: hit under 12, stand at 17+,
// and in between hit only against a strong dealer up card.
type Bot struct {
	rng *rand.Rand
}

// NewBot creates a bot policy backed by rng.
func NewBot(rng *rand.Rand) *Bot {
	return &Bot{rng: rng}
}

// BetAmount picks the bot's stake for the betting phase: a tenth of its
// balance, floored at the table minimum it can afford.
func (b *Bot) BetAmount(p *game.Participant) int {
	amount := p.Balance / 10
	if amount < 10 {
		amount = min(10, p.Balance)
	}
	return amount
}

// Decide returns hit or stand for the bot's hand.
func (b *Bot) Decide(e *Engine, playerID string) game.Action {
	value := e.PlayerValue(playerID)
	up := e.DealerUpCard().BlackjackValue()

	switch {
	case value < 12:
		return game.Action{Name: game.ActHit, Player: playerID}
	case value >= 17:
		return game.Action{Name: game.ActStand, Player: playerID}
	case up >= 7:
		// Dealer shows 7 through ace: keep drawing on a stiff hand.
		return game.Action{Name: game.ActHit, Player: playerID}
	default:
		return game.Action{Name: game.ActStand, Player: playerID}
	}
}
