package holdem

import (
	rand "math/rand/v2"

	"github.com/greenfelt/casino/internal/game"
)

// Bot decides poker actions for non-human seats. Strong hands raise or call,
// medium hands call cheaply, weak hands fold with an occasional bluff. All
// randomness flows from the injected source so runs are reproducible.
type Bot struct {
	rng *rand.Rand
}

// NewBot creates a bot policy backed by rng.
func NewBot(rng *rand.Rand) *Bot {
	return &Bot{rng: rng}
}

// Decide returns the action the bot takes for its turn.
func (b *Bot) Decide(e *Engine, playerID string) game.Action {
	p := e.byID[playerID].player
	callAmount := e.CallAmount(playerID)
	hand := e.HandFor(playerID)

	switch {
	case hand.Category >= FullHouse:
		// Strong hand: usually raise when the price is reasonable.
		if b.rng.Float64() < 0.7 && callAmount < p.Balance*3/10 {
			raise := min(e.LastBet(), p.Balance*2/10)
			if raise > 0 && e.byID[playerID].bet+raise > e.LastBet() && raise <= p.Balance {
				return game.Action{Name: game.ActRaise, Player: playerID, Amount: raise}
			}
		}
		return game.Action{Name: game.ActCall, Player: playerID}

	case hand.Category >= ThreeOfAKind:
		// Medium hand: call only when it is cheap.
		if callAmount <= p.Balance/10 {
			return game.Action{Name: game.ActCall, Player: playerID}
		}
		return b.checkOrFold(playerID, callAmount)

	default:
		// Weak hand: fold, with a small chance of calling as a bluff.
		if b.rng.Float64() < 0.1 {
			return game.Action{Name: game.ActCall, Player: playerID}
		}
		return b.checkOrFold(playerID, callAmount)
	}
}

// checkOrFold never folds a free hand.
func (b *Bot) checkOrFold(playerID string, callAmount int) game.Action {
	if callAmount == 0 {
		return game.Action{Name: game.ActCheck, Player: playerID}
	}
	return game.Action{Name: game.ActFold, Player: playerID}
}
