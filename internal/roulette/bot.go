package roulette

import (
	rand "math/rand/v2"

	"github.com/greenfelt/casino/internal/game"
)

// evenMoneyKinds are the bet types bots prefer.
var evenMoneyKinds = []BetKind{BetRed, BetBlack, BetOdd, BetEven, BetLow, BetHigh}

// Bot places wagers for non-human seats: one to three bets sized at a tenth
// of balance, mostly on even-money types with an occasional capped straight
// number.
type Bot struct {
	rng *rand.Rand
}

// NewBot creates a bot policy backed by rng.
func NewBot(rng *rand.Rand) *Bot {
	return &Bot{rng: rng}
}

// Bets returns the wagers the bot wants to place this round.
func (b *Bot) Bets(p *game.Participant) []game.Action {
	count := b.rng.IntN(3) + 1
	amount := p.Balance / 10
	if amount <= 0 {
		return nil
	}

	var actions []game.Action
	for range count {
		if b.rng.Float64() < 0.3 {
			actions = append(actions, game.Action{
				Name:    game.ActBet,
				Player:  p.ID,
				BetKind: string(BetStraight),
				Amount:  min(amount, 50),
				Number:  b.rng.IntN(37),
			})
			continue
		}
		kind := evenMoneyKinds[b.rng.IntN(len(evenMoneyKinds))]
		actions = append(actions, game.Action{
			Name:    game.ActBet,
			Player:  p.ID,
			BetKind: string(kind),
			Amount:  amount,
		})
	}
	return actions
}
