package blackjack

import (
	"github.com/greenfelt/casino/internal/deck"
	"github.com/greenfelt/casino/internal/game"
)

// TableView is the broadcast projection of a blackjack round. The dealer's
// second card stays hidden until the round finishes.
type TableView struct {
	Phase       string      `json:"phase"`
	Seats       []SeatView  `json:"players"`
	DealerHand  []deck.Card `json:"dealerHand"`
	DealerHole  bool        `json:"dealerHoleHidden"`
	DealerValue int         `json:"dealerValue,omitempty"`
}

// SeatView is one player's slice of the projection.
type SeatView struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Hand   []deck.Card  `json:"hand"`
	Value  int          `json:"handValue"`
	Bet    int          `json:"bet"`
	Result *game.Result `json:"result,omitempty"`
}

// PublicView returns the player-facing projection.
func (e *Engine) PublicView() game.View {
	v := TableView{Phase: string(e.phase)}
	for _, s := range e.seats {
		sv := SeatView{
			ID:    s.player.ID,
			Name:  s.player.Name,
			Hand:  s.hand,
			Value: HandValue(s.hand),
			Bet:   s.bet,
		}
		if r, ok := e.results[s.player.ID]; ok {
			r := r
			sv.Result = &r
		}
		v.Seats = append(v.Seats, sv)
	}

	switch {
	case len(e.dealer) == 0:
	case e.phase == PhaseFinished:
		v.DealerHand = e.dealer
		v.DealerValue = HandValue(e.dealer)
	default:
		v.DealerHand = e.dealer[:1]
		v.DealerHole = true
	}
	return v
}

// SpectatorView returns the spectator projection. Blackjack hides nothing
// beyond what players already cannot see, so it matches the public view.
func (e *Engine) SpectatorView() game.View {
	return e.PublicView()
}
