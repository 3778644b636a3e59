package holdem

import (
	"github.com/greenfelt/casino/internal/deck"
	"github.com/greenfelt/casino/internal/game"
)

// TableView is the broadcast projection of a poker hand.
type TableView struct {
	Phase     string      `json:"phase"`
	Pot       int         `json:"pot"`
	Community []deck.Card `json:"communityCards"`
	LastBet   int         `json:"lastBet"`
	ToAct     string      `json:"toAct,omitempty"`
	Seats     []SeatView  `json:"players"`
}

// SeatView is one player's slice of the projection.
type SeatView struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Hand   []deck.Card  `json:"hand,omitempty"`
	Bet    int          `json:"bet"`
	Status Status       `json:"status"`
	Result *game.Result `json:"result,omitempty"`
}

// PublicView returns the player-facing projection. All hole cards are
// visible to everyone in the room; opponents' cards are not hidden
// pre-showdown. Known gap.
func (e *Engine) PublicView() game.View {
	return e.view(true)
}

// SpectatorView returns the projection for non-participants: hole cards stay
// masked until the hand is finished.
func (e *Engine) SpectatorView() game.View {
	return e.view(e.phase == PhaseFinished)
}

func (e *Engine) view(showHands bool) TableView {
	v := TableView{
		Phase:     string(e.phase),
		Pot:       e.pot,
		Community: e.board,
		LastBet:   e.lastBet,
	}
	if e.phase != PhaseFinished {
		v.ToAct = e.seats[e.current].player.ID
	}
	for _, s := range e.seats {
		sv := SeatView{
			ID:     s.player.ID,
			Name:   s.player.Name,
			Bet:    s.bet,
			Status: s.status,
		}
		if showHands {
			sv.Hand = s.hole
		}
		if r, ok := e.results[s.player.ID]; ok {
			r := r
			sv.Result = &r
		}
		v.Seats = append(v.Seats, sv)
	}
	return v
}
