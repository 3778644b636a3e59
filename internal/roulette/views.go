package roulette

import (
	"github.com/greenfelt/casino/internal/game"
)

// TableView is the broadcast projection of a roulette round. The winning
// number and its color appear only once the round has finished.
type TableView struct {
	Phase         string     `json:"phase"`
	Seats         []SeatView `json:"players"`
	WinningNumber *int       `json:"winningNumber,omitempty"`
	WinningColor  Color      `json:"winningColor,omitempty"`
	SpinRemaining int64      `json:"spinRemainingMs,omitempty"`
}

// SeatView is one player's slice of the projection.
type SeatView struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Bets       []Bet        `json:"bets"`
	TotalBet   int          `json:"totalBet"`
	Result     *game.Result `json:"result,omitempty"`
	BetResults []BetResult  `json:"betResults,omitempty"`
}

// PublicView returns the broadcast projection. Roulette has no hidden
// per-player information, so the spectator view is identical.
func (e *Engine) PublicView() game.View {
	v := TableView{Phase: string(e.phase)}
	for _, s := range e.seats {
		sv := SeatView{ID: s.player.ID, Name: s.player.Name, Bets: s.bets}
		for _, b := range s.bets {
			sv.TotalBet += b.Amount
		}
		if r, ok := e.results[s.player.ID]; ok {
			r := r
			sv.Result = &r
			sv.BetResults = e.perBet[s.player.ID]
		}
		v.Seats = append(v.Seats, sv)
	}

	switch e.phase {
	case PhaseFinished:
		n := e.winning
		v.WinningNumber = &n
		v.WinningColor = e.color
	case PhaseSpinning:
		remaining := e.spinFor - e.clock.Now().Sub(e.spunAt)
		if remaining < 0 {
			remaining = 0
		}
		v.SpinRemaining = remaining.Milliseconds()
	}
	return v
}

// SpectatorView matches the public view; see PublicView.
func (e *Engine) SpectatorView() game.View {
	return e.PublicView()
}
