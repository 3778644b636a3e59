package room

import (
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/greenfelt/casino/internal/blackjack"
	"github.com/greenfelt/casino/internal/game"
	"github.com/greenfelt/casino/internal/holdem"
	"github.com/greenfelt/casino/internal/roulette"
)

// Room is one isolated game instance: a host, up to MaxSeats players (humans
// plus backfilled bots), optional spectators, and at most one live engine.
// All mutation is serialised through mu; actions are applied in the order
// the lock admits them and are never interleaved.
type Room struct {
	ID       string
	GameType game.Type

	mu         sync.Mutex
	host       *game.Participant
	players    []*game.Participant
	spectators map[string]game.Participant
	started    bool
	closed     bool
	settled    bool
	engine     game.Engine
	spinTimer  *quartz.Timer
	rng        *rand.Rand
	logger     *log.Logger
	startedAt  time.Time
	record     *Record

	blackjackBot *blackjack.Bot
	pokerBot     *holdem.Bot
	rouletteBot  *roulette.Bot
}

// Record is the audit shape a completed room yields for external
// persistence: one game record plus per-participant net results and the
// ordered event log.
type Record struct {
	RoomID    string                 `json:"roomId"`
	GameType  game.Type              `json:"gameType"`
	Host      string                 `json:"host"`
	StartedAt time.Time              `json:"startedAt"`
	EndedAt   time.Time              `json:"endedAt"`
	Results   map[string]game.Result `json:"results"`
	Events    []game.Event           `json:"events"`
}

// Update carries the two projections emitted after every successful
// mutation, plus the results map once the game reaches its terminal state.
type Update struct {
	Public    game.View
	Spectator game.View
	Results   map[string]game.Result
}

// participant returns the seated player with the given id.
func (r *Room) participant(id string) (*game.Participant, bool) {
	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// update snapshots both projections. Callers hold r.mu.
func (r *Room) update() Update {
	u := Update{}
	if r.engine != nil {
		u.Public = r.engine.PublicView()
		u.Spectator = r.engine.SpectatorView()
		if r.settled && r.record != nil {
			u.Results = r.record.Results
		}
	}
	return u
}

// bank adapts the external ledger to the engines' Bank interface and keeps
// each participant's Balance mirror in sync with committed ledger state.
type bank struct {
	ledger Ledger
}

func (b bank) Debit(p *game.Participant, amount int) error {
	newBalance, err := b.ledger.Debit(p.ID, amount)
	if err != nil {
		return err
	}
	if newBalance < 0 {
		panic(fmt.Sprintf("ledger committed negative balance %d for %s", newBalance, p.ID))
	}
	p.Balance = newBalance
	return nil
}

func (b bank) Credit(p *game.Participant, amount int) error {
	newBalance, err := b.ledger.Credit(p.ID, amount)
	if err != nil {
		return err
	}
	p.Balance = newBalance
	return nil
}

// runBots lets every bot due to act take its turn. Called under r.mu after
// any successful mutation so bot play is interleaved with human actions in
// a deterministic order.
func (r *Room) runBots() {
	switch e := r.engine.(type) {
	case *holdem.Engine:
		for {
			id, ok := e.CurrentBot()
			if !ok {
				return
			}
			a := r.pokerBot.Decide(e, id)
			if err := e.Apply(a); err != nil {
				r.logger.Warn("bot action rejected, folding", "player", id, "action", a.Name, "err", err)
				if err := e.Apply(game.Action{Name: game.ActFold, Player: id}); err != nil {
					r.logger.Error("bot fold rejected", "player", id, "err", err)
					return
				}
			}
		}

	case *blackjack.Engine:
		for {
			progressed := false
			for _, p := range r.players {
				if !p.IsBot {
					continue
				}
				switch {
				case e.NeedsBet(p.ID):
					amount := r.blackjackBot.BetAmount(p)
					if amount <= 0 {
						continue
					}
					if err := e.Apply(game.Action{Name: game.ActBet, Player: p.ID, Amount: amount}); err != nil {
						r.logger.Warn("bot bet rejected", "player", p.ID, "err", err)
						continue
					}
					progressed = true
				case e.CanAct(p.ID):
					a := r.blackjackBot.Decide(e, p.ID)
					if err := e.Apply(a); err != nil {
						r.logger.Warn("bot action rejected, standing", "player", p.ID, "err", err)
						_ = e.Apply(game.Action{Name: game.ActStand, Player: p.ID})
					}
					progressed = true
				}
			}
			if !progressed {
				return
			}
		}

	case *roulette.Engine:
		if e.CurrentPhase() != roulette.PhaseBetting {
			return
		}
		for _, p := range r.players {
			if !p.IsBot || e.HasBets(p.ID) {
				continue
			}
			for _, a := range r.rouletteBot.Bets(p) {
				if err := e.Apply(a); err != nil {
					r.logger.Warn("bot bet rejected", "player", p.ID, "err", err)
				}
			}
		}
	}
}

// settle applies terminal results exactly once: payouts are credited through
// the ledger and the room's audit record is built. Re-settling is a no-op,
// so a duplicate finalize can never double-apply payouts. Called under r.mu.
func (r *Room) settle(ledger Ledger, clock quartz.Clock) error {
	if r.engine == nil || !r.engine.Terminal() || r.settled {
		return nil
	}
	results, err := r.engine.Finalize()
	if err != nil {
		return err
	}

	b := bank{ledger: ledger}
	for _, p := range r.players {
		res, ok := results[p.ID]
		if !ok || res.Payout <= 0 {
			continue
		}
		if err := b.Credit(p, res.Payout); err != nil {
			return fmt.Errorf("crediting payout for %s: %w", p.ID, err)
		}
	}
	r.settled = true
	r.record = &Record{
		RoomID:    r.ID,
		GameType:  r.GameType,
		Host:      r.host.ID,
		StartedAt: r.startedAt,
		EndedAt:   clock.Now(),
		Results:   results,
		Events:    r.engine.Events(),
	}
	r.logger.Info("game settled", "players", len(r.players))
	return nil
}

// teardown marks the room closed and cancels any pending spin timer. The
// deferred roulette finalize checks phase before mutating, so a timer that
// already fired becomes a no-op. Called under r.mu.
func (r *Room) teardown(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	if r.spinTimer != nil {
		r.spinTimer.Stop()
		r.spinTimer = nil
	}
	r.logger.Info("room closed", "reason", reason)
}
