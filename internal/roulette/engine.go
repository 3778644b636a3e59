// Package roulette implements the roulette state machine: an open betting
// phase, a timed spin, and per-bet payout computation over a European wheel.
package roulette

import (
	"fmt"
	rand "math/rand/v2"
	"time"

	"github.com/coder/quartz"
	"github.com/greenfelt/casino/internal/game"
)

// Phase is the game's state machine position: betting, spinning, finished.
type Phase string

const (
	PhaseBetting  Phase = "betting"
	PhaseSpinning Phase = "spinning"
	PhaseFinished Phase = "finished"
)

// BetKind enumerates the accepted bet types.
type BetKind string

const (
	BetStraight BetKind = "straight"
	BetRed      BetKind = "red"
	BetBlack    BetKind = "black"
	BetOdd      BetKind = "odd"
	BetEven     BetKind = "even"
	BetLow      BetKind = "low"
	BetHigh     BetKind = "high"
	BetDozen1   BetKind = "dozen1"
	BetDozen2   BetKind = "dozen2"
	BetDozen3   BetKind = "dozen3"
	BetColumn1  BetKind = "column1"
	BetColumn2  BetKind = "column2"
	BetColumn3  BetKind = "column3"
)

var validKinds = map[BetKind]bool{
	BetStraight: true, BetRed: true, BetBlack: true, BetOdd: true,
	BetEven: true, BetLow: true, BetHigh: true, BetDozen1: true,
	BetDozen2: true, BetDozen3: true, BetColumn1: true, BetColumn2: true,
	BetColumn3: true,
}

// Bet is one wager. Number is meaningful only for straight bets.
type Bet struct {
	Kind   BetKind `json:"type"`
	Amount int     `json:"amount"`
	Number int     `json:"value,omitempty"`
}

// BetResult is the settled outcome of one bet. Payout excludes the returned
// stake (a winning straight pays exactly 35x the amount); Net is Payout for
// wins and -Amount for losses.
type BetResult struct {
	Bet    Bet  `json:"bet"`
	Won    bool `json:"won"`
	Payout int  `json:"payout"`
	Net    int  `json:"netWin"`
}

// SpinDuration is the default wheel spin time before results land.
const SpinDuration = 5 * time.Second

type seat struct {
	player *game.Participant
	bets   []Bet
}

// Engine is the roulette state machine for one round. Not safe for
// concurrent use; the room orchestrator serialises access, including the
// deferred FinishSpin call it schedules when the wheel starts.
type Engine struct {
	game.EventLog

	bank    game.Bank
	rng     *rand.Rand
	clock   quartz.Clock
	seats   []*seat
	byID    map[string]*seat
	phase   Phase
	winning int
	color   Color
	spunAt  time.Time
	spinFor time.Duration
	results map[string]game.Result
	perBet  map[string][]BetResult
}

// New builds an engine in the betting phase.
func New(players []*game.Participant, bank game.Bank, rng *rand.Rand, clock quartz.Clock) (*Engine, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: roulette needs at least 1 player", game.ErrInvalidAction)
	}
	e := &Engine{
		bank:    bank,
		rng:     rng,
		clock:   clock,
		byID:    make(map[string]*seat),
		phase:   PhaseBetting,
		spinFor: SpinDuration,
	}
	for _, p := range players {
		s := &seat{player: p}
		e.seats = append(e.seats, s)
		e.byID[p.ID] = s
	}
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhaseBetting)})
	return e, nil
}

// Apply routes one player action into the round.
func (e *Engine) Apply(a game.Action) error {
	s, ok := e.byID[a.Player]
	if !ok {
		return fmt.Errorf("%w: unknown player %s", game.ErrInvalidAction, a.Player)
	}

	switch a.Name {
	case game.ActBet:
		return e.placeBet(s, BetKind(a.BetKind), a.Amount, a.Number)
	case game.ActRemoveBet:
		return e.removeBet(s, a.Index)
	case game.ActSpin:
		return e.spin()
	default:
		return fmt.Errorf("%w: %q is not a roulette action", game.ErrInvalidAction, a.Name)
	}
}

// placeBet appends a wager to the player's ordered bet list.
func (e *Engine) placeBet(s *seat, kind BetKind, amount, number int) error {
	if e.phase != PhaseBetting {
		return fmt.Errorf("%w: bets close once the wheel spins", game.ErrWrongPhase)
	}
	if !validKinds[kind] {
		return fmt.Errorf("%w: unknown bet type %q", game.ErrInvalidAction, kind)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: bet must be positive", game.ErrInvalidAction)
	}
	if amount > s.player.Balance {
		return fmt.Errorf("%w: bet %d exceeds balance %d", game.ErrInsufficientFunds, amount, s.player.Balance)
	}
	if kind == BetStraight && (number < 0 || number > 36) {
		return fmt.Errorf("%w: straight bets need a number from 0 to 36", game.ErrInvalidAction)
	}
	if err := e.bank.Debit(s.player, amount); err != nil {
		return err
	}
	s.bets = append(s.bets, Bet{Kind: kind, Amount: amount, Number: number})
	e.Record(game.Event{Type: game.EventBet, Player: s.player.ID, Amount: amount, Detail: string(kind)})
	return nil
}

// removeBet cancels a wager by position and refunds its stake.
func (e *Engine) removeBet(s *seat, index int) error {
	if e.phase != PhaseBetting {
		return fmt.Errorf("%w: bets are locked", game.ErrWrongPhase)
	}
	if index < 0 || index >= len(s.bets) {
		return fmt.Errorf("%w: no bet at index %d", game.ErrInvalidAction, index)
	}
	bet := s.bets[index]
	if err := e.bank.Credit(s.player, bet.Amount); err != nil {
		return err
	}
	s.bets = append(s.bets[:index], s.bets[index+1:]...)
	e.Record(game.Event{Type: game.EventAction, Player: s.player.ID, Amount: bet.Amount, Detail: "remove-bet"})
	return nil
}

// spin draws the winning number and moves to the spinning phase. The caller
// (the room) schedules the deferred FinishSpin; the engine itself never
// blocks.
func (e *Engine) spin() error {
	if e.phase != PhaseBetting {
		return fmt.Errorf("%w: wheel already spun", game.ErrWrongPhase)
	}
	total := 0
	for _, s := range e.seats {
		total += len(s.bets)
	}
	if total == 0 {
		return fmt.Errorf("%w: cannot spin with no bets placed", game.ErrInvalidAction)
	}

	e.phase = PhaseSpinning
	e.winning = e.rng.IntN(37)
	e.color = ColorOf(e.winning)
	e.spunAt = e.clock.Now()
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhaseSpinning)})
	return nil
}

// SetSpinDuration overrides the default spin time. It has no effect once
// the wheel has spun.
func (e *Engine) SetSpinDuration(d time.Duration) {
	if d > 0 {
		e.spinFor = d
	}
}

// Spinning reports whether the wheel is mid-spin.
func (e *Engine) Spinning() bool {
	return e.phase == PhaseSpinning
}

// FinishSpin lands the wheel: the round finishes and every bet settles.
// Calling it outside the spinning phase is a no-op, which makes the room's
// deferred timer safe against races with teardown.
func (e *Engine) FinishSpin() {
	if e.phase != PhaseSpinning {
		return
	}
	e.phase = PhaseFinished
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhaseFinished), Detail: fmt.Sprintf("winning number %d (%s)", e.winning, e.color)})
	e.computeResults()
}

func (e *Engine) computeResults() {
	e.results = make(map[string]game.Result)
	e.perBet = make(map[string][]BetResult)

	for _, s := range e.seats {
		totalNet, totalPayout := 0, 0
		for _, bet := range s.bets {
			br := e.settleBet(bet)
			e.perBet[s.player.ID] = append(e.perBet[s.player.ID], br)
			totalNet += br.Net
			if br.Won {
				// Stake comes back along with the winnings.
				totalPayout += bet.Amount + br.Payout
			}
		}
		outcome := "lose"
		if totalNet > 0 {
			outcome = "win"
		} else if totalNet == 0 {
			outcome = "push"
		}
		e.results[s.player.ID] = game.Result{Outcome: outcome, Net: totalNet, Payout: totalPayout}
		e.Record(game.Event{Type: game.EventResult, Player: s.player.ID, Amount: totalNet, Detail: outcome})
	}
}

// settleBet computes a single bet's outcome against the winning number.
func (e *Engine) settleBet(bet Bet) BetResult {
	n := e.winning
	won := false
	multiplier := 0

	switch bet.Kind {
	case BetStraight:
		won = n == bet.Number
		multiplier = 35
	case BetRed:
		won = e.color == Red
		multiplier = 1
	case BetBlack:
		won = e.color == Black
		multiplier = 1
	case BetOdd:
		won = n > 0 && n%2 == 1
		multiplier = 1
	case BetEven:
		won = n > 0 && n%2 == 0
		multiplier = 1
	case BetLow:
		won = n >= 1 && n <= 18
		multiplier = 1
	case BetHigh:
		won = n >= 19 && n <= 36
		multiplier = 1
	case BetDozen1:
		won = n >= 1 && n <= 12
		multiplier = 2
	case BetDozen2:
		won = n >= 13 && n <= 24
		multiplier = 2
	case BetDozen3:
		won = n >= 25 && n <= 36
		multiplier = 2
	case BetColumn1:
		won = n > 0 && (n-1)%3 == 0
		multiplier = 2
	case BetColumn2:
		won = n > 0 && (n-2)%3 == 0
		multiplier = 2
	case BetColumn3:
		won = n > 0 && n%3 == 0
		multiplier = 2
	}

	if !won {
		return BetResult{Bet: bet, Net: -bet.Amount}
	}
	payout := bet.Amount * multiplier
	return BetResult{Bet: bet, Won: true, Payout: payout, Net: payout}
}

// Terminal reports whether the round is over.
func (e *Engine) Terminal() bool {
	return e.phase == PhaseFinished
}

// Finalize returns the per-player results. Calling it again returns the same
// map; payouts are never recomputed.
func (e *Engine) Finalize() (map[string]game.Result, error) {
	if e.results == nil {
		return nil, fmt.Errorf("%w: round is not finished", game.ErrInvalidAction)
	}
	out := make(map[string]game.Result, len(e.results))
	for id, r := range e.results {
		out[id] = r
	}
	return out, nil
}

// CurrentPhase returns the round's phase.
func (e *Engine) CurrentPhase() Phase {
	return e.phase
}

// HasBets reports whether the player has any wagers down.
func (e *Engine) HasBets(playerID string) bool {
	return len(e.byID[playerID].bets) > 0
}
