// Package holdem implements a Texas-Hold'em-style poker state machine for a
// single hand: blinds, four betting streets, and a showdown over the shared
// simplified evaluator.
package holdem

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/greenfelt/casino/internal/deck"
	"github.com/greenfelt/casino/internal/game"
)

// Phase is the hand's state machine position. Phases only move forward.
type Phase string

const (
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseFinished Phase = "finished"
)

// Status is a seat's standing within the hand.
type Status string

const (
	StatusActive Status = "active"
	StatusFolded Status = "folded"
	StatusAllIn  Status = "all-in"
)

// Config carries the fixed blind sizes.
type Config struct {
	SmallBlind int
	BigBlind   int
}

// DefaultConfig is the standard table stakes.
func DefaultConfig() Config {
	return Config{SmallBlind: 10, BigBlind: 20}
}

type seat struct {
	player      *game.Participant
	hole        []deck.Card
	bet         int // committed this street
	contributed int // committed this hand, for net results
	status      Status
	acted       bool
	hand        *Hand // evaluated at showdown
}

// Engine is the poker state machine for one hand. Not safe for concurrent
// use; the room orchestrator serialises access.
//
// The pot is a single scalar: all-in participants with smaller stacks are not
// isolated into side pots, so a short stack can be over- or under-credited
// relative to strict multi-pot rules when later callers put in more chips.
// This is a known simplification, kept as documented behaviour.
type Engine struct {
	game.EventLog

	cfg     Config
	bank    game.Bank
	cards   *deck.Deck
	seats   []*seat
	byID    map[string]*seat
	board   []deck.Card
	pot     int
	lastBet int
	current int
	dealer  int
	phase   Phase
	results map[string]game.Result
}

// New builds the engine, posts blinds, and deals hole cards. Action starts at
// the seat after the big blind. The blind seats post min(balance, blind); a
// shortfall marks that seat all-in immediately.
func New(players []*game.Participant, bank game.Bank, rng *rand.Rand, cfg Config) (*Engine, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: poker needs at least 2 players", game.ErrInvalidAction)
	}

	e := &Engine{
		cfg:   cfg,
		bank:  bank,
		cards: deck.New(rng),
		byID:  make(map[string]*seat),
		phase: PhasePreflop,
	}
	for _, p := range players {
		s := &seat{player: p, status: StatusActive}
		e.seats = append(e.seats, s)
		e.byID[p.ID] = s
	}

	if err := e.postBlinds(); err != nil {
		return nil, err
	}
	e.dealHoleCards()
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhasePreflop)})
	return e, nil
}

func (e *Engine) postBlinds() error {
	sb := e.seats[(e.dealer+1)%len(e.seats)]
	bb := e.seats[(e.dealer+2)%len(e.seats)]

	if err := e.postBlind(sb, e.cfg.SmallBlind); err != nil {
		return err
	}
	if err := e.postBlind(bb, e.cfg.BigBlind); err != nil {
		return err
	}
	e.lastBet = bb.bet
	e.current = (e.dealer + 3) % len(e.seats)
	return nil
}

func (e *Engine) postBlind(s *seat, blind int) error {
	amount := min(s.player.Balance, blind)
	if err := e.bank.Debit(s.player, amount); err != nil {
		return fmt.Errorf("posting blind for %s: %w", s.player.ID, err)
	}
	s.bet = amount
	s.contributed = amount
	e.pot += amount
	if s.player.Balance == 0 {
		s.status = StatusAllIn
	}
	e.Record(game.Event{Type: game.EventBet, Player: s.player.ID, Amount: amount, Detail: "blind"})
	return nil
}

func (e *Engine) dealHoleCards() {
	for range 2 {
		for _, s := range e.seats {
			s.hole = append(s.hole, e.cards.Draw())
		}
	}
}

// Apply routes one player action into the hand.
func (e *Engine) Apply(a game.Action) error {
	if e.phase == PhaseFinished {
		return fmt.Errorf("%w: hand is finished", game.ErrWrongPhase)
	}
	s, ok := e.byID[a.Player]
	if !ok {
		return fmt.Errorf("%w: unknown player %s", game.ErrInvalidAction, a.Player)
	}
	if s.status != StatusActive {
		return fmt.Errorf("%w: player %s is %s", game.ErrInvalidAction, a.Player, s.status)
	}
	if e.seats[e.current] != s {
		return fmt.Errorf("%w: not %s's turn", game.ErrInvalidAction, a.Player)
	}

	var err error
	switch a.Name {
	case game.ActCall:
		err = e.call(s)
	case game.ActRaise:
		err = e.raise(s, a.Amount)
	case game.ActFold:
		e.fold(s)
	case game.ActCheck:
		err = e.check(s)
	default:
		return fmt.Errorf("%w: %q is not a poker action", game.ErrInvalidAction, a.Name)
	}
	if err != nil {
		return err
	}

	e.Record(game.Event{Type: game.EventAction, Player: a.Player, Amount: a.Amount, Phase: string(e.phase), Detail: a.Name})
	e.advance()
	return nil
}

func (e *Engine) call(s *seat) error {
	need := e.lastBet - s.bet
	actual := min(need, s.player.Balance)
	if actual > 0 {
		if err := e.bank.Debit(s.player, actual); err != nil {
			return err
		}
	}
	s.bet += actual
	s.contributed += actual
	e.pot += actual
	if s.player.Balance == 0 {
		s.status = StatusAllIn
	}
	s.acted = true
	return nil
}

func (e *Engine) raise(s *seat, amount int) error {
	total := s.bet + amount
	if amount <= 0 || total <= e.lastBet {
		return fmt.Errorf("%w: raise to %d does not exceed current bet %d", game.ErrInvalidAction, total, e.lastBet)
	}
	if amount > s.player.Balance {
		return fmt.Errorf("%w: raise of %d exceeds balance %d", game.ErrInsufficientFunds, amount, s.player.Balance)
	}
	if err := e.bank.Debit(s.player, amount); err != nil {
		return err
	}
	s.bet = total
	s.contributed += amount
	e.pot += amount
	e.lastBet = total
	if s.player.Balance == 0 {
		s.status = StatusAllIn
	}

	// A raise reopens the action for everyone still in.
	for _, other := range e.seats {
		if other != s && other.status == StatusActive {
			other.acted = false
		}
	}
	s.acted = true
	return nil
}

func (e *Engine) fold(s *seat) {
	s.status = StatusFolded
	s.acted = true
}

func (e *Engine) check(s *seat) error {
	if s.bet != e.lastBet {
		return fmt.Errorf("%w: cannot check facing a bet of %d", game.ErrInvalidAction, e.lastBet)
	}
	s.acted = true
	return nil
}

// advance moves the hand forward after an applied action: to the next seat,
// the next street, or straight to a finish when at most one player remains.
func (e *Engine) advance() {
	for e.phase != PhaseFinished {
		if e.remaining() <= 1 {
			e.finishByFold()
			return
		}
		if !e.roundComplete() {
			e.moveToNextActive()
			return
		}
		e.nextStreet()
	}
}

// roundComplete reports whether the betting round is settled: every active
// seat has acted and matched the last bet. Vacuously true when nobody can
// act, which lets remaining streets run out for all-in showdowns.
func (e *Engine) roundComplete() bool {
	for _, s := range e.seats {
		if s.status == StatusActive && (!s.acted || s.bet != e.lastBet) {
			return false
		}
	}
	return true
}

func (e *Engine) moveToNextActive() {
	for {
		e.current = (e.current + 1) % len(e.seats)
		if e.seats[e.current].status == StatusActive {
			return
		}
	}
}

func (e *Engine) nextStreet() {
	switch e.phase {
	case PhasePreflop:
		e.phase = PhaseFlop
		e.dealBoard(3)
	case PhaseFlop:
		e.phase = PhaseTurn
		e.dealBoard(1)
	case PhaseTurn:
		e.phase = PhaseRiver
		e.dealBoard(1)
	case PhaseRiver:
		e.showdown()
		return
	}
	e.Record(game.Event{Type: game.EventPhase, Phase: string(e.phase)})

	e.lastBet = 0
	for _, s := range e.seats {
		s.bet = 0
		s.acted = false
	}

	// Rewind to the button; advance finds the first active seat after it,
	// so post-flop action opens there.
	e.current = e.dealer
}

func (e *Engine) dealBoard(n int) {
	for range n {
		e.board = append(e.board, e.cards.Draw())
	}
}

func (e *Engine) remaining() int {
	n := 0
	for _, s := range e.seats {
		if s.status != StatusFolded {
			n++
		}
	}
	return n
}

// finishByFold awards the whole pot to the last seat standing.
func (e *Engine) finishByFold() {
	e.results = make(map[string]game.Result)
	for _, s := range e.seats {
		if s.status != StatusFolded {
			e.results[s.player.ID] = game.Result{
				Outcome: "win",
				Net:     e.pot - s.contributed,
				Payout:  e.pot,
				Detail:  "all opponents folded",
			}
			e.Record(game.Event{Type: game.EventResult, Player: s.player.ID, Amount: e.pot, Detail: "win by fold"})
		} else {
			e.results[s.player.ID] = game.Result{Outcome: "fold", Net: -s.contributed}
		}
	}
	e.finish()
}

// showdown evaluates every remaining hand and splits the pot evenly among the
// seats tied for the best (category, tie-break) pair.
func (e *Engine) showdown() {
	var best Hand
	var winners []*seat
	for _, s := range e.seats {
		if s.status == StatusFolded {
			continue
		}
		h := Evaluate(append(append([]deck.Card{}, s.hole...), e.board...))
		s.hand = &h
		switch {
		case len(winners) == 0 || h.Beats(best):
			best = h
			winners = []*seat{s}
		case h.Ties(best):
			winners = append(winners, s)
		}
	}

	share := e.pot / len(winners)
	e.results = make(map[string]game.Result)
	for _, s := range e.seats {
		switch {
		case s.hand != nil && s.hand.Ties(best):
			e.results[s.player.ID] = game.Result{
				Outcome: "win",
				Net:     share - s.contributed,
				Payout:  share,
				Detail:  s.hand.Category.String(),
			}
			e.Record(game.Event{Type: game.EventResult, Player: s.player.ID, Amount: share, Detail: s.hand.Category.String()})
		case s.hand != nil:
			e.results[s.player.ID] = game.Result{Outcome: "lose", Net: -s.contributed, Detail: s.hand.Category.String()}
		default:
			e.results[s.player.ID] = game.Result{Outcome: "fold", Net: -s.contributed}
		}
	}
	e.finish()
}

func (e *Engine) finish() {
	e.phase = PhaseFinished
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhaseFinished)})
}

// Terminal reports whether the hand is over.
func (e *Engine) Terminal() bool {
	return e.phase == PhaseFinished
}

// Finalize returns the per-player results. Calling it again returns the same
// map; payouts are never recomputed.
func (e *Engine) Finalize() (map[string]game.Result, error) {
	if e.results == nil {
		return nil, fmt.Errorf("%w: hand is not finished", game.ErrInvalidAction)
	}
	out := make(map[string]game.Result, len(e.results))
	for id, r := range e.results {
		out[id] = r
	}
	return out, nil
}

// Pot returns the chips at stake.
func (e *Engine) Pot() int {
	return e.pot
}

// CurrentPhase returns the current street.
func (e *Engine) CurrentPhase() Phase {
	return e.phase
}

// CallAmount returns what the player owes to match the last bet.
func (e *Engine) CallAmount(playerID string) int {
	s, ok := e.byID[playerID]
	if !ok {
		return 0
	}
	return e.lastBet - s.bet
}

// LastBet returns the bet to match in the current round.
func (e *Engine) LastBet() int {
	return e.lastBet
}

// Status returns the seat status for a player.
func (e *Engine) Status(playerID string) Status {
	s, ok := e.byID[playerID]
	if !ok {
		return ""
	}
	return s.status
}

// HandFor evaluates a player's current best hand from their hole cards plus
// whatever community cards are on the board. Used by the bot policy.
func (e *Engine) HandFor(playerID string) Hand {
	s := e.byID[playerID]
	return Evaluate(append(append([]deck.Card{}, s.hole...), e.board...))
}

// CurrentBot returns the bot due to act, if the hand is waiting on one.
func (e *Engine) CurrentBot() (string, bool) {
	if e.phase == PhaseFinished {
		return "", false
	}
	s := e.seats[e.current]
	if s.player.IsBot && s.status == StatusActive {
		return s.player.ID, true
	}
	return "", false
}
