// Package blackjack implements the blackjack state machine: a betting round,
// one dealt hand per player against the dealer, and standard dealer play.
package blackjack

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/greenfelt/casino/internal/deck"
	"github.com/greenfelt/casino/internal/game"
)

// Phase is the game's state machine position, strictly forward-progressing:
// betting, dealing, playing, dealer, finished.
type Phase string

const (
	PhaseBetting  Phase = "betting"
	PhaseDealing  Phase = "dealing"
	PhasePlaying  Phase = "playing"
	PhaseDealer   Phase = "dealer"
	PhaseFinished Phase = "finished"
)

// Hand statuses while a round is live.
const (
	statusStand = "stand"
	statusBust  = "bust"
)

type seat struct {
	player *game.Participant
	hand   []deck.Card
	bet    int
	status string // empty while the player can still act
}

// Engine is the blackjack state machine for one round. Not safe for
// concurrent use; the room orchestrator serialises access.
//
// There is no strict turn order: any player without a standing result may
// act while the round is in the playing phase. The dealer plays
// automatically once every player has stood or busted.
type Engine struct {
	game.EventLog

	bank    game.Bank
	cards   *deck.Deck
	seats   []*seat
	byID    map[string]*seat
	dealer  []deck.Card
	phase   Phase
	results map[string]game.Result
}

// New builds an engine in the betting phase.
func New(players []*game.Participant, bank game.Bank, rng *rand.Rand) (*Engine, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: blackjack needs at least 1 player", game.ErrInvalidAction)
	}
	e := &Engine{
		bank:  bank,
		cards: deck.New(rng),
		byID:  make(map[string]*seat),
		phase: PhaseBetting,
	}
	for _, p := range players {
		s := &seat{player: p}
		e.seats = append(e.seats, s)
		e.byID[p.ID] = s
	}
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhaseBetting)})
	return e, nil
}

// HandValue computes a blackjack hand total: aces count 11, dropping to 1
// one at a time while the total is over 21.
func HandValue(hand []deck.Card) int {
	value, aces := 0, 0
	for _, c := range hand {
		if c.IsAce() {
			aces++
		}
		value += c.BlackjackValue()
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

// Apply routes one player action into the round.
func (e *Engine) Apply(a game.Action) error {
	s, ok := e.byID[a.Player]
	if !ok {
		return fmt.Errorf("%w: unknown player %s", game.ErrInvalidAction, a.Player)
	}

	switch a.Name {
	case game.ActBet:
		return e.placeBet(s, a.Amount)
	case game.ActHit:
		return e.hit(s)
	case game.ActStand:
		return e.stand(s)
	case game.ActDouble:
		return e.doubleDown(s)
	default:
		return fmt.Errorf("%w: %q is not a blackjack action", game.ErrInvalidAction, a.Name)
	}
}

// placeBet records a player's stake. Once every seat has bet, the initial
// deal runs and the round moves to playing.
func (e *Engine) placeBet(s *seat, amount int) error {
	if e.phase != PhaseBetting {
		return fmt.Errorf("%w: bets close once dealing starts", game.ErrWrongPhase)
	}
	if s.bet > 0 {
		return fmt.Errorf("%w: %s already bet %d", game.ErrInvalidAction, s.player.ID, s.bet)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: bet must be positive", game.ErrInvalidAction)
	}
	if amount > s.player.Balance {
		return fmt.Errorf("%w: bet %d exceeds balance %d", game.ErrInsufficientFunds, amount, s.player.Balance)
	}
	if err := e.bank.Debit(s.player, amount); err != nil {
		return err
	}
	s.bet = amount
	e.Record(game.Event{Type: game.EventBet, Player: s.player.ID, Amount: amount})

	if e.allBetsPlaced() {
		e.dealInitial()
	}
	return nil
}

func (e *Engine) allBetsPlaced() bool {
	for _, s := range e.seats {
		if s.bet == 0 {
			return false
		}
	}
	return true
}

// dealInitial gives two cards to every seat and two to the dealer, one of
// which stays hidden in projections until the round finishes.
func (e *Engine) dealInitial() {
	e.phase = PhaseDealing
	for range 2 {
		for _, s := range e.seats {
			s.hand = append(s.hand, e.cards.Draw())
		}
	}
	e.dealer = append(e.dealer, e.cards.Draw(), e.cards.Draw())
	e.phase = PhasePlaying
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhasePlaying)})
}

func (e *Engine) canAct(s *seat) error {
	if e.phase != PhasePlaying {
		return fmt.Errorf("%w: round is %s", game.ErrWrongPhase, e.phase)
	}
	if s.status != "" {
		return fmt.Errorf("%w: %s already has a result (%s)", game.ErrInvalidAction, s.player.ID, s.status)
	}
	return nil
}

// hit draws one card. Going over 21 busts the hand.
func (e *Engine) hit(s *seat) error {
	if err := e.canAct(s); err != nil {
		return err
	}
	s.hand = append(s.hand, e.cards.Draw())
	if HandValue(s.hand) > 21 {
		s.status = statusBust
	}
	e.Record(game.Event{Type: game.EventAction, Player: s.player.ID, Detail: game.ActHit})
	e.maybePlayDealer()
	return nil
}

// stand locks the player's hand.
func (e *Engine) stand(s *seat) error {
	if err := e.canAct(s); err != nil {
		return err
	}
	s.status = statusStand
	e.Record(game.Event{Type: game.EventAction, Player: s.player.ID, Detail: game.ActStand})
	e.maybePlayDealer()
	return nil
}

// doubleDown doubles the stake, draws exactly one card, then stands (or
// busts, if the drawn card puts the hand over).
func (e *Engine) doubleDown(s *seat) error {
	if err := e.canAct(s); err != nil {
		return err
	}
	if s.player.Balance < s.bet {
		return fmt.Errorf("%w: doubling needs %d, balance is %d", game.ErrInsufficientFunds, s.bet, s.player.Balance)
	}
	if err := e.bank.Debit(s.player, s.bet); err != nil {
		return err
	}
	s.bet *= 2
	s.hand = append(s.hand, e.cards.Draw())
	if HandValue(s.hand) > 21 {
		s.status = statusBust
	} else {
		s.status = statusStand
	}
	e.Record(game.Event{Type: game.EventAction, Player: s.player.ID, Amount: s.bet, Detail: game.ActDouble})
	e.maybePlayDealer()
	return nil
}

func (e *Engine) maybePlayDealer() {
	for _, s := range e.seats {
		if s.status == "" {
			return
		}
	}
	e.PlayDealer()
}

// PlayDealer runs the dealer's hand: draw while under 17, never hit at 17 or
// above. The round then finishes and results are computed.
func (e *Engine) PlayDealer() {
	if e.phase != PhasePlaying {
		return
	}
	e.phase = PhaseDealer
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhaseDealer)})
	for HandValue(e.dealer) < 17 {
		e.dealer = append(e.dealer, e.cards.Draw())
	}
	e.phase = PhaseFinished
	e.Record(game.Event{Type: game.EventPhase, Phase: string(PhaseFinished)})
	e.computeResults()
}

func (e *Engine) computeResults() {
	dealerValue := HandValue(e.dealer)
	dealerBusted := dealerValue > 21

	e.results = make(map[string]game.Result)
	for _, s := range e.seats {
		value := HandValue(s.hand)
		natural := value == 21 && len(s.hand) == 2

		var r game.Result
		switch {
		case s.status == statusBust:
			r = game.Result{Outcome: "bust", Net: -s.bet}
		case dealerBusted || value > dealerValue:
			if natural {
				// Natural blackjack pays 3:2.
				r = game.Result{Outcome: "blackjack", Net: s.bet * 3 / 2}
			} else {
				r = game.Result{Outcome: "win", Net: s.bet}
			}
			r.Payout = s.bet + r.Net
		case value == dealerValue:
			r = game.Result{Outcome: "push", Net: 0, Payout: s.bet}
		default:
			r = game.Result{Outcome: "lose", Net: -s.bet}
		}
		e.results[s.player.ID] = r
		e.Record(game.Event{Type: game.EventResult, Player: s.player.ID, Amount: r.Net, Detail: r.Outcome})
	}
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

// DealerUpCard returns the dealer's visible card. Only valid after the deal.
func (e *Engine) DealerUpCard() deck.Card {
	return e.dealer[0]
}

// PlayerValue returns a player's current hand total.
func (e *Engine) PlayerValue(playerID string) int {
	return HandValue(e.byID[playerID].hand)
}

// NeedsBet reports whether the player has yet to place a bet.
func (e *Engine) NeedsBet(playerID string) bool {
	return e.phase == PhaseBetting && e.byID[playerID].bet == 0
}

// CanAct reports whether the player may still hit or stand.
func (e *Engine) CanAct(playerID string) bool {
	s, ok := e.byID[playerID]
	return ok && e.phase == PhasePlaying && s.status == ""
}
