// Package game defines the contracts shared by the three game engines and the
// room orchestrator: the closed game-type enum, the engine capability
// interface, the action envelope, and the money-movement interface the
// orchestrator implements against the external ledger.
package game

import "fmt"

// Type identifies one of the three supported games.
type Type int

const (
	Blackjack Type = iota
	Poker
	Roulette
)

// String returns the lowercase game name used in room listings and logs.
func (t Type) String() string {
	switch t {
	case Blackjack:
		return "blackjack"
	case Poker:
		return "poker"
	case Roulette:
		return "roulette"
	default:
		return "unknown"
	}
}

// ParseType maps a game name to its Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "blackjack":
		return Blackjack, nil
	case "poker":
		return Poker, nil
	case "roulette":
		return Roulette, nil
	default:
		return 0, fmt.Errorf("unknown game type %q", s)
	}
}

// Participant is a seat at the table, human or bot. Balance is a local mirror
// of the ledger's authoritative value: engines read it to validate bets and
// the orchestrator refreshes it after every committed ledger mutation.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int    `json:"balance"`
	IsBot   bool   `json:"isBot"`
}

// Action is one inbound request routed to an engine. Fields beyond Name and
// Player are meaningful only for specific actions: Amount for bets and
// raises, BetKind and Number for roulette bets, Index for bet removal.
type Action struct {
	Name    string
	Player  string
	Amount  int
	BetKind string
	Number  int
	Index   int
}

// Action names understood across the engines. Each engine accepts its own
// subset and rejects the rest as invalid.
const (
	ActBet       = "bet"
	ActRemoveBet = "remove-bet"
	ActHit       = "hit"
	ActStand     = "stand"
	ActDouble    = "double"
	ActCall      = "call"
	ActRaise     = "raise"
	ActFold      = "fold"
	ActCheck     = "check"
	ActSpin      = "spin"
)

// Result is one participant's outcome for a finished game. Net is the
// winnings relative to stakes (negative for losses); Payout is the amount
// the orchestrator credits back through the ledger, stake return included.
type Result struct {
	Outcome string `json:"outcome"`
	Net     int    `json:"net"`
	Payout  int    `json:"payout"`
	Detail  string `json:"detail,omitempty"`
}

// View is a role-tailored snapshot of engine state, shaped for broadcast.
// Player views carry full information appropriate to active players;
// spectator views redact hidden cards per game rules.
type View any

// Engine is the capability interface every game state machine implements.
// Engines are not safe for concurrent use; the room orchestrator serialises
// all calls.
type Engine interface {
	// Apply routes one action into the state machine. On failure the engine
	// state is unchanged and the error wraps one of the sentinel kinds.
	Apply(a Action) error

	// PublicView returns the projection for players in the room.
	PublicView() View

	// SpectatorView returns the redacted projection for non-participants.
	SpectatorView() View

	// Terminal reports whether the game has reached its finished phase.
	Terminal() bool

	// Finalize returns the per-participant results. It is idempotent:
	// repeated calls return the same results without recomputing payouts.
	Finalize() (map[string]Result, error)

	// Events returns the ordered audit log of significant transitions.
	Events() []Event
}

// Bank is the engines' window onto the ledger. Debit is the single atomic
// read-check-commit point for stakes: engines call it after their own
// validations and before any state mutation, so a failed debit leaves the
// game untouched. Implementations also refresh the participant's Balance
// mirror.
type Bank interface {
	Debit(p *Participant, amount int) error
	Credit(p *Participant, amount int) error
}
