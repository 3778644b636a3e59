package game

import "errors"

// Sentinel errors forming the recoverable error taxonomy. Engine and
// orchestrator errors wrap one of these so callers can classify failures
// with errors.Is without parsing messages.
var (
	// ErrInvalidAction covers actions that are not legal in the current
	// phase or for the actor's status: acting out of turn, betting below
	// the minimum, raising below the last bet.
	ErrInvalidAction = errors.New("invalid action")

	// ErrWrongPhase is a narrower InvalidAction for actions arriving in the
	// wrong game phase.
	ErrWrongPhase = errors.New("wrong phase")

	ErrInsufficientFunds = errors.New("insufficient funds")

	// Orchestrator-level failures with no engine involvement.
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room full")
	ErrGameStarted  = errors.New("game already started")
	ErrNotHost      = errors.New("only the host can start the game")

	// ErrInvariant marks a programming defect (deck exhausted, duplicate
	// finalize, negative balance after commit). It is fatal for the room:
	// the orchestrator tears the room down rather than continuing with
	// corrupted state.
	ErrInvariant = errors.New("invariant violation")
)
