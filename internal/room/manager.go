// Package room orchestrates casino game rooms: lobby listing, seat and
// spectator management, bot backfill, engine lifecycle, and settlement
// against an external ledger. Every room serialises its own mutations, so
// concurrent submissions against one room apply one at a time while
// distinct rooms proceed in parallel.
package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/greenfelt/casino/internal/blackjack"
	"github.com/greenfelt/casino/internal/config"
	"github.com/greenfelt/casino/internal/game"
	"github.com/greenfelt/casino/internal/holdem"
	"github.com/greenfelt/casino/internal/randutil"
	"github.com/greenfelt/casino/internal/roulette"
)

// Ledger is the money store rooms settle against. Debit and Credit return
// the post-transaction balance; Debit must reject any withdrawal that would
// take the account negative.
type Ledger interface {
	CreateAccount(id string, balance int)
	Balance(id string) (int, error)
	Debit(id string, amount int) (int, error)
	Credit(id string, amount int) (int, error)
}

// Broadcaster receives room lifecycle notifications. Implementations must
// not call back into the Manager from the notification.
type Broadcaster interface {
	GameUpdated(roomID string, public, spectator game.View)
	GameFinished(roomID string, results map[string]game.Result)
	RoomClosed(roomID, reason string)
}

// Config carries the orchestrator's tunables.
type Config struct {
	MaxSeats     int
	BotBalance   int
	Poker        holdem.Config
	SpinDuration time.Duration
}

// DefaultConfig mirrors the defaults of the config file schema.
func DefaultConfig() Config {
	return ConfigFrom(config.Default())
}

// ConfigFrom maps the file-level configuration onto orchestrator tunables.
func ConfigFrom(c *config.Config) Config {
	return Config{
		MaxSeats:   c.Casino.MaxSeats,
		BotBalance: c.Casino.BotBalance,
		Poker: holdem.Config{
			SmallBlind: c.Poker.SmallBlind,
			BigBlind:   c.Poker.BigBlind,
		},
		SpinDuration: time.Duration(c.Roulette.SpinSeconds) * time.Second,
	}
}

// Summary is one lobby listing entry.
type Summary struct {
	ID       string `json:"id"`
	GameType string `json:"gameType"`
	Host     string `json:"host"`
	Players  int    `json:"players"`
	MaxSeats int    `json:"maxSeats"`
	Started  bool   `json:"started"`
}

// Manager owns the room table. Its own lock guards only the table; each
// room's lock guards that room's state, and the two are never held together.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	seeds int64

	ledger    Ledger
	clock     quartz.Clock
	logger    *log.Logger
	cfg       Config
	broadcast Broadcaster
	seed      int64
}

// NewManager builds an orchestrator. The seed derives each room's RNG, so a
// fixed seed makes an entire simulation reproducible. broadcast may be nil.
func NewManager(ledger Ledger, clock quartz.Clock, logger *log.Logger, cfg Config, broadcast Broadcaster, seed int64) *Manager {
	return &Manager{
		rooms:     make(map[string]*Room),
		ledger:    ledger,
		clock:     clock,
		logger:    logger,
		cfg:       cfg,
		broadcast: broadcast,
		seed:      seed,
	}
}

// CreateRoom opens a room hosted by the given participant and seats them.
// The host's balance is refreshed from the ledger.
func (m *Manager) CreateRoom(gameType game.Type, host game.Participant) (string, error) {
	balance, err := m.ledger.Balance(host.ID)
	if err != nil {
		return "", err
	}
	host.Balance = balance

	m.mu.Lock()
	m.seeds++
	seed := m.seed + m.seeds
	m.mu.Unlock()

	hostSeat := host
	r := &Room{
		ID:           uuid.NewString(),
		GameType:     gameType,
		host:         &hostSeat,
		players:      []*game.Participant{&hostSeat},
		spectators:   make(map[string]game.Participant),
		rng:          randutil.New(seed),
		blackjackBot: blackjack.NewBot(randutil.New(seed + 1)),
		pokerBot:     holdem.NewBot(randutil.New(seed + 2)),
		rouletteBot:  roulette.NewBot(randutil.New(seed + 3)),
	}
	r.logger = m.logger.With("room", r.ID, "game", gameType)

	m.mu.Lock()
	m.rooms[r.ID] = r
	m.mu.Unlock()

	r.logger.Info("room created", "host", host.ID)
	return r.ID, nil
}

// JoinRoom seats a participant in an open room.
func (m *Manager) JoinRoom(roomID string, p game.Participant) error {
	r, err := m.room(roomID)
	if err != nil {
		return err
	}
	balance, err := m.ledger.Balance(p.ID)
	if err != nil {
		return err
	}
	p.Balance = balance

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return game.ErrRoomNotFound
	}
	if r.started {
		return game.ErrGameStarted
	}
	if len(r.players) >= m.cfg.MaxSeats {
		return game.ErrRoomFull
	}
	if _, ok := r.participant(p.ID); ok {
		return fmt.Errorf("%w: %s is already seated", game.ErrInvalidAction, p.ID)
	}
	seat := p
	r.players = append(r.players, &seat)
	r.logger.Info("player joined", "player", p.ID, "seats", len(r.players))
	return nil
}

// Spectate registers a watcher. Spectators hold no seat, place no bets, and
// receive the masked projection.
func (m *Manager) Spectate(roomID string, p game.Participant) (game.View, error) {
	r, err := m.room(roomID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, game.ErrRoomNotFound
	}
	if _, ok := r.participant(p.ID); ok {
		return nil, fmt.Errorf("%w: seated players cannot spectate", game.ErrInvalidAction)
	}
	r.spectators[p.ID] = p
	r.logger.Debug("spectator joined", "spectator", p.ID)
	if r.engine == nil {
		return nil, nil
	}
	return r.engine.SpectatorView(), nil
}

// StopSpectating removes a watcher. Unknown ids are ignored.
func (m *Manager) StopSpectating(roomID, participantID string) error {
	r, err := m.room(roomID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.spectators, participantID)
	return nil
}

// Leave removes a seated participant. When the last human leaves the room is
// torn down, cancelling any pending spin timer; a mid-game leaver simply
// forfeits whatever the engine already holds of theirs.
func (m *Manager) Leave(roomID, participantID string) error {
	r, err := m.room(roomID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return game.ErrRoomNotFound
	}
	found := false
	for i, p := range r.players {
		if p.ID == participantID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s is not seated", game.ErrInvalidAction, participantID)
	}
	r.logger.Info("player left", "player", participantID)

	humansLeft := 0
	for _, p := range r.players {
		if !p.IsBot {
			humansLeft++
		}
	}
	empty := humansLeft == 0
	if empty {
		r.teardown("all players left")
	}
	r.mu.Unlock()

	if empty {
		m.remove(roomID)
		if m.broadcast != nil {
			m.broadcast.RoomClosed(roomID, "all players left")
		}
	}
	return nil
}

// ListRooms returns the lobby listing for one game type.
func (m *Manager) ListRooms(gameType game.Type) []Summary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	var out []Summary
	for _, r := range rooms {
		r.mu.Lock()
		if !r.closed && r.GameType == gameType {
			out = append(out, Summary{
				ID:       r.ID,
				GameType: r.GameType.String(),
				Host:     r.host.ID,
				Players:  len(r.players),
				MaxSeats: m.cfg.MaxSeats,
				Started:  r.started,
			})
		}
		r.mu.Unlock()
	}
	return out
}

// StartGame begins the room's game. Only the host may start; empty seats are
// backfilled with bots up to MaxSeats, each funded with a fresh ledger
// account, and any bots due to act immediately take their opening turns.
func (m *Manager) StartGame(roomID, requesterID string) (Update, error) {
	r, err := m.room(roomID)
	if err != nil {
		return Update{}, err
	}

	u, err := m.startLocked(r, requesterID)
	m.afterMutation(r, u, err)
	return u, err
}

func (m *Manager) startLocked(r *Room, requesterID string) (u Update, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverInvariant(&u, &err)

	if r.closed {
		return Update{}, game.ErrRoomNotFound
	}
	if requesterID != r.host.ID {
		return Update{}, fmt.Errorf("%w: only %s may start the game", game.ErrNotHost, r.host.ID)
	}
	if r.started {
		return Update{}, game.ErrGameStarted
	}

	for i := len(r.players); i < m.cfg.MaxSeats; i++ {
		bot := &game.Participant{
			ID:      fmt.Sprintf("bot-%s-%d", r.ID[:8], i+1),
			Name:    fmt.Sprintf("Bot %d", i+1),
			Balance: m.cfg.BotBalance,
			IsBot:   true,
		}
		m.ledger.CreateAccount(bot.ID, m.cfg.BotBalance)
		r.players = append(r.players, bot)
	}

	b := bank{ledger: m.ledger}
	switch r.GameType {
	case game.Blackjack:
		r.engine, err = blackjack.New(r.players, b, r.rng)
	case game.Poker:
		r.engine, err = holdem.New(r.players, b, r.rng, m.cfg.Poker)
	case game.Roulette:
		var e *roulette.Engine
		e, err = roulette.New(r.players, b, r.rng, m.clock)
		if e != nil {
			e.SetSpinDuration(m.cfg.SpinDuration)
			r.engine = e
		}
	default:
		err = fmt.Errorf("%w: unknown game type %q", game.ErrInvalidAction, r.GameType)
	}
	if err != nil {
		return Update{}, err
	}

	r.started = true
	r.startedAt = m.clock.Now()
	r.logger.Info("game started", "seats", len(r.players))

	r.runBots()
	m.scheduleSpinLocked(r)
	if err := r.settle(m.ledger, m.clock); err != nil {
		return Update{}, err
	}
	return r.update(), nil
}

// SubmitAction routes one player action into the room's engine. Validation
// failures leave both the game state and the ledger untouched; an invariant
// violation tears the room down and surfaces as a fatal error.
func (m *Manager) SubmitAction(roomID string, a game.Action) (Update, error) {
	r, err := m.room(roomID)
	if err != nil {
		return Update{}, err
	}

	u, err := m.applyLocked(r, a)
	m.afterMutation(r, u, err)
	return u, err
}

func (m *Manager) applyLocked(r *Room, a game.Action) (u Update, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverInvariant(&u, &err)

	if r.closed {
		return Update{}, game.ErrRoomNotFound
	}
	if !r.started || r.engine == nil {
		return Update{}, fmt.Errorf("%w: game has not started", game.ErrWrongPhase)
	}
	if _, ok := r.participant(a.Player); !ok {
		return Update{}, fmt.Errorf("%w: %s is not seated", game.ErrInvalidAction, a.Player)
	}

	if err := r.engine.Apply(a); err != nil {
		return Update{}, err
	}
	r.runBots()
	m.scheduleSpinLocked(r)
	if err := r.settle(m.ledger, m.clock); err != nil {
		return Update{}, err
	}
	return r.update(), nil
}

// scheduleSpinLocked arms the deferred roulette finalize the first time the
// wheel enters the spinning phase. Caller holds r.mu.
func (m *Manager) scheduleSpinLocked(r *Room) {
	e, ok := r.engine.(*roulette.Engine)
	if !ok || !e.Spinning() || r.spinTimer != nil {
		return
	}
	roomID := r.ID
	r.spinTimer = m.clock.AfterFunc(m.cfg.SpinDuration, func() {
		m.finishSpin(roomID)
	})
	r.logger.Info("wheel spinning", "lands_in", m.cfg.SpinDuration)
}

// finishSpin is the timer callback that lands the wheel and settles the
// round. Teardown races are benign: a closed room is skipped, and the
// engine ignores FinishSpin outside the spinning phase.
func (m *Manager) finishSpin(roomID string) {
	r, err := m.room(roomID)
	if err != nil {
		return
	}

	u, err := m.finishSpinLocked(r)
	if err == nil && u.Public == nil {
		return
	}
	m.afterMutation(r, u, err)
}

func (m *Manager) finishSpinLocked(r *Room) (u Update, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverInvariant(&u, &err)

	if r.closed {
		return Update{}, nil
	}
	e, ok := r.engine.(*roulette.Engine)
	if !ok || !e.Spinning() {
		return Update{}, nil
	}
	e.FinishSpin()
	if err := r.settle(m.ledger, m.clock); err != nil {
		return Update{}, err
	}
	return r.update(), nil
}

// Views returns the current projections without mutating anything.
func (m *Manager) Views(roomID string) (Update, error) {
	r, err := m.room(roomID)
	if err != nil {
		return Update{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Update{}, game.ErrRoomNotFound
	}
	return r.update(), nil
}

// GameRecord returns the audit record of a settled room.
func (m *Manager) GameRecord(roomID string) (*Record, error) {
	r, err := m.room(roomID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record == nil {
		return nil, fmt.Errorf("%w: game is not settled", game.ErrInvalidAction)
	}
	rec := *r.record
	return &rec, nil
}

// CloseRoom tears a room down regardless of state.
func (m *Manager) CloseRoom(roomID, reason string) error {
	r, err := m.room(roomID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.teardown(reason)
	r.mu.Unlock()

	m.remove(roomID)
	if m.broadcast != nil {
		m.broadcast.RoomClosed(roomID, reason)
	}
	return nil
}

// recoverInvariant converts an engine panic into a fatal invariant error and
// tears the room down. It runs with r.mu held.
func (r *Room) recoverInvariant(u *Update, err *error) {
	p := recover()
	if p == nil {
		return
	}
	r.logger.Error("invariant violation", "panic", p)
	r.teardown("invariant violation")
	*u = Update{}
	*err = fmt.Errorf("%w: %v", game.ErrInvariant, p)
}

// afterMutation fires notifications and removes invariant-violated rooms
// from the table. It runs without holding either lock.
func (m *Manager) afterMutation(r *Room, u Update, err error) {
	if errors.Is(err, game.ErrInvariant) {
		m.remove(r.ID)
		if m.broadcast != nil {
			m.broadcast.RoomClosed(r.ID, "invariant violation")
		}
		return
	}
	if err != nil || m.broadcast == nil {
		return
	}
	m.broadcast.GameUpdated(r.ID, u.Public, u.Spectator)
	if u.Results != nil {
		m.broadcast.GameFinished(r.ID, u.Results)
	}
}

func (m *Manager) room(roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrRoomNotFound, roomID)
	}
	return r, nil
}

func (m *Manager) remove(roomID string) {
	m.mu.Lock()
	delete(m.rooms, roomID)
	m.mu.Unlock()
}
