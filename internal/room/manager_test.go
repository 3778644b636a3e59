package room

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/greenfelt/casino/internal/blackjack"
	"github.com/greenfelt/casino/internal/config"
	"github.com/greenfelt/casino/internal/game"
	"github.com/greenfelt/casino/internal/ledger"
	"github.com/greenfelt/casino/internal/roulette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager *Manager
	ledger  *ledger.Memory
	clock   *quartz.Mock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bank := ledger.NewMemory()
	clock := quartz.NewMock(t)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	cfg := ConfigFrom(config.Default())
	return &fixture{
		manager: NewManager(bank, clock, logger, cfg, nil, 11),
		ledger:  bank,
		clock:   clock,
	}
}

func (f *fixture) human(t *testing.T, id string) game.Participant {
	t.Helper()
	f.ledger.CreateAccount(id, 1000)
	return game.Participant{ID: id, Name: id}
}

func (f *fixture) totalBalance(t *testing.T, ids ...string) int {
	t.Helper()
	total := 0
	for _, id := range ids {
		b, err := f.ledger.Balance(id)
		require.NoError(t, err)
		total += b
	}
	return total
}

func TestCreateJoinAndList(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "alice"))
	require.NoError(t, err)
	require.NoError(t, f.manager.JoinRoom(roomID, f.human(t, "bob")))

	rooms := f.manager.ListRooms(game.Blackjack)
	require.Len(t, rooms, 1)
	assert.Equal(t, roomID, rooms[0].ID)
	assert.Equal(t, "alice", rooms[0].Host)
	assert.Equal(t, 2, rooms[0].Players)
	assert.Equal(t, 8, rooms[0].MaxSeats)
	assert.False(t, rooms[0].Started)

	assert.Empty(t, f.manager.ListRooms(game.Poker))
}

func TestJoinUnknownRoom(t *testing.T) {
	f := newFixture(t)
	err := f.manager.JoinRoom("no-such-room", f.human(t, "bob"))
	require.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestJoinFullRoom(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		require.NoError(t, f.manager.JoinRoom(roomID, f.human(t, fmt.Sprintf("guest-%d", i))))
	}

	err = f.manager.JoinRoom(roomID, f.human(t, "latecomer"))
	require.ErrorIs(t, err, game.ErrRoomFull)
}

func TestJoinAfterStart(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	_, err = f.manager.StartGame(roomID, "host")
	require.NoError(t, err)

	err = f.manager.JoinRoom(roomID, f.human(t, "latecomer"))
	require.ErrorIs(t, err, game.ErrGameStarted)
}

func TestDuplicateJoinRejected(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	err = f.manager.JoinRoom(roomID, game.Participant{ID: "host", Name: "host"})
	require.ErrorIs(t, err, game.ErrInvalidAction)
}

func TestOnlyHostMayStart(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	require.NoError(t, f.manager.JoinRoom(roomID, f.human(t, "bob")))

	_, err = f.manager.StartGame(roomID, "bob")
	require.ErrorIs(t, err, game.ErrNotHost)

	_, err = f.manager.StartGame(roomID, "host")
	require.NoError(t, err)
	_, err = f.manager.StartGame(roomID, "host")
	require.ErrorIs(t, err, game.ErrGameStarted)
}

func TestStartBackfillsBots(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	u, err := f.manager.StartGame(roomID, "host")
	require.NoError(t, err)

	rooms := f.manager.ListRooms(game.Blackjack)
	require.Len(t, rooms, 1)
	assert.Equal(t, 8, rooms[0].Players)
	assert.True(t, rooms[0].Started)

	// Bots bet at start and get funded ledger accounts.
	view := u.Public.(blackjack.TableView)
	require.Len(t, view.Seats, 8)
	bots := 0
	for _, seat := range view.Seats {
		if seat.ID == "host" {
			assert.Zero(t, seat.Bet)
			continue
		}
		bots++
		assert.Positive(t, seat.Bet, "bot %s should have bet at start", seat.ID)
		_, err := f.ledger.Balance(seat.ID)
		assert.NoError(t, err, "bot %s should have a ledger account", seat.ID)
	}
	assert.Equal(t, 7, bots)
}

func TestActionBeforeStartRejected(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	_, err = f.manager.SubmitAction(roomID, game.Action{Name: game.ActBet, Player: "host", Amount: 10})
	require.ErrorIs(t, err, game.ErrWrongPhase)
}

func TestActionFromUnseatedPlayerRejected(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	_, err = f.manager.StartGame(roomID, "host")
	require.NoError(t, err)

	_, err = f.manager.SubmitAction(roomID, game.Action{Name: game.ActBet, Player: "stranger", Amount: 10})
	require.ErrorIs(t, err, game.ErrInvalidAction)
}

func TestBlackjackRoundSettles(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	_, err = f.manager.StartGame(roomID, "host")
	require.NoError(t, err)

	u, err := f.manager.SubmitAction(roomID, game.Action{Name: game.ActBet, Player: "host", Amount: 100})
	require.NoError(t, err)
	if u.Results == nil {
		u, err = f.manager.SubmitAction(roomID, game.Action{Name: game.ActStand, Player: "host"})
		require.NoError(t, err)
	}
	require.NotNil(t, u.Results)

	res, ok := u.Results["host"]
	require.True(t, ok)
	balance, err := f.ledger.Balance("host")
	require.NoError(t, err)
	assert.Equal(t, 1000-100+res.Payout, balance, "ledger reflects stake out, payout in")

	rec, err := f.manager.GameRecord(roomID)
	require.NoError(t, err)
	assert.Equal(t, u.Results, rec.Results)
	assert.NotEmpty(t, rec.Events)
}

func TestPokerHandSettlesAndConservesMoney(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Poker, f.human(t, "host"))
	require.NoError(t, err)

	players := []string{"host"}
	for i := 1; i <= 7; i++ {
		players = append(players, fmt.Sprintf("bot-%s-%d", roomID[:8], i+1))
	}

	// Host and each backfilled bot open with 1000; chips in the pot live
	// outside the ledger until settlement.
	const opening = 8 * 1000

	u, err := f.manager.StartGame(roomID, "host")
	require.NoError(t, err)

	// Play the host passively until the hand resolves: check when free,
	// call when facing a bet, fold as a last resort.
	for round := 0; u.Results == nil && round < 64; round++ {
		for _, name := range []string{game.ActCheck, game.ActCall, game.ActFold} {
			u, err = f.manager.SubmitAction(roomID, game.Action{Name: name, Player: "host"})
			if err == nil {
				break
			}
		}
		require.NoError(t, err)
	}
	require.NotNil(t, u.Results, "hand did not resolve")
	require.Len(t, u.Results, 8)

	net := 0
	for _, r := range u.Results {
		net += r.Net
	}
	after := f.totalBalance(t, players...)
	assert.Equal(t, opening+net, after, "credits match the results' net movement")
	assert.LessOrEqual(t, net, 0, "a split pot may drop a remainder, never mint chips")
}

func TestRouletteSpinSettlesOnTimer(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Roulette, f.human(t, "host"))
	require.NoError(t, err)
	_, err = f.manager.StartGame(roomID, "host")
	require.NoError(t, err)

	_, err = f.manager.SubmitAction(roomID, game.Action{Name: game.ActBet, Player: "host", BetKind: "red", Amount: 50})
	require.NoError(t, err)
	u, err := f.manager.SubmitAction(roomID, game.Action{Name: game.ActSpin, Player: "host"})
	require.NoError(t, err)
	require.Nil(t, u.Results, "results land only when the wheel stops")

	view := u.Public.(roulette.TableView)
	assert.Equal(t, string(roulette.PhaseSpinning), view.Phase)
	assert.Nil(t, view.WinningNumber)

	f.clock.Advance(5 * time.Second).MustWait(context.Background())

	u, err = f.manager.Views(roomID)
	require.NoError(t, err)
	require.NotNil(t, u.Results)
	res := u.Results["host"]
	assert.Contains(t, []string{"win", "lose"}, res.Outcome)

	balance, err := f.ledger.Balance("host")
	require.NoError(t, err)
	assert.Equal(t, 1000-50+res.Payout, balance)
}

func TestLeaveCancelsPendingSpin(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Roulette, f.human(t, "host"))
	require.NoError(t, err)
	_, err = f.manager.StartGame(roomID, "host")
	require.NoError(t, err)
	_, err = f.manager.SubmitAction(roomID, game.Action{Name: game.ActBet, Player: "host", BetKind: "red", Amount: 50})
	require.NoError(t, err)
	_, err = f.manager.SubmitAction(roomID, game.Action{Name: game.ActSpin, Player: "host"})
	require.NoError(t, err)

	require.NoError(t, f.manager.Leave(roomID, "host"))

	_, err = f.manager.Views(roomID)
	require.ErrorIs(t, err, game.ErrRoomNotFound)

	// The cancelled timer must not resurrect the room.
	f.clock.Advance(5 * time.Second)
	_, err = f.manager.Views(roomID)
	require.ErrorIs(t, err, game.ErrRoomNotFound)
}

func TestLeaveLastHumanClosesRoom(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	require.NoError(t, f.manager.JoinRoom(roomID, f.human(t, "bob")))

	require.NoError(t, f.manager.Leave(roomID, "bob"))
	require.Len(t, f.manager.ListRooms(game.Blackjack), 1, "room stays open while the host remains")

	require.NoError(t, f.manager.Leave(roomID, "host"))
	assert.Empty(t, f.manager.ListRooms(game.Blackjack))
	require.ErrorIs(t, f.manager.Leave(roomID, "host"), game.ErrRoomNotFound)
}

func TestSpectators(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)

	view, err := f.manager.Spectate(roomID, game.Participant{ID: "watcher", Name: "watcher"})
	require.NoError(t, err)
	assert.Nil(t, view, "no projection before the game starts")

	_, err = f.manager.Spectate(roomID, game.Participant{ID: "host", Name: "host"})
	require.ErrorIs(t, err, game.ErrInvalidAction, "seated players cannot spectate")

	_, err = f.manager.StartGame(roomID, "host")
	require.NoError(t, err)

	view, err = f.manager.Spectate(roomID, game.Participant{ID: "watcher-2", Name: "watcher-2"})
	require.NoError(t, err)
	assert.NotNil(t, view)

	require.NoError(t, f.manager.StopSpectating(roomID, "watcher"))
}

func TestConcurrentActionsSerialize(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Roulette, f.human(t, "alice"))
	require.NoError(t, err)
	require.NoError(t, f.manager.JoinRoom(roomID, f.human(t, "bob")))
	_, err = f.manager.StartGame(roomID, "alice")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range []string{"alice", "bob"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				_, err := f.manager.SubmitAction(roomID, game.Action{
					Name: game.ActBet, Player: id, BetKind: "odd", Amount: 10,
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for _, id := range []string{"alice", "bob"} {
		balance, err := f.ledger.Balance(id)
		require.NoError(t, err)
		assert.Equal(t, 950, balance, "all ten bets for %s must have been debited exactly once", id)
	}
}

func TestGameRecordBeforeSettlement(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	_, err = f.manager.GameRecord(roomID)
	require.ErrorIs(t, err, game.ErrInvalidAction)
}

func TestCloseRoom(t *testing.T) {
	f := newFixture(t)

	roomID, err := f.manager.CreateRoom(game.Blackjack, f.human(t, "host"))
	require.NoError(t, err)
	require.NoError(t, f.manager.CloseRoom(roomID, "test over"))
	_, err = f.manager.Views(roomID)
	require.ErrorIs(t, err, game.ErrRoomNotFound)
}
