// casino-sim runs self-playing casino rooms against the in-memory ledger:
// one scripted host plus bot backfill per room, rooms in parallel, with a
// per-player settlement report at the end. Useful for exercising the full
// orchestration path without a transport in front of it.
package main

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/greenfelt/casino/internal/config"
	"github.com/greenfelt/casino/internal/game"
	"github.com/greenfelt/casino/internal/ledger"
	"github.com/greenfelt/casino/internal/room"
)

type CLI struct {
	Rooms       int    `default:"4" help:"Number of rooms to run in parallel"`
	Game        string `default:"blackjack" help:"Game type: blackjack, poker, roulette"`
	Seed        int64  `default:"0" help:"RNG seed (0 for time-based)"`
	HostBalance int    `default:"1000" help:"Opening ledger balance for each host"`
	Config      string `help:"Path to HCL config file" type:"path"`
	Verbose     bool   `short:"v" help:"Verbose logging"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("casino-sim"),
		kong.Description("Self-playing casino room simulator"),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(run(&cli))
}

func run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "casino",
	})
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else if level, err := log.ParseLevel(cfg.Casino.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	gameType, err := game.ParseType(cli.Game)
	if err != nil {
		return err
	}
	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting simulation", "rooms", cli.Rooms, "game", gameType, "seed", seed)

	bank := ledger.NewMemory()
	watch := newWatcher()
	mgr := room.NewManager(bank, quartz.NewReal(), logger, room.ConfigFrom(cfg), watch, seed)

	g := new(errgroup.Group)
	for i := 0; i < cli.Rooms; i++ {
		hostID := fmt.Sprintf("host-%d", i+1)
		bank.CreateAccount(hostID, cli.HostBalance)
		g.Go(func() error {
			return playRoom(mgr, watch, logger, gameType, hostID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	report(logger, bank, cli.HostBalance)
	return nil
}

// playRoom drives one room from creation to settlement with a scripted host.
func playRoom(mgr *room.Manager, watch *watcher, logger *log.Logger, gameType game.Type, hostID string) error {
	host := game.Participant{ID: hostID, Name: hostID}
	roomID, err := mgr.CreateRoom(gameType, host)
	if err != nil {
		return err
	}
	done := watch.channel(roomID)

	u, err := mgr.StartGame(roomID, hostID)
	if err != nil {
		return err
	}

	switch gameType {
	case game.Blackjack:
		u, err = driveBlackjack(mgr, roomID, hostID)
	case game.Poker:
		u, err = drivePoker(mgr, roomID, hostID, u)
	case game.Roulette:
		u, err = driveRoulette(mgr, roomID, hostID)
	}
	if err != nil {
		return fmt.Errorf("room %s: %w", roomID, err)
	}

	if u.Results == nil {
		// The deferred roulette finalize settles off the caller's goroutine.
		select {
		case <-done:
		case <-time.After(30 * time.Second):
			return fmt.Errorf("room %s: timed out waiting for settlement", roomID)
		}
	}

	rec, err := mgr.GameRecord(roomID)
	if err != nil {
		return fmt.Errorf("room %s: %w", roomID, err)
	}
	res := rec.Results[hostID]
	logger.Info("room finished",
		"room", roomID,
		"host", hostID,
		"outcome", res.Outcome,
		"net", res.Net,
		"events", len(rec.Events),
		"duration", rec.EndedAt.Sub(rec.StartedAt),
	)
	return mgr.CloseRoom(roomID, "simulation complete")
}

// driveBlackjack plays the host flat: a tenth-of-bankroll bet, then stand.
// The bots bet during start, so the host's bet triggers the deal and their
// stand lets the dealer finish the round.
func driveBlackjack(mgr *room.Manager, roomID, hostID string) (room.Update, error) {
	bet := 10
	u, err := mgr.SubmitAction(roomID, game.Action{Name: game.ActBet, Player: hostID, Amount: bet})
	if err != nil {
		return u, err
	}
	if u.Results != nil {
		return u, nil
	}
	return mgr.SubmitAction(roomID, game.Action{Name: game.ActStand, Player: hostID})
}

// drivePoker plays the host passively: check when free, call when not, and
// fold if neither sticks. Bot turns run inside the manager, so each host
// action carries play forward to the host's next turn or the showdown.
func drivePoker(mgr *room.Manager, roomID, hostID string, u room.Update) (room.Update, error) {
	for round := 0; u.Results == nil && round < 64; round++ {
		var err error
		for _, name := range []string{game.ActCheck, game.ActCall, game.ActFold} {
			u, err = mgr.SubmitAction(roomID, game.Action{Name: name, Player: hostID})
			if err == nil {
				break
			}
		}
		if err != nil {
			return u, err
		}
	}
	return u, nil
}

// driveRoulette puts the host on red and spins. Settlement arrives via the
// deferred wheel timer, which the caller waits on.
func driveRoulette(mgr *room.Manager, roomID, hostID string) (room.Update, error) {
	u, err := mgr.SubmitAction(roomID, game.Action{
		Name: game.ActBet, Player: hostID, BetKind: "red", Amount: 50,
	})
	if err != nil {
		return u, err
	}
	return mgr.SubmitAction(roomID, game.Action{Name: game.ActSpin, Player: hostID})
}

// report prints closing host balances against their opening bankroll.
func report(logger *log.Logger, bank *ledger.Memory, opening int) {
	txs := bank.Transactions()
	logger.Info("simulation complete", "ledger_transactions", len(txs))

	seen := map[string]bool{}
	var hosts []string
	for _, tx := range txs {
		if !seen[tx.Account] && len(tx.Account) > 5 && tx.Account[:5] == "host-" {
			seen[tx.Account] = true
			hosts = append(hosts, tx.Account)
		}
	}
	sort.Strings(hosts)
	for _, id := range hosts {
		balance, err := bank.Balance(id)
		if err != nil {
			continue
		}
		logger.Info("host result", "host", id, "balance", balance, "net", balance-opening)
	}
}

// watcher collects settlement notifications so room drivers can wait for
// timer-settled games.
type watcher struct {
	mu   sync.Mutex
	done map[string]chan map[string]game.Result
}

func newWatcher() *watcher {
	return &watcher{done: make(map[string]chan map[string]game.Result)}
}

func (w *watcher) channel(roomID string) chan map[string]game.Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch, ok := w.done[roomID]
	if !ok {
		ch = make(chan map[string]game.Result, 1)
		w.done[roomID] = ch
	}
	return ch
}

func (w *watcher) GameUpdated(roomID string, public, spectator game.View) {}

func (w *watcher) GameFinished(roomID string, results map[string]game.Result) {
	select {
	case w.channel(roomID) <- results:
	default:
	}
}

func (w *watcher) RoomClosed(roomID, reason string) {}
