// Command battle-server runs a skirmish in real time and streams it to
// websocket spectators on /ws.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Garsondee/Battle-Sense/internal/archive"
	"github.com/Garsondee/Battle-Sense/internal/config"
	"github.com/Garsondee/Battle-Sense/internal/game"
	"github.com/Garsondee/Battle-Sense/internal/skirmish"
	"github.com/Garsondee/Battle-Sense/internal/stream"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	scenario := flag.String("scenario", "outpost", "skirmish name (outpost, duel)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "battle seed")
	speed := flag.Int("speed", 1, "simulation speed (1, 2 or 4)")
	rulesPath := flag.String("ruleset", "", "ruleset YAML (default: embedded)")
	archivePath := flag.String("archive", "", "SQLite file to record the result in")
	control := flag.String("control", "", "side websocket clients may command (attacker, defender); empty streams read-only")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	side, err := controlSide(*control)
	if err != nil {
		log.Fatal(err)
	}

	rules := config.Default()
	if *rulesPath != "" {
		var err error
		if rules, err = config.Load(*rulesPath); err != nil {
			log.Fatal(err)
		}
	}
	setup, err := skirmish.Lookup(*scenario, *seed)
	if err != nil {
		log.Fatal(err)
	}

	concluded := make(chan game.Summary, 1)
	b, _, _, err := skirmish.New(rules, setup,
		game.WithLogger(logger),
		game.WithConcludedHandler(func(s game.Summary) { concluded <- s }),
	)
	if err != nil {
		log.Fatal(err)
	}
	b.SetSpeed(*speed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hub := stream.NewHub(logger)
	if err := hub.SetIntro(b.Snapshot(true)); err != nil {
		log.Fatal(err)
	}
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", stream.Handler(hub, b, side))
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("battle server listening", "addr", *addr, "battle", b.ID, "scenario", setup.Name, "control", side)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sum, ok := run(ctx, b, hub, concluded)
	if ok {
		logger.Info("battle concluded", "winner", sum.Winner, "ticks", sum.Ticks)
		os.Stdout.WriteString(sum.String())
		if *archivePath != "" {
			if err := record(*archivePath, sum); err != nil {
				logger.Error("archive", "err", err)
			}
		}
		// Give spectators a moment to receive the final frame.
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdown)
}

// run ticks b at its own interval and broadcasts a snapshot after each tick
// until the battle concludes or ctx is cancelled.
func run(ctx context.Context, b *game.Battle, hub *stream.Hub, concluded <-chan game.Summary) (game.Summary, bool) {
	interval := b.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return game.Summary{}, false
		case <-ticker.C:
			b.Tick()
			_ = hub.Broadcast(b.Snapshot(false))
			select {
			case s := <-concluded:
				return s, true
			default:
			}
			if next := b.TickInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// controlSide parses the -control flag.
func controlSide(name string) (game.Side, error) {
	switch name {
	case "":
		return game.SideNone, nil
	case game.SideAttacker.String():
		return game.SideAttacker, nil
	case game.SideDefender.String():
		return game.SideDefender, nil
	}
	return game.SideNone, fmt.Errorf("unknown control side %q", name)
}

func record(path string, s game.Summary) error {
	arc, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer arc.Close()
	return arc.Record(context.Background(), s)
}
