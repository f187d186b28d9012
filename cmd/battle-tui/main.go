// Command battle-tui watches a battle in the terminal, either running a local
// skirmish or following a battle-server over websocket.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/Battle-Sense/internal/config"
	"github.com/Garsondee/Battle-Sense/internal/game"
	"github.com/Garsondee/Battle-Sense/internal/skirmish"
)

// control is a keyboard command for the local battle loop.
type control struct {
	pause   bool
	speed   int
	retreat bool
}

func main() {
	connect := flag.String("connect", "", "battle-server websocket URL (ws://host:8080/ws); empty runs locally")
	scenario := flag.String("scenario", "outpost", "local skirmish name (outpost, duel)")
	seed := flag.Int64("seed", 42, "local battle seed")
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := make(chan game.Snapshot, 4)
	controls := make(chan control, 4)
	errs := make(chan error, 1)

	if *connect != "" {
		go follow(ctx, *connect, frames, controls, errs)
	} else {
		setup, err := skirmish.Lookup(*scenario, *seed)
		if err != nil {
			screen.Fini()
			log.Fatal(err)
		}
		b, _, _, err := skirmish.New(config.Default(), setup)
		if err != nil {
			screen.Fini()
			log.Fatal(err)
		}
		go runLocal(ctx, b, frames, controls)
	}

	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	var ground []game.GroundType
	var last game.Snapshot
	status := ""
	for {
		select {
		case err := <-errs:
			screen.Fini()
			log.Fatal(err)

		case s := <-frames:
			if len(s.Ground) > 0 {
				ground = s.Ground
			}
			last = s
			draw(screen, last, ground, status)

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				draw(screen, last, ground, status)
			case *tcell.EventKey:
				c, quit, msg := keyControl(ev.Key(), ev.Rune())
				if quit {
					return
				}
				if msg != "" {
					status = msg
					select {
					case controls <- c:
					default:
					}
				}
			}
		}
	}
}

// keyControl maps a key press to a control for the battle loop.
func keyControl(key tcell.Key, r rune) (control, bool, string) {
	if key == tcell.KeyEscape || key == tcell.KeyCtrlC {
		return control{}, true, ""
	}
	if key != tcell.KeyRune {
		return control{}, false, ""
	}
	switch r {
	case 'q':
		return control{}, true, ""
	case ' ':
		return control{pause: true}, false, "pause toggled"
	case '1', '2', '4':
		return control{speed: int(r - '0')}, false, "speed " + string(r) + "x"
	case 'r':
		return control{retreat: true}, false, "attacker retreat ordered"
	}
	return control{}, false, ""
}

// runLocal owns b: it ticks at the battle's interval and publishes a
// snapshot after every tick.
func runLocal(ctx context.Context, b *game.Battle, frames chan<- game.Snapshot, controls <-chan control) {
	publish := func(withGround bool) {
		select {
		case frames <- b.Snapshot(withGround):
		case <-ctx.Done():
		}
	}
	publish(true)

	paused := false
	ticker := time.NewTicker(b.TickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-controls:
			switch {
			case c.pause:
				paused = !paused
			case c.speed > 0:
				b.SetSpeed(c.speed)
				ticker.Reset(b.TickInterval())
			case c.retreat:
				b.Retreat(game.SideAttacker)
			}
		case <-ticker.C:
			if paused || b.Phase() != game.PhaseSimulating {
				continue
			}
			b.Tick()
			publish(false)
		}
	}
}

// follow reads msgpack snapshots from a battle-server. Retreat keys are sent
// back as JSON orders; pause and speed belong to the server.
func follow(ctx context.Context, url string, frames chan<- game.Snapshot, controls <-chan control, errs chan<- error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		errs <- err
		return
	}
	defer conn.Close()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-controls:
				if c.retreat {
					_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"retreat","side":"attacker"}`))
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		var s game.Snapshot
		if err := msgpack.Unmarshal(data, &s); err != nil {
			continue
		}
		select {
		case frames <- s:
		case <-ctx.Done():
			return
		}
	}
}
