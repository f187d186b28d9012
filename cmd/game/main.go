package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Battle-Sense/internal/config"
	"github.com/Garsondee/Battle-Sense/internal/skirmish"
	"github.com/Garsondee/Battle-Sense/internal/viewer"
)

func main() {
	scenario := flag.String("scenario", "outpost", "skirmish to open (outpost, duel)")
	seed := flag.Int64("seed", 42, "battle seed")
	rulesPath := flag.String("ruleset", "", "ruleset YAML (default: embedded)")
	flag.Parse()

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
	b, _, _, err := skirmish.New(rules, setup)
	if err != nil {
		log.Fatal(err)
	}

	g := viewer.New(b)
	ebiten.SetWindowTitle("Battle Sense")
	ebiten.SetWindowSize(g.WindowSize())
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
