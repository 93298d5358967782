package main

import (
	"context"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/KesselZ/HeroHour-sub000/internal/audio"
	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/game"
	"github.com/KesselZ/HeroHour-sub000/internal/persist"
	"github.com/KesselZ/HeroHour-sub000/internal/rng"
	"github.com/KesselZ/HeroHour-sub000/internal/sink"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config overlay")
	saveDir := flag.String("saves", "saves", "save slot directory")
	seed := flag.Uint("seed", 0, "world seed (0 keeps the configured one)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		cfg.Seed = uint32(*seed)
	}

	store, err := persist.Open(*saveDir)
	if err != nil {
		log.Fatal(err)
	}

	var out sink.Audio = sink.Nop{}
	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio.SampleRate, cfg.Audio.Volume, rng.New(cfg.Seed^0x5eed))
		if err := player.Start(); err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			defer player.Close()
			out = player
		}
	}

	g, err := game.New(cfg, out, store)
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g.Sim().Start(ctx)

	ebiten.SetWindowTitle("Hero Hour")
	ebiten.SetWindowSize(1280, 800)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
