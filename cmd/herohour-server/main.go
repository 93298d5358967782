package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/game"
	"github.com/KesselZ/HeroHour-sub000/internal/spectate"
)

const (
	tickRate     = 20 // simulation ticks per second
	publishEvery = 2  // ticks between spectator frames
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	cfgPath := flag.String("config", "", "YAML config overlay")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, *cfgPath); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, addr, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	s, err := game.NewSim(cfg)
	if err != nil {
		return fmt.Errorf("failed to build world: %w", err)
	}
	s.Start(ctx)
	defer s.Stop()

	hub := spectate.NewHub()
	defer hub.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/spectate", spectate.NewHandler(hub, spectate.HandlerConfig{}).Handle)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		sent, dropped := hub.Counts()
		fmt.Fprintf(w, "ok spectators=%d sent=%d dropped=%d\n", hub.Subscribers(), sent, dropped)
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		runLoop(ctx, s, hub, time.Second/tickRate)
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s (seed %d)", addr, cfg.Seed)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}
	<-loopDone
	return nil
}

// runLoop steps the simulation at a fixed rate and publishes frames until ctx
// is done. It is the only goroutine that touches s.
func runLoop(ctx context.Context, s *game.Sim, hub *spectate.Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.Step()
		if s.Tick()%publishEvery != 0 {
			continue
		}
		if err := hub.Publish(s.Frame()); err != nil {
			log.Printf("publish: %v", err)
		}
	}
}
