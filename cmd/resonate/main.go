// Command resonate runs the resonance-backend core: the Resonance Profile
// Builder, Emotional Resonance Score engine, Dynamic Feed Ranking Engine, and
// Conversation Health Monitor, wired against Postgres, Redis, and a vector
// store, and registered against an externally-supplied scheduler.
//
// HTTP transport and the scheduler implementation itself (the cron loop, the
// event bus) are out of this module's scope (spec §1); this process wires
// the core and blocks until it receives SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/resonate/resonate-backend/internal/app"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, nil)
	if err != nil {
		fmt.Printf("failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Log.Info("resonate core wired and ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	a.Log.Info("received shutdown signal", "signal", sig.String())
}
