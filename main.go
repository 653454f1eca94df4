/*
Citadel renders a procedurally assembled castle with an orbiting camera.
The castle layout lives in the [castle] table of the configuration file and
is reloaded while the application runs.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spaghettifunk/citadel/castle"
	"github.com/spaghettifunk/citadel/engine"
	"github.com/spaghettifunk/citadel/engine/core"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "assets/citadel.toml", "path to the TOML configuration file")
	flag.Parse()

	config, err := engine.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}
	layout, err := castle.LoadLayout(*configPath)
	if err != nil {
		core.LogFatal("%s", err)
	}

	game, err := castle.NewGame(config, layout)
	if err != nil {
		core.LogFatal("%s", err)
	}

	e, err := engine.New(game.Game)
	if err != nil {
		core.LogFatal("%s", err)
	}

	// capture sigterm and other system calls here
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	runErr := e.Initialize(ctx)
	if runErr == nil {
		runErr = e.Run(ctx)
	}

	// The run context may already be cancelled; shutdown still has to drain the GPU.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		core.LogError("shutdown: %s", err)
	}

	if runErr != nil {
		core.LogError("%s", runErr)
		stop()
		cancel()
		os.Exit(1)
	}
}
