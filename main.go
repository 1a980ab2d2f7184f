/*
Testbed application that drives the engine with a textured quad.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anvil/engine"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/testbed"
)

func main() {
	tb := testbed.NewTestGame()

	configPath := flag.String("config", tb.ApplicationConfig.ConfigPath, "path to the engine configuration file")
	flag.Parse()
	tb.ApplicationConfig.ConfigPath = *configPath

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogWarn("using default configuration: %s", err)
		cfg = core.DefaultConfig()
		tb.ApplicationConfig.ConfigPath = ""
	}

	// capture sigterm and other system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	e, err := engine.New(tb.Game, cfg)
	if err != nil {
		core.LogFatal("engine creation failed: %+v", err)
	}

	if err := e.Initialize(ctx); err != nil {
		core.LogError("engine initialization failed: %+v", err)
		_ = e.Shutdown()
		os.Exit(1)
	}

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %+v", err)
	}
	if runErr != nil {
		core.LogFatal("engine stopped: %+v", runErr)
	}
}
