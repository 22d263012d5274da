package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/nolantait/flock/app"
	"github.com/nolantait/flock/devtools"
	"github.com/nolantait/flock/game"
	"github.com/nolantait/flock/physics"
)

func main() {
	dev := flag.Bool("dev", false, "enable the dev tools overlay and pause controls")
	headless := flag.Bool("headless", false, "run the simulation without a window")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if *dev {
		cfg.Dev = true
	}
	if *headless {
		cfg.Headless = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg).
		AddPlugins(app.DefaultPlugins()...).
		AddPlugins(
			physics.Plugin{},
			game.Plugin{},
			devtools.Plugin{},
		)

	if err := a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("app exited")
	}
}
