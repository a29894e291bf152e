package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/keycard/cmd/keycard/serve"
	"github.com/andrebq/keycard/cmd/keycard/token"
	"github.com/andrebq/keycard/cmd/keycard/users"
	"github.com/andrebq/keycard/internal/cmdflags"
	"github.com/andrebq/keycard/internal/logutil"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	var logLevel, logFormat string
	app := &cli.App{
		Name:  "keycard",
		Usage: "Username/password authentication with signed session tokens",
		Flags: []cli.Flag{
			cmdflags.LogLevel(&logLevel),
			cmdflags.LogFormat(&logFormat),
		},
		Before: func(ctx *cli.Context) error {
			return logutil.Setup(logLevel, logFormat)
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			users.Cmd(),
			token.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		cancel()
		os.Exit(1)
	}
}
