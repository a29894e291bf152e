package serve

import (
	"os"
	"time"

	"github.com/andrebq/keycard/authapi"
	"github.com/andrebq/keycard/credentials"
	"github.com/andrebq/keycard/gate"
	"github.com/andrebq/keycard/internal/cmdflags"
	"github.com/andrebq/keycard/internal/httpserver"
	"github.com/andrebq/keycard/internal/logutil"
	"github.com/andrebq/keycard/session"
	"github.com/andrebq/keycard/userstore"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:3001"
	var database string
	var secretEnvVar string
	var ttl time.Duration
	var cost int
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the authentication api (register, login and dashboard)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind for incoming requests",
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			cmdflags.Database(&database),
			cmdflags.SecretEnvVar(&secretEnvVar),
			cmdflags.TokenTTL(&ttl),
			&cli.IntFlag{
				Name:        "bcrypt-cost",
				Usage:       "Cost factor used when hashing new passwords",
				Value:       credentials.DefaultCost,
				Destination: &cost,
				Hidden:      true,
			},
		},
		Action: func(ctx *cli.Context) error {
			secret, err := session.SecretFromEnv(secretEnvVar, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			logger := log.Logger.With().Str("component", "authapi").Logger()
			appCtx := logutil.WithLogger(ctx.Context, logger)

			store, err := userstore.Open(appCtx, database)
			if err != nil {
				return err
			}
			defer store.Close()
			logger.Info().Str("database", database).Msg("User store ready")

			issuer, err := session.NewIssuer(secret, ttl)
			if err != nil {
				return err
			}
			handler, err := authapi.AsHandler(appCtx, authapi.Config{
				Credentials: credentials.New(store, issuer, credentials.WithCost(cost)),
				Realm:       gate.NewRealm(issuer),
			})
			if err != nil {
				return err
			}
			return httpserver.Serve(appCtx, bindAddr, logutil.AccessLog(logger, handler))
		},
	}
}
