package cmdflags

import (
	"time"

	"github.com/andrebq/keycard/session"
	"github.com/urfave/cli/v2"
)

const (
	DefaultDatabase = "./database.db"
)

func Database(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = DefaultDatabase
	}
	return &cli.StringFlag{
		Name:        "database",
		Aliases:     []string{"db"},
		Usage:       "Path to the sqlite file holding the users table (created if missing)",
		Destination: out,
		Value:       *out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = session.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the token signing secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func TokenTTL(out *time.Duration) cli.Flag {
	if *out == 0 {
		*out = session.DefaultTTL
	}
	return &cli.DurationFlag{
		Name:        "token-ttl",
		Usage:       "How long issued session tokens remain valid",
		Value:       *out,
		Destination: out,
	}
}

func LogLevel(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "info"
	}
	return &cli.StringFlag{
		Name:        "log-level",
		Usage:       "Minimum level to log (trace, debug, info, warn, error)",
		Value:       *out,
		Destination: out,
	}
}

func LogFormat(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "console"
	}
	return &cli.StringFlag{
		Name:        "log-format",
		Usage:       "Log output format (console or json)",
		Value:       *out,
		Destination: out,
	}
}
