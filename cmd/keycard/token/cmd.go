package token

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/andrebq/keycard/internal/cmdflags"
	"github.com/andrebq/keycard/session"
	"github.com/urfave/cli/v2"
)

var (
	errMissingToken = errors.New("missing token from stdin")
)

func Cmd() *cli.Command {
	return command(os.Stdin, os.Stdout)
}

func command(stdin io.Reader, stdout io.Writer) *cli.Command {
	var secretEnvVar string
	return &cli.Command{
		Name:  "token",
		Usage: "Inspect session tokens",
		Flags: []cli.Flag{
			cmdflags.SecretEnvVar(&secretEnvVar),
		},
		Subcommands: []*cli.Command{
			verifyCmd(&secretEnvVar, stdin, stdout),
		},
	}
}

func verifyCmd(secretEnvVar *string, stdin io.Reader, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Verify a token read from stdin and print its claims as JSON",
		Action: func(ctx *cli.Context) error {
			secret, err := session.SecretFromEnv(*secretEnvVar, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			sc := bufio.NewScanner(stdin)
			if !sc.Scan() {
				if sc.Err() != nil {
					return sc.Err()
				}
				return errMissingToken
			}
			claims, err := session.Verify(strings.TrimSpace(sc.Text()), secret)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}
