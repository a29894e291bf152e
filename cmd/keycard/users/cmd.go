package users

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrebq/keycard/credentials"
	"github.com/andrebq/keycard/internal/cmdflags"
	"github.com/andrebq/keycard/userstore"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

var (
	errMissingPassword = errors.New("missing password from stdin")
)

func Cmd() *cli.Command {
	return command(os.Stdin, os.Stdout)
}

func command(stdin io.Reader, stdout io.Writer) *cli.Command {
	var database string
	return &cli.Command{
		Name:    "users",
		Aliases: []string{"u"},
		Usage:   "Manage the users table directly, without going through the api",
		Flags: []cli.Flag{
			cmdflags.Database(&database),
		},
		Subcommands: []*cli.Command{
			registerCmd(&database, stdin, stdout),
		},
	}
}

func registerCmd(database *string, stdin io.Reader, stdout io.Writer) *cli.Command {
	var username string
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new user (password is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to register",
				Destination: &username,
				Required:    true,
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(stdin, os.Stderr)
			if err != nil {
				return err
			}
			store, err := userstore.Open(ctx.Context, *database)
			if err != nil {
				return err
			}
			defer store.Close()
			// login is never called from here, so no token issuer is needed
			v := credentials.New(store, nil)
			id, err := v.Register(ctx.Context, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%v\n", id)
			return nil
		},
	}
}

// readPassword prompts without echo when in is a terminal, otherwise it
// takes the first line of in as is (only the line ending is removed).
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		buf, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if sc.Err() != nil {
			return "", sc.Err()
		}
		return "", errMissingPassword
	}
	password := strings.TrimRight(sc.Text(), "\r")
	if len(password) == 0 {
		return "", errMissingPassword
	}
	return password, nil
}
