package token

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/andrebq/keycard/session"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const secretVar = "KEYCARD_TEST_TOKEN_SECRET"

func runVerify(t *testing.T, secret, token string) (string, error) {
	t.Setenv(secretVar, secret)
	var out bytes.Buffer
	app := &cli.App{
		Name:     "keycard",
		Commands: []*cli.Command{command(strings.NewReader(token+"\n"), &out)},
	}
	err := app.Run([]string{"keycard", "token", "--secret-envvar-name", secretVar, "verify"})
	return out.String(), err
}

func TestVerifyCommand(t *testing.T) {
	tk, err := session.Issue(7, "bob", []byte("cli-secret"), time.Hour)
	require.NoError(t, err)

	out, err := runVerify(t, "cli-secret", tk)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &claims))
	require.Equal(t, "bob", claims["username"])
	require.Equal(t, float64(7), claims["id"])
	require.Equal(t, "7", claims["sub"])
	require.Empty(t, os.Getenv(secretVar), "secret should be cleared after reading")
}

func TestVerifyCommandRejectsBadTokens(t *testing.T) {
	tk, err := session.Issue(7, "bob", []byte("cli-secret"), time.Hour)
	require.NoError(t, err)

	out, err := runVerify(t, "other-secret", tk)
	require.ErrorIs(t, err, session.ErrInvalid)
	require.Empty(t, out)

	parts := strings.Split(tk, ".")
	other, err := session.Issue(8, "mallory", []byte("cli-secret"), time.Hour)
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]
	_, err = runVerify(t, "cli-secret", forged)
	require.ErrorIs(t, err, session.ErrInvalid)

	_, err = runVerify(t, "cli-secret", "")
	require.ErrorIs(t, err, session.ErrInvalid)

	_, err = runVerify(t, "", tk)
	require.Error(t, err)
}
