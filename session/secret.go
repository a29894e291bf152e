package session

import (
	"fmt"
	"os"
)

const (
	SecretEnvVar = "JWT_SECRET"
)

// SecretFromEnv reads the signing secret from varname and clears the
// variable afterwards, so child processes never see it.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) ([]byte, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	setfn(varname, "")
	if len(val) == 0 {
		return nil, fmt.Errorf("session: environment variable %v must contain the signing secret", varname)
	}
	return []byte(val), nil
}
