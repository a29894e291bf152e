package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/keycard/userstore"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// TempDatabase returns the path of a database file inside a fresh temp
// directory, the cleanup func removes the whole directory.
func TempDatabase(t TestLog, name string) (string, func()) {
	dir, err := os.MkdirTemp("", "keycard-tests")
	if err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, name+".db"), func() {
		err := os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

func AcquireStore(ctx context.Context, t TestLog, name string) (*userstore.Store, func()) {
	file, removeDir := TempDatabase(t, name)
	store, err := userstore.Open(ctx, file)
	if err != nil {
		removeDir()
		t.Fatal(err)
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close user store", err)
		}
		removeDir()
	}
}
