package system

import (
	"bytes"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitchain/internal/app"
	"github.com/julianstephens/habitchain/internal/cli"
	"github.com/julianstephens/habitchain/internal/storage/sqlite"
)

// setupTestDB returns a context over a fresh, uninitialized SQLite store
func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitchain.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() { store.Close() })

	ctx := cli.NewContext(store, app.Options{BcryptCost: bcrypt.MinCost})
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out, dbPath
}

// setupInitializedDB also runs init
func setupInitializedDB(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	ctx, out, dbPath := setupTestDB(t)
	if err := ctx.Store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return ctx, out, dbPath
}
