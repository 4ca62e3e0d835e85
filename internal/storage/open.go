package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitchain/internal/storage/jsonfile"
	"github.com/julianstephens/habitchain/internal/storage/postgres"
	"github.com/julianstephens/habitchain/internal/storage/sqlite"
)

// Migrator is implemented by backends with a versioned schema
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersion() (current, latest int, err error)
}

// Kind names a storage backend
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindJSON     Kind = "json"
)

// KindOf picks the backend for a --config value
func KindOf(location string) Kind {
	switch {
	case postgres.IsConnString(location), strings.Contains(location, "host="):
		return KindPostgres
	case strings.HasSuffix(strings.ToLower(location), ".json"):
		return KindJSON
	default:
		return KindSQLite
	}
}

// New returns an unopened Provider for location. Callers run Init or Load.
func New(location string) Provider {
	switch KindOf(location) {
	case KindPostgres:
		return postgres.New(location)
	case KindJSON:
		return jsonfile.NewStore(ExpandPath(location))
	default:
		return sqlite.NewStore(ExpandPath(location))
	}
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
