// Package keyring keeps the PostgreSQL connection string in the OS keyring so
// passwords never appear in flags or config files.
package keyring

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitchain/internal/constants"
)

var (
	// ErrNotFound is returned when no connection string is stored
	ErrNotFound = errors.New("no connection string in keyring")
	// ErrUnavailable is returned when the OS keyring cannot be reached
	ErrUnavailable = errors.New("OS keyring is not available")
)

// Source names where a connection string came from
type Source string

const (
	SourceFlag    Source = "flag"
	SourceEnv     Source = "environment"
	SourceKeyring Source = "keyring"
)

func GetConnectionString() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return connStr, nil
}

func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}
	return nil
}

func DeleteConnectionString() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}
	return nil
}

// ResolveConnection picks the PostgreSQL connection string to use for a
// password-free --config value. HABITCHAIN_DB_CONNECTION wins over the
// keyring; with neither set the flag value is used as-is (.pgpass applies).
func ResolveConnection(flagValue string) (string, Source) {
	if env := os.Getenv(constants.EnvDBConnection); env != "" {
		return env, SourceEnv
	}
	if stored, err := GetConnectionString(); err == nil {
		return stored, SourceKeyring
	}
	return flagValue, SourceFlag
}

// IsAvailable reports whether the OS keyring can be reached
func IsAvailable() bool {
	_, err := GetConnectionString()
	return err == nil || errors.Is(err, ErrNotFound)
}
