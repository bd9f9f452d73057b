package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/finlit/internal/keyring"
	"github.com/julianstephens/finlit/internal/storage/postgres"
	"github.com/julianstephens/finlit/internal/storage/sqlite"
	"github.com/julianstephens/finlit/internal/utils"
)

// KeyringTarget selects the PostgreSQL connection string stored in the OS
// keyring. It may carry a password.
const KeyringTarget = "keyring"

// IsPostgres reports whether target is a PostgreSQL URL rather than a
// SQLite file path.
func IsPostgres(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// New picks a backend from target. PostgreSQL URLs are validated and
// rejected when they embed a password; anything else is a SQLite path,
// with a leading ~ expanded.
func New(target string) (Provider, error) {
	if target == KeyringTarget {
		connStr, err := keyring.Get(keyring.SecretDatabase)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("no connection string in keyring, store one with 'finlit keyring set %s <url>'", keyring.SecretDatabase)
		}
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	}
	if IsPostgres(target) {
		if err := postgres.ValidateConnString(target); err != nil {
			return nil, err
		}
		return postgres.New(target), nil
	}
	path, err := utils.ExpandPath(target)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}
