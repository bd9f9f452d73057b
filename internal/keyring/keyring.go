package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/finlit/internal/constants"
)

// Secret names a credential kept in the OS keyring instead of the config
// file.
type Secret string

const (
	// SecretDatabase holds a PostgreSQL connection string (with password).
	SecretDatabase Secret = constants.DefaultKeyringUser
	SecretAMQPURL  Secret = "amqp-url"
	SecretRedis    Secret = "redis-password"
)

var Secrets = []Secret{SecretDatabase, SecretAMQPURL, SecretRedis}

var (
	ErrNotFound           = errors.New("credentials not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
	ErrUnknownSecret      = errors.New("unknown secret name")
)

func ParseSecret(name string) (Secret, error) {
	for _, s := range Secrets {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSecret, name)
}

func Get(secret Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, string(secret))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func Set(secret Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", secret)
	}
	if err := keyring.Set(constants.AppName, string(secret), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", secret, err)
	}
	return nil
}

func Delete(secret Secret) error {
	err := keyring.Delete(constants.AppName, string(secret))
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s from keyring: %w", secret, err)
	}
	return nil
}

// Lookup returns the stored value, or fallback when nothing is stored or
// the keyring cannot be reached.
func Lookup(secret Secret, fallback string) string {
	value, err := Get(secret)
	if err != nil {
		return fallback
	}
	return value
}

// IsAvailable is a best-effort probe; a missing entry still means the
// keyring answered.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
