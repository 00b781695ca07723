package keyring

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"

	"github.com/kaizenhq/kaizen/internal/constants"
)

var (
	// ErrNotFound is returned when no secret is stored under a key
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names one credential kaizen keeps in the OS keyring, along with
// the environment variable that can supply it instead.
type Secret struct {
	User string
	Env  string
}

var (
	// DBConnection is the PostgreSQL connection string.
	DBConnection = Secret{User: constants.DefaultKeyringUser, Env: constants.EnvDBConnection}
	// NarratorAPIKey is the API key for the score narrator.
	NarratorAPIKey = Secret{User: constants.NarratorKeyringUser, Env: constants.EnvNarratorAPIKey}
)

// Get reads the secret from the OS keyring.
func Get(s Secret) (string, error) {
	value, err := keyring.Get(constants.AppName, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Lookup resolves a secret from its environment variable first and the OS
// keyring second. An unavailable keyring is treated like a missing entry.
func Lookup(s Secret) (string, bool) {
	if v := os.Getenv(s.Env); v != "" {
		return v, true
	}
	v, err := Get(s)
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores the secret in the OS keyring.
func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s.User)
	}
	if err := keyring.Set(constants.AppName, s.User, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s.User, err)
	}
	return nil
}

// Delete removes the secret from the OS keyring.
func Delete(s Secret) error {
	err := keyring.Delete(constants.AppName, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s.User, err)
	}
	return nil
}

// IsAvailable is a best-effort probe of the OS keyring.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-probe")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
