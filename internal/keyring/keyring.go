package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/vitrine/internal/constants"
)

var (
	// ErrNotFound is returned when no anon key is stored in the keyring
	ErrNotFound = errors.New("remote anon key not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetAnonKey retrieves the remote store anon key from the OS keyring.
// Returns ErrNotFound if no key is stored.
func GetAnonKey() (string, error) {
	key, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return key, nil
}

// SetAnonKey stores the remote store anon key in the OS keyring.
func SetAnonKey(key string) error {
	if key == "" {
		return errors.New("anon key cannot be empty")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, key); err != nil {
		return fmt.Errorf("failed to store anon key in keyring: %w", err)
	}
	return nil
}

// DeleteAnonKey removes the remote store anon key from the OS keyring.
func DeleteAnonKey() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete anon key from keyring: %w", err)
	}
	return nil
}

// ResolveAnonKey returns explicit when set, otherwise the keyring entry.
// A missing or unavailable keyring yields "" so the caller falls back to
// local-only mode.
func ResolveAnonKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	key, err := GetAnonKey()
	if err != nil {
		return ""
	}
	return key
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
