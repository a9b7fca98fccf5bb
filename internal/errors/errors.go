package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/vitrine/internal/logger"
)

var (
	// ErrClientNotFound is returned by CLI lookups for an unknown client id
	ErrClientNotFound = errors.New("client not found")
	// ErrCardNotFound is returned by CLI lookups for an unknown card id
	ErrCardNotFound = errors.New("card not found")
)

// ClientNotFound wraps ErrClientNotFound with the offending id.
func ClientNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrClientNotFound, id)
}

// CardNotFound wraps ErrCardNotFound with the offending id.
func CardNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrCardNotFound, id)
}

// IsNotFound reports whether err is a client or card lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) || errors.Is(err, ErrCardNotFound)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
