package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/kaizenhq/kaizen/internal/logger"
)

// UsageError marks a failure caused by bad user input rather than by the
// program or its storage. It is reported without being logged.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// Usagef builds a UsageError from a format string.
func Usagef(format string, args ...interface{}) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// IsUsage reports whether err wraps a UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
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

// Fatal reports err on stderr and exits with status 1. Usage errors exit
// with status 2 and are not logged.
func Fatal(err error) {
	if err == nil {
		return
	}
	code := 1
	if IsUsage(err) {
		code = 2
	} else {
		logger.Error("command failed", "error", err)
	}
	fmt.Fprintf(os.Stderr, "%s\n", Format(err))
	os.Exit(code)
}
