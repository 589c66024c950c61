package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/pocket/internal/constants"
	"github.com/julianstephens/pocket/internal/logger"
)

// hint returns a follow-up line for errors the user can act on.
func hint(err error) string {
	switch {
	case stderrors.Is(err, ErrConfirmationRequired):
		return "re-run with --yes to delete without a prompt"
	case IsNotFound(err):
		return "run '" + constants.AppName + " habit list' to see available habits"
	case IsStorage(err):
		return "run '" + constants.AppName + " doctor' to check the database"
	}
	return ""
}

// Format renders err for the terminal with an "Error: " prefix and, for known
// kinds, a hint on the next line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if h := hint(err); h != "" {
		msg += "\n  Hint: " + h
	}
	return msg
}

// Formatf formats a message with the "Error: " prefix.
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs err with its kind and exits with status 1. nil is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err, "kind", kind(err))
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}

// Fatalf is Fatal for a formatted message.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}

func kind(err error) string {
	switch {
	case IsValidation(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	case stderrors.Is(err, ErrConfirmationRequired):
		return "confirmation"
	case IsStorage(err):
		return "storage"
	case stderrors.Is(err, ErrComputation):
		return "computation"
	}
	return "other"
}
