package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitchain/internal/logger"
)

var (
	// ErrDuplicateEmail is returned when signing up with an email that is already registered
	ErrDuplicateEmail = errors.New("user already exists")
	// ErrInvalidCredentials is returned when the email is unknown or the password does not match
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidAccount is returned when signup input is incomplete
	ErrInvalidAccount = errors.New("invalid account details")
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyCompletedToday signals a no-op completion. It is not a failure.
	ErrAlreadyCompletedToday = errors.New("habit already completed today")
	// ErrInvalidHabit is returned when habit fields fail validation
	ErrInvalidHabit = errors.New("invalid habit")
	// ErrNotAuthenticated is returned when an operation needs an active session
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrPersistence is returned when the storage layer is unavailable or a write fails
	ErrPersistence = errors.New("storage error")
	// ErrStorageNotInitialized is returned when loading a store that was never initialized
	ErrStorageNotInitialized = errors.New("storage not initialized, run 'habitchain init' first")
)

// Persistence wraps err as an ErrPersistence. A nil err stays nil.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// IsSoft reports whether err is a signal rather than a failure
func IsSoft(err error) bool {
	return errors.Is(err, ErrAlreadyCompletedToday)
}

// Message returns a user-facing message for err
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateEmail):
		return "An account with that email already exists."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrAlreadyCompletedToday):
		return "Already completed today. Come back tomorrow!"
	case errors.Is(err, ErrNotFound):
		return "Habit not found."
	case errors.Is(err, ErrNotAuthenticated):
		return "You are not logged in. Run 'habitchain login' first."
	case errors.Is(err, ErrStorageNotInitialized):
		return "Storage is not initialized. Run 'habitchain init' first."
	case errors.Is(err, ErrPersistence):
		return "Could not save your changes. Please try again."
	default:
		return err.Error()
	}
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
