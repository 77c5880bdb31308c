package errors

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation is a generic sentinel for malformed input.
	ErrValidation = errors.New("invalid argument")
	// ErrStorage marks a backing-store I/O failure.
	ErrStorage = errors.New("storage failure")
	// ErrConflict marks transaction contention that may succeed on retry.
	ErrConflict = errors.New("transient conflict")
	// ErrAnalyticsWrite marks an analytics write that exhausted its retries.
	// The primary path logs it and moves on, it never reaches a response.
	ErrAnalyticsWrite = errors.New("analytics write failed")
)

// IsRetryable reports whether a store error is worth another attempt inside a
// bounded retry loop. Covers our own conflict sentinel plus the contention
// strings the postgres and sqlite drivers produce. Unique violations count:
// when two transactions race to insert the first row for a key, the loser
// fails on the unique index and finds the winner's row on retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflict) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{
		"could not serialize",
		"deadlock detected",
		"database is locked",
		"database table is locked",
		"duplicate key",
		"unique constraint",
		"23505",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
