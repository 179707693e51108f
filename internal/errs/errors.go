// Package errs contains sentinel and typed errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across cache/store/client layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication against the platform.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoCredential indicates no persisted credential exists (first run / signed out).
	ErrNoCredential = errors.New("no stored credential")

	// ErrNoSession indicates an operation that needs an authenticated session was
	// called before login completed.
	ErrNoSession = errors.New("no active session")
)

// AuthError wraps a failure during token exchange or authenticated fetch.
type AuthError struct {
	Op     string // "exchange", "user", "starred"
	Status int    // HTTP status, 0 on transport failure
	Err    error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("auth %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// CacheError wraps a local cache read/write failure. Callers degrade to a
// cache-miss rather than failing the operation.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string { return fmt.Sprintf("cache %s: %v", e.Op, e.Err) }

func (e *CacheError) Unwrap() error { return e.Err }

// PersistenceError wraps a credential write failure. Login proceeds with the
// in-memory session; the error is surfaced as a warning, never a rejection.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist credential: %v", e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
