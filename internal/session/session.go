// Package session establishes the per-shell session identity. A session is
// created once per interactive shell start, exported into the environment by
// the shell glue, and never mutated afterwards.
package session

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Environment variable names shared with the backing binary.
const (
	EnvSession      = "VELLUM_SESSION"
	EnvSessionStart = "VELLUM_SESSION_START"

	// EnvSentinel marks a shell whose integration is already initialized.
	// When set, re-sourcing the glue is a no-op: no second session, no
	// duplicate hook registration.
	EnvSentinel = "VELLUM_SHELL_ACTIVE"
)

// Session identifies one interactive shell instance.
type Session struct {
	// ID is the opaque session token.
	ID string

	// Start is the session start timestamp as an opaque token (RFC3339 as
	// produced by the backing binary). May be empty.
	Start string
}

// Initializer is the subset of the backing client needed to mint sessions.
type Initializer interface {
	InitSession(ctx context.Context) (string, error)
	InitTimestamp(ctx context.Context) (string, error)
}

// FromEnv returns the session already exported in this shell, if any.
func FromEnv() (Session, bool) {
	id := os.Getenv(EnvSession)
	if id == "" {
		return Session{}, false
	}
	return Session{ID: id, Start: os.Getenv(EnvSessionStart)}, true
}

// Active reports whether the integration sentinel is set in this shell.
func Active() bool {
	return os.Getenv(EnvSentinel) != ""
}

// Establish obtains a session for a freshly started shell. The backing
// binary is the source of truth for tokens; when it is unreachable the
// session falls back to a locally generated UUID so the shell still gets a
// working integration, and the degradation is logged at debug level.
func Establish(ctx context.Context, init Initializer, logger *slog.Logger) Session {
	s := Session{}

	id, err := init.InitSession(ctx)
	if err != nil || id == "" {
		logger.Debug("backing init session failed, generating local token", "error", err)
		id = localToken()
	}
	s.ID = id

	start, err := init.InitTimestamp(ctx)
	if err != nil || start == "" {
		logger.Debug("backing init timestamp failed, using local clock", "error", err)
		start = time.Now().UTC().Format(time.RFC3339)
	}
	s.Start = start

	return s
}

// Ensure returns the shell's existing session or establishes a new one.
// Idempotent with respect to the environment: a shell that already exported
// a session keeps it across re-sourcing.
func Ensure(ctx context.Context, init Initializer, logger *slog.Logger) Session {
	if s, ok := FromEnv(); ok {
		return s
	}
	return Establish(ctx, init, logger)
}

// localToken generates a session token without the backing binary. Time
// ordered like the backing binary's own tokens.
func localToken() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}
