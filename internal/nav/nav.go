// Package nav implements the arrow-key cursor state machine: the per-shell
// notion of "which history entry is currently in the edit buffer" while a
// navigation sequence is in progress.
package nav

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vellum-tools/vellum-shell/internal/protocol"
)

// Directions relayed to the backing process. The backing process owns the
// ordering semantics; this layer only passes the sign through.
const (
	Older = -1
	Newer = 1
)

// Mover issues one navigation step against the backing process.
type Mover interface {
	Move(ctx context.Context, req protocol.NavigationRequest) (protocol.NavigationResponse, error)
}

// Options configure a Machine.
type Options struct {
	// SessionOnly restricts movement to the current session's entries.
	SessionOnly bool

	// ExtraArgs are user-configured arguments relayed on every move.
	ExtraArgs []string

	// Logger receives debug-level traces. Nil disables them.
	Logger *slog.Logger
}

// Machine tracks the cursor through a navigation sequence.
//
// It has two states: Idle (no sequence in progress) and Navigating, holding
// the entry id of the last line shown. The first move of a sequence carries
// the buffer text as a prefix filter; continuations carry only the cursor,
// which is what keeps the list stable while the user scrolls even if they
// edit the buffer mid-sequence.
type Machine struct {
	mover Mover
	opts  Options

	cursor     string
	navigating bool
}

// New creates an idle Machine.
func New(mover Mover, opts Options) *Machine {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{mover: mover, opts: opts}
}

// Move performs one navigation step. It returns the line to place in the
// edit buffer and whether the buffer should change at all.
//
// Every failure mode (subprocess error, malformed reply, movement off the
// end of history, a buffer in multi-line edit) degrades to "the key press
// did nothing": ok is false and the machine keeps its prior state.
func (m *Machine) Move(ctx context.Context, direction int, buffer string) (line string, ok bool) {
	// A buffer with an embedded newline is a multi-line edit in progress;
	// the arrow keys belong to in-buffer movement, so no request is sent.
	if strings.Contains(buffer, "\n") {
		return "", false
	}

	req := protocol.NavigationRequest{
		Direction:   direction,
		SessionOnly: m.opts.SessionOnly,
		ExtraArgs:   m.opts.ExtraArgs,
	}
	if m.navigating {
		req.Cursor = m.cursor
	} else {
		req.Prefix = buffer
	}

	resp, err := m.mover.Move(ctx, req)
	if err != nil {
		m.opts.Logger.Debug("move failed", "direction", direction, "error", err)
		return "", false
	}

	m.cursor = resp.EntryID
	m.navigating = true
	return resp.Line, true
}

// Reset returns the machine to Idle. Called unconditionally at every new
// prompt so navigation restarts from the newest matching entry.
func (m *Machine) Reset() {
	m.cursor = ""
	m.navigating = false
}

// Seed places the machine directly in the Navigating state at the given
// entry. Used after a search selection so that a following arrow key
// continues relative to the selected entry rather than restarting.
func (m *Machine) Seed(entryID string) {
	m.cursor = entryID
	m.navigating = true
}

// Cursor returns the current entry id and whether a sequence is active.
func (m *Machine) Cursor() (string, bool) {
	return m.cursor, m.navigating
}

// RestoreCursor rebuilds machine state from a cursor value that round-tripped
// through a shell variable between key presses. An empty value means Idle;
// the shell-side encoding cannot distinguish Idle from a sequence positioned
// on an entry with no id, and such a sequence simply restarts.
func (m *Machine) RestoreCursor(id string) {
	m.cursor = id
	m.navigating = id != ""
}
