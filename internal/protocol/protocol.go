// Package protocol implements the line protocol spoken with the backing
// vellum binary: the argv encoding of navigation requests and the decoding
// of the single-line replies and selector records that come back.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NavigationRequest describes one movement through history relative to the
// current cursor position.
type NavigationRequest struct {
	// Direction is -1 for older entries, +1 for newer ones. The ordering
	// semantics belong to the backing process; this layer only relays the
	// sign.
	Direction int

	// Cursor is the entry id the movement starts from. Empty means "after
	// the most recent entry".
	Cursor string

	// Prefix restricts matches to commands starting with the given text.
	// Populated only when Cursor is empty, i.e. at the start of a
	// navigation sequence.
	Prefix string

	// SessionOnly limits movement to entries stored by the current session.
	SessionOnly bool

	// ExtraArgs are user-configured arguments appended verbatim after the
	// flags, before the positional pair.
	ExtraArgs []string
}

// EncodeMove renders the argv for the backing binary's move command:
//
//	move --with-id [--session] [--prefix=<text>] [extra...] -- <direction> <cursor>
//
// The "--" keeps a leading dash in the direction (or in user-typed prefix
// text) from being parsed as a flag by the backing process.
func EncodeMove(req NavigationRequest) []string {
	args := []string{"move", "--with-id"}
	if req.SessionOnly {
		args = append(args, "--session")
	}
	if req.Prefix != "" {
		args = append(args, "--prefix="+req.Prefix)
	}
	args = append(args, req.ExtraArgs...)
	args = append(args, "--", strconv.Itoa(req.Direction), req.Cursor)
	return args
}

// NavigationResponse is a decoded "<id>|<line>" reply from the move command.
// An empty EntryID is valid and denotes a line with no identifiable entry
// (for example an edited-but-unsaved line); it must not be coerced to any
// default.
type NavigationResponse struct {
	EntryID string
	Line    string
}

// ErrNoEntry is returned when the backing process replies with a bare empty
// line, which it emits when a movement runs off either end of history.
var ErrNoEntry = errors.New("no entry at requested position")

// MalformedReplyError reports a move reply that carries no delimiter. The
// raw reply is preserved for debug logging; callers must treat this as a
// no-op transition, never as fatal.
type MalformedReplyError struct {
	Raw string
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("malformed move reply %q: missing %q delimiter", e.Raw, "|")
}

// DecodeResponse parses a single reply line from the move command, splitting
// on the first "|" only so the command text may itself contain "|".
func DecodeResponse(raw string) (NavigationResponse, error) {
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return NavigationResponse{}, ErrNoEntry
	}
	id, line, ok := strings.Cut(raw, "|")
	if !ok {
		return NavigationResponse{}, &MalformedReplyError{Raw: raw}
	}
	return NavigationResponse{EntryID: id, Line: line}, nil
}

// Selection is the record chosen in the external selector. Selector records
// are tab-delimited rather than pipe-delimited so that command text with
// embedded pipes round-trips unharmed.
type Selection struct {
	EntryID string
	Line    string
}

// DecodeSelection parses the selector's output line, splitting on the first
// tab only.
func DecodeSelection(raw string) (Selection, error) {
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return Selection{}, ErrNoEntry
	}
	id, line, ok := strings.Cut(raw, "\t")
	if !ok {
		return Selection{}, &MalformedReplyError{Raw: raw}
	}
	return Selection{EntryID: id, Line: line}, nil
}
