// Package search bridges the shell's Ctrl-R widget to an external
// interactive selector: it pipes the backing process's history rendering
// into the selector and reconciles the selection back into the edit buffer.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/vellum-tools/vellum-shell/internal/protocol"
)

// HistorySource streams selector-ready history records.
type HistorySource interface {
	History(ctx context.Context, extraArgs []string) (string, error)
}

// Options configure a Bridge.
type Options struct {
	// Selector is the interactive filter command, e.g. "fzf".
	Selector string

	// SelectorOpts is a shell-style option string appended to the selector
	// argv before the query.
	SelectorOpts string

	// FilterArgs are passed to the history listing, e.g. ["--session"].
	FilterArgs []string

	// Logger receives debug-level traces. Nil disables them.
	Logger *slog.Logger
}

// CancelledError reports that the user left the selector without picking a
// record. The exit status is preserved so the caller can propagate it to the
// shell, which then redraws the prompt unmodified.
type CancelledError struct {
	ExitCode int
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("selector cancelled (exit status %d)", e.ExitCode)
}

// Bridge runs search invocations. It owns the "last selected id" slot used
// to keep arrow-key navigation consistent after a search.
type Bridge struct {
	source HistorySource
	opts   Options

	lastSelected string

	// runSelector is the subprocess seam; tests replace it.
	runSelector func(ctx context.Context, argv []string, input string) (string, error)
}

// New creates a Bridge.
func New(source HistorySource, opts Options) *Bridge {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{
		source:      source,
		opts:        opts,
		runSelector: runSelectorProcess,
	}
}

// Run pipes history into the selector with query as the initial filter text
// and blocks until the selector exits.
//
// On a selection it returns the decoded record. On cancellation it returns a
// CancelledError carrying the selector's exit status; the caller must leave
// the buffer exactly as it was. History or selector failures likewise leave
// the buffer untouched.
func (b *Bridge) Run(ctx context.Context, query string) (protocol.Selection, error) {
	records, err := b.source.History(ctx, b.opts.FilterArgs)
	if err != nil {
		b.opts.Logger.Debug("history listing failed", "error", err)
		return protocol.Selection{}, err
	}

	argv, err := b.selectorArgv(query)
	if err != nil {
		return protocol.Selection{}, err
	}

	out, err := b.runSelector(ctx, argv, records)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return protocol.Selection{}, &CancelledError{ExitCode: exitErr.ExitCode()}
		}
		return protocol.Selection{}, err
	}

	// Only the first output line matters; fzf appends a trailing newline.
	line, _, _ := strings.Cut(out, "\n")
	sel, err := protocol.DecodeSelection(line)
	if err != nil {
		if errors.Is(err, protocol.ErrNoEntry) {
			return protocol.Selection{}, &CancelledError{ExitCode: 0}
		}
		return protocol.Selection{}, err
	}

	b.lastSelected = sel.EntryID
	return sel, nil
}

// LastSelected returns the entry id of the most recent selection, or empty.
func (b *Bridge) LastSelected() string {
	return b.lastSelected
}

// selectorArgv assembles the selector command line: configured options
// first, then the initial query.
func (b *Bridge) selectorArgv(query string) ([]string, error) {
	argv := []string{b.opts.Selector}

	if b.opts.SelectorOpts != "" {
		opts, err := shlex.Split(b.opts.SelectorOpts)
		if err != nil {
			return nil, fmt.Errorf("invalid selector options %q: %w", b.opts.SelectorOpts, err)
		}
		argv = append(argv, opts...)
	}

	if query != "" {
		argv = append(argv, "--query="+query)
	}
	return argv, nil
}

// runSelectorProcess is the production selector seam. The selector draws its
// interface on the terminal (fzf uses /dev/tty and stderr), so only stdout
// is captured.
func runSelectorProcess(ctx context.Context, argv []string, input string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	return string(out), err
}
