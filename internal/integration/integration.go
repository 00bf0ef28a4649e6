// Package integration assembles the per-shell context object: one value,
// constructed at shell startup and threaded through every hook and widget
// invocation, holding the session identity, the cursor state machine, the
// hook registries and the search bridge. Nothing in here is a process-wide
// singleton.
package integration

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vellum-tools/vellum-shell/internal/backing"
	"github.com/vellum-tools/vellum-shell/internal/config"
	"github.com/vellum-tools/vellum-shell/internal/hooks"
	"github.com/vellum-tools/vellum-shell/internal/nav"
	"github.com/vellum-tools/vellum-shell/internal/protocol"
	"github.com/vellum-tools/vellum-shell/internal/search"
	"github.com/vellum-tools/vellum-shell/internal/session"
)

// Context is the shared state for one interactive shell instance.
type Context struct {
	Session session.Session
	Config  *config.Config
	Logger  *slog.Logger

	client  *backing.Client
	machine *nav.Machine
	bridge  *search.Bridge

	preexec *hooks.Registry
	precmd  *hooks.Registry

	initialized bool
}

// New builds a Context from configuration. Initialize must be called before
// the hook operations are used.
func New(cfg *config.Config, logger *slog.Logger) *Context {
	return newWithClient(cfg, logger, backing.New(cfg.Backing.Binary))
}

func newWithClient(cfg *config.Config, logger *slog.Logger, client *backing.Client) *Context {
	c := &Context{
		Config:  cfg,
		Logger:  logger,
		client:  client,
		preexec: hooks.NewRegistry(),
		precmd:  hooks.NewRegistry(),
	}

	c.machine = nav.New(client, nav.Options{
		SessionOnly: cfg.Nav.SessionOnly,
		ExtraArgs:   cfg.Nav.ExtraArgs,
		Logger:      logger,
	})

	c.bridge = search.New(client, search.Options{
		Selector:     cfg.Search.Selector,
		SelectorOpts: cfg.Search.SelectorOpts,
		FilterArgs:   cfg.Search.FilterArgs,
		Logger:       logger,
	})

	return c
}

// Initialize establishes the session and registers the command-capture and
// prompt-reset hooks. Calling it a second time is a no-op: the session is
// kept and no hook is registered twice.
func (c *Context) Initialize(ctx context.Context) {
	if c.initialized {
		return
	}

	c.Session = session.Ensure(ctx, c.client, c.Logger)
	c.preexec.Register("capture", c.captureHook)
	c.precmd.Register("cursor-reset", c.resetHook)
	c.machine.Reset()
	c.initialized = true
}

// Capture runs the pre-exec hooks for one executed command line. The text
// arrives exactly as the shell captured it, whitespace included.
func (c *Context) Capture(ctx context.Context, cmdText string) {
	c.preexec.Fire(ctx, cmdText)
}

// PromptReset runs the pre-prompt hooks. After it returns the cursor is
// Idle, so the next arrow key starts a fresh navigation sequence.
func (c *Context) PromptReset(ctx context.Context) {
	c.precmd.Fire(ctx, "")
}

// Navigate performs one arrow-key step. ok is false when the buffer must not
// change (failure, off-the-end, or a multi-line edit in progress).
func (c *Context) Navigate(ctx context.Context, direction int, buffer string) (line string, ok bool) {
	return c.machine.Move(ctx, direction, buffer)
}

// Search runs the interactive selector with the buffer as the initial query.
// On a selection the cursor machine is seeded with the selected entry so a
// following arrow key continues from it.
func (c *Context) Search(ctx context.Context, buffer string) (protocol.Selection, error) {
	sel, err := c.bridge.Run(ctx, buffer)
	if err != nil {
		return protocol.Selection{}, err
	}
	c.machine.Seed(sel.EntryID)
	return sel, nil
}

// Cursor exposes the machine's position for glue that round-trips it
// through a shell variable between key presses.
func (c *Context) Cursor() (string, bool) {
	return c.machine.Cursor()
}

// RestoreCursor rebuilds the machine position from a round-tripped value.
func (c *Context) RestoreCursor(id string) {
	c.machine.RestoreCursor(id)
}

// captureHook forwards the command to the backing store. Fire-and-forget:
// losing an entry must never block the prompt, so failures are only visible
// at debug level.
func (c *Context) captureHook(ctx context.Context, cmdText string) {
	if cmdText == "" {
		return
	}
	if err := c.client.Store(ctx, cmdText); err != nil {
		c.Logger.Debug("store failed", "error", err)
	}
}

// resetHook returns the cursor to Idle at each new prompt.
func (c *Context) resetHook(ctx context.Context, _ string) {
	c.machine.Reset()
}

// IsCancelled reports whether a Search error is a user cancellation, in
// which case the caller propagates the exit status and redraws the prompt
// unmodified.
func IsCancelled(err error) (int, bool) {
	var cancelled *search.CancelledError
	if errors.As(err, &cancelled) {
		return cancelled.ExitCode, true
	}
	return 0, false
}
