// Package backing invokes the external vellum binary that owns history
// storage, encryption and synchronization. Every call is a blocking
// subprocess invocation; this layer never holds history data itself.
package backing

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/vellum-tools/vellum-shell/internal/protocol"
)

// DefaultBinary is the backing binary looked up on PATH when no override is
// configured.
const DefaultBinary = "vellum"

// Runner executes one backing-process invocation. It exists so tests can
// substitute canned replies for real subprocess calls.
type Runner interface {
	// Output runs the binary with args and returns its stdout.
	Output(ctx context.Context, args ...string) (string, error)

	// Run runs the binary with args, discarding stdout.
	Run(ctx context.Context, args ...string) error
}

// execRunner is the production Runner backed by os/exec.
type execRunner struct {
	bin string
}

func (r *execRunner) Output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Stderr = io.Discard
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", r.bin, args[0], err)
	}
	return string(out), nil
}

func (r *execRunner) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", r.bin, args[0], err)
	}
	return nil
}

// Client is the typed façade over the backing binary's subcommands.
type Client struct {
	runner Runner
}

// New creates a client that invokes the given binary. An empty name selects
// DefaultBinary.
func New(bin string) *Client {
	if bin == "" {
		bin = DefaultBinary
	}
	return &Client{runner: &execRunner{bin: bin}}
}

// NewWithRunner creates a client over a caller-supplied Runner.
func NewWithRunner(r Runner) *Client {
	return &Client{runner: r}
}

// InitSession asks the backing binary for a fresh session token.
func (c *Client) InitSession(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, "init", "session")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// InitTimestamp asks the backing binary for a session start timestamp.
func (c *Client) InitTimestamp(ctx context.Context) (string, error) {
	out, err := c.runner.Output(ctx, "init", "timestamp")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Store forwards an executed command line to the backing store. The command
// text is passed after "--" so leading dashes survive intact. Stdout and the
// exit status are ignored by callers; capture is best-effort.
func (c *Client) Store(ctx context.Context, cmdText string) error {
	return c.runner.Run(ctx, "store", "--", cmdText)
}

// Move requests one navigation step and decodes the single-line reply.
func (c *Client) Move(ctx context.Context, req protocol.NavigationRequest) (protocol.NavigationResponse, error) {
	out, err := c.runner.Output(ctx, protocol.EncodeMove(req)...)
	if err != nil {
		return protocol.NavigationResponse{}, err
	}
	return protocol.DecodeResponse(out)
}

// History returns the full rendering of history as selector-ready records,
// each entry id and command text separated by a tab. Extra arguments are the
// user-configured filter list (for example a session scope).
func (c *Client) History(ctx context.Context, extraArgs []string) (string, error) {
	args := append([]string{"history", "--fzf"}, extraArgs...)
	return c.runner.Output(ctx, args...)
}
