// Package expect provides shell session testing utilities using go-expect.
//
// It wraps the Netflix go-expect library to drive real interactive bash, zsh
// and fish sessions against the emitted integration scripts, with the backing
// binary replaced by a logging stub.
package expect

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"

	"github.com/vellum-tools/vellum-shell/internal/dialect"
)

// Key constants for special keys (ANSI escape sequences)
const (
	KeyUp     = "\x1b[A"
	KeyDown   = "\x1b[B"
	KeyEnter  = "\r"
	KeyCtrlC  = "\x03"
	KeyCtrlD  = "\x04"
	KeyCtrlR  = "\x12"
	KeyEscape = "\x1b"
)

// ShellSession wraps go-expect for interactive shell testing.
type ShellSession struct {
	Console *expect.Console
	Shell   string
	Timeout time.Duration
	cmd     *exec.Cmd
}

// SessionOption configures a ShellSession.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	timeout    time.Duration
	env        []string
	showOutput bool
}

// WithTimeout sets the default timeout for expect operations.
func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.timeout = d
	}
}

// WithEnv adds environment variables to the shell session.
func WithEnv(env ...string) SessionOption {
	return func(c *sessionConfig) {
		c.env = append(c.env, env...)
	}
}

// WithOutput enables output to stdout for debugging.
func WithOutput(show bool) SessionOption {
	return func(c *sessionConfig) {
		c.showOutput = show
	}
}

// NewSession starts a new interactive shell session.
//
// The shell parameter should be "zsh", "bash", or "fish". The session starts
// with no RC files (-f for zsh, --norc for bash, --no-config for fish) so
// each test sees a clean environment.
func NewSession(shell string, opts ...SessionOption) (*ShellSession, error) {
	cfg := &sessionConfig{
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	shellPath, err := exec.LookPath(shell)
	if err != nil {
		return nil, fmt.Errorf("shell %q not found: %w", shell, err)
	}

	var consoleOpts []expect.ConsoleOpt
	consoleOpts = append(consoleOpts, expect.WithDefaultTimeout(cfg.timeout))
	if cfg.showOutput {
		consoleOpts = append(consoleOpts, expect.WithStdout(os.Stdout))
	}

	console, err := expect.NewConsole(consoleOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create console: %w", err)
	}

	var args []string
	switch shell {
	case "zsh":
		args = []string{"-f", "-i"}
	case "bash":
		args = []string{"--norc", "--noprofile", "-i"}
	case "fish":
		args = []string{"--no-config", "--interactive"}
	default:
		args = []string{"-i"}
	}

	cmd := exec.Command(shellPath, args...) //nolint:gosec // G204: shellPath is from test config
	cmd.Stdin = console.Tty()
	cmd.Stdout = console.Tty()
	cmd.Stderr = console.Tty()

	// A session inherited from the developer's own integrated shell would
	// defeat the sentinel and session checks under test, so scrub the
	// integration variables entirely.
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "VELLUM_") {
			continue
		}
		cmd.Env = append(cmd.Env, kv)
	}
	cmd.Env = append(cmd.Env, cfg.env...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	if err := cmd.Start(); err != nil {
		console.Close()
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	session := &ShellSession{
		Console: console,
		Shell:   shell,
		Timeout: cfg.timeout,
		cmd:     cmd,
	}

	// Give the shell a moment to print its first prompt.
	time.Sleep(100 * time.Millisecond)

	return session, nil
}

// Send sends text to the shell without a newline.
func (s *ShellSession) Send(text string) error {
	_, err := s.Console.Send(text)
	return err
}

// SendLine sends text followed by a newline.
func (s *ShellSession) SendLine(text string) error {
	_, err := s.Console.SendLine(text)
	return err
}

// SendKey sends a special key (use Key* constants).
func (s *ShellSession) SendKey(key string) error {
	_, err := s.Console.Send(key)
	return err
}

// Expect waits for an exact string match in the output.
func (s *ShellSession) Expect(str string) (string, error) {
	return s.Console.ExpectString(str)
}

// ExpectTimeout waits for an exact string match with a specific timeout.
func (s *ShellSession) ExpectTimeout(str string, timeout time.Duration) (string, error) {
	return s.Console.Expect(expect.String(str), expect.WithTimeout(timeout))
}

// ExpectRegex waits for a regex pattern match in the output.
func (s *ShellSession) ExpectRegex(pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid regex: %w", err)
	}
	return s.Console.Expect(expect.Regexp(re))
}

// Close terminates the shell session.
func (s *ShellSession) Close() error {
	s.SendLine("exit")

	if err := s.Console.Close(); err != nil {
		return err
	}

	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}

	return nil
}

// Stub is a fake vellum-shell binary installed for one test. Every
// invocation appends one line per call to LogFile recording the argv and the
// hook environment, and canned replies cover the session, nav and search
// subcommands.
type Stub struct {
	// Bin is the path of the stub executable.
	Bin string

	// LogFile records one line per invocation.
	LogFile string
}

const stubScript = `#!/bin/sh
printf 'argv=%s cmd=%s buffer=%s cursor=%s\n' "$*" "$VELLUM_SHELL_CMD" "$VELLUM_SHELL_BUFFER" "$VELLUM_SHELL_CURSOR" >> "%LOG%"
case "$1 $2" in
"session id") printf '0198c6f2-stub\n' ;;
"session start") printf '2026-01-15T10:30:00Z\n' ;;
esac
case "$1" in
nav) printf '42\tgit status\n' ;;
search) printf '7\tgit push\n' ;;
esac
exit 0
`

// NewStub writes the stub binary into a temp dir and returns it.
func NewStub(t *testing.T) *Stub {
	t.Helper()

	dir := t.TempDir()
	logFile := filepath.Join(dir, "calls.log")
	bin := filepath.Join(dir, "vellum-shell")

	script := strings.ReplaceAll(stubScript, "%LOG%", logFile)
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}

	return &Stub{Bin: bin, LogFile: logFile}
}

// Calls returns the raw invocation log.
func (s *Stub) Calls(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(s.LogFile)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		t.Fatalf("failed to read stub log: %v", err)
	}
	return string(data)
}

// WriteScript renders the integration script for the given shell, pointed at
// the stub binary, and writes it to a temp file for sourcing.
func WriteScript(t *testing.T, shell string, stub *Stub, selector string) string {
	t.Helper()

	script, err := dialect.Script(shell, dialect.Vars{
		Bin:      stub.Bin,
		Selector: selector,
	})
	if err != nil {
		t.Fatalf("failed to render %s script: %v", shell, err)
	}

	path := filepath.Join(t.TempDir(), "vellum."+shell)
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("failed to write %s script: %v", shell, err)
	}
	return path
}

// SkipIfShellMissing skips the test if the specified shell is not available.
func SkipIfShellMissing(t *testing.T, shell string) {
	t.Helper()
	if _, err := exec.LookPath(shell); err != nil {
		t.Skipf("%s not available, skipping", shell)
	}
}

// SkipIfShort skips interactive tests in short mode.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping interactive test in short mode")
	}
}
