package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with the given args, capturing stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		captureStdin = false
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// isolateConfig points the XDG directories at a temp dir so tests never read
// the developer's real config.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("VELLUM_BIN", "")
	t.Setenv("VELLUM_FZF_OPTS", "")
	return dir
}

// stubBacking installs a shell script standing in for the vellum binary. It
// logs every argv line to a file and responds according to the script body.
func stubBacking(t *testing.T, body string) (logFile string) {
	t.Helper()

	dir := t.TempDir()
	logFile = filepath.Join(dir, "calls.log")
	stub := filepath.Join(dir, "vellum-stub")

	script := "#!/bin/sh\nprintf '%s\\n' \"$*\" >> \"" + logFile + "\"\n" + body
	require.NoError(t, os.WriteFile(stub, []byte(script), 0o755))

	t.Setenv("VELLUM_BIN", stub)
	return logFile
}

func stubSession(t *testing.T) {
	t.Helper()
	t.Setenv("VELLUM_SESSION", "0198c6f2-test")
	t.Setenv("VELLUM_SESSION_START", "2026-01-15T10:30:00Z")
}

func readCalls(t *testing.T, logFile string) []string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestInit_Zsh(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, "", "init", "zsh")
	require.NoError(t, err)

	for _, req := range []string{
		"VELLUM_SHELL_ACTIVE",
		"VELLUM_SESSION",
		"zle -N",
		"bindkey",
		"add-zsh-hook",
		"vellum-shell capture",
		"vellum-shell nav",
		"vellum-shell search",
		"command -v fzf",
	} {
		assert.Contains(t, out, req)
	}
}

func TestInit_SelectorFromConfig(t *testing.T) {
	dir := isolateConfig(t)

	cfgDir := filepath.Join(dir, "vellum-shell")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	cfgFile := filepath.Join(cfgDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("search:\n  selector: vellum-picker\n"), 0o644))

	out, err := execute(t, "", "init", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "command -v vellum-picker")
	assert.NotContains(t, out, "command -v fzf")
}

func TestInit_UnknownShell(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "", "init", "tcsh")
	assert.Error(t, err)
}

func TestSessionID_FromEnvironment(t *testing.T) {
	isolateConfig(t)
	stubSession(t)

	out, err := execute(t, "", "session", "id")
	require.NoError(t, err)
	assert.Equal(t, "0198c6f2-test\n", out)
}

func TestSessionStart_FromEnvironment(t *testing.T) {
	isolateConfig(t)
	stubSession(t)

	out, err := execute(t, "", "session", "start")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-15T10:30:00Z\n", out)
}

func TestSession_EstablishedFromBacking(t *testing.T) {
	isolateConfig(t)
	t.Setenv("VELLUM_SESSION", "")
	t.Setenv("VELLUM_SESSION_START", "")
	logFile := stubBacking(t, `case "$1 $2" in
"init session") printf '0198c6f2-backing\n' ;;
esac
`)

	out, err := execute(t, "", "session", "id")
	require.NoError(t, err)
	assert.Equal(t, "0198c6f2-backing\n", out)
	assert.Contains(t, readCalls(t, logFile), "init session")
}

func TestCapture_StoresCommand(t *testing.T) {
	isolateConfig(t)
	stubSession(t)
	logFile := stubBacking(t, "")
	t.Setenv(EnvCmd, "echo 'hello | world'")

	out, err := execute(t, "", "capture")
	require.NoError(t, err)
	assert.Empty(t, out)

	calls := readCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.Equal(t, "store -- echo 'hello | world'", calls[0])
}

func TestCapture_EmptyCommandIsNoop(t *testing.T) {
	isolateConfig(t)
	stubSession(t)
	logFile := stubBacking(t, "")
	t.Setenv(EnvCmd, "")

	_, err := execute(t, "", "capture")
	require.NoError(t, err)
	assert.Empty(t, readCalls(t, logFile))
}

func TestCapture_FromStdin(t *testing.T) {
	isolateConfig(t)
	stubSession(t)
	logFile := stubBacking(t, "")
	t.Setenv(EnvCmd, "")

	_, err := execute(t, "git log --oneline\n", "capture", "--cmd-stdin")
	require.NoError(t, err)

	calls := readCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.Equal(t, "store -- git log --oneline", calls[0])
}

func TestCapture_BackingFailureStaysSilent(t *testing.T) {
	isolateConfig(t)
	stubSession(t)
	stubBacking(t, "exit 1\n")
	t.Setenv(EnvCmd, "echo hi")

	out, err := execute(t, "", "capture")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNav_FirstPressSendsPrefix(t *testing.T) {
	isolateConfig(t)
	stubSession(t)
	logFile := stubBacking(t, `case "$1" in
move) printf '42|git status\n' ;;
esac
`)
	t.Setenv(EnvBuffer, "git")
	t.Setenv(EnvCursor, "")

	out, err := execute(t, "", "nav", "--", "-1")
	require.NoError(t, err)
	assert.Equal(t, "42\tgit status\n", out)

	calls := readCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.Equal(t, "move --with-id --session --prefix=git -- -1 ", calls[0])
}

func TestNav_ContinuationSendsCursor(t *testing.T) {
	isolateConfig(t)
	stubSession(t)
	logFile := stubBacking(t, `case "$1" in
move) printf '41|git stash\n' ;;
esac
`)
	t.Setenv(EnvBuffer, "git status")
	t.Setenv(EnvCursor, "42")

	out, err := execute(t, "", "nav", "--", "-1")
	require.NoError(t, err)
	assert.Equal(t, "41\tgit stash\n", out)

	calls := readCalls(t, logFile)
	require.Len(t, calls, 1)
	assert.Equal(t, "move --with-id --session -- -1 42", calls[0])
}

func TestNav_OffEndPrintsNothing(t *testing.T) {
	isolateConfig(t)
	stubSession(t)
	stubBacking(t, `case "$1" in
move) printf '\n' ;;
esac
`)
	t.Setenv(EnvBuffer, "")
	t.Setenv(EnvCursor, "42")

	out, err := execute(t, "", "nav", "--", "-1")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestNav_BadDirection(t *testing.T) {
	isolateConfig(t)
	stubSession(t)

	_, err := execute(t, "", "nav", "--", "2")
	assert.Error(t, err)

	_, err = execute(t, "", "nav", "--", "up")
	assert.Error(t, err)
}

func TestSearch_PrintsSelection(t *testing.T) {
	dir := isolateConfig(t)
	stubSession(t)
	t.Setenv(EnvBuffer, "")
	stubBacking(t, `case "$1" in
history) printf '7\tgit push\n6\tgit pull\n' ;;
esac
`)

	cfgDir := filepath.Join(dir, "vellum-shell")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	cfg := "search:\n  selector: sh\n  selector_opts: '-c \"head -n 1\"'\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0o644))

	out, err := execute(t, "", "search")
	require.NoError(t, err)
	assert.Equal(t, "7\tgit push\n", out)
}

func TestSearch_CancelPropagatesExitStatus(t *testing.T) {
	dir := isolateConfig(t)
	stubSession(t)
	t.Setenv(EnvBuffer, "")
	stubBacking(t, `case "$1" in
history) printf '7\tgit push\n' ;;
esac
`)

	cfgDir := filepath.Join(dir, "vellum-shell")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	cfg := "search:\n  selector: sh\n  selector_opts: '-c \"exit 130\"'\n"
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(cfg), 0o644))

	out, err := execute(t, "", "search")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 130, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 130, ExitCode(exitError{code: 130}))
	assert.Equal(t, 1, ExitCode(assert.AnError))
}
