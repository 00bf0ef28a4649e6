package expect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFish(t *testing.T, stub *Stub, selector string) *ShellSession {
	t.Helper()

	script := WriteScript(t, "fish", stub, selector)

	session, err := NewSession("fish", WithTimeout(10*time.Second))
	require.NoError(t, err, "failed to create fish session")
	t.Cleanup(func() { session.Close() })

	require.NoError(t, session.SendLine("source "+script))
	time.Sleep(300 * time.Millisecond)

	return session
}

func TestFish_SourceExportsSessionAndSentinel(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "fish")

	stub := NewStub(t)
	session := startFish(t, stub, "sh")

	require.NoError(t, session.SendLine(`echo "marker active=$VELLUM_SHELL_ACTIVE session=$VELLUM_SESSION"`))
	_, err := session.ExpectTimeout("marker active=1 session=0198c6f2-stub", 3*time.Second)
	require.NoError(t, err, "integration did not activate")
}

func TestFish_HookFunctionsDefined(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "fish")

	stub := NewStub(t)
	session := startFish(t, stub, "sh")

	require.NoError(t, session.SendLine(`functions -q __vellum_preexec __vellum_precmd __vellum_nav; and echo "marker functions ok"`))
	_, err := session.ExpectTimeout("marker functions ok", 3*time.Second)
	require.NoError(t, err, "hook functions missing after sourcing")
}

func TestFish_CaptureForwardsCommandText(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "fish")

	stub := NewStub(t)
	session := startFish(t, stub, "sh")

	// The fish_preexec event fires for any executed command line.
	require.NoError(t, session.SendLine("true; and echo marker done"))
	_, err := session.ExpectTimeout("marker done", 3*time.Second)
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	assert.Contains(t, stub.Calls(t), "argv=capture cmd=true; and echo marker done")
}

func TestFish_MissingSelectorDisablesIntegration(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "fish")

	stub := NewStub(t)
	session := startFish(t, stub, "definitely-not-a-selector")

	require.NoError(t, session.SendLine(`set -q VELLUM_SHELL_ACTIVE; or echo "marker inactive"`))
	_, err := session.ExpectTimeout("marker inactive", 3*time.Second)
	require.NoError(t, err, "integration must disable itself when the selector is missing")

	assert.NotContains(t, stub.Calls(t), "argv=session id")
}
