package expect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startZsh(t *testing.T, stub *Stub, selector string) *ShellSession {
	t.Helper()

	script := WriteScript(t, "zsh", stub, selector)

	session, err := NewSession("zsh", WithTimeout(10*time.Second))
	require.NoError(t, err, "failed to create zsh session")
	t.Cleanup(func() { session.Close() })

	require.NoError(t, session.SendLine("source "+script))
	time.Sleep(300 * time.Millisecond)

	return session
}

func TestZsh_SourceExportsSessionAndSentinel(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "zsh")

	stub := NewStub(t)
	session := startZsh(t, stub, "sh")

	require.NoError(t, session.SendLine(`echo "marker active=$VELLUM_SHELL_ACTIVE session=$VELLUM_SESSION start=$VELLUM_SESSION_START"`))
	_, err := session.ExpectTimeout("marker active=1 session=0198c6f2-stub start=2026-01-15T10:30:00Z", 3*time.Second)
	require.NoError(t, err, "integration did not activate")
}

func TestZsh_HooksRegistered(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "zsh")

	stub := NewStub(t)
	session := startZsh(t, stub, "sh")

	require.NoError(t, session.SendLine(`echo "marker pre=$preexec_functions post=$precmd_functions"`))
	out, err := session.ExpectRegex(`marker pre=.*__vellum_preexec.*post=.*__vellum_precmd`)
	require.NoError(t, err, "hook arrays missing vellum entries: %s", out)
}

func TestZsh_ResourcingIsNoop(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "zsh")

	stub := NewStub(t)
	session := startZsh(t, stub, "sh")

	script := WriteScript(t, "zsh", stub, "sh")
	require.NoError(t, session.SendLine("source "+script))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, session.SendLine(
		`echo "marker hooks=$(printf '%s\n' $preexec_functions | grep -c __vellum_preexec)"`))
	_, err := session.ExpectTimeout("marker hooks=1", 3*time.Second)
	require.NoError(t, err, "re-sourcing must not register a second hook")
}

func TestZsh_CaptureForwardsCommandText(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "zsh")

	stub := NewStub(t)
	session := startZsh(t, stub, "sh")

	// Running any command fires the real preexec hook.
	require.NoError(t, session.SendLine("true && echo marker done"))
	_, err := session.ExpectTimeout("marker done", 3*time.Second)
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	assert.Contains(t, stub.Calls(t), "argv=capture cmd=true && echo marker done")
}

func TestZsh_ArrowKeysAreBound(t *testing.T) {
	SkipIfShort(t)
	SkipIfShellMissing(t, "zsh")

	stub := NewStub(t)
	session := startZsh(t, stub, "sh")

	require.NoError(t, session.SendLine(`bindkey | grep -F '__vellum' | wc -l | xargs -I{} echo "marker bound={}"`))
	_, err := session.ExpectTimeout("marker bound=5", 3*time.Second)
	require.NoError(t, err, "expected five vellum key bindings")
}
