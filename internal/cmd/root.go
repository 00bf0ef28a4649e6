// Package cmd implements the vellum-shell command-line interface. The
// interesting commands are the hidden hook-path ones (capture, nav, search):
// the emitted shell glue calls back into them on every executed command and
// bound key press, so they must never print anything unexpected and never
// fail loudly.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Environment variables used to pass shell editor state into the hook-path
// commands. A subprocess cannot read its parent shell's buffer any other
// way.
const (
	// EnvCmd carries the executed command line into capture.
	EnvCmd = "VELLUM_SHELL_CMD"

	// EnvBuffer carries the current edit buffer into nav and search.
	EnvBuffer = "VELLUM_SHELL_BUFFER"

	// EnvCursor carries the round-tripped cursor position into nav.
	EnvCursor = "VELLUM_SHELL_CURSOR"
)

var rootCmd = &cobra.Command{
	Use:   "vellum-shell",
	Short: "shell integration for the vellum history synchronizer",
	Long: `vellum-shell - shell integration for the vellum history synchronizer

Add to your shell configuration:

  # Zsh (~/.zshrc):
  eval "$(vellum-shell init zsh)"

  # Bash (~/.bashrc), after sourcing bash-preexec:
  eval "$(vellum-shell init bash)"

  # Fish (~/.config/fish/config.fish):
  vellum-shell init fish | source`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// exitError carries a specific process exit status up to main, used to
// propagate the selector's status on cancellation.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode maps an Execute error to the process exit status, printing the
// error unless it is a bare status carrier.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(exitError); ok {
		return e.code
	}
	fmt.Fprintf(os.Stderr, "vellum-shell: %v\n", err)
	return 1
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(navCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}
