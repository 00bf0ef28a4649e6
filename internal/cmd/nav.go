package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vellum-tools/vellum-shell/internal/nav"
)

var navCmd = &cobra.Command{
	Use:    "nav -- <direction>",
	Short:  "Step through history relative to the round-tripped cursor (shell hook)",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE:   runNav,
}

// runNav reads the edit buffer and cursor from the environment, performs one
// history step, and prints "<cursor>\t<line>" for the glue script to apply.
// Printing nothing means the key press is a no-op.
func runNav(cmd *cobra.Command, args []string) error {
	direction, err := strconv.Atoi(args[0])
	if err != nil || (direction != nav.Older && direction != nav.Newer) {
		return fmt.Errorf("nav: direction must be %d or %d, got %q", nav.Older, nav.Newer, args[0])
	}

	c := newContext()
	c.Initialize(cmd.Context())
	c.RestoreCursor(os.Getenv(EnvCursor))

	line, ok := c.Navigate(cmd.Context(), direction, os.Getenv(EnvBuffer))
	if !ok {
		return nil
	}
	cursor, _ := c.Cursor()
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cursor, line)
	return nil
}
