package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vellum-tools/vellum-shell/internal/integration"
)

var searchCmd = &cobra.Command{
	Use:    "search",
	Short:  "Run interactive history search over the backing store (shell hook)",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runSearch,
}

// runSearch streams history through the configured selector and prints the
// accepted entry as "<id>\t<line>". Cancellation propagates the selector's
// exit status so the glue script can distinguish dismissal from selection.
func runSearch(cmd *cobra.Command, args []string) error {
	c := newContext()
	c.Initialize(cmd.Context())

	sel, err := c.Search(cmd.Context(), os.Getenv(EnvBuffer))
	if err != nil {
		if code, ok := integration.IsCancelled(err); ok {
			return exitError{code: code}
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", sel.EntryID, sel.Line)
	return nil
}
