package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vellum-tools/vellum-shell/internal/config"
	"github.com/vellum-tools/vellum-shell/internal/dialect"
)

var initCmd = &cobra.Command{
	Use:       "init <shell>",
	Short:     "Print the integration script for the given shell",
	Long:      "Print the integration script for the given shell. Intended for eval/source from the shell's rc file.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: dialect.Supported(),
	RunE:      runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// A broken config file must not break shell startup; fall back to
	// defaults and let doctor report the problem.
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	script, err := dialect.Script(args[0], dialect.Vars{
		Selector: cfg.Search.Selector,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), script)
	return nil
}
