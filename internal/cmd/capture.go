package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vellum-tools/vellum-shell/internal/config"
	"github.com/vellum-tools/vellum-shell/internal/integration"
	"github.com/vellum-tools/vellum-shell/internal/log"
)

var captureStdin bool

var captureCmd = &cobra.Command{
	Use:    "capture",
	Short:  "Record an executed command (shell hook)",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runCapture,
}

// newContext builds the integration context the hook commands share. Config
// errors degrade to defaults so a bad config file never breaks a key press.
func newContext() *integration.Context {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return integration.New(cfg, log.NewFromEnv(cfg.LogLevel))
}

func runCapture(cmd *cobra.Command, args []string) error {
	cmdText := os.Getenv(EnvCmd)
	if captureStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err == nil {
			cmdText = strings.TrimSuffix(string(data), "\n")
		}
	}
	if cmdText == "" {
		return nil
	}

	c := newContext()
	c.Initialize(cmd.Context())
	c.Capture(cmd.Context(), cmdText)
	return nil
}

func init() {
	// Fish passes the command on stdin to sidestep argv length and quoting
	// limits.
	captureCmd.Flags().BoolVar(&captureStdin, "cmd-stdin", false, "read the command from stdin instead of the environment")
}
