package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vellum-tools/vellum-shell/internal/backing"
	"github.com/vellum-tools/vellum-shell/internal/config"
	"github.com/vellum-tools/vellum-shell/internal/log"
	"github.com/vellum-tools/vellum-shell/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Print session identity tokens",
	Long:  "Print session identity tokens. Used by the integration script to export VELLUM_SESSION and VELLUM_SESSION_START.",
}

var sessionIDCmd = &cobra.Command{
	Use:   "id",
	Short: "Print the session identifier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ensureSession(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.ID)
		return nil
	},
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Print the session start timestamp",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := ensureSession(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.Start)
		return nil
	},
}

func ensureSession(cmd *cobra.Command) (session.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logger := log.NewFromEnv(cfg.LogLevel)
	client := backing.New(cfg.Backing.Binary)
	return session.Ensure(cmd.Context(), client, logger), nil
}

func init() {
	sessionCmd.AddCommand(sessionIDCmd)
	sessionCmd.AddCommand(sessionStartCmd)
}
