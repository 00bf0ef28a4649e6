package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vellum-tools/vellum-shell/internal/backing"
	"github.com/vellum-tools/vellum-shell/internal/config"
	"github.com/vellum-tools/vellum-shell/internal/dialect"
	"github.com/vellum-tools/vellum-shell/internal/session"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the vellum-shell installation and dependencies",
	Long: `Run diagnostic checks on the vellum-shell installation.

This command checks:
- Binary installation
- Backing vellum binary and sync key
- Search selector availability
- Shell integration status
- Configuration validity

Examples:
  vellum-shell doctor`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

type checkResult struct {
	name    string
	status  string // "ok", "warn", "error"
	message string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%svellum-shell Doctor%s\n", colorBold, colorReset)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println()

	cfg, cfgErr := config.Load()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	results := make([]checkResult, 0, 8)
	results = append(results, checkBinary())
	results = append(results, checkBacking(cmd.Context(), cfg))
	results = append(results, checkSyncKey())
	results = append(results, checkSelector(cfg))
	results = append(results, checkShellIntegration())
	results = append(results, checkConfiguration(cfgErr))

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		var statusIcon string
		switch r.status {
		case "ok":
			statusIcon = colorGreen + "[OK]" + colorReset
		case "warn":
			statusIcon = colorYellow + "[WARN]" + colorReset
			hasWarnings = true
		case "error":
			statusIcon = colorRed + "[ERROR]" + colorReset
			hasErrors = true
		}

		fmt.Printf("  %s %s\n", statusIcon, r.name)
		if r.message != "" {
			fmt.Printf("       %s%s%s\n", colorDim, r.message, colorReset)
		}
	}

	fmt.Println()

	if hasErrors {
		fmt.Printf("%sSome checks failed. Please fix the errors above.%s\n", colorRed, colorReset)
		return fmt.Errorf("doctor found errors")
	}

	if hasWarnings {
		fmt.Printf("%sAll critical checks passed, but there are warnings.%s\n", colorYellow, colorReset)
	} else {
		fmt.Printf("%sAll checks passed!%s\n", colorGreen, colorReset)
	}

	return nil
}

func checkBinary() checkResult {
	path, err := exec.LookPath("vellum-shell")
	if err != nil {
		return checkResult{
			name:    "vellum-shell binary",
			status:  "error",
			message: "vellum-shell not found in PATH",
		}
	}
	return checkResult{name: "vellum-shell binary", status: "ok", message: path}
}

func checkBacking(ctx context.Context, cfg *config.Config) checkResult {
	name := fmt.Sprintf("backing binary (%s)", cfg.Backing.Binary)

	path, err := exec.LookPath(cfg.Backing.Binary)
	if err != nil {
		return checkResult{
			name:    name,
			status:  "error",
			message: fmt.Sprintf("%s not found in PATH; history capture and navigation are disabled", cfg.Backing.Binary),
		}
	}

	// Probe it for real: a binary that is present but broken should not
	// pass.
	client := backing.New(cfg.Backing.Binary)
	if _, err := client.InitTimestamp(ctx); err != nil {
		return checkResult{
			name:    name,
			status:  "error",
			message: fmt.Sprintf("%s is installed but not responding: %v", path, err),
		}
	}

	return checkResult{name: name, status: "ok", message: path}
}

func checkSyncKey() checkResult {
	if os.Getenv("VELLUM_KEY") == "" {
		return checkResult{
			name:    "sync key",
			status:  "warn",
			message: "VELLUM_KEY is not set; encrypted sync is unavailable (run: vellum init key)",
		}
	}
	return checkResult{name: "sync key", status: "ok", message: "VELLUM_KEY is set"}
}

func checkSelector(cfg *config.Config) checkResult {
	name := fmt.Sprintf("search selector (%s)", cfg.Search.Selector)

	path, err := exec.LookPath(cfg.Search.Selector)
	if err != nil {
		return checkResult{
			name:    name,
			status:  "warn",
			message: fmt.Sprintf("%s not found in PATH; Ctrl-R search is disabled", cfg.Search.Selector),
		}
	}
	return checkResult{name: name, status: "ok", message: path}
}

func checkShellIntegration() checkResult {
	det := dialect.Detect()

	if det.Shell == "" {
		return checkResult{
			name:    "shell integration",
			status:  "warn",
			message: "could not detect the current shell",
		}
	}
	if !dialect.IsSupported(det.Shell) {
		return checkResult{
			name:    "shell integration",
			status:  "warn",
			message: fmt.Sprintf("shell %q is not supported (supported: %s)", det.Shell, strings.Join(dialect.Supported(), ", ")),
		}
	}
	if !det.Active {
		return checkResult{
			name:    "shell integration",
			status:  "warn",
			message: fmt.Sprintf("integration not active in this shell; run: eval \"$(vellum-shell init %s)\"", det.Shell),
		}
	}
	if !session.Active() {
		return checkResult{
			name:    "shell integration",
			status:  "warn",
			message: "integration is loaded but no session is exported; restart the shell",
		}
	}
	return checkResult{
		name:    "shell integration",
		status:  "ok",
		message: fmt.Sprintf("active in %s", det.Shell),
	}
}

func checkConfiguration(loadErr error) checkResult {
	paths := config.DefaultPaths()

	if loadErr != nil {
		return checkResult{
			name:    "configuration",
			status:  "error",
			message: fmt.Sprintf("%s: %v", paths.ConfigFile(), loadErr),
		}
	}
	if _, err := os.Stat(paths.ConfigFile()); os.IsNotExist(err) {
		return checkResult{
			name:    "configuration",
			status:  "ok",
			message: "no config file; using defaults",
		}
	}
	return checkResult{name: "configuration", status: "ok", message: paths.ConfigFile()}
}
