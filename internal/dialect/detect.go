package dialect

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Detection is the result of shell detection.
type Detection struct {
	Shell     string // "zsh", "bash", "fish", or ""
	Confident bool   // true if detected via parent process, false if fell back to $SHELL
	Active    bool   // true if the vellum integration is active in this shell
}

// Detect finds the current shell and whether the integration is active in
// it. Parent-process detection is preferred; $SHELL only names the login
// shell, which may not be the one running.
func Detect() Detection {
	result := Detection{}

	if shell := detectParentShell(); shell != "" {
		result.Shell = shell
		result.Confident = true
	}

	if result.Shell == "" {
		if shellEnv := os.Getenv("SHELL"); shellEnv != "" {
			base := filepath.Base(shellEnv)
			if IsSupported(base) {
				result.Shell = base
			}
		}
	}

	if os.Getenv("VELLUM_SHELL_ACTIVE") != "" && os.Getenv("VELLUM_SESSION") != "" {
		result.Active = true
	}

	return result
}

// detectParentShell checks the parent process name.
func detectParentShell() string {
	ppid := os.Getppid()
	if ppid <= 0 {
		return ""
	}

	// /proc is authoritative on Linux.
	commPath := fmt.Sprintf("/proc/%d/comm", ppid)
	if data, err := os.ReadFile(commPath); err == nil {
		if shell := extractShellName(strings.TrimSpace(string(data))); shell != "" {
			return shell
		}
	}

	// macOS and the BSDs fall back to ps.
	cmd := exec.Command("ps", "-p", fmt.Sprintf("%d", ppid), "-o", "comm=")
	if output, err := cmd.Output(); err == nil {
		if shell := extractShellName(strings.TrimSpace(string(output))); shell != "" {
			return shell
		}
	}

	return ""
}

// extractShellName normalizes a process path or name to a bare shell name.
func extractShellName(name string) string {
	base := filepath.Base(name)
	// Login shells are reported with a leading dash (-zsh).
	base = strings.TrimPrefix(base, "-")
	// Versioned names like bash-5.2.
	if idx := strings.Index(base, "-"); idx > 0 {
		base = base[:idx]
	}
	if IsSupported(base) {
		return base
	}
	return ""
}
