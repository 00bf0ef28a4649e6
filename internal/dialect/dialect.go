// Package dialect holds the thin per-shell adapters: the glue scripts that
// map each shell's native hook and key-binding API onto the four operations
// capture, reset, navigate and search. The adapters are stateless: all
// state lives in the integration context and in the shell variables the glue
// round-trips on its behalf.
package dialect

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed scripts/vellum.bash
//go:embed scripts/vellum.zsh
//go:embed scripts/vellum.fish
var scripts embed.FS

// Supported shell names.
const (
	Bash = "bash"
	Zsh  = "zsh"
	Fish = "fish"
)

// Vars are the substitutions rendered into a glue script.
type Vars struct {
	// Bin is the vellum-shell binary the glue calls back into.
	Bin string

	// Selector is the configured selector command, checked for presence at
	// source time.
	Selector string
}

// Supported returns the supported shell names.
func Supported() []string {
	return []string{Zsh, Bash, Fish}
}

// IsSupported reports whether name is a shell this package has glue for.
func IsSupported(name string) bool {
	switch name {
	case Bash, Zsh, Fish:
		return true
	}
	return false
}

// Script renders the integration script for the given shell.
func Script(shell string, vars Vars) (string, error) {
	if !IsSupported(shell) {
		return "", fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(Supported(), ", "))
	}

	content, err := scripts.ReadFile("scripts/vellum." + shell)
	if err != nil {
		return "", fmt.Errorf("failed to read shell script: %w", err)
	}

	if vars.Bin == "" {
		vars.Bin = "vellum-shell"
	}
	if vars.Selector == "" {
		vars.Selector = "fzf"
	}

	script := strings.ReplaceAll(string(content), "{{VELLUM_SHELL_BIN}}", vars.Bin)
	script = strings.ReplaceAll(script, "{{SELECTOR_CMD}}", vars.Selector)
	return script, nil
}
