// vellum-picker is the built-in interactive history selector. It speaks the
// same contract as fzf: records on stdin, the accepted record on stdout,
// exit status 130 on dismissal. Configure it with
//
//	search:
//	  selector: vellum-picker
//
// to avoid the external fzf dependency.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/vellum-tools/vellum-shell/internal/config"
	"github.com/vellum-tools/vellum-shell/internal/picker"
)

// Version information (set via ldflags during build).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Exit codes, matching what the search bridge expects from a selector:
//
//	0   = selection made (use the result)
//	130 = cancelled by user (keep original input)
//	2   = unusable environment or internal error
const (
	exitSuccess   = 0
	exitFallback  = 2
	exitCancelled = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the main entry point, returning an exit code.
// It is separated from main() to enable testing.
func run(args []string) int {
	fs := flag.NewFlagSet("vellum-picker", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	query := fs.String("query", "", "initial filter query")
	showVersion := fs.Bool("version", false, "print version information")
	if err := fs.Parse(args); err != nil {
		return exitFallback
	}
	if *showVersion {
		fmt.Printf("vellum-picker %s\n  commit: %s\n  built:  %s\n", Version, GitCommit, BuildDate)
		return exitSuccess
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "vellum-picker: unexpected argument: %s\n", fs.Arg(0))
		return exitFallback
	}

	// The terminal preflight runs before reading stdin so a headless
	// invocation fails fast.
	if err := checkTTY(); err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: %v\n", err)
		return exitFallback
	}
	if err := checkTERM(); err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: %v\n", err)
		return exitFallback
	}
	if err := checkTermWidth(); err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: %v\n", err)
		return exitFallback
	}

	// One picker per terminal. The lock lives in the cache directory and is
	// released when the process exits.
	cacheDir := config.DefaultPaths().CacheDir
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: failed to create cache directory: %v\n", err)
		return exitFallback
	}
	lockFd, err := acquireLock(cacheDir + "/picker.lock")
	if err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: %v\n", err)
		return exitFallback
	}
	defer releaseLock(lockFd)

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: failed to read records: %v\n", err)
		return exitFallback
	}
	records := picker.ParseRecords(string(input))

	return runTUI(records, *query)
}

// runTUI drives the Bubble Tea program over /dev/tty and prints the accepted
// record to stdout.
func runTUI(records []picker.Record, query string) int {
	model := picker.NewModel(records, query)

	// Open /dev/tty for TUI input/output since stdin/stdout carry data.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: cannot open /dev/tty: %v\n", err)
		return exitFallback
	}
	defer tty.Close()

	// Stdout is a pipe here, so lipgloss would default to Ascii (no color).
	// Detect the color profile from the real tty instead; SetColorProfile
	// mutates the default renderer in-place so the package-level styles in
	// picker pick it up.
	lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vellum-picker: TUI error: %v\n", err)
		return exitFallback
	}

	m, ok := finalModel.(picker.Model)
	if !ok {
		fmt.Fprintln(os.Stderr, "vellum-picker: unexpected model type")
		return exitFallback
	}

	if m.Cancelled() {
		return exitCancelled
	}
	if choice, ok := m.Choice(); ok {
		fmt.Fprintln(os.Stdout, choice.String())
	}
	return exitSuccess
}
