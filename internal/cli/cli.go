// Package cli wires configuration, providers, the runner, and reporters
// behind the harness command line.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// VersionInfo holds build metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	opts        RunOptions
	versionInfo VersionInfo

	// isTerminal reports whether w is an interactive terminal
	isTerminal func(w io.Writer) bool
}

// New creates a new CLI application
func New() *App {
	app := &App{
		opts:       DefaultRunOptions(),
		isTerminal: writerIsTerminal,
	}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application. Use ExitCode to map the error to a
// process exit status.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// SetArgs overrides os.Args[1:] (used by tests)
func (a *App) SetArgs(args []string) {
	a.rootCmd.SetArgs(args)
}

// SetOutput redirects stdout and stderr (used by tests)
func (a *App) SetOutput(stdout, stderr io.Writer) {
	a.rootCmd.SetOut(stdout)
	a.rootCmd.SetErr(stderr)
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "harness [skill]",
		Short: "Evaluate generated code against skill acceptance criteria",
		Long: `harness loads a skill's acceptance criteria, generates code for each
scenario in tests/scenarios/<skill>/scenarios.yaml, and scores the code
against the CORRECT and INCORRECT patterns of the criteria document.

With --ralph, each scenario is regenerated with feedback until the score
reaches the threshold or the loop stops improving.`,
		Example: `  harness --list
  harness azure-ai-contentsafety-py --mock
  harness azure-ai-contentsafety-py --ralph --max-iterations 3 --provider claude
  harness azure-storage-blob-ts --mock --output markdown --output-file report.md`,
		Args:          a.validateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.List {
				return a.listSkills(cmd)
			}
			a.opts.Skill = args[0]
			return a.runSkill(cmd)
		},
	}

	a.rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	bindRunFlags(a.rootCmd, &a.opts)
	a.rootCmd.AddCommand(NewVersionCmd(a))
}

func (a *App) validateArgs(cmd *cobra.Command, args []string) error {
	if a.opts.List {
		return usageError(cobra.NoArgs(cmd, args))
	}
	if len(args) != 1 {
		return usageError(errSkillRequired)
	}
	return nil
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
