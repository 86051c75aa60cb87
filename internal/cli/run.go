package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RevCBH/skill-harness/internal/cli/tui"
	"github.com/RevCBH/skill-harness/internal/config"
	"github.com/RevCBH/skill-harness/internal/provider"
	"github.com/RevCBH/skill-harness/internal/ralph"
	"github.com/RevCBH/skill-harness/internal/report"
	"github.com/RevCBH/skill-harness/internal/runner"
)

// RunOptions holds flags for the root command
type RunOptions struct {
	Skill string

	List    bool // List skills with acceptance criteria
	Mock    bool // Replay mock_response instead of calling a provider
	Verbose bool // Debug logging and full reports
	Filter  string

	Output     string // text, json or markdown
	OutputFile string // Write the report here instead of stdout

	Ralph         bool
	MaxIterations int
	Threshold     int

	Provider string        // mock, claude, ollama or gemini
	Parallel int           // Scenarios run at once
	Timeout  time.Duration // Per generation; 0 disables

	NoTUI      bool   // Disable TUI even when stdout is a TTY
	Watch      bool   // Re-run when criteria or scenarios change
	BaseDir    string // Repository root holding .github/skills and tests/scenarios
	EventsFile string // Append lifecycle events as JSON lines
}

// DefaultRunOptions returns the flag defaults
func DefaultRunOptions() RunOptions {
	return RunOptions{
		Output:        string(report.FormatText),
		MaxIterations: ralph.DefaultMaxIterations,
		Threshold:     ralph.DefaultQualityThreshold,
		Parallel:      1,
		BaseDir:       ".",
	}
}

// Validate checks RunOptions for validity
func (opts RunOptions) Validate() error {
	var errs []error
	if _, err := report.ParseFormat(opts.Output); err != nil {
		errs = append(errs, err)
	}
	if opts.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("--max-iterations must be at least 1, got %d", opts.MaxIterations))
	}
	if opts.Threshold < 0 || opts.Threshold > 100 {
		errs = append(errs, fmt.Errorf("--threshold must be between 0 and 100, got %d", opts.Threshold))
	}
	if opts.Parallel < 1 {
		errs = append(errs, fmt.Errorf("--parallel must be at least 1, got %d", opts.Parallel))
	}
	if opts.Timeout < 0 {
		errs = append(errs, fmt.Errorf("--timeout must not be negative, got %s", opts.Timeout))
	}
	if opts.Provider != "" {
		if _, err := provider.ParseType(opts.Provider); err != nil {
			errs = append(errs, fmt.Errorf("--provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

func bindRunFlags(cmd *cobra.Command, opts *RunOptions) {
	f := cmd.Flags()
	f.BoolVar(&opts.List, "list", false, "List skills that have acceptance criteria")
	f.BoolVar(&opts.Mock, "mock", false, "Use each scenario's mock_response instead of a provider")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show every finding, Ralph iterations and debug logs")
	f.StringVarP(&opts.Filter, "filter", "f", "", "Run scenarios whose name contains or tag equals this value")
	f.StringVarP(&opts.Output, "output", "o", opts.Output, "Report format: text, json or markdown")
	f.StringVar(&opts.OutputFile, "output-file", "", "Write the report to a file")
	f.BoolVar(&opts.Ralph, "ralph", false, "Iterate generate, evaluate and feedback per scenario")
	f.IntVar(&opts.MaxIterations, "max-iterations", opts.MaxIterations, "Ralph loop iteration limit")
	f.IntVar(&opts.Threshold, "threshold", opts.Threshold, "Ralph loop quality threshold (0-100)")
	f.StringVar(&opts.Provider, "provider", "", "Generation provider: mock, claude, ollama or gemini")
	f.IntVarP(&opts.Parallel, "parallel", "p", opts.Parallel, "Number of scenarios run at once")
	f.DurationVar(&opts.Timeout, "timeout", 0, "Per-generation timeout (default from config)")
	f.BoolVar(&opts.NoTUI, "no-tui", false, "Disable the interactive progress view")
	f.BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the criteria or scenario file changes")
	f.StringVar(&opts.BaseDir, "base-dir", opts.BaseDir, "Repository root")
	f.StringVar(&opts.EventsFile, "events-file", "", "Write lifecycle events as JSON lines to a file")
}

// loadConfig reads .harness.yaml from the base directory and fills every
// option the user did not set on the command line.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	baseDir, err := filepath.Abs(a.opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if info, err := os.Stat(baseDir); err != nil || !info.IsDir() {
		return nil, usageError(fmt.Errorf("base directory %s does not exist", baseDir))
	}
	a.opts.BaseDir = baseDir

	cfg, err := config.LoadConfig(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("max-iterations") {
		a.opts.MaxIterations = cfg.Ralph.MaxIterations
	}
	if !flags.Changed("threshold") {
		a.opts.Threshold = cfg.Ralph.Threshold
	}
	if !flags.Changed("parallel") {
		a.opts.Parallel = cfg.Parallelism
	}
	if !flags.Changed("timeout") {
		a.opts.Timeout = cfg.TimeoutDuration()
	}
	return cfg, nil
}

func (a *App) runSkill(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := a.opts.Validate(); err != nil {
		return usageError(err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if a.useTUI(cmd) {
		return a.runWithTUI(ctx, cancel, cmd, cfg)
	}

	s, err := a.wire(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	interrupter := NewInterrupter(InterruptConfig{
		Skill:     a.opts.Skill,
		Cancel:    cancel,
		Publisher: s.bus,
		Logger:    s.log.Logger,
	})
	interrupter.OnInterrupt(func(sig os.Signal) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s received, finishing in-flight scenarios (repeat to exit)\n", sig)
	})
	interrupter.Start()
	defer interrupter.Stop()

	err = a.runOnce(ctx, cmd, s)
	if !a.opts.Watch {
		return err
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return a.watch(ctx, cmd, s)
}

func (a *App) useTUI(cmd *cobra.Command) bool {
	return !a.opts.NoTUI && !a.opts.Watch && a.isTerminal(cmd.OutOrStdout())
}

// runWithTUI shows live progress on the alternate screen, then prints the
// report once the program has exited.
func (a *App) runWithTUI(ctx context.Context, cancel context.CancelFunc, cmd *cobra.Command, cfg *config.Config) error {
	model := tui.NewModel(a.opts.Skill, a.opts.Parallel, a.opts.Ralph)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(cmd.OutOrStdout()))
	logWriter := tui.NewLogWriter(program)

	s, err := a.wire(ctx, cfg, logWriter)
	if err != nil {
		logWriter.Close()
		return err
	}
	defer s.close()

	interrupter := NewInterrupter(InterruptConfig{
		Skill:     a.opts.Skill,
		Cancel:    cancel,
		Publisher: s.bus,
		Logger:    s.log.Logger,
	})
	interrupter.Start()
	defer interrupter.Stop()

	bridge := tui.NewBridge(program)
	s.bus.Subscribe(bridge.Handler())

	tuiDone := make(chan struct{})
	go func() {
		defer close(tuiDone)
		final, err := program.Run()
		if err != nil {
			s.log.Warn("tui exited with error", zap.Error(err))
		}
		// q or ctrl+c in the TUI stops the run
		if m, ok := final.(*tui.Model); ok && m.Quitting {
			cancel()
		}
	}()

	summary, runErr := s.runner.Run(ctx, a.opts.Skill, s.runOpts)

	// Deliver queued events before the program exits
	_ = s.bus.Close()
	bridge.SendDone()
	<-tuiDone
	logWriter.Close()

	if runErr != nil {
		return runErr
	}
	if err := a.writeReport(cmd, s, summary); err != nil {
		return err
	}
	return summaryError(summary)
}

// runOnce runs the skill and writes its report
func (a *App) runOnce(ctx context.Context, cmd *cobra.Command, s *session) error {
	summary, err := s.runner.Run(ctx, a.opts.Skill, s.runOpts)
	if err != nil {
		return err
	}
	if err := a.writeReport(cmd, s, summary); err != nil {
		return err
	}
	return summaryError(summary)
}

func (a *App) writeReport(cmd *cobra.Command, s *session, summary *runner.SkillSummary) error {
	if a.opts.OutputFile == "" {
		return s.reporter(a.isTerminal(cmd.OutOrStdout())).Report(cmd.OutOrStdout(), summary)
	}

	f, err := os.Create(a.opts.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := s.reporter(false).Report(f, summary); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", a.opts.OutputFile)
	return nil
}

// summaryError returns nil when every evaluated scenario passed
func summaryError(s *runner.SkillSummary) error {
	if s.Cancelled {
		return &ExitError{Code: ExitFailed, Err: errors.New("run cancelled")}
	}
	if !s.AllPassed() {
		return &ExitError{Code: ExitFailed, Err: fmt.Errorf("%d of %d scenarios failed", s.Failed, s.Total())}
	}
	return nil
}
