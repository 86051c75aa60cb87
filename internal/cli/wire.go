package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/RevCBH/skill-harness/internal/config"
	"github.com/RevCBH/skill-harness/internal/criteria"
	"github.com/RevCBH/skill-harness/internal/events"
	"github.com/RevCBH/skill-harness/internal/logging"
	"github.com/RevCBH/skill-harness/internal/provider"
	"github.com/RevCBH/skill-harness/internal/ralph"
	"github.com/RevCBH/skill-harness/internal/report"
	"github.com/RevCBH/skill-harness/internal/runner"
	"github.com/RevCBH/skill-harness/internal/scenario"
)

// busCapacity bounds how far publishers may run ahead of slow subscribers
const busCapacity = 256

// session holds everything one invocation wires together
type session struct {
	log       *logging.Logger
	bus       *events.Bus
	criteria  *criteria.Loader
	scenarios *scenario.Loader
	runner    *runner.Runner
	runOpts   runner.Options

	// plain and styled render the same format; styled targets a terminal
	plain      report.Reporter
	styled     report.Reporter
	eventsFile *os.File
}

// wire builds the logger, event bus, provider, and runner. console receives
// human-readable logs.
func (a *App) wire(ctx context.Context, cfg *config.Config, console io.Writer) (*session, error) {
	format, err := report.ParseFormat(a.opts.Output)
	if err != nil {
		return nil, usageError(err)
	}

	plain, err := report.New(format, report.Options{Verbose: a.opts.Verbose})
	if err != nil {
		return nil, usageError(err)
	}
	styled, err := report.New(format, report.Options{Verbose: a.opts.Verbose, Color: true, Render: true})
	if err != nil {
		return nil, usageError(err)
	}

	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Verbose: a.opts.Verbose,
		File:    cfg.LogFile,
		Console: console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &session{
		log:    logger,
		bus:    events.NewBus(busCapacity),
		plain:  plain,
		styled: styled,
	}
	s.bus.Subscribe(events.LogHandler(events.LogConfig{Logger: logger.Logger, IncludePayload: a.opts.Verbose}))

	if a.opts.EventsFile != "" {
		f, err := os.Create(a.opts.EventsFile)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to create events file: %w", err)
		}
		s.eventsFile = f
		s.bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(f), logger.Logger))
	}

	resolved := config.ResolveProvider(cfg, config.ResolutionContext{
		Mock:        a.opts.Mock,
		CLIProvider: a.opts.Provider,
	})
	logger.Debug("provider resolved",
		zap.String("provider", string(resolved.Type)),
		zap.String("source", resolved.Source))

	mock := resolved.Type == provider.ProviderMock
	var gen provider.Provider
	if !mock {
		gen, err = provider.FromConfig(ctx, resolved.FactoryConfig())
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to create %s provider: %w", resolved.Type, err)
		}
	}

	s.criteria = &criteria.Loader{
		BaseDir:      a.opts.BaseDir,
		SkillsDir:    cfg.SkillsDir,
		CriteriaFile: cfg.CriteriaFile,
	}
	s.scenarios = &scenario.Loader{
		BaseDir: a.opts.BaseDir,
		Dir:     cfg.ScenariosDir,
	}
	s.runner = runner.New(runner.Deps{
		Criteria:  s.criteria,
		Scenarios: s.scenarios,
		Provider:  gen,
		Publisher: s.bus,
		Logger:    logger.Logger,
	})
	s.runOpts = runner.Options{
		Mock:  mock,
		Ralph: a.opts.Ralph,
		RalphConfig: ralph.Config{
			MaxIterations:    a.opts.MaxIterations,
			QualityThreshold: a.opts.Threshold,
		},
		Filter:            a.opts.Filter,
		Parallelism:       a.opts.Parallel,
		GenerationTimeout: a.opts.Timeout,
	}
	return s, nil
}

// reporter picks the styled reporter for terminals
func (s *session) reporter(tty bool) report.Reporter {
	if tty {
		return s.styled
	}
	return s.plain
}

func (s *session) close() {
	_ = s.bus.Close()
	if s.eventsFile != nil {
		if err := s.eventsFile.Close(); err != nil {
			s.log.Warn("failed to close events file", zap.Error(err))
		}
	}
	_ = s.log.Close()
}
