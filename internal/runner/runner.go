// Package runner evaluates every scenario of a skill and aggregates the results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RevCBH/skill-harness/internal/criteria"
	"github.com/RevCBH/skill-harness/internal/evaluator"
	"github.com/RevCBH/skill-harness/internal/events"
	"github.com/RevCBH/skill-harness/internal/feedback"
	"github.com/RevCBH/skill-harness/internal/provider"
	"github.com/RevCBH/skill-harness/internal/ralph"
	"github.com/RevCBH/skill-harness/internal/scenario"
)

// CriteriaLoader loads the criteria set of a skill
type CriteriaLoader interface {
	Load(skill string) (*criteria.Set, error)
}

// ScenarioLoader loads the scenario file of a skill
type ScenarioLoader interface {
	Load(skill string) (*scenario.File, error)
}

// Publisher abstracts event publishing for testing
type Publisher interface {
	Emit(e events.Event)
}

// Options select how scenarios are run
type Options struct {
	// Mock replays each scenario's mock_response instead of calling Provider
	Mock bool

	// Ralph runs the feedback loop per scenario
	Ralph       bool
	RalphConfig ralph.Config

	// Filter selects scenarios by name or tag; empty selects all
	Filter string

	// Parallelism is the number of scenarios run at once (default 1)
	Parallelism int

	// GenerationTimeout bounds each generate call; zero disables it
	GenerationTimeout time.Duration
}

// DefaultOptions returns sequential single-shot options
func DefaultOptions() Options {
	return Options{
		RalphConfig: ralph.DefaultConfig(),
		Parallelism: 1,
	}
}

// Validate checks the options
func (o Options) Validate() error {
	var errs []error
	if o.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("parallelism must not be negative, got %d", o.Parallelism))
	}
	if o.GenerationTimeout < 0 {
		errs = append(errs, fmt.Errorf("generation timeout must not be negative, got %s", o.GenerationTimeout))
	}
	if o.Ralph {
		if err := o.RalphConfig.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Deps are the collaborators of a Runner
type Deps struct {
	Criteria  CriteriaLoader
	Scenarios ScenarioLoader

	// Provider generates code when Options.Mock is false
	Provider provider.Provider

	// Publisher and Logger are optional
	Publisher Publisher
	Logger    *zap.Logger
}

// Runner executes skills
type Runner struct {
	deps Deps
	log  *zap.Logger
}

// New creates a Runner
func New(deps Deps) *Runner {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{deps: deps, log: log}
}

// Run loads the skill's criteria and scenarios and evaluates every selected
// scenario. Load failures return an error and no summary. Generation
// failures become failing results.
func (r *Runner) Run(ctx context.Context, skill string, opts Options) (*SkillSummary, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run options: %w", err)
	}

	summary := &SkillSummary{
		RunID:     uuid.NewString(),
		Skill:     skill,
		StartedAt: time.Now(),
		Mock:      opts.Mock,
		Ralph:     opts.Ralph,
	}
	log := r.log.With(zap.String("skill", skill), zap.String("run_id", summary.RunID))

	set, file, err := r.load(skill)
	if err != nil {
		r.emit(events.NewEvent(events.RunFailed, skill).WithError(err))
		log.Error("failed to load skill", zap.Error(err))
		return nil, err
	}

	gen, err := r.generator(opts)
	if err != nil {
		r.emit(events.NewEvent(events.RunFailed, skill).WithError(err))
		return nil, err
	}
	summary.Provider = string(gen.Name())

	summary.CriteriaPath = set.SourcePath
	summary.CorrectPatterns = len(set.CorrectPatterns)
	summary.IncorrectPatterns = len(set.IncorrectPatterns)
	summary.CriteriaWarnings = append([]string(nil), set.Warnings...)

	r.emit(events.NewEvent(events.CriteriaLoaded, skill).WithPayload(CriteriaPayload{
		Path:      set.SourcePath,
		Language:  string(set.Language),
		Correct:   len(set.CorrectPatterns),
		Incorrect: len(set.IncorrectPatterns),
	}))
	for _, w := range set.Warnings {
		r.emit(events.NewEvent(events.CriteriaWarning, skill).WithPayload(w))
	}

	selected := file.Filter(opts.Filter)
	r.emit(events.NewEvent(events.RunStarted, skill).WithPayload(RunStartedPayload{
		RunID:     summary.RunID,
		Scenarios: scenarioNames(selected),
		Mock:      opts.Mock,
		Ralph:     opts.Ralph,
		Provider:  summary.Provider,
	}))
	log.Info("run started",
		zap.Int("scenarios", len(selected)),
		zap.Bool("mock", opts.Mock),
		zap.Bool("ralph", opts.Ralph),
		zap.String("provider", summary.Provider))

	job := &skillJob{
		skill:     skill,
		config:    file.Config,
		generator: gen,
		evaluator: evaluator.New(set),
	}
	if opts.Ralph {
		job.loop = ralph.New(opts.RalphConfig, ralph.Deps{
			Generator: gen,
			Evaluator: job.evaluator,
			Feedback:  feedback.New(set),
			Publisher: r.deps.Publisher,
			Logger:    log,
			Skill:     skill,
			Config:    file.Config,
		})
		summary.RalphConfig = job.loop.Config()
	}

	summary.Results = make([]ScenarioResult, len(selected))
	parallel := opts.Parallelism
	if parallel <= 1 {
		for i, sc := range selected {
			summary.Results[i] = r.runScenario(ctx, job, sc)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(parallel)
		for i, sc := range selected {
			g.Go(func() error {
				summary.Results[i] = r.runScenario(ctx, job, sc)
				return nil
			})
		}
		_ = g.Wait()
	}

	summary.aggregate()
	summary.Duration = time.Since(summary.StartedAt)
	summary.Cancelled = ctx.Err() != nil

	r.emit(events.NewEvent(events.RunCompleted, skill).WithPayload(RunCompletedPayload{
		RunID:        summary.RunID,
		Passed:       summary.Passed,
		Failed:       summary.Failed,
		AverageScore: summary.AverageScore,
		Duration:     summary.Duration,
		Cancelled:    summary.Cancelled,
	}))
	log.Info("run completed",
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Float64("average_score", summary.AverageScore),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

func (r *Runner) load(skill string) (*criteria.Set, *scenario.File, error) {
	if r.deps.Criteria == nil || r.deps.Scenarios == nil {
		return nil, nil, errors.New("runner requires criteria and scenario loaders")
	}
	set, err := r.deps.Criteria.Load(skill)
	if err != nil {
		return nil, nil, err
	}
	file, err := r.deps.Scenarios.Load(skill)
	if err != nil {
		return nil, nil, err
	}
	return set, file, nil
}

func (r *Runner) generator(opts Options) (provider.Provider, error) {
	var p provider.Provider
	switch {
	case opts.Mock:
		p = provider.NewMock()
	case r.deps.Provider != nil:
		p = r.deps.Provider
	default:
		return nil, errors.New("no provider configured; use mock mode or select a provider")
	}
	return provider.WithTimeout(p, opts.GenerationTimeout), nil
}

// skillJob holds what every scenario of one run shares
type skillJob struct {
	skill     string
	config    scenario.Config
	generator provider.Provider
	evaluator *evaluator.Evaluator
	loop      *ralph.Controller
}

func (r *Runner) runScenario(ctx context.Context, job *skillJob, sc scenario.Scenario) ScenarioResult {
	start := time.Now()
	r.emit(events.NewEvent(events.ScenarioStarted, job.skill).WithScenario(sc.Name))

	res := ScenarioResult{Scenario: sc}
	if job.loop != nil {
		res.History = job.loop.Run(ctx, sc)
		res.Result = res.History.FinalResult
	} else {
		res.Result = r.singleShot(ctx, job, sc)
	}
	res.Duration = time.Since(start)

	payload := ScenarioPayload{
		Score:      res.Result.Score(),
		Passed:     res.Passed(),
		Iterations: res.Iterations(),
		Duration:   res.Duration,
	}
	if res.History != nil {
		payload.StopReason = string(res.History.StopReason)
	}
	r.emit(events.NewEvent(events.ScenarioCompleted, job.skill).WithScenario(sc.Name).WithPayload(payload))
	return res
}

func (r *Runner) singleShot(ctx context.Context, job *skillJob, sc scenario.Scenario) *evaluator.Result {
	code, err := job.generator.Generate(ctx, provider.Request{
		Skill:    job.skill,
		Prompt:   sc.Prompt,
		Scenario: sc,
		Config:   job.config,
	})
	if err != nil {
		r.emit(events.NewEvent(events.GenerationFailed, job.skill).WithScenario(sc.Name).WithError(err))
		r.log.Warn("generation failed",
			zap.String("skill", job.skill),
			zap.String("scenario", sc.Name),
			zap.Error(err))
		return evaluator.GenerationFailure(sc.Name, err)
	}
	return job.evaluator.Evaluate(code, sc.Expectations())
}

func (r *Runner) emit(e events.Event) {
	if r.deps.Publisher != nil {
		r.deps.Publisher.Emit(e)
	}
}

func scenarioNames(scenarios []scenario.Scenario) []string {
	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	return names
}
