// Package ralph runs the generate, evaluate, feedback loop for one scenario.
package ralph

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RevCBH/skill-harness/internal/evaluator"
	"github.com/RevCBH/skill-harness/internal/events"
	"github.com/RevCBH/skill-harness/internal/provider"
	"github.com/RevCBH/skill-harness/internal/scenario"
)

// Generator produces code for a request
type Generator interface {
	Generate(ctx context.Context, req provider.Request) (string, error)
}

// Evaluator scores code
type Evaluator interface {
	Evaluate(code string, exp evaluator.Expectations) *evaluator.Result
}

// FeedbackBuilder turns a result into guidance for the next prompt
type FeedbackBuilder interface {
	Build(r *evaluator.Result) string
}

// Publisher abstracts event publishing for testing
type Publisher interface {
	Emit(e events.Event)
}

// Deps are the collaborators of a Controller
type Deps struct {
	Generator Generator
	Evaluator Evaluator
	Feedback  FeedbackBuilder

	// Publisher and Logger are optional
	Publisher Publisher
	Logger    *zap.Logger

	// Skill and Config are forwarded on every generation request
	Skill  string
	Config scenario.Config
}

// Controller drives the loop. One Controller may run many scenarios,
// one at a time or concurrently; it holds no per-run state.
type Controller struct {
	config Config
	deps   Deps
	log    *zap.Logger
}

// New creates a Controller. Out-of-range settings are clamped: at least one
// iteration, threshold within [0,100].
func New(cfg Config, deps Deps) *Controller {
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = 1
	}
	cfg.QualityThreshold = max(0, min(100, cfg.QualityThreshold))

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{config: cfg, deps: deps, log: log}
}

// Config returns the effective configuration
func (c *Controller) Config() Config {
	return c.config
}

// Run loops over sc until a stop condition holds. The returned history
// always has at least one iteration.
func (c *Controller) Run(ctx context.Context, sc scenario.Scenario) *History {
	history := &History{Scenario: sc.Name}
	log := c.log.With(zap.String("skill", c.deps.Skill), zap.String("scenario", sc.Name))

	prompt := sc.Prompt
	for iteration := 1; ; iteration++ {
		start := time.Now()
		result, genErr := c.generate(ctx, sc, prompt)

		history.Iterations = append(history.Iterations, IterationRecord{
			Iteration: iteration,
			Prompt:    prompt,
			Result:    result,
			Duration:  time.Since(start),
		})
		rec := &history.Iterations[len(history.Iterations)-1]

		reason, stop := c.stopReason(ctx, history, genErr)
		c.emit(events.NewEvent(events.RalphIterationCompleted, c.deps.Skill).
			WithScenario(sc.Name).
			WithIteration(iteration).
			WithPayload(IterationPayload{
				Score:    result.Score(),
				Passed:   result.Passed(),
				Errors:   result.Count(evaluator.SeverityError),
				Warnings: result.Count(evaluator.SeverityWarning),
				Stopping: stop,
			}))
		log.Debug("ralph iteration completed",
			zap.Int("iteration", iteration),
			zap.Int("score", result.Score()),
			zap.Bool("passed", result.Passed()),
			zap.Duration("duration", rec.Duration))

		if stop {
			history.FinalResult = result
			history.StopReason = reason
			break
		}

		rec.Feedback = c.deps.Feedback.Build(result)
		prompt = nextPrompt(sc.Prompt, rec.Feedback)
	}

	c.emit(events.NewEvent(events.RalphStopped, c.deps.Skill).
		WithScenario(sc.Name).
		WithIteration(len(history.Iterations)).
		WithPayload(StoppedPayload{
			Reason:     history.StopReason,
			Iterations: len(history.Iterations),
			Scores:     history.Scores(),
			FinalScore: history.FinalResult.Score(),
			Passed:     history.FinalResult.Passed(),
		}))
	log.Info("ralph loop stopped",
		zap.String("reason", string(history.StopReason)),
		zap.Ints("scores", history.Scores()))

	return history
}

func (c *Controller) generate(ctx context.Context, sc scenario.Scenario, prompt string) (*evaluator.Result, error) {
	code, err := c.deps.Generator.Generate(ctx, provider.Request{
		Skill:    c.deps.Skill,
		Prompt:   prompt,
		Scenario: sc,
		Config:   c.deps.Config,
	})
	if err != nil {
		c.emit(events.NewEvent(events.GenerationFailed, c.deps.Skill).
			WithScenario(sc.Name).
			WithError(err))
		return evaluator.GenerationFailure(sc.Name, err), err
	}
	return c.deps.Evaluator.Evaluate(code, sc.Expectations()), nil
}

// stopReason applies the stop conditions to the latest iteration.
// A generation aborted by cancellation stops the loop first.
func (c *Controller) stopReason(ctx context.Context, h *History, genErr error) (StopReason, bool) {
	n := len(h.Iterations)
	score := h.Iterations[n-1].Result.Score()

	if genErr != nil && ctx.Err() != nil {
		return StopCancelled, true
	}

	switch {
	case score == 100:
		return StopPerfectScore, true
	case score >= c.config.QualityThreshold:
		return StopThresholdMet, true
	case n >= c.config.MaxIterations:
		return StopMaxIterations, true
	}

	if n > 1 {
		previous := h.Iterations[n-2].Result.Score()
		switch {
		case score == previous:
			return StopNoImprovement, true
		case score < previous:
			return StopRegression, true
		}
	}

	if ctx.Err() != nil {
		return StopCancelled, true
	}
	return "", false
}

func nextPrompt(base, feedback string) string {
	if feedback == "" {
		return base
	}
	return base + "\n\n" + feedback
}

func (c *Controller) emit(e events.Event) {
	if c.deps.Publisher != nil {
		c.deps.Publisher.Emit(e)
	}
}
