package ralph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevCBH/skill-harness/internal/evaluator"
	"github.com/RevCBH/skill-harness/internal/events"
	"github.com/RevCBH/skill-harness/internal/provider"
	"github.com/RevCBH/skill-harness/internal/scenario"
)

// scriptedGenerator returns "score:N" codes in order, repeating the last one
type scriptedGenerator struct {
	scores  []int
	prompts []string
	errs    map[int]error
	calls   int
}

func (g *scriptedGenerator) Generate(ctx context.Context, req provider.Request) (string, error) {
	g.prompts = append(g.prompts, req.Prompt)
	i := g.calls
	g.calls++
	if err, ok := g.errs[i]; ok {
		return "", err
	}
	if i >= len(g.scores) {
		i = len(g.scores) - 1
	}
	return fmt.Sprintf("score:%d", g.scores[i]), nil
}

// scoreEvaluator turns "score:N" into a passing result scoring N via warnings
type scoreEvaluator struct{}

func (scoreEvaluator) Evaluate(code string, exp evaluator.Expectations) *evaluator.Result {
	var score int
	fmt.Sscanf(code, "score:%d", &score)

	var findings []evaluator.Finding
	for i := 0; i < (100-score)/evaluator.WarningPenalty; i++ {
		findings = append(findings, evaluator.Finding{
			Severity: evaluator.SeverityWarning,
			Rule:     evaluator.RulePattern,
			Message:  fmt.Sprintf("warning %d", i),
		})
	}
	return evaluator.NewResult(exp.Scenario, code, findings, nil, nil)
}

type staticFeedback struct{}

func (staticFeedback) Build(r *evaluator.Result) string {
	if len(r.Findings()) == 0 {
		return ""
	}
	return fmt.Sprintf("fix %d findings", len(r.Findings()))
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *mockPublisher) Emit(e events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *mockPublisher) types() []events.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.EventType
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

func newController(cfg Config, gen Generator, pub Publisher) *Controller {
	return New(cfg, Deps{
		Generator: gen,
		Evaluator: scoreEvaluator{},
		Feedback:  staticFeedback{},
		Publisher: pub,
		Skill:     "demo",
	})
}

var basic = scenario.Scenario{Name: "basic", Prompt: "write the code"}

func TestRun_StopPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		scores     []int
		wantReason StopReason
		wantScores []int
	}{
		{
			name:       "threshold met beats no improvement",
			cfg:        Config{MaxIterations: 5, QualityThreshold: 80},
			scores:     []int{70, 85},
			wantReason: StopThresholdMet,
			wantScores: []int{70, 85},
		},
		{
			name:       "equal score is no improvement",
			cfg:        Config{MaxIterations: 5, QualityThreshold: 80},
			scores:     []int{70, 70},
			wantReason: StopNoImprovement,
			wantScores: []int{70, 70},
		},
		{
			name:       "lower score is regression",
			cfg:        Config{MaxIterations: 5, QualityThreshold: 80},
			scores:     []int{70, 60},
			wantReason: StopRegression,
			wantScores: []int{70, 60},
		},
		{
			name:       "perfect score wins over threshold",
			cfg:        Config{MaxIterations: 5, QualityThreshold: 80},
			scores:     []int{100},
			wantReason: StopPerfectScore,
			wantScores: []int{100},
		},
		{
			name:       "threshold at first iteration",
			cfg:        Config{MaxIterations: 5, QualityThreshold: 80},
			scores:     []int{80},
			wantReason: StopThresholdMet,
			wantScores: []int{80},
		},
		{
			name:       "max iterations beats no improvement",
			cfg:        Config{MaxIterations: 2, QualityThreshold: 80},
			scores:     []int{70, 70},
			wantReason: StopMaxIterations,
			wantScores: []int{70, 70},
		},
		{
			name:       "steady improvement until the limit",
			cfg:        Config{MaxIterations: 3, QualityThreshold: 95},
			scores:     []int{50, 60, 70, 80},
			wantReason: StopMaxIterations,
			wantScores: []int{50, 60, 70},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &scriptedGenerator{scores: tt.scores}
			h := newController(tt.cfg, gen, nil).Run(context.Background(), basic)

			assert.Equal(t, tt.wantReason, h.StopReason)
			assert.Equal(t, tt.wantScores, h.Scores())
			assert.Equal(t, len(tt.wantScores), gen.calls)
		})
	}
}

func TestRun_RegressionKeepsRegressedResult(t *testing.T) {
	h := newController(DefaultConfig(), &scriptedGenerator{scores: []int{70, 60}}, nil).
		Run(context.Background(), basic)

	require.Len(t, h.Iterations, 2)
	assert.Same(t, h.Iterations[1].Result, h.FinalResult)
	assert.Equal(t, 60, h.FinalResult.Score())
	assert.Equal(t, -10, h.Improvement())
}

func TestRun_TerminatesWithinMaxIterations(t *testing.T) {
	for limit := 1; limit <= 6; limit++ {
		scores := make([]int, 10)
		for i := range scores {
			scores[i] = 10 + 5*i
		}
		h := newController(Config{MaxIterations: limit, QualityThreshold: 100}, &scriptedGenerator{scores: scores}, nil).
			Run(context.Background(), basic)

		assert.NotEmpty(t, h.Iterations)
		assert.LessOrEqual(t, len(h.Iterations), limit)
		assert.Same(t, h.Iterations[len(h.Iterations)-1].Result, h.FinalResult)
	}
}

func TestRun_PromptCarriesFeedback(t *testing.T) {
	gen := &scriptedGenerator{scores: []int{60, 70, 90}}
	h := newController(DefaultConfig(), gen, nil).Run(context.Background(), basic)

	require.Len(t, gen.prompts, 3)
	assert.Equal(t, "write the code", gen.prompts[0])
	assert.Equal(t, "write the code\n\nfix 8 findings", gen.prompts[1])
	assert.Equal(t, "write the code\n\nfix 6 findings", gen.prompts[2])

	assert.Equal(t, "fix 8 findings", h.Iterations[0].Feedback)
	assert.Equal(t, "fix 6 findings", h.Iterations[1].Feedback)
	assert.Empty(t, h.Iterations[2].Feedback)
	for i, rec := range h.Iterations {
		assert.Equal(t, i+1, rec.Iteration)
		assert.Equal(t, gen.prompts[i], rec.Prompt)
	}
}

func TestRun_GenerationFailureIsRecorded(t *testing.T) {
	gen := &scriptedGenerator{scores: []int{70, 90}, errs: map[int]error{0: errors.New("rate limited")}}
	pub := &mockPublisher{}
	h := newController(DefaultConfig(), gen, pub).Run(context.Background(), basic)

	require.Len(t, h.Iterations, 2)
	first := h.Iterations[0].Result
	assert.False(t, first.Passed())
	assert.Equal(t, 0, first.Score())
	require.Len(t, first.Findings(), 1)
	assert.True(t, strings.HasPrefix(first.Findings()[0].Message, "generation failed: rate limited"))

	assert.Equal(t, StopThresholdMet, h.StopReason)
	assert.Contains(t, pub.types(), events.GenerationFailed)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &cancellingGenerator{cancel: cancel}

	h := newController(DefaultConfig(), gen, nil).Run(ctx, basic)

	assert.Equal(t, StopCancelled, h.StopReason)
	require.Len(t, h.Iterations, 2)
	assert.Equal(t, 0, h.FinalResult.Score())
}

// cancellingGenerator succeeds once, then cancels and fails with the context error
type cancellingGenerator struct {
	cancel context.CancelFunc
	calls  int
}

func (g *cancellingGenerator) Generate(ctx context.Context, _ provider.Request) (string, error) {
	g.calls++
	if g.calls == 1 {
		return "score:50", nil
	}
	g.cancel()
	return "", ctx.Err()
}

func TestRun_Events(t *testing.T) {
	pub := &mockPublisher{}
	newController(DefaultConfig(), &scriptedGenerator{scores: []int{70, 85}}, pub).
		Run(context.Background(), basic)

	assert.Equal(t, []events.EventType{
		events.RalphIterationCompleted,
		events.RalphIterationCompleted,
		events.RalphStopped,
	}, pub.types())

	last := pub.events[2]
	assert.Equal(t, "demo", last.Skill)
	assert.Equal(t, "basic", last.Scenario)
	payload, ok := last.Payload.(StoppedPayload)
	require.True(t, ok)
	assert.Equal(t, StopThresholdMet, payload.Reason)
	assert.Equal(t, []int{70, 85}, payload.Scores)
	assert.True(t, payload.Passed)

	iter, ok := pub.events[1].Payload.(IterationPayload)
	require.True(t, ok)
	assert.True(t, iter.Stopping)
	assert.Equal(t, 3, iter.Warnings)
}

func TestNew_ClampsConfig(t *testing.T) {
	c := New(Config{MaxIterations: 0, QualityThreshold: 150}, Deps{})
	assert.Equal(t, Config{MaxIterations: 1, QualityThreshold: 100}, c.Config())

	c = New(Config{MaxIterations: 3, QualityThreshold: -4}, Deps{})
	assert.Equal(t, Config{MaxIterations: 3, QualityThreshold: 0}, c.Config())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, Config{MaxIterations: 5, QualityThreshold: 80}, DefaultConfig())

	err := Config{MaxIterations: 0, QualityThreshold: 101}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max iterations must be at least 1")
	assert.Contains(t, err.Error(), "threshold must be between 0 and 100")
}

func TestStopReason_Success(t *testing.T) {
	assert.True(t, StopThresholdMet.Success())
	assert.True(t, StopPerfectScore.Success())
	assert.False(t, StopRegression.Success())
	assert.False(t, StopCancelled.Success())
}
