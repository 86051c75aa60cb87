package events

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus(4)

	var mu sync.Mutex
	var got []EventType
	bus.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.Type)
	})

	bus.Emit(NewEvent(RunStarted, "demo"))
	bus.Emit(NewEvent(ScenarioStarted, "demo"))
	bus.Emit(NewEvent(ScenarioCompleted, "demo"))
	bus.Emit(NewEvent(RunCompleted, "demo"))
	require.NoError(t, bus.Close())

	assert.Equal(t, []EventType{RunStarted, ScenarioStarted, ScenarioCompleted, RunCompleted}, got)
}

func TestBus_StampsTime(t *testing.T) {
	bus := NewBus(1)

	var stamped bool
	bus.Subscribe(func(e Event) { stamped = !e.Time.IsZero() })
	bus.Emit(NewEvent(RunStarted, "demo"))
	require.NoError(t, bus.Close())

	assert.True(t, stamped)
}

func TestBus_EmitAfterCloseIsDropped(t *testing.T) {
	bus := NewBus(0)

	count := 0
	bus.Subscribe(func(Event) { count++ })
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	bus.Emit(NewEvent(RunStarted, "demo"))
	assert.Equal(t, 0, count)
}

func TestBus_ConcurrentEmit(t *testing.T) {
	bus := NewBus(2)

	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				bus.Emit(NewEvent(ScenarioCompleted, "demo"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, bus.Close())

	assert.Equal(t, 200, count)
}

func TestLogHandler_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := LogHandler(LogConfig{Logger: zap.New(core), IncludePayload: true})

	handler(NewEvent(RunStarted, "demo"))
	handler(NewEvent(ScenarioStarted, "demo").WithScenario("basic"))
	handler(NewEvent(GenerationFailed, "demo").WithScenario("basic").WithIteration(2).WithError(assert.AnError))

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)

	fields := entries[2].ContextMap()
	assert.Equal(t, "generation.failed", fields["event"])
	assert.Equal(t, "basic", fields["scenario"])
	assert.Equal(t, int64(2), fields["iteration"])
	assert.Equal(t, assert.AnError.Error(), fields["error"])
}

func TestLogHandler_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	handler := LogHandler(LogConfig{Logger: zap.New(core)})

	handler(NewEvent(ScenarioStarted, "demo"))
	handler(NewEvent(CriteriaWarning, "demo"))
	handler(NewEvent(RunCancelled, "demo"))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "criteria.warning", logs.All()[0].ContextMap()["event"])
	assert.Equal(t, "run.cancelled", logs.All()[1].ContextMap()["event"])
}

func TestLogHandler_NilLogger(t *testing.T) {
	handler := LogHandler(LogConfig{})
	handler(NewEvent(RunStarted, "demo"))
}

func TestJSONEmitter(t *testing.T) {
	var buf bytes.Buffer
	handler := JSONEmitterHandler(NewJSONEmitter(&buf), nil)

	handler(NewEvent(RalphStopped, "demo").WithScenario("basic").WithIteration(2).WithPayload(map[string]string{"reason": "threshold_met"}))

	var je JSONEvent
	require.NoError(t, json.Unmarshal(buf.Bytes(), &je))
	assert.Equal(t, "ralph.stopped", je.Type)
	assert.Equal(t, "basic", je.Scenario)
	require.NotNil(t, je.Iteration)
	assert.Equal(t, 2, *je.Iteration)
	assert.Equal(t, map[string]any{"reason": "threshold_met"}, je.Payload)
}
