package cli

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/RevCBH/skill-harness/internal/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Emit(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event{}, p.events...)
}

func waitCancelled(t *testing.T, h *Interrupter) {
	t.Helper()
	select {
	case <-h.Cancelled():
	case <-time.After(time.Second):
		t.Fatal("run was not cancelled in time")
	}
}

func TestInterrupter_CancelsRunAndPublishes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core, logs := observer.New(zapcore.InfoLevel)
	pub := &recordingPublisher{}
	h := NewInterrupter(InterruptConfig{Skill: "demo-py", Cancel: cancel, Publisher: pub, Logger: zap.New(core)})
	h.listen()
	defer h.Stop()

	h.signals <- syscall.SIGINT
	waitCancelled(t, h)

	if ctx.Err() != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", ctx.Err())
	}

	got := pub.all()
	if len(got) != 1 {
		t.Fatalf("expected one published event, got %d", len(got))
	}
	if got[0].Type != events.RunCancelled || got[0].Skill != "demo-py" {
		t.Errorf("unexpected event %s", got[0])
	}
	if p, ok := got[0].Payload.(events.RunCancelledPayload); !ok || p.Signal != syscall.SIGINT.String() {
		t.Errorf("unexpected payload %#v", got[0].Payload)
	}

	entries := logs.FilterMessage("received signal, cancelling run").All()
	if len(entries) != 1 {
		t.Fatalf("expected one signal log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["signal"] != syscall.SIGINT.String() || fields["skill"] != "demo-py" {
		t.Errorf("unexpected log fields %v", fields)
	}
}

func TestInterrupter_CallbacksRunInOrder(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewInterrupter(InterruptConfig{Cancel: cancel})

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		h.OnInterrupt(func(sig os.Signal) {
			mu.Lock()
			defer mu.Unlock()
			if sig == syscall.SIGTERM {
				order = append(order, i)
			}
		})
	}

	h.listen()
	defer h.Stop()

	h.signals <- syscall.SIGTERM
	waitCancelled(t, h)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("callbacks ran as %v, want [1 2 3]", order)
	}
}

func TestInterrupter_SecondSignalExits(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	exited := make(chan int, 1)
	pub := &recordingPublisher{}
	h := NewInterrupter(InterruptConfig{
		Cancel:    cancel,
		Publisher: pub,
		Exit:      func(code int) { exited <- code },
	})
	h.listen()
	defer h.Stop()

	h.signals <- syscall.SIGINT
	waitCancelled(t, h)

	select {
	case code := <-exited:
		t.Fatalf("exited with %d after the first signal", code)
	default:
	}

	h.signals <- syscall.SIGINT
	select {
	case code := <-exited:
		if code != interruptExitCode {
			t.Errorf("exit code = %d, want %d", code, interruptExitCode)
		}
	case <-time.After(time.Second):
		t.Fatal("second signal did not exit")
	}

	if n := len(pub.all()); n != 1 {
		t.Errorf("expected run.cancelled once, got %d events", n)
	}
}

func TestInterrupter_StopWithoutSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewInterrupter(InterruptConfig{Cancel: cancel})
	h.listen()
	h.Stop()
	h.Stop()

	select {
	case <-h.done:
	default:
		t.Error("goroutine should have exited after Stop")
	}
	select {
	case <-h.Cancelled():
		t.Error("Stop must not report a cancellation")
	default:
	}
	if ctx.Err() != nil {
		t.Error("Stop must not cancel the context")
	}
}
