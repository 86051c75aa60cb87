package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/RevCBH/skill-harness/internal/events"
	"github.com/RevCBH/skill-harness/internal/runner"
)

// interruptExitCode is the shell status for a process ended by SIGINT
const interruptExitCode = 130

// InterruptConfig wires an Interrupter to one skill run
type InterruptConfig struct {
	Skill  string
	Cancel context.CancelFunc

	// Publisher and Logger are optional
	Publisher runner.Publisher
	Logger    *zap.Logger

	// Exit ends the process on a second signal (default os.Exit)
	Exit func(code int)
}

// Interrupter turns SIGINT and SIGTERM into cancellation of a skill run.
// The first signal publishes run.cancelled and cancels the run context, so
// in-flight Ralph loops stop as cancelled and the partial report is still
// written. A second signal exits with status 130.
type Interrupter struct {
	cfg InterruptConfig

	signals   chan os.Signal
	cancelled chan struct{} // closed once the run has been cancelled
	stopCh    chan struct{}
	done      chan struct{}
	stopOnce  sync.Once

	mu       sync.Mutex
	handlers []func(os.Signal)
}

// NewInterrupter creates an interrupter; call Start to begin listening
func NewInterrupter(cfg InterruptConfig) *Interrupter {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}
	return &Interrupter{
		cfg:       cfg,
		signals:   make(chan os.Signal, 2),
		cancelled: make(chan struct{}),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start registers for SIGINT and SIGTERM and begins listening
func (h *Interrupter) Start() {
	signal.Notify(h.signals, syscall.SIGINT, syscall.SIGTERM)
	h.listen()
}

// listen runs the signal loop without registering with the OS
func (h *Interrupter) listen() {
	started := make(chan struct{})
	go func() {
		defer close(h.done)
		close(started)

		interrupted := false
		for {
			select {
			case sig := <-h.signals:
				if interrupted {
					h.cfg.Logger.Warn("second signal, exiting", zap.String("signal", sig.String()))
					h.cfg.Exit(interruptExitCode)
					return
				}
				interrupted = true
				h.interrupt(sig)
			case <-h.stopCh:
				return
			}
		}
	}()
	<-started
}

func (h *Interrupter) interrupt(sig os.Signal) {
	h.cfg.Logger.Info("received signal, cancelling run",
		zap.String("skill", h.cfg.Skill),
		zap.String("signal", sig.String()))

	if h.cfg.Publisher != nil {
		h.cfg.Publisher.Emit(events.NewEvent(events.RunCancelled, h.cfg.Skill).
			WithPayload(events.RunCancelledPayload{Signal: sig.String()}))
	}
	if h.cfg.Cancel != nil {
		h.cfg.Cancel()
	}

	h.mu.Lock()
	handlers := append([]func(os.Signal){}, h.handlers...)
	h.mu.Unlock()
	for _, fn := range handlers {
		fn(sig)
	}
	close(h.cancelled)
}

// OnInterrupt registers a callback run after the first signal, in
// registration order
func (h *Interrupter) OnInterrupt(fn func(os.Signal)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, fn)
}

// Cancelled is closed once a signal has cancelled the run
func (h *Interrupter) Cancelled() <-chan struct{} {
	return h.cancelled
}

// Stop unregisters from the OS and ends the loop. It waits briefly so an
// interrupt already in progress can finish its callbacks.
func (h *Interrupter) Stop() {
	signal.Stop(h.signals)
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	select {
	case <-h.done:
	case <-time.After(100 * time.Millisecond):
	}
}
