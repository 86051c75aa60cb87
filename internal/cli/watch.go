package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RevCBH/skill-harness/internal/events"
)

// DefaultDebounce collapses the burst of events an editor save produces
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls back when any of a fixed set of files changes
type Watcher struct {
	paths    map[string]bool
	Debounce time.Duration
	log      *zap.Logger

	// ready is closed once the directories are being watched (tests)
	ready chan struct{}
}

// NewWatcher watches paths. Their parent directories are watched so that
// files replaced by rename, or created later, are still seen.
func NewWatcher(paths []string, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Watcher{
		paths:    make(map[string]bool, len(paths)),
		Debounce: DefaultDebounce,
		log:      log,
		ready:    make(chan struct{}),
	}
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			w.paths[abs] = true
		}
	}
	return w
}

// Run blocks until ctx is done, calling onChange with the changed path
// once per debounced burst. onChange runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, path string)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	dirs := make(map[string]bool)
	for p := range w.paths {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	close(w.ready)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.paths[filepath.Clean(ev.Name)] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			w.log.Debug("watched file changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			changed = filepath.Clean(ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(ctx, changed)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", zap.Error(err))
		}
	}
}

// watch re-runs the skill whenever its criteria or scenario file changes
func (a *App) watch(ctx context.Context, cmd *cobra.Command, s *session) error {
	skill := a.opts.Skill
	w := NewWatcher([]string{s.criteria.Path(skill), s.scenarios.Path(skill)}, s.log.Logger)

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching %s for changes (Ctrl+C to stop)\n", skill)
	return w.Run(ctx, func(ctx context.Context, path string) {
		s.bus.Emit(events.NewEvent(events.WatchTriggered, skill).WithPayload(map[string]string{"path": path}))
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s changed, re-running %s\n\n", filepath.Base(path), skill)
		if err := a.runOnce(ctx, cmd, s); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})
}
