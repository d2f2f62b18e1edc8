package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ampes-dev/ampes/internal/timeutil"
)

// watch calls fn after any of paths is written, once changes have been quiet
// for delay. It returns when ctx is done.
func watch(ctx context.Context, clock timeutil.Clock, paths []string, delay time.Duration, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Directories are watched so that editors which replace the file on save
	// are still seen.
	names := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		names[filepath.Clean(p)] = true
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return watchLoop(ctx, w.Events, w.Errors, clock, names, delay, fn)
}

func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error,
	clock timeutil.Clock, names map[string]bool, delay time.Duration, fn func()) error {
	var (
		timer timeutil.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !names[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = clock.NewTimer(delay)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(delay)
			}
			fire = timer.C()

		case <-fire:
			fire = nil
			fn()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		}
	}
}
