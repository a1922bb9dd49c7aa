package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long input files must be quiet before a rebuild.
const DefaultDebounce = 500 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Options
	Debounce time.Duration
	// OnBuild is called after every build attempt, including the initial one.
	OnBuild func(*Result, error)
}

// Watch builds once, then rebuilds whenever an input file changes until ctx
// is cancelled. Directories are watched rather than files so that editors
// which replace files on save are still seen.
func Watch(ctx context.Context, opts WatchOptions) error {
	log := opts.logger()
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	inputs := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range Inputs(opts.Paths) {
		inputs[filepath.Clean(p)] = true
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			log.Debug("Not watching missing directory", zap.String("dir", dir))
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		log.Info("Watching directory", zap.String("dir", dir))
	}

	build := func(force bool) {
		o := opts.Options
		o.Force = force
		res, err := Run(ctx, o)
		if err != nil {
			log.Error("Build failed", zap.Error(err))
		}
		if opts.OnBuild != nil {
			opts.OnBuild(res, err)
		}
	}

	build(opts.Force)

	// The timer is created stopped and armed by the first relevant event.
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("Input changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", zap.Error(err))

		case <-timer.C:
			build(false)
		}
	}
}
