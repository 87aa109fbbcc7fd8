package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phobologic/archcheck/internal/config"
	"github.com/phobologic/archcheck/internal/lang"
	"github.com/phobologic/archcheck/internal/source"
)

const watchDebounce = 200 * time.Millisecond

var watchSkipDirs = map[string]struct{}{
	"node_modules": {},
	"dist":         {},
	"build":        {},
	"coverage":     {},
}

// watch runs a check, then re-runs it whenever a source, architecture or
// tsconfig file changes under the runner's dir, until ctx is done.
// Violations do not end the loop.
func watch(ctx context.Context, r *runner) error {
	dir, stderr, logger := r.dir, r.stderr, r.logger
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := addWatchDirs(w, dir); err != nil {
		return err
	}

	var pending []string
	rerun := func() {
		changed := pending
		pending = nil
		if _, err := r.run(ctx, changed...); err != nil && ctx.Err() == nil {
			_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		}
		_, _ = fmt.Fprintf(stderr, "Watching %s for changes...\n", dir)
	}
	rerun()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if isWatchableDir(ev.Name) {
					if err := addWatchDirs(w, ev.Name); err != nil {
						logger.Warn("watching new directory", "dir", ev.Name, "error", err)
					}
				}
			}
			if !relevantChange(ev.Name) {
				continue
			}
			logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			if abs, err := filepath.Abs(ev.Name); err == nil {
				pending = append(pending, abs)
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			rerun()
		}
	}
}

func addWatchDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != root {
			if _, skip := watchSkipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

func isWatchableDir(p string) bool {
	name := filepath.Base(p)
	if _, skip := watchSkipDirs[name]; skip || strings.HasPrefix(name, ".") {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// relevantChange reports whether a change to p can affect the result.
func relevantChange(p string) bool {
	base := filepath.Base(p)
	if base == source.TSConfigFile {
		return true
	}
	for _, name := range config.FileNames {
		if base == name {
			return true
		}
	}
	if strings.HasSuffix(base, ".d.ts") {
		return false
	}
	return lang.ForExtension(filepath.Ext(base)) != ""
}
