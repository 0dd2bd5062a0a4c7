package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of events editors and exporters emit
// for a single save.
const debounceDelay = 300 * time.Millisecond

// watchAndReport runs the report once, then re-runs it whenever one of the
// input files changes, until the context is cancelled. A failing re-run is
// reported and watched through, not fatal: the next save gets another try.
func watchAndReport(ctx context.Context, cmdCtx *CommandContext, renderCharts bool) error {
	if err := runReport(ctx, cmdCtx, renderCharts); err != nil {
		cmdCtx.Logger.Error("report failed", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the containing directories: exporters typically replace the
	// file, which would drop a watch set on the file itself.
	watched := map[string]bool{
		filepath.Clean(cmdCtx.Cfg.RosterPath): true,
		filepath.Clean(cmdCtx.Cfg.StatusPath): true,
	}
	dirs := map[string]bool{}
	for path := range watched {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	cmdCtx.Logger.Info("watching for input changes",
		"roster", cmdCtx.Cfg.RosterPath, "status", cmdCtx.Cfg.StatusPath)

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			cmdCtx.Logger.Info("stopping watch")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				debounce.Reset(debounceDelay)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			cmdCtx.Logger.Info("input changed, re-running report")
			if err := runReport(ctx, cmdCtx, renderCharts); err != nil {
				cmdCtx.Logger.Error("report failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Error("watch error", "error", err)
		}
	}
}
