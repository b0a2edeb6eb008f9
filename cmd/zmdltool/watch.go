package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/zmdl/internal/logger"
)

// watchDelay coalesces the burst of events an editor save produces.
const watchDelay = 250 * time.Millisecond

func cmdWatch(ctx context.Context, args []string) error {
	rest, opts, err := setup("watch", args, 2, "watch [flags] <scene> <out.zmdl>")
	if err != nil {
		return err
	}
	scenePath, outPath := rest[0], rest[1]
	log := logger.Named("watch")

	run := func() {
		if err := exportTo(scenePath, outPath, opts); err != nil {
			log.Error("export failed, keeping previous document", zap.Error(err))
		}
	}
	run()

	log.Info("watching scene", zap.String("path", scenePath))
	return watchFile(ctx, scenePath, watchDelay, log, run)
}

// watchFile calls fn once path has been written or replaced and then left
// alone for delay. The parent directory is watched so that editors which
// save by renaming a temp file over path are seen too. It returns when ctx
// is done.
func watchFile(ctx context.Context, path string, delay time.Duration, log *zap.Logger, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debug("scene changed", zap.Stringer("op", ev.Op))
			fire = time.After(delay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			fn()
		}
	}
}
