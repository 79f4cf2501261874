package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fsnotify/fsnotify"
	"go.ntppool.org/common/logger"
)

const reloadTries = 5

var (
	debounceInterval     = 100 * time.Millisecond
	reloadInitialBackoff = 250 * time.Millisecond
)

// Watch reloads the catalog from path whenever the file is written or
// replaced and hands each successfully loaded catalog to onLoad. It
// blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onLoad func(*Catalog, LoadStats)) error {
	log := logger.FromContext(ctx).WithGroup("catalog-watcher")

	dir, fileName := filepath.Dir(path), filepath.Base(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	log.InfoContext(ctx, "watching catalog file for changes", "dir", dir, "file", fileName)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		var debounceC <-chan time.Time
		if debounceTimer != nil {
			debounceC = debounceTimer.C
		}

		select {
		case <-ctx.Done():
			log.InfoContext(ctx, "catalog watcher shutting down")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("file watcher events channel closed")
			}
			// editors and deploy tools often write a temp file and rename it
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.DebugContext(ctx, "catalog file changed", "event", event.String())
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(debounceInterval)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("file watcher error channel closed")
			}
			log.WarnContext(ctx, "file watcher error", "err", err)

		case <-debounceC:
			debounceTimer = nil
			cat, stats, err := reload(ctx, path)
			if err != nil {
				log.ErrorContext(ctx, "catalog reload failed", "file", path, "err", err)
				continue
			}
			onLoad(cat, stats)
		}
	}
}

type loadResult struct {
	cat   *Catalog
	stats LoadStats
}

func reload(ctx context.Context, path string) (*Catalog, LoadStats, error) {
	expback := backoff.NewExponentialBackOff()
	expback.InitialInterval = reloadInitialBackoff
	expback.MaxInterval = 5 * time.Second

	r, err := backoff.Retry(ctx, func() (loadResult, error) {
		cat, stats, err := LoadFile(ctx, path)
		if err != nil {
			return loadResult{}, err
		}
		return loadResult{cat: cat, stats: stats}, nil
	},
		backoff.WithBackOff(expback),
		backoff.WithMaxTries(reloadTries),
	)
	if err != nil {
		return nil, LoadStats{}, err
	}
	return r.cat, r.stats, nil
}
