package ingest

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/financeai/docledger/constants"
)

// WatchConfig configures filesystem watching for the watch command.
type WatchConfig struct {
	Dir      string
	Debounce time.Duration // coalesce rapid create/write bursts
}

// StartWatcher emits paths of supported files as they appear or change in
// the watched directory. The channel closes when ctx is cancelled.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dir == "" {
		return nil, errors.New("no watch directory provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watcher.create_failed", "error", err)
		return nil, err
	}
	if err := w.Add(cfg.Dir); err != nil {
		logger.Error("watcher.add_failed", "dir", cfg.Dir, "error", err)
		_ = w.Close()
		return nil, err
	}

	evCh := make(chan string, 64)
	go func() {
		defer close(evCh)
		defer func() {
			if cerr := w.Close(); cerr != nil {
				logger.Warn("watcher.close_error", "error", cerr)
			}
		}()

		pending := map[string]struct{}{}
		// sends block when the consumer lags behind a burst; a path is only
		// removed from pending once it has been delivered
		sendPending := func() bool {
			for p := range pending {
				select {
				case evCh <- p:
					delete(pending, p)
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		var quiet <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case <-quiet:
				quiet = nil
				if !sendPending() {
					return
				}
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				ext := constants.NormalizeExt(filepath.Ext(e.Name))
				if _, allowed := constants.AllowedExtensions[ext]; !allowed {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce > 0 {
					quiet = time.After(cfg.Debounce)
				} else if !sendPending() {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher.event_error", "error", err)
			}
		}
	}()
	return evCh, nil
}
