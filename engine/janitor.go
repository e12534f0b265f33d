package engine

import (
	"context"
	"time"
)

// StartMediaJanitor launches a background goroutine that periodically retries
// deletion of orphaned media store objects recorded by failed cleanup steps.
// It is best-effort, logs failures, and stops when ctx is cancelled.
func (e *Engine) StartMediaJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.SweepOrphanedMedia(ctx)
			}
		}
	}()
}

// SweepOrphanedMedia attempts to delete every recorded orphaned media object,
// removing entries that are gone from the store. Deletion is idempotent, so
// retrying an already-released key is harmless.
func (e *Engine) SweepOrphanedMedia(ctx context.Context) {
	orphans, err := e.stores.Orphans().List(ctx, 100)
	if err != nil {
		e.log.Warnf("media janitor query failed: %v", err)
		return
	}
	for _, orphan := range orphans {
		if err := e.media.Delete(ctx, orphan.StorageKey); err != nil {
			e.log.Warnw("media janitor delete failed", "key", orphan.StorageKey, "error", err)
			if recErr := e.stores.Orphans().Record(ctx, orphan.StorageKey, err.Error()); recErr != nil {
				e.log.Warnw("media janitor record failed", "key", orphan.StorageKey, "error", recErr)
			}
			continue
		}
		if err := e.stores.Orphans().Remove(ctx, orphan.StorageKey); err != nil {
			e.log.Warnw("media janitor remove row failed", "key", orphan.StorageKey, "error", err)
		}
	}
}
