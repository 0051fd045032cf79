package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper deletes artifacts older than a retention window. It is not part of
// the request path; one bad file never blocks cleanup of the rest.
type Sweeper struct {
	ttl    time.Duration
	logger *slog.Logger
}

func NewSweeper(ttl time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{ttl: ttl, logger: logger}
}

// Sweep walks the store's directory once and deletes every artifact whose age
// exceeds the retention window. Directories and unreadable entries are
// skipped. Returns how many artifacts were deleted and how many delete or
// stat attempts failed.
func (sw *Sweeper) Sweep(store *Store) (deleted, failed int) {
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		sw.logger.Warn("sweep: reading storage dir", "dir", store.Dir(), "error", err)
		return 0, 0
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(store.Dir(), entry.Name())
		age, err := store.AgeOf(path)
		if err != nil {
			sw.logger.Warn("sweep: stat failed", "path", path, "error", err)
			failed++
			continue
		}
		if age <= sw.ttl {
			continue
		}

		if err := store.Delete(path); err != nil {
			sw.logger.Warn("sweep: delete failed", "path", path, "error", err)
			failed++
			continue
		}
		sw.logger.Info("sweep: deleted stale artifact", "path", path, "age", age.Round(time.Minute))
		deleted++
	}

	return deleted, failed
}

// SweepAll runs one pass over each store and logs a summary.
func (sw *Sweeper) SweepAll(stores ...*Store) {
	var deleted, failed int
	for _, store := range stores {
		d, f := sw.Sweep(store)
		deleted += d
		failed += f
	}
	sw.logger.Info("retention sweep complete", "deleted", deleted, "failed", failed)
}

// StartPeriodic re-runs the sweep on a ticker until ctx is cancelled.
func (sw *Sweeper) StartPeriodic(ctx context.Context, interval time.Duration, stores ...*Store) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sw.SweepAll(stores...)
			}
		}
	}()
}
