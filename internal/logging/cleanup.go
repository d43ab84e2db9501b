package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/store"
)

// StartCleanup runs a daily goroutine that deletes system logs older than
// retentionDays.
func StartCleanup(sink store.LogSink, retentionDays int, done chan struct{}) {
	if retentionDays <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeOnce(context.Background(), sink, retentionDays)
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}

// PurgeOnce deletes system logs older than retentionDays.
func PurgeOnce(ctx context.Context, sink store.LogSink, retentionDays int) (int64, error) {
	return sink.PurgeSystemLogs(ctx, time.Now().AddDate(0, 0, -retentionDays))
}
