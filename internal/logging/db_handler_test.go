package logging_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/logging"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu   sync.Mutex
	logs []models.SystemLog
}

func (m *memorySink) WriteSystemLogs(_ context.Context, logs []models.SystemLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, logs...)
	return nil
}

func (m *memorySink) PurgeSystemLogs(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.logs[:0]
	var deleted int64
	for _, l := range m.logs {
		if l.Timestamp.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	m.logs = kept
	return deleted, nil
}

func TestDBHandlerKeepsOnlyErrors(t *testing.T) {
	sink := &memorySink{}
	h := logging.NewDBHandler(sink)
	logger := slog.New(h).With("trace_id", "req-1")

	logger.Info("ignored")
	logger.Error("boom", "error", "disk full", "user_id", "u-1", "path", "/api/x")
	h.Stop()

	require.Len(t, sink.logs, 1)
	entry := sink.logs[0]
	assert.Equal(t, "boom", entry.Message)
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "req-1", entry.TraceID)
	assert.Equal(t, "disk full", entry.Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.JSONEq(t, `{"path":"/api/x"}`, string(entry.Extra))
}

func TestPurgeOnce(t *testing.T) {
	now := time.Now()
	sink := &memorySink{logs: []models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -40)},
		{Timestamp: now},
	}}

	deleted, err := logging.PurgeOnce(context.Background(), sink, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, sink.logs, 1)
}
