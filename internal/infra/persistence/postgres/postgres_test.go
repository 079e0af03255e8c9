package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolMonitor_Observe(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := newPoolMonitor(logger, 50*time.Millisecond)
	ctx := context.Background()

	m.observe(ctx, sql.DBStats{MaxOpenConnections: 10, InUse: 3})
	assert.Empty(t, buf.String(), "no waits")

	m.observe(ctx, sql.DBStats{MaxOpenConnections: 10, InUse: 10, WaitCount: 2, WaitDuration: 10 * time.Millisecond})
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "waits=2")
	assert.Contains(t, buf.String(), "avgWait=5ms")
	assert.Contains(t, buf.String(), "component=postgres-pool")

	buf.Reset()
	m.observe(ctx, sql.DBStats{MaxOpenConnections: 10, InUse: 10, WaitCount: 5, WaitDuration: 310 * time.Millisecond})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "waits=3")
	assert.Contains(t, buf.String(), "waited=300ms")
}
