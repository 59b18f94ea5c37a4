package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefbook/internal/database"
	"chefbook/internal/shared"
)

func newTestStore(t *testing.T, now time.Time) *Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewStore(db.SQL)
	s.now = func() time.Time { return now }
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	s := newTestStore(t, now)

	require.NoError(t, s.Record(ctx, ExecutionMetric{
		AgentName: shared.AgentPlanner, Model: "gemini-2.5-flash",
		PromptTokens: 100, CompletionTokens: 40, LatencyMS: 900,
		Timestamp: now.Add(-2 * time.Hour),
	}))
	require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{
		AgentName: shared.AgentChef,
		Usage:     shared.TokenUsage{PromptTokens: 50, CompletionTokens: 10, Model: "gemini-2.5-flash"},
		Latency:   300 * time.Millisecond,
	}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{
		AgentName: shared.AgentChef, PromptTokens: 7, CompletionTokens: 3,
		Timestamp: now.AddDate(0, 0, -1),
	}))
	require.NoError(t, s.Record(ctx, ExecutionMetric{
		AgentName: shared.AgentChef, PromptTokens: 1, CompletionTokens: 1,
		Timestamp: now.AddDate(0, 0, -40),
	}))

	t.Run("RecordMetaSkipsEmptyUsage", func(t *testing.T) {
		require.NoError(t, s.RecordMeta(ctx, shared.AgentMeta{AgentName: shared.AgentChef}))
	})

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := s.GetDailyUsage(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, []DailyUsage{
			{Date: "2025-06-10", TotalPrompt: 150, TotalCompletion: 50, TotalExecution: 2},
			{Date: "2025-06-09", TotalPrompt: 7, TotalCompletion: 3, TotalExecution: 1},
		}, usage)
	})

	t.Run("Cleanup", func(t *testing.T) {
		removed, err := s.Cleanup(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		usage, err := s.GetDailyUsage(ctx, 365)
		require.NoError(t, err)
		assert.Len(t, usage, 2)
	})
}

func TestMapUsage(t *testing.T) {
	m := MapUsage(shared.AgentPlanner, shared.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "m"}, 1500*time.Millisecond)
	assert.Equal(t, int64(1500), m.LatencyMS)
	assert.Equal(t, "m", m.Model)
	assert.Equal(t, 4, m.CompletionTokens)
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), make([]byte, 2048), 0644))

	health := GetSysHealth(dir)
	assert.Equal(t, "2.0 KB", health.DataDiskSize)
	assert.Positive(t, health.Goroutines)
}
