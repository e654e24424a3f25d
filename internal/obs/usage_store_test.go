package obs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageStoreRecordAndTotals(t *testing.T) {
	store, err := NewUsageStore(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)

	store.Record(UsageRecord{
		RequestID:    "req-1",
		Kind:         "claude-custom",
		Model:        "claude-sonnet-4-5",
		InputTokens:  100,
		OutputTokens: 40,
		CostUSD:      0.0009,
	})
	store.Record(UsageRecord{
		RequestID:    "req-2",
		Kind:         "claude-custom",
		Model:        "claude-sonnet-4-5",
		InputTokens:  50,
		OutputTokens: 10,
		CostUSD:      0.0003,
	})
	store.Record(UsageRecord{
		RequestID:   "req-3",
		Kind:        "openai-custom",
		Model:       "gpt-4o",
		InputTokens: 20,
		Failed:      true,
	})
	// Close drains the writer before we query.
	store.Close()

	totals, err := store.TotalsByModel(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "claude-sonnet-4-5", totals[0].Model)
	assert.Equal(t, int64(2), totals[0].Requests)
	assert.Equal(t, int64(150), totals[0].InputTokens)
	assert.Equal(t, int64(50), totals[0].OutputTokens)
	assert.InDelta(t, 0.0012, totals[0].CostUSD, 1e-9)

	assert.Equal(t, "gpt-4o", totals[1].Model)
	assert.Equal(t, int64(1), totals[1].Requests)
}

func TestUsageStoreTotalsCutoff(t *testing.T) {
	store, err := NewUsageStore(filepath.Join(t.TempDir(), "usage.db"))
	require.NoError(t, err)
	store.Record(UsageRecord{RequestID: "req-1", Model: "gpt-4o"})
	store.Close()

	totals, err := store.TotalsByModel(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, totals)
}
