package pool

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(kind, id string) *ProviderEntry {
	return &ProviderEntry{UUID: id, Kind: kind, IsHealthy: true}
}

func poolWith(maxErrors int, entries ...*ProviderEntry) *Pool {
	p := New(maxErrors)
	loaded := make(map[string][]*ProviderEntry)
	for _, e := range entries {
		loaded[e.Kind] = append(loaded[e.Kind], e)
	}
	p.Replace(loaded)
	return p
}

func TestSelectRoundRobin(t *testing.T) {
	a := newEntry("openai-custom", "a")
	b := newEntry("openai-custom", "b")
	a.LastUsedAt = time.Now().Add(-time.Minute)
	b.LastUsedAt = time.Now().Add(-2 * time.Minute)
	p := poolWith(3, a, b)

	// Least recently used goes first, then they alternate.
	first, err := p.Select("openai-custom", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "b", first.UUID)

	second, err := p.Select("openai-custom", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "a", second.UUID)

	third, err := p.Select("openai-custom", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "b", third.UUID)
}

func TestSelectSkipsDisabledAndUnsupported(t *testing.T) {
	a := newEntry("openai-custom", "a")
	a.IsDisabled = true
	b := newEntry("openai-custom", "b")
	b.NotSupportedModels = []string{"gpt-4o"}
	c := newEntry("openai-custom", "c")
	p := poolWith(3, a, b, c)

	for i := 0; i < 3; i++ {
		got, err := p.Select("openai-custom", "gpt-4o")
		require.NoError(t, err)
		assert.Equal(t, "c", got.UUID)
	}

	// The exclusion is per model, not per entry.
	got, err := p.Select("openai-custom", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "b", got.UUID)
}

func TestSelectReturnsSnapshot(t *testing.T) {
	a := newEntry("openai-custom", "a")
	p := poolWith(3, a)

	got, err := p.Select("openai-custom", "gpt-4o")
	require.NoError(t, err)
	got.UsageCount = 999

	entries := p.Entries("openai-custom")
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].UsageCount)
}

func TestMarkUnhealthyCutoff(t *testing.T) {
	a := newEntry("claude-custom", "a")
	b := newEntry("claude-custom", "b")
	p := poolWith(3, a, b)

	// Two errors keep the entry in rotation.
	p.MarkUnhealthy("claude-custom", "a", "boom")
	p.MarkUnhealthy("claude-custom", "a", "boom")
	entries := p.Entries("claude-custom")
	assert.True(t, entries[0].IsHealthy)
	assert.Equal(t, 2, entries[0].ErrorCount)

	// The third crosses maxErrorCount.
	p.MarkUnhealthy("claude-custom", "a", "boom")
	entries = p.Entries("claude-custom")
	assert.False(t, entries[0].IsHealthy)
	require.NotNil(t, entries[0].LastError)
	assert.Equal(t, "boom", entries[0].LastError.Message)

	// Selection now only sees b.
	got, err := p.Select("claude-custom", "claude-sonnet-4-5")
	require.NoError(t, err)
	assert.Equal(t, "b", got.UUID)
}

func TestSelectHalfOpen(t *testing.T) {
	a := newEntry("claude-custom", "a")
	b := newEntry("claude-custom", "b")
	p := poolWith(1, a, b)

	p.MarkUnhealthy("claude-custom", "a", "first down")
	time.Sleep(5 * time.Millisecond)
	p.MarkUnhealthy("claude-custom", "b", "second down")

	// Everyone unhealthy: the least-recently-errored entry gets the attempt.
	got, err := p.Select("claude-custom", "claude-sonnet-4-5")
	require.NoError(t, err)
	assert.Equal(t, "a", got.UUID)
}

func TestSelectNoProvider(t *testing.T) {
	p := New(3)
	_, err := p.Select("openai-custom", "gpt-4o")
	assert.ErrorIs(t, err, ErrNoHealthyProvider)

	a := newEntry("openai-custom", "a")
	a.IsDisabled = true
	p = poolWith(3, a)
	_, err = p.Select("openai-custom", "gpt-4o")
	assert.ErrorIs(t, err, ErrNoHealthyProvider)
}

func TestResetHealth(t *testing.T) {
	a := newEntry("claude-custom", "a")
	p := poolWith(1, a)
	p.MarkUnhealthy("claude-custom", "a", "down")
	require.False(t, p.Entries("claude-custom")[0].IsHealthy)

	p.ResetHealth("claude-custom")
	e := p.Entries("claude-custom")[0]
	assert.True(t, e.IsHealthy)
	assert.Equal(t, 0, e.ErrorCount)
	assert.Nil(t, e.LastError)
}

func TestReplacePreservesCounters(t *testing.T) {
	a := newEntry("openai-custom", "a")
	p := poolWith(3, a)

	_, err := p.Select("openai-custom", "gpt-4o")
	require.NoError(t, err)
	p.MarkUnhealthy("openai-custom", "a", "flaky")

	// Reload the same uuid plus a new sibling from the file.
	p.Replace(map[string][]*ProviderEntry{
		"openai-custom": {newEntry("openai-custom", "a"), newEntry("openai-custom", "fresh")},
	})

	entries := p.Entries("openai-custom")
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].UsageCount)
	assert.Equal(t, 1, entries[0].ErrorCount)
	require.NotNil(t, entries[0].LastError)
	assert.Equal(t, int64(0), entries[1].UsageCount)
}

func TestLoadFileNormalizesHealth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provider_pools.json")
	doc := `{
	  "openai-custom": [
	    {"uuid": "a", "credentials": {"apiKey": "sk-test"}},
	    {"uuid": "b", "credentials": {"apiKey": "sk-test"}, "isHealthy": false, "errorCount": 5,
	     "lastError": {"message": "down", "at": "2026-01-02T03:04:05Z"}}
	  ]
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	entries := loaded["openai-custom"]
	require.Len(t, entries, 2)

	// Hand-written entries without error history come up healthy.
	assert.Equal(t, "openai-custom", entries[0].Kind)
	assert.True(t, entries[0].IsHealthy)
	// Recorded failures are respected.
	assert.False(t, entries[1].IsHealthy)
}

func TestLoadFileMissing(t *testing.T) {
	loaded, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSaveFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provider_pools.json")

	a := newEntry("gemini-cli-oauth", "a")
	p := poolWith(3, a)
	require.NoError(t, p.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded["gemini-cli-oauth"], 1)
	assert.Equal(t, "a", loaded["gemini-cli-oauth"][0].UUID)
}

func TestHealthSummary(t *testing.T) {
	a := newEntry("claude-custom", "a")
	b := newEntry("claude-custom", "b")
	b.IsDisabled = true
	p := poolWith(1, a, b)
	p.MarkUnhealthy("claude-custom", "a", "down")

	health := p.Health()
	require.Len(t, health, 1)
	assert.Equal(t, "claude-custom", health[0].Kind)
	assert.Equal(t, 2, health[0].Total)
	assert.Equal(t, 1, health[0].Healthy)
	assert.Equal(t, 1, health[0].Disabled)
	assert.Equal(t, "anthropic", health[0].Protocols)
}
