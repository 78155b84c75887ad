package retrieval

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRetriever records how many times the backend is consulted.
type countingRetriever struct {
	calls atomic.Int64
}

func (c *countingRetriever) Retrieve(_ context.Context, query string, _ int) ([]Snippet, error) {
	c.calls.Add(1)
	return []Snippet{{Text: "결과: " + query, Score: 0.5, Source: "backend"}}, nil
}

func TestCachingRetrieverServesRepeatsFromCache(t *testing.T) {
	backend := &countingRetriever{}
	c, err := NewCachingRetriever(backend, 8, time.Minute, nil)
	require.NoError(t, err)

	first, err := c.Retrieve(context.Background(), "김치찌개", 3)
	require.NoError(t, err)
	second, err := c.Retrieve(context.Background(), "김치찌개", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), backend.calls.Load())

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestCachingRetrieverKeySpansTopK(t *testing.T) {
	backend := &countingRetriever{}
	c, err := NewCachingRetriever(backend, 8, time.Minute, nil)
	require.NoError(t, err)

	_, err = c.Retrieve(context.Background(), "파스타", 3)
	require.NoError(t, err)
	_, err = c.Retrieve(context.Background(), "파스타", 5)
	require.NoError(t, err)

	assert.Equal(t, int64(2), backend.calls.Load())
}

func TestCachingRetrieverExpiresEntries(t *testing.T) {
	backend := &countingRetriever{}
	c, err := NewCachingRetriever(backend, 8, 10*time.Millisecond, nil)
	require.NoError(t, err)

	_, err = c.Retrieve(context.Background(), "스테이크", 3)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = c.Retrieve(context.Background(), "스테이크", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), backend.calls.Load())
}

func TestCachingRetrieverEvictsAtCapacity(t *testing.T) {
	backend := &countingRetriever{}
	c, err := NewCachingRetriever(backend, 2, time.Minute, nil)
	require.NoError(t, err)

	for _, q := range []string{"하나", "둘", "셋"} {
		_, err = c.Retrieve(context.Background(), q, 3)
		require.NoError(t, err)
	}

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, uint64(1), stats.Evictions)
}

func TestCachingRetrieverRejectsBadConfig(t *testing.T) {
	_, err := NewCachingRetriever(&countingRetriever{}, 0, time.Minute, nil)
	require.Error(t, err)

	_, err = NewCachingRetriever(&countingRetriever{}, 8, 0, nil)
	require.Error(t, err)
}

func TestCachingRetrieverClear(t *testing.T) {
	backend := &countingRetriever{}
	c, err := NewCachingRetriever(backend, 8, time.Minute, nil)
	require.NoError(t, err)

	_, err = c.Retrieve(context.Background(), "불고기", 3)
	require.NoError(t, err)
	c.Clear()
	_, err = c.Retrieve(context.Background(), "불고기", 3)
	require.NoError(t, err)

	assert.Equal(t, int64(2), backend.calls.Load())
}
