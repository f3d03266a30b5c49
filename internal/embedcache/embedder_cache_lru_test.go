package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	e.calls++
	return []float32{float32(e.calls), 2, 3}, nil
}

func (e *countingEmbedder) ModelName() string {
	return "test-embed"
}

func TestLruEmbedder_CachesByTextAndTaskType(t *testing.T) {
	inner := &countingEmbedder{}
	embedder := WrapLruCacheToEmbedder(inner, 10, time.Minute)

	first, err := embedder.Embed(context.Background(), "sel", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	second, err := embedder.Embed(context.Background(), "sel", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)

	require.Equal(t, 1, inner.calls)
	require.Equal(t, first, second)

	_, err = embedder.Embed(context.Background(), "sel", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)

	_, err = embedder.Embed(context.Background(), "jaringan", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 3, inner.calls)
}

func TestLruEmbedder_ReturnsCopies(t *testing.T) {
	inner := &countingEmbedder{}
	embedder := WrapLruCacheToEmbedder(inner, 10, time.Minute)

	first, err := embedder.Embed(context.Background(), "sel", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	first[0] = 999

	second, err := embedder.Embed(context.Background(), "sel", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, float32(1), second[0])
}

func TestWrapLruCacheToEmbedder_DisabledPassthrough(t *testing.T) {
	inner := &countingEmbedder{}
	require.Equal(t, inner, WrapLruCacheToEmbedder(inner, 0, time.Minute))
	require.Equal(t, inner, WrapLruCacheToEmbedder(inner, 10, 0))
}
