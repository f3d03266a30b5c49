package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soalgen/soalgen/internal/model"
)

type fakeStore struct {
	chunks     map[string]model.DocumentChunk
	results    []model.ScoredChunk
	searchErr  error
	countErr   error
	lastSearch int
	inserts    [][]model.DocumentChunk
}

func newFakeStore() *fakeStore {
	return &fakeStore{chunks: map[string]model.DocumentChunk{}}
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	count := len(s.chunks)
	if count == 0 {
		count = len(s.results)
	}
	return count, nil
}

func (s *fakeStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	existing := map[string]struct{}{}
	for _, id := range ids {
		if _, ok := s.chunks[id]; ok {
			existing[id] = struct{}{}
		}
	}
	return existing, nil
}

func (s *fakeStore) InsertBatch(ctx context.Context, chunks []model.DocumentChunk, embeddings [][]float32) error {
	s.inserts = append(s.inserts, chunks)
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

func (s *fakeStore) SearchTopK(ctx context.Context, embedding []float32, k int) ([]model.ScoredChunk, error) {
	s.lastSearch = k
	if s.searchErr != nil {
		err := s.searchErr
		s.searchErr = nil
		return nil, err
	}
	if k > len(s.results) {
		k = len(s.results)
	}
	return s.results[:k], nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

func (e *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

func newTestGateway(store *fakeStore, batchSize int) *Gateway {
	return NewGateway(store, &fakeEmbedder{}, NewReranker(0.7, 0.3), batchSize)
}

func TestGatewayCount_SwallowsStorageError(t *testing.T) {
	store := newFakeStore()
	store.countErr = fmt.Errorf("connection refused")
	gw := newTestGateway(store, 10)
	require.Zero(t, gw.Count(context.Background()))
}

func TestGatewayInsertIfAbsent_SkipsIndexedChunks(t *testing.T) {
	store := newFakeStore()
	store.chunks["bio.pdf:1:0"] = model.DocumentChunk{ID: "bio.pdf:1:0"}
	gw := newTestGateway(store, 10)

	inserted, err := gw.InsertIfAbsent(context.Background(), []model.DocumentChunk{
		{ID: "bio.pdf:1:0", Text: "lama"},
		{ID: "bio.pdf:1:1", Text: "baru"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	require.Len(t, store.inserts, 1)
	require.Equal(t, "bio.pdf:1:1", store.inserts[0][0].ID)
}

func TestGatewayInsertIfAbsent_Idempotent(t *testing.T) {
	store := newFakeStore()
	gw := newTestGateway(store, 10)
	chunks := []model.DocumentChunk{
		{ID: "bio.pdf:1:0", Text: "a"},
		{ID: "bio.pdf:1:1", Text: "b"},
	}

	inserted, err := gw.InsertIfAbsent(context.Background(), chunks)
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	inserted, err = gw.InsertIfAbsent(context.Background(), chunks)
	require.NoError(t, err)
	require.Zero(t, inserted)
	require.Len(t, store.chunks, 2)
}

func TestGatewayInsertIfAbsent_BatchesInserts(t *testing.T) {
	store := newFakeStore()
	gw := newTestGateway(store, 2)
	chunks := make([]model.DocumentChunk, 5)
	for i := range chunks {
		chunks[i] = model.DocumentChunk{ID: fmt.Sprintf("doc.txt:0:%d", i), Text: "x"}
	}

	inserted, err := gw.InsertIfAbsent(context.Background(), chunks)
	require.NoError(t, err)
	require.Equal(t, 5, inserted)
	require.Len(t, store.inserts, 3)
}

func TestGatewaySearch_EmptyStoreReturnsNothing(t *testing.T) {
	gw := newTestGateway(newFakeStore(), 10)
	results, keyword := gw.Search(context.Background(), "apa itu sel", 5, nil)
	require.Empty(t, results)
	require.Equal(t, "apa itu sel", keyword)
}

func TestGatewaySearch_OverFetchesAndTruncates(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 20; i++ {
		store.results = append(store.results, model.ScoredChunk{
			Chunk: model.DocumentChunk{ID: fmt.Sprintf("c%d", i), Source: "bio.pdf", Text: "sel"},
			Score: 0.9,
		})
	}
	gw := newTestGateway(store, 10)

	results, _ := gw.Search(context.Background(), "apa itu sel pada tumbuhan", 3, nil)
	require.Len(t, results, 3)
	require.Equal(t, 9, store.lastSearch)
}

func TestGatewaySearch_SourceFilterDoesNotWidenScope(t *testing.T) {
	store := newFakeStore()
	store.results = []model.ScoredChunk{
		{Chunk: model.DocumentChunk{ID: "m1", Source: "math.pdf", Text: "aljabar"}, Score: 0.9},
	}
	gw := newTestGateway(store, 10)

	results, _ := gw.Search(context.Background(), "apa itu sel", 5, []string{"bio.pdf"})
	require.Empty(t, results)
}

func TestGatewaySearch_SourceFilterKeepsSelectedOnly(t *testing.T) {
	store := newFakeStore()
	store.results = []model.ScoredChunk{
		{Chunk: model.DocumentChunk{ID: "m1", Source: "/data/math.pdf", Text: "aljabar"}, Score: 0.95},
		{Chunk: model.DocumentChunk{ID: "b1", Source: "/data/bio.pdf", Text: "sel"}, Score: 0.90},
	}
	gw := newTestGateway(store, 10)

	results, _ := gw.Search(context.Background(), "apa itu sel", 5, []string{"bio.pdf"})
	require.Len(t, results, 1)
	require.Equal(t, "b1", results[0].Chunk.ID)
}

func TestGatewaySearch_FallsBackToSingleNearestOnSearchError(t *testing.T) {
	store := newFakeStore()
	store.results = []model.ScoredChunk{
		{Chunk: model.DocumentChunk{ID: "b1", Source: "bio.pdf", Text: "sel"}, Score: 0.9},
	}
	store.searchErr = fmt.Errorf("index unavailable")
	gw := newTestGateway(store, 10)

	results, _ := gw.Search(context.Background(), "apa itu sel", 5, nil)
	require.Len(t, results, 1)
	require.Equal(t, 1, store.lastSearch)
}
