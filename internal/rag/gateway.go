package rag

import (
	"context"
	"path/filepath"

	"github.com/soalgen/soalgen/internal/ai"
	"github.com/soalgen/soalgen/internal/model"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"

	overFetchFactor = 3
)

// Store is the chunk persistence surface the gateway needs. *repo.ChunkRepo
// satisfies it.
type Store interface {
	Count(ctx context.Context) (int, error)
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, chunks []model.DocumentChunk, embeddings [][]float32) error
	SearchTopK(ctx context.Context, embedding []float32, k int) ([]model.ScoredChunk, error)
}

// Gateway ties the chunk store, the embedder and the reranker into the
// retrieval pipeline.
type Gateway struct {
	store           Store
	embedder        ai.IEmbedder
	reranker        *Reranker
	insertBatchSize int
}

func NewGateway(store Store, embedder ai.IEmbedder, reranker *Reranker, insertBatchSize int) *Gateway {
	if insertBatchSize <= 0 {
		insertBatchSize = 100
	}
	return &Gateway{
		store:           store,
		embedder:        embedder,
		reranker:        reranker,
		insertBatchSize: insertBatchSize,
	}
}

// Count reports the number of indexed chunks. Storage errors read as an
// empty index so retrieval degrades to the context-free path instead of
// failing the request.
func (g *Gateway) Count(ctx context.Context) int {
	count, err := g.store.Count(ctx)
	if err != nil {
		logutil.GetLogger(ctx).Error("count chunks failed", zap.Error(err))
		return 0
	}
	return count
}

// InsertIfAbsent embeds and stores the chunks that are not yet indexed,
// in fixed-size batches. Returns the number of chunks actually inserted.
func (g *Gateway) InsertIfAbsent(ctx context.Context, chunks []model.DocumentChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		ids = append(ids, chunk.ID)
	}
	existing, err := g.store.ExistingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	pending := make([]model.DocumentChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if _, ok := existing[chunk.ID]; ok {
			continue
		}
		pending = append(pending, chunk)
	}
	inserted := 0
	for start := 0; start < len(pending); start += g.insertBatchSize {
		end := start + g.insertBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]
		embeddings := make([][]float32, 0, len(batch))
		for _, chunk := range batch {
			embedding, err := g.embedder.Embed(ctx, chunk.Text, taskTypeDocument)
			if err != nil {
				return inserted, err
			}
			embeddings = append(embeddings, embedding)
		}
		if err := g.store.InsertBatch(ctx, batch, embeddings); err != nil {
			return inserted, err
		}
		inserted += len(batch)
	}
	return inserted, nil
}

// Search retrieves the chunks most relevant to the query. It over-fetches
// candidates, optionally restricts them to the selected documents, then
// reranks by combined vector and keyword score. It never fails: any error
// along the way reads as no results, which callers treat as a signal to
// fall back to context-free generation. The extracted keyword is returned
// so it can steer the generation prompt.
func (g *Gateway) Search(ctx context.Context, query string, topK int, selectedDocuments []string) ([]model.ScoredChunk, string) {
	logger := logutil.GetLogger(ctx)
	keyword := ExtractPrimaryKeyword(query)
	total := g.Count(ctx)
	if total == 0 {
		return nil, keyword
	}
	embedding, err := g.embedder.Embed(ctx, query, taskTypeQuery)
	if err != nil {
		logger.Error("embed query failed", zap.Error(err))
		return nil, keyword
	}
	fetch := topK * overFetchFactor
	if len(selectedDocuments) > 0 {
		// Source filtering happens after the vector search, so pull the
		// whole index to keep enough candidates from the chosen files.
		fetch = total
	}
	if fetch > total {
		fetch = total
	}
	candidates, err := g.store.SearchTopK(ctx, embedding, fetch)
	if err != nil {
		// Last resort on a broken search: ask for the single nearest
		// chunk before giving up entirely.
		logger.Error("vector search failed", zap.Error(err))
		fallback, err := g.store.SearchTopK(ctx, embedding, 1)
		if err != nil {
			logger.Error("fallback search failed", zap.Error(err))
			return nil, keyword
		}
		return fallback, keyword
	}
	// An empty set after filtering is a real answer: the chosen documents
	// have nothing relevant, and the scope must not silently widen.
	candidates = filterBySource(candidates, selectedDocuments)
	results := g.reranker.Rerank(candidates, keyword)
	if len(results) > topK {
		results = results[:topK]
	}
	return results, keyword
}

func filterBySource(candidates []model.ScoredChunk, selectedDocuments []string) []model.ScoredChunk {
	if len(selectedDocuments) == 0 {
		return candidates
	}
	wanted := make(map[string]struct{}, len(selectedDocuments))
	for _, doc := range selectedDocuments {
		wanted[filepath.Base(doc)] = struct{}{}
	}
	filtered := make([]model.ScoredChunk, 0, len(candidates))
	for _, candidate := range candidates {
		if _, ok := wanted[filepath.Base(candidate.Chunk.Source)]; ok {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
