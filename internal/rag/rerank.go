package rag

import (
	"sort"

	"github.com/soalgen/soalgen/internal/model"
)

// Reranker reorders vector search results by blending the similarity score
// with a lexical keyword score. Pure vector similarity can surface chunks
// that are topically adjacent yet never mention the query's focal term;
// the lexical component biases toward chunks that literally discuss it.
type Reranker struct {
	VectorWeight  float64
	KeywordWeight float64
}

func NewReranker(vectorWeight, keywordWeight float64) *Reranker {
	return &Reranker{VectorWeight: vectorWeight, KeywordWeight: keywordWeight}
}

// Rerank returns a new slice sorted by combined score, descending. The sort
// is stable so equal scores keep their retrieval order.
func (r *Reranker) Rerank(results []model.ScoredChunk, keyword string) []model.ScoredChunk {
	if len(results) == 0 || keyword == "" {
		return results
	}
	reranked := make([]model.ScoredChunk, len(results))
	for i, item := range results {
		lexical := KeywordMatchScore(item.Chunk.Text, keyword)
		reranked[i] = model.ScoredChunk{
			Chunk: item.Chunk,
			Score: r.VectorWeight*item.Score + r.KeywordWeight*lexical,
		}
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	return reranked
}
