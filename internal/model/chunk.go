package model

// DocumentChunk is the unit of indexing and retrieval. The ID is derived
// from (source, page, seq) so re-ingesting the same material produces the
// same ids and duplicates are skipped.
type DocumentChunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
	Page   *int   `json:"page,omitempty"`
	Seq    int    `json:"seq"`
}

// ScoredChunk pairs a chunk with its relevance score. Scores follow the
// higher-is-better convention: raw cosine similarity out of the store,
// possibly combined with a lexical keyword score after reranking.
type ScoredChunk struct {
	Chunk DocumentChunk
	Score float64
}
