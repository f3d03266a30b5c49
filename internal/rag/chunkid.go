package rag

import (
	"fmt"

	"github.com/soalgen/soalgen/internal/model"
)

// AssignChunkIDs gives each chunk a deterministic "source:page:seq" id.
// The sequence counter restarts whenever the (source, page) pair changes
// from the previous chunk, so re-splitting the same document always
// produces the same ids and re-ingestion stays idempotent.
func AssignChunkIDs(chunks []model.DocumentChunk) []model.DocumentChunk {
	out := make([]model.DocumentChunk, len(chunks))
	seq := 0
	for i, chunk := range chunks {
		if i > 0 && !samePlacement(chunks[i-1], chunk) {
			seq = 0
		}
		chunk.Seq = seq
		chunk.ID = fmt.Sprintf("%s:%s:%d", chunk.Source, pageLabel(chunk.Page), seq)
		out[i] = chunk
		seq++
	}
	return out
}

func samePlacement(a, b model.DocumentChunk) bool {
	if a.Source != b.Source {
		return false
	}
	if (a.Page == nil) != (b.Page == nil) {
		return false
	}
	return a.Page == nil || *a.Page == *b.Page
}

func pageLabel(page *int) string {
	if page == nil {
		return "0"
	}
	return fmt.Sprintf("%d", *page)
}
