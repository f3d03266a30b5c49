package rag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soalgen/soalgen/internal/model"
)

func TestAssignChunkIDs_SequencePerSourceAndPage(t *testing.T) {
	page1 := 1
	page2 := 2
	chunks := AssignChunkIDs([]model.DocumentChunk{
		{Source: "bio.pdf", Page: &page1, Text: "a"},
		{Source: "bio.pdf", Page: &page1, Text: "b"},
		{Source: "bio.pdf", Page: &page2, Text: "c"},
		{Source: "math.pdf", Page: &page1, Text: "d"},
	})

	require.Equal(t, "bio.pdf:1:0", chunks[0].ID)
	require.Equal(t, "bio.pdf:1:1", chunks[1].ID)
	require.Equal(t, "bio.pdf:2:0", chunks[2].ID)
	require.Equal(t, "math.pdf:1:0", chunks[3].ID)
	require.Equal(t, 1, chunks[1].Seq)
	require.Equal(t, 0, chunks[2].Seq)
}

func TestAssignChunkIDs_NilPageUsesZeroLabel(t *testing.T) {
	chunks := AssignChunkIDs([]model.DocumentChunk{
		{Source: "notes.txt", Text: "a"},
		{Source: "notes.txt", Text: "b"},
	})
	require.Equal(t, "notes.txt:0:0", chunks[0].ID)
	require.Equal(t, "notes.txt:0:1", chunks[1].ID)
}

func TestAssignChunkIDs_Deterministic(t *testing.T) {
	page := 3
	input := []model.DocumentChunk{
		{Source: "bio.pdf", Page: &page, Text: "a"},
		{Source: "bio.pdf", Page: &page, Text: "b"},
	}
	first := AssignChunkIDs(input)
	second := AssignChunkIDs(input)
	require.Equal(t, first, second)
}
