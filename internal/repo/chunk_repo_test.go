package repo_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soalgen/soalgen/internal/model"
	"github.com/soalgen/soalgen/internal/repo"
	"github.com/soalgen/soalgen/test/testutil"
)

func testEmbedding(first float32) []float32 {
	embedding := make([]float32, 768)
	embedding[0] = first
	embedding[1] = 1
	return embedding
}

func seedChunks(t *testing.T, db *sql.DB) *repo.ChunkRepo {
	t.Helper()
	chunks := repo.NewChunkRepo(db)
	require.NoError(t, chunks.Reset(context.Background()))

	page := 1
	batch := []model.DocumentChunk{
		{ID: "bio.pdf:1:0", Source: "bio.pdf", Page: &page, Seq: 0, Text: "sel adalah unit terkecil"},
		{ID: "bio.pdf:1:1", Source: "bio.pdf", Page: &page, Seq: 1, Text: "jaringan tersusun dari sel"},
		{ID: "math.pdf:1:0", Source: "math.pdf", Page: &page, Seq: 0, Text: "aljabar linear"},
	}
	embeddings := [][]float32{testEmbedding(1), testEmbedding(0.9), testEmbedding(-1)}
	require.NoError(t, chunks.InsertBatch(context.Background(), batch, embeddings))
	return chunks
}

func TestChunkRepoInsertAndCount(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	chunks := seedChunks(t, db)

	count, err := chunks.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Conflicting ids are ignored, not duplicated.
	page := 1
	err = chunks.InsertBatch(context.Background(),
		[]model.DocumentChunk{{ID: "bio.pdf:1:0", Source: "bio.pdf", Page: &page, Text: "duplikat"}},
		[][]float32{testEmbedding(0.5)},
	)
	require.NoError(t, err)
	count, err = chunks.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestChunkRepoExistingIDs(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	chunks := seedChunks(t, db)

	existing, err := chunks.ExistingIDs(context.Background(), []string{"bio.pdf:1:0", "ghost:0:0"})
	require.NoError(t, err)
	require.Contains(t, existing, "bio.pdf:1:0")
	require.NotContains(t, existing, "ghost:0:0")
}

func TestChunkRepoSearchTopK_OrdersBySimilarity(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	chunks := seedChunks(t, db)

	results, err := chunks.SearchTopK(context.Background(), testEmbedding(1), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "bio.pdf:1:0", results[0].Chunk.ID)
	require.Greater(t, results[0].Score, results[1].Score)
	require.NotNil(t, results[0].Chunk.Page)
	require.Equal(t, 1, *results[0].Chunk.Page)
}

func TestChunkRepoListSourcesAndDelete(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	chunks := seedChunks(t, db)

	sources, err := chunks.ListSources(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"bio.pdf", "math.pdf"}, sources)

	deleted, err := chunks.DeleteBySource(context.Background(), "bio.pdf")
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	sources, err = chunks.ListSources(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"math.pdf"}, sources)
}
