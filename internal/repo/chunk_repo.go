package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/soalgen/soalgen/internal/model"
	"github.com/soalgen/soalgen/internal/pkg/dbutil"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM chunks`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ExistingIDs reports which of the given ids are already indexed, in one
// round trip.
func (r *ChunkRepo) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if len(ids) == 0 {
		return map[string]struct{}{}, nil
	}
	const query = `SELECT id FROM chunks WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	existing := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = struct{}{}
	}
	return existing, rows.Err()
}

func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []model.DocumentChunk, embeddings [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	const query = `
		INSERT INTO chunks (id, source, page, seq, content, embedding, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().Unix()
	for i, chunk := range chunks {
		var page sql.NullInt64
		if chunk.Page != nil {
			page = sql.NullInt64{Int64: int64(*chunk.Page), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query,
			chunk.ID,
			chunk.Source,
			page,
			chunk.Seq,
			chunk.Text,
			pgvector.NewVector(embeddings[i]),
			now,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SearchTopK runs a cosine nearest-neighbor search. The returned score is
// 1 - cosine distance, so higher means more similar.
func (r *ChunkRepo) SearchTopK(ctx context.Context, embedding []float32, k int) ([]model.ScoredChunk, error) {
	const query = `
		SELECT id, source, page, seq, content, 1 - (embedding <=> $1) AS score
		FROM chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ScoredChunk
	for rows.Next() {
		var item model.ScoredChunk
		var page sql.NullInt64
		if err := rows.Scan(&item.Chunk.ID, &item.Chunk.Source, &page, &item.Chunk.Seq, &item.Chunk.Text, &item.Score); err != nil {
			return nil, err
		}
		if page.Valid {
			p := int(page.Int64)
			item.Chunk.Page = &p
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (r *ChunkRepo) ListSources(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT source FROM chunks ORDER BY source`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sources := make([]string, 0)
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (r *ChunkRepo) DeleteBySource(ctx context.Context, source string) (int64, error) {
	where := map[string]interface{}{
		"source": source,
	}
	sqlStr, args, err := builder.BuildDelete("chunks", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ChunkRepo) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `TRUNCATE chunks`)
	return err
}
