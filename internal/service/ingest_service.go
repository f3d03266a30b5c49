package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/soalgen/soalgen/internal/filestore"
	"github.com/soalgen/soalgen/internal/rag"
	"github.com/soalgen/soalgen/internal/splitter"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Catalog is the document bookkeeping surface of the chunk store.
// *repo.ChunkRepo satisfies it.
type Catalog interface {
	Count(ctx context.Context) (int, error)
	ListSources(ctx context.Context) ([]string, error)
	DeleteBySource(ctx context.Context, source string) (int64, error)
	Reset(ctx context.Context) error
}

// IngestService turns raw documents into indexed chunks and manages the
// document catalog.
type IngestService struct {
	gateway  *rag.Gateway
	catalog  Catalog
	splitter *splitter.Splitter
	uploads  filestore.Store
}

func NewIngestService(gateway *rag.Gateway, catalog Catalog, sp *splitter.Splitter, uploads filestore.Store) *IngestService {
	return &IngestService{gateway: gateway, catalog: catalog, splitter: sp, uploads: uploads}
}

// Ingest splits, ids, embeds and stores the pages of one document.
// Ingesting the same document twice is a no-op: chunk ids are
// deterministic and already indexed ids are skipped.
func (s *IngestService) Ingest(ctx context.Context, source string, pages []splitter.Page) (inserted int, total int, err error) {
	if strings.TrimSpace(source) == "" {
		return 0, 0, fmt.Errorf("document source name is required")
	}
	chunks := s.splitter.SplitPages(source, pages)
	if len(chunks) == 0 {
		return 0, 0, fmt.Errorf("document %s contains no text", source)
	}
	chunks = rag.AssignChunkIDs(chunks)
	inserted, err = s.gateway.InsertIfAbsent(ctx, chunks)
	if err != nil {
		return inserted, len(chunks), fmt.Errorf("index document %s: %w", source, err)
	}
	logutil.GetLogger(ctx).Info("document ingested",
		zap.String("source", source),
		zap.Int("chunks", len(chunks)),
		zap.Int("inserted", inserted),
	)
	return inserted, len(chunks), nil
}

// IngestText ingests a single body of plain text as one unpaged document.
func (s *IngestService) IngestText(ctx context.Context, source string, text string) (int, int, error) {
	return s.Ingest(ctx, source, []splitter.Page{{Text: text}})
}

// ProcessUpload extracts and ingests an uploaded document from its
// in-memory payload. Working from the payload instead of re-reading the
// staged copy keeps write-only stores usable for staging. The staged copy
// is removed once ingestion succeeds; stores that cannot delete keep it.
func (s *IngestService) ProcessUpload(ctx context.Context, key string, originalName string, data []byte) (int, int, error) {
	text, err := ExtractText(originalName, data)
	if err != nil {
		return 0, 0, err
	}
	inserted, total, err := s.IngestText(ctx, filepath.Base(originalName), text)
	if err != nil {
		return inserted, total, err
	}
	if err := s.uploads.Delete(ctx, key); err != nil {
		logutil.GetLogger(ctx).Warn("remove processed upload failed", zap.String("key", key), zap.Error(err))
	}
	return inserted, total, nil
}

// ExtractText converts an uploaded file body into plain text based on its
// extension. Markdown is flattened, plain text passes through.
func ExtractText(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return splitter.ExtractMarkdownText(string(data)), nil
	case ".txt", ".text":
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
	}
}

// IsSupportedUpload reports whether the file type can be ingested.
func IsSupportedUpload(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".txt", ".text":
		return true
	}
	return false
}

func (s *IngestService) DocumentCount(ctx context.Context) (int, error) {
	return s.catalog.Count(ctx)
}

func (s *IngestService) ListSources(ctx context.Context) ([]string, error) {
	return s.catalog.ListSources(ctx)
}

// DeleteSource removes every chunk of one document and reports how many
// chunks were dropped.
func (s *IngestService) DeleteSource(ctx context.Context, source string) (int64, error) {
	if strings.TrimSpace(source) == "" {
		return 0, fmt.Errorf("document source name is required")
	}
	return s.catalog.DeleteBySource(ctx, source)
}

// Reset drops the whole index.
func (s *IngestService) Reset(ctx context.Context) error {
	return s.catalog.Reset(ctx)
}
