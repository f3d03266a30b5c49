package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/soalgen/soalgen/internal/filestore"
	"github.com/soalgen/soalgen/internal/pkg/errcode"
	"github.com/soalgen/soalgen/internal/pkg/response"
	"github.com/soalgen/soalgen/internal/service"
)

// DatabaseHandler serves the document catalog endpoints: listing,
// ingestion, upload and deletion.
type DatabaseHandler struct {
	ingest        *service.IngestService
	uploads       filestore.Store
	maxUploadSize int64
}

func NewDatabaseHandler(ingest *service.IngestService, uploads filestore.Store, maxFileSizeMB int) *DatabaseHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 32
	}
	return &DatabaseHandler{
		ingest:        ingest,
		uploads:       uploads,
		maxUploadSize: int64(maxFileSizeMB) << 20,
	}
}

func (h *DatabaseHandler) ListDocuments(c *gin.Context) {
	sources, err := h.ingest.ListSources(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"document_sources": sources})
}

func (h *DatabaseHandler) DocumentCount(c *gin.Context) {
	count, err := h.ingest.DocumentCount(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}

type ingestRequest struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// IngestText indexes a body of raw text posted directly, without going
// through the upload flow.
func (h *DatabaseHandler) IngestText(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Text) == "" {
		response.Error(c, errcode.ErrInvalid, "source and text are required")
		return
	}
	inserted, total, err := h.ingest.IngestText(c.Request.Context(), filepath.Base(req.Source), req.Text)
	if err != nil {
		response.Error(c, errcode.ErrIngestFailed, "failed to ingest document")
		return
	}
	response.Success(c, gin.H{
		"source":   filepath.Base(req.Source),
		"chunks":   total,
		"inserted": inserted,
	})
}

type uploadedFile struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// UploadDocuments accepts multipart uploads, stages them in the file
// store and indexes them in the background so large files do not hold
// the request open.
func (h *DatabaseHandler) UploadDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "multipart form is required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.Error(c, errcode.ErrInvalidFile, "at least one file is required")
		return
	}
	results := make([]uploadedFile, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file.Filename)
		if !service.IsSupportedUpload(name) {
			results = append(results, uploadedFile{Name: name, Status: "rejected", Reason: "unsupported file type"})
			continue
		}
		if file.Size > h.maxUploadSize {
			results = append(results, uploadedFile{Name: name, Status: "rejected", Reason: "file too large"})
			continue
		}
		opened, err := file.Open()
		if err != nil {
			results = append(results, uploadedFile{Name: name, Status: "rejected", Reason: "failed to open file"})
			continue
		}
		data, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			results = append(results, uploadedFile{Name: name, Status: "rejected", Reason: "failed to read file"})
			continue
		}
		key := buildUploadKey(name)
		// Processing runs from the in-memory payload, so the staged copy
		// only has to be writable. Write-only stores keep it as an archive.
		if err := h.uploads.Save(c.Request.Context(), key, &memoryFile{bytes.NewReader(data)}, int64(len(data))); err != nil {
			logutil.GetLogger(c.Request.Context()).Error("stage upload failed", zap.String("file", name), zap.Error(err))
			results = append(results, uploadedFile{Name: name, Status: "rejected", Reason: "failed to store file"})
			continue
		}
		go h.processUpload(key, name, data)
		results = append(results, uploadedFile{Name: name, Status: "processing"})
	}
	response.Success(c, gin.H{"files": results})
}

// processUpload runs after the HTTP response is sent, so it gets a fresh
// context instead of the request's.
func (h *DatabaseHandler) processUpload(key, name string, data []byte) {
	ctx := context.Background()
	logger := logutil.GetLogger(ctx).With(zap.String("file", name), zap.String("key", key))
	inserted, total, err := h.ingest.ProcessUpload(ctx, key, name, data)
	if err != nil {
		logger.Error("process upload failed", zap.Error(err))
		return
	}
	logger.Info("upload processed", zap.Int("chunks", total), zap.Int("inserted", inserted))
}

func (h *DatabaseHandler) DeleteSource(c *gin.Context) {
	name := c.Param("name")
	if strings.TrimSpace(name) == "" {
		response.Error(c, errcode.ErrInvalid, "source name is required")
		return
	}
	deleted, err := h.ingest.DeleteSource(c.Request.Context(), name)
	if err != nil {
		handleError(c, err)
		return
	}
	if deleted == 0 {
		response.Error(c, errcode.ErrNotFound, "source not found")
		return
	}
	response.Success(c, gin.H{"source": name, "deleted_chunks": deleted})
}

func (h *DatabaseHandler) Reset(c *gin.Context) {
	if err := h.ingest.Reset(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func buildUploadKey(filename string) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	ext := strings.ToLower(filepath.Ext(filename))
	return hex.EncodeToString(buf) + ext
}
