package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/soalgen/soalgen/internal/ai"
	"github.com/soalgen/soalgen/internal/config"
	"github.com/soalgen/soalgen/internal/model"
	"github.com/soalgen/soalgen/internal/rag"
	"github.com/soalgen/soalgen/internal/service"
)

type emptyStore struct{}

func (emptyStore) Count(ctx context.Context) (int, error) { return 0, nil }

func (emptyStore) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

func (emptyStore) InsertBatch(ctx context.Context, chunks []model.DocumentChunk, embeddings [][]float32) error {
	return nil
}

func (emptyStore) SearchTopK(ctx context.Context, embedding []float32, k int) ([]model.ScoredChunk, error) {
	return nil, nil
}

type staticEmbedder struct{}

func (staticEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return []float32{1}, nil
}

func (staticEmbedder) ModelName() string { return "static" }

type staticGenerator struct{}

func (staticGenerator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	return `{"questions":[{"question":"Apa itu sel?","answer":"Unit terkecil."}],"metadata":{"count":1,"status":"success"}}`, nil
}

func newGenerateTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	ragCfg := config.RAGConfig{
		TopK:                10,
		SimilarityThreshold: 0.65,
		VectorWeight:        0.7,
		KeywordWeight:       0.3,
		InsertBatchSize:     100,
	}
	gateway := rag.NewGateway(emptyStore{}, staticEmbedder{}, rag.NewReranker(0.7, 0.3), 100)
	llm := rag.NewClient(staticGenerator{}, 3, time.Minute)
	svc := service.NewGenerateService(gateway, llm, ragCfg)

	router := gin.New()
	api := router.Group("/api/v1")
	RegisterRoutes(api, RouterDeps{
		Generate: NewGenerateHandler(svc),
		Database: NewDatabaseHandler(nil, nil, 32),
	})
	return router
}

func TestGenerateEndpoint_ReturnsResultAndMethod(t *testing.T) {
	router := newGenerateTestRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"query_text":    "apa itu sel",
		"num_questions": 1,
		"use_rag":       true,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/questions/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	response := w.Body.String()
	require.Contains(t, response, "Apa itu sel?")
	// Empty index means the request was answered without grounding.
	require.Contains(t, response, `"method":"llm"`)
	require.Contains(t, response, `"status":"success"`)
}

func TestGenerateEndpoint_MissingQueryRejected(t *testing.T) {
	router := newGenerateTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/questions/generate", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Contains(t, w.Body.String(), "query_text is required")
}

func TestGenerateEndpoint_MalformedBodyRejected(t *testing.T) {
	router := newGenerateTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/questions/generate", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Contains(t, w.Body.String(), "invalid request body")
}
