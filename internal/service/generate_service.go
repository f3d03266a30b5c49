package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/soalgen/soalgen/internal/config"
	"github.com/soalgen/soalgen/internal/model"
	"github.com/soalgen/soalgen/internal/rag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	// MethodRAG marks results grounded in retrieved document context,
	// MethodLLM results generated from the query alone.
	MethodRAG = "rag"
	MethodLLM = "llm"

	contextSeparator = "\n\n---\n\n"

	defaultNumQuestions = 5
	maxNumQuestions     = 50
)

// GenerateService runs the question generation pipeline. It never returns
// a Go error to its callers: every failure mode collapses into an
// error-status result so the response shape stays uniform.
type GenerateService struct {
	gateway *rag.Gateway
	llm     *rag.Client
	ragCfg  config.RAGConfig
}

func NewGenerateService(gateway *rag.Gateway, llm *rag.Client, ragCfg config.RAGConfig) *GenerateService {
	return &GenerateService{gateway: gateway, llm: llm, ragCfg: ragCfg}
}

// Generate dispatches to grounded or context-free generation and reports
// which path actually produced the result. A grounded request silently
// downgrades to the context-free path when retrieval has nothing usable.
func (s *GenerateService) Generate(ctx context.Context, req model.GenerationRequest) (model.GenerationResult, string) {
	req.NumQuestions = clampQuestionCount(req.NumQuestions)
	if strings.TrimSpace(req.QueryText) == "" {
		return model.ErrorResult("query text is required"), MethodLLM
	}
	if req.UseRAG {
		return s.generateWithRAG(ctx, req)
	}
	return s.generateDirect(ctx, req), MethodLLM
}

func (s *GenerateService) generateWithRAG(ctx context.Context, req model.GenerationRequest) (model.GenerationResult, string) {
	logger := logutil.GetLogger(ctx)
	results, keyword := s.gateway.Search(ctx, req.QueryText, s.ragCfg.TopK, req.SelectedDocuments)
	admitted := admitChunks(results, s.ragCfg.SimilarityThreshold)
	if len(admitted) == 0 {
		logger.Info("no chunks above similarity threshold, falling back to direct generation",
			zap.String("keyword", keyword),
			zap.Int("candidates", len(results)),
			zap.Float64("threshold", s.ragCfg.SimilarityThreshold),
		)
		return s.generateDirect(ctx, req), MethodLLM
	}

	parts := make([]string, 0, len(admitted))
	for _, item := range admitted {
		parts = append(parts, item.Chunk.Text)
	}
	prompt := rag.BuildPrompt(req.NumQuestions, req.TargetOutcome, keyword, strings.Join(parts, contextSeparator))
	text, err := s.llm.GenerateText(ctx, prompt, req.NumQuestions)
	if err != nil {
		logger.Error("grounded generation failed", zap.Error(err))
		failed := model.ErrorResult(fmt.Sprintf("generation failed: %v", err))
		failed.Metadata.SelectedDocuments = req.SelectedDocuments
		return failed, MethodRAG
	}
	result := rag.ParseResponse(text)
	result.Metadata.SelectedDocuments = req.SelectedDocuments
	result.Metadata.SourcesUsed = distinctSources(admitted)

	s.logRetrievalQuality(ctx, keyword, result, admitted)
	return result, MethodRAG
}

// admitChunks keeps the candidates whose combined score strictly clears
// the threshold. Retrieval order is preserved.
func admitChunks(results []model.ScoredChunk, threshold float64) []model.ScoredChunk {
	admitted := make([]model.ScoredChunk, 0, len(results))
	for _, item := range results {
		if item.Score > threshold {
			admitted = append(admitted, item)
		}
	}
	return admitted
}

func (s *GenerateService) generateDirect(ctx context.Context, req model.GenerationRequest) model.GenerationResult {
	keyword := rag.ExtractPrimaryKeyword(req.QueryText)
	prompt := rag.BuildTopicPrompt(req.NumQuestions, req.TargetOutcome, keyword, req.QueryText)
	text, err := s.llm.GenerateText(ctx, prompt, req.NumQuestions)
	if err != nil {
		logutil.GetLogger(ctx).Error("direct generation failed", zap.Error(err))
		return model.ErrorResult(fmt.Sprintf("generation failed: %v", err))
	}
	return rag.ParseResponse(text)
}

// logRetrievalQuality emits a best-effort telemetry line about how well
// the generated questions stay on the query's focal term. It never
// affects the result.
func (s *GenerateService) logRetrievalQuality(ctx context.Context, keyword string, result model.GenerationResult, admitted []model.ScoredChunk) {
	totalScore := 0.0
	for _, item := range admitted {
		totalScore += item.Score
	}
	avgSimilarity := 0.0
	if len(admitted) > 0 {
		avgSimilarity = totalScore / float64(len(admitted))
	}
	logutil.GetLogger(ctx).Info("retrieval quality",
		zap.String("keyword", keyword),
		zap.Int("context_chunks", len(admitted)),
		zap.Float64("keyword_coverage", questionKeywordCoverage(result.Questions, keyword)),
		zap.Float64("avg_similarity", avgSimilarity),
		zap.String("status", result.Metadata.Status),
	)
}

// questionKeywordCoverage is the fraction of generated questions that
// literally mention the keyword.
func questionKeywordCoverage(questions []model.QA, keyword string) float64 {
	if len(questions) == 0 || keyword == "" {
		return 0
	}
	hits := 0
	lower := strings.ToLower(keyword)
	for _, qa := range questions {
		if strings.Contains(strings.ToLower(qa.Question), lower) {
			hits++
		}
	}
	return float64(hits) / float64(len(questions))
}

func distinctSources(chunks []model.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, item := range chunks {
		name := filepath.Base(item.Chunk.Source)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return sources
}

func clampQuestionCount(n int) int {
	if n <= 0 {
		return defaultNumQuestions
	}
	if n > maxNumQuestions {
		return maxNumQuestions
	}
	return n
}
