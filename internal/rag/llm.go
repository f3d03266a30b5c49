package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/soalgen/soalgen/internal/ai"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	generateTemperature = 0.0
	generateTopP        = 0.8
	generateTopK        = 40
	maxOutputTokenCap   = 8192
	baseOutputTokens    = 1500
	perQuestionTokens   = 300
)

// Client wraps a generator with the retry and token-budget policy used
// for question generation. All calls run with deterministic sampling.
type Client struct {
	gen        ai.IGenerator
	maxRetries int
	timeout    time.Duration
	sleep      func(time.Duration)
}

func NewClient(gen ai.IGenerator, maxRetries int, timeout time.Duration) *Client {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{gen: gen, maxRetries: maxRetries, timeout: timeout, sleep: time.Sleep}
}

// OutputTokenBudget scales the response budget with the requested question
// count so large batches do not get truncated mid JSON.
func OutputTokenBudget(numQuestions int) int32 {
	budget := baseOutputTokens + perQuestionTokens*numQuestions
	if budget > maxOutputTokenCap {
		budget = maxOutputTokenCap
	}
	return int32(budget)
}

// GenerateText runs the prompt against the model, retrying on transport
// errors and on empty responses with exponential backoff.
func (c *Client) GenerateText(ctx context.Context, prompt string, numQuestions int) (string, error) {
	opts := ai.GenerateOptions{
		Temperature:     generateTemperature,
		TopP:            generateTopP,
		TopK:            generateTopK,
		MaxOutputTokens: OutputTokenBudget(numQuestions),
	}
	logger := logutil.GetLogger(ctx).With(zap.Int("num_questions", numQuestions))
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			logger.Warn("retrying generation", zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(lastErr))
			c.sleep(backoff)
		}
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := c.gen.Generate(callCtx, prompt, opts)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = fmt.Errorf("model returned empty response")
			continue
		}
		return text, nil
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", c.maxRetries, lastErr)
}
