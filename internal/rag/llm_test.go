package rag

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soalgen/soalgen/internal/ai"
)

type scriptedGenerator struct {
	responses []string
	errs      []error
	calls     int
	lastOpts  ai.GenerateOptions
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	i := g.calls
	g.calls++
	g.lastOpts = opts
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	text := ""
	if i < len(g.responses) {
		text = g.responses[i]
	}
	return text, err
}

func newTestClient(gen ai.IGenerator, maxRetries int) (*Client, *[]time.Duration) {
	client := NewClient(gen, maxRetries, time.Minute)
	var sleeps []time.Duration
	client.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return client, &sleeps
}

func TestOutputTokenBudget_ScalesAndCaps(t *testing.T) {
	require.Equal(t, int32(1800), OutputTokenBudget(1))
	require.Equal(t, int32(3000), OutputTokenBudget(5))
	require.Equal(t, int32(8192), OutputTokenBudget(100))
}

func TestGenerateText_FirstAttemptSucceeds(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"hasil"}}
	client, sleeps := newTestClient(gen, 3)

	text, err := client.GenerateText(context.Background(), "prompt", 2)
	require.NoError(t, err)
	require.Equal(t, "hasil", text)
	require.Equal(t, 1, gen.calls)
	require.Empty(t, *sleeps)
	require.Equal(t, float32(0.0), gen.lastOpts.Temperature)
	require.Equal(t, float32(0.8), gen.lastOpts.TopP)
	require.Equal(t, float32(40), gen.lastOpts.TopK)
	require.Equal(t, int32(2100), gen.lastOpts.MaxOutputTokens)
}

func TestGenerateText_EmptyResponseRetriesWithBackoff(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"", "  \n", "hasil"}}
	client, sleeps := newTestClient(gen, 3)

	text, err := client.GenerateText(context.Background(), "prompt", 1)
	require.NoError(t, err)
	require.Equal(t, "hasil", text)
	require.Equal(t, 3, gen.calls)
	require.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
}

func TestGenerateText_ExhaustedRetriesReportsAttemptCount(t *testing.T) {
	gen := &scriptedGenerator{}
	client, _ := newTestClient(gen, 3)

	_, err := client.GenerateText(context.Background(), "prompt", 1)
	require.Error(t, err)
	require.Equal(t, 3, gen.calls)
	require.Contains(t, err.Error(), "3 attempts")
}
