// Package llm holds the two external-AI collaborators spec §6 names: an
// embedding collaborator and a chat-completion collaborator used for the
// Tier 3/4 hint prompts and the category validator. Both are adapted from
// the teacher's embedder/openai_compatible.go, which wraps
// sashabaranov/go-openai behind a small interface.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/soukfinder/searchcore/internal/vecmath"
)

// Embedder generates fixed-dimension text embeddings. The query language is
// part of the text, not a separate parameter, matching spec §6's
// `embed(text) → float[D]`.
type Embedder interface {
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedderConfig configures an OpenAI-compatible embedding client.
type EmbedderConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int // 0 means provider default; a mismatch vs the configured EmbeddingDimension is a configuration error (spec §6).
	Timeout    time.Duration
}

// OpenAIEmbedder is the default Embedder, talking to any OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIEmbedder builds an OpenAIEmbedder from cfg.
func NewOpenAIEmbedder(cfg EmbedderConfig) (*OpenAIEmbedder, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("llm: embedder model is required")
	}

	openaiCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		openaiCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	openaiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(openaiCfg),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Embed requests a single embedding and L2-normalizes it, matching the
// teacher's post-embed normalization step.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm: create embedding: %w", err)
	}
	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("llm: expected 1 embedding, got %d", len(resp.Data))
	}

	row := resp.Data[0].Embedding
	vec := make([]float32, len(row))
	for i, v := range row {
		vec[i] = float32(v)
	}
	vecmath.L2NormalizeInPlace(vec)
	return vec, nil
}
