package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/artrec/hunterd/internal/profile"
)

// EmbeddingService is the vector embedding backend interface.
type EmbeddingService interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the model identifier used for embedding persistence keys.
	Model() string

	// Dimensions returns the vector dimension.
	Dimensions() int
}

type embeddingService struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewEmbeddingService creates an EmbeddingService against any
// OpenAI-compatible provider (openai, siliconflow, ollama, ...).
func NewEmbeddingService(p *profile.Profile) (EmbeddingService, error) {
	if p.EmbeddingAPIKey == "" {
		return nil, errors.New("embedding API key required")
	}

	clientConfig := openai.DefaultConfig(p.EmbeddingAPIKey)
	if p.EmbeddingBaseURL != "" {
		clientConfig.BaseURL = p.EmbeddingBaseURL
	}
	if p.EmbeddingTimeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: time.Duration(p.EmbeddingTimeout) * time.Second}
	}

	return &embeddingService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      p.EmbeddingModel,
		dimensions: p.EmbeddingDimensions,
	}, nil
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty embedding result", ErrEmbeddingBackend)
	}
	return vectors[0], nil
}

func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided for embedding")
	}

	req := openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(s.model),
		Dimensions: s.dimensions,
	}

	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingBackend, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", ErrEmbeddingBackend)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingBackend, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = data.Embedding
	}

	return vectors, nil
}

func (s *embeddingService) Model() string {
	return s.model
}

func (s *embeddingService) Dimensions() int {
	return s.dimensions
}
