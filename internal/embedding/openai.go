package embedding

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "text-embedding-3-small"

// openAIDimensions maps known embedding models to their output lengths.
var openAIDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIProvider implements Provider for OpenAI-compatible embedding
// APIs (OpenAI, vLLM, Ollama, etc. via base URL override).
type OpenAIProvider struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAI creates an OpenAI-compatible provider. baseURL may be empty
// for the hosted API; dims may be 0 for known models.
func NewOpenAI(apiKey, model, baseURL string, dims int) (*OpenAIProvider, error) {
	if model == "" {
		model = defaultOpenAIModel
	}
	if dims <= 0 {
		known, ok := openAIDimensions[model]
		if !ok {
			return nil, fmt.Errorf("unknown embedding model %q: set embedding.dimensions explicitly", model)
		}
		dims = known
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		dims:   dims,
	}, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	rsp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, err
	}
	if len(rsp.Data) == 0 || len(rsp.Data[0].Embedding) == 0 {
		return nil, errors.New("openai: empty embedding response")
	}

	vec := rsp.Data[0].Embedding
	if len(vec) != p.dims {
		return nil, fmt.Errorf("openai: got %d dimensions, want %d", len(vec), p.dims)
	}

	// The API returns unit vectors already; renormalize anyway so the
	// dot-product-equals-cosine contract holds regardless of backend.
	normalize(vec)
	return vec, nil
}

func (p *OpenAIProvider) Dimensions() int { return p.dims }

func (p *OpenAIProvider) Name() string { return "openai" }
