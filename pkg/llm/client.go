package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ClientConfig represents the configuration for the language model client.
type ClientConfig struct {
	Model          string
	EmbeddingModel string
	Token          string
	BaseURL        string  // optional OpenAI-compatible endpoint
	Temperature    float64 // deterministic chain temperature
	MaxTokens      int
}

// Client bundles the two model handles the pipeline consumes: a
// deterministic one for classification, rewriting and tool calling, and a
// creative one for free-form general-knowledge answers. The deterministic
// handle also serves embeddings.
type Client struct {
	config   ClientConfig
	model    *openai.LLM
	creative *openai.LLM
}

// NewWithConfig creates a new Client with the given configuration.
func NewWithConfig(config ClientConfig) (*Client, error) {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = "text-embedding-3-small"
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.Token == "" {
		return nil, fmt.Errorf("llm: API token is required")
	}

	opts := []openai.Option{
		openai.WithModel(config.Model),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	creative, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize creative LLM: %w", err)
	}

	return &Client{config: config, model: model, creative: creative}, nil
}

// Model returns the deterministic model handle.
func (c *Client) Model() llms.Model { return c.model }

// Creative returns the higher-temperature model handle.
func (c *Client) Creative() llms.Model { return c.creative }

// CreateEmbedding embeds the given texts.
func (c *Client) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return c.model.CreateEmbedding(ctx, texts)
}

// Complete runs a single system+user completion and returns the text of
// the first choice.
func Complete(ctx context.Context, model llms.Model, system, user string, opts ...llms.CallOption) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	resp, err := model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}
