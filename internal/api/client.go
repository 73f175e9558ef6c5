package api

import (
	"context"
	"fmt"

	"github.com/gyanova/gyanova/internal/models"
)

// Generator turns a fully templated prompt into an Answer.
// An Answer without text is not an error; callers decide on the fallback.
type Generator interface {
	Generate(ctx context.Context, apiKey, prompt string) (*models.Answer, error)
}

// GeminiClient calls generateContent over plain HTTPS with a hand-built body
type GeminiClient struct {
	httpClient HTTPDoer
	model      models.Model
	endpoint   string
	maxBody    int64
}

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the model the client generates with
func WithModel(model models.Model) ClientOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// WithEndpoint overrides the upstream base URL
func WithEndpoint(base string) ClientOption {
	return func(c *GeminiClient) {
		c.endpoint = base
	}
}

// WithHTTPClient injects the outbound HTTP client
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = doer
	}
}

// WithMaxBody caps how many response bytes are read
func WithMaxBody(n int64) ClientOption {
	return func(c *GeminiClient) {
		c.maxBody = n
	}
}

// DefaultMaxBody is the response read limit
const DefaultMaxBody = 8 << 20

// NewClient creates a new GeminiClient
func NewClient(opts ...ClientOption) (*GeminiClient, error) {
	client := &GeminiClient{
		model:   models.DefaultModel,
		maxBody: DefaultMaxBody,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		httpClient, err := NewHTTPClient(DefaultTimeout)
		if err != nil {
			return nil, err
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// GetModel returns the configured model
func (c *GeminiClient) GetModel() models.Model {
	return c.model
}

// URL returns the generateContent URL this client posts to
func (c *GeminiClient) URL() string {
	return models.GenerateURL(c.endpoint, c.model)
}

// String describes the client for logs
func (c *GeminiClient) String() string {
	return fmt.Sprintf("rest(%s)", c.model.Name)
}

var _ Generator = (*GeminiClient)(nil)
