package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/models"
)

// genaiModels is the part of genai.Models the SDK backend uses
type genaiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var newGenaiModels = func(ctx context.Context, cfg *genai.ClientConfig) (genaiModels, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// SDKClient performs the same single-turn call through google.golang.org/genai.
// The genai client is built per call because the key is resolved per request.
type SDKClient struct {
	model    models.Model
	endpoint string
}

// SDKOption configures an SDKClient
type SDKOption func(*SDKClient)

// WithSDKModel sets the model
func WithSDKModel(model models.Model) SDKOption {
	return func(c *SDKClient) {
		c.model = model
	}
}

// WithSDKEndpoint overrides the base URL the SDK talks to
func WithSDKEndpoint(base string) SDKOption {
	return func(c *SDKClient) {
		c.endpoint = base
	}
}

// NewSDKClient creates a new SDKClient
func NewSDKClient(opts ...SDKOption) *SDKClient {
	c := &SDKClient{model: models.DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate implements Generator
func (c *SDKClient) Generate(ctx context.Context, apiKey, prompt string) (*models.Answer, error) {
	if apiKey == "" {
		return nil, apierrors.NewMissingKeyError(models.APIKeyEnv)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.endpoint != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.endpoint}
	}

	client, err := newGenaiModels(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	endpoint := models.GenerateURL(c.endpoint, c.model)
	resp, err := client.GenerateContent(ctx, c.model.Name, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return answerFromAPIError(apiErr, endpoint)
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("generate content", endpoint, err)
	}

	return answerFromSDK(resp), nil
}

// String describes the client for logs
func (c *SDKClient) String() string {
	return fmt.Sprintf("sdk(%s)", c.model.Name)
}

// answerFromAPIError treats a JSON error body like the REST path does: a
// textless Answer. genai reports a body that is not JSON with the raw HTTP
// status line and the body as message; that stays an error.
func answerFromAPIError(apiErr genai.APIError, endpoint string) (*models.Answer, error) {
	rawStatus := strings.HasPrefix(apiErr.Status, strconv.Itoa(apiErr.Code)+" ")
	if rawStatus && !gjson.Valid(apiErr.Message) {
		return nil, apierrors.NewAPIErrorWithBody(apiErr.Code, endpoint, "generate content failed", truncate(apiErr.Message, 4096))
	}

	return &models.Answer{
		Status:       apiErr.Code,
		ErrorMessage: apiErr.Message,
	}, nil
}

// answerFromSDK reads the same first-candidate, first-part text the REST path reads
func answerFromSDK(resp *genai.GenerateContentResponse) *models.Answer {
	answer := &models.Answer{}
	if resp == nil {
		return answer
	}

	if resp.PromptFeedback != nil {
		answer.BlockReason = string(resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return answer
	}
	cand := resp.Candidates[0]
	answer.FinishReason = string(cand.FinishReason)

	if cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
		return answer
	}
	answer.Text = cand.Content.Parts[0].Text

	return answer
}

var _ Generator = (*SDKClient)(nil)
