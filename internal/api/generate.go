package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/models"
)

// Generate sends prompt as the sole part of a single-turn request.
// One attempt, no retries.
func (c *GeminiClient) Generate(ctx context.Context, apiKey, prompt string) (*models.Answer, error) {
	if apiKey == "" {
		return nil, apierrors.NewMissingKeyError(models.APIKeyEnv)
	}

	payload, err := json.Marshal(models.NewGenerateRequest(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	endpoint := c.URL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	req.Header.Set(models.APIKeyHeader, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("generate content", endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, apierrors.NewNetworkErrorWithEndpoint("read response", endpoint, err)
	}

	answer, err := parseResponse(body)
	if err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, "generate content failed", truncate(string(body), 4096))
		}
		return nil, err
	}
	answer.Status = resp.StatusCode

	return answer, nil
}

// parseResponse extracts the answer from a generateContent body.
// Invalid JSON is an error; valid JSON without the text path is a textless Answer.
func parseResponse(body []byte) (*models.Answer, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)

	answer := &models.Answer{
		FinishReason: parsed.Get(PathFinishReason).String(),
		BlockReason:  parsed.Get(PathBlockReason).String(),
		ErrorMessage: parsed.Get(PathErrorMessage).String(),
	}

	if text := parsed.Get(PathCandidateText); text.Type == gjson.String {
		answer.Text = text.Str
	}

	return answer, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
