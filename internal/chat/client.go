package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	"github.com/gyanova/gyanova/internal/api"
	apierrors "github.com/gyanova/gyanova/internal/errors"
	"github.com/gyanova/gyanova/internal/models"
)

// Client-side fallbacks shown in place of an answer
const (
	FallbackNoAnswer    = "⚠️ AI failed to respond."
	FallbackServerError = "⚠️ Server error. Try again."
)

// RelayPath is where the relay is mounted
const RelayPath = "/api/gemini"

// maxAnswerBytes caps how much of a relay response is read
const maxAnswerBytes = 8 << 20

// Asker answers a single question. The returned text is never empty;
// a non-nil error is for logging only.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Client talks to a relay over HTTP
type Client struct {
	httpClient api.HTTPDoer
	relayURL   string
}

// NewClient creates a relay client for the relay at baseURL
func NewClient(baseURL string, doer api.HTTPDoer) *Client {
	return &Client{
		httpClient: doer,
		relayURL:   strings.TrimSuffix(baseURL, "/") + RelayPath,
	}
}

// URL returns the relay endpoint
func (c *Client) URL() string {
	return c.relayURL
}

// Ask posts question to the relay and picks the text to display
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	payload, err := json.Marshal(models.QuestionRequest{Question: question})
	if err != nil {
		return FallbackServerError, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL, bytes.NewReader(payload))
	if err != nil {
		return FallbackServerError, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FallbackServerError, apierrors.NewNetworkErrorWithEndpoint("ask relay", c.relayURL, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAnswerBytes))
	if err != nil {
		return FallbackServerError, apierrors.NewNetworkErrorWithEndpoint("read relay response", c.relayURL, err)
	}

	return pickAnswer(resp.StatusCode, body, c.relayURL)
}

// pickAnswer applies the display chain: text, then the raw candidate path,
// then FallbackNoAnswer. A body that is not JSON yields FallbackServerError.
func pickAnswer(status int, body []byte, endpoint string) (string, error) {
	if !gjson.ValidBytes(body) {
		return FallbackServerError, apierrors.NewParseError("relay response is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(body)
	for _, path := range []string{"text", api.PathCandidateText} {
		if v := parsed.Get(path); v.Type == gjson.String && v.Str != "" {
			return v.Str, nil
		}
	}

	if msg := parsed.Get("error").String(); msg != "" {
		return FallbackNoAnswer, apierrors.NewAPIError(status, endpoint, msg)
	}
	if status < 200 || status > 299 {
		return FallbackNoAnswer, apierrors.NewAPIError(status, endpoint, "relay returned no answer")
	}
	return FallbackNoAnswer, nil
}
