package api

import (
	"fmt"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// DefaultTimeout bounds a single outbound request at the transport level
const DefaultTimeout = 300 * time.Second

// HTTPDoer is the subset of tls_client.HttpClient the clients need
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient creates the shared outbound HTTP client.
// A single instance is safe for concurrent requests.
func NewHTTPClient(timeout time.Duration) (tls_client.HttpClient, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout / time.Second)),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithNotFollowRedirects(),
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return httpClient, nil
}
