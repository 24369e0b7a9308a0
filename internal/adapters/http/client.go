package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/config"
	"github.com/yashgoyal264-hub/airline-invoice-extractor/internal/domain"
)

const defaultUserAgent = "drive-fetch-backend/1.0"

// Client implements domain.HTTPClient. All sessions share one transport
// so connections are pooled across fetches, but each session has its
// own cookie jar.
type Client struct {
	transport http.RoundTripper
	config    config.HTTPConfig
}

// NewClientWithConfig creates a client from HTTP configuration
func NewClientWithConfig(cfg config.HTTPConfig) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return &Client{
		transport: http.DefaultTransport.(*http.Transport).Clone(),
		config:    cfg,
	}
}

// NewSession returns a session with an empty cookie jar
func (c *Client) NewSession() (domain.HTTPSession, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Session{
		client: &http.Client{
			Transport: c.transport,
			Jar:       jar,
			Timeout:   c.config.Timeout,
		},
		userAgent: c.config.UserAgent,
	}, nil
}

// Session issues requests that share cookies
type Session struct {
	client    *http.Client
	userAgent string
}

// Get follows redirects and returns the final response. The caller closes
// the body. resp.Request.URL is the URL after redirects.
func (s *Session) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	return s.client.Do(req)
}
