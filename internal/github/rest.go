package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultAPIBaseURL is the public GitHub REST endpoint.
const DefaultAPIBaseURL = "https://api.github.com"

// REST calls the hosting API directly over HTTPS with a bearer token.
type REST struct {
	// BaseURL defaults to DefaultAPIBaseURL.
	BaseURL string

	// TokenSource supplies the bearer token. Calls are unauthenticated when nil.
	TokenSource oauth2.TokenSource

	// HTTPClient is the base client wrapped with the token transport.
	HTTPClient *http.Client
}

// NewREST returns a REST backend authenticated with a static token.
func NewREST(token string) *REST {
	return &REST{
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
	}
}

// Name implements API.
func (r *REST) Name() string { return "api" }

func (r *REST) client(ctx context.Context) *http.Client {
	base := r.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: RequestTimeout}
	}
	if r.TokenSource == nil {
		return base
	}
	c := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), r.TokenSource)
	c.Timeout = base.Timeout
	return c
}

// Get performs a GET against BaseURL/endpoint.
func (r *REST) Get(ctx context.Context, endpoint string) ([]byte, error) {
	base := r.BaseURL
	if base == "" {
		base = DefaultAPIBaseURL
	}
	apiURL := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client(ctx).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", apiURL, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", apiURL, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, apiURL)
	}
	return body, nil
}

// CheckAuth verifies that a token is available.
func (r *REST) CheckAuth(ctx context.Context) error {
	if r.TokenSource == nil {
		return ErrNoToken
	}
	tok, err := r.TokenSource.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if tok.AccessToken == "" {
		return ErrNoToken
	}
	return nil
}
