// Package fetcher is the "fetch text given a URL" collaborator the playback
// facades use to retrieve manifests. It is intentionally thin: no retries,
// no caching, failures propagate to the calling operation.
package fetcher

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher fetches manifest text over HTTP
type Fetcher struct {
	client *http.Client
}

// New creates a new Fetcher with the specified request timeout
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchText fetches the resource at url and returns its body as text
func (f *Fetcher) FetchText(url string) (string, error) {
	resp, err := f.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP request returned status %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}
