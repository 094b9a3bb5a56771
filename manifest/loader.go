package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ResourceType declares what kind of resource a load request is for. Only
// playlist payloads are rewritten; fragments pass through the loader
// untouched.
type ResourceType int

// Resource type constants mirror the load contexts an HLS engine issues
const (
	ResourceManifest ResourceType = iota // top-level (multivariant) playlist
	ResourceLevel                        // variant/level playlist
	ResourceFragment                     // media segment
)

func (t ResourceType) String() string {
	switch t {
	case ResourceManifest:
		return "manifest"
	case ResourceLevel:
		return "level"
	case ResourceFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// LoadContext identifies one resource the engine asked for
type LoadContext struct {
	URL  string
	Type ResourceType
}

// LoadConfig carries per-load tuning from the engine
type LoadConfig struct {
	Timeout time.Duration
}

// LoadResult is a completed load
type LoadResult struct {
	URL     string
	Payload []byte
}

// LoadCallbacks is how the engine hears back from a loader. Load is
// fire-and-forget; completion arrives on whichever callback applies.
type LoadCallbacks struct {
	OnSuccess func(result LoadResult, ctx LoadContext)
	OnError   func(ctx LoadContext, err error)
}

// Loader is the pluggable network-loader capability an HLS engine accepts
// as a drop-in replacement for its default playlist loader
type Loader interface {
	Load(ctx LoadContext, config LoadConfig, callbacks LoadCallbacks)
	Abort()
	Destroy()
}

// LoaderFactory constructs one loader instance per engine request
type LoaderFactory func() Loader

// HTTPLoader is the default transport: one in-flight fetch at a time,
// abortable, completion signaled through the callbacks on a goroutine
type HTTPLoader struct {
	client *http.Client

	mu        sync.Mutex
	cancel    context.CancelFunc
	destroyed bool
}

// NewHTTPLoader creates the default HTTP-backed loader
func NewHTTPLoader() *HTTPLoader {
	return &HTTPLoader{
		client: &http.Client{},
	}
}

// Load fetches the resource asynchronously and reports through callbacks
func (l *HTTPLoader) Load(lctx LoadContext, config LoadConfig, callbacks LoadCallbacks) {
	ctx := context.Background()
	var cancel context.CancelFunc
	if config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		cancel()
		if callbacks.OnError != nil {
			callbacks.OnError(lctx, fmt.Errorf("loader destroyed"))
		}
		return
	}
	l.cancel = cancel
	l.mu.Unlock()

	go func() {
		defer cancel()

		payload, err := l.fetch(ctx, lctx.URL)
		if err != nil {
			if callbacks.OnError != nil {
				callbacks.OnError(lctx, err)
			}
			return
		}

		if callbacks.OnSuccess != nil {
			callbacks.OnSuccess(LoadResult{URL: lctx.URL, Payload: payload}, lctx)
		}
	}()
}

func (l *HTTPLoader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request returned status %d: %s", resp.StatusCode, resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return payload, nil
}

// Abort cancels the in-flight fetch, if any
func (l *HTTPLoader) Abort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Destroy aborts and marks the loader unusable
func (l *HTTPLoader) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.destroyed = true
}

// PlaylistLoaderOptions parameterizes the rewriting loader factory
type PlaylistLoaderOptions struct {
	// KeyURI is the clearkey data URI patched into key directives.
	// Empty leaves key lines untouched.
	KeyURI string
	// SignedQuery is the authorization query appended to segment lines
	SignedQuery string
	// Underlying builds the loader that performs the actual fetch.
	// Defaults to NewHTTPLoader.
	Underlying LoaderFactory
}

// rewritingLoader wraps the engine's transport loader and patches playlist
// payloads on their way to the engine's success callback
type rewritingLoader struct {
	inner       Loader
	keyURI      string
	signedQuery string
}

// NewPlaylistLoaderFactory returns a factory producing drop-in playlist
// loaders that rewrite top-level and variant manifests before the engine
// sees them. Fragment loads and every other resource type pass through.
func NewPlaylistLoaderFactory(opts PlaylistLoaderOptions) LoaderFactory {
	underlying := opts.Underlying
	if underlying == nil {
		underlying = func() Loader { return NewHTTPLoader() }
	}

	return func() Loader {
		return &rewritingLoader{
			inner:       underlying(),
			keyURI:      opts.KeyURI,
			signedQuery: opts.SignedQuery,
		}
	}
}

// Load delegates the fetch and intercepts the success path for playlists
func (l *rewritingLoader) Load(lctx LoadContext, config LoadConfig, callbacks LoadCallbacks) {
	wrapped := callbacks
	if callbacks.OnSuccess != nil {
		wrapped.OnSuccess = func(result LoadResult, ctx LoadContext) {
			if ctx.Type == ResourceManifest || ctx.Type == ResourceLevel {
				result.Payload = []byte(RewriteStreaming(string(result.Payload), l.keyURI, l.signedQuery))
			}
			callbacks.OnSuccess(result, ctx)
		}
	}
	l.inner.Load(lctx, config, wrapped)
}

// Abort forwards to the wrapped loader
func (l *rewritingLoader) Abort() {
	l.inner.Abort()
}

// Destroy forwards to the wrapped loader
func (l *rewritingLoader) Destroy() {
	l.inner.Destroy()
}
