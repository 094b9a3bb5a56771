// Package livestream is the playback facade for Fermion live sessions. It
// mirrors the recorded-video facade but prepares playback for a third-party
// HLS engine: instead of republishing a fully rewritten manifest it hands
// back the raw source URL plus a playlist-loader factory that patches
// manifests inside the engine's loading pipeline.
package livestream

import (
	"fmt"
	"time"

	"github.com/fermion-app/sdk/embed"
	"github.com/fermion-app/sdk/events"
	"github.com/fermion-app/sdk/fermion"
	"github.com/fermion-app/sdk/fetcher"
	"github.com/fermion-app/sdk/logging"
	"github.com/fermion-app/sdk/manifest"
	"github.com/fermion-app/sdk/resource"
)

// Options configures a livestream facade
type Options struct {
	LiveEventSessionID string
	Hostname           string
}

// Dependencies holds the collaborators a Livestream uses. Zero fields get
// real defaults; tests inject mocks.
type Dependencies struct {
	Fetcher fetcher.Interface
	Store   *resource.Store
	Logger  *logging.Logger
}

// Livestream is a facade bound to one live session on one Fermion site
type Livestream struct {
	identity fermion.Identity
	fetcher  fetcher.Interface
	store    *resource.Store
	logger   *logging.Logger
}

// New creates a livestream facade, validating the hostname eagerly
func New(opts Options) (*Livestream, error) {
	return NewWithDependencies(opts, Dependencies{})
}

// NewWithDependencies creates a facade with explicit collaborators
func NewWithDependencies(opts Options, deps Dependencies) (*Livestream, error) {
	identity, err := fermion.NewIdentity(opts.LiveEventSessionID, opts.Hostname)
	if err != nil {
		return nil, err
	}

	if deps.Fetcher == nil {
		deps.Fetcher = fetcher.New(30 * time.Second)
	}
	if deps.Store == nil {
		deps.Store = resource.NewStore()
	}
	if deps.Logger == nil {
		deps.Logger = logging.New(logging.WARN, "livestream")
	}

	return &Livestream{
		identity: identity,
		fetcher:  deps.Fetcher,
		store:    deps.Store,
		logger:   deps.Logger,
	}, nil
}

// Store returns the resource store offline-mode manifests are published to
func (l *Livestream) Store() *resource.Store {
	return l.store
}

// PrivateEmbedOptions carries the token for the embed. There is no public
// livestream embed; the token is always required.
type PrivateEmbedOptions struct {
	JWTToken string
}

// GetPrivateEmbedPlaybackIframeCode builds the live-session iframe embed
func (l *Livestream) GetPrivateEmbedPlaybackIframeCode(opts PrivateEmbedOptions) embed.Code {
	return embed.Live(l.identity, opts.JWTToken)
}

// PlaybackSourceOptions locates one live manifest on the CDN
type PlaybackSourceOptions struct {
	Origin                     string
	Pathname                   string
	ClearkeyDecryptionKeyInHex string
	SignedURLSearchParams      string
}

// Validate checks the options before any network work happens
func (o PlaybackSourceOptions) Validate() error {
	if o.Origin == "" {
		return fmt.Errorf("playback source origin is required")
	}
	if o.Pathname == "" {
		return fmt.Errorf("playback source pathname is required")
	}
	return nil
}

// keyURI derives the clearkey data URI, or "" for unencrypted content
func (o PlaybackSourceOptions) keyURI() (string, error) {
	if o.ClearkeyDecryptionKeyInHex == "" {
		return "", nil
	}
	return manifest.ClearkeyURIFromHex(o.ClearkeyDecryptionKeyInHex)
}

// HlsPlaybackConfig is what a third-party HLS engine needs: the raw source
// URL and the loader class to install in its configuration
type HlsPlaybackConfig struct {
	SourceURL         string
	NewPlaylistLoader manifest.LoaderFactory
}

// GetHlsPlaybackConfig prepares streaming-mode playback: manifests are
// patched per fetch inside the engine's loader, nothing is fetched here
func (l *Livestream) GetHlsPlaybackConfig(opts PlaybackSourceOptions) (HlsPlaybackConfig, error) {
	if err := opts.Validate(); err != nil {
		return HlsPlaybackConfig{}, err
	}

	keyURI, err := opts.keyURI()
	if err != nil {
		return HlsPlaybackConfig{}, err
	}

	return HlsPlaybackConfig{
		SourceURL: opts.Origin + opts.Pathname + opts.SignedURLSearchParams,
		NewPlaylistLoader: manifest.NewPlaylistLoaderFactory(manifest.PlaylistLoaderOptions{
			KeyURI:      keyURI,
			SignedQuery: opts.SignedURLSearchParams,
		}),
	}, nil
}

// GetM3U8PlaybackURL is the offline-mode path: fetch, rewrite fully with the
// live key rule, publish, return the handle
func (l *Livestream) GetM3U8PlaybackURL(opts PlaybackSourceOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	keyURI, err := opts.keyURI()
	if err != nil {
		return "", err
	}

	sourceURL := opts.Origin + opts.Pathname + opts.SignedURLSearchParams
	text, err := l.fetcher.FetchText(sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch manifest: %w", err)
	}

	rewritten, err := manifest.RewriteLive(text, manifest.RewriteParams{
		SegmentBaseURL: manifest.SegmentBaseURL(opts.Origin, opts.Pathname),
		SignedQuery:    opts.SignedURLSearchParams,
		KeyURI:         keyURI,
	})
	if err != nil {
		return "", err
	}

	l.logger.Debug("published rewritten live manifest", map[string]interface{}{
		"liveEventSessionId": l.identity.ContentID(),
		"source":             sourceURL,
	})

	return l.store.Publish(resource.DefaultContentType, []byte(rewritten)), nil
}

// Listeners is the callback surface returned by SetupEventListenersOnVideo
type Listeners struct {
	sub *events.Subscription
}

// SetupEventListenersOnVideo subscribes to the host message channel and
// returns the per-event registration surface
func (l *Livestream) SetupEventListenersOnVideo(channel events.Channel) *Listeners {
	sub := events.NewSubscription(channel, l.identity.Hostname(), events.LiveKinds, l.logger)
	return &Listeners{sub: sub}
}

// OnVideoPlay registers the playback-started callback
func (l *Listeners) OnVideoPlay(callback func(durationAtInSeconds float64)) {
	l.sub.On(events.KindVideoPlay, func(e events.Event) {
		callback(e.DurationAtInSeconds)
	})
}

// OnVideoPaused registers the playback-paused callback
func (l *Listeners) OnVideoPaused(callback func(durationAtInSeconds float64)) {
	l.sub.On(events.KindVideoPaused, func(e events.Event) {
		callback(e.DurationAtInSeconds)
	})
}

// OnVideoEnded registers the playback-ended callback
func (l *Listeners) OnVideoEnded(callback func()) {
	l.sub.On(events.KindVideoEnded, func(events.Event) {
		callback()
	})
}

// OnTimeUpdated registers the playback-progress callback
func (l *Listeners) OnTimeUpdated(callback func(currentTimeInSeconds float64)) {
	l.sub.On(events.KindTimeUpdated, func(e events.Event) {
		callback(e.CurrentTimeInSeconds)
	})
}

// OnLivestreamEnded registers the stream-ended callback. The
// webrtc:livestream-ended variant is validated but has no registration
// slot here.
func (l *Listeners) OnLivestreamEnded(callback func()) {
	l.sub.On(events.KindLivestreamEnded, func(events.Event) {
		callback()
	})
}

// Dispose removes the underlying channel listener
func (l *Listeners) Dispose() {
	l.sub.Dispose()
}
