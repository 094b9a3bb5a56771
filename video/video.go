// Package video is the playback facade for pre-recorded Fermion videos:
// embed-code generation, authorized playback-source preparation, and player
// event subscriptions.
package video

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

// Options configures a recorded-video facade
type Options struct {
	VideoID  string
	Hostname string
}

// Dependencies holds the collaborators a Video uses. Zero fields get real
// defaults; tests inject mocks.
type Dependencies struct {
	Fetcher fetcher.Interface
	Store   *resource.Store
	Logger  *logging.Logger
}

// Video is a facade bound to one recorded video on one Fermion site
type Video struct {
	identity fermion.Identity
	fetcher  fetcher.Interface
	store    *resource.Store
	logger   *logging.Logger
}

// New creates a recorded-video facade. The hostname is validated eagerly:
// construction fails rather than producing a facade in an invalid state.
func New(opts Options) (*Video, error) {
	return NewWithDependencies(opts, Dependencies{})
}

// NewWithDependencies creates a facade with explicit collaborators
func NewWithDependencies(opts Options, deps Dependencies) (*Video, error) {
	identity, err := fermion.NewIdentity(opts.VideoID, opts.Hostname)
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
		deps.Logger = logging.New(logging.WARN, "video")
	}

	return &Video{
		identity: identity,
		fetcher:  deps.Fetcher,
		store:    deps.Store,
		logger:   deps.Logger,
	}, nil
}

// Store returns the resource store playback manifests are published to, so
// callers can mount it on their mux
func (v *Video) Store() *resource.Store {
	return v.store
}

// GetPubliclyEmbedPlaybackIframeCode builds the public iframe embed
func (v *Video) GetPubliclyEmbedPlaybackIframeCode() embed.Code {
	return embed.Recorded(v.identity)
}

// PrivateEmbedOptions carries the token for a private embed
type PrivateEmbedOptions struct {
	JWTToken string
}

// GetPrivateEmbedPlaybackIframeCode builds the private iframe embed
func (v *Video) GetPrivateEmbedPlaybackIframeCode(opts PrivateEmbedOptions) embed.Code {
	return embed.RecordedPrivate(v.identity, opts.JWTToken)
}

// PlaybackSourceOptions locates one encrypted manifest on the CDN
type PlaybackSourceOptions struct {
	// Origin is the CDN base, e.g. https://cdn.example.com
	Origin string
	// Pathname is the manifest path, e.g. /video/playlist.m3u8
	Pathname string
	// ClearkeyDecryptionKeyInHex is the out-of-band key. Empty means the
	// content is unencrypted.
	ClearkeyDecryptionKeyInHex string
	// SignedURLSearchParams is the authorization query, leading-"?" form
	SignedURLSearchParams string
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

// GetM3U8PlaybackURL fetches the manifest, rewrites it fully, publishes the
// result to the resource store, and returns the published handle
func (v *Video) GetM3U8PlaybackURL(opts PlaybackSourceOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	keyURI := ""
	if opts.ClearkeyDecryptionKeyInHex != "" {
		uri, err := manifest.ClearkeyURIFromHex(opts.ClearkeyDecryptionKeyInHex)
		if err != nil {
			return "", err
		}
		keyURI = uri
	}

	sourceURL := opts.Origin + opts.Pathname + opts.SignedURLSearchParams
	text, err := v.fetcher.FetchText(sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch manifest: %w", err)
	}

	rewritten, err := manifest.RewriteRecorded(text, manifest.RewriteParams{
		SegmentBaseURL: manifest.SegmentBaseURL(opts.Origin, opts.Pathname),
		SignedQuery:    opts.SignedURLSearchParams,
		KeyURI:         keyURI,
	})
	if err != nil {
		return "", err
	}

	v.logger.Debug("published rewritten manifest", map[string]interface{}{
		"videoId": v.identity.ContentID(),
		"source":  sourceURL,
	})

	return v.store.Publish(resource.DefaultContentType, []byte(rewritten)), nil
}

// Listeners is the callback surface returned by SetupEventListenersOnVideo
type Listeners struct {
	sub *events.Subscription
}

// SetupEventListenersOnVideo subscribes to the host message channel and
// returns the per-event registration surface
func (v *Video) SetupEventListenersOnVideo(channel events.Channel) *Listeners {
	sub := events.NewSubscription(channel, v.identity.Hostname(), events.RecordedKinds, v.logger)
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

// Dispose removes the underlying channel listener
func (l *Listeners) Dispose() {
	l.sub.Dispose()
}
