package livestream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/fermion-app/sdk/events"
	"github.com/fermion-app/sdk/fermion"
	"github.com/fermion-app/sdk/fetcher"
	"github.com/fermion-app/sdk/logging"
	"github.com/fermion-app/sdk/manifest"
)

func testDeps(fetch fetcher.Interface) Dependencies {
	return Dependencies{
		Fetcher: fetch,
		Logger:  logging.NewWithWriter(logging.ERROR, "livestream", io.Discard),
	}
}

func TestNewValidatesHostname(t *testing.T) {
	if _, err := New(Options{LiveEventSessionID: "s1", Hostname: "invalid hostname"}); !errors.Is(err, fermion.ErrInvalidHostname) {
		t.Errorf("New() error = %v, want ErrInvalidHostname", err)
	}

	if _, err := New(Options{LiveEventSessionID: "s1", Hostname: "acme.fermion.app"}); err != nil {
		t.Errorf("New() failed for valid hostname: %v", err)
	}
}

func TestGetPrivateEmbedPlaybackIframeCode(t *testing.T) {
	ls, err := New(Options{LiveEventSessionID: "session/42", Hostname: "acme.fermion.app"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	code := ls.GetPrivateEmbedPlaybackIframeCode(PrivateEmbedOptions{JWTToken: "the-jwt"})
	want := "https://acme.fermion.app/embed/live-session?liveEventSessionId=session%2F42&token=the-jwt"
	if code.URL != want {
		t.Errorf("URL = %q, want %q", code.URL, want)
	}
	if !strings.Contains(code.HTML, code.URL) {
		t.Errorf("HTML does not contain URL:\n%s", code.HTML)
	}
}

func TestGetHlsPlaybackConfig(t *testing.T) {
	ls, _ := New(Options{LiveEventSessionID: "s1", Hostname: "acme.fermion.app"})

	config, err := ls.GetHlsPlaybackConfig(PlaybackSourceOptions{
		Origin:                     "https://cdn.example.com",
		Pathname:                   "/live/index.m3u8",
		ClearkeyDecryptionKeyInHex: "00112233445566778899aabbccddeeff",
		SignedURLSearchParams:      "?sig=1",
	})
	if err != nil {
		t.Fatalf("GetHlsPlaybackConfig() failed: %v", err)
	}

	if config.SourceURL != "https://cdn.example.com/live/index.m3u8?sig=1" {
		t.Errorf("SourceURL = %q", config.SourceURL)
	}
	if config.NewPlaylistLoader == nil {
		t.Fatal("NewPlaylistLoader factory is nil")
	}
	if loader := config.NewPlaylistLoader(); loader == nil {
		t.Fatal("factory produced a nil loader")
	}
}

func TestGetHlsPlaybackConfigOddLengthKey(t *testing.T) {
	ls, _ := New(Options{LiveEventSessionID: "s1", Hostname: "acme.fermion.app"})

	_, err := ls.GetHlsPlaybackConfig(PlaybackSourceOptions{
		Origin:                     "https://cdn.example.com",
		Pathname:                   "/live/index.m3u8",
		ClearkeyDecryptionKeyInHex: "abc",
	})
	if !errors.Is(err, manifest.ErrOddLengthKey) {
		t.Errorf("error = %v, want ErrOddLengthKey", err)
	}
}

func TestGetM3U8PlaybackURLToleratesMissingIV(t *testing.T) {
	mockFetcher := &fetcher.MockFetcher{
		FetchTextFunc: func(url string) (string, error) {
			return "#EXTM3U\n#EXT-X-KEY:METHOD=AES-128,URI=\"key\"\nsegment1.ts", nil
		},
	}

	ls, _ := NewWithDependencies(Options{LiveEventSessionID: "s1", Hostname: "acme.fermion.app"}, testDeps(mockFetcher))

	handle, err := ls.GetM3U8PlaybackURL(PlaybackSourceOptions{
		Origin:                     "https://cdn.example.com",
		Pathname:                   "/live/index.m3u8",
		ClearkeyDecryptionKeyInHex: "00112233445566778899aabbccddeeff",
		SignedURLSearchParams:      "?sig=1",
	})
	if err != nil {
		t.Fatalf("GetM3U8PlaybackURL() failed: %v", err)
	}

	body, ok := ls.Store().Get(handle)
	if !ok {
		t.Fatalf("published handle %q not resolvable", handle)
	}

	rewritten := string(body)
	if !strings.Contains(rewritten, "#EXT-X-KEY:METHOD=AES-128,URI=\"key\"") {
		t.Errorf("IV-less key line was not passed through:\n%s", rewritten)
	}
	if !strings.Contains(rewritten, "https://cdn.example.com/live/segment1.ts?sig=1") {
		t.Errorf("segment not absolutized:\n%s", rewritten)
	}
}

func TestSetupEventListenersOnVideoLiveKinds(t *testing.T) {
	var handler func(events.Message)
	channel := &events.MockChannel{
		SubscribeFunc: func(h func(events.Message)) func() {
			handler = h
			return func() { handler = nil }
		},
	}

	ls, _ := NewWithDependencies(Options{LiveEventSessionID: "s1", Hostname: "acme.fermion.app"},
		testDeps(&fetcher.MockFetcher{}))

	listeners := ls.SetupEventListenersOnVideo(channel)

	ended := false
	listeners.OnLivestreamEnded(func() { ended = true })

	handler(events.Message{
		Origin: "https://acme.fermion.app",
		Data:   []byte(`{"type":"video:livestream-ended"}`),
	})
	if !ended {
		t.Error("OnLivestreamEnded callback did not fire")
	}

	// webrtc variant is accepted but has no registration slot; it must not
	// disturb anything
	handler(events.Message{
		Origin: "https://acme.fermion.app",
		Data:   []byte(`{"type":"webrtc:livestream-ended"}`),
	})

	listeners.Dispose()
	if handler != nil {
		t.Error("Dispose() did not remove the channel listener")
	}
}
