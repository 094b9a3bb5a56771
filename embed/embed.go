// Package embed builds iframe URL/HTML pairs for embedding Fermion-hosted
// playback into a page. It is pure and synchronous: no network access, no
// state — just URL assembly and a fixed iframe template.
package embed

import (
	"fmt"
	"net/url"

	"github.com/fermion-app/sdk/fermion"
)

// Code is a rendered embeddable unit. HTML always contains URL verbatim as
// the iframe src.
type Code struct {
	URL  string
	HTML string
}

const iframeTemplate = `<iframe width="1280" height="720" src="%s" title="Fermion embed" frameborder="0" allow="camera; microphone; display-capture; encrypted-media; fullscreen" referrerpolicy="strict-origin-when-cross-origin" allowfullscreen></iframe>`

// Recorded builds the public embed code for a recorded video
func Recorded(identity fermion.Identity) Code {
	embedURL := fmt.Sprintf("https://%s/embed/recorded-video?video-id=%s",
		identity.Hostname(), url.QueryEscape(identity.ContentID()))
	return render(embedURL)
}

// RecordedPrivate builds the private embed code for a recorded video,
// carrying the caller-supplied JWT as a token query parameter
func RecordedPrivate(identity fermion.Identity, jwtToken string) Code {
	embedURL := fmt.Sprintf("https://%s/embed/recorded-video?video-id=%s&token=%s",
		identity.Hostname(), url.QueryEscape(identity.ContentID()), url.QueryEscape(jwtToken))
	return render(embedURL)
}

// Live builds the embed code for a livestream session. There is no public
// livestream embed, so the token is always required.
func Live(identity fermion.Identity, jwtToken string) Code {
	embedURL := fmt.Sprintf("https://%s/embed/live-session?liveEventSessionId=%s&token=%s",
		identity.Hostname(), url.QueryEscape(identity.ContentID()), url.QueryEscape(jwtToken))
	return render(embedURL)
}

func render(embedURL string) Code {
	return Code{
		URL:  embedURL,
		HTML: fmt.Sprintf(iframeTemplate, embedURL),
	}
}
