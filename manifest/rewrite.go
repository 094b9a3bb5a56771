// Package manifest implements the HLS playlist rewriting core: patching a
// CDN-delivered M3U8 with a locally embedded clearkey reference and signed
// authorization query parameters.
//
// The rewrite is deliberately line-oriented rather than a full grammar
// parse. The playlist format is line-delimited by design, so splitting on
// newlines, patching the two line kinds that need it, and passing everything
// else through verbatim preserves structural correctness without a parser.
package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	headerTag = "#EXTM3U"
	keyTag    = "#EXT-X-KEY:"
)

// ErrMissingIV is returned when a key-directive line carries no IV attribute
// and the active rewrite mode requires one
var ErrMissingIV = errors.New("EXT-X-KEY line is missing the IV attribute")

var ivAttrPattern = regexp.MustCompile(`IV=(0[xX][0-9A-Fa-f]+|[^,\s]+)`)

// RewriteParams carries everything a single offline rewrite needs
type RewriteParams struct {
	// SegmentBaseURL is the manifest's own directory joined to the CDN
	// origin, without a trailing slash. Segment lines are resolved against
	// it (sibling-relative resolution).
	SegmentBaseURL string
	// SignedQuery is the authorization query string, usually in leading-"?"
	// form. May be empty.
	SignedQuery string
	// KeyURI is the clearkey data URI to patch into the key directive.
	// Empty means the content is unencrypted and key lines are left alone.
	KeyURI string
}

// RewriteRecorded rewrites a recorded-video playlist. The recorded path
// requires an IV on every key-directive line, whether or not a key was
// actually supplied; a key line without one aborts the whole rewrite.
func RewriteRecorded(text string, params RewriteParams) (string, error) {
	return rewriteOffline(text, params, true)
}

// RewriteLive rewrites a livestream playlist in offline mode. Unlike the
// recorded path, a key-directive line without an IV is passed through
// untouched instead of failing the rewrite.
func RewriteLive(text string, params RewriteParams) (string, error) {
	return rewriteOffline(text, params, false)
}

// rewriteOffline is the shared offline-mode loop: absolute segment URLs,
// at most one patched key directive, everything else verbatim.
func rewriteOffline(text string, params RewriteParams, requireIV bool) (string, error) {
	lines := strings.Split(text, "\n")
	var result strings.Builder
	keyInserted := false

	for i, line := range lines {
		// Add newline for all lines except the first
		if i > 0 {
			result.WriteString("\n")
		}

		switch {
		case line == headerTag:
			result.WriteString(line)

		case strings.HasPrefix(line, keyTag):
			rewritten, inserted, err := rewriteKeyLine(line, params.KeyURI, requireIV, keyInserted)
			if err != nil {
				return "", err
			}
			keyInserted = keyInserted || inserted
			result.WriteString(rewritten)

		case line == "" || strings.HasPrefix(line, "#"):
			// Blank lines and all other directives/comments pass through
			result.WriteString(line)

		default:
			// A bare line is a segment or sub-playlist reference: make it
			// absolute and authorized
			result.WriteString(params.SegmentBaseURL)
			result.WriteString("/")
			result.WriteString(line)
			result.WriteString(params.SignedQuery)
		}
	}

	return result.String(), nil
}

// RewriteStreaming patches one manifest payload inside an HLS engine's
// loading pipeline. Segment lines keep their original (already resolvable)
// form and only gain the signed query; key lines are rewritten only when a
// key URI is configured, and a missing IV is tolerated.
func RewriteStreaming(text, keyURI, signedQuery string) string {
	lines := strings.Split(text, "\n")
	var result strings.Builder
	keyInserted := false

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		switch {
		case strings.HasPrefix(line, keyTag):
			rewritten, inserted, _ := rewriteKeyLine(line, keyURI, false, keyInserted)
			keyInserted = keyInserted || inserted
			result.WriteString(rewritten)

		case line == "" || strings.HasPrefix(line, "#"):
			result.WriteString(line)

		default:
			result.WriteString(appendSignedQuery(line, signedQuery))
		}
	}

	return result.String()
}

// rewriteKeyLine handles a single #EXT-X-KEY line. It reports whether the
// patched key directive was emitted for this line. Only the first key line
// with a usable IV is patched; later ones pass through so manifests that
// signal per-segment key rotation keep their original structure.
func rewriteKeyLine(line, keyURI string, requireIV, alreadyInserted bool) (string, bool, error) {
	match := ivAttrPattern.FindStringSubmatch(line)

	if match == nil {
		if requireIV {
			return "", false, fmt.Errorf("%w: %q", ErrMissingIV, line)
		}
		return line, false, nil
	}

	if keyURI == "" || alreadyInserted {
		return line, false, nil
	}

	iv := match[1]
	return fmt.Sprintf(`#EXT-X-KEY:METHOD=AES-128,URI="%s",IV=%s`, keyURI, iv), true, nil
}

// appendSignedQuery joins the authorization query onto a segment URI,
// whether or not the URI already carries a query string of its own
func appendSignedQuery(line, signedQuery string) string {
	if signedQuery == "" {
		return line
	}
	if strings.Contains(line, "?") {
		return line + "&" + strings.TrimPrefix(signedQuery, "?")
	}
	if strings.HasPrefix(signedQuery, "?") {
		return line + signedQuery
	}
	return line + "?" + signedQuery
}

// SegmentBaseURL derives the rewrite base for a manifest: the CDN origin
// joined to the manifest pathname with its final path segment removed
func SegmentBaseURL(origin, pathname string) string {
	trimmed := strings.TrimSuffix(origin, "/")
	idx := strings.LastIndex(pathname, "/")
	if idx <= 0 {
		return trimmed
	}
	return trimmed + pathname[:idx]
}
