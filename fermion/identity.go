// Package fermion holds the shared pieces of the playback SDK facades:
// the validated content-identity binding and the errors both facades raise.
package fermion

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidHostname is returned when a hostname cannot form a valid
// https:// URL at facade construction time
var ErrInvalidHostname = errors.New("invalid hostname")

// Identity is a validated binding of a content ID to a site hostname.
// It is constructed once per facade and never mutated afterwards.
type Identity struct {
	contentID string
	hostname  string
}

// NewIdentity validates the hostname and binds it to the content ID.
// The hostname must parse as the authority of an absolute https:// URL;
// anything else fails construction permanently.
func NewIdentity(contentID, hostname string) (Identity, error) {
	if err := validateHostname(hostname); err != nil {
		return Identity{}, err
	}
	return Identity{
		contentID: contentID,
		hostname:  hostname,
	}, nil
}

// ContentID returns the content identifier bound at construction
func (i Identity) ContentID() string {
	return i.contentID
}

// Hostname returns the validated site hostname
func (i Identity) Hostname() string {
	return i.hostname
}

// validateHostname checks that prefixing the hostname with https:// yields
// a syntactically valid absolute URL whose host is the hostname itself
func validateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("%w: hostname is empty", ErrInvalidHostname)
	}

	parsed, err := url.Parse("https://" + hostname)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidHostname, hostname, err)
	}

	// url.Parse is lenient with some malformed authorities; require that the
	// parse consumed the whole hostname as the host component
	if parsed.Host != hostname || parsed.Path != "" {
		return fmt.Errorf("%w: %q does not form a valid https URL", ErrInvalidHostname, hostname)
	}

	return nil
}
