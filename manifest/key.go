package manifest

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrOddLengthKey is returned when a hex-encoded decryption key does not
// decode to whole bytes
var ErrOddLengthKey = errors.New("decryption key hex has odd length")

// KeyFromHex decodes a hex-encoded clearkey decryption key into raw bytes.
// Each byte is two hex characters, most-significant nibble first. An
// odd-length string is an error, never silently truncated.
func KeyFromHex(hexKey string) ([]byte, error) {
	if len(hexKey)%2 != 0 {
		return nil, fmt.Errorf("%w: %d characters", ErrOddLengthKey, len(hexKey))
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid decryption key hex: %w", err)
	}

	return key, nil
}

// ClearkeyDataURI wraps raw key bytes in a text/plain data URI so a
// DRM-capable player can resolve the key without a network fetch
func ClearkeyDataURI(key []byte) string {
	return "data:text/plain;base64," + base64.StdEncoding.EncodeToString(key)
}

// ClearkeyURIFromHex is the composition used by both facades: decode the
// out-of-band hex key and package it as a locally resolvable key URI
func ClearkeyURIFromHex(hexKey string) (string, error) {
	key, err := KeyFromHex(hexKey)
	if err != nil {
		return "", err
	}
	return ClearkeyDataURI(key), nil
}
