package manifest

import (
	"bytes"
	"errors"
	"testing"
)

func TestKeyFromHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []byte
		wantErr  error
	}{
		{
			name:     "16-byte AES key",
			input:    "00112233445566778899aabbccddeeff",
			expected: []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		},
		{
			name:     "uppercase hex",
			input:    "ABCD",
			expected: []byte{0xab, 0xcd},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []byte{},
		},
		{
			name:    "odd length",
			input:   "abc",
			wantErr: ErrOddLengthKey,
		},
		{
			name:    "non-hex characters",
			input:   "zzzz",
			wantErr: nil, // wrapped hex.InvalidByteError, checked below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := KeyFromHex(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("KeyFromHex(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if tt.name == "non-hex characters" {
				if err == nil {
					t.Fatalf("KeyFromHex(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("KeyFromHex(%q) failed: %v", tt.input, err)
			}
			if !bytes.Equal(key, tt.expected) {
				t.Errorf("KeyFromHex(%q) = %x, want %x", tt.input, key, tt.expected)
			}
		})
	}
}

func TestClearkeyDataURI(t *testing.T) {
	// base64("Hi") == "SGk="
	uri := ClearkeyDataURI([]byte("Hi"))
	if uri != "data:text/plain;base64,SGk=" {
		t.Errorf("ClearkeyDataURI() = %q", uri)
	}
}

func TestClearkeyURIFromHex(t *testing.T) {
	uri, err := ClearkeyURIFromHex("4869")
	if err != nil {
		t.Fatalf("ClearkeyURIFromHex() failed: %v", err)
	}
	if uri != "data:text/plain;base64,SGk=" {
		t.Errorf("ClearkeyURIFromHex() = %q", uri)
	}

	if _, err := ClearkeyURIFromHex("486"); !errors.Is(err, ErrOddLengthKey) {
		t.Errorf("ClearkeyURIFromHex(odd) error = %v, want ErrOddLengthKey", err)
	}
}
