// Package jwtcore implements the non-cryptographic half of JWT handling:
// compact-serialization splitting, base64url decoding, header parsing and
// registered-claim validation. Signature verification itself lives in
// internal/rs256; this package never imports it.
package jwtcore

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// MaxTokenBytes is the maximum accepted length of a compact JWT string,
// enforced by callers before SplitJWT ever runs (spec.md §4.5 step 1, §6).
const MaxTokenBytes = 7168

// SplitJWT splits a compact JWT serialization into its three base64url
// segments. It fails unless s has exactly two '.' separators and all three
// segments are non-empty (spec.md §4.3, property P6).
func SplitJWT(s string) (header, payload, signature string, err error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("jwtcore: expected 3 segments, got %d", len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return "", "", "", fmt.Errorf("jwtcore: segment %d is empty", i)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

// DecodeSegment decodes a base64url, unpadded segment per RFC 4648 §5.
// It returns an error (rather than silently returning empty bytes) so
// callers can distinguish "malformed" from "empty"; spec.md §4.3 leaves
// that distinction to the caller.
func DecodeSegment(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("jwtcore: invalid base64url segment: %w", err)
	}
	return b, nil
}
