package jwtcore

import "encoding/json"

// Header is the parsed JWT header (spec.md §3 "JwtHeader"). alg is read but
// never trusted to select the verification algorithm — SPEC_FULL.md §5
// item 4 additionally requires it to equal "RS256" before a guard will even
// attempt verification, closing algorithm-confusion attacks defensively on
// top of the cryptographic guarantee that only RS256 is ever run.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
	Kid string `json:"kid,omitempty"`
}

// ParseHeader decodes a base64url-encoded JWT header segment.
func ParseHeader(headerB64 string) (*Header, error) {
	raw, err := DecodeSegment(headerB64)
	if err != nil {
		return nil, err
	}
	var h Header
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
