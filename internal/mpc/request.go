// Package mpc implements a typed client for the external threshold-signing
// oracle the signing pipeline forwards derivation requests to (spec.md
// §4.8, GLOSSARY "MPC oracle").
package mpc

import (
	"encoding/hex"
	"errors"
)

// ErrUnsupportedAlgorithm is returned for any algorithm value other than
// "secp256k1", "ecdsa", or "eddsa".
var ErrUnsupportedAlgorithm = errors.New("mpc: unsupported signing algorithm")

// LegacyRequest is the pre-v2 secp256k1 request shape.
type LegacyRequest struct {
	Payload    []byte `json:"payload"`
	Path       string `json:"path"`
	KeyVersion uint32 `json:"key_version"`
}

// PayloadV2 tags which curve a v2 request targets.
type PayloadV2 struct {
	EcdsaHex string `json:"ecdsa_hex,omitempty"`
	EddsaHex string `json:"eddsa_hex,omitempty"`
}

// V2Request is the ecdsa/eddsa request shape introduced alongside domain_id.
type V2Request struct {
	Path      string    `json:"path"`
	PayloadV2 PayloadV2 `json:"payload_v2"`
	DomainID  string    `json:"domain_id"`
}

// BuildRequest constructs the MPC oracle request for the given algorithm,
// implementing spec.md §4.8 stage 4's branch:
//   - "secp256k1" -> LegacyRequest carrying the raw hash bytes
//   - "ecdsa"/"eddsa" -> V2Request carrying hex(hash) in the matching
//     PayloadV2 field
//
// hash is SHA-256(sign_payload).
func BuildRequest(algorithm, path string, hash []byte, keyVersion uint32, domainID string) (any, error) {
	switch algorithm {
	case "secp256k1":
		return LegacyRequest{Payload: hash, Path: path, KeyVersion: keyVersion}, nil
	case "ecdsa":
		return V2Request{Path: path, PayloadV2: PayloadV2{EcdsaHex: hex.EncodeToString(hash)}, DomainID: domainID}, nil
	case "eddsa":
		return V2Request{Path: path, PayloadV2: PayloadV2{EddsaHex: hex.EncodeToString(hash)}, DomainID: domainID}, nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}
