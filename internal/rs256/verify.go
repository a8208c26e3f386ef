// Package rs256 implements RSASSA-PKCS1-v1_5 signature verification with
// SHA-256, from scratch, per RFC 8017 §8.2.2. It depends on no RSA library
// — only internal/bigint for the modular exponentiation, crypto/sha256
// for the hash and crypto/subtle for constant-time comparison, all of which
// are primitives rather than RSA implementations (see DESIGN.md).
//
// This package is the security-critical core of the gateway: it must run
// the same way whether the caller is on a real OIDC token or an attacker's
// crafted one, and it never trusts anything about the claimed algorithm —
// there is exactly one verification path, and it is always RS256.
package rs256

import (
	"crypto/sha256"
	"crypto/subtle"

	"fastauth/internal/bigint"
)

const (
	modulusBytes = 256 // 2048 bits
	modulusBits  = modulusBytes * 8
	hashLen      = sha256.Size
)

// sha256DigestInfoPrefix is the fixed 19-byte ASN.1 DER prefix identifying
// the SHA-256 OID in a PKCS#1 v1.5 DigestInfo structure.
var sha256DigestInfoPrefix = []byte{
	0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20,
}

// VerifyRS256 verifies that signature is a valid RSASSA-PKCS1-v1_5
// signature over message under the RSA public key (n, e), using SHA-256.
//
// n must be exactly 256 bytes (2048-bit modulus) and odd; e is the public
// exponent, big-endian. Both are assumed pre-validated by the guard layer
// (spec.md §4.5) — VerifyRS256 itself only checks signature-shape
// preconditions (signature at most 256 bytes, sig < n, encoded message fits
// 256 bytes), which depend on sizes, not on signature content, so
// short-circuiting there leaks nothing.
func VerifyRS256(message, signature, n, e []byte) bool {
	h := sha256.Sum256(message)

	if len(signature) > modulusBytes {
		return false
	}

	sig, err := bigint.FromBigEndian(signature, modulusBits)
	if err != nil {
		return false
	}

	nz, err := bigint.FromBigEndian(n, modulusBits)
	if err != nil || !nz.IsOdd() {
		return false
	}

	if bigint.Cmp(sig, nz) >= 0 {
		return false
	}

	expInt, err := bigint.FromBigEndian(e, modulusBits)
	if err != nil {
		return false
	}

	m := bigint.PowMod(sig, expInt, nz)

	em, err := m.ToBigEndianPadded(modulusBytes)
	if err != nil {
		return false
	}

	return checkEncodedMessage(em, h[:])
}

// checkEncodedMessage validates the PKCS#1 v1.5 encoded message
// 0x00 || 0x01 || PS(0xFF...) || 0x00 || DigestInfo || Hash
// against the expected hash, accumulating every comparison into a single
// boolean via constant-time byte comparisons so that no early return is
// taken once the fixed-size structural checks have passed.
func checkEncodedMessage(em, hash []byte) bool {
	prefixLen := len(sha256DigestInfoPrefix)
	tLen := prefixLen + hashLen
	if modulusBytes < tLen+11 {
		return false
	}
	psLen := modulusBytes - tLen - 3
	if psLen < 8 {
		return false
	}

	ok := subtle.ConstantTimeByteEq(em[0], 0x00)
	ok &= subtle.ConstantTimeByteEq(em[1], 0x01)

	for i := 0; i < psLen; i++ {
		ok &= subtle.ConstantTimeByteEq(em[2+i], 0xFF)
	}

	ok &= subtle.ConstantTimeByteEq(em[2+psLen], 0x00)
	ok &= subtle.ConstantTimeCompare(em[2+psLen+1:2+psLen+1+prefixLen], sha256DigestInfoPrefix)
	ok &= subtle.ConstantTimeCompare(em[modulusBytes-hashLen:modulusBytes], hash)

	return ok == 1
}
