package guard

import "fmt"

// publicKeyModulusBytes and publicExponent are the invariants spec.md §3
// fixes for every PublicKey: a 2048-bit modulus and a public exponent of
// exactly 65537 (0x010001). No other exponent is accepted.
const publicKeyModulusBytes = 256

var publicExponent = []byte{0x01, 0x00, 0x01}

// PublicKey is an RSA public key as the guard stores and rotates it
// (spec.md §3 "PublicKey").
type PublicKey struct {
	N []byte // exactly 256 bytes, big-endian, odd
	E []byte // must equal {0x01, 0x00, 0x01} (65537)
}

// Validate enforces the PublicKey invariants from spec.md §3/§4.5: checked
// on every admin set_public_keys call, never skipped.
func (k PublicKey) Validate() error {
	if len(k.N) != publicKeyModulusBytes {
		return fmt.Errorf("guard: modulus must be %d bytes, got %d", publicKeyModulusBytes, len(k.N))
	}
	if len(k.N) == 0 || k.N[len(k.N)-1]&1 == 0 {
		return fmt.Errorf("guard: modulus must be odd")
	}
	if !equalBytes(k.E, publicExponent) {
		return fmt.Errorf("guard: exponent must be 65537 (0x010001)")
	}
	return nil
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValidateKeys runs Validate over an entire key set, as required before any
// set_public_keys call commits (spec.md §4.5): a single bad key rejects the
// whole batch rather than partially replacing the rotation set.
func ValidateKeys(keys []PublicKey) error {
	for i, k := range keys {
		if err := k.Validate(); err != nil {
			return fmt.Errorf("guard: key %d invalid: %w", i, err)
		}
	}
	return nil
}
