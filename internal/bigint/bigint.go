// Package bigint implements fixed-precision unsigned integer arithmetic
// sized to a caller-declared bit width. It backs the RS256 verifier in
// internal/rs256 and intentionally exposes nothing beyond what RSASSA-PKCS1-
// v1_5 verification needs: big-endian byte conversion, bit access, and
// modular multiplication/exponentiation.
//
// Every operation here works on public values only (modulus, public
// exponent, signature) — no secret data ever flows through this package, so
// the variable-time math/big primitives underneath are an acceptable
// implementation choice (see DESIGN.md).
package bigint

import (
	"fmt"
	"math/big"
)

// Int is an unsigned integer fixed to a declared bit precision.
type Int struct {
	v         *big.Int
	precision int
}

// FromBigEndian parses a big-endian byte slice into an Int of the given bit
// precision. It fails if the value needs more bits than precision allows.
func FromBigEndian(b []byte, precision int) (*Int, error) {
	v := new(big.Int).SetBytes(b)
	if v.BitLen() > precision {
		return nil, fmt.Errorf("bigint: value needs %d bits, exceeds precision %d", v.BitLen(), precision)
	}
	return &Int{v: v, precision: precision}, nil
}

// ToBigEndian returns the minimal-length big-endian encoding of x.
func (x *Int) ToBigEndian() []byte {
	return x.v.Bytes()
}

// ToBigEndianPadded returns the big-endian encoding of x left-padded with
// zero bytes to exactly length bytes. It fails if the minimal encoding is
// already longer than length.
func (x *Int) ToBigEndianPadded(length int) ([]byte, error) {
	raw := x.v.Bytes()
	if len(raw) > length {
		return nil, fmt.Errorf("bigint: minimal encoding is %d bytes, exceeds requested length %d", len(raw), length)
	}
	out := make([]byte, length)
	copy(out[length-len(raw):], raw)
	return out, nil
}

// Bits returns the effective bit length of x (position of the highest set
// bit, plus one). Zero has bit length 0.
func (x *Int) Bits() int {
	return x.v.BitLen()
}

// Bit returns the boolean value of bit i (LSB = bit 0).
func (x *Int) Bit(i int) bool {
	return x.v.Bit(i) == 1
}

// IsOdd reports whether x's least-significant bit is set.
func (x *Int) IsOdd() bool {
	return x.v.Bit(0) == 1
}

// Cmp returns -1, 0 or +1 as x is less than, equal to, or greater than y.
func Cmp(x, y *Int) int {
	return x.v.Cmp(y.v)
}

// MulMod returns (a*b) mod m, fixed to m's precision.
func MulMod(a, b, m *Int) *Int {
	r := new(big.Int).Mul(a.v, b.v)
	r.Mod(r, m.v)
	return &Int{v: r, precision: m.precision}
}

// PowMod returns base^exp mod m via square-and-multiply, fixed to m's
// precision. m must be odd; callers enforce that precondition before
// calling (spec.md §4.1) — PowMod panics if it is not, since an even
// modulus means the caller already violated an RSA public-key invariant
// that should have been rejected earlier.
func PowMod(base, exp, m *Int) *Int {
	if !m.IsOdd() {
		panic("bigint: PowMod requires an odd modulus")
	}
	r := new(big.Int).Exp(base.v, exp.v, m.v)
	return &Int{v: r, precision: m.precision}
}
