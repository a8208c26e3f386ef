package guard

import "fastauth/internal/jwtcore"

// CustomGuard wraps Base directly for issuers whose custom-claims rule
// doesn't warrant a dedicated type (_examples/original_source's generic
// fa-guard-jwt-rs256 contract, which any issuer can be configured against
// without a bespoke guard implementation).
type CustomGuard struct {
	*Base
}

// NewCustomGuard constructs a guard with an arbitrary custom-claims hook.
// Pass noCustomClaims-equivalent (nil) for issuers that only need the
// registered claim set.
func NewCustomGuard(issuer string, keys []PublicKey, custom jwtcore.CustomClaimsFunc, clock jwtcore.Clock, requireAlgHeader bool) (*CustomGuard, error) {
	if custom == nil {
		custom = noCustomClaims
	}
	base, err := NewBase(issuer, keys, custom, clock, requireAlgHeader)
	if err != nil {
		return nil, err
	}
	return &CustomGuard{Base: base}, nil
}
