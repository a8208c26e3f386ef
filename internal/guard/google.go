package guard

import "fastauth/internal/jwtcore"

// GoogleGuard verifies tokens issued directly by Google's OIDC provider
// (as opposed to Auth0 fronting a Google social connection, which produces
// "google-oauth2|..." subjects under Auth0Guard instead). It adds no custom
// claims beyond the registered set.
type GoogleGuard struct {
	*Base
}

// NewGoogleGuard constructs a guard configured for Google's OIDC issuer.
func NewGoogleGuard(issuer string, keys []PublicKey, clock jwtcore.Clock) (*GoogleGuard, error) {
	base, err := NewBase(issuer, keys, noCustomClaims, clock, true)
	if err != nil {
		return nil, err
	}
	return &GoogleGuard{Base: base}, nil
}
