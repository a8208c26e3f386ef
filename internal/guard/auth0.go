package guard

import "fastauth/internal/jwtcore"

// Auth0Guard verifies tokens from an Auth0 tenant. Auth0 issues subjects
// like "auth0|<id>" or "google-oauth2|<id>" and adds no additional claim
// requirements beyond the registered set, so it needs no custom-claims
// hook (_examples/original_source/contracts/auth0-guard/src/lib.rs).
type Auth0Guard struct {
	*Base
}

// NewAuth0Guard constructs a guard configured for a single Auth0 issuer.
func NewAuth0Guard(issuer string, keys []PublicKey, clock jwtcore.Clock) (*Auth0Guard, error) {
	base, err := NewBase(issuer, keys, noCustomClaims, clock, true)
	if err != nil {
		return nil, err
	}
	return &Auth0Guard{Base: base}, nil
}
