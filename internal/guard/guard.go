// Package guard implements spec.md §4.5: an issuer-scoped verifier that
// composes the base64url/JWT splitter (internal/jwtcore), the from-scratch
// RS256 verifier (internal/rs256) and a registered-claims validator, plus a
// pluggable per-issuer custom-claims rule. Concrete guard variants
// (Auth0Guard, GoogleGuard, FirebaseGuard, CustomGuard) share this skeleton
// and differ only in their custom-claims hook — spec.md §9's "Guard
// polymorphism" note.
package guard

import (
	"context"
	"sync"

	"fastauth/internal/jwtcore"
	"fastauth/internal/rs256"
)

// Guard is the interface the router (internal/router) dispatches to.
type Guard interface {
	// Verify runs the full verification pipeline in spec.md §4.5 and
	// returns (true, subject) on success or (false, reason) on failure.
	// reason is empty on a bad signature (spec.md §7: "Signature invalid"
	// never leaks a diagnostic reason), populated on claim failures.
	Verify(ctx context.Context, token string, signPayload []byte, caller string) (bool, string)

	// Issuer returns the issuer string this guard is configured for.
	Issuer() string

	// SetPublicKeys replaces the guard's accepted key set after validating
	// every key (spec.md §4.5 rotation). The old set is left untouched if
	// validation fails.
	SetPublicKeys(keys []PublicKey) error

	// PublicKeys returns a copy of the guard's currently accepted keys.
	PublicKeys() []PublicKey
}

// Base implements the shared C2+C3+C4 skeleton. Concrete guards embed it
// and supply an issuer and a CustomClaimsFunc.
type Base struct {
	mu               sync.RWMutex
	issuer           string
	keys             []PublicKey
	customClaims     jwtcore.CustomClaimsFunc
	clock            jwtcore.Clock
	requireAlgHeader bool // SPEC_FULL.md §5 item 4: the stricter, recommended variant
}

// NewBase constructs a Base guard. clock supplies "now" for claim
// validation (spec.md §9: no system clock access; the host provides it).
// requireAlgHeader implements the stricter alg-checking variant recorded as
// the SPEC_FULL.md open-question decision.
func NewBase(issuer string, keys []PublicKey, customClaims jwtcore.CustomClaimsFunc, clock jwtcore.Clock, requireAlgHeader bool) (*Base, error) {
	if err := ValidateKeys(keys); err != nil {
		return nil, err
	}
	return &Base{
		issuer:           issuer,
		keys:             append([]PublicKey(nil), keys...),
		customClaims:     customClaims,
		clock:            clock,
		requireAlgHeader: requireAlgHeader,
	}, nil
}

func (g *Base) Issuer() string { return g.issuer }

func (g *Base) SetPublicKeys(keys []PublicKey) error {
	if err := ValidateKeys(keys); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys = append([]PublicKey(nil), keys...)
	return nil
}

func (g *Base) PublicKeys() []PublicKey {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]PublicKey(nil), g.keys...)
}

// Verify implements spec.md §4.5 steps 1-5.
func (g *Base) Verify(_ context.Context, token string, signPayload []byte, caller string) (bool, string) {
	if len(token) > jwtcore.MaxTokenBytes {
		return false, ""
	}

	headerB64, payloadB64, sigB64, err := jwtcore.SplitJWT(token)
	if err != nil {
		return false, ""
	}

	if g.requireAlgHeader {
		header, err := jwtcore.ParseHeader(headerB64)
		if err != nil || header.Alg != "RS256" {
			return false, ""
		}
	}

	sigBytes, err := jwtcore.DecodeSegment(sigB64)
	if err != nil {
		return false, ""
	}

	signingInput := headerB64 + "." + payloadB64

	keys := g.PublicKeys()
	verified := false
	for _, k := range keys {
		if rs256.VerifyRS256([]byte(signingInput), sigBytes, k.N, k.E) {
			verified = true
			break
		}
	}
	if !verified {
		return false, ""
	}

	payloadBytes, err := jwtcore.DecodeSegment(payloadB64)
	if err != nil {
		return false, ""
	}

	return jwtcore.ValidateClaims(payloadBytes, signPayload, caller, g.issuer, g.customClaims, g.clock)
}

// noCustomClaims is the identity hook for guards that add nothing beyond
// the registered claims (e.g. a plain "custom" issuer guard).
func noCustomClaims(_, _ []byte, _ string) (bool, string) { return true, "" }
