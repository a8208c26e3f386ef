package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"fastauth/internal/jwtcore"
)

// PreClaimLookup is the read-only view into internal/preclaim that
// FirebaseGuard needs: the digest an account pre-committed to, and whether
// the account is registered at all (spec.md §4.6).
type PreClaimLookup interface {
	Digest(ctx context.Context, account string) (digest []byte, registered bool, err error)
}

// FirebaseGuard implements the pre-claim-bound custom-claims rule from
// spec.md §4.5: the caller must have pre-registered
// pre_claim[caller] == SHA-256(payload_bytes) before presenting the token.
// This closes the replay window where a stolen JWT could be submitted by a
// different account (property P10,
// _examples/original_source/contracts/firebase-guard/src/lib.rs).
type FirebaseGuard struct {
	*Base
	preClaims PreClaimLookup
}

// NewFirebaseGuard constructs a guard that binds every verification to the
// caller's pre-registered digest.
func NewFirebaseGuard(issuer string, keys []PublicKey, preClaims PreClaimLookup, clock jwtcore.Clock) (*FirebaseGuard, error) {
	g := &FirebaseGuard{preClaims: preClaims}
	custom := func(payloadBytes, _ []byte, caller string) (bool, string) {
		return g.checkPreClaim(payloadBytes, caller)
	}
	base, err := NewBase(issuer, keys, custom, clock, true)
	if err != nil {
		return nil, err
	}
	g.Base = base
	return g, nil
}

// checkPreClaim panics if caller never registered (spec.md §4.5: "policy
// decision: they should have called storage_deposit + claim_oidc first"),
// and otherwise returns (false, reason) on any digest mismatch.
func (g *FirebaseGuard) checkPreClaim(payloadBytes []byte, caller string) (bool, string) {
	digest, registered, err := g.preClaims.Digest(context.Background(), caller)
	if err != nil {
		panic(fmt.Sprintf("guard: looking up pre-claim for %s: %v", caller, err))
	}
	if !registered {
		panic(fmt.Sprintf("guard: account %s is not registered for pre-claim binding", caller))
	}

	actual := sha256.Sum256(payloadBytes)
	if !equalBytes(actual[:], digest) {
		return false, fmt.Sprintf("Claim for user %s not matching hash %s", caller, hex.EncodeToString(digest))
	}
	return true, ""
}
