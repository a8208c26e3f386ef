package jwtcore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Claims is the registered claim set spec.md §3 requires at minimum. Guards
// decode the same payload bytes again to read custom fields their
// CustomClaimsFunc needs; Claims only carries what every guard validates.
type Claims struct {
	Subject   string `json:"sub"`
	Issuer    string `json:"iss"`
	ExpiresAt int64  `json:"exp"`
	NotBefore *int64 `json:"nbf,omitempty"`
}

// MaxSubjectBytes and the '#' restriction on Subject come from spec.md §3:
// the subject is later embedded in a '#'-delimited MPC derivation path, so
// it must never itself contain '#', and is capped to keep that path bounded.
const MaxSubjectBytes = 256

// ParsePayload decodes a base64url-decoded JWT payload into Claims.
func ParsePayload(payloadBytes []byte) (*Claims, error) {
	var c Claims
	if err := json.Unmarshal(payloadBytes, &c); err != nil {
		return nil, fmt.Errorf("jwtcore: invalid payload JSON: %w", err)
	}
	return &c, nil
}

// ValidateSubject enforces spec.md §3's constraints on a verified subject:
// at most MaxSubjectBytes and no '#' character. Used both by guards
// returning a subject and by the signing pipeline re-checking it
// (spec.md §4.8 stage 3).
func ValidateSubject(sub string) error {
	if len(sub) > MaxSubjectBytes {
		return fmt.Errorf("jwtcore: subject exceeds %d bytes", MaxSubjectBytes)
	}
	if strings.Contains(sub, "#") {
		return fmt.Errorf("jwtcore: subject must not contain '#'")
	}
	return nil
}

// CustomClaimsFunc is the guard-supplied hook from spec.md §4.4 step 2: it
// inspects the raw payload, the payload the caller wants signed, and the
// calling account, and returns (false, reason) to short-circuit validation
// before the registered time/issuer checks run.
type CustomClaimsFunc func(payloadBytes, signPayload []byte, caller string) (ok bool, reason string)

// Clock returns the host's wall-clock time in whole seconds since the Unix
// epoch. spec.md §9 notes the execution environment has no access to a
// system clock; in this Go port the clock is always supplied by the caller
// (internal/host) rather than read directly from time.Now(), so the
// validator never reaches outside its inputs for "now".
type Clock func() int64

// ValidateClaims implements spec.md §4.4. The custom-claims hook runs
// before the time/issuer checks (per the ordering rationale at the end of
// §4.4) so a pre-claim mismatch is reported distinctly from an expired
// token. It returns (true, subject) on success, or (false, reason) on any
// failure.
func ValidateClaims(payloadBytes, signPayload []byte, caller, configuredIssuer string, custom CustomClaimsFunc, now Clock) (bool, string) {
	claims, err := ParsePayload(payloadBytes)
	if err != nil {
		return false, err.Error()
	}

	if custom != nil {
		if ok, reason := custom(payloadBytes, signPayload, caller); !ok {
			return false, reason
		}
	}

	nowSecs := now()
	if claims.ExpiresAt <= nowSecs {
		return false, "Token expired"
	}
	if claims.NotBefore != nil && *claims.NotBefore > nowSecs {
		return false, "Token not yet valid"
	}
	if claims.Issuer != configuredIssuer {
		return false, "Invalid issuer"
	}

	return true, claims.Subject
}

// RealClock returns the Go process's own wall clock. It is provided for
// completeness; nothing in this repository calls it. Production guard wiring always uses
// the host-supplied clock from internal/host, never this function directly,
// so that verification stays reproducible under a supplied "now".
func RealClock() int64 {
	return time.Now().Unix()
}
