// Package pipeline implements the verify-then-sign orchestration that
// forwards a verified token's subject to the MPC signing oracle (spec.md
// §4.8).
package pipeline

// PathScheme selects how the MPC derivation path is composed from the
// compound guard_id and the verified subject — spec.md §9 open question 2
// leaves this policy-dependent.
type PathScheme int

const (
	// GuardIDSubject yields "<guard_id>#<subject>", i.e. the full compound
	// id (including any suffix) concatenated with the subject. This is the
	// default: it never discards the suffix the caller originally routed
	// through, at the cost of producing "<prefix>#<suffix>#<subject>" when
	// a suffix is present.
	GuardIDSubject PathScheme = iota

	// PrefixSubject yields "<prefix>#<subject>", discarding the suffix
	// entirely and deriving the path purely from which guard handled the
	// request plus the verified identity.
	PrefixSubject
)

// DerivePath builds the MPC signing path per the configured scheme.
func DerivePath(scheme PathScheme, guardID, prefix, subject string) string {
	switch scheme {
	case PrefixSubject:
		return prefix + "#" + subject
	default:
		return guardID + "#" + subject
	}
}
