// Package router implements the entry point that dispatches a verify/sign
// request to a named guard by compound identifier (spec.md §4.7).
package router

import (
	"errors"
	"strings"
)

// ErrEmptyPrefix is returned when a compound id has no prefix before '#'.
var ErrEmptyPrefix = errors.New("router: guard_id prefix is empty")

// CompoundID is a parsed "<prefix>#<suffix>" guard identifier. Suffix may
// be empty for non-verify calls such as add_guard/remove_guard, and a
// bare guard_id with no '#' parses to an empty suffix.
type CompoundID struct {
	Prefix string
	Suffix string
}

// ParseCompoundID splits guard_id on the first '#'. Everything after the
// first '#', including further '#' characters, belongs to the suffix
// (spec.md §4.7: "more than one # is allowed and the second-and-later are
// part of the suffix"). The prefix must be non-empty; P7 requires it never
// contain '#', which holds structurally since split stops at the first one.
func ParseCompoundID(guardID string) (CompoundID, error) {
	prefix, suffix, found := strings.Cut(guardID, "#")
	if prefix == "" {
		return CompoundID{}, ErrEmptyPrefix
	}
	if !found {
		return CompoundID{Prefix: prefix, Suffix: ""}, nil
	}
	return CompoundID{Prefix: prefix, Suffix: suffix}, nil
}

// String reassembles the compound id; an empty suffix yields the bare
// prefix with no trailing '#'.
func (c CompoundID) String() string {
	if c.Suffix == "" {
		return c.Prefix
	}
	return c.Prefix + "#" + c.Suffix
}
