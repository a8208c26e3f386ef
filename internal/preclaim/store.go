// Package preclaim implements the storage-deposit-gated registration
// lifecycle that binds an account to a committed JWT payload digest before
// the firebase guard will accept tokens from it (spec.md §4.6).
package preclaim

import (
	"context"
	"errors"
)

const (
	// DigestSize is the only accepted pre-claim digest length (SHA-256).
	DigestSize = 32

	// MinStorageBytes is the per-account storage quota charged on
	// registration, mirroring the original contract's account_storage_bytes.
	MinStorageBytes = 128

	// StorageCostPerByte prices MinStorageBytes into MinStorageDeposit.
	StorageCostPerByte = 10_000_000_000_000_000 // yocto-equivalent unit, kept from the original pricing model

	// MinStorageDeposit is the minimum deposit storage_deposit requires.
	MinStorageDeposit = MinStorageBytes * StorageCostPerByte

	// UnregisterUnit is the attached amount storage_unregister and
	// storage_withdraw require ("1 unit of account" in spec.md §4.6).
	UnregisterUnit = 1
)

var (
	// ErrInsufficientDeposit is returned when storage_deposit's attached
	// amount is below MinStorageDeposit.
	ErrInsufficientDeposit = errors.New("preclaim: attached deposit below minimum storage cost")

	// ErrNotRegistered is returned by operations that require prior
	// storage_deposit.
	ErrNotRegistered = errors.New("preclaim: account is not registered")

	// ErrAlreadyRegistered names the storage_deposit "already registered"
	// case. Neither Store implementation returns it: Deposit reports that
	// case as a full refund of the attached amount with a nil error.
	ErrAlreadyRegistered = errors.New("preclaim: account already registered")

	// ErrInvalidDigestSize is panics-worth-of-invariant P9: claim_oidc must
	// receive exactly a 32-byte digest.
	ErrInvalidDigestSize = errors.New("preclaim: digest must be exactly 32 bytes")

	// ErrWrongUnregisterAttachment guards storage_unregister's attached
	// amount precondition.
	ErrWrongUnregisterAttachment = errors.New("preclaim: storage_unregister requires attaching exactly 1 unit")

	// ErrNonzeroWithdrawAmount enforces storage_withdraw's tight amount==0
	// bound (spec.md §4.6: "bounds are tight: min==max").
	ErrNonzeroWithdrawAmount = errors.New("preclaim: storage_withdraw only accepts amount 0")

	// ErrPreClaimNotZero blocks a non-forced unregister while a live
	// pre-claim commitment exists.
	ErrPreClaimNotZero = errors.New("preclaim: pre-claim digest is non-zero; pass force=true to override")
)

// Balance mirrors spec.md §4.6's storage_balance_of result: Total is the
// account's locked storage deposit, Available is always zero under the
// current fixed-cost model (nothing beyond MinStorageDeposit is ever held).
type Balance struct {
	Total     uint64
	Available uint64
}

// Store is the persistence interface for the pre-claim registration
// lifecycle. A zero digest (all 32 bytes zero) means "registered but has
// not yet called claim_oidc".
type Store interface {
	// Deposit implements storage_deposit: registers account if absent,
	// refunding (attached - MinStorageDeposit) on first registration or the
	// full attached amount if already registered. Returns the refund owed
	// to the caller.
	Deposit(ctx context.Context, account string, attached uint64) (refund uint64, err error)

	// ClaimOIDC implements claim_oidc: overwrites the caller's pre-claim
	// digest. Fails with ErrNotRegistered or ErrInvalidDigestSize per P9.
	ClaimOIDC(ctx context.Context, account string, digest []byte) error

	// Unregister implements storage_unregister. force=false requires the
	// account's current digest to be zero/absent. Returns the refund
	// (MinStorageDeposit + UnregisterUnit) owed to the caller.
	Unregister(ctx context.Context, account string, attached uint64, force bool) (refund uint64, err error)

	// Withdraw implements storage_withdraw: amount must be zero; returns
	// the account's current balance unchanged.
	Withdraw(ctx context.Context, account string, attached uint64, amount uint64) (Balance, error)

	// BalanceOf implements storage_balance_of. ok is false if the account
	// was never registered.
	BalanceOf(ctx context.Context, account string) (balance Balance, ok bool, err error)

	// Digest satisfies guard.PreClaimLookup: returns the account's current
	// pre-claim digest and whether the account is registered at all.
	Digest(ctx context.Context, account string) (digest []byte, registered bool, err error)
}

func isZeroDigest(d []byte) bool {
	for _, b := range d {
		if b != 0 {
			return false
		}
	}
	return true
}
