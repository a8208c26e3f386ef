package preclaim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func digestOf(b byte) []byte {
	d := make([]byte, DigestSize)
	d[0] = b
	return d
}

func TestMemoryStore_DepositAndBalance(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	refund, err := s.Deposit(ctx, "alice", MinStorageDeposit+500)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), refund)

	balance, ok, err := s.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Balance{Total: MinStorageDeposit, Available: 0}, balance)
}

func TestMemoryStore_DepositInsufficientAttached(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Deposit(context.Background(), "alice", MinStorageDeposit-1)
	assert.ErrorIs(t, err, ErrInsufficientDeposit)
}

func TestMemoryStore_DepositAlreadyRegisteredRefundsInFull(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)

	refund, err := s.Deposit(ctx, "alice", MinStorageDeposit+777)
	require.NoError(t, err)
	assert.Equal(t, uint64(MinStorageDeposit+777), refund)
}

func TestMemoryStore_ClaimOIDCRequiresRegistration(t *testing.T) {
	s := NewMemoryStore()
	err := s.ClaimOIDC(context.Background(), "bob", digestOf(1))
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestMemoryStore_ClaimOIDCRejectsWrongDigestSize(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)

	err = s.ClaimOIDC(ctx, "alice", make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidDigestSize)

	err = s.ClaimOIDC(ctx, "alice", make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidDigestSize)
}

func TestMemoryStore_ClaimOIDCOverwritesDigest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)

	require.NoError(t, s.ClaimOIDC(ctx, "alice", digestOf(7)))

	digest, registered, err := s.Digest(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, registered)
	assert.Equal(t, digestOf(7), digest)
}

func TestMemoryStore_UnregisterWithoutForceRequiresZeroDigest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)
	require.NoError(t, s.ClaimOIDC(ctx, "alice", digestOf(9)))

	_, err = s.Unregister(ctx, "alice", UnregisterUnit, false)
	assert.ErrorIs(t, err, ErrPreClaimNotZero)

	refund, err := s.Unregister(ctx, "alice", UnregisterUnit, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(MinStorageDeposit+UnregisterUnit), refund)

	_, registered, err := s.Digest(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, registered)
}

func TestMemoryStore_UnregisterWithZeroDigestSucceedsWithoutForce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)

	refund, err := s.Unregister(ctx, "alice", UnregisterUnit, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(MinStorageDeposit+UnregisterUnit), refund)
}

func TestMemoryStore_UnregisterWrongAttachment(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)

	_, err = s.Unregister(ctx, "alice", 2, false)
	assert.ErrorIs(t, err, ErrWrongUnregisterAttachment)
}

func TestMemoryStore_WithdrawRejectsNonzeroAmount(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)

	_, err = s.Withdraw(ctx, "alice", UnregisterUnit, 1)
	assert.ErrorIs(t, err, ErrNonzeroWithdrawAmount)
}

func TestMemoryStore_WithdrawReturnsCurrentBalance(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)

	balance, err := s.Withdraw(ctx, "alice", UnregisterUnit, 0)
	require.NoError(t, err)
	assert.Equal(t, Balance{Total: MinStorageDeposit, Available: 0}, balance)
}

func TestMemoryStore_DigestUnregisteredAccount(t *testing.T) {
	s := NewMemoryStore()
	digest, registered, err := s.Digest(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Nil(t, digest)
}

func TestMemoryStore_PreClaimMismatchAcrossAccounts(t *testing.T) {
	// P10: a digest bound to alice must never satisfy a lookup for bob.
	s := NewMemoryStore()
	ctx := context.Background()
	_, err := s.Deposit(ctx, "alice", MinStorageDeposit)
	require.NoError(t, err)
	_, err = s.Deposit(ctx, "bob", MinStorageDeposit)
	require.NoError(t, err)
	require.NoError(t, s.ClaimOIDC(ctx, "alice", digestOf(3)))

	bobDigest, registered, err := s.Digest(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, registered)
	assert.NotEqual(t, digestOf(3), bobDigest)
}
