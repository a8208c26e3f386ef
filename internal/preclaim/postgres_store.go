package preclaim

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed pre-claim store.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Deposit(ctx context.Context, account string, attached uint64) (uint64, error) {
	if attached < MinStorageDeposit {
		return 0, ErrInsufficientDeposit
	}

	var existing bool
	err := s.db.QueryRowContext(ctx,
		`SELECT true FROM preclaim_accounts WHERE account = $1`, account,
	).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("preclaim: checking existing registration: %w", err)
	}
	if existing {
		return attached, nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO preclaim_accounts (account, digest, deposit) VALUES ($1, $2, $3)`,
		account, make([]byte, DigestSize), MinStorageDeposit,
	)
	if err != nil {
		return 0, fmt.Errorf("preclaim: inserting account: %w", err)
	}

	return attached - MinStorageDeposit, nil
}

func (s *postgresStore) ClaimOIDC(ctx context.Context, account string, digest []byte) error {
	if len(digest) != DigestSize {
		return ErrInvalidDigestSize
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE preclaim_accounts SET digest = $2 WHERE account = $1`, account, digest,
	)
	if err != nil {
		return fmt.Errorf("preclaim: updating digest: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("preclaim: checking claim_oidc result: %w", err)
	}
	if rows == 0 {
		return ErrNotRegistered
	}
	return nil
}

func (s *postgresStore) Unregister(ctx context.Context, account string, attached uint64, force bool) (uint64, error) {
	if attached != UnregisterUnit {
		return 0, ErrWrongUnregisterAttachment
	}

	var digest []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT digest FROM preclaim_accounts WHERE account = $1`, account,
	).Scan(&digest)
	if err == sql.ErrNoRows {
		return 0, ErrNotRegistered
	}
	if err != nil {
		return 0, fmt.Errorf("preclaim: looking up account for unregister: %w", err)
	}

	if !force && !isZeroDigest(digest) {
		return 0, ErrPreClaimNotZero
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM preclaim_accounts WHERE account = $1`, account); err != nil {
		return 0, fmt.Errorf("preclaim: deleting account: %w", err)
	}

	return MinStorageDeposit + UnregisterUnit, nil
}

func (s *postgresStore) Withdraw(ctx context.Context, account string, attached uint64, amount uint64) (Balance, error) {
	if attached != UnregisterUnit {
		return Balance{}, ErrWrongUnregisterAttachment
	}
	if amount != 0 {
		return Balance{}, ErrNonzeroWithdrawAmount
	}

	balance, ok, err := s.BalanceOf(ctx, account)
	if err != nil {
		return Balance{}, err
	}
	if !ok {
		return Balance{}, ErrNotRegistered
	}
	return balance, nil
}

func (s *postgresStore) BalanceOf(ctx context.Context, account string) (Balance, bool, error) {
	var deposit uint64
	err := s.db.QueryRowContext(ctx,
		`SELECT deposit FROM preclaim_accounts WHERE account = $1`, account,
	).Scan(&deposit)
	if err == sql.ErrNoRows {
		return Balance{}, false, nil
	}
	if err != nil {
		return Balance{}, false, fmt.Errorf("preclaim: reading balance: %w", err)
	}
	return Balance{Total: deposit, Available: 0}, true, nil
}

func (s *postgresStore) Digest(ctx context.Context, account string) ([]byte, bool, error) {
	var digest []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT digest FROM preclaim_accounts WHERE account = $1`, account,
	).Scan(&digest)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("preclaim: reading digest: %w", err)
	}
	return digest, true, nil
}
