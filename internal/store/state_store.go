// Package store persists the router's singleton state (guard registry,
// roles, pause flag, MPC config) across restarts, the generic-process
// substitute for a chain host's durable contract storage (spec.md §6
// "Persisted state layout": guards_map, pre_claim_map, singleton scalar
// keys, binary-prefixed to avoid collisions). internal/preclaim owns the
// pre_claim_map half; this package owns everything else, under a single
// binary-encoded row keyed by stateKey.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	cbor "github.com/ipfs/go-ipld-cbor"

	"fastauth/internal/router"
)

// stateKey is the one row this package ever reads or writes — there is
// exactly one router singleton per deployment, matching the original
// contract's single-instance-per-account model.
const stateKey = "router_state_v1"

// ErrNoState is returned by Load when no state has ever been saved —
// callers should treat this as "start from a fresh router", not an error.
var ErrNoState = errors.New("store: no persisted router state")

// record is the CBOR wire shape persisted to Postgres. It mirrors
// router.State field-for-field; kept separate so router.State can evolve
// without this package's encoding silently changing shape underneath it.
type record struct {
	Owner  string
	Pauser string
	Paused bool
	Guards map[string]string
	MPCAddress    string
	MPCKeyVersion uint32
	MPCDomainID   string
}

// StateStore persists router.State to Postgres using go-ipld-cbor's
// reflection-based struct encoding (DumpObject/DecodeInto).
type StateStore struct {
	db *sql.DB
}

// NewStateStore wraps an existing Postgres connection.
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Save encodes and upserts the router's current snapshot.
func (s *StateStore) Save(ctx context.Context, state router.State) error {
	rec := record{
		Owner:         state.Owner,
		Pauser:        state.Pauser,
		Paused:        state.Paused,
		Guards:        state.Guards,
		MPCAddress:    state.MPC.Address,
		MPCKeyVersion: state.MPC.KeyVersion,
		MPCDomainID:   state.MPC.DomainID,
	}

	payload, err := cbor.DumpObject(rec)
	if err != nil {
		return fmt.Errorf("store: encoding router state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO router_state (state_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (state_key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`, stateKey, payload)
	if err != nil {
		return fmt.Errorf("store: saving router state: %w", err)
	}
	return nil
}

// Load decodes the persisted router state, or returns ErrNoState if
// nothing has been saved yet.
func (s *StateStore) Load(ctx context.Context) (router.State, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM router_state WHERE state_key = $1`, stateKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return router.State{}, ErrNoState
	}
	if err != nil {
		return router.State{}, fmt.Errorf("store: loading router state: %w", err)
	}

	var rec record
	if err := cbor.DecodeInto(payload, &rec); err != nil {
		return router.State{}, fmt.Errorf("store: decoding router state: %w", err)
	}

	return router.State{
		Owner:  rec.Owner,
		Pauser: rec.Pauser,
		Paused: rec.Paused,
		Guards: rec.Guards,
		MPC: router.MPCConfig{
			Address:    rec.MPCAddress,
			KeyVersion: rec.MPCKeyVersion,
			DomainID:   rec.MPCDomainID,
		},
	}, nil
}
