package router

import (
	"errors"
	"strings"

	"fastauth/internal/host"
)

const (
	// MaxGuardNameBytes bounds a registered guard name (spec.md §3
	// GuardRegistry invariant).
	MaxGuardNameBytes = 2048

	// MaxAccountIDBytes bounds the account id a guard name maps to.
	MaxAccountIDBytes = 64
)

var (
	ErrGuardNameContainsHash = errors.New("router: guard name must not contain '#'")
	ErrGuardNameTooLong      = errors.New("router: guard name exceeds maximum length")
	ErrAccountIDTooLong      = errors.New("router: account id exceeds maximum length")
	ErrGuardAlreadyExists    = errors.New("router: guard name already registered")
	ErrGuardNotFound         = errors.New("router: guard not found")
)

// Registry maps guard names to the account (guard implementation key) they
// resolve to. It is the Go analogue of spec.md §3's GuardRegistry, backed by
// a host.KV so the storage itself carries the "exclusive mutable access per
// RPC frame" property spec.md §5 describes rather than a bare map.
type Registry struct {
	kv host.KV
}

// NewRegistry creates an empty guard registry over a fresh in-memory KV.
func NewRegistry() *Registry {
	return &Registry{kv: host.NewMemoryKV()}
}

// Add implements add_guard: validates name shape and uniqueness before
// inserting. No deposit or fee is checked, here or in Router.AddGuard.
func (r *Registry) Add(name, account string) error {
	if strings.Contains(name, "#") {
		return ErrGuardNameContainsHash
	}
	if len(name) > MaxGuardNameBytes {
		return ErrGuardNameTooLong
	}
	if len(account) > MaxAccountIDBytes {
		return ErrAccountIDTooLong
	}
	if _, exists := r.kv.Get(name); exists {
		return ErrGuardAlreadyExists
	}
	r.kv.Set(name, account)
	return nil
}

// Remove implements remove_guard.
func (r *Registry) Remove(name string) error {
	if _, exists := r.kv.Get(name); !exists {
		return ErrGuardNotFound
	}
	r.kv.Delete(name)
	return nil
}

// Get implements get_guard: returns the account a name resolves to.
func (r *Registry) Get(name string) (string, error) {
	account, ok := r.kv.Get(name)
	if !ok {
		return "", ErrGuardNotFound
	}
	return account, nil
}

// Snapshot returns a copy of the guard name -> account map, for
// persistence (internal/store's guards_map, spec.md §6).
func (r *Registry) Snapshot() map[string]string {
	keys := r.kv.Keys()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := r.kv.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// Restore replaces the registry's contents with a previously-persisted
// snapshot. Only ever called once, before a router starts serving traffic.
func (r *Registry) Restore(guards map[string]string) {
	kv := host.NewMemoryKV()
	for k, v := range guards {
		kv.Set(k, v)
	}
	r.kv = kv
}
