package router

import (
	"context"
	"errors"

	"fastauth/internal/guard"
	"fastauth/internal/host"
)

// ErrPaused is returned by every gated operation while the router is paused.
var ErrPaused = errors.New("router: paused")

// GuardResolver maps a registry account to the concrete guard.Guard
// instance that verifies tokens for it. In the original contract this was
// a cross-contract account lookup; here it's an in-process registry of
// already-constructed guards (one per configured issuer).
type GuardResolver interface {
	Resolve(account string) (guard.Guard, bool)
}

// MPCConfig carries the signing-oracle coordinates the pipeline needs to
// build a request (spec.md §4.7 state: mpc_address, mpc_key_version,
// mpc_domain_id).
type MPCConfig struct {
	Address    string
	KeyVersion uint32
	DomainID   string
}

// Router is the entry point dispatching verify calls to a named guard by
// compound identifier, gated by pause state and role checks (spec.md §4.7).
type Router struct {
	roles    *host.RoleSet
	registry *Registry
	guards   GuardResolver
	paused   bool
	mpc      MPCConfig
}

// New constructs a router owned by owner, with pauser initially equal to
// owner (host.NewRoleSet's default).
func New(owner string, guards GuardResolver) *Router {
	return &Router{
		roles:    host.NewRoleSet(owner),
		registry: NewRegistry(),
		guards:   guards,
	}
}

// Roles exposes the role set for admin-path wiring (change_owner, set_pauser).
func (rt *Router) Roles() *host.RoleSet { return rt.roles }

// Paused reports whether the router is currently paused. It is the one
// operation spec.md §4.7 exempts from pause gating.
func (rt *Router) Paused() bool { return rt.paused }

// Pause requires the pauser role.
func (rt *Router) Pause(caller string) error {
	if err := rt.roles.RequirePauser(caller); err != nil {
		return err
	}
	rt.paused = true
	return nil
}

// Unpause requires the owner role, distinct from the pauser check even
// when the same account holds both roles.
func (rt *Router) Unpause(caller string) error {
	if err := rt.roles.RequireOwner(caller); err != nil {
		return err
	}
	rt.paused = false
	return nil
}

func (rt *Router) requireNotPaused() error {
	if rt.paused {
		return ErrPaused
	}
	return nil
}

// AddGuard implements add_guard: owner role, not paused.
func (rt *Router) AddGuard(caller, name, account string) error {
	if err := rt.requireNotPaused(); err != nil {
		return err
	}
	if err := rt.roles.RequireOwner(caller); err != nil {
		return err
	}
	return rt.registry.Add(name, account)
}

// RemoveGuard implements remove_guard: owner role, not paused.
func (rt *Router) RemoveGuard(caller, name string) error {
	if err := rt.requireNotPaused(); err != nil {
		return err
	}
	if err := rt.roles.RequireOwner(caller); err != nil {
		return err
	}
	return rt.registry.Remove(name)
}

// GetGuard implements get_guard: not paused; errors (the generic-process
// substitute for "panics") if missing.
func (rt *Router) GetGuard(name string) (string, error) {
	if err := rt.requireNotPaused(); err != nil {
		return "", err
	}
	return rt.registry.Get(name)
}

// ResolveGuardByName looks up a registered guard name's account and
// resolves it to the concrete guard.Guard instance, for admin paths
// (set_public_keys) that need to operate on a specific guard rather than
// dispatch a verify call.
func (rt *Router) ResolveGuardByName(name string) (guard.Guard, error) {
	account, err := rt.registry.Get(name)
	if err != nil {
		return nil, err
	}
	g, ok := rt.guards.Resolve(account)
	if !ok {
		return nil, ErrGuardNotFound
	}
	return g, nil
}

// SetMPCConfig updates the signing-oracle coordinates. Owner-gated like
// the other admin setters (set_mpc_address, set_mpc_key_version,
// set_mpc_domain_id in spec.md §4.7's state list).
func (rt *Router) SetMPCConfig(caller string, cfg MPCConfig) error {
	if err := rt.requireNotPaused(); err != nil {
		return err
	}
	if err := rt.roles.RequireOwner(caller); err != nil {
		return err
	}
	rt.mpc = cfg
	return nil
}

// MPC returns the current signing-oracle configuration.
func (rt *Router) MPC() MPCConfig { return rt.mpc }

// State is the persistable snapshot of everything a Router holds beyond
// its in-process guard resolver — the guards_map, singleton config keys
// and pause flag from spec.md §6's "Persisted state layout".
type State struct {
	Owner  string
	Pauser string
	Paused bool
	Guards map[string]string
	MPC    MPCConfig
}

// Snapshot captures the router's current persistable state.
func (rt *Router) Snapshot() State {
	return State{
		Owner:  rt.roles.Owner(),
		Pauser: rt.roles.Pauser(),
		Paused: rt.paused,
		Guards: rt.registry.Snapshot(),
		MPC:    rt.mpc,
	}
}

// Restore loads a previously-persisted snapshot. Only ever called once,
// immediately after New, before the router is handed to the HTTP surface.
func (rt *Router) Restore(s State) {
	rt.roles.Restore(s.Owner, s.Pauser)
	rt.paused = s.Paused
	rt.registry.Restore(s.Guards)
	rt.mpc = s.MPC
}

// Verify implements verify: not paused. Parses guard_id, looks up the
// prefix in the registry, resolves the account to a concrete guard, and
// invokes its Verify with the authenticated caller (spec.md §4.7: "invoke
// target guard's verify(suffix, verify_payload, sign_payload, caller)" —
// caller is the account that called Verify, i.e. the predecessor account,
// not the compound id's suffix). The suffix is opaque to the guard; it
// only constrains the expected subject (spec.md §4.7 line 54), checked
// here after the guard returns.
func (rt *Router) Verify(ctx context.Context, guardID string, signPayload []byte, token string, caller string) (bool, string, error) {
	if err := rt.requireNotPaused(); err != nil {
		return false, "", err
	}

	compound, err := ParseCompoundID(guardID)
	if err != nil {
		return false, "", err
	}

	account, err := rt.registry.Get(compound.Prefix)
	if err != nil {
		return false, "", err
	}

	g, ok := rt.guards.Resolve(account)
	if !ok {
		return false, "", ErrGuardNotFound
	}

	verified, subject := g.Verify(ctx, token, signPayload, caller)
	if !verified {
		return false, subject, nil
	}
	if compound.Suffix != "" && subject != compound.Suffix {
		return false, "subject does not match guard_id suffix", nil
	}
	return true, subject, nil
}
