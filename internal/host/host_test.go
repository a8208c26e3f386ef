package host

import "testing"

func TestRoleSetDistinctChecks(t *testing.T) {
	roles := NewRoleSet("alice")
	if err := roles.RequireOwner("alice"); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	if err := roles.RequirePauser("alice"); err != nil {
		t.Fatalf("owner is also initial pauser: %v", err)
	}

	if err := roles.SetPauser("alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := roles.RequirePauser("alice"); err == nil {
		t.Fatal("expected alice to no longer be pauser after reassignment")
	}
	if err := roles.RequirePauser("bob"); err != nil {
		t.Fatalf("bob should be pauser now: %v", err)
	}
	// owner role must remain distinct from pauser even though they started equal
	if err := roles.RequireOwner("bob"); err == nil {
		t.Fatal("pauser reassignment must not grant owner role")
	}
}

func TestRoleSetChangeOwnerRequiresOwner(t *testing.T) {
	roles := NewRoleSet("alice")
	if err := roles.ChangeOwner("bob", "carol"); err == nil {
		t.Fatal("expected non-owner to be rejected")
	}
	if err := roles.ChangeOwner("alice", "carol"); err != nil {
		t.Fatal(err)
	}
	if roles.Owner() != "carol" {
		t.Fatalf("expected owner to be carol, got %s", roles.Owner())
	}
}

func TestCallTrackerLifecycle(t *testing.T) {
	tracker := NewCallTracker()
	id := tracker.Begin("verify", "caller-1")

	state, ok := tracker.Lookup(id)
	if !ok || state.Done {
		t.Fatalf("expected in-flight call, got %+v", state)
	}

	tracker.Finish(id, false)
	state, ok = tracker.Lookup(id)
	if !ok || !state.Done || state.Failed {
		t.Fatalf("expected completed success, got %+v", state)
	}
}

func TestMemoryKVRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set("firebase", "account-1")
	v, ok := kv.Get("firebase")
	if !ok || v != "account-1" {
		t.Fatalf("expected round trip, got %q ok=%v", v, ok)
	}
	kv.Delete("firebase")
	if _, ok := kv.Get("firebase"); ok {
		t.Fatal("expected key to be gone after delete")
	}
}
