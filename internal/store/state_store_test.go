package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"fastauth/internal/router"
)

func setupTestDB(t *testing.T) *sql.DB {
	testUser := os.Getenv("POSTGRES_TEST_USER")
	testPassword := os.Getenv("POSTGRES_TEST_PASSWORD")
	testPort := os.Getenv("POSTGRES_TEST_PORT")
	testDB := os.Getenv("POSTGRES_TEST_DB")

	if testUser == "" {
		testUser = "test_user"
	}
	if testPassword == "" {
		testPassword = "test_password"
	}
	if testPort == "" {
		testPort = "5434"
	}
	if testDB == "" {
		testDB = "fastauth_test"
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("Failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "../store/migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	_, err = db.Exec("DELETE FROM router_state")
	if err != nil {
		t.Logf("Warning: Failed to clean up test data: %v", err)
	}

	return db
}

func TestStateStoreSaveAndLoadRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewStateStore(db)
	ctx := context.Background()

	want := router.State{
		Owner:  "owner-1",
		Pauser: "pauser-1",
		Paused: true,
		Guards: map[string]string{"firebase": "acct-firebase", "auth0": "acct-auth0"},
		MPC: router.MPCConfig{
			Address:    "http://mpc.example",
			KeyVersion: 3,
			DomainID:   "domain-7",
		},
	}

	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.Owner != want.Owner || got.Pauser != want.Pauser || got.Paused != want.Paused {
		t.Fatalf("roles/pause mismatch: got %+v, want %+v", got, want)
	}
	if len(got.Guards) != len(want.Guards) {
		t.Fatalf("guard map size mismatch: got %d, want %d", len(got.Guards), len(want.Guards))
	}
	for k, v := range want.Guards {
		if got.Guards[k] != v {
			t.Fatalf("guard %q: got %q, want %q", k, got.Guards[k], v)
		}
	}
	if got.MPC != want.MPC {
		t.Fatalf("MPC config mismatch: got %+v, want %+v", got.MPC, want.MPC)
	}

	// Save again with different content and confirm the upsert replaces
	// rather than appends.
	want.Paused = false
	want.Guards = map[string]string{"google": "acct-google"}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save (update): %v", err)
	}
	got2, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load (update): %v", err)
	}
	if got2.Paused || len(got2.Guards) != 1 || got2.Guards["google"] != "acct-google" {
		t.Fatalf("expected upsert to replace state, got %+v", got2)
	}
}

func TestStateStoreLoadWithNoPriorSave(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewStateStore(db)
	if _, err := s.Load(context.Background()); err != ErrNoState {
		t.Fatalf("expected ErrNoState, got %v", err)
	}
}
