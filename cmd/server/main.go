package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fastauth/internal/api/handlers/gateway"
	"fastauth/internal/api/middleware"
	"fastauth/internal/api/routes"
	"fastauth/internal/attestation"
	"fastauth/internal/config"
	"fastauth/internal/guard"
	"fastauth/internal/host"
	"fastauth/internal/jwtcore"
	"fastauth/internal/mpc"
	"fastauth/internal/pipeline"
	"fastauth/internal/preclaim"
	"fastauth/internal/router"
	"fastauth/internal/store"
)

// guardMap is the in-process GuardResolver: a fixed set of guard.Guard
// instances keyed by account id, configured at startup. The original
// contract resolved accounts to guard implementations through a
// cross-contract call; there is exactly one process here, so a map
// suffices.
type guardMap map[string]guard.Guard

func (m guardMap) Resolve(account string) (guard.Guard, bool) {
	g, ok := m[account]
	return g, ok
}

func main() {
	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Failed to close database connection: %v", closeErr)
		}
	}()

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}
	log.Println("Connected to database")

	if err = goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set goose dialect:", err)
	}
	if err = goose.Up(db, "internal/store/migrations"); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Migrations completed successfully")

	preclaimStore := preclaim.NewPostgresStore(db)

	// Bootstrap guards. A real deployment would configure issuer/key
	// material per environment; this wires one of each variant against
	// the pre-claim store so the firebase guard's custom-claims hook has
	// somewhere to check registrations (spec.md §4.5 "firebase" variant).
	clock := jwtcore.Clock(host.SystemClock)
	guards := guardMap{}

	if auth0Guard, err := guard.NewAuth0Guard("https://auth0.example/", nil, clock); err == nil {
		guards["acct-auth0"] = auth0Guard
	} else {
		log.Printf("auth0 guard not bootstrapped: %v", err)
	}
	if googleGuard, err := guard.NewGoogleGuard("https://accounts.google.com", nil, clock); err == nil {
		guards["acct-google"] = googleGuard
	} else {
		log.Printf("google guard not bootstrapped: %v", err)
	}
	if firebaseGuard, err := guard.NewFirebaseGuard("https://firebase.example/", nil, preclaimStore, clock); err == nil {
		guards["acct-firebase"] = firebaseGuard
	} else {
		log.Printf("firebase guard not bootstrapped: %v", err)
	}

	if cfg.OwnerAccountID == "" {
		log.Fatal("OWNER_ACCOUNT_ID must be set")
	}

	rt := router.New(cfg.OwnerAccountID, guards)
	if cfg.PauserAccountID != "" {
		if err := rt.Roles().SetPauser(cfg.OwnerAccountID, cfg.PauserAccountID); err != nil {
			log.Printf("failed to set configured pauser: %v", err)
		}
	}

	stateStore := store.NewStateStore(db)
	ctx := context.Background()
	if persisted, err := stateStore.Load(ctx); err == nil {
		rt.Restore(persisted)
		log.Println("Restored persisted router state")
	} else if err != store.ErrNoState {
		log.Printf("failed to load persisted router state: %v", err)
	}

	if cfg.MPCAddress != "" {
		if err := rt.SetMPCConfig(cfg.OwnerAccountID, router.MPCConfig{
			Address:    cfg.MPCAddress,
			KeyVersion: cfg.MPCKeyVersion,
			DomainID:   cfg.MPCDomainID,
		}); err != nil {
			log.Printf("failed to apply configured MPC settings: %v", err)
		}
	}

	// Persist state on every admin-path change would require wrapping the
	// router; instead this gateway periodically snapshots, matching the
	// teacher's periodic OAuth cleanup job shape in cmd/server/main.go.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := stateStore.Save(ctx, rt.Snapshot()); err != nil {
				log.Printf("failed to persist router state: %v", err)
			}
		}
	}()

	mpcClient := mpc.NewClient(http.DefaultClient, cfg.MPCAddress)
	callTracker := host.NewCallTracker()
	pipe := pipeline.New(rt, mpcClient, pipeline.GuardIDSubject, callTracker)
	attestationClient := attestation.NewClient(http.DefaultClient, cfg.AttestationURL)

	if cfg.AdminCookieSecret == "" {
		log.Fatal("ADMIN_COOKIE_SECRET not configured")
	}
	if err := middleware.InitAdminCookieStore(cfg.AdminCookieSecret); err != nil {
		log.Fatalf("Failed to initialize admin cookie store: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowS)*time.Second)
	r.Use(rateLimiter.Middleware)

	adminLoginHandler := gateway.NewAdminLoginHandler(cfg.AdminBootstrapToken)
	r.Post("/admin/login", adminLoginHandler.HandleLogin)

	routes.RegisterGatewayRoutes(r, rt, pipe, preclaimStore, attestationClient)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Printf("Failed to write health check response: %v", err)
		}
	})

	log.Printf("Starting gateway on port %s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
