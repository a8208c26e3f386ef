package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/sessions"
)

const (
	// AdminSessionName is the cookie name for the admin session.
	AdminSessionName = "fastauth_admin"

	// MinAdminCookieSecretLength is the minimum byte length required for
	// ADMIN_COOKIE_SECRET.
	MinAdminCookieSecretLength = 32
)

// writeAuthError writes a 401 JSON error response.
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

var (
	adminStoreInstance *sessions.CookieStore
	adminStoreOnce     sync.Once
	adminStoreErr      error
)

// InitAdminCookieStore initializes the global admin session cookie store.
// Must be called once at startup before any admin handler is wired.
func InitAdminCookieStore(secret string) error {
	adminStoreOnce.Do(func() {
		if len(secret) < MinAdminCookieSecretLength {
			adminStoreErr = fmt.Errorf("ADMIN_COOKIE_SECRET must be at least %d bytes for security", MinAdminCookieSecretLength)
			return
		}
		adminStoreInstance = sessions.NewCookieStore([]byte(secret))
	})
	return adminStoreErr
}

// AdminCookieStore returns the global admin session store. Panics if
// InitAdminCookieStore has not succeeded.
func AdminCookieStore() *sessions.CookieStore {
	if adminStoreInstance == nil {
		panic("admin cookie store not initialized - call InitAdminCookieStore first")
	}
	return adminStoreInstance
}

// AdminLogin establishes an admin session bound to accountID. There is no
// external identity provider for the admin surface (spec.md's host has no
// notion of "login" — the owner/pauser accounts are configured directly),
// so this simply records which account the session speaks for; the
// router's own RequireOwner/RequirePauser checks still gate every
// state-changing call.
func AdminLogin(w http.ResponseWriter, r *http.Request, accountID string) error {
	session, _ := AdminCookieStore().Get(r, AdminSessionName)
	session.Values["account_id"] = accountID
	return session.Save(r, w)
}

// RequireAdminSession injects the session's account id as the caller
// identity, or rejects the request with 401 if no session exists.
func RequireAdminSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := AdminCookieStore().Get(r, AdminSessionName)
		if err != nil {
			writeAuthError(w, "invalid admin session")
			return
		}

		accountID, _ := session.Values["account_id"].(string)
		if accountID == "" {
			writeAuthError(w, "admin session required")
			return
		}

		r = withCallerAccountValue(r, accountID)
		next.ServeHTTP(w, r)
	})
}
