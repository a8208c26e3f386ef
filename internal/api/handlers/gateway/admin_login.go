package gateway

import (
	"crypto/subtle"
	"net/http"

	"fastauth/internal/api/handlers"
	apimiddleware "fastauth/internal/api/middleware"
)

// AdminLoginHandler establishes an admin session for a known account id,
// gated by a shared bootstrap token (there is no external identity
// provider for the admin surface — the owner/pauser accounts are
// configured directly at deploy time, spec.md §4.7's init()).
type AdminLoginHandler struct {
	bootstrapToken string
}

func NewAdminLoginHandler(bootstrapToken string) *AdminLoginHandler {
	return &AdminLoginHandler{bootstrapToken: bootstrapToken}
}

func (h *AdminLoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		AccountID string `json:"account_id"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}

	if h.bootstrapToken == "" || subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.bootstrapToken)) != 1 {
		handlers.WriteError(w, http.StatusUnauthorized, "InvalidToken", "invalid bootstrap token")
		return
	}
	if req.AccountID == "" {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "account_id is required")
		return
	}

	if err := apimiddleware.AdminLogin(w, r, req.AccountID); err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", "failed to establish admin session")
		return
	}
	writeOK(w)
}
