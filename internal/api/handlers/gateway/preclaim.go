package gateway

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"fastauth/internal/api/handlers"
	apimiddleware "fastauth/internal/api/middleware"
	"fastauth/internal/preclaim"
)

// PreClaimHandler exposes the self-service storage-deposit lifecycle
// (spec.md §4.6) the firebase guard requires before it will accept a
// caller's tokens. Every operation acts on the caller's own account,
// mirroring the original contract's `#[payable]` self-calls.
type PreClaimHandler struct {
	store preclaim.Store
}

func NewPreClaimHandler(store preclaim.Store) *PreClaimHandler {
	return &PreClaimHandler{store: store}
}

func (h *PreClaimHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attached uint64 `json:"attached"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	refund, err := h.store.Deposit(r.Context(), apimiddleware.CallerAccount(r), req.Attached)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "DepositFailed", err.Error())
		return
	}
	writeJSON(w, map[string]uint64{"refund": refund})
}

func (h *PreClaimHandler) HandleClaimOIDC(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DigestHex string `json:"digest_hex"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	digest, err := hex.DecodeString(req.DigestHex)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "digest_hex must be hex")
		return
	}
	if err := h.store.ClaimOIDC(r.Context(), apimiddleware.CallerAccount(r), digest); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "ClaimFailed", err.Error())
		return
	}
	writeOK(w)
}

func (h *PreClaimHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attached uint64 `json:"attached"`
		Force    bool   `json:"force"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	refund, err := h.store.Unregister(r.Context(), apimiddleware.CallerAccount(r), req.Attached, req.Force)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "UnregisterFailed", err.Error())
		return
	}
	writeJSON(w, map[string]uint64{"refund": refund})
}

func (h *PreClaimHandler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Attached uint64 `json:"attached"`
		Amount   uint64 `json:"amount"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	balance, err := h.store.Withdraw(r.Context(), apimiddleware.CallerAccount(r), req.Attached, req.Amount)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "WithdrawFailed", err.Error())
		return
	}
	writeJSON(w, balance)
}

func (h *PreClaimHandler) HandleBalanceOf(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	if account == "" {
		account = apimiddleware.CallerAccount(r)
	}
	balance, ok, err := h.store.BalanceOf(r.Context(), account)
	if err != nil {
		handlers.WriteError(w, http.StatusInternalServerError, "InternalError", err.Error())
		return
	}
	if !ok {
		handlers.WriteError(w, http.StatusNotFound, "NotRegistered", "account is not registered")
		return
	}
	writeJSON(w, balance)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
