// Package gateway implements the HTTP surface over the router/pipeline
// core: the public verify/sign entry points and the owner/pauser-gated
// admin operations (spec.md §6 "Admin operations surface").
package gateway

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"fastauth/internal/api/handlers"
	apimiddleware "fastauth/internal/api/middleware"
	"fastauth/internal/metrics"
	"fastauth/internal/router"
)

// VerifyHandler exposes router.Router.Verify as POST /verify.
type VerifyHandler struct {
	router *router.Router
}

func NewVerifyHandler(rt *router.Router) *VerifyHandler {
	return &VerifyHandler{router: rt}
}

type verifyRequest struct {
	GuardID        string `json:"guard_id"`
	Token          string `json:"token"`
	SignPayloadB64 string `json:"sign_payload"`
}

type verifyResponse struct {
	OK      bool   `json:"ok"`
	Subject string `json:"subject,omitempty"`
}

func (h *VerifyHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}

	signPayload, err := base64.StdEncoding.DecodeString(req.SignPayloadB64)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "sign_payload must be base64")
		return
	}

	caller := apimiddleware.CallerAccount(r)
	ok, subject, err := h.router.Verify(r.Context(), req.GuardID, signPayload, req.Token, caller)
	if err != nil {
		metrics.VerifyTotal.WithLabelValues(req.GuardID, "error").Inc()
		apimiddleware.WriteDomainError(w, err)
		return
	}

	outcome := "rejected"
	if ok {
		outcome = "accepted"
	}
	metrics.VerifyTotal.WithLabelValues(req.GuardID, outcome).Inc()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(verifyResponse{OK: ok, Subject: subject})
}
