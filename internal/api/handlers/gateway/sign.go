package gateway

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"fastauth/internal/api/handlers"
	apimiddleware "fastauth/internal/api/middleware"
	"fastauth/internal/metrics"
	"fastauth/internal/pipeline"
)

// SignHandler exposes pipeline.Pipeline.Sign as POST /sign: verify then
// forward a derivation request to the MPC oracle, spec.md §4.8.
type SignHandler struct {
	pipeline *pipeline.Pipeline
}

func NewSignHandler(p *pipeline.Pipeline) *SignHandler {
	return &SignHandler{pipeline: p}
}

type signRequest struct {
	GuardID        string `json:"guard_id"`
	Token          string `json:"token"`
	SignPayloadB64 string `json:"sign_payload"`
	Algorithm      string `json:"algorithm"`
}

func (h *SignHandler) HandleSign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
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
	sig, err := h.pipeline.Sign(r.Context(), req.GuardID, req.Token, signPayload, req.Algorithm, caller)
	if err != nil {
		metrics.SignTotal.WithLabelValues(req.GuardID, "error").Inc()
		apimiddleware.WriteDomainError(w, err)
		return
	}

	metrics.SignTotal.WithLabelValues(req.GuardID, "accepted").Inc()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sig)
}
