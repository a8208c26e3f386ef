package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fastauth/internal/host"
	"fastauth/internal/router"
)

// WriteDomainError maps a domain error from the router and role layers
// onto an HTTP status. The caller_has_role(R) and not_paused() checks
// themselves run in internal/router and internal/host; this function only
// translates their errors, so handlers never need to know which sentinel
// corresponds to which status code.
func WriteDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, host.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, router.ErrPaused):
		status = http.StatusConflict
	case errors.Is(err, router.ErrGuardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, router.ErrGuardAlreadyExists),
		errors.Is(err, router.ErrGuardNameContainsHash),
		errors.Is(err, router.ErrGuardNameTooLong),
		errors.Is(err, router.ErrAccountIDTooLong):
		status = http.StatusBadRequest
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(map[string]string{"error": err.Error()}); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}
