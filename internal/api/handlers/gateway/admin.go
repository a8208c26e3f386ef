package gateway

import (
	"encoding/json"
	"net/http"

	"fastauth/internal/api/handlers"
	apimiddleware "fastauth/internal/api/middleware"
	"fastauth/internal/attestation"
	"fastauth/internal/router"
)

// AdminHandler implements spec.md §6's admin operations surface
// (add_guard, remove_guard, set_public_keys, set_mpc_address,
// set_mpc_key_version, set_mpc_domain_id, change_owner, set_pauser,
// pause, unpause), each gated by the router's own role/pause checks and
// fronted by the admin session middleware.
type AdminHandler struct {
	router      *router.Router
	attestation *attestation.Client
}

func NewAdminHandler(rt *router.Router, attestationClient *attestation.Client) *AdminHandler {
	return &AdminHandler{router: rt, attestation: attestationClient}
}

func decodeJSON(r *http.Request, dst any) bool {
	return json.NewDecoder(r.Body).Decode(dst) == nil
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func (h *AdminHandler) HandleAddGuard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Account string `json:"account"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	caller := apimiddleware.CallerAccount(r)
	if err := h.router.AddGuard(caller, req.Name, req.Account); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandleRemoveGuard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	caller := apimiddleware.CallerAccount(r)
	if err := h.router.RemoveGuard(caller, req.Name); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

// HandleSetPublicKeys fetches the currently-attested key set for a
// registered guard and installs it, the admin-triggered half of spec.md
// §4.5's asynchronous rotation callback.
func (h *AdminHandler) HandleSetPublicKeys(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GuardName string `json:"guard_name"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}

	caller := apimiddleware.CallerAccount(r)
	if err := h.router.Roles().RequireOwner(caller); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	if h.router.Paused() {
		apimiddleware.WriteDomainError(w, router.ErrPaused)
		return
	}

	g, err := h.router.ResolveGuardByName(req.GuardName)
	if err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}

	if err := attestation.RotateGuardKeys(r.Context(), h.attestation, req.GuardName, g); err != nil {
		handlers.WriteError(w, http.StatusBadGateway, "RotationFailed", err.Error())
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandleSetMPCAddress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	cfg := h.router.MPC()
	cfg.Address = req.Address
	if err := h.router.SetMPCConfig(apimiddleware.CallerAccount(r), cfg); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandleSetMPCKeyVersion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KeyVersion uint32 `json:"key_version"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	cfg := h.router.MPC()
	cfg.KeyVersion = req.KeyVersion
	if err := h.router.SetMPCConfig(apimiddleware.CallerAccount(r), cfg); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandleSetMPCDomainID(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DomainID string `json:"domain_id"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	cfg := h.router.MPC()
	cfg.DomainID = req.DomainID
	if err := h.router.SetMPCConfig(apimiddleware.CallerAccount(r), cfg); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandleChangeOwner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewOwner string `json:"new_owner"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	if err := h.router.Roles().ChangeOwner(apimiddleware.CallerAccount(r), req.NewOwner); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandleSetPauser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPauser string `json:"new_pauser"`
	}
	if !decodeJSON(r, &req) {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	if err := h.router.Roles().SetPauser(apimiddleware.CallerAccount(r), req.NewPauser); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.router.Pause(apimiddleware.CallerAccount(r)); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

func (h *AdminHandler) HandleUnpause(w http.ResponseWriter, r *http.Request) {
	if err := h.router.Unpause(apimiddleware.CallerAccount(r)); err != nil {
		apimiddleware.WriteDomainError(w, err)
		return
	}
	writeOK(w)
}

// HandlePaused implements the one read operation spec.md §4.7 exempts
// from pause gating.
func (h *AdminHandler) HandlePaused(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"paused": h.router.Paused()})
}
