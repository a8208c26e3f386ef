package routes

import (
	"github.com/go-chi/chi/v5"

	"fastauth/internal/api/handlers/gateway"
	"fastauth/internal/api/middleware"
	"fastauth/internal/attestation"
	"fastauth/internal/pipeline"
	"fastauth/internal/preclaim"
	"fastauth/internal/router"
)

// RegisterGatewayRoutes wires the public verify/sign/pre-claim surface
// and the owner/pauser-gated admin surface (spec.md §6) onto r.
func RegisterGatewayRoutes(
	r chi.Router,
	rt *router.Router,
	pipe *pipeline.Pipeline,
	preclaimStore preclaim.Store,
	attestationClient *attestation.Client,
) {
	verifyHandler := gateway.NewVerifyHandler(rt)
	signHandler := gateway.NewSignHandler(pipe)
	preclaimHandler := gateway.NewPreClaimHandler(preclaimStore)
	adminHandler := gateway.NewAdminHandler(rt, attestationClient)

	r.Group(func(pub chi.Router) {
		pub.Use(middleware.WithCallerAccount)

		pub.Post("/verify", verifyHandler.HandleVerify)
		pub.Post("/sign", signHandler.HandleSign)

		pub.Post("/preclaim/deposit", preclaimHandler.HandleDeposit)
		pub.Post("/preclaim/claim", preclaimHandler.HandleClaimOIDC)
		pub.Post("/preclaim/unregister", preclaimHandler.HandleUnregister)
		pub.Post("/preclaim/withdraw", preclaimHandler.HandleWithdraw)
		pub.Get("/preclaim/balance", preclaimHandler.HandleBalanceOf)

		pub.Get("/admin/paused", adminHandler.HandlePaused)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdminSession)

		admin.Post("/admin/guards", adminHandler.HandleAddGuard)
		admin.Delete("/admin/guards", adminHandler.HandleRemoveGuard)
		admin.Post("/admin/guards/public-keys", adminHandler.HandleSetPublicKeys)
		admin.Post("/admin/mpc/address", adminHandler.HandleSetMPCAddress)
		admin.Post("/admin/mpc/key-version", adminHandler.HandleSetMPCKeyVersion)
		admin.Post("/admin/mpc/domain-id", adminHandler.HandleSetMPCDomainID)
		admin.Post("/admin/owner", adminHandler.HandleChangeOwner)
		admin.Post("/admin/pauser", adminHandler.HandleSetPauser)
		admin.Post("/admin/pause", adminHandler.HandlePause)
		admin.Post("/admin/unpause", adminHandler.HandleUnpause)
	})
}
