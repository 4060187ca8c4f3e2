package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"channelinvites/internal/delivery/http/controllers"
	"channelinvites/internal/delivery/http/middleware"
	"channelinvites/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	policyController *controllers.PolicyController,
	inviteController *controllers.InviteController,
	approvalController *controllers.ApprovalController,
	membershipController *controllers.MembershipController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Invite policy
	mux.HandleFunc("GET /channels/{channelID}/invite-policy", auth(policyController.GetPolicy))
	mux.HandleFunc("PUT /channels/{channelID}/invite-policy", auth(policyController.UpdatePolicy))

	// Invites
	mux.HandleFunc("POST /channels/{channelID}/invites", auth(inviteController.CreateInvite))
	mux.HandleFunc("GET /channels/{channelID}/invites", auth(inviteController.ListInvites))
	mux.HandleFunc("POST /channels/{channelID}/invites/email", auth(inviteController.EmailInvites))
	mux.HandleFunc("DELETE /invites/{code}", auth(inviteController.RevokeInvite))

	// Redemption and decisions
	mux.HandleFunc("POST /invites/{code}/redeem", auth(membershipController.RedeemInvite))
	mux.HandleFunc("GET /channels/{channelID}/membership-requests", auth(approvalController.ListRequests))
	mux.HandleFunc("GET /membership-requests/{requestID}", auth(approvalController.GetRequest))
	mux.HandleFunc("POST /membership-requests/{requestID}/approve", auth(membershipController.ApproveRequest))
	mux.HandleFunc("POST /membership-requests/{requestID}/reject", auth(membershipController.RejectRequest))

	// Health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
