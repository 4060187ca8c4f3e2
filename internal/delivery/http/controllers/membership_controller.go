package controllers

import (
	"log/slog"
	"net/http"

	"channelinvites/internal/delivery/http/helpers"
	"channelinvites/internal/delivery/http/middleware"
	"channelinvites/internal/domain"
)

// MembershipController serves invite redemption and membership request
// decisions through the lifecycle coordinator.
type MembershipController struct {
	Logger  *slog.Logger
	Service domain.MembershipService
}

func NewMembershipController(logger *slog.Logger, svc domain.MembershipService) *MembershipController {
	return &MembershipController{
		Logger:  logger,
		Service: svc,
	}
}

// RedeemInviteRequest is the request body for POST /invites/{code}/redeem.
// The user ID comes from the bearer token; username and email identify the
// redeemer to approvers on gated channels.
type RedeemInviteRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

// Validate implements Validator.
func (r RedeemInviteRequest) Validate() []string {
	var errs []string
	if len(r.Message) > 500 {
		errs = append(errs, "message must be at most 500 characters")
	}
	return errs
}

// RedeemSuccessResponse is the success envelope for POST /invites/{code}/redeem (200).
type RedeemSuccessResponse struct {
	Data  *domain.RedeemResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RedeemInvite godoc
// @Summary Redeem an invite code
// @Description Consumes one use of the invite. Grants membership immediately, or enqueues a membership request when the invite requires approval. The outcome field is "granted" or "pending_approval".
// @Tags membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Invite code"
// @Param request body RedeemInviteRequest true "Redeemer details and optional message to approvers"
// @Success 200 {object} controllers.RedeemSuccessResponse "data contains the redemption outcome"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invite_not_active, message: expired|used_up|revoked"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invites/{code}/redeem [post]
func (c *MembershipController) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing code")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RedeemInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	redeemer := domain.RedeemerIdentity{
		UserID:   userID,
		Username: req.Username,
		Email:    req.Email,
	}
	result, err := c.Service.RedeemInvite(r.Context(), code, redeemer, req.Message)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// DecideRequestBody is the request body for approve/reject endpoints. Reason
// is only meaningful on rejection.
type DecideRequestBody struct {
	Reason string `json:"reason"`
}

// Validate implements Validator.
func (d DecideRequestBody) Validate() []string {
	var errs []string
	if len(d.Reason) > 200 {
		errs = append(errs, "reason must be at most 200 characters")
	}
	return errs
}

// DecisionSuccessResponse is the success envelope for decision endpoints (200).
type DecisionSuccessResponse struct {
	Data  *domain.MembershipRequest `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// ApproveRequest godoc
// @Summary Approve a membership request
// @Description Approves a pending membership request and grants channel membership. Racing decisions have exactly one winner; the loser receives already_resolved.
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Param requestID path string true "Membership request ID"
// @Success 200 {object} controllers.DecisionSuccessResponse "data contains the approved request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_resolved"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /membership-requests/{requestID}/approve [post]
func (c *MembershipController) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, domain.DecisionApprove)
}

// RejectRequest godoc
// @Summary Reject a membership request
// @Description Rejects a pending membership request with an optional reason and releases the redeemed invite use. Racing decisions have exactly one winner; the loser receives already_resolved.
// @Tags membership
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param requestID path string true "Membership request ID"
// @Param request body DecideRequestBody false "Optional rejection reason"
// @Success 200 {object} controllers.DecisionSuccessResponse "data contains the rejected request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_resolved"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /membership-requests/{requestID}/reject [post]
func (c *MembershipController) RejectRequest(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, domain.DecisionReject)
}

func (c *MembershipController) decide(w http.ResponseWriter, r *http.Request, decision domain.Decision) {
	requestID := r.PathValue("requestID")
	if requestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing requestID")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var body DecideRequestBody
	if r.ContentLength > 0 {
		if !helpers.DecodeAndValidate(w, r, &body) {
			return
		}
	}
	req, err := c.Service.DecideRequest(r.Context(), requestID, actorID, decision, body.Reason)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, req)
}
