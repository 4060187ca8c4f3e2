package controllers

import (
	"log/slog"
	"net/http"

	"channelinvites/internal/delivery/http/helpers"
	"channelinvites/internal/delivery/http/middleware"
	"channelinvites/internal/domain"
)

// PolicyController serves a channel's invite policy.
type PolicyController struct {
	Logger  *slog.Logger
	Service domain.PolicyService
}

func NewPolicyController(logger *slog.Logger, svc domain.PolicyService) *PolicyController {
	return &PolicyController{
		Logger:  logger,
		Service: svc,
	}
}

// PolicySuccessResponse is the success envelope for invite policy endpoints.
type PolicySuccessResponse struct {
	Data  *domain.InvitePolicy `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GetPolicy godoc
// @Summary Get a channel's invite policy
// @Description Returns the channel's invite policy, materializing the defaults on first access.
// @Tags policies
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID"
// @Success 200 {object} controllers.PolicySuccessResponse "data contains the invite policy"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /channels/{channelID}/invite-policy [get]
func (c *PolicyController) GetPolicy(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if channelID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing channelID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	policy, err := c.Service.GetPolicy(r.Context(), channelID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, policy)
}

// UpdatePolicy godoc
// @Summary Update a channel's invite policy
// @Description Applies a partial update to the channel's invite policy. Omitted fields are left unchanged. Fails when the update violates a policy invariant (e.g. public join without invites allowed).
// @Tags policies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID"
// @Param policy body domain.InvitePolicyUpdate true "Partial policy update"
// @Success 200 {object} controllers.PolicySuccessResponse "data contains the updated policy"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_policy or bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /channels/{channelID}/invite-policy [put]
func (c *PolicyController) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if channelID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing channelID")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var update domain.InvitePolicyUpdate
	if !helpers.DecodeAndValidate(w, r, &update) {
		return
	}
	policy, err := c.Service.UpdatePolicy(r.Context(), channelID, actorID, &update)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, policy)
}
