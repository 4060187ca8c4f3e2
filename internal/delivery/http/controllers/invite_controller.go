package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"channelinvites/internal/delivery/http/helpers"
	"channelinvites/internal/delivery/http/middleware"
	"channelinvites/internal/domain"
)

// InviteController serves invite creation, listing, revocation, and email
// fan-out for a channel.
type InviteController struct {
	Logger  *slog.Logger
	Service domain.InviteService
	Now     func() time.Time
}

func NewInviteController(logger *slog.Logger, svc domain.InviteService, now func() time.Time) *InviteController {
	return &InviteController{
		Logger:  logger,
		Service: svc,
		Now:     now,
	}
}

// CreateInviteRequest is the request body for POST /channels/{channelID}/invites.
type CreateInviteRequest struct {
	CustomMessage string `json:"custom_message"`
}

// Validate implements Validator.
func (c CreateInviteRequest) Validate() []string {
	var errs []string
	if len(c.CustomMessage) > 200 {
		errs = append(errs, "custom_message must be at most 200 characters")
	}
	return errs
}

// InviteView is an invite together with its derived effective status and
// shareable link.
// swagger:model InviteView
type InviteView struct {
	*domain.Invite
	EffectiveStatus domain.EffectiveStatus `json:"effective_status"`
	Link            string                 `json:"link"`
}

// CreateInviteSuccessResponse is the success envelope for POST /channels/{channelID}/invites (201).
type CreateInviteSuccessResponse struct {
	Data  *InviteView       `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func (c *InviteController) view(invite *domain.Invite) *InviteView {
	return &InviteView{
		Invite:          invite,
		EffectiveStatus: invite.EffectiveStatus(c.Now()),
		Link:            c.Service.InviteLink(invite.Code),
	}
}

// CreateInvite godoc
// @Summary Create an invite for a channel
// @Description Issues a new invite code for the channel, snapshotting the channel's current invite policy. Fails when the policy disables invites.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID"
// @Param invite body CreateInviteRequest true "Invite data (optional custom message)"
// @Success 201 {object} controllers.CreateInviteSuccessResponse "data contains the created invite with its link"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: invites_disabled"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /channels/{channelID}/invites [post]
func (c *InviteController) CreateInvite(w http.ResponseWriter, r *http.Request) {
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
	var req CreateInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	invite, err := c.Service.CreateInvite(r.Context(), channelID, actorID, req.CustomMessage)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, c.view(invite))
}

// ListInvitesResponse is the response body for GET /channels/{channelID}/invites.
type ListInvitesResponse struct {
	Invites    []*InviteView          `json:"invites"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListInvites godoc
// @Summary List a channel's invites
// @Description Returns the channel's invites, most recent first, with each invite's derived effective status.
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains invites and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /channels/{channelID}/invites [get]
func (c *InviteController) ListInvites(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if channelID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing channelID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	invites, total, err := c.Service.ListInvites(r.Context(), channelID, params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	views := make([]*InviteView, len(invites))
	for i, invite := range invites {
		views[i] = c.view(invite)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListInvitesResponse{
		Invites:    views,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// EmailInvitesRequest is the request body for POST /channels/{channelID}/invites/email.
type EmailInvitesRequest struct {
	Emails        []string `json:"emails"`
	CustomMessage string   `json:"custom_message"`
}

// Validate implements Validator.
func (e EmailInvitesRequest) Validate() []string {
	var errs []string
	if len(e.Emails) == 0 {
		errs = append(errs, "at least one email is required")
	}
	if len(e.CustomMessage) > 200 {
		errs = append(errs, "custom_message must be at most 200 characters")
	}
	return errs
}

// EmailInvitesResponse is the response body for POST /channels/{channelID}/invites/email.
type EmailInvitesResponse struct {
	Invite *InviteView `json:"invite"`
	Sent   int         `json:"sent"`
	Failed []string    `json:"failed"`
}

// EmailInvites godoc
// @Summary Email an invite link to a list of addresses
// @Description Creates one invite for the channel and emails its link to each address. Invalid or undeliverable addresses are returned in failed; they do not abort the batch.
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID"
// @Param request body EmailInvitesRequest true "Recipient addresses and optional custom message"
// @Success 200 {object} helpers.APIResponse "data contains the invite, sent count, and failed addresses"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: invites_disabled"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /channels/{channelID}/invites/email [post]
func (c *InviteController) EmailInvites(w http.ResponseWriter, r *http.Request) {
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
	var req EmailInvitesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	invite, sent, failed, err := c.Service.EmailInvites(r.Context(), channelID, actorID, req.Emails, req.CustomMessage)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	if failed == nil {
		failed = []string{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EmailInvitesResponse{
		Invite: c.view(invite),
		Sent:   sent,
		Failed: failed,
	})
}

// RevokeInvite godoc
// @Summary Revoke an invite
// @Description Marks the invite revoked so it can no longer be redeemed. Revoking an already-revoked invite succeeds.
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param code path string true "Invite code"
// @Success 200 {object} helpers.APIResponse "data contains the revoked code"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invites/{code} [delete]
func (c *InviteController) RevokeInvite(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing code")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Revoke(r.Context(), code, actorID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{
		"code":   domain.NormalizeInviteCode(code),
		"status": string(domain.InviteStatusRevoked),
	})
}
