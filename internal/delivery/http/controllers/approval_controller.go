package controllers

import (
	"log/slog"
	"net/http"

	"channelinvites/internal/delivery/http/helpers"
	"channelinvites/internal/delivery/http/middleware"
	"channelinvites/internal/domain"
)

// ApprovalController serves read access to the membership approval queue.
type ApprovalController struct {
	Logger  *slog.Logger
	Service domain.ApprovalService
}

func NewApprovalController(logger *slog.Logger, svc domain.ApprovalService) *ApprovalController {
	return &ApprovalController{
		Logger:  logger,
		Service: svc,
	}
}

// ListRequestsResponse is the response body for GET /channels/{channelID}/membership-requests.
type ListRequestsResponse struct {
	Requests   []*domain.MembershipRequest `json:"requests"`
	Pagination helpers.PaginationMeta      `json:"pagination"`
}

// ListRequests godoc
// @Summary List a channel's membership requests
// @Description Returns membership requests, most recent first. status narrows to pending, approved, or rejected; search matches username or email case-insensitively as a substring. Both filters combine.
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Param channelID path string true "Channel ID"
// @Param status query string false "Filter by status (pending|approved|rejected)"
// @Param search query string false "Substring match on username or email"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains requests and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /channels/{channelID}/membership-requests [get]
func (c *ApprovalController) ListRequests(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("channelID")
	if channelID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing channelID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	filter := domain.RequestFilter{
		Search: r.URL.Query().Get("search"),
	}
	switch status := r.URL.Query().Get("status"); status {
	case "":
	case string(domain.RequestStatusPending), string(domain.RequestStatusApproved), string(domain.RequestStatusRejected):
		filter.Status = domain.RequestStatus(status)
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid status filter")
		return
	}
	params := helpers.ParsePagination(r)
	reqs, total, err := c.Service.ListRequests(r.Context(), channelID, filter, params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRequestsResponse{
		Requests:   reqs,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// GetRequest godoc
// @Summary Get a membership request
// @Description Returns a single membership request by ID.
// @Tags membership
// @Produce json
// @Security BearerAuth
// @Param requestID path string true "Membership request ID"
// @Success 200 {object} controllers.DecisionSuccessResponse "data contains the request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /membership-requests/{requestID} [get]
func (c *ApprovalController) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := r.PathValue("requestID")
	if requestID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing requestID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	req, err := c.Service.GetRequest(r.Context(), requestID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, req)
}
