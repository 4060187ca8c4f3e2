package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"channelinvites/internal/delivery/http/helpers"
	"channelinvites/internal/delivery/http/middleware"
	"channelinvites/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeApprovalService implements domain.ApprovalService for handler tests.
type fakeApprovalService struct {
	getResult  *domain.MembershipRequest
	getErr     error
	listResult []*domain.MembershipRequest
	listTotal  int
	listErr    error

	lastRequestID string
	lastChannelID string
	lastFilter    domain.RequestFilter
	lastParams    domain.PaginationParams
}

func (f *fakeApprovalService) SubmitRequest(_ context.Context, channelID string, redeemer domain.RedeemerIdentity, code, message string) (*domain.MembershipRequest, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeApprovalService) Approve(_ context.Context, requestID, actorID string) (*domain.MembershipRequest, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeApprovalService) Reject(_ context.Context, requestID, actorID, reason string) (*domain.MembershipRequest, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeApprovalService) GetRequest(_ context.Context, requestID string) (*domain.MembershipRequest, error) {
	f.lastRequestID = requestID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResult, nil
}

func (f *fakeApprovalService) ListRequests(_ context.Context, channelID string, filter domain.RequestFilter, params domain.PaginationParams) ([]*domain.MembershipRequest, int, error) {
	f.lastChannelID = channelID
	f.lastFilter = filter
	f.lastParams = params
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listResult, f.listTotal, nil
}

func TestApprovalController_ListRequests(t *testing.T) {
	requestedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := &fakeApprovalService{
		listResult: []*domain.MembershipRequest{
			{ID: "req-1", ChannelID: "chan-1", Username: "casey", Status: domain.RequestStatusPending, RequestedAt: requestedAt},
		},
		listTotal: 1,
	}
	controller := NewApprovalController(testLogger, service)

	req := httptest.NewRequest(http.MethodGet, "http://test/channels/chan-1/membership-requests?status=pending&search=casey", nil)
	req.SetPathValue("channelID", "chan-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	controller.ListRequests(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope struct {
		Data ListRequestsResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Len(t, envelope.Data.Requests, 1)
	assert.Equal(t, "req-1", envelope.Data.Requests[0].ID)
	assert.Equal(t, 1, envelope.Data.Pagination.Total)
	assert.Equal(t, domain.RequestFilter{Status: domain.RequestStatusPending, Search: "casey"}, service.lastFilter)
}

func TestApprovalController_ListRequests_InvalidStatus(t *testing.T) {
	controller := NewApprovalController(testLogger, &fakeApprovalService{})

	req := httptest.NewRequest(http.MethodGet, "http://test/channels/chan-1/membership-requests?status=perhaps", nil)
	req.SetPathValue("channelID", "chan-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	controller.ListRequests(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	_, apiErr := decodeEnvelope(t, rr)
	require.NotNil(t, apiErr)
	assert.Equal(t, helpers.ErrCodeBadRequest, apiErr.Code)
}

func TestApprovalController_GetRequest(t *testing.T) {
	tests := []struct {
		name        string
		service     *fakeApprovalService
		wantStatus  int
		wantErrCode string
	}{
		{
			name:       "success",
			service:    &fakeApprovalService{getResult: &domain.MembershipRequest{ID: "req-1", Status: domain.RequestStatusPending}},
			wantStatus: http.StatusOK,
		},
		{
			name:        "not found",
			service:     &fakeApprovalService{getErr: domain.ErrNotFound},
			wantStatus:  http.StatusNotFound,
			wantErrCode: helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := NewApprovalController(testLogger, tt.service)

			req := httptest.NewRequest(http.MethodGet, "http://test/membership-requests/req-1", nil)
			req.SetPathValue("requestID", "req-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			controller.GetRequest(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			data, apiErr := decodeEnvelope(t, rr)
			if tt.wantErrCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantErrCode, apiErr.Code)
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, "req-1", data["id"])
			assert.Equal(t, "req-1", tt.service.lastRequestID)
		})
	}
}
