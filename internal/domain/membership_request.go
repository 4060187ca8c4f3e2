package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyResolved is returned when a decision races another decision on
// the same request. It is benign: exactly one caller wins, the other sees
// this error.
var ErrAlreadyResolved = errors.New("membership request already resolved")

// RequestStatus is the state of a membership request. Transitions are
// monotonic: pending moves to approved or rejected exactly once and is never
// reversed.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// MembershipRequest is an approval record created when a gated invite is
// redeemed. It references its originating invite by code only.
// swagger:model MembershipRequest
type MembershipRequest struct {
	ID              string        `json:"id"`
	ChannelID       string        `json:"channel_id"`
	UserID          string        `json:"user_id"`
	Username        string        `json:"username"`
	Email           string        `json:"email"`
	RequestedAt     time.Time     `json:"requested_at"`
	InviteCode      string        `json:"invite_code"`
	InvitedBy       string        `json:"invited_by"`
	Message         string        `json:"message,omitempty"`
	Status          RequestStatus `json:"status"`
	ResolvedAt      *time.Time    `json:"resolved_at,omitempty"`
	ResolvedBy      string        `json:"resolved_by,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
}

// RequestFilter narrows a membership request listing. Both fields are
// conjunctive; zero values match everything. Search matches username or
// email case-insensitively as a substring.
type RequestFilter struct {
	Status RequestStatus
	Search string
}

// MembershipRequestRepository defines storage operations for membership
// requests. Resolve must be linearizable per request row.
type MembershipRequestRepository interface {
	Create(ctx context.Context, req *MembershipRequest) error
	GetByID(ctx context.Context, id string) (*MembershipRequest, error)
	// Resolve transitions the request out of pending. Returns false when the
	// request was already resolved, so concurrent decisions have exactly one
	// winner.
	Resolve(ctx context.Context, id string, status RequestStatus, actorID, reason string, resolvedAt time.Time) (bool, error)
	// ListByChannelID returns requests ordered by requested_at descending.
	ListByChannelID(ctx context.Context, channelID string, filter RequestFilter, params PaginationParams) ([]*MembershipRequest, int, error)
}

// ApprovalService defines the approval queue: submission of gated
// redemptions and single-winner resolution.
type ApprovalService interface {
	// SubmitRequest enqueues a pending request for a redemption that the
	// invite registry already accepted.
	SubmitRequest(ctx context.Context, channelID string, redeemer RedeemerIdentity, code, message string) (*MembershipRequest, error)
	// Approve grants the request and emits the membership-granted signal.
	// Returns ErrAlreadyResolved on a decision race.
	Approve(ctx context.Context, requestID, actorID string) (*MembershipRequest, error)
	// Reject denies the request and releases the redeemed invite use, since
	// no membership resulted. Returns ErrAlreadyResolved on a decision race.
	Reject(ctx context.Context, requestID, actorID, reason string) (*MembershipRequest, error)
	GetRequest(ctx context.Context, requestID string) (*MembershipRequest, error)
	ListRequests(ctx context.Context, channelID string, filter RequestFilter, params PaginationParams) ([]*MembershipRequest, int, error)
}
