package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"channelinvites/internal/domain"
)

const (
	requestMessageMaxLen  = 500
	rejectionReasonMaxLen = 200
)

type approvalService struct {
	requestRepo    domain.MembershipRequestRepository
	inviteRepo     domain.InviteRepository
	notifier       domain.MembershipNotifier
	emailService   domain.EmailService
	now            func() time.Time
	contextTimeout time.Duration
}

// NewApprovalService creates the approval queue. notifier receives the
// membership-granted signal on approval; emailService (optional) sends the
// requester the outcome.
func NewApprovalService(requestRepo domain.MembershipRequestRepository,
	inviteRepo domain.InviteRepository,
	notifier domain.MembershipNotifier,
	emailService domain.EmailService,
	now func() time.Time,
	timeout time.Duration,
) domain.ApprovalService {
	return &approvalService{
		requestRepo:    requestRepo,
		inviteRepo:     inviteRepo,
		notifier:       notifier,
		emailService:   emailService,
		now:            now,
		contextTimeout: timeout,
	}
}

func (s *approvalService) SubmitRequest(ctx context.Context, channelID string, redeemer domain.RedeemerIdentity, code, message string) (*domain.MembershipRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = domain.NormalizeInviteCode(code)
	invite, err := s.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	req := &domain.MembershipRequest{
		ChannelID:   channelID,
		UserID:      redeemer.UserID,
		Username:    redeemer.Username,
		Email:       strings.TrimSpace(strings.ToLower(redeemer.Email)),
		RequestedAt: s.now(),
		InviteCode:  code,
		InvitedBy:   invite.CreatedBy,
		Message:     truncate(strings.TrimSpace(message), requestMessageMaxLen),
		Status:      domain.RequestStatusPending,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create membership request: %w", err)
	}
	return req, nil
}

func (s *approvalService) Approve(ctx context.Context, requestID, actorID string) (*domain.MembershipRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	resolvedAt := s.now()
	won, err := s.requestRepo.Resolve(ctx, requestID, domain.RequestStatusApproved, actorID, "", resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("resolve membership request: %w", err)
	}
	if !won {
		return nil, domain.ErrAlreadyResolved
	}
	req.Status = domain.RequestStatusApproved
	req.ResolvedAt = &resolvedAt
	req.ResolvedBy = actorID

	if s.notifier != nil {
		s.notifier.MembershipGranted(ctx, domain.MembershipEvent{
			ChannelID:  req.ChannelID,
			UserID:     req.UserID,
			InviteCode: req.InviteCode,
		})
	}
	s.sendDecisionNotice(ctx, req)
	return req, nil
}

func (s *approvalService) Reject(ctx context.Context, requestID, actorID, reason string) (*domain.MembershipRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	reason = truncate(strings.TrimSpace(reason), rejectionReasonMaxLen)
	resolvedAt := s.now()
	won, err := s.requestRepo.Resolve(ctx, requestID, domain.RequestStatusRejected, actorID, reason, resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("resolve membership request: %w", err)
	}
	if !won {
		return nil, domain.ErrAlreadyResolved
	}
	req.Status = domain.RequestStatusRejected
	req.ResolvedAt = &resolvedAt
	req.ResolvedBy = actorID
	req.RejectionReason = reason

	// The redemption consumed a use but no membership resulted; give it back.
	// The rejection is already durable at this point, and a retry would only
	// see ErrAlreadyResolved, so a failed release cannot fail the decision.
	if err := s.inviteRepo.ReleaseUse(ctx, req.InviteCode); err != nil {
		log.Printf("[APPROVAL] failed to release use for invite %s after rejecting request %s: %v", req.InviteCode, req.ID, err)
	}
	s.sendDecisionNotice(ctx, req)
	return req, nil
}

func (s *approvalService) GetRequest(ctx context.Context, requestID string) (*domain.MembershipRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getRequest(ctx, requestID)
}

func (s *approvalService) ListRequests(ctx context.Context, channelID string, filter domain.RequestFilter, params domain.PaginationParams) ([]*domain.MembershipRequest, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reqs, total, err := s.requestRepo.ListByChannelID(ctx, channelID, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list membership requests: %w", err)
	}
	if reqs == nil {
		reqs = []*domain.MembershipRequest{}
	}
	return reqs, total, nil
}

func (s *approvalService) getRequest(ctx context.Context, requestID string) (*domain.MembershipRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get membership request: %w", err)
	}
	return req, nil
}

// sendDecisionNotice emails the requester the outcome. The decision stands
// whether or not the email goes out.
func (s *approvalService) sendDecisionNotice(ctx context.Context, req *domain.MembershipRequest) {
	if s.emailService == nil || req.Email == "" {
		return
	}
	_ = s.emailService.SendDecisionNotice(ctx, req)
}
