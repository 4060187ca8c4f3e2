package services

import (
	"context"
	"fmt"
	"time"

	"channelinvites/internal/domain"
)

type membershipService struct {
	invites        domain.InviteService
	approvals      domain.ApprovalService
	notifier       domain.MembershipNotifier
	contextTimeout time.Duration
}

// NewMembershipService creates the lifecycle coordinator over the invite
// registry and the approval queue.
func NewMembershipService(invites domain.InviteService,
	approvals domain.ApprovalService,
	notifier domain.MembershipNotifier,
	timeout time.Duration,
) domain.MembershipService {
	return &membershipService{
		invites:        invites,
		approvals:      approvals,
		notifier:       notifier,
		contextTimeout: timeout,
	}
}

func (s *membershipService) RedeemInvite(ctx context.Context, code string, redeemer domain.RedeemerIdentity, message string) (*domain.RedeemResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Redeem first: current_uses counts successful redemptions regardless of
	// the approval outcome. A later rejection releases the use.
	invite, err := s.invites.Redeem(ctx, code)
	if err != nil {
		return nil, err
	}

	if invite.RequireApproval {
		req, err := s.approvals.SubmitRequest(ctx, invite.ChannelID, redeemer, invite.Code, message)
		if err != nil {
			// No request was enqueued, so give the consumed use back; the
			// caller can retry without burning the invite.
			if relErr := s.invites.ReleaseUse(ctx, invite.Code); relErr != nil {
				return nil, fmt.Errorf("submit membership request: %w (release use: %v)", err, relErr)
			}
			return nil, fmt.Errorf("submit membership request: %w", err)
		}
		return &domain.RedeemResult{
			Outcome: domain.RedeemPendingApproval,
			Invite:  invite,
			Request: req,
		}, nil
	}

	if s.notifier != nil {
		s.notifier.MembershipGranted(ctx, domain.MembershipEvent{
			ChannelID:  invite.ChannelID,
			UserID:     redeemer.UserID,
			InviteCode: invite.Code,
		})
	}
	return &domain.RedeemResult{
		Outcome: domain.RedeemGranted,
		Invite:  invite,
	}, nil
}

func (s *membershipService) DecideRequest(ctx context.Context, requestID, actorID string, decision domain.Decision, reason string) (*domain.MembershipRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	switch decision {
	case domain.DecisionApprove:
		return s.approvals.Approve(ctx, requestID, actorID)
	case domain.DecisionReject:
		return s.approvals.Reject(ctx, requestID, actorID, reason)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDecision, decision)
	}
}
