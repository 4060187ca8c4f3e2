package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"channelinvites/internal/domain"
)

type policyService struct {
	policyRepo     domain.InvitePolicyRepository
	notifier       domain.ChangeNotifier
	contextTimeout time.Duration
}

// NewPolicyService creates a PolicyService backed by the given repository.
func NewPolicyService(policyRepo domain.InvitePolicyRepository, notifier domain.ChangeNotifier, timeout time.Duration) domain.PolicyService {
	return &policyService{
		policyRepo:     policyRepo,
		notifier:       notifier,
		contextTimeout: timeout,
	}
}

func (s *policyService) GetPolicy(ctx context.Context, channelID string) (*domain.InvitePolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if channelID == "" {
		return nil, fmt.Errorf("%w: channel id is required", domain.ErrInvalidPolicy)
	}
	policy, err := s.policyRepo.Get(ctx, channelID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get invite policy: %w", err)
		}
		// First access: materialize the defaults.
		policy = domain.DefaultInvitePolicy(channelID)
		if err := s.policyRepo.Upsert(ctx, policy); err != nil {
			return nil, fmt.Errorf("store default invite policy: %w", err)
		}
	}
	return policy, nil
}

func (s *policyService) UpdatePolicy(ctx context.Context, channelID, actorID string, update *domain.InvitePolicyUpdate) (*domain.InvitePolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	policy, err := s.GetPolicy(ctx, channelID)
	if err != nil {
		return nil, err
	}
	update.Apply(policy)
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := s.policyRepo.Upsert(ctx, policy); err != nil {
		return nil, fmt.Errorf("store invite policy: %w", err)
	}
	if s.notifier != nil {
		s.notifier.PolicyChanged(ctx, channelID)
	}
	return policy, nil
}
