package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"channelinvites/internal/domain"
)

const (
	inviteCodeLength    = 8
	maxCodeAttempts     = 5
	customMessageMaxLen = 200
)

var inviteCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

type inviteService struct {
	inviteRepo     domain.InviteRepository
	policies       domain.PolicyService
	emailService   domain.EmailService
	notifier       domain.ChangeNotifier
	linkBase       string
	now            func() time.Time
	contextTimeout time.Duration
}

// NewInviteService creates the invite registry. linkBase is the external base
// URL invite links are built from; now is the clock used for expiry
// evaluation.
func NewInviteService(inviteRepo domain.InviteRepository,
	policies domain.PolicyService,
	emailService domain.EmailService,
	notifier domain.ChangeNotifier,
	linkBase string,
	now func() time.Time,
	timeout time.Duration,
) domain.InviteService {
	return &inviteService{
		inviteRepo:     inviteRepo,
		policies:       policies,
		emailService:   emailService,
		notifier:       notifier,
		linkBase:       strings.TrimSuffix(linkBase, "/"),
		now:            now,
		contextTimeout: timeout,
	}
}

func (s *inviteService) CreateInvite(ctx context.Context, channelID, actorID, customMessage string) (*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	policy, err := s.policies.GetPolicy(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !policy.AllowInvites {
		return nil, domain.ErrInvitesDisabled
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var expiresAt *time.Time
	if policy.ExpiresAfterDays > 0 {
		t := now.Add(time.Duration(policy.ExpiresAfterDays) * 24 * time.Hour)
		expiresAt = &t
	}
	roles := make([]domain.Role, len(policy.AllowedRoles))
	copy(roles, policy.AllowedRoles)

	invite := &domain.Invite{
		Code:            code,
		ChannelID:       channelID,
		CreatedBy:       actorID,
		CreatedAt:       now,
		ExpiresAt:       expiresAt,
		MaxUses:         policy.MaxUses,
		CurrentUses:     0,
		Status:          domain.InviteStatusActive,
		RequireApproval: policy.RequireApproval,
		AllowedRoles:    roles,
		CustomMessage:   truncate(strings.TrimSpace(customMessage), customMessageMaxLen),
	}
	if err := s.inviteRepo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	if s.notifier != nil {
		s.notifier.InviteChanged(ctx, channelID, invite.Code)
	}
	return invite, nil
}

func (s *inviteService) EmailInvites(ctx context.Context, channelID, actorID string, emails []string, customMessage string) (*domain.Invite, int, []string, error) {
	invite, err := s.CreateInvite(ctx, channelID, actorID, customMessage)
	if err != nil {
		return nil, 0, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sent, failed, err := s.emailService.SendInviteEmails(ctx, invite, s.InviteLink(invite.Code), emails)
	if err != nil {
		return invite, sent, failed, fmt.Errorf("send invite emails: %w", err)
	}
	return invite, sent, failed, nil
}

func (s *inviteService) Resolve(ctx context.Context, code string) (*domain.Invite, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invite, err := s.inviteRepo.GetByCode(ctx, domain.NormalizeInviteCode(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return invite, nil
}

func (s *inviteService) Redeem(ctx context.Context, code string) (*domain.Invite, error) {
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
	now := s.now()
	if st := invite.EffectiveStatus(now); st != domain.EffectiveActive {
		return nil, &domain.NotActiveError{Reason: st}
	}
	ok, err := s.inviteRepo.Redeem(ctx, code, now)
	if err != nil {
		return nil, fmt.Errorf("redeem invite: %w", err)
	}
	if !ok {
		// Lost a race with a concurrent redeem or revoke. Re-read for the
		// precise terminal reason.
		fresh, err := s.inviteRepo.GetByCode(ctx, code)
		if err == nil {
			if st := fresh.EffectiveStatus(now); st != domain.EffectiveActive {
				return nil, &domain.NotActiveError{Reason: st}
			}
		}
		return nil, &domain.NotActiveError{Reason: domain.EffectiveUsedUp}
	}
	invite.CurrentUses++
	if s.notifier != nil {
		s.notifier.InviteChanged(ctx, invite.ChannelID, invite.Code)
	}
	return invite, nil
}

func (s *inviteService) ReleaseUse(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.inviteRepo.ReleaseUse(ctx, domain.NormalizeInviteCode(code)); err != nil {
		return fmt.Errorf("release invite use: %w", err)
	}
	return nil
}

func (s *inviteService) Revoke(ctx context.Context, code, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = domain.NormalizeInviteCode(code)
	invite, err := s.inviteRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invite: %w", err)
	}
	found, err := s.inviteRepo.Revoke(ctx, code)
	if err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	if s.notifier != nil {
		s.notifier.InviteChanged(ctx, invite.ChannelID, code)
	}
	return nil
}

func (s *inviteService) ListInvites(ctx context.Context, channelID string, params domain.PaginationParams) ([]*domain.Invite, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	invites, total, err := s.inviteRepo.ListByChannelID(ctx, channelID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invites: %w", err)
	}
	if invites == nil {
		invites = []*domain.Invite{}
	}
	return invites, total, nil
}

func (s *inviteService) InviteLink(code string) string {
	return s.linkBase + "/invite/" + domain.NormalizeInviteCode(code)
}

// uniqueCode generates a code and retries on collision. The code space is
// 36^8, so running out of attempts indicates a systemic fault.
func (s *inviteService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		exists, err := s.inviteRepo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.ErrCodeSpaceExhausted
}

func generateInviteCode() (string, error) {
	b := make([]rune, inviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(b), nil
}

// truncate caps s at max runes. Cutting on rune boundaries keeps truncated
// text valid UTF-8 for storage.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
