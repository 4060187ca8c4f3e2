package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for invite operations.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvitesDisabled    = errors.New("invites are disabled for this channel")
	ErrCodeSpaceExhausted = errors.New("invite code space exhausted")
)

// InviteStatus is the stored status of an invite. Expiry and use exhaustion
// are derived at read time, not stored.
type InviteStatus string

const (
	InviteStatusActive  InviteStatus = "active"
	InviteStatusRevoked InviteStatus = "revoked"
)

// EffectiveStatus is the derived state of an invite after applying the
// revocation, expiry, and use-count rules.
type EffectiveStatus string

const (
	EffectiveActive  EffectiveStatus = "active"
	EffectiveExpired EffectiveStatus = "expired"
	EffectiveUsedUp  EffectiveStatus = "used_up"
	EffectiveRevoked EffectiveStatus = "revoked"
)

// NotActiveError reports a redemption attempt against an invite in a terminal
// state. Reason is one of EffectiveExpired, EffectiveUsedUp, EffectiveRevoked
// so callers can explain precisely why the link no longer works.
type NotActiveError struct {
	Reason EffectiveStatus
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("invite is not active: %s", e.Reason)
}

// Invite is a redeemable code granting channel access subject to use and
// expiry limits. RequireApproval and AllowedRoles are snapshots of the
// channel policy at creation time; later policy changes do not affect
// already-issued invites.
// swagger:model Invite
type Invite struct {
	ID              string       `json:"id"`
	Code            string       `json:"code"`
	ChannelID       string       `json:"channel_id"`
	CreatedBy       string       `json:"created_by"`
	CreatedAt       time.Time    `json:"created_at"`
	ExpiresAt       *time.Time   `json:"expires_at,omitempty"`
	MaxUses         uint         `json:"max_uses"`
	CurrentUses     uint         `json:"current_uses"`
	Status          InviteStatus `json:"status"`
	RequireApproval bool         `json:"require_approval"`
	AllowedRoles    []Role       `json:"allowed_roles"`
	CustomMessage   string       `json:"custom_message,omitempty"`
}

// EffectiveStatus derives the invite's state at now. Precedence:
// revoked > expired > used up > active.
func (i *Invite) EffectiveStatus(now time.Time) EffectiveStatus {
	if i.Status == InviteStatusRevoked {
		return EffectiveRevoked
	}
	if i.ExpiresAt != nil && !now.Before(*i.ExpiresAt) {
		return EffectiveExpired
	}
	if i.MaxUses > 0 && i.CurrentUses >= i.MaxUses {
		return EffectiveUsedUp
	}
	return EffectiveActive
}

// NormalizeInviteCode canonicalizes a code for comparison and storage. Codes
// are case-insensitive; the canonical form is uppercase.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// InviteRepository defines storage operations for invites. Redeem, ReleaseUse,
// and Revoke must be linearizable per invite row; see the service contracts.
type InviteRepository interface {
	Create(ctx context.Context, invite *Invite) error
	GetByCode(ctx context.Context, code string) (*Invite, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByChannelID(ctx context.Context, channelID string, params PaginationParams) ([]*Invite, int, error)
	// Redeem atomically increments current_uses if the invite is still
	// active, under its use limit, and not expired at now. Returns false
	// when the guard fails.
	Redeem(ctx context.Context, code string, now time.Time) (bool, error)
	// ReleaseUse decrements current_uses, never below zero.
	ReleaseUse(ctx context.Context, code string) error
	// Revoke marks the invite revoked. Returns false if no such code exists.
	// Revoking an already-revoked invite succeeds.
	Revoke(ctx context.Context, code string) (bool, error)
}

// InviteService defines the invite registry: creation gated by the channel
// policy, case-insensitive resolution, linearizable redemption, and
// idempotent revocation.
type InviteService interface {
	// CreateInvite issues a new invite for the channel, snapshotting the
	// current policy. Fails with ErrInvitesDisabled when the policy forbids
	// invites and ErrCodeSpaceExhausted when a unique code cannot be found.
	CreateInvite(ctx context.Context, channelID, actorID, customMessage string) (*Invite, error)
	// EmailInvites creates a single invite and emails its link to each
	// address. Returns the invite, the number of emails sent, and the
	// addresses that failed.
	EmailInvites(ctx context.Context, channelID, actorID string, emails []string, customMessage string) (*Invite, int, []string, error)
	// Resolve looks up an invite by code, case-insensitively.
	Resolve(ctx context.Context, code string) (*Invite, error)
	// Redeem consumes one use of the invite. Fails with ErrNotFound or a
	// *NotActiveError carrying the terminal reason. On success the returned
	// invite reflects the incremented use count.
	Redeem(ctx context.Context, code string) (*Invite, error)
	// ReleaseUse returns a previously consumed use, never below zero. Used
	// when a redemption ultimately produces no membership.
	ReleaseUse(ctx context.Context, code string) error
	// Revoke marks the invite revoked; revoking twice is a no-op success.
	Revoke(ctx context.Context, code, actorID string) error
	ListInvites(ctx context.Context, channelID string, params PaginationParams) ([]*Invite, int, error)
	// InviteLink renders the externally shareable link for a code.
	InviteLink(code string) string
}
