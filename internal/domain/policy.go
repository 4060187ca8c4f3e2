package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned when a policy mutation violates a policy invariant.
var ErrInvalidPolicy = errors.New("invalid invite policy")

// Role is a channel role that an invite may admit a redeemer as.
type Role string

// Channel roles.
const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the known channel roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleMember, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// InvitePolicy is the per-channel configuration governing invite creation and
// redemption. Exactly one policy exists per channel; a channel that was never
// configured gets the defaults from DefaultInvitePolicy.
// swagger:model InvitePolicy
type InvitePolicy struct {
	ChannelID        string `json:"channel_id"`
	AllowInvites     bool   `json:"allow_invites"`
	RequireApproval  bool   `json:"require_approval"`
	MaxUses          uint   `json:"max_uses"`           // 0 = unlimited
	ExpiresAfterDays uint   `json:"expires_after_days"` // 0 = never
	AllowedRoles     []Role `json:"allowed_roles"`
	PublicJoin       bool   `json:"public_join"`
}

// DefaultInvitePolicy returns the policy applied to a channel on first access.
func DefaultInvitePolicy(channelID string) *InvitePolicy {
	return &InvitePolicy{
		ChannelID:        channelID,
		AllowInvites:     true,
		RequireApproval:  false,
		MaxUses:          0,
		ExpiresAfterDays: 7,
		AllowedRoles:     []Role{RoleMember},
		PublicJoin:       false,
	}
}

// Validate checks the policy invariants. Violations are reported as
// ErrInvalidPolicy wrapped with the specific rule that failed.
func (p *InvitePolicy) Validate() error {
	if p.ChannelID == "" {
		return fmt.Errorf("%w: channel id is required", ErrInvalidPolicy)
	}
	if p.PublicJoin && !p.AllowInvites {
		return fmt.Errorf("%w: public join requires invites to be allowed", ErrInvalidPolicy)
	}
	for _, r := range p.AllowedRoles {
		if !ValidRole(r) {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidPolicy, r)
		}
	}
	return nil
}

// InvitePolicyUpdate carries a partial policy mutation. Nil fields are left
// unchanged; a non-nil AllowedRoles replaces the whole set.
type InvitePolicyUpdate struct {
	AllowInvites     *bool  `json:"allow_invites,omitempty"`
	RequireApproval  *bool  `json:"require_approval,omitempty"`
	MaxUses          *uint  `json:"max_uses,omitempty"`
	ExpiresAfterDays *uint  `json:"expires_after_days,omitempty"`
	AllowedRoles     []Role `json:"allowed_roles,omitempty"`
	PublicJoin       *bool  `json:"public_join,omitempty"`
}

// Apply copies the non-nil fields of u onto p.
func (u *InvitePolicyUpdate) Apply(p *InvitePolicy) {
	if u.AllowInvites != nil {
		p.AllowInvites = *u.AllowInvites
	}
	if u.RequireApproval != nil {
		p.RequireApproval = *u.RequireApproval
	}
	if u.MaxUses != nil {
		p.MaxUses = *u.MaxUses
	}
	if u.ExpiresAfterDays != nil {
		p.ExpiresAfterDays = *u.ExpiresAfterDays
	}
	if u.AllowedRoles != nil {
		p.AllowedRoles = u.AllowedRoles
	}
	if u.PublicJoin != nil {
		p.PublicJoin = *u.PublicJoin
	}
}

// InvitePolicyRepository defines storage operations for invite policies.
type InvitePolicyRepository interface {
	Get(ctx context.Context, channelID string) (*InvitePolicy, error)
	Upsert(ctx context.Context, policy *InvitePolicy) error
}

// PolicyService defines the business logic for reading and mutating a
// channel's invite policy.
type PolicyService interface {
	// GetPolicy returns the stored policy, materializing the defaults on
	// first access.
	GetPolicy(ctx context.Context, channelID string) (*InvitePolicy, error)
	// UpdatePolicy applies a partial update, validating the invariants.
	UpdatePolicy(ctx context.Context, channelID, actorID string, update *InvitePolicyUpdate) (*InvitePolicy, error)
}
