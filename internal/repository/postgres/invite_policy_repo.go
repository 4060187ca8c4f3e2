package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"channelinvites/internal/domain"
)

type invitePolicyRepository struct {
	DB *sql.DB
}

// NewInvitePolicyRepository returns a domain.InvitePolicyRepository implemented with Postgres.
func NewInvitePolicyRepository(db *sql.DB) domain.InvitePolicyRepository {
	return &invitePolicyRepository{DB: db}
}

func (r *invitePolicyRepository) Get(ctx context.Context, channelID string) (*domain.InvitePolicy, error) {
	query := `
		SELECT channel_id, allow_invites, require_approval, max_uses, expires_after_days, allowed_roles, public_join
		FROM invite_policies
		WHERE channel_id = $1
	`
	policy := &domain.InvitePolicy{}
	var roles pq.StringArray
	err := r.DB.QueryRowContext(ctx, query, channelID).Scan(
		&policy.ChannelID,
		&policy.AllowInvites,
		&policy.RequireApproval,
		&policy.MaxUses,
		&policy.ExpiresAfterDays,
		&roles,
		&policy.PublicJoin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	policy.AllowedRoles = toRoles(roles)
	return policy, nil
}

func (r *invitePolicyRepository) Upsert(ctx context.Context, policy *domain.InvitePolicy) error {
	query := `
		INSERT INTO invite_policies (channel_id, allow_invites, require_approval, max_uses, expires_after_days, allowed_roles, public_join)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (channel_id) DO UPDATE SET
			allow_invites = EXCLUDED.allow_invites,
			require_approval = EXCLUDED.require_approval,
			max_uses = EXCLUDED.max_uses,
			expires_after_days = EXCLUDED.expires_after_days,
			allowed_roles = EXCLUDED.allowed_roles,
			public_join = EXCLUDED.public_join
	`
	_, err := r.DB.ExecContext(ctx, query,
		policy.ChannelID,
		policy.AllowInvites,
		policy.RequireApproval,
		policy.MaxUses,
		policy.ExpiresAfterDays,
		fromRoles(policy.AllowedRoles),
		policy.PublicJoin,
	)
	return err
}

func toRoles(arr pq.StringArray) []domain.Role {
	roles := make([]domain.Role, len(arr))
	for i, s := range arr {
		roles[i] = domain.Role(s)
	}
	return roles
}

func fromRoles(roles []domain.Role) pq.StringArray {
	arr := make(pq.StringArray, len(roles))
	for i, r := range roles {
		arr[i] = string(r)
	}
	return arr
}
