package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"channelinvites/internal/domain"
)

type inviteRepository struct {
	DB *sql.DB
}

// NewInviteRepository returns a domain.InviteRepository implemented with Postgres.
// The use-count and status mutations are single conditional UPDATEs, so each
// invite's transitions are serialized by the database row lock.
func NewInviteRepository(db *sql.DB) domain.InviteRepository {
	return &inviteRepository{DB: db}
}

const inviteColumns = `id, code, channel_id, created_by, created_at, expires_at, max_uses, current_uses, status, require_approval, allowed_roles, custom_message`

func (r *inviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	query := `
		INSERT INTO invites (code, channel_id, created_by, created_at, expires_at, max_uses, current_uses, status, require_approval, allowed_roles, custom_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		invite.Code,
		invite.ChannelID,
		invite.CreatedBy,
		invite.CreatedAt,
		invite.ExpiresAt,
		invite.MaxUses,
		invite.CurrentUses,
		string(invite.Status),
		invite.RequireApproval,
		fromRoles(invite.AllowedRoles),
		invite.CustomMessage,
	).Scan(&invite.ID)
}

func (r *inviteRepository) GetByCode(ctx context.Context, code string) (*domain.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE UPPER(code) = UPPER($1)
	`
	return r.scanInvite(r.DB.QueryRowContext(ctx, query, code))
}

func (r *inviteRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM invites WHERE UPPER(code) = UPPER($1))`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *inviteRepository) ListByChannelID(ctx context.Context, channelID string, params domain.PaginationParams) ([]*domain.Invite, int, error) {
	countQuery := `SELECT COUNT(*) FROM invites WHERE channel_id = $1`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, channelID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE channel_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, channelID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invites []*domain.Invite
	for rows.Next() {
		invite, err := r.scanInvite(rows)
		if err != nil {
			return nil, 0, err
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if invites == nil {
		invites = []*domain.Invite{}
	}
	return invites, total, nil
}

func (r *inviteRepository) Redeem(ctx context.Context, code string, now time.Time) (bool, error) {
	query := `
		UPDATE invites
		SET current_uses = current_uses + 1
		WHERE UPPER(code) = UPPER($1)
		  AND status = 'active'
		  AND (max_uses = 0 OR current_uses < max_uses)
		  AND (expires_at IS NULL OR expires_at > $2)
	`
	result, err := r.DB.ExecContext(ctx, query, code, now)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *inviteRepository) ReleaseUse(ctx context.Context, code string) error {
	query := `
		UPDATE invites
		SET current_uses = current_uses - 1
		WHERE UPPER(code) = UPPER($1)
		  AND current_uses > 0
	`
	_, err := r.DB.ExecContext(ctx, query, code)
	return err
}

func (r *inviteRepository) Revoke(ctx context.Context, code string) (bool, error) {
	query := `
		UPDATE invites
		SET status = 'revoked'
		WHERE UPPER(code) = UPPER($1)
	`
	result, err := r.DB.ExecContext(ctx, query, code)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanInvite.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *inviteRepository) scanInvite(row rowScanner) (*domain.Invite, error) {
	invite := &domain.Invite{}
	var (
		expiresAt     sql.NullTime
		status        string
		roles         pq.StringArray
		customMessage sql.NullString
	)
	err := row.Scan(
		&invite.ID,
		&invite.Code,
		&invite.ChannelID,
		&invite.CreatedBy,
		&invite.CreatedAt,
		&expiresAt,
		&invite.MaxUses,
		&invite.CurrentUses,
		&status,
		&invite.RequireApproval,
		&roles,
		&customMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		invite.ExpiresAt = &t
	}
	invite.Status = domain.InviteStatus(status)
	invite.AllowedRoles = toRoles(roles)
	invite.CustomMessage = customMessage.String
	return invite, nil
}
