package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"channelinvites/internal/domain"
)

type membershipRequestRepository struct {
	DB *sql.DB
}

// NewMembershipRequestRepository returns a domain.MembershipRequestRepository
// implemented with Postgres. Resolve is a conditional UPDATE on
// status = 'pending', so racing decisions have exactly one winner.
func NewMembershipRequestRepository(db *sql.DB) domain.MembershipRequestRepository {
	return &membershipRequestRepository{DB: db}
}

const requestColumns = `id, channel_id, user_id, username, email, requested_at, invite_code, invited_by, message, status, resolved_at, resolved_by, rejection_reason`

func (r *membershipRequestRepository) Create(ctx context.Context, req *domain.MembershipRequest) error {
	query := `
		INSERT INTO membership_requests (channel_id, user_id, username, email, requested_at, invite_code, invited_by, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		req.ChannelID,
		req.UserID,
		req.Username,
		req.Email,
		req.RequestedAt,
		req.InviteCode,
		req.InvitedBy,
		req.Message,
		string(req.Status),
	).Scan(&req.ID)
}

func (r *membershipRequestRepository) GetByID(ctx context.Context, id string) (*domain.MembershipRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM membership_requests
		WHERE id = $1
	`
	return r.scanRequest(r.DB.QueryRowContext(ctx, query, id))
}

func (r *membershipRequestRepository) Resolve(ctx context.Context, id string, status domain.RequestStatus, actorID, reason string, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE membership_requests
		SET status = $2, resolved_at = $3, resolved_by = $4, rejection_reason = $5
		WHERE id = $1
		  AND status = 'pending'
	`
	result, err := r.DB.ExecContext(ctx, query, id, string(status), resolvedAt, actorID, nullString(reason))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *membershipRequestRepository) ListByChannelID(ctx context.Context, channelID string, filter domain.RequestFilter, params domain.PaginationParams) ([]*domain.MembershipRequest, int, error) {
	where := `WHERE channel_id = $1`
	args := []any{channelID}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND (username ILIKE $%d OR email ILIKE $%d)", len(args), len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM membership_requests ` + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+requestColumns+`
		FROM membership_requests
		%s
		ORDER BY requested_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []*domain.MembershipRequest
	for rows.Next() {
		req, err := r.scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if reqs == nil {
		reqs = []*domain.MembershipRequest{}
	}
	return reqs, total, nil
}

func (r *membershipRequestRepository) scanRequest(row rowScanner) (*domain.MembershipRequest, error) {
	req := &domain.MembershipRequest{}
	var (
		message         sql.NullString
		status          string
		resolvedAt      sql.NullTime
		resolvedBy      sql.NullString
		rejectionReason sql.NullString
	)
	err := row.Scan(
		&req.ID,
		&req.ChannelID,
		&req.UserID,
		&req.Username,
		&req.Email,
		&req.RequestedAt,
		&req.InviteCode,
		&req.InvitedBy,
		&message,
		&status,
		&resolvedAt,
		&resolvedBy,
		&rejectionReason,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	req.Message = message.String
	req.Status = domain.RequestStatus(status)
	if resolvedAt.Valid {
		t := resolvedAt.Time
		req.ResolvedAt = &t
	}
	req.ResolvedBy = resolvedBy.String
	req.RejectionReason = rejectionReason.String
	return req, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
