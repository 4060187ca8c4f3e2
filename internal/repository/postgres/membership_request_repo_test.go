package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"channelinvites/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestMembershipRequestRepository_Create(t *testing.T) {
	ctx := context.Background()
	requestedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     *domain.MembershipRequest
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			req: &domain.MembershipRequest{
				ChannelID:   "chan-1",
				UserID:      "user-9",
				Username:    "casey",
				Email:       "casey@example.com",
				RequestedAt: requestedAt,
				InviteCode:  "ABCD1234",
				InvitedBy:   "user-1",
				Message:     "please",
				Status:      domain.RequestStatusPending,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO membership_requests \(channel_id, user_id, username, email, requested_at, invite_code, invited_by, message, status\)`).
					WithArgs("chan-1", "user-9", "casey", "casey@example.com", requestedAt, "ABCD1234", "user-1", "please", "pending").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("req-uuid-1"))
			},
			wantID:  "req-uuid-1",
			wantErr: false,
		},
		{
			name: "db error",
			req: &domain.MembershipRequest{
				ChannelID:   "chan-1",
				UserID:      "user-9",
				RequestedAt: requestedAt,
				InviteCode:  "ABCD1234",
				Status:      domain.RequestStatusPending,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO membership_requests`).
					WillReturnError(sql.ErrConnDone)
			},
			wantID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewMembershipRequestRepository(db)
			err = repo.Create(ctx, tt.req)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.req.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMembershipRequestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	requestedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolvedAt := requestedAt.Add(time.Hour)

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.MembershipRequest
		wantErr error
	}{
		{
			name: "resolved request",
			id:   "req-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, channel_id, user_id, username, email, requested_at, invite_code, invited_by, message, status, resolved_at, resolved_by, rejection_reason`).
					WithArgs("req-1").
					WillReturnRows(sqlmock.
						NewRows([]string{"id", "channel_id", "user_id", "username", "email", "requested_at", "invite_code", "invited_by", "message", "status", "resolved_at", "resolved_by", "rejection_reason"}).
						AddRow("req-1", "chan-1", "user-9", "casey", "casey@example.com", requestedAt, "ABCD1234", "user-1", nil, "rejected", resolvedAt, "admin-1", "not a fit"))
			},
			want: &domain.MembershipRequest{
				ID:              "req-1",
				ChannelID:       "chan-1",
				UserID:          "user-9",
				Username:        "casey",
				Email:           "casey@example.com",
				RequestedAt:     requestedAt,
				InviteCode:      "ABCD1234",
				InvitedBy:       "user-1",
				Status:          domain.RequestStatusRejected,
				ResolvedAt:      &resolvedAt,
				ResolvedBy:      "admin-1",
				RejectionReason: "not a fit",
			},
		},
		{
			name: "not found",
			id:   "req-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, channel_id, user_id, username, email, requested_at, invite_code, invited_by, message, status, resolved_at, resolved_by, rejection_reason`).
					WithArgs("req-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewMembershipRequestRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMembershipRequestRepository_Resolve(t *testing.T) {
	ctx := context.Background()
	resolvedAt := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "winner", affected: 1, want: true},
		{name: "already resolved", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`UPDATE membership_requests\s+SET status = \$2, resolved_at = \$3, resolved_by = \$4, rejection_reason = \$5`).
				WithArgs("req-1", "rejected", resolvedAt, "admin-1", sql.NullString{String: "no", Valid: true}).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			repo := NewMembershipRequestRepository(db)
			got, err := repo.Resolve(ctx, "req-1", domain.RequestStatusRejected, "admin-1", "no", resolvedAt)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMembershipRequestRepository_ListByChannelID(t *testing.T) {
	ctx := context.Background()
	requestedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	requestRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "channel_id", "user_id", "username", "email", "requested_at", "invite_code", "invited_by", "message", "status", "resolved_at", "resolved_by", "rejection_reason"})
	}

	t.Run("no filter", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM membership_requests WHERE channel_id = \$1`).
			WithArgs("chan-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`WHERE channel_id = \$1\s+ORDER BY requested_at DESC\s+LIMIT \$2 OFFSET \$3`).
			WithArgs("chan-1", 20, 0).
			WillReturnRows(requestRows().
				AddRow("req-1", "chan-1", "user-9", "casey", "casey@example.com", requestedAt, "ABCD1234", "user-1", nil, "pending", nil, nil, nil))

		repo := NewMembershipRequestRepository(db)
		reqs, total, err := repo.ListByChannelID(ctx, "chan-1", domain.RequestFilter{}, domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Len(t, reqs, 1)
		require.Equal(t, domain.RequestStatusPending, reqs[0].Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status and search", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM membership_requests WHERE channel_id = \$1 AND status = \$2 AND \(username ILIKE \$3 OR email ILIKE \$3\)`).
			WithArgs("chan-1", "pending", "%casey%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`WHERE channel_id = \$1 AND status = \$2 AND \(username ILIKE \$3 OR email ILIKE \$3\)\s+ORDER BY requested_at DESC\s+LIMIT \$4 OFFSET \$5`).
			WithArgs("chan-1", "pending", "%casey%", 20, 0).
			WillReturnRows(requestRows())

		repo := NewMembershipRequestRepository(db)
		reqs, total, err := repo.ListByChannelID(ctx, "chan-1", domain.RequestFilter{Status: domain.RequestStatusPending, Search: "casey"}, domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		require.Equal(t, 0, total)
		require.NotNil(t, reqs)
		require.Empty(t, reqs)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
