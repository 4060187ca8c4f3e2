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

func TestInviteRepository_Create(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := createdAt.Add(7 * 24 * time.Hour)

	tests := []struct {
		name    string
		invite  *domain.Invite
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			invite: &domain.Invite{
				Code:            "ABCD1234",
				ChannelID:       "chan-1",
				CreatedBy:       "user-1",
				CreatedAt:       createdAt,
				ExpiresAt:       &expiresAt,
				MaxUses:         5,
				Status:          domain.InviteStatusActive,
				RequireApproval: true,
				AllowedRoles:    []domain.Role{domain.RoleMember},
				CustomMessage:   "welcome",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invites \(code, channel_id, created_by, created_at, expires_at, max_uses, current_uses, status, require_approval, allowed_roles, custom_message\)`).
					WithArgs("ABCD1234", "chan-1", "user-1", createdAt, &expiresAt, uint(5), uint(0), "active", true, fromRoles([]domain.Role{domain.RoleMember}), "welcome").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-uuid-1"))
			},
			wantID:  "inv-uuid-1",
			wantErr: false,
		},
		{
			name: "db error",
			invite: &domain.Invite{
				Code:      "WXYZ5678",
				ChannelID: "chan-1",
				CreatedBy: "user-1",
				CreatedAt: createdAt,
				Status:    domain.InviteStatusActive,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invites`).
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
			repo := NewInviteRepository(db)
			err = repo.Create(ctx, tt.invite)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.invite.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInviteRepository_GetByCode(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	inviteRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "code", "channel_id", "created_by", "created_at", "expires_at", "max_uses", "current_uses", "status", "require_approval", "allowed_roles", "custom_message"})
	}

	tests := []struct {
		name    string
		code    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Invite
		wantErr error
	}{
		{
			name: "success",
			code: "ABCD1234",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, code, channel_id, created_by, created_at, expires_at, max_uses, current_uses, status, require_approval, allowed_roles, custom_message`).
					WithArgs("ABCD1234").
					WillReturnRows(inviteRows().
						AddRow("inv-1", "ABCD1234", "chan-1", "user-1", createdAt, nil, uint(5), uint(2), "active", true, "{member,moderator}", "welcome"))
			},
			want: &domain.Invite{
				ID:              "inv-1",
				Code:            "ABCD1234",
				ChannelID:       "chan-1",
				CreatedBy:       "user-1",
				CreatedAt:       createdAt,
				MaxUses:         5,
				CurrentUses:     2,
				Status:          domain.InviteStatusActive,
				RequireApproval: true,
				AllowedRoles:    []domain.Role{domain.RoleMember, domain.RoleModerator},
				CustomMessage:   "welcome",
			},
		},
		{
			name: "not found",
			code: "MISSING0",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, code, channel_id, created_by, created_at, expires_at, max_uses, current_uses, status, require_approval, allowed_roles, custom_message`).
					WithArgs("MISSING0").
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
			repo := NewInviteRepository(db)
			got, err := repo.GetByCode(ctx, tt.code)
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

func TestInviteRepository_CodeExists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		exists bool
	}{
		{name: "exists", exists: true},
		{name: "free", exists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM invites WHERE UPPER\(code\) = UPPER\(\$1\)\)`).
				WithArgs("ABCD1234").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			repo := NewInviteRepository(db)
			got, err := repo.CodeExists(ctx, "ABCD1234")
			require.NoError(t, err)
			require.Equal(t, tt.exists, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInviteRepository_Redeem(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "winner", affected: 1, want: true},
		{name: "guard rejected", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`UPDATE invites\s+SET current_uses = current_uses \+ 1`).
				WithArgs("ABCD1234", now).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			repo := NewInviteRepository(db)
			got, err := repo.Redeem(ctx, "ABCD1234", now)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInviteRepository_ReleaseUse(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE invites\s+SET current_uses = current_uses - 1`).
		WithArgs("ABCD1234").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewInviteRepository(db)
	require.NoError(t, repo.ReleaseUse(ctx, "ABCD1234"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInviteRepository_Revoke(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "found", affected: 1, want: true},
		{name: "missing", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(`UPDATE invites\s+SET status = 'revoked'`).
				WithArgs("ABCD1234").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			repo := NewInviteRepository(db)
			got, err := repo.Revoke(ctx, "ABCD1234")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInviteRepository_ListByChannelID(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM invites WHERE channel_id = \$1`).
		WithArgs("chan-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT id, code, channel_id, created_by, created_at, expires_at, max_uses, current_uses, status, require_approval, allowed_roles, custom_message`).
		WithArgs("chan-1", 10, 10).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "code", "channel_id", "created_by", "created_at", "expires_at", "max_uses", "current_uses", "status", "require_approval", "allowed_roles", "custom_message"}).
			AddRow("inv-1", "ABCD1234", "chan-1", "user-1", createdAt, nil, uint(0), uint(0), "active", false, "{member}", nil).
			AddRow("inv-2", "WXYZ5678", "chan-1", "user-2", createdAt, nil, uint(1), uint(1), "revoked", false, "{member}", nil))

	repo := NewInviteRepository(db)
	invites, total, err := repo.ListByChannelID(ctx, "chan-1", domain.PaginationParams{Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 12, total)
	require.Len(t, invites, 2)
	require.Equal(t, "ABCD1234", invites[0].Code)
	require.Equal(t, domain.InviteStatusRevoked, invites[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
