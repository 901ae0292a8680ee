package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kudihq/kudi/core/db"
	"github.com/kudihq/kudi/internal/model"
)

type teamMemberStore struct {
	db db.DBTX
}

const memberColumns = `id, organization_id, user_id, role, status, business_access,
	permissions_override, invited_email, invited_by, invited_at, invitation_token,
	invite_expires_at, accepted_at, created_at, updated_at`

func scanTeamMember(row pgx.Row) (*model.TeamMember, error) {
	var m model.TeamMember
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.Status,
		&m.BusinessAccess, &m.PermissionsOverride, &m.InvitedEmail, &m.InvitedBy,
		&m.InvitedAt, &m.InvitationToken, &m.InviteExpiresAt, &m.AcceptedAt,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *teamMemberStore) Create(ctx context.Context, member *model.TeamMember) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO team_members (id, organization_id, user_id, role, status,
			business_access, permissions_override, invited_email, invited_by,
			invited_at, invitation_token, invite_expires_at, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+memberColumns,
		member.ID, member.OrganizationID, member.UserID, member.Role, member.Status,
		member.BusinessAccess, member.PermissionsOverride, member.InvitedEmail,
		member.InvitedBy, member.InvitedAt, member.InvitationToken,
		member.InviteExpiresAt, member.AcceptedAt)
	created, err := scanTeamMember(row)
	if err != nil {
		return err
	}
	*member = *created
	return nil
}

func (s *teamMemberStore) GetByID(ctx context.Context, id int64) (*model.TeamMember, error) {
	return scanTeamMember(s.db.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM team_members WHERE id = $1`, id))
}

func (s *teamMemberStore) GetActive(ctx context.Context, orgID, userID int64) (*model.TeamMember, error) {
	return scanTeamMember(s.db.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM team_members
		WHERE organization_id = $1 AND user_id = $2 AND status = 'active'`,
		orgID, userID))
}

func (s *teamMemberStore) GetByInviteToken(ctx context.Context, token string) (*model.TeamMember, error) {
	return scanTeamMember(s.db.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM team_members WHERE invitation_token = $1`, token))
}

func (s *teamMemberStore) GetLiveByEmail(ctx context.Context, orgID int64, email string) (*model.TeamMember, error) {
	return scanTeamMember(s.db.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM team_members
		WHERE organization_id = $1 AND invited_email = $2
		  AND status IN ('pending', 'active')
		ORDER BY created_at DESC
		LIMIT 1`, orgID, email))
}

func (s *teamMemberStore) CountActive(ctx context.Context, orgID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT count(*) FROM team_members
		WHERE organization_id = $1 AND status = 'active'`, orgID).Scan(&count)
	return count, err
}

func (s *teamMemberStore) Accept(ctx context.Context, id, userID int64, at time.Time) (*model.TeamMember, error) {
	return scanTeamMember(s.db.QueryRow(ctx, `
		UPDATE team_members SET
			user_id = $2, status = 'active', accepted_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+memberColumns, id, userID, at))
}

func (s *teamMemberStore) SetStatus(ctx context.Context, id int64, status model.MemberStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE team_members SET status = $2, updated_at = now() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *teamMemberStore) Update(ctx context.Context, member *model.TeamMember) error {
	row := s.db.QueryRow(ctx, `
		UPDATE team_members SET
			role = $2, business_access = $3, permissions_override = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+memberColumns,
		member.ID, member.Role, member.BusinessAccess, member.PermissionsOverride)
	updated, err := scanTeamMember(row)
	if err != nil {
		return err
	}
	*member = *updated
	return nil
}

func (s *teamMemberStore) ListByOrganization(ctx context.Context, orgID int64) ([]model.TeamMember, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+memberColumns+` FROM team_members
		WHERE organization_id = $1 AND status <> 'removed'
		ORDER BY created_at`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}
