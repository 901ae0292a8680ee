package model

import "time"

type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleManager    Role = "manager"
	RoleViewer     Role = "viewer"
)

type MemberStatus string

const (
	MemberPending   MemberStatus = "pending"
	MemberActive    MemberStatus = "active"
	MemberSuspended MemberStatus = "suspended"
	MemberRemoved   MemberStatus = "removed" // terminal; re-adding needs a new record
)

type Permission string

const (
	PermManageTeam         Permission = "manage_team"
	PermManageBusinesses   Permission = "manage_businesses"
	PermAddTransactions    Permission = "add_transactions"
	PermEditTransactions   Permission = "edit_transactions"
	PermDeleteTransactions Permission = "delete_transactions"
	PermViewReports        Permission = "view_reports"
	PermExport             Permission = "export"
)

// rolePermissions is the fixed role-default table. Owner is a wildcard.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermManageTeam, PermManageBusinesses, PermAddTransactions,
		PermEditTransactions, PermDeleteTransactions, PermViewReports, PermExport,
	},
	RoleAccountant: {PermAddTransactions, PermEditTransactions, PermViewReports, PermExport},
	RoleManager:    {PermViewReports, PermAddTransactions},
	RoleViewer:     {PermViewReports},
}

// TeamMember joins a user (or a pending email invite) to an organization with
// a role, an optional per-permission override map, and an optional restriction
// to a subset of businesses.
type TeamMember struct {
	ID             int64        `json:"id"`
	OrganizationID int64        `json:"organization_id"`
	UserID         *int64       `json:"user_id,omitempty"` // nil until invite accepted
	Role           Role         `json:"role"`
	Status         MemberStatus `json:"status"`

	// BusinessAccess restricts non-admin roles to these business IDs. Empty
	// means "all businesses" for owner/admin and "none" for everyone else.
	BusinessAccess []int64 `json:"business_access"`

	// PermissionsOverride takes precedence over the role defaults. Key
	// presence wins, so an explicit false revokes a role-default permission.
	PermissionsOverride map[Permission]bool `json:"permissions_override"`

	InvitedEmail    *string    `json:"invited_email,omitempty"`
	InvitedBy       *int64     `json:"invited_by,omitempty"`
	InvitedAt       *time.Time `json:"invited_at,omitempty"`
	InvitationToken *string    `json:"-"`
	InviteExpiresAt *time.Time `json:"-"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPermission resolves a permission with override-then-role-default
// precedence.
func (m *TeamMember) HasPermission(perm Permission) bool {
	if v, ok := m.PermissionsOverride[perm]; ok {
		return v
	}
	if m.Role == RoleOwner {
		return true
	}
	for _, p := range rolePermissions[m.Role] {
		if p == perm {
			return true
		}
	}
	return false
}

// CanAccessAllBusinesses reports whether the member's role grants unscoped
// business access within the organization.
func (m *TeamMember) CanAccessAllBusinesses() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

func (m *TeamMember) InviteIsValid() bool {
	return m.Status == MemberPending &&
		m.InviteExpiresAt != nil &&
		time.Now().Before(*m.InviteExpiresAt)
}
