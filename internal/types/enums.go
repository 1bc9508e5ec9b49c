package types

// Workspace member roles, most to least privileged
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// Actions checked against the role table
type Action string

const (
	ActionDeleteWorkspace Action = "delete_workspace"
	ActionUpdateWorkspace Action = "update_workspace"
	ActionInviteMember    Action = "invite_member"
	ActionRemoveMember    Action = "remove_member"
	ActionDeleteForm      Action = "delete_form"
	ActionCreateForm      Action = "create_form"
	ActionUpdateForm      Action = "update_form"
	ActionManageAssets    Action = "manage_assets"
	ActionRead            Action = "read"
)

// minRoleForAction is the static permission table. An action missing from
// the table is never permitted.
var minRoleForAction = map[Action]Role{
	ActionDeleteWorkspace: RoleOwner,
	ActionUpdateWorkspace: RoleOwner,
	ActionInviteMember:    RoleAdmin,
	ActionRemoveMember:    RoleAdmin,
	ActionDeleteForm:      RoleAdmin,
	ActionCreateForm:      RoleEditor,
	ActionUpdateForm:      RoleEditor,
	ActionManageAssets:    RoleEditor,
	ActionRead:            RoleViewer,
}

// Level returns the numeric rank for role comparison (higher = more permissions)
func (r Role) Level() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Permits reports whether the role satisfies the minimum role for action.
func (r Role) Permits(action Action) bool {
	min, ok := minRoleForAction[action]
	if !ok {
		return false
	}
	return r.Level() >= min.Level()
}

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// IsAssignableRole reports whether a role may be granted through an
// invitation. OWNER is created only with the workspace itself.
func IsAssignableRole(role string) bool {
	switch Role(role) {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// Invitation status values
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
)

// Form visit device types
type DeviceType string

const (
	DeviceMobile  DeviceType = "MOBILE"
	DeviceDesktop DeviceType = "DESKTOP"
)

// Form themes
const (
	ThemeBoxy    = "BOXY"
	ThemeRounded = "ROUNDED"
)

func IsValidTheme(theme string) bool {
	return theme == ThemeBoxy || theme == ThemeRounded
}

// MaxWorkspaceAssets bounds uploads per workspace; creation past the
// limit is rejected, never evicted.
const MaxWorkspaceAssets = 10
