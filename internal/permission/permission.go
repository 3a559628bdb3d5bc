package permission

// Role is the closed set of assignable roles. Anything else resolves
// with viewer capabilities.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// Set is the full capability surface of the application. It is always
// derived from role + activation + overrides, never stored.
type Set struct {
	CanViewDashboard bool `json:"canViewDashboard"`

	CanViewTransactions    bool `json:"canViewTransactions"`
	CanEditTransactions    bool `json:"canEditTransactions"`
	CanAddTransactions     bool `json:"canAddTransactions"`
	CanDeleteTransactions  bool `json:"canDeleteTransactions"`
	CanArchiveTransactions bool `json:"canArchiveTransactions"`

	CanViewReceipts   bool `json:"canViewReceipts"`
	CanUploadReceipts bool `json:"canUploadReceipts"`
	CanDeleteReceipts bool `json:"canDeleteReceipts"`
	CanUploadToDrive  bool `json:"canUploadToDrive"`

	CanViewNotes    bool `json:"canViewNotes"`
	CanCreateNotes  bool `json:"canCreateNotes"`
	CanEditNotes    bool `json:"canEditNotes"`
	CanDeleteNotes  bool `json:"canDeleteNotes"`
	CanArchiveNotes bool `json:"canArchiveNotes"`

	CanAccessAdminHub bool `json:"canAccessAdminHub"`
	CanManageUsers    bool `json:"canManageUsers"`
}

// Overrides are per-user grants layered on top of the role's base
// capabilities. A nil field inherits the base value.
type Overrides struct {
	EditTransactions *bool `json:"canEditTransactions,omitempty"`
	UploadReceipts   *bool `json:"canUploadReceipts,omitempty"`
	EditNotes        *bool `json:"canEditNotes,omitempty"`
}

// Defaults returns the override seed a freshly created account of the
// given role receives.
func Defaults(role Role) Overrides {
	switch role {
	case RoleAdmin:
		return Overrides{
			EditTransactions: boolPtr(true),
			UploadReceipts:   boolPtr(true),
			EditNotes:        boolPtr(true),
		}
	case RoleMember:
		return Overrides{
			UploadReceipts: boolPtr(true),
		}
	default:
		return Overrides{}
	}
}

func boolPtr(v bool) *bool { return &v }

func base(role Role) Set {
	switch role {
	case RoleAdmin:
		return Set{
			CanViewDashboard:       true,
			CanViewTransactions:    true,
			CanEditTransactions:    true,
			CanAddTransactions:     true,
			CanDeleteTransactions:  true,
			CanArchiveTransactions: true,
			CanViewReceipts:        true,
			CanUploadReceipts:      true,
			CanDeleteReceipts:      true,
			CanUploadToDrive:       true,
			CanViewNotes:           true,
			CanCreateNotes:         true,
			CanEditNotes:           true,
			CanDeleteNotes:         true,
			CanArchiveNotes:        true,
			CanAccessAdminHub:      true,
			CanManageUsers:         true,
		}
	case RoleMember:
		return Set{
			CanViewDashboard:       true,
			CanViewTransactions:    true,
			CanEditTransactions:    true,
			CanAddTransactions:     true,
			CanArchiveTransactions: true,
			CanViewReceipts:        true,
			CanUploadReceipts:      true,
			CanUploadToDrive:       true,
			CanViewNotes:           true,
			CanCreateNotes:         true,
			CanEditNotes:           true,
			CanArchiveNotes:        true,
		}
	default:
		// viewer, and any role we do not recognize
		return Set{
			CanViewDashboard:    true,
			CanViewTransactions: true,
			CanViewReceipts:     true,
			CanViewNotes:        true,
		}
	}
}

// Resolve derives the effective capability set for a user. Inactive
// accounts get nothing regardless of role or overrides. Overrides are
// grant clusters over the base row; destructive capabilities never
// exceed what the base role allows.
func Resolve(role Role, active bool, overrides Overrides) Set {
	if !active {
		return Set{}
	}

	set := base(role)

	if overrides.EditTransactions != nil {
		v := *overrides.EditTransactions
		set.CanEditTransactions = v
		set.CanAddTransactions = v
		set.CanArchiveTransactions = v
		set.CanDeleteTransactions = v && base(role).CanDeleteTransactions
	}

	if overrides.UploadReceipts != nil {
		v := *overrides.UploadReceipts
		set.CanUploadReceipts = v
		set.CanUploadToDrive = v
		set.CanDeleteReceipts = v && base(role).CanDeleteReceipts
	}

	if overrides.EditNotes != nil {
		v := *overrides.EditNotes
		set.CanEditNotes = v
		set.CanCreateNotes = v
		set.CanArchiveNotes = v
		set.CanDeleteNotes = v && base(role).CanDeleteNotes
	}

	return set
}

// AvailableRoles lists the roles a user may switch their own view to.
// A role can always step down, never up.
func AvailableRoles(role Role) []Role {
	switch role {
	case RoleAdmin:
		return []Role{RoleAdmin, RoleMember, RoleViewer}
	case RoleMember:
		return []Role{RoleMember, RoleViewer}
	default:
		return []Role{RoleViewer}
	}
}

// Capability names used by the HTTP permission middleware.
const (
	CapViewDashboard       = "view_dashboard"
	CapViewTransactions    = "view_transactions"
	CapEditTransactions    = "edit_transactions"
	CapAddTransactions     = "add_transactions"
	CapDeleteTransactions  = "delete_transactions"
	CapArchiveTransactions = "archive_transactions"
	CapViewReceipts        = "view_receipts"
	CapUploadReceipts      = "upload_receipts"
	CapDeleteReceipts      = "delete_receipts"
	CapUploadToDrive       = "upload_to_drive"
	CapViewNotes           = "view_notes"
	CapCreateNotes         = "create_notes"
	CapEditNotes           = "edit_notes"
	CapDeleteNotes         = "delete_notes"
	CapArchiveNotes        = "archive_notes"
	CapAccessAdminHub      = "access_admin_hub"
	CapManageUsers         = "manage_users"
)

// Has reports whether the set grants the named capability.
func (s Set) Has(capability string) bool {
	switch capability {
	case CapViewDashboard:
		return s.CanViewDashboard
	case CapViewTransactions:
		return s.CanViewTransactions
	case CapEditTransactions:
		return s.CanEditTransactions
	case CapAddTransactions:
		return s.CanAddTransactions
	case CapDeleteTransactions:
		return s.CanDeleteTransactions
	case CapArchiveTransactions:
		return s.CanArchiveTransactions
	case CapViewReceipts:
		return s.CanViewReceipts
	case CapUploadReceipts:
		return s.CanUploadReceipts
	case CapDeleteReceipts:
		return s.CanDeleteReceipts
	case CapUploadToDrive:
		return s.CanUploadToDrive
	case CapViewNotes:
		return s.CanViewNotes
	case CapCreateNotes:
		return s.CanCreateNotes
	case CapEditNotes:
		return s.CanEditNotes
	case CapDeleteNotes:
		return s.CanDeleteNotes
	case CapArchiveNotes:
		return s.CanArchiveNotes
	case CapAccessAdminHub:
		return s.CanAccessAdminHub
	case CapManageUsers:
		return s.CanManageUsers
	}
	return false
}
