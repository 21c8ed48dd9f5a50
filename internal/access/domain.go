package access

// Capability identifies one flag in the capability set.
type Capability string

// Capabilities gated by the console.
const (
	CapCreateContent     Capability = "create_content"
	CapEditContent       Capability = "edit_content"
	CapDeleteContent     Capability = "delete_content"
	CapPublishContent    Capability = "publish_content"
	CapManageUsers       Capability = "manage_users"
	CapManageSettings    Capability = "manage_settings"
	CapManageRoles       Capability = "manage_roles"
	CapManagePermissions Capability = "manage_permissions"
	CapManageForms       Capability = "manage_forms"
	CapManageMedia       Capability = "manage_media"
	CapViewAnalytics     Capability = "view_analytics"
	CapExportData        Capability = "export_data"
	CapCreateUsers       Capability = "create_users"
	CapCreateGroups      Capability = "create_groups"
	CapAssignPermissions Capability = "assign_permissions"
)

// Capabilities is the fixed record of permission flags evaluated per user.
// Every field defaults to false; evaluation never leaves a field unset.
type Capabilities struct {
	CanCreateContent     bool `json:"can_create_content"`
	CanEditContent       bool `json:"can_edit_content"`
	CanDeleteContent     bool `json:"can_delete_content"`
	CanPublishContent    bool `json:"can_publish_content"`
	CanManageUsers       bool `json:"can_manage_users"`
	CanManageSettings    bool `json:"can_manage_settings"`
	CanManageRoles       bool `json:"can_manage_roles"`
	CanManagePermissions bool `json:"can_manage_permissions"`
	CanManageForms       bool `json:"can_manage_forms"`
	CanManageMedia       bool `json:"can_manage_media"`
	CanViewAnalytics     bool `json:"can_view_analytics"`
	CanExportData        bool `json:"can_export_data"`
	CanCreateUsers       bool `json:"can_create_users"`
	CanCreateGroups      bool `json:"can_create_groups"`
	CanAssignPermissions bool `json:"can_assign_permissions"`
}

// Has reports whether the named capability is granted.
func (c Capabilities) Has(cap Capability) bool {
	switch cap {
	case CapCreateContent:
		return c.CanCreateContent
	case CapEditContent:
		return c.CanEditContent
	case CapDeleteContent:
		return c.CanDeleteContent
	case CapPublishContent:
		return c.CanPublishContent
	case CapManageUsers:
		return c.CanManageUsers
	case CapManageSettings:
		return c.CanManageSettings
	case CapManageRoles:
		return c.CanManageRoles
	case CapManagePermissions:
		return c.CanManagePermissions
	case CapManageForms:
		return c.CanManageForms
	case CapManageMedia:
		return c.CanManageMedia
	case CapViewAnalytics:
		return c.CanViewAnalytics
	case CapExportData:
		return c.CanExportData
	case CapCreateUsers:
		return c.CanCreateUsers
	case CapCreateGroups:
		return c.CanCreateGroups
	case CapAssignPermissions:
		return c.CanAssignPermissions
	}
	return false
}

// User is the identity record permission evaluation operates on. All fields
// besides ID and Email are optional; evaluation tolerates their absence.
type User struct {
	ID            int64
	Email         string
	Role          string
	FormAccess    []string
	ContentAccess []string
	AdminAccess   []string
}
