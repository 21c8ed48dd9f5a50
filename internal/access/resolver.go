package access

import "strings"

// RoleName is a human-readable role label.
type RoleName string

// Role names recognised by the console.
const (
	RoleSuperAdmin        RoleName = "Super Administrator"
	RoleMembershipManager RoleName = "Membership Manager"
	RoleContentManager    RoleName = "Content Manager"
	RoleContentInitiator  RoleName = "Content Initiator"
	RoleContentReviewer   RoleName = "Content Reviewer"
	RoleContentPublisher  RoleName = "Content Publisher"
	RoleEditor            RoleName = "Editor"
	RoleContributor       RoleName = "Contributor"
	RoleViewer            RoleName = "Viewer"
	RoleMember            RoleName = "Member"
	RoleGuest             RoleName = "guest"
)

// emailRoles maps organisation addresses to their fixed roles.
var emailRoles = map[string]RoleName{
	"admin@benirage.org":      RoleSuperAdmin,
	"membership@benirage.org": RoleMembershipManager,
	"content@benirage.org":    RoleContentManager,
}

// roleAliases maps stored role identifiers to role names.
var roleAliases = map[string]RoleName{
	"super_admin":        RoleSuperAdmin,
	"super_administrator": RoleSuperAdmin,
	"membership_manager": RoleMembershipManager,
	"content_manager":    RoleContentManager,
	"content_initiator":  RoleContentInitiator,
	"content_reviewer":   RoleContentReviewer,
	"content_publisher":  RoleContentPublisher,
	"editor":             RoleEditor,
	"contributor":        RoleContributor,
	"viewer":             RoleViewer,
	"member":             RoleMember,
}

// ResolveRole maps a possibly-nil user record to a role name. Resolution
// order: email allowlist, explicit role field, then Member for any known
// identity. Unresolvable input degrades to guest; it never errors.
func ResolveRole(u *User) RoleName {
	if u == nil {
		return RoleGuest
	}
	if role, ok := emailRoles[strings.ToLower(strings.TrimSpace(u.Email))]; ok {
		return role
	}
	if alias := strings.ToLower(strings.TrimSpace(u.Role)); alias != "" {
		if role, ok := roleAliases[alias]; ok {
			return role
		}
	}
	if u.ID != 0 || u.Email != "" {
		return RoleMember
	}
	return RoleGuest
}
