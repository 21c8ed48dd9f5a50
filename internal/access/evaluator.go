package access

import "strings"

// Sentinel values that enable a whole permission category.
const (
	SentinelAllForms = "all_forms"
	SentinelAll      = "*"
)

// roleCapabilities holds the hand-specified capability rows for privileged
// roles. Roles absent from this table fall through to stored-list derivation.
var roleCapabilities = map[RoleName]Capabilities{
	RoleSuperAdmin: {
		CanCreateContent:     true,
		CanEditContent:       true,
		CanDeleteContent:     true,
		CanPublishContent:    true,
		CanManageUsers:       true,
		CanManageSettings:    true,
		CanManageRoles:       true,
		CanManagePermissions: true,
		CanManageForms:       true,
		CanManageMedia:       true,
		CanViewAnalytics:     true,
		CanExportData:        true,
		CanCreateUsers:       true,
		CanCreateGroups:      true,
		CanAssignPermissions: true,
	},
	RoleMembershipManager: {
		CanManageUsers:   true,
		CanManageForms:   true,
		CanViewAnalytics: true,
		CanExportData:    true,
	},
	RoleContentManager: {
		CanCreateContent:  true,
		CanEditContent:    true,
		CanDeleteContent:  true,
		CanPublishContent: true,
		CanManageMedia:    true,
		CanViewAnalytics:  true,
	},
	RoleContentInitiator: {
		CanCreateContent: true,
	},
	RoleContentReviewer: {
		CanEditContent: true,
	},
	RoleContentPublisher: {
		CanPublishContent: true,
	},
	RoleEditor: {
		CanCreateContent: true,
		CanEditContent:   true,
	},
	RoleContributor: {
		CanCreateContent: true,
	},
}

// ResolveCapabilities evaluates the capability set for a possibly-nil user.
// It is total: it never panics and always returns a fully-populated record.
// Anonymous or unrecognised input yields all-false. Authenticated users
// without a privileged role receive only what their stored permission lists
// grant; there is no broad default.
func ResolveCapabilities(u *User) Capabilities {
	if u == nil {
		return Capabilities{}
	}
	role := ResolveRole(u)
	if caps, ok := roleCapabilities[role]; ok {
		return caps
	}
	if role == RoleGuest {
		return Capabilities{}
	}

	var caps Capabilities
	caps.CanManageForms = granted(u.FormAccess, CapManageForms, SentinelAllForms)
	caps.CanExportData = granted(u.FormAccess, CapExportData, SentinelAllForms)

	caps.CanCreateContent = granted(u.ContentAccess, CapCreateContent)
	caps.CanEditContent = granted(u.ContentAccess, CapEditContent)
	caps.CanDeleteContent = granted(u.ContentAccess, CapDeleteContent)
	caps.CanPublishContent = granted(u.ContentAccess, CapPublishContent)
	caps.CanManageMedia = granted(u.ContentAccess, CapManageMedia)
	caps.CanViewAnalytics = granted(u.ContentAccess, CapViewAnalytics)

	caps.CanManageUsers = granted(u.AdminAccess, CapManageUsers)
	caps.CanManageSettings = granted(u.AdminAccess, CapManageSettings)
	caps.CanManageRoles = granted(u.AdminAccess, CapManageRoles)
	caps.CanManagePermissions = granted(u.AdminAccess, CapManagePermissions)
	caps.CanCreateUsers = granted(u.AdminAccess, CapCreateUsers)
	caps.CanCreateGroups = granted(u.AdminAccess, CapCreateGroups)
	caps.CanAssignPermissions = granted(u.AdminAccess, CapAssignPermissions)
	return caps
}

// granted reports whether the stored list names the capability or carries a
// category-wide sentinel.
func granted(list []string, cap Capability, extraSentinels ...string) bool {
	for _, entry := range list {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == string(cap) || entry == SentinelAll {
			return true
		}
		for _, s := range extraSentinels {
			if entry == s {
				return true
			}
		}
	}
	return false
}
