package access

import "testing"

func TestResolveRoleNilUser(t *testing.T) {
	if got := ResolveRole(nil); got != RoleGuest {
		t.Fatalf("expected guest, got %q", got)
	}
}

func TestResolveRoleEmailAllowlist(t *testing.T) {
	cases := map[string]RoleName{
		"admin@benirage.org":      RoleSuperAdmin,
		"membership@benirage.org": RoleMembershipManager,
		"Content@Benirage.org":    RoleContentManager,
	}
	for email, want := range cases {
		if got := ResolveRole(&User{ID: 7, Email: email}); got != want {
			t.Errorf("ResolveRole(%q) = %q, want %q", email, got, want)
		}
	}
}

func TestResolveRoleExplicitField(t *testing.T) {
	u := &User{ID: 2, Email: "someone@example.com", Role: "content_reviewer"}
	if got := ResolveRole(u); got != RoleContentReviewer {
		t.Fatalf("expected Content Reviewer, got %q", got)
	}
}

func TestResolveRoleUnknownFieldFallsBackToMember(t *testing.T) {
	u := &User{ID: 2, Email: "someone@example.com", Role: "astronaut"}
	if got := ResolveRole(u); got != RoleMember {
		t.Fatalf("expected Member, got %q", got)
	}
}

func TestResolveRoleIdentityWithoutRole(t *testing.T) {
	if got := ResolveRole(&User{ID: 9}); got != RoleMember {
		t.Fatalf("expected Member, got %q", got)
	}
	if got := ResolveRole(&User{}); got != RoleGuest {
		t.Fatalf("expected guest for empty record, got %q", got)
	}
}
