package services

import (
	"testing"

	"hangar/contexts/identity-access/authorization-service/domain/entities"
)

func TestMemberAlwaysViews(t *testing.T) {
	member := Membership{Held: true, Role: entities.OrgMember}
	for _, visibility := range []entities.Visibility{
		entities.VisibilityPrivate,
		entities.VisibilityInternal,
		entities.VisibilityPublic,
	} {
		decision := DecideView(entities.User("u1"), visibility, member)
		if decision != entities.DecisionAllow {
			t.Fatalf("visibility %s: expected allow for member, got %s", visibility, decision)
		}
	}
}

func TestAnonymousViewByVisibility(t *testing.T) {
	cases := []struct {
		visibility entities.Visibility
		want       entities.Decision
	}{
		{entities.VisibilityPublic, entities.DecisionAllow},
		{entities.VisibilityInternal, entities.DecisionNotFound},
		{entities.VisibilityPrivate, entities.DecisionNotFound},
	}
	for _, tc := range cases {
		got := DecideView(entities.Anonymous(), tc.visibility, Membership{})
		if got != tc.want {
			t.Fatalf("visibility %s: expected %s, got %s", tc.visibility, tc.want, got)
		}
	}
}

func TestAuthenticatedNonMemberViewsInternal(t *testing.T) {
	got := DecideView(entities.User("u1"), entities.VisibilityInternal, Membership{})
	if got != entities.DecisionAllow {
		t.Fatalf("expected allow, got %s", got)
	}
	got = DecideView(entities.User("u1"), entities.VisibilityPrivate, Membership{})
	if got != entities.DecisionNotFound {
		t.Fatalf("private resource must stay hidden from non-members, got %s", got)
	}
}

func TestRoleBelowMinimumIsForbidden(t *testing.T) {
	viewer := Membership{Held: true, Role: entities.AppViewer}
	got := DecideWithRole(entities.User("u1"), entities.VisibilityPrivate, viewer, entities.AppDeveloper)
	if got != entities.DecisionForbidden {
		t.Fatalf("viewer upload should be forbidden, got %s", got)
	}
}

func TestRoleAtOrAboveMinimumAllows(t *testing.T) {
	for _, role := range []entities.Role{entities.AppManager, entities.AppDeveloper} {
		member := Membership{Held: true, Role: role}
		got := DecideWithRole(entities.User("u1"), entities.VisibilityPrivate, member, entities.AppDeveloper)
		if got != entities.DecisionAllow {
			t.Fatalf("role %d should satisfy developer minimum, got %s", role, got)
		}
	}
}

func TestNonMemberPrivilegedDenialRevealsExistenceOnlyWhenVisible(t *testing.T) {
	actor := entities.User("outsider")
	got := DecideWithRole(actor, entities.VisibilityPublic, Membership{}, entities.AppManager)
	if got != entities.DecisionForbidden {
		t.Fatalf("visible resource denial should be forbidden, got %s", got)
	}
	got = DecideWithRole(actor, entities.VisibilityPrivate, Membership{}, entities.AppManager)
	if got != entities.DecisionNotFound {
		t.Fatalf("hidden resource denial should be not found, got %s", got)
	}
	got = DecideWithRole(entities.Anonymous(), entities.VisibilityInternal, Membership{}, entities.AppManager)
	if got != entities.DecisionNotFound {
		t.Fatalf("internal resource must be hidden from anonymous, got %s", got)
	}
}

func TestVisibleInListing(t *testing.T) {
	member := Membership{Held: true, Role: entities.OrgMember}
	if !VisibleInListing(entities.User("u1"), entities.VisibilityPrivate, member) {
		t.Fatal("member should list private resource")
	}
	if VisibleInListing(entities.User("u1"), entities.VisibilityPrivate, Membership{}) {
		t.Fatal("non-member should not list private resource")
	}
	if VisibleInListing(entities.Anonymous(), entities.VisibilityInternal, Membership{}) {
		t.Fatal("anonymous should not list internal resource")
	}
	if !VisibleInListing(entities.Anonymous(), entities.VisibilityPublic, Membership{}) {
		t.Fatal("anonymous should list public resource")
	}
}

func TestRemovalLeavesTopRoleVacant(t *testing.T) {
	if !RemovalLeavesTopRoleVacant(entities.OrganizationRoles, entities.OrgAdmin, 1) {
		t.Fatal("removing the last admin must be blocked")
	}
	if RemovalLeavesTopRoleVacant(entities.OrganizationRoles, entities.OrgAdmin, 2) {
		t.Fatal("removing one of two admins is fine")
	}
	if RemovalLeavesTopRoleVacant(entities.OrganizationRoles, entities.OrgCollaborator, 1) {
		t.Fatal("removing a collaborator never vacates the top role")
	}
}
