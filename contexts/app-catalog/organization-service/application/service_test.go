package application

import (
	"context"
	"errors"
	"testing"

	"hangar/contexts/app-catalog/organization-service/adapters/memory"
	domainerrors "hangar/contexts/app-catalog/organization-service/domain/errors"
	"hangar/contexts/app-catalog/organization-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

func newService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return Service{
		Repo:  store,
		Users: store,
		Blobs: store,
		Apps:  store,
		Clock: store,
		IDGen: store,
	}, store
}

func mustCreateOrg(t *testing.T, service Service, actor access.Actor, name string, visibility access.Visibility) ports.OrganizationView {
	t.Helper()
	view, err := service.CreateOrganization(context.Background(), actor, ports.CreateOrganizationInput{
		Name:        name,
		DisplayName: "Org " + name,
		Visibility:  visibility,
	})
	if err != nil {
		t.Fatalf("create organization %q: %v", name, err)
	}
	return view
}

func TestCreateOrganizationEnrollsCreatorAsAdmin(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")

	view := mustCreateOrg(t, service, admin, "acme", access.VisibilityPrivate)
	if view.Role != "Admin" {
		t.Fatalf("creator role should be Admin, got %q", view.Role)
	}

	members, err := service.ListMembers(context.Background(), admin, "acme")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].Member.UserID != "user_admin_1" || members[0].Member.Role != access.OrgAdmin {
		t.Fatalf("expected single admin membership, got %+v", members)
	}
}

func TestCreateOrganizationNameConflict(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "acme", access.VisibilityPublic)

	_, err := service.CreateOrganization(context.Background(), access.User("user_collab_1"), ports.CreateOrganizationInput{
		Name:        "acme",
		DisplayName: "Acme Again",
		Visibility:  access.VisibilityPublic,
	})
	if !errors.Is(err, domainerrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetOrganizationVisibility(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "open", access.VisibilityPublic)
	mustCreateOrg(t, service, admin, "staff", access.VisibilityInternal)
	mustCreateOrg(t, service, admin, "secret", access.VisibilityPrivate)

	if _, err := service.GetOrganization(context.Background(), access.Anonymous(), "open"); err != nil {
		t.Fatalf("anonymous should view public org: %v", err)
	}
	if _, err := service.GetOrganization(context.Background(), access.Anonymous(), "staff"); !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		t.Fatalf("anonymous view of internal org should be not found, got %v", err)
	}
	if _, err := service.GetOrganization(context.Background(), access.User("user_outsider_1"), "staff"); err != nil {
		t.Fatalf("authenticated user should view internal org: %v", err)
	}
	if _, err := service.GetOrganization(context.Background(), access.User("user_outsider_1"), "secret"); !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		t.Fatalf("non-member view of private org should be not found, got %v", err)
	}
	view, err := service.GetOrganization(context.Background(), admin, "secret")
	if err != nil {
		t.Fatalf("member should view private org: %v", err)
	}
	if view.Role != "Admin" {
		t.Fatalf("member view should carry role, got %q", view.Role)
	}
}

func TestListOrganizationsUnionWithoutDuplicates(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "open", access.VisibilityPublic)
	mustCreateOrg(t, service, admin, "secret", access.VisibilityPrivate)

	// Admin satisfies both the membership and visibility criteria for "open";
	// it must still appear exactly once.
	views, err := service.ListOrganizations(context.Background(), admin, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 organizations, got %d", len(views))
	}
	if !views[0].Organization.CreatedAt.Before(views[1].Organization.CreatedAt) {
		t.Fatal("listing must be ordered by creation time")
	}

	anon, err := service.ListOrganizations(context.Background(), access.Anonymous(), 10, 0)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if len(anon) != 1 || anon[0].Organization.Name != "open" {
		t.Fatalf("anonymous should see only public orgs, got %+v", anon)
	}
}

func TestListOrganizationsWindowing(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	for _, name := range []string{"a", "b", "c", "d"} {
		mustCreateOrg(t, service, admin, name, access.VisibilityPublic)
	}

	page, err := service.ListOrganizations(context.Background(), admin, 2, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].Organization.Name != "b" || page[1].Organization.Name != "c" {
		t.Fatalf("unexpected window: %+v", page)
	}
	empty, err := service.ListOrganizations(context.Background(), admin, 2, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("window past the end should be empty, got %d items", len(empty))
	}
}

func TestUpdateOrganizationRequiresAdmin(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "acme", access.VisibilityPublic)
	if _, err := service.AddMember(context.Background(), admin, "acme", "member", "Member"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	next := "Acme Corp"
	_, err := service.UpdateOrganization(context.Background(), access.User("user_member_1"), "acme", ports.UpdateOrganizationInput{DisplayName: &next})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("member update should be forbidden, got %v", err)
	}

	view, err := service.UpdateOrganization(context.Background(), admin, "acme", ports.UpdateOrganizationInput{DisplayName: &next})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if view.Organization.DisplayName != next {
		t.Fatalf("display name not updated: %q", view.Organization.DisplayName)
	}
}

func TestDeleteOrganizationBlockedWhileOwningApplications(t *testing.T) {
	service, store := newService(t)
	admin := access.User("user_admin_1")
	view := mustCreateOrg(t, service, admin, "acme", access.VisibilityPublic)

	store.SetOrganizationApplicationCount(view.Organization.OrgID, 2)
	if err := service.DeleteOrganization(context.Background(), admin, "acme"); !errors.Is(err, domainerrors.ErrOrganizationNotEmpty) {
		t.Fatalf("expected ErrOrganizationNotEmpty, got %v", err)
	}

	store.SetOrganizationApplicationCount(view.Organization.OrgID, 0)
	if err := service.DeleteOrganization(context.Background(), admin, "acme"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.GetOrganization(context.Background(), admin, "acme"); !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		t.Fatalf("deleted org should be gone, got %v", err)
	}
}

func TestLastAdminProtection(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "acme", access.VisibilityPrivate)

	// The only admin cannot demote or remove themself.
	if _, err := service.UpdateMemberRole(context.Background(), admin, "acme", "admin", "Member"); !errors.Is(err, domainerrors.ErrLastAdmin) {
		t.Fatalf("self demotion of last admin should fail, got %v", err)
	}
	if err := service.RemoveMember(context.Background(), admin, "acme", "admin"); !errors.Is(err, domainerrors.ErrLastAdmin) {
		t.Fatalf("self removal of last admin should fail, got %v", err)
	}

	// With a second admin both operations pass.
	if _, err := service.AddMember(context.Background(), admin, "acme", "collab", "Admin"); err != nil {
		t.Fatalf("add second admin: %v", err)
	}
	if _, err := service.UpdateMemberRole(context.Background(), admin, "acme", "admin", "Member"); err != nil {
		t.Fatalf("demotion with second admin: %v", err)
	}

	// And now the remaining admin is protected again, whoever asks.
	if err := service.RemoveMember(context.Background(), access.User("user_collab_1"), "acme", "collab"); !errors.Is(err, domainerrors.ErrLastAdmin) {
		t.Fatalf("removing the final admin should fail, got %v", err)
	}
}

func TestAddMemberValidation(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "acme", access.VisibilityPrivate)

	if _, err := service.AddMember(context.Background(), admin, "acme", "ghost", "Member"); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := service.AddMember(context.Background(), admin, "acme", "collab", "Chief"); !errors.Is(err, domainerrors.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := service.AddMember(context.Background(), admin, "acme", "collab", "Collaborator"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := service.AddMember(context.Background(), admin, "acme", "collab", "Member"); !errors.Is(err, domainerrors.ErrMemberExists) {
		t.Fatalf("expected ErrMemberExists, got %v", err)
	}

	// Non-admin member management is forbidden; outsiders of a private org
	// learn nothing.
	if _, err := service.AddMember(context.Background(), access.User("user_collab_1"), "acme", "member", "Member"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("collaborator member management should be forbidden, got %v", err)
	}
	if _, err := service.AddMember(context.Background(), access.User("user_outsider_1"), "acme", "member", "Member"); !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		t.Fatalf("outsider should get not found, got %v", err)
	}
}

func TestMemberListVisibility(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "secret", access.VisibilityPrivate)
	mustCreateOrg(t, service, admin, "open", access.VisibilityPublic)

	if _, err := service.ListMembers(context.Background(), access.Anonymous(), "secret"); !errors.Is(err, domainerrors.ErrOrganizationNotFound) {
		t.Fatalf("anonymous member list of private org should be not found, got %v", err)
	}
	members, err := service.ListMembers(context.Background(), access.Anonymous(), "open")
	if err != nil {
		t.Fatalf("anonymous member list of public org: %v", err)
	}
	if len(members) == 0 || members[0].Member.Role != access.OrgAdmin {
		t.Fatalf("public member list should contain the admin, got %+v", members)
	}
}

func TestSetAndDeleteIcon(t *testing.T) {
	service, _ := newService(t)
	admin := access.User("user_admin_1")
	mustCreateOrg(t, service, admin, "acme", access.VisibilityPublic)

	handle, err := service.SetIcon(context.Background(), admin, "acme", []byte{0x89, 0x50, 0x4e, 0x47}, "png")
	if err != nil {
		t.Fatalf("set icon: %v", err)
	}
	view, err := service.GetOrganization(context.Background(), admin, "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Organization.IconPath != handle {
		t.Fatalf("icon path %q != handle %q", view.Organization.IconPath, handle)
	}

	if err := service.DeleteIcon(context.Background(), admin, "acme"); err != nil {
		t.Fatalf("delete icon: %v", err)
	}
	view, err = service.GetOrganization(context.Background(), admin, "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Organization.IconPath != "" {
		t.Fatalf("icon path should be cleared, got %q", view.Organization.IconPath)
	}
}
