package application

import (
	"context"
	"errors"
	"testing"

	"hangar/contexts/app-catalog/application-service/adapters/memory"
	"hangar/contexts/app-catalog/application-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/application-service/domain/errors"
	"hangar/contexts/app-catalog/application-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

func newService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewSeededStore()
	return Service{
		Repo:  store,
		Users: store,
		Orgs:  store,
		Blobs: store,
		Clock: store,
		IDGen: store,
	}, store
}

func personalOwner() ports.OwnerRef {
	return ports.OwnerRef{Kind: ports.OwnerUser, Name: "owner"}
}

func mustCreateApp(t *testing.T, service Service, actor access.Actor, owner ports.OwnerRef, name string, visibility access.Visibility) ports.ApplicationView {
	t.Helper()
	view, err := service.CreateApplication(context.Background(), actor, owner, ports.CreateApplicationInput{
		Name:        name,
		DisplayName: "App " + name,
		Visibility:  visibility,
		OS:          entities.OSAndroid,
		Platform:    entities.PlatformJavaKotlin,
		ReleaseType: entities.ReleaseTypeAlpha,
	})
	if err != nil {
		t.Fatalf("create application %q: %v", name, err)
	}
	return view
}

func TestCreateApplicationProvisionsCreatorAndKeys(t *testing.T) {
	service, _ := newService(t)
	owner := access.User("user_owner_1")

	view := mustCreateApp(t, service, owner, personalOwner(), "scanner", access.VisibilityPrivate)
	if view.Role != "Manager" {
		t.Fatalf("creator role should be Manager, got %q", view.Role)
	}

	keys, err := service.ListDeploymentKeys(context.Background(), owner, personalOwner(), "scanner")
	if err != nil {
		t.Fatalf("list deployment keys: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 deployment keys, got %d", len(keys))
	}
	names := map[string]bool{}
	for _, key := range keys {
		names[key.Name] = true
		if key.Key == "" {
			t.Fatalf("deployment key %q has empty key material", key.Name)
		}
	}
	if !names[entities.EnvironmentStaging] || !names[entities.EnvironmentProduction] {
		t.Fatalf("expected staging and production keys, got %+v", names)
	}
	if keys[0].Key == keys[1].Key {
		t.Fatal("environment keys must differ")
	}
}

func TestCreateApplicationInForeignPersonalNamespace(t *testing.T) {
	service, _ := newService(t)

	_, err := service.CreateApplication(context.Background(), access.User("user_dev_1"), personalOwner(), ports.CreateApplicationInput{
		Name:        "scanner",
		DisplayName: "Scanner",
		Visibility:  access.VisibilityPrivate,
		OS:          entities.OSAndroid,
		Platform:    entities.PlatformJavaKotlin,
		ReleaseType: entities.ReleaseTypeAlpha,
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateApplicationInOrganization(t *testing.T) {
	service, store := newService(t)
	store.AddOrganization(ports.Organization{OrgID: "org_1", Name: "acme", Visibility: access.VisibilityPrivate})
	store.SetOrganizationRole("org_1", "user_dev_1", access.OrgCollaborator)
	store.SetOrganizationRole("org_1", "user_viewer_1", access.OrgMember)
	orgOwner := ports.OwnerRef{Kind: ports.OwnerOrganization, Name: "acme"}

	view := mustCreateApp(t, service, access.User("user_dev_1"), orgOwner, "fleet", access.VisibilityPrivate)
	if view.Application.OrgID != "org_1" || view.Application.OwnerUserID != "" {
		t.Fatalf("expected org ownership, got %+v", view.Application)
	}

	// An org Member ranks below Collaborator and may not create.
	if _, err := service.CreateApplication(context.Background(), access.User("user_viewer_1"), orgOwner, ports.CreateApplicationInput{
		Name:        "other",
		DisplayName: "Other",
		Visibility:  access.VisibilityPrivate,
		OS:          entities.OSAndroid,
		Platform:    entities.PlatformJavaKotlin,
		ReleaseType: entities.ReleaseTypeAlpha,
	}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for org member, got %v", err)
	}

	// A non-member cannot learn the private org exists.
	if _, err := service.CreateApplication(context.Background(), access.User("user_outsider_1"), orgOwner, ports.CreateApplicationInput{
		Name:        "other",
		DisplayName: "Other",
		Visibility:  access.VisibilityPrivate,
		OS:          entities.OSAndroid,
		Platform:    entities.PlatformJavaKotlin,
		ReleaseType: entities.ReleaseTypeAlpha,
	}); !errors.Is(err, domainerrors.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound for outsider, got %v", err)
	}
}

func TestGetApplicationVisibility(t *testing.T) {
	service, _ := newService(t)
	owner := access.User("user_owner_1")
	mustCreateApp(t, service, owner, personalOwner(), "open", access.VisibilityPublic)
	mustCreateApp(t, service, owner, personalOwner(), "staff", access.VisibilityInternal)
	mustCreateApp(t, service, owner, personalOwner(), "secret", access.VisibilityPrivate)

	if _, err := service.GetApplication(context.Background(), access.Anonymous(), personalOwner(), "open"); err != nil {
		t.Fatalf("anonymous should read public app: %v", err)
	}
	if _, err := service.GetApplication(context.Background(), access.Anonymous(), personalOwner(), "staff"); !errors.Is(err, domainerrors.ErrApplicationNotFound) {
		t.Fatalf("anonymous on internal app: expected not found, got %v", err)
	}
	if _, err := service.GetApplication(context.Background(), access.User("user_outsider_1"), personalOwner(), "staff"); err != nil {
		t.Fatalf("authenticated user should read internal app: %v", err)
	}
	if _, err := service.GetApplication(context.Background(), access.User("user_outsider_1"), personalOwner(), "secret"); !errors.Is(err, domainerrors.ErrApplicationNotFound) {
		t.Fatalf("outsider on private app: expected not found, got %v", err)
	}
	if _, err := service.GetApplication(context.Background(), owner, personalOwner(), "secret"); err != nil {
		t.Fatalf("owner should read private app: %v", err)
	}
}

func TestOrganizationRoleMapsToApplicationRole(t *testing.T) {
	service, store := newService(t)
	store.AddOrganization(ports.Organization{OrgID: "org_1", Name: "acme", Visibility: access.VisibilityPrivate})
	store.SetOrganizationRole("org_1", "user_owner_1", access.OrgAdmin)
	store.SetOrganizationRole("org_1", "user_dev_1", access.OrgCollaborator)
	store.SetOrganizationRole("org_1", "user_viewer_1", access.OrgMember)
	orgOwner := ports.OwnerRef{Kind: ports.OwnerOrganization, Name: "acme"}
	mustCreateApp(t, service, access.User("user_owner_1"), orgOwner, "fleet", access.VisibilityPrivate)

	// Org Admin acts as Manager without an application membership row.
	if _, err := service.CheckAccess(context.Background(), access.User("user_owner_1"), orgOwner, "fleet", access.ActionModify); err != nil {
		t.Fatalf("org admin should modify: %v", err)
	}
	// Org Collaborator acts as Developer: upload yes, modify no.
	if _, err := service.CheckAccess(context.Background(), access.User("user_dev_1"), orgOwner, "fleet", access.ActionUpload); err != nil {
		t.Fatalf("org collaborator should upload: %v", err)
	}
	if _, err := service.CheckAccess(context.Background(), access.User("user_dev_1"), orgOwner, "fleet", access.ActionModify); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("org collaborator modify: expected ErrForbidden, got %v", err)
	}
	// Org Member acts as Viewer: sees the private app, uploads nothing.
	if _, err := service.GetApplication(context.Background(), access.User("user_viewer_1"), orgOwner, "fleet"); err != nil {
		t.Fatalf("org member should view: %v", err)
	}
	if _, err := service.CheckAccess(context.Background(), access.User("user_viewer_1"), orgOwner, "fleet", access.ActionUpload); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("org member upload: expected ErrForbidden, got %v", err)
	}
}

func TestApplicationMembershipOverridesOrgRole(t *testing.T) {
	service, store := newService(t)
	store.AddOrganization(ports.Organization{OrgID: "org_1", Name: "acme", Visibility: access.VisibilityPrivate})
	store.SetOrganizationRole("org_1", "user_owner_1", access.OrgAdmin)
	store.SetOrganizationRole("org_1", "user_viewer_1", access.OrgMember)
	orgOwner := ports.OwnerRef{Kind: ports.OwnerOrganization, Name: "acme"}
	mustCreateApp(t, service, access.User("user_owner_1"), orgOwner, "fleet", access.VisibilityPrivate)

	if _, err := service.AddMember(context.Background(), access.User("user_owner_1"), orgOwner, "fleet", "viewer", "Developer"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	// The explicit Developer row wins over the derived Viewer rank.
	if _, err := service.CheckAccess(context.Background(), access.User("user_viewer_1"), orgOwner, "fleet", access.ActionUpload); err != nil {
		t.Fatalf("explicit developer should upload: %v", err)
	}
}

func TestListApplicationsWindowsVisibleSet(t *testing.T) {
	service, _ := newService(t)
	owner := access.User("user_owner_1")
	mustCreateApp(t, service, owner, personalOwner(), "a", access.VisibilityPublic)
	mustCreateApp(t, service, owner, personalOwner(), "b", access.VisibilityPrivate)
	mustCreateApp(t, service, owner, personalOwner(), "c", access.VisibilityPublic)
	mustCreateApp(t, service, owner, personalOwner(), "d", access.VisibilityPublic)

	visible, err := service.ListApplications(context.Background(), access.Anonymous(), personalOwner(), 0, 0)
	if err != nil {
		t.Fatalf("list applications: %v", err)
	}
	if len(visible) != 3 {
		t.Fatalf("anonymous should see 3 public apps, got %d", len(visible))
	}
	for i, want := range []string{"a", "c", "d"} {
		if visible[i].Application.Name != want {
			t.Fatalf("position %d: want %q, got %q", i, want, visible[i].Application.Name)
		}
	}

	page, err := service.ListApplications(context.Background(), owner, personalOwner(), 2, 1)
	if err != nil {
		t.Fatalf("list window: %v", err)
	}
	if len(page) != 2 || page[0].Application.Name != "b" || page[1].Application.Name != "c" {
		t.Fatalf("window top=2 skip=1 wrong: %+v", page)
	}
}

func TestUpdateApplicationRequiresManager(t *testing.T) {
	service, _ := newService(t)
	owner := access.User("user_owner_1")
	mustCreateApp(t, service, owner, personalOwner(), "scanner", access.VisibilityPublic)

	if _, err := service.AddMember(context.Background(), owner, personalOwner(), "scanner", "dev", "Developer"); err != nil {
		t.Fatalf("add member: %v", err)
	}

	next := "Scanner Pro"
	if _, err := service.UpdateApplication(context.Background(), access.User("user_dev_1"), personalOwner(), "scanner", ports.UpdateApplicationInput{DisplayName: &next}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("developer update: expected ErrForbidden, got %v", err)
	}
	view, err := service.UpdateApplication(context.Background(), owner, personalOwner(), "scanner", ports.UpdateApplicationInput{DisplayName: &next})
	if err != nil {
		t.Fatalf("manager update: %v", err)
	}
	if view.Application.DisplayName != "Scanner Pro" {
		t.Fatalf("display name not updated: %+v", view.Application)
	}
}

func TestOwnerMembershipImmutable(t *testing.T) {
	service, _ := newService(t)
	owner := access.User("user_owner_1")
	mustCreateApp(t, service, owner, personalOwner(), "scanner", access.VisibilityPrivate)

	if _, err := service.UpdateMemberRole(context.Background(), owner, personalOwner(), "scanner", "owner", "Viewer"); !errors.Is(err, domainerrors.ErrOwnerImmutable) {
		t.Fatalf("demoting the personal owner: expected ErrOwnerImmutable, got %v", err)
	}
	if err := service.RemoveMember(context.Background(), owner, personalOwner(), "scanner", "owner"); !errors.Is(err, domainerrors.ErrOwnerImmutable) {
		t.Fatalf("removing the personal owner: expected ErrOwnerImmutable, got %v", err)
	}
}

func TestLastManagerProtection(t *testing.T) {
	service, store := newService(t)
	store.AddOrganization(ports.Organization{OrgID: "org_1", Name: "acme", Visibility: access.VisibilityPrivate})
	store.SetOrganizationRole("org_1", "user_owner_1", access.OrgAdmin)
	orgOwner := ports.OwnerRef{Kind: ports.OwnerOrganization, Name: "acme"}
	admin := access.User("user_owner_1")
	mustCreateApp(t, service, admin, orgOwner, "fleet", access.VisibilityPrivate)

	if _, err := service.UpdateMemberRole(context.Background(), admin, orgOwner, "fleet", "owner", "Viewer"); !errors.Is(err, domainerrors.ErrLastManager) {
		t.Fatalf("demoting the sole manager: expected ErrLastManager, got %v", err)
	}
	if err := service.RemoveMember(context.Background(), admin, orgOwner, "fleet", "owner"); !errors.Is(err, domainerrors.ErrLastManager) {
		t.Fatalf("removing the sole manager: expected ErrLastManager, got %v", err)
	}

	if _, err := service.AddMember(context.Background(), admin, orgOwner, "fleet", "dev", "Manager"); err != nil {
		t.Fatalf("add second manager: %v", err)
	}
	if _, err := service.UpdateMemberRole(context.Background(), admin, orgOwner, "fleet", "owner", "Viewer"); err != nil {
		t.Fatalf("demotion with a second manager should pass: %v", err)
	}
}

func TestAddMemberValidation(t *testing.T) {
	service, _ := newService(t)
	owner := access.User("user_owner_1")
	mustCreateApp(t, service, owner, personalOwner(), "scanner", access.VisibilityPrivate)

	if _, err := service.AddMember(context.Background(), owner, personalOwner(), "scanner", "ghost", "Developer"); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("unknown handle: expected ErrUserNotFound, got %v", err)
	}
	if _, err := service.AddMember(context.Background(), owner, personalOwner(), "scanner", "dev", "Wizard"); !errors.Is(err, domainerrors.ErrInvalidRole) {
		t.Fatalf("unknown role: expected ErrInvalidRole, got %v", err)
	}
	if _, err := service.AddMember(context.Background(), owner, personalOwner(), "scanner", "dev", "Developer"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := service.AddMember(context.Background(), owner, personalOwner(), "scanner", "dev", "Viewer"); !errors.Is(err, domainerrors.ErrMemberExists) {
		t.Fatalf("duplicate member: expected ErrMemberExists, got %v", err)
	}
	if _, err := service.AddMember(context.Background(), access.User("user_dev_1"), personalOwner(), "scanner", "viewer", "Viewer"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("developer managing members: expected ErrForbidden, got %v", err)
	}
	if _, err := service.AddMember(context.Background(), access.User("user_outsider_1"), personalOwner(), "scanner", "viewer", "Viewer"); !errors.Is(err, domainerrors.ErrApplicationNotFound) {
		t.Fatalf("outsider on private app: expected not found, got %v", err)
	}
}

func TestCheckAccessStoragePrefix(t *testing.T) {
	service, store := newService(t)
	owner := access.User("user_owner_1")
	mustCreateApp(t, service, owner, personalOwner(), "scanner", access.VisibilityPrivate)

	acc, err := service.CheckAccess(context.Background(), owner, personalOwner(), "scanner", access.ActionUpload)
	if err != nil {
		t.Fatalf("check access: %v", err)
	}
	if acc.StoragePrefix != "users/owner/apps/scanner" {
		t.Fatalf("personal prefix wrong: %q", acc.StoragePrefix)
	}

	store.AddOrganization(ports.Organization{OrgID: "org_1", Name: "acme", Visibility: access.VisibilityPrivate})
	store.SetOrganizationRole("org_1", "user_owner_1", access.OrgAdmin)
	orgOwner := ports.OwnerRef{Kind: ports.OwnerOrganization, Name: "acme"}
	mustCreateApp(t, service, owner, orgOwner, "fleet", access.VisibilityPrivate)

	acc, err = service.CheckAccess(context.Background(), owner, orgOwner, "fleet", access.ActionUpload)
	if err != nil {
		t.Fatalf("check access: %v", err)
	}
	if acc.StoragePrefix != "orgs/acme/apps/fleet" {
		t.Fatalf("org prefix wrong: %q", acc.StoragePrefix)
	}
}

func TestIconLifecycle(t *testing.T) {
	service, store := newService(t)
	owner := access.User("user_owner_1")
	mustCreateApp(t, service, owner, personalOwner(), "scanner", access.VisibilityPrivate)

	handle, err := service.SetIcon(context.Background(), owner, personalOwner(), "scanner", []byte{0x89, 0x50}, "png")
	if err != nil {
		t.Fatalf("set icon: %v", err)
	}
	if handle != "users/owner/apps/scanner/icons/icon.png" {
		t.Fatalf("icon handle wrong: %q", handle)
	}
	if _, ok := store.Blob(handle); !ok {
		t.Fatal("icon blob not stored")
	}

	if err := service.DeleteIcon(context.Background(), owner, personalOwner(), "scanner"); err != nil {
		t.Fatalf("delete icon: %v", err)
	}
	if _, ok := store.Blob(handle); ok {
		t.Fatal("icon blob should be removed")
	}
	view, err := service.GetApplication(context.Background(), owner, personalOwner(), "scanner")
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if view.Application.IconPath != "" {
		t.Fatalf("icon path should be cleared, got %q", view.Application.IconPath)
	}
}

func TestAdoptIconOnlyOnce(t *testing.T) {
	service, _ := newService(t)
	owner := access.User("user_owner_1")
	view := mustCreateApp(t, service, owner, personalOwner(), "scanner", access.VisibilityPrivate)

	if err := service.AdoptIcon(context.Background(), view.Application.AppID, "users/owner/apps/scanner/icons/extracted.png"); err != nil {
		t.Fatalf("adopt icon: %v", err)
	}
	// A second adoption must not replace the icon already in place.
	if err := service.AdoptIcon(context.Background(), view.Application.AppID, "users/owner/apps/scanner/icons/other.png"); err != nil {
		t.Fatalf("second adopt: %v", err)
	}
	got, err := service.GetApplication(context.Background(), owner, personalOwner(), "scanner")
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if got.Application.IconPath != "users/owner/apps/scanner/icons/extracted.png" {
		t.Fatalf("icon should keep first adoption, got %q", got.Application.IconPath)
	}
}
