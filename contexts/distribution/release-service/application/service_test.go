package application

import (
	"context"
	"errors"
	"testing"

	"hangar/contexts/distribution/release-service/adapters/memory"
	domainerrors "hangar/contexts/distribution/release-service/domain/errors"
	"hangar/contexts/distribution/release-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

var demoRef = ports.AppRef{OwnerKind: "user", OwnerName: "owner", AppName: "demo"}

func newService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.AddApplication(demoRef, ports.Application{AppID: "app_1", Name: "demo"}, "staging", "production")
	store.GrantRole(demoRef, "user_mgr_1", access.AppManager)
	store.GrantRole(demoRef, "user_dev_1", access.AppDeveloper)
	store.AddPackage(ports.PackageInfo{
		PackageID:   "pkg_1",
		BuildNumber: 7,
		FileName:    "demo.ipa",
		BundleID:    "com.example.demo",
		Version:     "1.2.3",
		Fingerprint: "fp",
		SizeBytes:   1024,
		StoragePath: "users/owner/apps/demo/packages/7/demo.ipa",
	}, "app_1")
	return Service{
		Repo:        store,
		Catalog:     store,
		Packages:    store,
		Submissions: store,
		Clock:       store,
		IDGen:       store,
	}, store
}

func mustCreateRelease(t *testing.T, service Service, input ports.CreateReleaseInput) ports.ReleaseView {
	t.Helper()
	view, err := service.CreateRelease(context.Background(), access.User("user_mgr_1"), demoRef, input)
	if err != nil {
		t.Fatalf("create release: %v", err)
	}
	return view
}

func TestCreateReleaseJoinsPackage(t *testing.T) {
	service, _ := newService(t)

	view := mustCreateRelease(t, service, ports.CreateReleaseInput{
		Environment: "staging",
		BuildNumber: 7,
		Description: "first cut",
		Enabled:     true,
	})
	if view.Release.ReleaseNumber != 1 {
		t.Fatalf("first release number should be 1, got %d", view.Release.ReleaseNumber)
	}
	if view.Release.PackageID != "pkg_1" {
		t.Fatalf("release not bound to package: %+v", view.Release)
	}
	if view.Package.BundleID != "com.example.demo" || view.Package.SizeBytes != 1024 {
		t.Fatalf("package fields not joined: %+v", view.Package)
	}

	second := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "production", BuildNumber: 7})
	if second.Release.ReleaseNumber != 2 {
		t.Fatalf("second release number should be 2, got %d", second.Release.ReleaseNumber)
	}
}

func TestCreateReleaseValidation(t *testing.T) {
	service, _ := newService(t)
	mgr := access.User("user_mgr_1")

	if _, err := service.CreateRelease(context.Background(), mgr, demoRef, ports.CreateReleaseInput{Environment: "canary", BuildNumber: 7}); !errors.Is(err, domainerrors.ErrEnvironmentUnknown) {
		t.Fatalf("unknown environment: expected ErrEnvironmentUnknown, got %v", err)
	}
	if _, err := service.CreateRelease(context.Background(), mgr, demoRef, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 99}); !errors.Is(err, domainerrors.ErrPackageNotFound) {
		t.Fatalf("unknown build: expected ErrPackageNotFound, got %v", err)
	}
	if _, err := service.CreateRelease(context.Background(), access.User("user_dev_1"), demoRef, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("developer release: expected ErrForbidden, got %v", err)
	}
}

func TestReleaseReadsReflectPackageEdits(t *testing.T) {
	service, store := newService(t)
	mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})

	// Re-register the same package with changed metadata; the next read of
	// the release must show it.
	store.AddPackage(ports.PackageInfo{
		PackageID:   "pkg_1",
		BuildNumber: 7,
		FileName:    "demo.ipa",
		BundleID:    "com.example.demo",
		Version:     "1.2.4",
		Fingerprint: "fp2",
		SizeBytes:   2048,
	}, "app_1")

	view, err := service.GetRelease(context.Background(), access.User("user_mgr_1"), demoRef, 1)
	if err != nil {
		t.Fatalf("get release: %v", err)
	}
	if view.Package.Version != "1.2.4" || view.Package.SizeBytes != 2048 {
		t.Fatalf("release read should denormalize current package fields: %+v", view.Package)
	}
}

func TestLatestReleasePicksNewestEnabled(t *testing.T) {
	service, _ := newService(t)
	mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7, Enabled: true})
	mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7, Enabled: false})
	mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "production", BuildNumber: 7, Enabled: true})

	view, err := service.LatestRelease(context.Background(), access.Anonymous(), demoRef, "staging")
	if err != nil {
		t.Fatalf("latest release: %v", err)
	}
	if view.Release.ReleaseNumber != 1 {
		t.Fatalf("disabled release must not win, got %d", view.Release.ReleaseNumber)
	}

	if _, err := service.LatestRelease(context.Background(), access.Anonymous(), demoRef, "canary"); !errors.Is(err, domainerrors.ErrNoEnabledRelease) {
		t.Fatalf("expected ErrNoEnabledRelease, got %v", err)
	}
}

func TestDeleteReleaseGuards(t *testing.T) {
	service, store := newService(t)
	mgr := access.User("user_mgr_1")
	view := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7, Enabled: true})

	if err := service.DeleteRelease(context.Background(), mgr, demoRef, 1); !errors.Is(err, domainerrors.ErrReleaseEnabled) {
		t.Fatalf("enabled release delete: expected ErrReleaseEnabled, got %v", err)
	}

	disabled := false
	if _, err := service.UpdateRelease(context.Background(), mgr, demoRef, 1, ports.UpdateReleaseInput{Enabled: &disabled}); err != nil {
		t.Fatalf("disable release: %v", err)
	}

	store.MarkSubmitted(view.Release.ReleaseID, 1)
	if err := service.DeleteRelease(context.Background(), mgr, demoRef, 1); !errors.Is(err, domainerrors.ErrReleaseSubmitted) {
		t.Fatalf("submitted release delete: expected ErrReleaseSubmitted, got %v", err)
	}

	store.MarkSubmitted(view.Release.ReleaseID, 0)
	if err := service.DeleteRelease(context.Background(), mgr, demoRef, 1); err != nil {
		t.Fatalf("delete release: %v", err)
	}
	if _, err := service.GetRelease(context.Background(), mgr, demoRef, 1); !errors.Is(err, domainerrors.ErrReleaseNotFound) {
		t.Fatalf("expected ErrReleaseNotFound after delete, got %v", err)
	}
}

func TestUpgradeAdvice(t *testing.T) {
	service, _ := newService(t)
	mgr := access.User("user_mgr_1")
	release := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "production", BuildNumber: 7, Enabled: true})
	number := release.Release.ReleaseNumber

	if _, err := service.CreateUpgrade(context.Background(), mgr, demoRef, number, ports.CreateUpgradeInput{
		TargetVersion: "not-a-version",
	}); !errors.Is(err, domainerrors.ErrInvalidVersion) {
		t.Fatalf("expected ErrInvalidVersion, got %v", err)
	}

	if _, err := service.CreateUpgrade(context.Background(), mgr, demoRef, number, ports.CreateUpgradeInput{
		TargetVersion: "1.5.0",
		Enabled:       true,
	}); err != nil {
		t.Fatalf("create upgrade: %v", err)
	}
	if _, err := service.CreateUpgrade(context.Background(), mgr, demoRef, number, ports.CreateUpgradeInput{
		TargetVersion: "2.0.0",
		Description:   "breaking api change",
		Enabled:       true,
		Mandatory:     true,
	}); err != nil {
		t.Fatalf("create upgrade: %v", err)
	}

	advice, err := service.CheckUpgrade(context.Background(), access.Anonymous(), demoRef, "production", "1.2.3")
	if err != nil {
		t.Fatalf("check upgrade: %v", err)
	}
	if !advice.UpgradeAvailable || !advice.Mandatory {
		t.Fatalf("expected mandatory upgrade, got %+v", advice)
	}
	if advice.TargetVersion != "2.0.0" {
		t.Fatalf("highest target should win, got %q", advice.TargetVersion)
	}

	// A client already on the newest version gets no advice.
	advice, err = service.CheckUpgrade(context.Background(), access.Anonymous(), demoRef, "production", "2.0.0")
	if err != nil {
		t.Fatalf("check upgrade: %v", err)
	}
	if advice.UpgradeAvailable {
		t.Fatalf("no upgrade expected, got %+v", advice)
	}

	// The owning release scopes the advice: other environments see nothing.
	advice, err = service.CheckUpgrade(context.Background(), access.Anonymous(), demoRef, "staging", "1.0.0")
	if err != nil {
		t.Fatalf("check upgrade: %v", err)
	}
	if advice.UpgradeAvailable {
		t.Fatalf("staging should have no advice, got %+v", advice)
	}
}

func TestUpgradeRequiresOwningRelease(t *testing.T) {
	service, _ := newService(t)
	mgr := access.User("user_mgr_1")

	if _, err := service.CreateUpgrade(context.Background(), mgr, demoRef, 9, ports.CreateUpgradeInput{
		TargetVersion: "1.5.0",
		Enabled:       true,
	}); !errors.Is(err, domainerrors.ErrReleaseNotFound) {
		t.Fatalf("upgrade on missing release: expected ErrReleaseNotFound, got %v", err)
	}

	first := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})
	second := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})
	upgrade, err := service.CreateUpgrade(context.Background(), mgr, demoRef, first.Release.ReleaseNumber, ports.CreateUpgradeInput{
		TargetVersion: "1.5.0",
		Enabled:       true,
	})
	if err != nil {
		t.Fatalf("create upgrade: %v", err)
	}
	if upgrade.ReleaseID != first.Release.ReleaseID {
		t.Fatalf("upgrade bound to wrong release: %+v", upgrade)
	}
	if upgrade.UpgradeNumber != 1 {
		t.Fatalf("first upgrade number should be 1, got %d", upgrade.UpgradeNumber)
	}

	// Sibling releases each carry their own sequence and roster.
	other, err := service.CreateUpgrade(context.Background(), mgr, demoRef, second.Release.ReleaseNumber, ports.CreateUpgradeInput{
		TargetVersion: "2.0.0",
		Enabled:       true,
	})
	if err != nil {
		t.Fatalf("create upgrade: %v", err)
	}
	if other.UpgradeNumber != 1 {
		t.Fatalf("upgrade numbers are release-scoped, got %d", other.UpgradeNumber)
	}
	listed, err := service.ListUpgrades(context.Background(), mgr, demoRef, first.Release.ReleaseNumber, 0, 0)
	if err != nil {
		t.Fatalf("list upgrades: %v", err)
	}
	if len(listed) != 1 || listed[0].UpgradeID != upgrade.UpgradeID {
		t.Fatalf("release roster wrong: %+v", listed)
	}
}

func TestDeleteReleaseRemovesItsUpgrades(t *testing.T) {
	service, _ := newService(t)
	mgr := access.User("user_mgr_1")
	release := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})
	if _, err := service.CreateUpgrade(context.Background(), mgr, demoRef, release.Release.ReleaseNumber, ports.CreateUpgradeInput{
		TargetVersion: "2.0.0",
		Enabled:       true,
	}); err != nil {
		t.Fatalf("create upgrade: %v", err)
	}

	if err := service.DeleteRelease(context.Background(), mgr, demoRef, release.Release.ReleaseNumber); err != nil {
		t.Fatalf("delete release: %v", err)
	}
	advice, err := service.CheckUpgrade(context.Background(), access.Anonymous(), demoRef, "staging", "1.0.0")
	if err != nil {
		t.Fatalf("check upgrade: %v", err)
	}
	if advice.UpgradeAvailable {
		t.Fatalf("deleted release must take its upgrades with it, got %+v", advice)
	}
}

func TestReleaseNumberNotReusedAfterDelete(t *testing.T) {
	service, _ := newService(t)
	mgr := access.User("user_mgr_1")
	mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})
	second := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})

	if err := service.DeleteRelease(context.Background(), mgr, demoRef, second.Release.ReleaseNumber); err != nil {
		t.Fatalf("delete release: %v", err)
	}
	third := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})
	if third.Release.ReleaseNumber <= second.Release.ReleaseNumber {
		t.Fatalf("release number %d reused after deleting release %d", third.Release.ReleaseNumber, second.Release.ReleaseNumber)
	}

	// A gap at the low end must not wedge future creates either.
	if err := service.DeleteRelease(context.Background(), mgr, demoRef, 1); err != nil {
		t.Fatalf("delete release: %v", err)
	}
	for i := 0; i < 6; i++ {
		view := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7})
		if view.Release.ReleaseNumber != 4+i {
			t.Fatalf("expected release %d, got %d", 4+i, view.Release.ReleaseNumber)
		}
	}
}

func TestUpdateUpgradeToggles(t *testing.T) {
	service, _ := newService(t)
	mgr := access.User("user_mgr_1")
	release := mustCreateRelease(t, service, ports.CreateReleaseInput{Environment: "staging", BuildNumber: 7, Enabled: true})
	upgrade, err := service.CreateUpgrade(context.Background(), mgr, demoRef, release.Release.ReleaseNumber, ports.CreateUpgradeInput{
		TargetVersion: "1.5.0",
		Enabled:       true,
	})
	if err != nil {
		t.Fatalf("create upgrade: %v", err)
	}

	disabled := false
	mandatory := true
	updated, err := service.UpdateUpgrade(context.Background(), mgr, demoRef, release.Release.ReleaseNumber, upgrade.UpgradeNumber, ports.UpdateUpgradeInput{
		Enabled:   &disabled,
		Mandatory: &mandatory,
	})
	if err != nil {
		t.Fatalf("update upgrade: %v", err)
	}
	if updated.Enabled || !updated.Mandatory {
		t.Fatalf("toggles not applied: %+v", updated)
	}

	advice, err := service.CheckUpgrade(context.Background(), access.Anonymous(), demoRef, "staging", "1.0.0")
	if err != nil {
		t.Fatalf("check upgrade: %v", err)
	}
	if advice.UpgradeAvailable {
		t.Fatalf("disabled record must not advise, got %+v", advice)
	}
}
