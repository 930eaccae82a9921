package bootstrap

import (
	"context"
	"errors"

	appapplication "hangar/contexts/app-catalog/application-service/application"
	appentities "hangar/contexts/app-catalog/application-service/domain/entities"
	apperrors "hangar/contexts/app-catalog/application-service/domain/errors"
	apppostgres "hangar/contexts/app-catalog/application-service/adapters/postgres"
	appports "hangar/contexts/app-catalog/application-service/ports"
	orgpostgres "hangar/contexts/app-catalog/organization-service/adapters/postgres"
	orgports "hangar/contexts/app-catalog/organization-service/ports"
	pkgpostgres "hangar/contexts/distribution/package-service/adapters/postgres"
	pkgentities "hangar/contexts/distribution/package-service/domain/entities"
	pkgerrors "hangar/contexts/distribution/package-service/domain/errors"
	pkgports "hangar/contexts/distribution/package-service/ports"
	relpostgres "hangar/contexts/distribution/release-service/adapters/postgres"
	relerrors "hangar/contexts/distribution/release-service/domain/errors"
	relports "hangar/contexts/distribution/release-service/ports"
	storeerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	storeports "hangar/contexts/distribution/store-submission-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
	authports "hangar/contexts/identity-access/authorization-service/ports"
)

// The adapters below stitch the bounded contexts together. Each context
// declares the projection it needs as a port; the composition root is the
// only place that knows which sibling service fulfils it.

// userDirectory exposes the identity projection owned by the organization
// context to the application context.
type userDirectory struct {
	users *orgpostgres.Repository
}

func (d userDirectory) FindUserByHandle(ctx context.Context, handle string) (appports.User, bool, error) {
	user, ok, err := d.users.FindUserByHandle(ctx, handle)
	if err != nil || !ok {
		return appports.User{}, ok, err
	}
	return appports.User{UserID: user.UserID, Handle: user.Handle}, true, nil
}

func (d userDirectory) FindUserByID(ctx context.Context, userID string) (appports.User, bool, error) {
	user, ok, err := d.users.FindUserByID(ctx, userID)
	if err != nil || !ok {
		return appports.User{}, ok, err
	}
	return appports.User{UserID: user.UserID, Handle: user.Handle}, true, nil
}

// organizationDirectory lets the application context resolve org namespaces
// and derive effective roles from org membership.
type organizationDirectory struct {
	orgs *orgpostgres.Repository
}

func (d organizationDirectory) FindOrganizationByName(ctx context.Context, name string) (appports.Organization, bool, error) {
	org, ok, err := d.orgs.GetOrganization(ctx, name)
	if err != nil || !ok {
		return appports.Organization{}, ok, err
	}
	return appports.Organization{OrgID: org.OrgID, Name: org.Name, Visibility: org.Visibility}, true, nil
}

func (d organizationDirectory) FindOrganizationMemberRole(ctx context.Context, orgID, userID string) (access.Role, bool, error) {
	member, ok, err := d.orgs.GetMember(ctx, orgID, userID)
	if err != nil || !ok {
		return 0, ok, err
	}
	return member.Role, true, nil
}

var _ orgports.ApplicationCensus = (*apppostgres.Repository)(nil)

// packageCatalog grants the package context access decisions from the
// application service. Catalog errors are translated into this context's
// sentinels so transport mapping stays local.
type packageCatalog struct {
	apps appapplication.Service
}

func (c packageCatalog) Authorize(ctx context.Context, actor access.Actor, ref pkgports.AppRef, action access.Action) (pkgports.Application, error) {
	grant, err := c.apps.CheckAccess(ctx, actor, ownerRef(ref.OwnerKind, ref.OwnerName), ref.AppName, action)
	if err != nil {
		return pkgports.Application{}, translateCatalogError(err, pkgerrors.ErrApplicationNotFound, pkgerrors.ErrForbidden)
	}
	return pkgports.Application{
		AppID:         grant.App.AppID,
		Name:          grant.App.Name,
		StoragePrefix: grant.StoragePrefix,
		OS:            grant.App.OS.String(),
		Platform:      grant.App.Platform.String(),
		HasIcon:       grant.App.IconPath != "",
	}, nil
}

func (c packageCatalog) AdoptIcon(ctx context.Context, appID, handle string) error {
	return c.apps.AdoptIcon(ctx, appID, handle)
}

// releaseCatalog adds the environment roster on top of access decisions,
// since deployment keys live on the catalog side.
type releaseCatalog struct {
	apps appapplication.Service
	keys *apppostgres.Repository
}

func (c releaseCatalog) Authorize(ctx context.Context, actor access.Actor, ref relports.AppRef, action access.Action) (relports.Application, error) {
	grant, err := c.apps.CheckAccess(ctx, actor, ownerRef(ref.OwnerKind, ref.OwnerName), ref.AppName, action)
	if err != nil {
		return relports.Application{}, translateCatalogError(err, relerrors.ErrApplicationNotFound, relerrors.ErrForbidden)
	}
	return relports.Application{AppID: grant.App.AppID, Name: grant.App.Name}, nil
}

func (c releaseCatalog) HasEnvironment(ctx context.Context, appID, environment string) (bool, error) {
	_, ok, err := c.keys.FindDeploymentKey(ctx, appID, environment)
	return ok, err
}

type storeCatalog struct {
	apps appapplication.Service
}

func (c storeCatalog) Authorize(ctx context.Context, actor access.Actor, ref storeports.AppRef, action access.Action) (storeports.Application, error) {
	grant, err := c.apps.CheckAccess(ctx, actor, ownerRef(ref.OwnerKind, ref.OwnerName), ref.AppName, action)
	if err != nil {
		return storeports.Application{}, translateCatalogError(err, storeerrors.ErrApplicationNotFound, storeerrors.ErrForbidden)
	}
	return storeports.Application{AppID: grant.App.AppID, Name: grant.App.Name}, nil
}

var _ pkgports.ReleaseCensus = (*relpostgres.Repository)(nil)

// packageDirectory projects ingested packages into the release context.
type packageDirectory struct {
	packages *pkgpostgres.Repository
}

func (d packageDirectory) FindPackageByBuild(ctx context.Context, appID string, buildNumber int) (relports.PackageInfo, bool, error) {
	pkg, ok, err := d.packages.GetPackage(ctx, appID, buildNumber)
	if err != nil || !ok {
		return relports.PackageInfo{}, ok, err
	}
	return packageInfo(pkg), true, nil
}

func (d packageDirectory) FindPackageByID(ctx context.Context, packageID string) (relports.PackageInfo, bool, error) {
	pkg, ok, err := d.packages.GetPackageByID(ctx, packageID)
	if err != nil || !ok {
		return relports.PackageInfo{}, ok, err
	}
	return packageInfo(pkg), true, nil
}

// releaseDirectory joins a release with its package so the store context can
// hand complete build facts to a channel adapter.
type releaseDirectory struct {
	releases *relpostgres.Repository
	packages *pkgpostgres.Repository
}

func (d releaseDirectory) FindRelease(ctx context.Context, appID string, releaseNumber int) (storeports.ReleaseInfo, bool, error) {
	release, ok, err := d.releases.GetRelease(ctx, appID, releaseNumber)
	if err != nil || !ok {
		return storeports.ReleaseInfo{}, ok, err
	}
	pkg, ok, err := d.packages.GetPackageByID(ctx, release.PackageID)
	if err != nil || !ok {
		return storeports.ReleaseInfo{}, ok, err
	}
	return storeports.ReleaseInfo{
		ReleaseID:   release.ReleaseID,
		AppID:       release.AppID,
		Version:     pkg.Version,
		StoragePath: pkg.StoragePath,
	}, true, nil
}

// catalogDirectory backs the authorization engine with the catalog
// repositories, resolving guarded resources and membership rows.
type catalogDirectory struct {
	orgs *orgpostgres.Repository
	apps *apppostgres.Repository
}

func (d catalogDirectory) FindResource(ctx context.Context, ref authports.ResourceRef) (authports.Resource, bool, error) {
	switch ref.Kind {
	case access.KindOrganization:
		org, ok, err := d.orgs.GetOrganization(ctx, ref.Name)
		if err != nil || !ok {
			return authports.Resource{}, ok, err
		}
		return authports.Resource{ID: org.OrgID, Visibility: org.Visibility}, true, nil
	case access.KindApplication:
		app, ok, err := d.findApplication(ctx, ref)
		if err != nil || !ok {
			return authports.Resource{}, ok, err
		}
		return authports.Resource{ID: app.AppID, Visibility: app.Visibility}, true, nil
	default:
		return authports.Resource{}, false, nil
	}
}

func (d catalogDirectory) FindMembership(ctx context.Context, ref authports.ResourceRef, userID string) (access.Role, bool, error) {
	switch ref.Kind {
	case access.KindOrganization:
		org, ok, err := d.orgs.GetOrganization(ctx, ref.Name)
		if err != nil || !ok {
			return 0, ok, err
		}
		member, ok, err := d.orgs.GetMember(ctx, org.OrgID, userID)
		if err != nil || !ok {
			return 0, ok, err
		}
		return member.Role, true, nil
	case access.KindApplication:
		app, ok, err := d.findApplication(ctx, ref)
		if err != nil || !ok {
			return 0, ok, err
		}
		member, ok, err := d.apps.GetMember(ctx, app.AppID, userID)
		if err != nil || !ok {
			return 0, ok, err
		}
		return member.Role, true, nil
	default:
		return 0, false, nil
	}
}

// findApplication resolves the owner namespace first: an organization name
// takes precedence, falling back to a username.
func (d catalogDirectory) findApplication(ctx context.Context, ref authports.ResourceRef) (appentities.Application, bool, error) {
	var owner appports.OwnerID
	if org, ok, err := d.orgs.GetOrganization(ctx, ref.OwnerName); err != nil {
		return appentities.Application{}, false, err
	} else if ok {
		owner.OrgID = org.OrgID
	} else {
		user, ok, err := d.orgs.FindUserByHandle(ctx, ref.OwnerName)
		if err != nil || !ok {
			return appentities.Application{}, false, err
		}
		owner.UserID = user.UserID
	}
	return d.apps.GetApplication(ctx, owner, ref.Name)
}

func packageInfo(pkg pkgentities.Package) relports.PackageInfo {
	return relports.PackageInfo{
		PackageID:    pkg.PackageID,
		BuildNumber:  pkg.BuildNumber,
		FileName:     pkg.FileName,
		DisplayName:  pkg.DisplayName,
		BundleID:     pkg.BundleID,
		Version:      pkg.Version,
		BuildVersion: pkg.BuildVersion,
		MinOSVersion: pkg.MinOSVersion,
		SizeBytes:    pkg.SizeBytes,
		Fingerprint:  pkg.Fingerprint,
		StoragePath:  pkg.StoragePath,
	}
}

func ownerRef(kind, name string) appports.OwnerRef {
	return appports.OwnerRef{Kind: appports.OwnerKind(kind), Name: name}
}

// translateCatalogError keeps the 404-vs-403 distinction intact while moving
// an application-context failure into the calling context's vocabulary.
func translateCatalogError(err error, notFound, forbidden error) error {
	switch {
	case isCatalogNotFound(err):
		return notFound
	case isCatalogForbidden(err):
		return forbidden
	default:
		return err
	}
}

func isCatalogNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrApplicationNotFound) ||
		errors.Is(err, apperrors.ErrOwnerNotFound) ||
		errors.Is(err, apperrors.ErrInvalidOwner)
}

func isCatalogForbidden(err error) bool {
	return errors.Is(err, apperrors.ErrForbidden)
}
