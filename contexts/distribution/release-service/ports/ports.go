package ports

import (
	"context"
	"time"

	"hangar/contexts/distribution/release-service/domain/entities"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AppRef addresses an application across the context boundary.
type AppRef struct {
	OwnerKind string
	OwnerName string
	AppName   string
}

type Application struct {
	AppID string
	Name  string
}

// Catalog is backed by the application service: access decisions plus the
// environment roster, since deployment keys live on the catalog side.
type Catalog interface {
	Authorize(ctx context.Context, actor access.Actor, ref AppRef, action access.Action) (Application, error)
	HasEnvironment(ctx context.Context, appID string, environment string) (bool, error)
}

// PackageInfo is the package projection denormalized into release reads.
type PackageInfo struct {
	PackageID    string
	BuildNumber  int
	FileName     string
	DisplayName  string
	BundleID     string
	Version      string
	BuildVersion string
	MinOSVersion string
	SizeBytes    int64
	Fingerprint  string
	StoragePath  string
}

// PackageDirectory is backed by the package service's repository.
type PackageDirectory interface {
	FindPackageByBuild(ctx context.Context, appID string, buildNumber int) (PackageInfo, bool, error)
	FindPackageByID(ctx context.Context, packageID string) (PackageInfo, bool, error)
}

// SubmissionCensus reports how many store submissions reference a release.
type SubmissionCensus interface {
	CountReleaseSubmissions(ctx context.Context, releaseID string) (int, error)
}

type CreateReleaseInput struct {
	Environment string
	BuildNumber int
	Description string
	Enabled     bool
}

type UpdateReleaseInput struct {
	Description *string
	Enabled     *bool
}

type CreateUpgradeInput struct {
	TargetVersion string
	Description   string
	Enabled       bool
	Mandatory     bool
}

type UpdateUpgradeInput struct {
	Description *string
	Enabled     *bool
	Mandatory   *bool
}

// ReleaseView is a release with its package fields joined in at read time.
// Package rows cannot be deleted while a release references them, so the
// join always resolves.
type ReleaseView struct {
	Release entities.Release
	Package PackageInfo
}

// UpgradeAdvice is the answer handed to an installed client.
type UpgradeAdvice struct {
	UpgradeAvailable bool
	Mandatory        bool
	TargetVersion    string
	Description      string
}

// Repository stores releases and their upgrades. NextReleaseNumber and
// NextUpgradeNumber draw from monotonic counters that deletion never rewinds,
// so a sequence value is handed out at most once; gaps from deleted rows are
// expected. CreateRelease and CreateUpgrade must still reject duplicate
// sequence pairs with ErrConflict, which backstops racing writers.
// DeleteRelease removes the release's upgrades with it.
type Repository interface {
	CreateRelease(ctx context.Context, release entities.Release) error
	GetRelease(ctx context.Context, appID string, releaseNumber int) (entities.Release, bool, error)
	UpdateRelease(ctx context.Context, release entities.Release) error
	DeleteRelease(ctx context.Context, releaseID string) error
	ListReleases(ctx context.Context, appID string) ([]entities.Release, error)
	NextReleaseNumber(ctx context.Context, appID string) (int, error)
	CountPackageReleases(ctx context.Context, packageID string) (int, error)

	CreateUpgrade(ctx context.Context, upgrade entities.Upgrade) error
	GetUpgrade(ctx context.Context, releaseID string, upgradeNumber int) (entities.Upgrade, bool, error)
	UpdateUpgrade(ctx context.Context, upgrade entities.Upgrade) error
	DeleteUpgrade(ctx context.Context, upgradeID string) error
	ListUpgrades(ctx context.Context, releaseID string) ([]entities.Upgrade, error)
	NextUpgradeNumber(ctx context.Context, releaseID string) (int, error)
}
