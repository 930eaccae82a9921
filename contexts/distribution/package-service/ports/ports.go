package ports

import (
	"context"
	"time"

	"hangar/contexts/distribution/package-service/domain/entities"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AppRef addresses an application across the context boundary: owner
// namespace kind ("user" or "org"), owner name and application name.
type AppRef struct {
	OwnerKind string
	OwnerName string
	AppName   string
}

// Application is the catalog projection this context needs: identity, the
// owner-scoped storage prefix for artifact paths, the declared target OS and
// platform for parser selection, and whether an icon is already set.
type Application struct {
	AppID         string
	Name          string
	StoragePrefix string
	OS            string
	Platform      string
	HasIcon       bool
}

// Catalog is backed by the application service in the composition root. An
// authorization failure surfaces as this context's forbidden or not-found
// error.
type Catalog interface {
	Authorize(ctx context.Context, actor access.Actor, ref AppRef, action access.Action) (Application, error)
	AdoptIcon(ctx context.Context, appID string, handle string) error
}

// ReleaseCensus reports how many releases reference a package. Backed by the
// release service's repository.
type ReleaseCensus interface {
	CountPackageReleases(ctx context.Context, packageID string) (int, error)
}

// BlobStore persists artifact and icon bytes under a storage path.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
	Delete(ctx context.Context, handle string) error
}

// ParsedPackage is what a format parser extracts from raw artifact bytes.
// Icon holds PNG bytes when the artifact carries one.
type ParsedPackage struct {
	DisplayName  string
	BundleID     string
	Version      string
	BuildVersion string
	MinOSVersion string
	Icon         []byte
}

// Parser turns artifact bytes into package metadata. The registry adapter
// probes the known formats against the file name and the application's
// declared OS and platform, and returns ErrUnsupportedFormat when none match.
type Parser interface {
	Parse(fileName string, os string, platform string, data []byte) (ParsedPackage, error)
}

type UploadInput struct {
	FileName    string
	Data        []byte
	Description string
	CommitID    string
}

type UpdatePackageInput struct {
	Description *string
	CommitID    *string
}

// Repository stores packages. NextBuildNumber draws from a monotonic
// per-application counter that deletion never rewinds, so a build number is
// handed out at most once; gaps from deleted builds are expected. CreatePackage
// must still reject a duplicate (app_id, build_number) pair with ErrConflict,
// which backstops ingestion when two uploads race.
type Repository interface {
	CreatePackage(ctx context.Context, pkg entities.Package) error
	GetPackage(ctx context.Context, appID string, buildNumber int) (entities.Package, bool, error)
	GetPackageByID(ctx context.Context, packageID string) (entities.Package, bool, error)
	UpdatePackage(ctx context.Context, pkg entities.Package) error
	DeletePackage(ctx context.Context, packageID string) error
	ListPackages(ctx context.Context, appID string) ([]entities.Package, error)
	NextBuildNumber(ctx context.Context, appID string) (int, error)
}
