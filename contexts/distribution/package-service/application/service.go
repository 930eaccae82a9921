package application

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"hangar/contexts/distribution/package-service/domain/entities"
	domainerrors "hangar/contexts/distribution/package-service/domain/errors"
	"hangar/contexts/distribution/package-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100

	// sequenceAttempts bounds the build-number retry loop. The counter is
	// monotonic, so a collision on the unique index only happens when two
	// uploads race; the loser draws the next number and tries again.
	sequenceAttempts = 5
)

// Service ingests build artifacts, assigns app-scoped build numbers and
// manages package metadata. Uploads go through the catalog's access check
// first, so every operation here already knows the application it targets.
type Service struct {
	Repo     ports.Repository
	Catalog  ports.Catalog
	Releases ports.ReleaseCensus
	Blobs    ports.BlobStore
	Parser   ports.Parser
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// UploadPackage parses the artifact, fingerprints it, assigns the next build
// number and persists bytes plus metadata. The first uploaded artifact that
// carries an icon also becomes the application icon.
func (s Service) UploadPackage(ctx context.Context, actor access.Actor, ref ports.AppRef, input ports.UploadInput) (entities.Package, error) {
	if strings.TrimSpace(input.FileName) == "" || len(input.Data) == 0 {
		return entities.Package{}, domainerrors.ErrInvalidRequest
	}
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionUpload)
	if err != nil {
		return entities.Package{}, err
	}

	parsed, err := s.Parser.Parse(input.FileName, app.OS, app.Platform, input.Data)
	if err != nil {
		return entities.Package{}, err
	}

	sum := md5.Sum(input.Data)
	fingerprint := hex.EncodeToString(sum[:])

	packageID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Package{}, err
	}
	now := s.Clock.Now().UTC()
	fileName := path.Base(strings.TrimSpace(input.FileName))

	pkg := entities.Package{
		PackageID:    packageID,
		AppID:        app.AppID,
		FileName:     fileName,
		DisplayName:  parsed.DisplayName,
		BundleID:     parsed.BundleID,
		Version:      parsed.Version,
		BuildVersion: parsed.BuildVersion,
		MinOSVersion: parsed.MinOSVersion,
		SizeBytes:    int64(len(input.Data)),
		Fingerprint:  fingerprint,
		CommitID:     strings.TrimSpace(input.CommitID),
		Description:  strings.TrimSpace(input.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created := false
	for attempt := 0; attempt < sequenceAttempts; attempt++ {
		buildNumber, err := s.Repo.NextBuildNumber(ctx, app.AppID)
		if err != nil {
			return entities.Package{}, err
		}
		pkg.BuildNumber = buildNumber
		pkg.StoragePath = fmt.Sprintf("%s/packages/%d/%s", app.StoragePrefix, pkg.BuildNumber, fileName)
		if err := s.Repo.CreatePackage(ctx, pkg); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				continue
			}
			return entities.Package{}, err
		}
		created = true
		break
	}
	if !created {
		return entities.Package{}, domainerrors.ErrSequenceContention
	}

	if _, err := s.Blobs.Put(ctx, pkg.StoragePath, input.Data); err != nil {
		// The metadata row without bytes is useless; roll it back.
		if delErr := s.Repo.DeletePackage(ctx, pkg.PackageID); delErr != nil {
			s.log().Error("orphaned package row after blob failure",
				"package", pkg.PackageID, "error", delErr)
		}
		return entities.Package{}, err
	}

	if len(parsed.Icon) > 0 && !app.HasIcon {
		iconPath := fmt.Sprintf("%s/icons/icon.png", app.StoragePrefix)
		if handle, err := s.Blobs.Put(ctx, iconPath, parsed.Icon); err == nil {
			if err := s.Catalog.AdoptIcon(ctx, app.AppID, handle); err != nil {
				s.log().Warn("icon adoption failed", "app", app.AppID, "error", err)
			}
		}
	}

	s.log().Info("package ingested",
		"app", app.Name,
		"build", pkg.BuildNumber,
		"fingerprint", pkg.Fingerprint,
		"size", pkg.SizeBytes,
	)
	return pkg, nil
}

// GetPackage returns a single build, gated by the view rule.
func (s Service) GetPackage(ctx context.Context, actor access.Actor, ref ports.AppRef, buildNumber int) (entities.Package, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return entities.Package{}, err
	}
	pkg, found, err := s.Repo.GetPackage(ctx, app.AppID, buildNumber)
	if err != nil {
		return entities.Package{}, err
	}
	if !found {
		return entities.Package{}, domainerrors.ErrPackageNotFound
	}
	return pkg, nil
}

// ListPackages windows the app's builds, newest first.
func (s Service) ListPackages(ctx context.Context, actor access.Actor, ref ports.AppRef, top, skip int) ([]entities.Package, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return nil, err
	}
	pkgs, err := s.Repo.ListPackages(ctx, app.AppID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pkgs, func(i, j int) bool { return pkgs[i].BuildNumber > pkgs[j].BuildNumber })
	return window(pkgs, top, skip), nil
}

// UpdatePackage edits the mutable fields: description and commit id. All
// parsed metadata is immutable once ingested.
func (s Service) UpdatePackage(ctx context.Context, actor access.Actor, ref ports.AppRef, buildNumber int, input ports.UpdatePackageInput) (entities.Package, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionUpload)
	if err != nil {
		return entities.Package{}, err
	}
	pkg, found, err := s.Repo.GetPackage(ctx, app.AppID, buildNumber)
	if err != nil {
		return entities.Package{}, err
	}
	if !found {
		return entities.Package{}, domainerrors.ErrPackageNotFound
	}
	if input.Description != nil {
		pkg.Description = strings.TrimSpace(*input.Description)
	}
	if input.CommitID != nil {
		pkg.CommitID = strings.TrimSpace(*input.CommitID)
	}
	pkg.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdatePackage(ctx, pkg); err != nil {
		return entities.Package{}, err
	}
	return pkg, nil
}

// DeletePackage removes a build and its stored bytes. A build that any
// release references cannot be deleted.
func (s Service) DeletePackage(ctx context.Context, actor access.Actor, ref ports.AppRef, buildNumber int) error {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionDelete)
	if err != nil {
		return err
	}
	pkg, found, err := s.Repo.GetPackage(ctx, app.AppID, buildNumber)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrPackageNotFound
	}
	releases, err := s.Releases.CountPackageReleases(ctx, pkg.PackageID)
	if err != nil {
		return err
	}
	if releases > 0 {
		return domainerrors.ErrPackageReleased
	}
	if err := s.Repo.DeletePackage(ctx, pkg.PackageID); err != nil {
		return err
	}
	if err := s.Blobs.Delete(ctx, pkg.StoragePath); err != nil {
		s.log().Warn("artifact blob removal failed", "package", pkg.PackageID, "error", err)
	}
	s.log().Info("package deleted", "app", app.Name, "build", pkg.BuildNumber)
	return nil
}

func (s Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func window[T any](items []T, top, skip int) []T {
	if top <= 0 {
		top = defaultPageSize
	}
	if top > maxPageSize {
		top = maxPageSize
	}
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	end := skip + top
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
