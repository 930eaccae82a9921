package application

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"hangar/contexts/distribution/release-service/domain/entities"
	domainerrors "hangar/contexts/distribution/release-service/domain/errors"
	"hangar/contexts/distribution/release-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"

	"github.com/Masterminds/semver/v3"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100

	// sequenceAttempts bounds the sequence retry loops. The counters are
	// monotonic, so a collision on the unique index only happens when two
	// writers race; the loser draws the next number and tries again.
	sequenceAttempts = 5
)

// Service publishes packages as releases and answers upgrade checks from
// installed clients. Release reads join package metadata in at read time, so
// a package edit is visible on its releases immediately.
type Service struct {
	Repo        ports.Repository
	Catalog     ports.Catalog
	Packages    ports.PackageDirectory
	Submissions ports.SubmissionCensus
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// CreateRelease publishes a build to an environment. Requires the
// release-creation role on the application.
func (s Service) CreateRelease(ctx context.Context, actor access.Actor, ref ports.AppRef, input ports.CreateReleaseInput) (ports.ReleaseView, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionCreateRelease)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	environment := strings.TrimSpace(input.Environment)
	if environment == "" {
		return ports.ReleaseView{}, domainerrors.ErrInvalidRequest
	}
	known, err := s.Catalog.HasEnvironment(ctx, app.AppID, environment)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	if !known {
		return ports.ReleaseView{}, domainerrors.ErrEnvironmentUnknown
	}
	pkg, found, err := s.Packages.FindPackageByBuild(ctx, app.AppID, input.BuildNumber)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	if !found {
		return ports.ReleaseView{}, domainerrors.ErrPackageNotFound
	}

	releaseID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	now := s.Clock.Now().UTC()
	release := entities.Release{
		ReleaseID:   releaseID,
		AppID:       app.AppID,
		PackageID:   pkg.PackageID,
		Environment: environment,
		Description: strings.TrimSpace(input.Description),
		Enabled:     input.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created := false
	for attempt := 0; attempt < sequenceAttempts; attempt++ {
		releaseNumber, err := s.Repo.NextReleaseNumber(ctx, app.AppID)
		if err != nil {
			return ports.ReleaseView{}, err
		}
		release.ReleaseNumber = releaseNumber
		if err := s.Repo.CreateRelease(ctx, release); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				continue
			}
			return ports.ReleaseView{}, err
		}
		created = true
		break
	}
	if !created {
		return ports.ReleaseView{}, domainerrors.ErrSequenceContention
	}

	s.log().Info("release created",
		"app", app.Name,
		"release", release.ReleaseNumber,
		"build", pkg.BuildNumber,
		"environment", environment,
		"enabled", release.Enabled,
	)
	return ports.ReleaseView{Release: release, Package: pkg}, nil
}

// GetRelease returns one release with its package joined in.
func (s Service) GetRelease(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int) (ports.ReleaseView, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	release, found, err := s.Repo.GetRelease(ctx, app.AppID, releaseNumber)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	if !found {
		return ports.ReleaseView{}, domainerrors.ErrReleaseNotFound
	}
	return s.view(ctx, release)
}

// ListReleases windows an app's releases, newest first.
func (s Service) ListReleases(ctx context.Context, actor access.Actor, ref ports.AppRef, top, skip int) ([]ports.ReleaseView, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return nil, err
	}
	releases, err := s.Repo.ListReleases(ctx, app.AppID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(releases, func(i, j int) bool { return releases[i].ReleaseNumber > releases[j].ReleaseNumber })
	releases = window(releases, top, skip)
	views := make([]ports.ReleaseView, 0, len(releases))
	for _, release := range releases {
		view, err := s.view(ctx, release)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// LatestRelease returns the newest enabled release for an environment. This
// is the lookup behind the public download surface.
func (s Service) LatestRelease(ctx context.Context, actor access.Actor, ref ports.AppRef, environment string) (ports.ReleaseView, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	releases, err := s.Repo.ListReleases(ctx, app.AppID)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	var latest *entities.Release
	for i := range releases {
		release := &releases[i]
		if !release.Enabled || release.Environment != environment {
			continue
		}
		if latest == nil || release.ReleaseNumber > latest.ReleaseNumber {
			latest = release
		}
	}
	if latest == nil {
		return ports.ReleaseView{}, domainerrors.ErrNoEnabledRelease
	}
	return s.view(ctx, *latest)
}

// UpdateRelease edits description and the enabled toggle.
func (s Service) UpdateRelease(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int, input ports.UpdateReleaseInput) (ports.ReleaseView, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionCreateRelease)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	release, found, err := s.Repo.GetRelease(ctx, app.AppID, releaseNumber)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	if !found {
		return ports.ReleaseView{}, domainerrors.ErrReleaseNotFound
	}
	if input.Description != nil {
		release.Description = strings.TrimSpace(*input.Description)
	}
	if input.Enabled != nil {
		release.Enabled = *input.Enabled
	}
	release.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateRelease(ctx, release); err != nil {
		return ports.ReleaseView{}, err
	}
	return s.view(ctx, release)
}

// DeleteRelease removes a release together with its upgrade records. An
// enabled release is live and must be disabled first; a release with store
// submissions keeps its history.
func (s Service) DeleteRelease(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int) error {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionDelete)
	if err != nil {
		return err
	}
	release, found, err := s.Repo.GetRelease(ctx, app.AppID, releaseNumber)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrReleaseNotFound
	}
	if release.Enabled {
		return domainerrors.ErrReleaseEnabled
	}
	submissions, err := s.Submissions.CountReleaseSubmissions(ctx, release.ReleaseID)
	if err != nil {
		return err
	}
	if submissions > 0 {
		return domainerrors.ErrReleaseSubmitted
	}
	if err := s.Repo.DeleteRelease(ctx, release.ReleaseID); err != nil {
		return err
	}
	s.log().Info("release deleted", "app", app.Name, "release", release.ReleaseNumber)
	return nil
}

// CreateUpgrade records upgrade advice on a release. Clients below the
// target version in the release's environment are told to update.
func (s Service) CreateUpgrade(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber int, input ports.CreateUpgradeInput) (entities.Upgrade, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionCreateRelease)
	if err != nil {
		return entities.Upgrade{}, err
	}
	release, found, err := s.Repo.GetRelease(ctx, app.AppID, releaseNumber)
	if err != nil {
		return entities.Upgrade{}, err
	}
	if !found {
		return entities.Upgrade{}, domainerrors.ErrReleaseNotFound
	}
	target, err := semver.NewVersion(strings.TrimSpace(input.TargetVersion))
	if err != nil {
		return entities.Upgrade{}, domainerrors.ErrInvalidVersion
	}

	upgradeID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Upgrade{}, err
	}
	now := s.Clock.Now().UTC()
	upgrade := entities.Upgrade{
		UpgradeID:     upgradeID,
		ReleaseID:     release.ReleaseID,
		TargetVersion: target.String(),
		Description:   strings.TrimSpace(input.Description),
		Enabled:       input.Enabled,
		Mandatory:     input.Mandatory,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created := false
	for attempt := 0; attempt < sequenceAttempts; attempt++ {
		upgradeNumber, err := s.Repo.NextUpgradeNumber(ctx, release.ReleaseID)
		if err != nil {
			return entities.Upgrade{}, err
		}
		upgrade.UpgradeNumber = upgradeNumber
		if err := s.Repo.CreateUpgrade(ctx, upgrade); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				continue
			}
			return entities.Upgrade{}, err
		}
		created = true
		break
	}
	if !created {
		return entities.Upgrade{}, domainerrors.ErrSequenceContention
	}
	return upgrade, nil
}

// UpdateUpgrade edits the description and the enabled and mandatory toggles.
func (s Service) UpdateUpgrade(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber, upgradeNumber int, input ports.UpdateUpgradeInput) (entities.Upgrade, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionCreateRelease)
	if err != nil {
		return entities.Upgrade{}, err
	}
	upgrade, err := s.findUpgrade(ctx, app.AppID, releaseNumber, upgradeNumber)
	if err != nil {
		return entities.Upgrade{}, err
	}
	if input.Description != nil {
		upgrade.Description = strings.TrimSpace(*input.Description)
	}
	if input.Enabled != nil {
		upgrade.Enabled = *input.Enabled
	}
	if input.Mandatory != nil {
		upgrade.Mandatory = *input.Mandatory
	}
	upgrade.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateUpgrade(ctx, upgrade); err != nil {
		return entities.Upgrade{}, err
	}
	return upgrade, nil
}

// ListUpgrades returns a release's upgrade records, newest first.
func (s Service) ListUpgrades(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber, top, skip int) ([]entities.Upgrade, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return nil, err
	}
	release, found, err := s.Repo.GetRelease(ctx, app.AppID, releaseNumber)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrReleaseNotFound
	}
	upgrades, err := s.Repo.ListUpgrades(ctx, release.ReleaseID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(upgrades, func(i, j int) bool { return upgrades[i].UpgradeNumber > upgrades[j].UpgradeNumber })
	return window(upgrades, top, skip), nil
}

// DeleteUpgrade removes an upgrade record.
func (s Service) DeleteUpgrade(ctx context.Context, actor access.Actor, ref ports.AppRef, releaseNumber, upgradeNumber int) error {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionDelete)
	if err != nil {
		return err
	}
	upgrade, err := s.findUpgrade(ctx, app.AppID, releaseNumber, upgradeNumber)
	if err != nil {
		return err
	}
	return s.Repo.DeleteUpgrade(ctx, upgrade.UpgradeID)
}

// CheckUpgrade answers an installed client reporting its current version.
// Upgrade records hang off releases, so the environment scope comes from the
// owning release; the highest enabled target newer than the client's version
// wins, and any matching mandatory record makes the advice mandatory.
func (s Service) CheckUpgrade(ctx context.Context, actor access.Actor, ref ports.AppRef, environment, currentVersion string) (ports.UpgradeAdvice, error) {
	app, err := s.Catalog.Authorize(ctx, actor, ref, access.ActionView)
	if err != nil {
		return ports.UpgradeAdvice{}, err
	}
	current, err := semver.NewVersion(strings.TrimSpace(currentVersion))
	if err != nil {
		return ports.UpgradeAdvice{}, domainerrors.ErrInvalidVersion
	}
	releases, err := s.Repo.ListReleases(ctx, app.AppID)
	if err != nil {
		return ports.UpgradeAdvice{}, err
	}

	advice := ports.UpgradeAdvice{}
	var best *semver.Version
	for _, release := range releases {
		if release.Environment != environment {
			continue
		}
		upgrades, err := s.Repo.ListUpgrades(ctx, release.ReleaseID)
		if err != nil {
			return ports.UpgradeAdvice{}, err
		}
		for _, upgrade := range upgrades {
			if !upgrade.Enabled {
				continue
			}
			target, err := semver.NewVersion(upgrade.TargetVersion)
			if err != nil {
				continue
			}
			if !target.GreaterThan(current) {
				continue
			}
			advice.UpgradeAvailable = true
			if upgrade.Mandatory {
				advice.Mandatory = true
			}
			if best == nil || target.GreaterThan(best) {
				best = target
				advice.TargetVersion = upgrade.TargetVersion
				advice.Description = upgrade.Description
			}
		}
	}
	return advice, nil
}

func (s Service) findUpgrade(ctx context.Context, appID string, releaseNumber, upgradeNumber int) (entities.Upgrade, error) {
	release, found, err := s.Repo.GetRelease(ctx, appID, releaseNumber)
	if err != nil {
		return entities.Upgrade{}, err
	}
	if !found {
		return entities.Upgrade{}, domainerrors.ErrReleaseNotFound
	}
	upgrade, found, err := s.Repo.GetUpgrade(ctx, release.ReleaseID, upgradeNumber)
	if err != nil {
		return entities.Upgrade{}, err
	}
	if !found {
		return entities.Upgrade{}, domainerrors.ErrUpgradeNotFound
	}
	return upgrade, nil
}

func (s Service) view(ctx context.Context, release entities.Release) (ports.ReleaseView, error) {
	pkg, found, err := s.Packages.FindPackageByID(ctx, release.PackageID)
	if err != nil {
		return ports.ReleaseView{}, err
	}
	if !found {
		return ports.ReleaseView{}, domainerrors.ErrPackageNotFound
	}
	return ports.ReleaseView{Release: release, Package: pkg}, nil
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
