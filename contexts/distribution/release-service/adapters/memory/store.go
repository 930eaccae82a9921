package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hangar/contexts/distribution/release-service/domain/entities"
	domainerrors "hangar/contexts/distribution/release-service/domain/errors"
	"hangar/contexts/distribution/release-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

// Store is an in-memory repository plus catalog and package fixtures for
// exercising the release service in isolation.
type Store struct {
	mu sync.Mutex

	releases    map[string]entities.Release
	upgrades    map[string]entities.Upgrade
	lastRelease map[string]int
	lastUpgrade map[string]int

	apps         map[string]ports.Application
	grants       map[string]map[string]access.Role
	environments map[string]map[string]bool
	packages     map[string]ports.PackageInfo
	submissions  map[string]int

	now    time.Time
	nextID int
}

func NewStore() *Store {
	return &Store{
		releases:     make(map[string]entities.Release),
		upgrades:     make(map[string]entities.Upgrade),
		lastRelease:  make(map[string]int),
		lastUpgrade:  make(map[string]int),
		apps:         make(map[string]ports.Application),
		grants:       make(map[string]map[string]access.Role),
		environments: make(map[string]map[string]bool),
		packages:     make(map[string]ports.PackageInfo),
		submissions:  make(map[string]int),
		now:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("rel_%04d", s.nextID), nil
}

func (s *Store) AddApplication(ref ports.AppRef, app ports.Application, environments ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[refKey(ref)] = app
	if s.environments[app.AppID] == nil {
		s.environments[app.AppID] = make(map[string]bool)
	}
	for _, environment := range environments {
		s.environments[app.AppID][environment] = true
	}
}

func (s *Store) GrantRole(ref ports.AppRef, userID string, role access.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := refKey(ref)
	if s.grants[key] == nil {
		s.grants[key] = make(map[string]access.Role)
	}
	s.grants[key][userID] = role
}

func (s *Store) AddPackage(pkg ports.PackageInfo, appID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[appID+"/"+pkg.PackageID] = pkg
}

func (s *Store) MarkSubmitted(releaseID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[releaseID] = count
}

func (s *Store) Authorize(ctx context.Context, actor access.Actor, ref ports.AppRef, action access.Action) (ports.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := refKey(ref)
	app, ok := s.apps[key]
	if !ok {
		return ports.Application{}, domainerrors.ErrApplicationNotFound
	}
	if action == access.ActionView {
		return app, nil
	}
	min, ok := access.MinimumRole(access.KindApplication, action)
	if !ok {
		return ports.Application{}, domainerrors.ErrInvalidRequest
	}
	role, held := s.grants[key][actor.UserID]
	if !held || !role.AtLeast(min) {
		return ports.Application{}, domainerrors.ErrForbidden
	}
	return app, nil
}

func (s *Store) HasEnvironment(ctx context.Context, appID, environment string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.environments[appID][environment], nil
}

func (s *Store) FindPackageByBuild(ctx context.Context, appID string, buildNumber int) (ports.PackageInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, pkg := range s.packages {
		if pkg.BuildNumber == buildNumber && keyApp(key) == appID {
			return pkg, true, nil
		}
	}
	return ports.PackageInfo{}, false, nil
}

func (s *Store) FindPackageByID(ctx context.Context, packageID string) (ports.PackageInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pkg := range s.packages {
		if pkg.PackageID == packageID {
			return pkg, true, nil
		}
	}
	return ports.PackageInfo{}, false, nil
}

func (s *Store) CountReleaseSubmissions(ctx context.Context, releaseID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions[releaseID], nil
}

func (s *Store) CreateRelease(ctx context.Context, release entities.Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.releases {
		if existing.AppID == release.AppID && existing.ReleaseNumber == release.ReleaseNumber {
			return domainerrors.ErrConflict
		}
	}
	s.releases[release.ReleaseID] = release
	return nil
}

func (s *Store) GetRelease(ctx context.Context, appID string, releaseNumber int) (entities.Release, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, release := range s.releases {
		if release.AppID == appID && release.ReleaseNumber == releaseNumber {
			return release, true, nil
		}
	}
	return entities.Release{}, false, nil
}

func (s *Store) UpdateRelease(ctx context.Context, release entities.Release) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.releases[release.ReleaseID]; !ok {
		return domainerrors.ErrReleaseNotFound
	}
	s.releases[release.ReleaseID] = release
	return nil
}

func (s *Store) DeleteRelease(ctx context.Context, releaseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.releases[releaseID]; !ok {
		return domainerrors.ErrReleaseNotFound
	}
	delete(s.releases, releaseID)
	for id, upgrade := range s.upgrades {
		if upgrade.ReleaseID == releaseID {
			delete(s.upgrades, id)
		}
	}
	return nil
}

func (s *Store) ListReleases(ctx context.Context, appID string) ([]entities.Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	releases := make([]entities.Release, 0)
	for _, release := range s.releases {
		if release.AppID == appID {
			releases = append(releases, release)
		}
	}
	return releases, nil
}

func (s *Store) NextReleaseNumber(ctx context.Context, appID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRelease[appID]++
	return s.lastRelease[appID], nil
}

func (s *Store) CountPackageReleases(ctx context.Context, packageID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, release := range s.releases {
		if release.PackageID == packageID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateUpgrade(ctx context.Context, upgrade entities.Upgrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.upgrades {
		if existing.ReleaseID == upgrade.ReleaseID && existing.UpgradeNumber == upgrade.UpgradeNumber {
			return domainerrors.ErrConflict
		}
	}
	s.upgrades[upgrade.UpgradeID] = upgrade
	return nil
}

func (s *Store) GetUpgrade(ctx context.Context, releaseID string, upgradeNumber int) (entities.Upgrade, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, upgrade := range s.upgrades {
		if upgrade.ReleaseID == releaseID && upgrade.UpgradeNumber == upgradeNumber {
			return upgrade, true, nil
		}
	}
	return entities.Upgrade{}, false, nil
}

func (s *Store) UpdateUpgrade(ctx context.Context, upgrade entities.Upgrade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.upgrades[upgrade.UpgradeID]; !ok {
		return domainerrors.ErrUpgradeNotFound
	}
	s.upgrades[upgrade.UpgradeID] = upgrade
	return nil
}

func (s *Store) DeleteUpgrade(ctx context.Context, upgradeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.upgrades[upgradeID]; !ok {
		return domainerrors.ErrUpgradeNotFound
	}
	delete(s.upgrades, upgradeID)
	return nil
}

func (s *Store) ListUpgrades(ctx context.Context, releaseID string) ([]entities.Upgrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	upgrades := make([]entities.Upgrade, 0)
	for _, upgrade := range s.upgrades {
		if upgrade.ReleaseID == releaseID {
			upgrades = append(upgrades, upgrade)
		}
	}
	return upgrades, nil
}

func (s *Store) NextUpgradeNumber(ctx context.Context, releaseID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpgrade[releaseID]++
	return s.lastUpgrade[releaseID], nil
}

func refKey(ref ports.AppRef) string {
	return ref.OwnerKind + "/" + ref.OwnerName + "/" + ref.AppName
}

func keyApp(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i]
		}
	}
	return key
}
