package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hangar/contexts/distribution/package-service/domain/entities"
	domainerrors "hangar/contexts/distribution/package-service/domain/errors"
	"hangar/contexts/distribution/package-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

// Store is an in-memory repository plus catalog, census and blob store. The
// catalog side is a fixture: tests register applications and the roles actors
// hold on them.
type Store struct {
	mu sync.Mutex

	packages  map[string]entities.Package
	lastBuild map[string]int

	apps      map[string]ports.Application
	grants    map[string]map[string]access.Role
	icons     map[string]string
	released  map[string]int
	blobs     map[string][]byte

	now    time.Time
	nextID int
}

func NewStore() *Store {
	return &Store{
		packages:  make(map[string]entities.Package),
		lastBuild: make(map[string]int),
		apps:      make(map[string]ports.Application),
		grants:    make(map[string]map[string]access.Role),
		icons:     make(map[string]string),
		released:  make(map[string]int),
		blobs:     make(map[string][]byte),
		now:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
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
	return fmt.Sprintf("pkg_%04d", s.nextID), nil
}

// AddApplication registers a catalog projection keyed by its reference.
func (s *Store) AddApplication(ref ports.AppRef, app ports.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[refKey(ref)] = app
}

// GrantRole records an actor's effective role on an application.
func (s *Store) GrantRole(ref ports.AppRef, userID string, role access.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := refKey(ref)
	if s.grants[key] == nil {
		s.grants[key] = make(map[string]access.Role)
	}
	s.grants[key][userID] = role
}

// MarkReleased flags a package as referenced by releases.
func (s *Store) MarkReleased(packageID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released[packageID] = count
}

// AdoptedIcon returns the icon handle recorded for an application.
func (s *Store) AdoptedIcon(appID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle, ok := s.icons[appID]
	return handle, ok
}

// Blob returns stored blob bytes for assertions.
func (s *Store) Blob(handle string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[handle]
	return data, ok
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

func (s *Store) AdoptIcon(ctx context.Context, appID, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.icons[appID]; !ok {
		s.icons[appID] = handle
	}
	return nil
}

func (s *Store) CountPackageReleases(ctx context.Context, packageID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released[packageID], nil
}

func (s *Store) Put(ctx context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[path] = buf
	return path, nil
}

func (s *Store) Delete(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, handle)
	return nil
}

func (s *Store) CreatePackage(ctx context.Context, pkg entities.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.packages {
		if existing.AppID == pkg.AppID && existing.BuildNumber == pkg.BuildNumber {
			return domainerrors.ErrConflict
		}
	}
	s.packages[pkg.PackageID] = pkg
	return nil
}

func (s *Store) GetPackage(ctx context.Context, appID string, buildNumber int) (entities.Package, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pkg := range s.packages {
		if pkg.AppID == appID && pkg.BuildNumber == buildNumber {
			return pkg, true, nil
		}
	}
	return entities.Package{}, false, nil
}

func (s *Store) GetPackageByID(ctx context.Context, packageID string) (entities.Package, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[packageID]
	return pkg, ok, nil
}

func (s *Store) UpdatePackage(ctx context.Context, pkg entities.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[pkg.PackageID]; !ok {
		return domainerrors.ErrPackageNotFound
	}
	s.packages[pkg.PackageID] = pkg
	return nil
}

func (s *Store) DeletePackage(ctx context.Context, packageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[packageID]; !ok {
		return domainerrors.ErrPackageNotFound
	}
	delete(s.packages, packageID)
	return nil
}

func (s *Store) ListPackages(ctx context.Context, appID string) ([]entities.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkgs := make([]entities.Package, 0)
	for _, pkg := range s.packages {
		if pkg.AppID == appID {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}

func (s *Store) NextBuildNumber(ctx context.Context, appID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastBuild[appID]++
	return s.lastBuild[appID], nil
}

func refKey(ref ports.AppRef) string {
	return ref.OwnerKind + "/" + ref.OwnerName + "/" + ref.AppName
}
