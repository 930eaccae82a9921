package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hangar/contexts/app-catalog/application-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/application-service/domain/errors"
	"hangar/contexts/app-catalog/application-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

// Store is an in-memory implementation of every port the application service
// needs. It doubles as the user and organization directories so the service
// can be exercised without the neighbouring contexts.
type Store struct {
	mu sync.Mutex

	apps    map[string]entities.Application
	members map[string]map[string]entities.Member
	keys    map[string][]entities.DeploymentKey

	users    map[string]ports.User
	orgs     map[string]ports.Organization
	orgRoles map[string]map[string]access.Role

	blobs map[string][]byte

	now    time.Time
	nextID int
}

func NewStore() *Store {
	return &Store{
		apps:     make(map[string]entities.Application),
		members:  make(map[string]map[string]entities.Member),
		keys:     make(map[string][]entities.DeploymentKey),
		users:    make(map[string]ports.User),
		orgs:     make(map[string]ports.Organization),
		orgRoles: make(map[string]map[string]access.Role),
		blobs:    make(map[string][]byte),
		now:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewSeededStore returns a store preloaded with the fixture users every test
// in this context shares.
func NewSeededStore() *Store {
	s := NewStore()
	for _, user := range []ports.User{
		{UserID: "user_owner_1", Handle: "owner"},
		{UserID: "user_dev_1", Handle: "dev"},
		{UserID: "user_viewer_1", Handle: "viewer"},
		{UserID: "user_outsider_1", Handle: "outsider"},
	} {
		s.users[user.UserID] = user
	}
	return s
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
	return fmt.Sprintf("id_%04d", s.nextID), nil
}

// AddUser registers a directory user for tests.
func (s *Store) AddUser(user ports.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user
}

// AddOrganization registers an organization projection for tests.
func (s *Store) AddOrganization(org ports.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[org.OrgID] = org
}

// SetOrganizationRole records an organization membership for tests.
func (s *Store) SetOrganizationRole(orgID, userID string, role access.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orgRoles[orgID] == nil {
		s.orgRoles[orgID] = make(map[string]access.Role)
	}
	s.orgRoles[orgID][userID] = role
}

func (s *Store) FindUserByHandle(ctx context.Context, handle string) (ports.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Handle == handle {
			return user, true, nil
		}
	}
	return ports.User{}, false, nil
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (ports.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	return user, ok, nil
}

func (s *Store) FindOrganizationByName(ctx context.Context, name string) (ports.Organization, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, org := range s.orgs {
		if org.Name == name {
			return org, true, nil
		}
	}
	return ports.Organization{}, false, nil
}

func (s *Store) FindOrganizationMemberRole(ctx context.Context, orgID, userID string) (access.Role, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.orgRoles[orgID][userID]
	return role, ok, nil
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

// Blob returns a stored blob for test assertions.
func (s *Store) Blob(handle string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[handle]
	return data, ok
}

func (s *Store) CreateApplication(ctx context.Context, app entities.Application, creator entities.Member, keys []entities.DeploymentKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apps {
		if existing.OwnerUserID == app.OwnerUserID && existing.OrgID == app.OrgID && existing.Name == app.Name {
			return domainerrors.ErrConflict
		}
	}
	s.apps[app.AppID] = app
	s.members[app.AppID] = map[string]entities.Member{creator.UserID: creator}
	s.keys[app.AppID] = append([]entities.DeploymentKey(nil), keys...)
	return nil
}

func (s *Store) GetApplication(ctx context.Context, owner ports.OwnerID, name string) (entities.Application, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, app := range s.apps {
		if app.OwnerUserID == owner.UserID && app.OrgID == owner.OrgID && app.Name == name {
			return app, true, nil
		}
	}
	return entities.Application{}, false, nil
}

func (s *Store) GetApplicationByID(ctx context.Context, appID string) (entities.Application, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	return app, ok, nil
}

func (s *Store) UpdateApplication(ctx context.Context, app entities.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.AppID]; !ok {
		return domainerrors.ErrApplicationNotFound
	}
	s.apps[app.AppID] = app
	return nil
}

func (s *Store) DeleteApplication(ctx context.Context, appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[appID]; !ok {
		return domainerrors.ErrApplicationNotFound
	}
	delete(s.apps, appID)
	delete(s.members, appID)
	delete(s.keys, appID)
	return nil
}

func (s *Store) ListApplications(ctx context.Context, owner ports.OwnerID) ([]entities.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apps := make([]entities.Application, 0)
	for _, app := range s.apps {
		if app.OwnerUserID == owner.UserID && app.OrgID == owner.OrgID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (s *Store) CountOrganizationApplications(ctx context.Context, orgID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, app := range s.apps {
		if app.OrgID == orgID {
			count++
		}
	}
	return count, nil
}

func (s *Store) GetMember(ctx context.Context, appID, userID string) (entities.Member, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[appID][userID]
	return member, ok, nil
}

func (s *Store) ListMembers(ctx context.Context, appID string) ([]entities.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]entities.Member, 0, len(s.members[appID]))
	for _, member := range s.members[appID] {
		members = append(members, member)
	}
	return members, nil
}

func (s *Store) CountMembersWithRole(ctx context.Context, appID string, role access.Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, member := range s.members[appID] {
		if member.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *Store) AddMember(ctx context.Context, member entities.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[member.AppID] == nil {
		s.members[member.AppID] = make(map[string]entities.Member)
	}
	if _, ok := s.members[member.AppID][member.UserID]; ok {
		return domainerrors.ErrMemberExists
	}
	s.members[member.AppID][member.UserID] = member
	return nil
}

func (s *Store) UpdateMemberRole(ctx context.Context, appID, userID string, role access.Role, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[appID][userID]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	member.Role = role
	member.UpdatedAt = now
	s.members[appID][userID] = member
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, appID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[appID][userID]; !ok {
		return domainerrors.ErrMemberNotFound
	}
	delete(s.members[appID], userID)
	return nil
}

func (s *Store) ListDeploymentKeys(ctx context.Context, appID string) ([]entities.DeploymentKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.DeploymentKey(nil), s.keys[appID]...), nil
}

func (s *Store) FindDeploymentKey(ctx context.Context, appID, environment string) (entities.DeploymentKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.keys[appID] {
		if key.Name == environment {
			return key, true, nil
		}
	}
	return entities.DeploymentKey{}, false, nil
}
