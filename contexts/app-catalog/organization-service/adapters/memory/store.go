package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hangar/contexts/app-catalog/organization-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/organization-service/domain/errors"
	"hangar/contexts/app-catalog/organization-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

// Store is the in-memory adapter backing tests and local runs. It implements
// the repository plus the clock, id generator, user directory, blob store and
// application census ports, mirroring how the live wiring spreads those
// concerns across postgres and the platform blob store.
type Store struct {
	mu sync.RWMutex

	orgsByID     map[string]entities.Organization
	orgIDByName  map[string]string
	membersByKey map[string]entities.Member

	usersByID     map[string]ports.User
	userIDByHandl map[string]string

	blobs    map[string][]byte
	appCount map[string]int

	sequence int
	now      time.Time
}

func NewStore() *Store {
	store := &Store{
		orgsByID:      make(map[string]entities.Organization),
		orgIDByName:   make(map[string]string),
		membersByKey:  make(map[string]entities.Member),
		usersByID:     make(map[string]ports.User),
		userIDByHandl: make(map[string]string),
		blobs:         make(map[string][]byte),
		appCount:      make(map[string]int),
		now:           time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, user := range []ports.User{
		{UserID: "user_admin_1", Handle: "admin"},
		{UserID: "user_collab_1", Handle: "collab"},
		{UserID: "user_member_1", Handle: "member"},
		{UserID: "user_outsider_1", Handle: "outsider"},
	} {
		store.usersByID[user.UserID] = user
		store.userIDByHandl[strings.ToLower(user.Handle)] = user.UserID
	}
	return store
}

// AddUser registers an identity projection row.
func (s *Store) AddUser(id, handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByID[id] = ports.User{UserID: id, Handle: handle}
	s.userIDByHandl[strings.ToLower(handle)] = id
}

// SetOrganizationApplicationCount seeds the census used by the delete guard.
func (s *Store) SetOrganizationApplicationCount(orgID string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appCount[orgID] = count
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	return fmt.Sprintf("org_res_%d", s.sequence), nil
}

func (s *Store) CreateOrganization(_ context.Context, org entities.Organization, creator entities.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgIDByName[org.Name]; exists {
		return domainerrors.ErrConflict
	}
	s.orgsByID[org.OrgID] = org
	s.orgIDByName[org.Name] = org.OrgID
	s.membersByKey[memberKey(creator.OrgID, creator.UserID)] = creator
	return nil
}

func (s *Store) GetOrganization(_ context.Context, name string) (entities.Organization, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.orgIDByName[name]
	if !ok {
		return entities.Organization{}, false, nil
	}
	return s.orgsByID[id], true, nil
}

func (s *Store) GetOrganizationByID(_ context.Context, orgID string) (entities.Organization, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgsByID[orgID]
	return org, ok, nil
}

func (s *Store) UpdateOrganization(_ context.Context, org entities.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.orgsByID[org.OrgID]
	if !ok {
		return domainerrors.ErrOrganizationNotFound
	}
	if current.Name != org.Name {
		if _, exists := s.orgIDByName[org.Name]; exists {
			return domainerrors.ErrConflict
		}
		delete(s.orgIDByName, current.Name)
		s.orgIDByName[org.Name] = org.OrgID
	}
	s.orgsByID[org.OrgID] = org
	return nil
}

func (s *Store) DeleteOrganization(_ context.Context, orgID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgsByID[orgID]
	if !ok {
		return domainerrors.ErrOrganizationNotFound
	}
	delete(s.orgsByID, orgID)
	delete(s.orgIDByName, org.Name)
	for key, member := range s.membersByKey {
		if member.OrgID == orgID {
			delete(s.membersByKey, key)
		}
	}
	return nil
}

func (s *Store) ListOrganizations(_ context.Context) ([]entities.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orgs := make([]entities.Organization, 0, len(s.orgsByID))
	for _, org := range s.orgsByID {
		orgs = append(orgs, org)
	}
	return orgs, nil
}

func (s *Store) GetMember(_ context.Context, orgID, userID string) (entities.Member, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.membersByKey[memberKey(orgID, userID)]
	return member, ok, nil
}

func (s *Store) ListMembers(_ context.Context, orgID string) ([]entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]entities.Member, 0)
	for _, member := range s.membersByKey {
		if member.OrgID == orgID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (s *Store) CountMembersWithRole(_ context.Context, orgID string, role access.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, member := range s.membersByKey {
		if member.OrgID == orgID && member.Role == role {
			count++
		}
	}
	return count, nil
}

func (s *Store) AddMember(_ context.Context, member entities.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey(member.OrgID, member.UserID)
	if _, exists := s.membersByKey[key]; exists {
		return domainerrors.ErrMemberExists
	}
	s.membersByKey[key] = member
	return nil
}

func (s *Store) UpdateMemberRole(_ context.Context, orgID, userID string, role access.Role, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey(orgID, userID)
	member, ok := s.membersByKey[key]
	if !ok {
		return domainerrors.ErrMemberNotFound
	}
	member.Role = role
	member.UpdatedAt = now
	s.membersByKey[key] = member
	return nil
}

func (s *Store) RemoveMember(_ context.Context, orgID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey(orgID, userID)
	if _, ok := s.membersByKey[key]; !ok {
		return domainerrors.ErrMemberNotFound
	}
	delete(s.membersByKey, key)
	return nil
}

func (s *Store) ListMembershipsForUser(_ context.Context, userID string) ([]entities.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]entities.Member, 0)
	for _, member := range s.membersByKey {
		if member.UserID == userID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (s *Store) FindUserByHandle(_ context.Context, handle string) (ports.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userIDByHandl[strings.ToLower(strings.TrimSpace(handle))]
	if !ok {
		return ports.User{}, false, nil
	}
	return s.usersByID[id], true, nil
}

func (s *Store) FindUserByID(_ context.Context, userID string) (ports.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[userID]
	return user, ok, nil
}

func (s *Store) Put(_ context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[path] = append([]byte(nil), data...)
	return path, nil
}

func (s *Store) Delete(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, handle)
	return nil
}

func (s *Store) CountOrganizationApplications(_ context.Context, orgID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appCount[orgID], nil
}

func memberKey(orgID, userID string) string { return orgID + "|" + userID }
