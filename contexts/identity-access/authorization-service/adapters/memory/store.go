package memory

import (
	"context"
	"strings"
	"sync"

	"hangar/contexts/identity-access/authorization-service/domain/entities"
	"hangar/contexts/identity-access/authorization-service/ports"
)

// Store is an in-memory directory for tests and local runs.
type Store struct {
	mu          sync.RWMutex
	resources   map[string]ports.Resource
	memberships map[string]entities.Role
}

func NewStore() *Store {
	return &Store{
		resources:   make(map[string]ports.Resource),
		memberships: make(map[string]entities.Role),
	}
}

func (s *Store) AddResource(ref ports.ResourceRef, id string, visibility entities.Visibility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[refKey(ref)] = ports.Resource{ID: id, Visibility: visibility}
}

func (s *Store) AddMembership(ref ports.ResourceRef, userID string, role entities.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[refKey(ref)+"|"+userID] = role
}

func (s *Store) FindResource(_ context.Context, ref ports.ResourceRef) (ports.Resource, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resource, ok := s.resources[refKey(ref)]
	return resource, ok, nil
}

func (s *Store) FindMembership(_ context.Context, ref ports.ResourceRef, userID string) (entities.Role, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.memberships[refKey(ref)+"|"+userID]
	return role, ok, nil
}

func refKey(ref ports.ResourceRef) string {
	return strings.Join([]string{string(ref.Kind), ref.OwnerName, ref.Name}, "|")
}
