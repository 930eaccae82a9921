package ports

import (
	"context"

	"hangar/contexts/identity-access/authorization-service/domain/entities"
)

// ResourceRef names a resource by kind and owner-scoped path. Organizations
// are addressed by name alone; applications by owner namespace plus name,
// where the owner namespace is either an organization name or a username.
type ResourceRef struct {
	Kind      entities.ResourceKind
	OwnerName string
	Name      string
}

// Resource is the directory's view of a guarded resource.
type Resource struct {
	ID         string
	Visibility entities.Visibility
}

// Directory resolves resources and membership rows. The catalog services'
// repositories back this port in the composition root; tests use the memory
// adapter.
type Directory interface {
	FindResource(ctx context.Context, ref ResourceRef) (Resource, bool, error)
	FindMembership(ctx context.Context, ref ResourceRef, userID string) (entities.Role, bool, error)
}
