package ports

import (
	"context"
	"time"

	"hangar/contexts/app-catalog/organization-service/domain/entities"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// User is the read-only projection of the externally owned identity store.
type User struct {
	UserID string
	Handle string
}

// UserDirectory resolves user handles for member management.
type UserDirectory interface {
	FindUserByHandle(ctx context.Context, handle string) (User, bool, error)
	FindUserByID(ctx context.Context, userID string) (User, bool, error)
}

// BlobStore is the content-addressable artifact store used for icons. The
// platform blob adapters satisfy this interface structurally.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
	Delete(ctx context.Context, handle string) error
}

// ApplicationCensus answers the referential guard for deletion: an
// organization that still owns applications cannot be destroyed.
type ApplicationCensus interface {
	CountOrganizationApplications(ctx context.Context, orgID string) (int, error)
}

// CreateOrganizationInput carries caller-supplied fields for creation.
type CreateOrganizationInput struct {
	Name        string
	DisplayName string
	Description string
	Visibility  access.Visibility
}

// UpdateOrganizationInput carries a partial metadata update. Nil fields keep
// their current values.
type UpdateOrganizationInput struct {
	Name        *string
	DisplayName *string
	Description *string
	Visibility  *access.Visibility
}

// Repository is the write/read boundary for organizations and their
// membership rows. CreateOrganization persists the organization and the
// creator's Admin membership as one atomic unit.
type Repository interface {
	CreateOrganization(ctx context.Context, org entities.Organization, creator entities.Member) error
	GetOrganization(ctx context.Context, name string) (entities.Organization, bool, error)
	GetOrganizationByID(ctx context.Context, orgID string) (entities.Organization, bool, error)
	UpdateOrganization(ctx context.Context, org entities.Organization) error
	DeleteOrganization(ctx context.Context, orgID string) error
	ListOrganizations(ctx context.Context) ([]entities.Organization, error)

	GetMember(ctx context.Context, orgID string, userID string) (entities.Member, bool, error)
	ListMembers(ctx context.Context, orgID string) ([]entities.Member, error)
	CountMembersWithRole(ctx context.Context, orgID string, role access.Role) (int, error)
	AddMember(ctx context.Context, member entities.Member) error
	UpdateMemberRole(ctx context.Context, orgID string, userID string, role access.Role, now time.Time) error
	RemoveMember(ctx context.Context, orgID string, userID string) error
	ListMembershipsForUser(ctx context.Context, userID string) ([]entities.Member, error)
}

// OrganizationView is an organization together with the viewer's role name,
// empty when the viewer holds no membership.
type OrganizationView struct {
	Organization entities.Organization
	Role         string
}

// MemberView pairs a membership row with the user's handle.
type MemberView struct {
	Member entities.Member
	Handle string
}
