package ports

import (
	"context"
	"time"

	"hangar/contexts/app-catalog/application-service/domain/entities"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OwnerKind discriminates the two application namespaces.
type OwnerKind string

const (
	OwnerUser         OwnerKind = "user"
	OwnerOrganization OwnerKind = "org"
)

// OwnerRef addresses an application namespace by kind plus name: a username
// for personal applications, an organization slug otherwise.
type OwnerRef struct {
	Kind OwnerKind
	Name string
}

// OwnerID is the resolved namespace. Exactly one field is set.
type OwnerID struct {
	UserID string
	OrgID  string
}

// User is the read-only projection of the externally owned identity store.
type User struct {
	UserID string
	Handle string
}

type UserDirectory interface {
	FindUserByHandle(ctx context.Context, handle string) (User, bool, error)
	FindUserByID(ctx context.Context, userID string) (User, bool, error)
}

// Organization is the projection of the owning organization needed for
// namespace resolution and permission derivation.
type Organization struct {
	OrgID      string
	Name       string
	Visibility access.Visibility
}

// OrganizationDirectory is backed by the organization service's repository in
// the composition root.
type OrganizationDirectory interface {
	FindOrganizationByName(ctx context.Context, name string) (Organization, bool, error)
	FindOrganizationMemberRole(ctx context.Context, orgID string, userID string) (access.Role, bool, error)
}

// BlobStore stores application icons.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte) (string, error)
	Delete(ctx context.Context, handle string) error
}

type CreateApplicationInput struct {
	Name        string
	DisplayName string
	Description string
	Visibility  access.Visibility
	OS          entities.OperatingSystem
	Platform    entities.Platform
	ReleaseType entities.ReleaseType
}

// UpdateApplicationInput is a partial metadata update; nil fields keep their
// current values. OS and platform are fixed after creation: packages already
// ingested were parsed against them.
type UpdateApplicationInput struct {
	Name        *string
	DisplayName *string
	Description *string
	Visibility  *access.Visibility
	ReleaseType *entities.ReleaseType
}

// Repository is the write/read boundary for applications, their membership
// rows and deployment keys. CreateApplication persists the application, the
// creator's Manager membership and both deployment keys as one atomic unit.
type Repository interface {
	CreateApplication(ctx context.Context, app entities.Application, creator entities.Member, keys []entities.DeploymentKey) error
	GetApplication(ctx context.Context, owner OwnerID, name string) (entities.Application, bool, error)
	GetApplicationByID(ctx context.Context, appID string) (entities.Application, bool, error)
	UpdateApplication(ctx context.Context, app entities.Application) error
	DeleteApplication(ctx context.Context, appID string) error
	ListApplications(ctx context.Context, owner OwnerID) ([]entities.Application, error)
	CountOrganizationApplications(ctx context.Context, orgID string) (int, error)

	GetMember(ctx context.Context, appID string, userID string) (entities.Member, bool, error)
	ListMembers(ctx context.Context, appID string) ([]entities.Member, error)
	CountMembersWithRole(ctx context.Context, appID string, role access.Role) (int, error)
	AddMember(ctx context.Context, member entities.Member) error
	UpdateMemberRole(ctx context.Context, appID string, userID string, role access.Role, now time.Time) error
	RemoveMember(ctx context.Context, appID string, userID string) error

	ListDeploymentKeys(ctx context.Context, appID string) ([]entities.DeploymentKey, error)
	FindDeploymentKey(ctx context.Context, appID string, environment string) (entities.DeploymentKey, bool, error)
}

// ApplicationView is an application together with the viewer's effective role
// name, empty for non-members.
type ApplicationView struct {
	Application entities.Application
	Role        string
}

type MemberView struct {
	Member entities.Member
	Handle string
}

// Access is the resolved grant handed to the distribution context: the
// application, the actor's effective role and the owner-scoped storage
// prefix for artifact paths.
type Access struct {
	App           entities.Application
	Role          access.Role
	Held          bool
	StoragePrefix string
}
