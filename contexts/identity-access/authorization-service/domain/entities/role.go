package entities

import "strings"

// ResourceKind selects which role hierarchy applies to a resource.
type ResourceKind string

const (
	KindOrganization ResourceKind = "organization"
	KindApplication  ResourceKind = "application"
)

// Role is a rank inside one hierarchy. Lower values outrank higher ones, so
// the top role of every hierarchy is 1.
type Role int

// Organization roles: Admin > Collaborator > Member.
const (
	OrgAdmin        Role = 1
	OrgCollaborator Role = 2
	OrgMember       Role = 3
)

// Application roles: Manager > Developer > Viewer.
const (
	AppManager   Role = 1
	AppDeveloper Role = 2
	AppViewer    Role = 3
)

// AtLeast reports whether the role meets the given minimum rank.
func (r Role) AtLeast(min Role) bool { return r >= 1 && r <= min }

// RoleSet describes one resource kind's hierarchy: its valid ranks and their
// wire spellings, ordered from most to least privileged.
type RoleSet struct {
	Kind  ResourceKind
	Names []string
}

// Top returns the most privileged rank of the hierarchy.
func (RoleSet) Top() Role { return 1 }

func (s RoleSet) Valid(r Role) bool { return int(r) >= 1 && int(r) <= len(s.Names) }

func (s RoleSet) Name(r Role) string {
	if !s.Valid(r) {
		return "unknown"
	}
	return s.Names[int(r)-1]
}

// Parse maps a wire spelling to a rank. The second return is false for
// spellings outside the hierarchy.
func (s RoleSet) Parse(raw string) (Role, bool) {
	raw = strings.TrimSpace(raw)
	for i, name := range s.Names {
		if strings.EqualFold(raw, name) {
			return Role(i + 1), true
		}
	}
	return 0, false
}

// OrganizationRoles and ApplicationRoles are the two hierarchies in the
// system. Both share the decision procedure in domain/services.
var (
	OrganizationRoles = RoleSet{Kind: KindOrganization, Names: []string{"Admin", "Collaborator", "Member"}}
	ApplicationRoles  = RoleSet{Kind: KindApplication, Names: []string{"Manager", "Developer", "Viewer"}}
)

// RolesFor returns the hierarchy for a resource kind.
func RolesFor(kind ResourceKind) (RoleSet, bool) {
	switch kind {
	case KindOrganization:
		return OrganizationRoles, true
	case KindApplication:
		return ApplicationRoles, true
	default:
		return RoleSet{}, false
	}
}
