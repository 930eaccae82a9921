package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"hangar/contexts/app-catalog/organization-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/organization-service/domain/errors"
	"hangar/contexts/app-catalog/organization-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
	decision "hangar/contexts/identity-access/authorization-service/domain/services"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100
)

// Service implements organization lifecycle and member management. Every
// operation runs the shared authorization engine before touching state.
type Service struct {
	Repo   ports.Repository
	Users  ports.UserDirectory
	Blobs  ports.BlobStore
	Apps   ports.ApplicationCensus
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreateOrganization persists a new organization and enrolls the creator as
// its first Admin in one atomic repository call.
func (s Service) CreateOrganization(ctx context.Context, actor access.Actor, input ports.CreateOrganizationInput) (ports.OrganizationView, error) {
	if !actor.Authenticated() {
		return ports.OrganizationView{}, domainerrors.ErrForbidden
	}
	name := strings.TrimSpace(input.Name)
	if name == "" || strings.TrimSpace(input.DisplayName) == "" {
		return ports.OrganizationView{}, domainerrors.ErrInvalidRequest
	}
	if !input.Visibility.Valid() {
		return ports.OrganizationView{}, domainerrors.ErrInvalidVisibility
	}

	orgID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.OrganizationView{}, err
	}
	now := s.Clock.Now().UTC()
	org := entities.Organization{
		OrgID:       orgID,
		Name:        name,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Description: strings.TrimSpace(input.Description),
		Visibility:  input.Visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	creator := entities.Member{
		OrgID:     orgID,
		UserID:    actor.UserID,
		Role:      access.OrgAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateOrganization(ctx, org, creator); err != nil {
		return ports.OrganizationView{}, err
	}
	s.log().Info("organization created", "org", org.Name, "creator", actor.UserID)
	return ports.OrganizationView{Organization: org, Role: access.OrganizationRoles.Name(creator.Role)}, nil
}

// GetOrganization returns the organization when the actor may view it. The
// viewer's role is included when a membership row exists.
func (s Service) GetOrganization(ctx context.Context, actor access.Actor, name string) (ports.OrganizationView, error) {
	org, membership, err := s.load(ctx, actor, name)
	if err != nil {
		return ports.OrganizationView{}, err
	}
	if decision.DecideView(actor, org.Visibility, membership) != access.DecisionAllow {
		return ports.OrganizationView{}, domainerrors.ErrOrganizationNotFound
	}
	view := ports.OrganizationView{Organization: org}
	if membership.Held {
		view.Role = access.OrganizationRoles.Name(membership.Role)
	}
	return view, nil
}

// ListOrganizations windows the actor's visible set: the union of member
// organizations and tiers the actor's authentication state admits, ordered by
// creation time, each organization at most once.
func (s Service) ListOrganizations(ctx context.Context, actor access.Actor, top, skip int) ([]ports.OrganizationView, error) {
	orgs, err := s.Repo.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	roleByOrg := make(map[string]access.Role)
	if actor.Authenticated() {
		memberships, err := s.Repo.ListMembershipsForUser(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		for _, m := range memberships {
			roleByOrg[m.OrgID] = m.Role
		}
	}

	sort.SliceStable(orgs, func(i, j int) bool { return orgs[i].CreatedAt.Before(orgs[j].CreatedAt) })

	visible := make([]ports.OrganizationView, 0, len(orgs))
	for _, org := range orgs {
		role, held := roleByOrg[org.OrgID]
		membership := decision.Membership{Held: held, Role: role}
		if !decision.VisibleInListing(actor, org.Visibility, membership) {
			continue
		}
		view := ports.OrganizationView{Organization: org}
		if held {
			view.Role = access.OrganizationRoles.Name(role)
		}
		visible = append(visible, view)
	}
	return window(visible, top, skip), nil
}

// UpdateOrganization applies a partial metadata update. Requires Admin.
func (s Service) UpdateOrganization(ctx context.Context, actor access.Actor, name string, input ports.UpdateOrganizationInput) (ports.OrganizationView, error) {
	org, member, err := s.requireRole(ctx, actor, name, access.OrgAdmin)
	if err != nil {
		return ports.OrganizationView{}, err
	}

	if input.Name != nil {
		next := strings.TrimSpace(*input.Name)
		if next == "" {
			return ports.OrganizationView{}, domainerrors.ErrInvalidRequest
		}
		org.Name = next
	}
	if input.DisplayName != nil {
		if strings.TrimSpace(*input.DisplayName) == "" {
			return ports.OrganizationView{}, domainerrors.ErrInvalidRequest
		}
		org.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Description != nil {
		org.Description = strings.TrimSpace(*input.Description)
	}
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return ports.OrganizationView{}, domainerrors.ErrInvalidVisibility
		}
		org.Visibility = *input.Visibility
	}
	org.UpdatedAt = s.Clock.Now().UTC()

	if err := s.Repo.UpdateOrganization(ctx, org); err != nil {
		return ports.OrganizationView{}, err
	}
	return ports.OrganizationView{Organization: org, Role: access.OrganizationRoles.Name(member.Role)}, nil
}

// DeleteOrganization destroys an organization. Requires Admin and an empty
// application namespace.
func (s Service) DeleteOrganization(ctx context.Context, actor access.Actor, name string) error {
	org, _, err := s.requireRole(ctx, actor, name, access.OrgAdmin)
	if err != nil {
		return err
	}
	owned, err := s.Apps.CountOrganizationApplications(ctx, org.OrgID)
	if err != nil {
		return err
	}
	if owned > 0 {
		return domainerrors.ErrOrganizationNotEmpty
	}
	if err := s.Repo.DeleteOrganization(ctx, org.OrgID); err != nil {
		return err
	}
	s.log().Info("organization deleted", "org", org.Name, "actor", actor.UserID)
	return nil
}

// SetIcon stores an icon blob and records its handle. Requires Admin.
func (s Service) SetIcon(ctx context.Context, actor access.Actor, name string, data []byte, ext string) (string, error) {
	org, _, err := s.requireRole(ctx, actor, name, access.OrgAdmin)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", domainerrors.ErrInvalidRequest
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "png"
	}
	handle, err := s.Blobs.Put(ctx, fmt.Sprintf("orgs/%s/icons/icon.%s", org.Name, ext), data)
	if err != nil {
		return "", err
	}
	org.IconPath = handle
	org.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateOrganization(ctx, org); err != nil {
		return "", err
	}
	return handle, nil
}

// DeleteIcon clears the organization icon and removes the blob.
func (s Service) DeleteIcon(ctx context.Context, actor access.Actor, name string) error {
	org, _, err := s.requireRole(ctx, actor, name, access.OrgAdmin)
	if err != nil {
		return err
	}
	if org.IconPath == "" {
		return nil
	}
	handle := org.IconPath
	org.IconPath = ""
	org.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateOrganization(ctx, org); err != nil {
		return err
	}
	return s.Blobs.Delete(ctx, handle)
}

// ListMembers returns membership rows with handles, gated by the view rule.
func (s Service) ListMembers(ctx context.Context, actor access.Actor, name string) ([]ports.MemberView, error) {
	org, membership, err := s.load(ctx, actor, name)
	if err != nil {
		return nil, err
	}
	if decision.DecideView(actor, org.Visibility, membership) != access.DecisionAllow {
		return nil, domainerrors.ErrOrganizationNotFound
	}
	members, err := s.Repo.ListMembers(ctx, org.OrgID)
	if err != nil {
		return nil, err
	}
	views := make([]ports.MemberView, 0, len(members))
	for _, member := range members {
		view := ports.MemberView{Member: member}
		if user, ok, err := s.Users.FindUserByID(ctx, member.UserID); err != nil {
			return nil, err
		} else if ok {
			view.Handle = user.Handle
		}
		views = append(views, view)
	}
	return views, nil
}

// AddMember enrolls a user by handle. Requires Admin; duplicates conflict.
func (s Service) AddMember(ctx context.Context, actor access.Actor, name, handle, roleName string) (ports.MemberView, error) {
	org, _, err := s.requireRole(ctx, actor, name, access.OrgAdmin)
	if err != nil {
		return ports.MemberView{}, err
	}
	role, ok := access.OrganizationRoles.Parse(roleName)
	if !ok {
		return ports.MemberView{}, domainerrors.ErrInvalidRole
	}
	user, ok, err := s.Users.FindUserByHandle(ctx, handle)
	if err != nil {
		return ports.MemberView{}, err
	}
	if !ok {
		return ports.MemberView{}, domainerrors.ErrUserNotFound
	}
	if _, exists, err := s.Repo.GetMember(ctx, org.OrgID, user.UserID); err != nil {
		return ports.MemberView{}, err
	} else if exists {
		return ports.MemberView{}, domainerrors.ErrMemberExists
	}

	now := s.Clock.Now().UTC()
	member := entities.Member{
		OrgID:     org.OrgID,
		UserID:    user.UserID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.AddMember(ctx, member); err != nil {
		return ports.MemberView{}, err
	}
	return ports.MemberView{Member: member, Handle: user.Handle}, nil
}

// UpdateMemberRole changes an existing member's role. Demoting the last
// Admin is rejected no matter who attempts it, the Admin themself included.
func (s Service) UpdateMemberRole(ctx context.Context, actor access.Actor, name, handle, roleName string) (ports.MemberView, error) {
	org, _, err := s.requireRole(ctx, actor, name, access.OrgAdmin)
	if err != nil {
		return ports.MemberView{}, err
	}
	role, ok := access.OrganizationRoles.Parse(roleName)
	if !ok {
		return ports.MemberView{}, domainerrors.ErrInvalidRole
	}
	user, target, err := s.findMember(ctx, org.OrgID, handle)
	if err != nil {
		return ports.MemberView{}, err
	}
	if target.Role == role {
		return ports.MemberView{Member: target, Handle: user.Handle}, nil
	}
	if target.Role == access.OrgAdmin {
		if vacant, err := s.lastAdmin(ctx, org.OrgID); err != nil {
			return ports.MemberView{}, err
		} else if vacant {
			return ports.MemberView{}, domainerrors.ErrLastAdmin
		}
	}
	now := s.Clock.Now().UTC()
	if err := s.Repo.UpdateMemberRole(ctx, org.OrgID, target.UserID, role, now); err != nil {
		return ports.MemberView{}, err
	}
	target.Role = role
	target.UpdatedAt = now
	return ports.MemberView{Member: target, Handle: user.Handle}, nil
}

// RemoveMember deletes a membership row. Removing the last Admin is rejected.
func (s Service) RemoveMember(ctx context.Context, actor access.Actor, name, handle string) error {
	org, _, err := s.requireRole(ctx, actor, name, access.OrgAdmin)
	if err != nil {
		return err
	}
	_, target, err := s.findMember(ctx, org.OrgID, handle)
	if err != nil {
		return err
	}
	if target.Role == access.OrgAdmin {
		if vacant, err := s.lastAdmin(ctx, org.OrgID); err != nil {
			return err
		} else if vacant {
			return domainerrors.ErrLastAdmin
		}
	}
	return s.Repo.RemoveMember(ctx, org.OrgID, target.UserID)
}

func (s Service) load(ctx context.Context, actor access.Actor, name string) (entities.Organization, decision.Membership, error) {
	org, found, err := s.Repo.GetOrganization(ctx, strings.TrimSpace(name))
	if err != nil {
		return entities.Organization{}, decision.Membership{}, err
	}
	if !found {
		return entities.Organization{}, decision.Membership{}, domainerrors.ErrOrganizationNotFound
	}
	membership := decision.Membership{}
	if actor.Authenticated() {
		member, held, err := s.Repo.GetMember(ctx, org.OrgID, actor.UserID)
		if err != nil {
			return entities.Organization{}, decision.Membership{}, err
		}
		membership = decision.Membership{Held: held, Role: member.Role}
	}
	return org, membership, nil
}

func (s Service) requireRole(ctx context.Context, actor access.Actor, name string, min access.Role) (entities.Organization, entities.Member, error) {
	org, membership, err := s.load(ctx, actor, name)
	if err != nil {
		return entities.Organization{}, entities.Member{}, err
	}
	switch decision.DecideWithRole(actor, org.Visibility, membership, min) {
	case access.DecisionAllow:
		return org, entities.Member{OrgID: org.OrgID, UserID: actor.UserID, Role: membership.Role}, nil
	case access.DecisionForbidden:
		return entities.Organization{}, entities.Member{}, domainerrors.ErrForbidden
	default:
		return entities.Organization{}, entities.Member{}, domainerrors.ErrOrganizationNotFound
	}
}

func (s Service) findMember(ctx context.Context, orgID, handle string) (ports.User, entities.Member, error) {
	user, ok, err := s.Users.FindUserByHandle(ctx, handle)
	if err != nil {
		return ports.User{}, entities.Member{}, err
	}
	if !ok {
		return ports.User{}, entities.Member{}, domainerrors.ErrUserNotFound
	}
	member, ok, err := s.Repo.GetMember(ctx, orgID, user.UserID)
	if err != nil {
		return ports.User{}, entities.Member{}, err
	}
	if !ok {
		return ports.User{}, entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return user, member, nil
}

func (s Service) lastAdmin(ctx context.Context, orgID string) (bool, error) {
	count, err := s.Repo.CountMembersWithRole(ctx, orgID, access.OrgAdmin)
	if err != nil {
		return false, err
	}
	return decision.RemovalLeavesTopRoleVacant(access.OrganizationRoles, access.OrgAdmin, count), nil
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
