package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"hangar/contexts/app-catalog/application-service/domain/entities"
	domainerrors "hangar/contexts/app-catalog/application-service/domain/errors"
	"hangar/contexts/app-catalog/application-service/ports"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
	decision "hangar/contexts/identity-access/authorization-service/domain/services"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100
)

// Service implements the application lifecycle: creation with atomic
// deployment-key provisioning, metadata updates, member management and the
// access checks consumed by the distribution context.
//
// Effective roles: a membership row on the application wins; on
// organization-owned applications the owning organization's role maps rank
// for rank (Admin acts as Manager, Collaborator as Developer, Member as
// Viewer) when no application row exists.
type Service struct {
	Repo   ports.Repository
	Users  ports.UserDirectory
	Orgs   ports.OrganizationDirectory
	Blobs  ports.BlobStore
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreateApplication creates an application in the given namespace. Personal
// namespaces accept only their own user; organization namespaces require
// Collaborator or higher. The creator's Manager membership and the staging
// and production deployment keys are persisted with the application in one
// atomic repository call.
func (s Service) CreateApplication(ctx context.Context, actor access.Actor, owner ports.OwnerRef, input ports.CreateApplicationInput) (ports.ApplicationView, error) {
	if !actor.Authenticated() {
		return ports.ApplicationView{}, domainerrors.ErrForbidden
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.DisplayName) == "" {
		return ports.ApplicationView{}, domainerrors.ErrInvalidRequest
	}
	if !input.Visibility.Valid() {
		return ports.ApplicationView{}, domainerrors.ErrInvalidVisibility
	}
	if !input.OS.Valid() || !input.Platform.Valid() || !input.ReleaseType.Valid() {
		return ports.ApplicationView{}, domainerrors.ErrInvalidRequest
	}

	ownerID, err := s.authorizeCreate(ctx, actor, owner)
	if err != nil {
		return ports.ApplicationView{}, err
	}

	appID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return ports.ApplicationView{}, err
	}
	now := s.Clock.Now().UTC()
	app := entities.Application{
		AppID:       appID,
		OwnerUserID: ownerID.UserID,
		OrgID:       ownerID.OrgID,
		Name:        strings.TrimSpace(input.Name),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Description: strings.TrimSpace(input.Description),
		Visibility:  input.Visibility,
		OS:          input.OS,
		Platform:    input.Platform,
		ReleaseType: input.ReleaseType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	creator := entities.Member{
		AppID:     appID,
		UserID:    actor.UserID,
		Role:      access.AppManager,
		CreatedAt: now,
		UpdatedAt: now,
	}

	keys := make([]entities.DeploymentKey, 0, 2)
	for _, environment := range []string{entities.EnvironmentStaging, entities.EnvironmentProduction} {
		key, err := s.IDGen.NewID(ctx)
		if err != nil {
			return ports.ApplicationView{}, err
		}
		keys = append(keys, entities.DeploymentKey{
			AppID:     appID,
			Name:      environment,
			Key:       key,
			CreatedAt: now,
		})
	}

	if err := s.Repo.CreateApplication(ctx, app, creator, keys); err != nil {
		return ports.ApplicationView{}, err
	}
	s.log().Info("application created",
		"app", app.Name,
		"owner_kind", string(owner.Kind),
		"owner", owner.Name,
		"creator", actor.UserID,
	)
	return ports.ApplicationView{Application: app, Role: access.ApplicationRoles.Name(creator.Role)}, nil
}

// GetApplication returns the application when the actor may view it.
func (s Service) GetApplication(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) (ports.ApplicationView, error) {
	app, membership, err := s.load(ctx, actor, owner, name)
	if err != nil {
		return ports.ApplicationView{}, err
	}
	if decision.DecideView(actor, app.Visibility, membership) != access.DecisionAllow {
		return ports.ApplicationView{}, domainerrors.ErrApplicationNotFound
	}
	view := ports.ApplicationView{Application: app}
	if membership.Held {
		view.Role = access.ApplicationRoles.Name(membership.Role)
	}
	return view, nil
}

// ListApplications windows the actor's visible set inside one owner
// namespace, ordered by creation time with no duplicates.
func (s Service) ListApplications(ctx context.Context, actor access.Actor, owner ports.OwnerRef, top, skip int) ([]ports.ApplicationView, error) {
	ownerID, err := s.resolveOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	apps, err := s.Repo.ListApplications(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].CreatedAt.Before(apps[j].CreatedAt) })

	visible := make([]ports.ApplicationView, 0, len(apps))
	for _, app := range apps {
		membership, err := s.membershipFor(ctx, actor, app)
		if err != nil {
			return nil, err
		}
		if !decision.VisibleInListing(actor, app.Visibility, membership) {
			continue
		}
		view := ports.ApplicationView{Application: app}
		if membership.Held {
			view.Role = access.ApplicationRoles.Name(membership.Role)
		}
		visible = append(visible, view)
	}
	return window(visible, top, skip), nil
}

// UpdateApplication applies a partial metadata update. Requires Manager.
func (s Service) UpdateApplication(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string, input ports.UpdateApplicationInput) (ports.ApplicationView, error) {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionModify)
	if err != nil {
		return ports.ApplicationView{}, err
	}
	app := acc.App

	if input.Name != nil {
		next := strings.TrimSpace(*input.Name)
		if next == "" {
			return ports.ApplicationView{}, domainerrors.ErrInvalidRequest
		}
		app.Name = next
	}
	if input.DisplayName != nil {
		if strings.TrimSpace(*input.DisplayName) == "" {
			return ports.ApplicationView{}, domainerrors.ErrInvalidRequest
		}
		app.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Description != nil {
		app.Description = strings.TrimSpace(*input.Description)
	}
	if input.Visibility != nil {
		if !input.Visibility.Valid() {
			return ports.ApplicationView{}, domainerrors.ErrInvalidVisibility
		}
		app.Visibility = *input.Visibility
	}
	if input.ReleaseType != nil {
		if !input.ReleaseType.Valid() {
			return ports.ApplicationView{}, domainerrors.ErrInvalidRequest
		}
		app.ReleaseType = *input.ReleaseType
	}
	app.UpdatedAt = s.Clock.Now().UTC()

	if err := s.Repo.UpdateApplication(ctx, app); err != nil {
		return ports.ApplicationView{}, err
	}
	return ports.ApplicationView{Application: app, Role: access.ApplicationRoles.Name(acc.Role)}, nil
}

// DeleteApplication destroys an application. Requires Manager.
func (s Service) DeleteApplication(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) error {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionDelete)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteApplication(ctx, acc.App.AppID); err != nil {
		return err
	}
	s.log().Info("application deleted", "app", acc.App.Name, "actor", actor.UserID)
	return nil
}

// SetIcon stores an icon blob and records its handle. Requires Manager.
func (s Service) SetIcon(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string, data []byte, ext string) (string, error) {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionModify)
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
	handle, err := s.Blobs.Put(ctx, fmt.Sprintf("%s/icons/icon.%s", acc.StoragePrefix, ext), data)
	if err != nil {
		return "", err
	}
	app := acc.App
	app.IconPath = handle
	app.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateApplication(ctx, app); err != nil {
		return "", err
	}
	return handle, nil
}

// DeleteIcon clears the application icon and removes the blob.
func (s Service) DeleteIcon(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) error {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionModify)
	if err != nil {
		return err
	}
	if acc.App.IconPath == "" {
		return nil
	}
	handle := acc.App.IconPath
	app := acc.App
	app.IconPath = ""
	app.UpdatedAt = s.Clock.Now().UTC()
	if err := s.Repo.UpdateApplication(ctx, app); err != nil {
		return err
	}
	return s.Blobs.Delete(ctx, handle)
}

// AdoptIcon sets the application icon from an ingested package when no icon
// is present yet. One-time; ingestion has already passed the upload check.
func (s Service) AdoptIcon(ctx context.Context, appID string, handle string) error {
	app, found, err := s.Repo.GetApplicationByID(ctx, appID)
	if err != nil {
		return err
	}
	if !found {
		return domainerrors.ErrApplicationNotFound
	}
	if app.IconPath != "" {
		return nil
	}
	app.IconPath = handle
	app.UpdatedAt = s.Clock.Now().UTC()
	return s.Repo.UpdateApplication(ctx, app)
}

// ListDeploymentKeys returns the fixed environment key pair. Keys are
// credentials, so reading them requires upload rights (Developer or higher).
func (s Service) ListDeploymentKeys(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) ([]entities.DeploymentKey, error) {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionUpload)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListDeploymentKeys(ctx, acc.App.AppID)
}

// ListMembers returns application membership rows, gated by the view rule.
func (s Service) ListMembers(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) ([]ports.MemberView, error) {
	app, membership, err := s.load(ctx, actor, owner, name)
	if err != nil {
		return nil, err
	}
	if decision.DecideView(actor, app.Visibility, membership) != access.DecisionAllow {
		return nil, domainerrors.ErrApplicationNotFound
	}
	members, err := s.Repo.ListMembers(ctx, app.AppID)
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

// AddMember enrolls a collaborator by handle. Requires Manager.
func (s Service) AddMember(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name, handle, roleName string) (ports.MemberView, error) {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionManageMembers)
	if err != nil {
		return ports.MemberView{}, err
	}
	role, ok := access.ApplicationRoles.Parse(roleName)
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
	if _, exists, err := s.Repo.GetMember(ctx, acc.App.AppID, user.UserID); err != nil {
		return ports.MemberView{}, err
	} else if exists {
		return ports.MemberView{}, domainerrors.ErrMemberExists
	}

	now := s.Clock.Now().UTC()
	member := entities.Member{
		AppID:     acc.App.AppID,
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

// UpdateMemberRole changes a member's role. The personal owner's Manager row
// is immutable, and demoting the last Manager is rejected regardless of who
// attempts it.
func (s Service) UpdateMemberRole(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name, handle, roleName string) (ports.MemberView, error) {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionManageMembers)
	if err != nil {
		return ports.MemberView{}, err
	}
	role, ok := access.ApplicationRoles.Parse(roleName)
	if !ok {
		return ports.MemberView{}, domainerrors.ErrInvalidRole
	}
	user, target, err := s.findMember(ctx, acc.App.AppID, handle)
	if err != nil {
		return ports.MemberView{}, err
	}
	if target.Role == role {
		return ports.MemberView{Member: target, Handle: user.Handle}, nil
	}
	if acc.App.OwnerUserID != "" && target.UserID == acc.App.OwnerUserID {
		return ports.MemberView{}, domainerrors.ErrOwnerImmutable
	}
	if target.Role == access.AppManager {
		if vacant, err := s.lastManager(ctx, acc.App.AppID); err != nil {
			return ports.MemberView{}, err
		} else if vacant {
			return ports.MemberView{}, domainerrors.ErrLastManager
		}
	}
	now := s.Clock.Now().UTC()
	if err := s.Repo.UpdateMemberRole(ctx, acc.App.AppID, target.UserID, role, now); err != nil {
		return ports.MemberView{}, err
	}
	target.Role = role
	target.UpdatedAt = now
	return ports.MemberView{Member: target, Handle: user.Handle}, nil
}

// RemoveMember deletes a membership row with the same protections as
// UpdateMemberRole.
func (s Service) RemoveMember(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name, handle string) error {
	acc, err := s.CheckAccess(ctx, actor, owner, name, access.ActionManageMembers)
	if err != nil {
		return err
	}
	_, target, err := s.findMember(ctx, acc.App.AppID, handle)
	if err != nil {
		return err
	}
	if acc.App.OwnerUserID != "" && target.UserID == acc.App.OwnerUserID {
		return domainerrors.ErrOwnerImmutable
	}
	if target.Role == access.AppManager {
		if vacant, err := s.lastManager(ctx, acc.App.AppID); err != nil {
			return err
		} else if vacant {
			return domainerrors.ErrLastManager
		}
	}
	return s.Repo.RemoveMember(ctx, acc.App.AppID, target.UserID)
}

// CheckAccess resolves the application and runs the decision procedure for
// the requested action, returning the actor's effective role and the
// owner-scoped storage prefix. This is the gate the distribution context
// calls before every package, release and store operation.
func (s Service) CheckAccess(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string, action access.Action) (ports.Access, error) {
	app, membership, err := s.load(ctx, actor, owner, name)
	if err != nil {
		return ports.Access{}, err
	}

	var result access.Decision
	if action == access.ActionView {
		result = decision.DecideView(actor, app.Visibility, membership)
	} else {
		min, ok := access.MinimumRole(access.KindApplication, action)
		if !ok {
			return ports.Access{}, domainerrors.ErrInvalidRequest
		}
		result = decision.DecideWithRole(actor, app.Visibility, membership, min)
	}

	switch result {
	case access.DecisionAllow:
		return ports.Access{
			App:           app,
			Role:          membership.Role,
			Held:          membership.Held,
			StoragePrefix: storagePrefix(owner, app.Name),
		}, nil
	case access.DecisionForbidden:
		return ports.Access{}, domainerrors.ErrForbidden
	default:
		return ports.Access{}, domainerrors.ErrApplicationNotFound
	}
}

func (s Service) authorizeCreate(ctx context.Context, actor access.Actor, owner ports.OwnerRef) (ports.OwnerID, error) {
	switch owner.Kind {
	case ports.OwnerUser:
		user, ok, err := s.Users.FindUserByHandle(ctx, owner.Name)
		if err != nil {
			return ports.OwnerID{}, err
		}
		if !ok {
			return ports.OwnerID{}, domainerrors.ErrOwnerNotFound
		}
		if user.UserID != actor.UserID {
			return ports.OwnerID{}, domainerrors.ErrForbidden
		}
		return ports.OwnerID{UserID: user.UserID}, nil
	case ports.OwnerOrganization:
		org, ok, err := s.Orgs.FindOrganizationByName(ctx, owner.Name)
		if err != nil {
			return ports.OwnerID{}, err
		}
		if !ok {
			return ports.OwnerID{}, domainerrors.ErrOwnerNotFound
		}
		role, held, err := s.Orgs.FindOrganizationMemberRole(ctx, org.OrgID, actor.UserID)
		if err != nil {
			return ports.OwnerID{}, err
		}
		membership := decision.Membership{Held: held, Role: role}
		switch decision.DecideWithRole(actor, org.Visibility, membership, access.OrgCollaborator) {
		case access.DecisionAllow:
			return ports.OwnerID{OrgID: org.OrgID}, nil
		case access.DecisionForbidden:
			return ports.OwnerID{}, domainerrors.ErrForbidden
		default:
			return ports.OwnerID{}, domainerrors.ErrOwnerNotFound
		}
	default:
		return ports.OwnerID{}, domainerrors.ErrInvalidOwner
	}
}

func (s Service) resolveOwner(ctx context.Context, owner ports.OwnerRef) (ports.OwnerID, error) {
	switch owner.Kind {
	case ports.OwnerUser:
		user, ok, err := s.Users.FindUserByHandle(ctx, owner.Name)
		if err != nil {
			return ports.OwnerID{}, err
		}
		if !ok {
			return ports.OwnerID{}, domainerrors.ErrOwnerNotFound
		}
		return ports.OwnerID{UserID: user.UserID}, nil
	case ports.OwnerOrganization:
		org, ok, err := s.Orgs.FindOrganizationByName(ctx, owner.Name)
		if err != nil {
			return ports.OwnerID{}, err
		}
		if !ok {
			return ports.OwnerID{}, domainerrors.ErrOwnerNotFound
		}
		return ports.OwnerID{OrgID: org.OrgID}, nil
	default:
		return ports.OwnerID{}, domainerrors.ErrInvalidOwner
	}
}

func (s Service) load(ctx context.Context, actor access.Actor, owner ports.OwnerRef, name string) (entities.Application, decision.Membership, error) {
	ownerID, err := s.resolveOwner(ctx, owner)
	if err != nil {
		// Hide missing namespaces the same way missing applications are
		// hidden.
		if err == domainerrors.ErrOwnerNotFound {
			return entities.Application{}, decision.Membership{}, domainerrors.ErrApplicationNotFound
		}
		return entities.Application{}, decision.Membership{}, err
	}
	app, found, err := s.Repo.GetApplication(ctx, ownerID, strings.TrimSpace(name))
	if err != nil {
		return entities.Application{}, decision.Membership{}, err
	}
	if !found {
		return entities.Application{}, decision.Membership{}, domainerrors.ErrApplicationNotFound
	}
	membership, err := s.membershipFor(ctx, actor, app)
	if err != nil {
		return entities.Application{}, decision.Membership{}, err
	}
	return app, membership, nil
}

func (s Service) membershipFor(ctx context.Context, actor access.Actor, app entities.Application) (decision.Membership, error) {
	if !actor.Authenticated() {
		return decision.Membership{}, nil
	}
	member, held, err := s.Repo.GetMember(ctx, app.AppID, actor.UserID)
	if err != nil {
		return decision.Membership{}, err
	}
	if held {
		return decision.Membership{Held: true, Role: member.Role}, nil
	}
	if app.OrgOwned() {
		role, held, err := s.Orgs.FindOrganizationMemberRole(ctx, app.OrgID, actor.UserID)
		if err != nil {
			return decision.Membership{}, err
		}
		if held {
			// Ranks align across the two hierarchies, so the org role maps
			// one-to-one onto the app role order.
			return decision.Membership{Held: true, Role: role}, nil
		}
	}
	return decision.Membership{}, nil
}

func (s Service) findMember(ctx context.Context, appID, handle string) (ports.User, entities.Member, error) {
	user, ok, err := s.Users.FindUserByHandle(ctx, handle)
	if err != nil {
		return ports.User{}, entities.Member{}, err
	}
	if !ok {
		return ports.User{}, entities.Member{}, domainerrors.ErrUserNotFound
	}
	member, ok, err := s.Repo.GetMember(ctx, appID, user.UserID)
	if err != nil {
		return ports.User{}, entities.Member{}, err
	}
	if !ok {
		return ports.User{}, entities.Member{}, domainerrors.ErrMemberNotFound
	}
	return user, member, nil
}

func (s Service) lastManager(ctx context.Context, appID string) (bool, error) {
	count, err := s.Repo.CountMembersWithRole(ctx, appID, access.AppManager)
	if err != nil {
		return false, err
	}
	return decision.RemovalLeavesTopRoleVacant(access.ApplicationRoles, access.AppManager, count), nil
}

func (s Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func storagePrefix(owner ports.OwnerRef, appName string) string {
	if owner.Kind == ports.OwnerOrganization {
		return fmt.Sprintf("orgs/%s/apps/%s", owner.Name, appName)
	}
	return fmt.Sprintf("users/%s/apps/%s", owner.Name, appName)
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
