package application

import (
	"context"
	"log/slog"
	"strings"

	"hangar/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "hangar/contexts/identity-access/authorization-service/domain/errors"
	"hangar/contexts/identity-access/authorization-service/domain/services"
	"hangar/contexts/identity-access/authorization-service/ports"
)

// Service answers authorization questions for the HTTP layer and for the
// other contexts. It holds no state of its own; every decision is computed
// from the directory plus the pure engine in domain/services.
type Service struct {
	Directory ports.Directory
	Logger    *slog.Logger
}

// Authorize resolves the resource and the actor's membership row and runs the
// decision procedure for the requested action. A missing resource yields
// DecisionNotFound, never an error.
func (s Service) Authorize(ctx context.Context, actor entities.Actor, ref ports.ResourceRef, action entities.Action) (entities.Decision, error) {
	if _, ok := entities.RolesFor(ref.Kind); !ok {
		return 0, domainerrors.ErrInvalidKind
	}
	if strings.TrimSpace(ref.Name) == "" {
		return 0, domainerrors.ErrNotFound
	}

	resource, found, err := s.Directory.FindResource(ctx, ref)
	if err != nil {
		return 0, err
	}
	if !found {
		return entities.DecisionNotFound, nil
	}

	membership := services.Membership{}
	if actor.Authenticated() {
		role, held, err := s.Directory.FindMembership(ctx, ref, actor.UserID)
		if err != nil {
			return 0, err
		}
		membership = services.Membership{Held: held, Role: role}
	}

	if action == entities.ActionView {
		return services.DecideView(actor, resource.Visibility, membership), nil
	}

	min, ok := entities.MinimumRole(ref.Kind, action)
	if !ok {
		return 0, domainerrors.ErrInvalidAction
	}

	decision := services.DecideWithRole(actor, resource.Visibility, membership, min)
	if decision != entities.DecisionAllow && s.Logger != nil {
		s.Logger.Debug("authorization denied",
			"kind", string(ref.Kind),
			"resource", ref.Name,
			"action", string(action),
			"decision", decision.String(),
		)
	}
	return decision, nil
}
