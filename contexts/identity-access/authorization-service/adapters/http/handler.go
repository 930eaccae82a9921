package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"hangar/contexts/identity-access/authorization-service/application"
	"hangar/contexts/identity-access/authorization-service/domain/entities"
	"hangar/contexts/identity-access/authorization-service/ports"
	httptransport "hangar/contexts/identity-access/authorization-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// CheckAccessHandler runs one access decision. Kind and action arrive as raw
// strings from the query; the engine rejects unknown values.
func (h Handler) CheckAccessHandler(ctx context.Context, actor entities.Actor, kind, ownerName, name, action string) (httptransport.DecisionResponse, error) {
	ref := ports.ResourceRef{
		Kind:      entities.ResourceKind(strings.TrimSpace(kind)),
		OwnerName: strings.TrimSpace(ownerName),
		Name:      strings.TrimSpace(name),
	}
	decision, err := h.Service.Authorize(ctx, actor, ref, entities.Action(strings.TrimSpace(action)))
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return httptransport.DecisionResponse{
		Status: "success",
		Data: httptransport.DecisionDTO{
			Allowed:  decision == entities.DecisionAllow,
			Decision: decision.String(),
		},
	}, nil
}
