package application

import (
	"context"
	"errors"
	"testing"

	"hangar/contexts/identity-access/authorization-service/adapters/memory"
	"hangar/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "hangar/contexts/identity-access/authorization-service/domain/errors"
	"hangar/contexts/identity-access/authorization-service/ports"
)

func appRef(owner, name string) ports.ResourceRef {
	return ports.ResourceRef{Kind: entities.KindApplication, OwnerName: owner, Name: name}
}

func TestAuthorizeUnknownResourceIsNotFound(t *testing.T) {
	service := Service{Directory: memory.NewStore()}

	decision, err := service.Authorize(context.Background(), entities.User("u1"), appRef("alice", "missing"), entities.ActionView)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != entities.DecisionNotFound {
		t.Fatalf("expected not found, got %s", decision)
	}
}

func TestAuthorizeViewForMember(t *testing.T) {
	store := memory.NewStore()
	ref := appRef("alice", "calc")
	store.AddResource(ref, "app-1", entities.VisibilityPrivate)
	store.AddMembership(ref, "bob", entities.AppViewer)
	service := Service{Directory: store}

	decision, err := service.Authorize(context.Background(), entities.User("bob"), ref, entities.ActionView)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != entities.DecisionAllow {
		t.Fatalf("member view should be allowed, got %s", decision)
	}

	decision, err = service.Authorize(context.Background(), entities.Anonymous(), ref, entities.ActionView)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != entities.DecisionNotFound {
		t.Fatalf("anonymous view of private app should be not found, got %s", decision)
	}
}

func TestAuthorizeUploadMatrix(t *testing.T) {
	store := memory.NewStore()
	ref := appRef("alice", "calc")
	store.AddResource(ref, "app-1", entities.VisibilityPrivate)
	store.AddMembership(ref, "manager", entities.AppManager)
	store.AddMembership(ref, "viewer", entities.AppViewer)
	service := Service{Directory: store}

	decision, err := service.Authorize(context.Background(), entities.User("manager"), ref, entities.ActionUpload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != entities.DecisionAllow {
		t.Fatalf("manager upload should be allowed, got %s", decision)
	}

	decision, err = service.Authorize(context.Background(), entities.User("viewer"), ref, entities.ActionUpload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision != entities.DecisionForbidden {
		t.Fatalf("viewer upload should be forbidden, got %s", decision)
	}
}

func TestAuthorizeRejectsUnknownKindAndAction(t *testing.T) {
	store := memory.NewStore()
	ref := appRef("alice", "calc")
	store.AddResource(ref, "app-1", entities.VisibilityPublic)
	service := Service{Directory: store}

	if _, err := service.Authorize(context.Background(), entities.User("u1"), ports.ResourceRef{Kind: "team", Name: "x"}, entities.ActionView); !errors.Is(err, domainerrors.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if _, err := service.Authorize(context.Background(), entities.User("u1"), ref, entities.Action("fly")); !errors.Is(err, domainerrors.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}
