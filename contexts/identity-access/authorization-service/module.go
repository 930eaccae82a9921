package authorizationservice

import (
	"log/slog"

	httpadapter "hangar/contexts/identity-access/authorization-service/adapters/http"
	"hangar/contexts/identity-access/authorization-service/adapters/memory"
	"hangar/contexts/identity-access/authorization-service/application"
	"hangar/contexts/identity-access/authorization-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Directory ports.Directory
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Directory: deps.Directory,
		Logger:    deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{Directory: store, Logger: logger})
	module.Store = store
	return module
}
