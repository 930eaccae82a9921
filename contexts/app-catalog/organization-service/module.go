package organizationservice

import (
	"log/slog"

	httpadapter "hangar/contexts/app-catalog/organization-service/adapters/http"
	"hangar/contexts/app-catalog/organization-service/adapters/memory"
	"hangar/contexts/app-catalog/organization-service/application"
	"hangar/contexts/app-catalog/organization-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Users      ports.UserDirectory
	Blobs      ports.BlobStore
	Apps       ports.ApplicationCensus
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Users:  deps.Users,
		Blobs:  deps.Blobs,
		Apps:   deps.Apps,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository: store,
		Users:      store,
		Blobs:      store,
		Apps:       store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
