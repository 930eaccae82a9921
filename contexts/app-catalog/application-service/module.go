package applicationservice

import (
	"log/slog"

	httpadapter "hangar/contexts/app-catalog/application-service/adapters/http"
	"hangar/contexts/app-catalog/application-service/adapters/memory"
	"hangar/contexts/app-catalog/application-service/application"
	"hangar/contexts/app-catalog/application-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Users      ports.UserDirectory
	Orgs       ports.OrganizationDirectory
	Blobs      ports.BlobStore
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Users:  deps.Users,
		Orgs:   deps.Orgs,
		Blobs:  deps.Blobs,
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
	store := memory.NewSeededStore()
	module := NewModule(Dependencies{
		Repository: store,
		Users:      store,
		Orgs:       store,
		Blobs:      store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
