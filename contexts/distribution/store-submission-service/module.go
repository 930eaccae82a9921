package storesubmissionservice

import (
	"log/slog"
	"net/http"

	httpadapter "hangar/contexts/distribution/store-submission-service/adapters/http"
	"hangar/contexts/distribution/store-submission-service/adapters/memory"
	"hangar/contexts/distribution/store-submission-service/adapters/stores"
	"hangar/contexts/distribution/store-submission-service/application"
	"hangar/contexts/distribution/store-submission-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Catalog    ports.Catalog
	Releases   ports.ReleaseDirectory
	Adapters   ports.AdapterRegistry
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Adapters == nil {
		deps.Adapters = stores.NewRegistry(deps.HTTPClient)
	}
	service := application.Service{
		Repo:     deps.Repository,
		Catalog:  deps.Catalog,
		Releases: deps.Releases,
		Adapters: deps.Adapters,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
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
		Catalog:    store,
		Releases:   store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
