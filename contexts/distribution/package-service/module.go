package packageservice

import (
	"log/slog"

	httpadapter "hangar/contexts/distribution/package-service/adapters/http"
	"hangar/contexts/distribution/package-service/adapters/memory"
	"hangar/contexts/distribution/package-service/adapters/parsers"
	"hangar/contexts/distribution/package-service/application"
	"hangar/contexts/distribution/package-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Catalog    ports.Catalog
	Releases   ports.ReleaseCensus
	Blobs      ports.BlobStore
	Parser     ports.Parser
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.Parser == nil {
		deps.Parser = parsers.NewRegistry()
	}
	service := application.Service{
		Repo:     deps.Repository,
		Catalog:  deps.Catalog,
		Releases: deps.Releases,
		Blobs:    deps.Blobs,
		Parser:   deps.Parser,
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
		Blobs:      store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
