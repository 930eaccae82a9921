package releaseservice

import (
	"log/slog"

	httpadapter "hangar/contexts/distribution/release-service/adapters/http"
	"hangar/contexts/distribution/release-service/adapters/memory"
	"hangar/contexts/distribution/release-service/application"
	"hangar/contexts/distribution/release-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Catalog     ports.Catalog
	Packages    ports.PackageDirectory
	Submissions ports.SubmissionCensus
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Catalog:     deps.Catalog,
		Packages:    deps.Packages,
		Submissions: deps.Submissions,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Catalog:     store,
		Packages:    store,
		Submissions: store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
