package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	applicationservice "hangar/contexts/app-catalog/application-service"
	apppostgres "hangar/contexts/app-catalog/application-service/adapters/postgres"
	organizationservice "hangar/contexts/app-catalog/organization-service"
	orgpostgres "hangar/contexts/app-catalog/organization-service/adapters/postgres"
	packageservice "hangar/contexts/distribution/package-service"
	pkgpostgres "hangar/contexts/distribution/package-service/adapters/postgres"
	releaseservice "hangar/contexts/distribution/release-service"
	relpostgres "hangar/contexts/distribution/release-service/adapters/postgres"
	storesubmissionservice "hangar/contexts/distribution/store-submission-service"
	storepostgres "hangar/contexts/distribution/store-submission-service/adapters/postgres"
	authorizationservice "hangar/contexts/identity-access/authorization-service"
	"hangar/internal/platform/blob"
	"hangar/internal/platform/config"
	"hangar/internal/platform/db"
	"hangar/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	blobs, err := blob.NewFilesystemStore(cfg.BlobRoot)
	if err != nil {
		return nil, err
	}

	orgRepo := orgpostgres.NewRepository(pg.DB, logger)
	appRepo := apppostgres.NewRepository(pg.DB, logger)
	pkgRepo := pkgpostgres.NewRepository(pg.DB, logger)
	relRepo := relpostgres.NewRepository(pg.DB, logger)
	storeRepo := storepostgres.NewRepository(pg.DB, logger)

	authModule := authorizationservice.NewModule(authorizationservice.Dependencies{
		Directory: catalogDirectory{orgs: orgRepo, apps: appRepo},
		Logger:    logger,
	})

	orgModule := organizationservice.NewModule(organizationservice.Dependencies{
		Repository: orgRepo,
		Users:      orgRepo,
		Blobs:      blobs,
		Apps:       appRepo,
		Clock:      orgpostgres.SystemClock{},
		IDGen:      orgpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	appModule := applicationservice.NewModule(applicationservice.Dependencies{
		Repository: appRepo,
		Users:      userDirectory{users: orgRepo},
		Orgs:       organizationDirectory{orgs: orgRepo},
		Blobs:      blobs,
		Clock:      apppostgres.SystemClock{},
		IDGen:      apppostgres.UUIDGenerator{},
		Logger:     logger,
	})

	pkgModule := packageservice.NewModule(packageservice.Dependencies{
		Repository: pkgRepo,
		Catalog:    packageCatalog{apps: appModule.Service},
		Releases:   relRepo,
		Blobs:      blobs,
		Clock:      pkgpostgres.SystemClock{},
		IDGen:      pkgpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	relModule := releaseservice.NewModule(releaseservice.Dependencies{
		Repository:  relRepo,
		Catalog:     releaseCatalog{apps: appModule.Service, keys: appRepo},
		Packages:    packageDirectory{packages: pkgRepo},
		Submissions: storeRepo,
		Clock:       relpostgres.SystemClock{},
		IDGen:       relpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	storeModule := storesubmissionservice.NewModule(storesubmissionservice.Dependencies{
		Repository: storeRepo,
		Catalog:    storeCatalog{apps: appModule.Service},
		Releases:   releaseDirectory{releases: relRepo, packages: pkgRepo},
		Clock:      storepostgres.SystemClock{},
		IDGen:      storepostgres.UUIDGenerator{},
		Logger:     logger,
	})

	server := httpserver.New(httpserver.Modules{
		Organizations: orgModule,
		Applications:  appModule,
		Packages:      pkgModule,
		Releases:      relModule,
		Stores:        storeModule,
		Authorization: authModule,
	}, logger, normalizeAddr(cfg.HTTPPort))

	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
