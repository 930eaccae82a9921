package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	applicationservice "hangar/contexts/app-catalog/application-service"
	appports "hangar/contexts/app-catalog/application-service/ports"
	organizationservice "hangar/contexts/app-catalog/organization-service"
	packageservice "hangar/contexts/distribution/package-service"
	releaseservice "hangar/contexts/distribution/release-service"
	storesubmissionservice "hangar/contexts/distribution/store-submission-service"
	authorizationservice "hangar/contexts/identity-access/authorization-service"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "hangar/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	organizations organizationservice.Module
	applications  applicationservice.Module
	packages      packageservice.Module
	releases      releaseservice.Module
	stores        storesubmissionservice.Module
	authorization authorizationservice.Module
}

type Modules struct {
	Organizations organizationservice.Module
	Applications  applicationservice.Module
	Packages      packageservice.Module
	Releases      releaseservice.Module
	Stores        storesubmissionservice.Module
	Authorization authorizationservice.Module
}

func New(modules Modules, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		organizations: modules.Organizations,
		applications:  modules.Applications,
		packages:      modules.Packages,
		releases:      modules.Releases,
		stores:        modules.Stores,
		authorization: modules.Authorization,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for in-process tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/v1/access/check", s.handleCheckAccess)

	s.mux.HandleFunc("POST /api/v1/orgs", s.handleCreateOrganization)
	s.mux.HandleFunc("GET /api/v1/orgs", s.handleListOrganizations)
	s.mux.HandleFunc("GET /api/v1/orgs/{org}", s.handleGetOrganization)
	s.mux.HandleFunc("PATCH /api/v1/orgs/{org}", s.handleUpdateOrganization)
	s.mux.HandleFunc("DELETE /api/v1/orgs/{org}", s.handleDeleteOrganization)
	s.mux.HandleFunc("PUT /api/v1/orgs/{org}/icon", s.handleSetOrganizationIcon)
	s.mux.HandleFunc("DELETE /api/v1/orgs/{org}/icon", s.handleDeleteOrganizationIcon)
	s.mux.HandleFunc("GET /api/v1/orgs/{org}/members", s.handleListOrganizationMembers)
	s.mux.HandleFunc("POST /api/v1/orgs/{org}/members", s.handleAddOrganizationMember)
	s.mux.HandleFunc("PATCH /api/v1/orgs/{org}/members/{handle}", s.handleUpdateOrganizationMember)
	s.mux.HandleFunc("DELETE /api/v1/orgs/{org}/members/{handle}", s.handleRemoveOrganizationMember)

	// Applications live in two namespaces, so every route is registered
	// once per owner kind. The handlers resolve the kind from the path.
	for _, prefix := range []string{"/api/v1/users/{owner}", "/api/v1/orgs/{owner}"} {
		s.mux.HandleFunc("POST "+prefix+"/apps", s.handleCreateApplication)
		s.mux.HandleFunc("GET "+prefix+"/apps", s.handleListApplications)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}", s.handleGetApplication)
		s.mux.HandleFunc("PATCH "+prefix+"/apps/{app}", s.handleUpdateApplication)
		s.mux.HandleFunc("DELETE "+prefix+"/apps/{app}", s.handleDeleteApplication)
		s.mux.HandleFunc("PUT "+prefix+"/apps/{app}/icon", s.handleSetApplicationIcon)
		s.mux.HandleFunc("DELETE "+prefix+"/apps/{app}/icon", s.handleDeleteApplicationIcon)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/deployment_keys", s.handleListDeploymentKeys)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/members", s.handleListApplicationMembers)
		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/members", s.handleAddApplicationMember)
		s.mux.HandleFunc("PATCH "+prefix+"/apps/{app}/members/{handle}", s.handleUpdateApplicationMember)
		s.mux.HandleFunc("DELETE "+prefix+"/apps/{app}/members/{handle}", s.handleRemoveApplicationMember)

		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/packages", s.handleUploadPackage)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/packages", s.handleListPackages)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/packages/{build_number}", s.handleGetPackage)
		s.mux.HandleFunc("PATCH "+prefix+"/apps/{app}/packages/{build_number}", s.handleUpdatePackage)
		s.mux.HandleFunc("DELETE "+prefix+"/apps/{app}/packages/{build_number}", s.handleDeletePackage)

		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/releases", s.handleCreateRelease)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/releases", s.handleListReleases)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/releases/latest", s.handleLatestRelease)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/releases/{release_number}", s.handleGetRelease)
		s.mux.HandleFunc("PATCH "+prefix+"/apps/{app}/releases/{release_number}", s.handleUpdateRelease)
		s.mux.HandleFunc("DELETE "+prefix+"/apps/{app}/releases/{release_number}", s.handleDeleteRelease)
		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/releases/{release_number}/upgrades", s.handleCreateUpgrade)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/releases/{release_number}/upgrades", s.handleListUpgrades)
		s.mux.HandleFunc("PATCH "+prefix+"/apps/{app}/releases/{release_number}/upgrades/{upgrade_number}", s.handleUpdateUpgrade)
		s.mux.HandleFunc("DELETE "+prefix+"/apps/{app}/releases/{release_number}/upgrades/{upgrade_number}", s.handleDeleteUpgrade)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/check_upgrade", s.handleCheckUpgrade)

		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/stores", s.handleCreateStoreApp)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/stores", s.handleListStoreApps)
		s.mux.HandleFunc("PATCH "+prefix+"/apps/{app}/stores/{store_type}", s.handleUpdateStoreApp)
		s.mux.HandleFunc("DELETE "+prefix+"/apps/{app}/stores/{store_type}", s.handleDeleteStoreApp)
		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/stores/{store_type}/refresh_version", s.handleRefreshStoreVersion)
		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/stores/{store_type}/submissions", s.handleSubmitRelease)
		s.mux.HandleFunc("GET "+prefix+"/apps/{app}/stores/{store_type}/submissions", s.handleListSubmissions)
		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/stores/{store_type}/submissions/{submission_id}/poll", s.handlePollSubmission)
		s.mux.HandleFunc("POST "+prefix+"/apps/{app}/stores/{store_type}/submissions/{submission_id}/released", s.handleMarkReleased)
	}
}

// resolveActor reads the authenticated caller. An absent header yields the
// anonymous actor: visibility rules downstream decide what it may see.
func resolveActor(r *http.Request) access.Actor {
	return access.User(r.Header.Get("X-User-Id"))
}

// resolveOwner maps the matched namespace segment back to an owner kind.
func resolveOwner(r *http.Request) appports.OwnerRef {
	kind := appports.OwnerUser
	if strings.HasPrefix(r.URL.Path, "/api/v1/orgs/") {
		kind = appports.OwnerOrganization
	}
	return appports.OwnerRef{Kind: kind, Name: r.PathValue("owner")}
}

// resolveWindow parses the shared top/skip paging parameters. Zero values
// defer to service defaults.
func resolveWindow(w http.ResponseWriter, r *http.Request, write func(http.ResponseWriter, int, string, string)) (int, int, bool) {
	query := r.URL.Query()
	top, skip := 0, 0
	if raw := query.Get("top"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			write(w, http.StatusBadRequest, "invalid_top", "top must be an integer")
			return 0, 0, false
		}
		top = parsed
	}
	if raw := query.Get("skip"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			write(w, http.StatusBadRequest, "invalid_skip", "skip must be an integer")
			return 0, 0, false
		}
		skip = parsed
	}
	return top, skip, true
}

func resolveSequence(r *http.Request, name string) (int, bool) {
	number, err := strconv.Atoi(r.PathValue(name))
	if err != nil || number < 1 {
		return 0, false
	}
	return number, true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, target any, write func(http.ResponseWriter, int, string, string)) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		write(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
