package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applicationservice "hangar/contexts/app-catalog/application-service"
	organizationservice "hangar/contexts/app-catalog/organization-service"
	packageservice "hangar/contexts/distribution/package-service"
	releaseservice "hangar/contexts/distribution/release-service"
	storesubmissionservice "hangar/contexts/distribution/store-submission-service"
	authorizationservice "hangar/contexts/identity-access/authorization-service"
	access "hangar/contexts/identity-access/authorization-service/domain/entities"
	authports "hangar/contexts/identity-access/authorization-service/ports"
)

func newTestServer(t *testing.T) (*Server, Modules) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	modules := Modules{
		Organizations: organizationservice.NewInMemoryModule(logger),
		Applications:  applicationservice.NewInMemoryModule(logger),
		Packages:      packageservice.NewInMemoryModule(logger),
		Releases:      releaseservice.NewInMemoryModule(logger),
		Stores:        storesubmissionservice.NewInMemoryModule(logger),
		Authorization: authorizationservice.NewInMemoryModule(logger),
	}
	return New(modules, logger, ":0"), modules
}

func doRequest(t *testing.T, server *Server, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestCreateAndFetchOrganization(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/orgs", "user_admin_1",
		`{"name":"acme","display_name":"Acme Corp","visibility":"public"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, server, http.MethodGet, "/api/v1/orgs/acme", "user_admin_1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	data, _ := payload["data"].(map[string]any)
	if data["name"] != "acme" {
		t.Fatalf("data = %v", data)
	}
}

func TestCreateOrganizationRequiresAuthentication(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/orgs", "",
		`{"name":"acme","display_name":"Acme Corp"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestCreateOrganizationRejectsUnknownVisibility(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/orgs", "user_admin_1",
		`{"name":"acme","display_name":"Acme Corp","visibility":"sideways"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMalformedJSONIsRejected(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/orgs", "user_admin_1", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeBody(t, rec)
	if payload["code"] != "invalid_json" {
		t.Fatalf("code = %v", payload["code"])
	}
}

func TestHiddenOrganizationReadsAs404(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/orgs/ghost", "user_admin_1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListOrganizationsRejectsBadPaging(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/v1/orgs?top=many", "user_admin_1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateApplicationInUserNamespace(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/users/owner/apps", "user_owner_1",
		`{"name":"todo","display_name":"Todo","os":"Android","platform":"JavaKotlin"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	data, _ := payload["data"].(map[string]any)
	if data["owner"] != "owner" || data["owner_kind"] != "user" {
		t.Fatalf("data = %v", data)
	}
}

func TestCheckAccessRoute(t *testing.T) {
	server, modules := newTestServer(t)
	modules.Authorization.Store.AddResource(
		authports.ResourceRef{Kind: access.KindOrganization, Name: "acme"},
		"org_1", access.VisibilityPublic,
	)

	rec := doRequest(t, server, http.MethodGet,
		"/api/v1/access/check?kind=organization&name=acme&action=view", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	data, _ := payload["data"].(map[string]any)
	if data["allowed"] != true {
		t.Fatalf("data = %v", data)
	}
}

func TestCheckAccessRejectsUnknownKind(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet,
		"/api/v1/access/check?kind=widget&name=acme&action=view", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
