package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	orgerrors "hangar/contexts/app-catalog/organization-service/domain/errors"
	orghttp "hangar/contexts/app-catalog/organization-service/transport/http"
)

func writeOrganizationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orghttp.ErrorResponse{Code: code, Message: message})
}

func writeOrganizationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orgerrors.ErrOrganizationNotFound),
		errors.Is(err, orgerrors.ErrUserNotFound),
		errors.Is(err, orgerrors.ErrMemberNotFound):
		writeOrganizationError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, orgerrors.ErrForbidden):
		writeOrganizationError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, orgerrors.ErrConflict),
		errors.Is(err, orgerrors.ErrMemberExists),
		errors.Is(err, orgerrors.ErrLastAdmin),
		errors.Is(err, orgerrors.ErrOrganizationNotEmpty):
		writeOrganizationError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, orgerrors.ErrInvalidRequest),
		errors.Is(err, orgerrors.ErrInvalidVisibility),
		errors.Is(err, orgerrors.ErrInvalidRole):
		writeOrganizationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeOrganizationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req orghttp.CreateOrganizationRequest
	if !s.decodeJSON(w, r, &req, writeOrganizationError) {
		return
	}
	resp, err := s.organizations.Handler.CreateOrganizationHandler(r.Context(), resolveActor(r), req)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	top, skip, ok := resolveWindow(w, r, writeOrganizationError)
	if !ok {
		return
	}
	resp, err := s.organizations.Handler.ListOrganizationsHandler(r.Context(), resolveActor(r), top, skip)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	resp, err := s.organizations.Handler.GetOrganizationHandler(r.Context(), resolveActor(r), r.PathValue("org"))
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	var req orghttp.UpdateOrganizationRequest
	if !s.decodeJSON(w, r, &req, writeOrganizationError) {
		return
	}
	resp, err := s.organizations.Handler.UpdateOrganizationHandler(r.Context(), resolveActor(r), r.PathValue("org"), req)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	if err := s.organizations.Handler.DeleteOrganizationHandler(r.Context(), resolveActor(r), r.PathValue("org")); err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeNoContent(w)
}

// readIcon pulls raw image bytes from the request body and derives the
// extension from the file query parameter or the content type.
func readIcon(w http.ResponseWriter, r *http.Request, write func(http.ResponseWriter, int, string, string)) ([]byte, string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil || len(data) == 0 {
		write(w, http.StatusBadRequest, "invalid_icon", "icon body is required")
		return nil, "", false
	}
	ext := strings.TrimPrefix(strings.ToLower(r.URL.Query().Get("ext")), ".")
	if ext == "" {
		switch r.Header.Get("Content-Type") {
		case "image/jpeg":
			ext = "jpg"
		default:
			ext = "png"
		}
	}
	return data, ext, true
}

func (s *Server) handleSetOrganizationIcon(w http.ResponseWriter, r *http.Request) {
	data, ext, ok := readIcon(w, r, writeOrganizationError)
	if !ok {
		return
	}
	resp, err := s.organizations.Handler.SetIconHandler(r.Context(), resolveActor(r), r.PathValue("org"), data, ext)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteOrganizationIcon(w http.ResponseWriter, r *http.Request) {
	if err := s.organizations.Handler.DeleteIconHandler(r.Context(), resolveActor(r), r.PathValue("org")); err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleListOrganizationMembers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.organizations.Handler.ListMembersHandler(r.Context(), resolveActor(r), r.PathValue("org"))
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddOrganizationMember(w http.ResponseWriter, r *http.Request) {
	var req orghttp.AddMemberRequest
	if !s.decodeJSON(w, r, &req, writeOrganizationError) {
		return
	}
	resp, err := s.organizations.Handler.AddMemberHandler(r.Context(), resolveActor(r), r.PathValue("org"), req)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateOrganizationMember(w http.ResponseWriter, r *http.Request) {
	var req orghttp.UpdateMemberRoleRequest
	if !s.decodeJSON(w, r, &req, writeOrganizationError) {
		return
	}
	resp, err := s.organizations.Handler.UpdateMemberRoleHandler(r.Context(), resolveActor(r), r.PathValue("org"), r.PathValue("handle"), req)
	if err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveOrganizationMember(w http.ResponseWriter, r *http.Request) {
	if err := s.organizations.Handler.RemoveMemberHandler(r.Context(), resolveActor(r), r.PathValue("org"), r.PathValue("handle")); err != nil {
		writeOrganizationDomainError(w, err)
		return
	}
	writeNoContent(w)
}
