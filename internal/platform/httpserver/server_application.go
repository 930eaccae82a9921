package httpserver

import (
	"errors"
	"net/http"

	apperrors "hangar/contexts/app-catalog/application-service/domain/errors"
	apphttp "hangar/contexts/app-catalog/application-service/transport/http"
)

func writeApplicationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, apphttp.ErrorResponse{Code: code, Message: message})
}

func writeApplicationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrApplicationNotFound),
		errors.Is(err, apperrors.ErrOwnerNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrMemberNotFound):
		writeApplicationError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		writeApplicationError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrMemberExists),
		errors.Is(err, apperrors.ErrLastManager),
		errors.Is(err, apperrors.ErrOwnerImmutable):
		writeApplicationError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest),
		errors.Is(err, apperrors.ErrInvalidVisibility),
		errors.Is(err, apperrors.ErrInvalidRole),
		errors.Is(err, apperrors.ErrInvalidOwner),
		errors.Is(err, apperrors.ErrEnvironmentUnknown):
		writeApplicationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeApplicationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req apphttp.CreateApplicationRequest
	if !s.decodeJSON(w, r, &req, writeApplicationError) {
		return
	}
	resp, err := s.applications.Handler.CreateApplicationHandler(r.Context(), resolveActor(r), resolveOwner(r), req)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	top, skip, ok := resolveWindow(w, r, writeApplicationError)
	if !ok {
		return
	}
	resp, err := s.applications.Handler.ListApplicationsHandler(r.Context(), resolveActor(r), resolveOwner(r), top, skip)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	resp, err := s.applications.Handler.GetApplicationHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"))
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	var req apphttp.UpdateApplicationRequest
	if !s.decodeJSON(w, r, &req, writeApplicationError) {
		return
	}
	resp, err := s.applications.Handler.UpdateApplicationHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"), req)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := s.applications.Handler.DeleteApplicationHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app")); err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleSetApplicationIcon(w http.ResponseWriter, r *http.Request) {
	data, ext, ok := readIcon(w, r, writeApplicationError)
	if !ok {
		return
	}
	resp, err := s.applications.Handler.SetIconHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"), data, ext)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteApplicationIcon(w http.ResponseWriter, r *http.Request) {
	if err := s.applications.Handler.DeleteIconHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app")); err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleListDeploymentKeys(w http.ResponseWriter, r *http.Request) {
	resp, err := s.applications.Handler.ListDeploymentKeysHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"))
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListApplicationMembers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.applications.Handler.ListMembersHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"))
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddApplicationMember(w http.ResponseWriter, r *http.Request) {
	var req apphttp.AddMemberRequest
	if !s.decodeJSON(w, r, &req, writeApplicationError) {
		return
	}
	resp, err := s.applications.Handler.AddMemberHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"), req)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateApplicationMember(w http.ResponseWriter, r *http.Request) {
	var req apphttp.UpdateMemberRoleRequest
	if !s.decodeJSON(w, r, &req, writeApplicationError) {
		return
	}
	resp, err := s.applications.Handler.UpdateMemberRoleHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"), r.PathValue("handle"), req)
	if err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveApplicationMember(w http.ResponseWriter, r *http.Request) {
	if err := s.applications.Handler.RemoveMemberHandler(r.Context(), resolveActor(r), resolveOwner(r), r.PathValue("app"), r.PathValue("handle")); err != nil {
		writeApplicationDomainError(w, err)
		return
	}
	writeNoContent(w)
}
