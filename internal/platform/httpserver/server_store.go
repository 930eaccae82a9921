package httpserver

import (
	"errors"
	"net/http"

	storeerrors "hangar/contexts/distribution/store-submission-service/domain/errors"
	storeports "hangar/contexts/distribution/store-submission-service/ports"
	storehttp "hangar/contexts/distribution/store-submission-service/transport/http"
)

func storeAppRef(r *http.Request) storeports.AppRef {
	owner := resolveOwner(r)
	return storeports.AppRef{
		OwnerKind: string(owner.Kind),
		OwnerName: owner.Name,
		AppName:   r.PathValue("app"),
	}
}

func writeStoreError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, storehttp.ErrorResponse{Code: code, Message: message})
}

func writeStoreDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storeerrors.ErrApplicationNotFound),
		errors.Is(err, storeerrors.ErrReleaseNotFound),
		errors.Is(err, storeerrors.ErrStoreAppNotFound),
		errors.Is(err, storeerrors.ErrSubmissionNotFound):
		writeStoreError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, storeerrors.ErrForbidden):
		writeStoreError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, storeerrors.ErrStoreAppExists),
		errors.Is(err, storeerrors.ErrInvalidTransition),
		errors.Is(err, storeerrors.ErrSubmissionRejected):
		writeStoreError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, storeerrors.ErrInvalidRequest),
		errors.Is(err, storeerrors.ErrInvalidStoreType):
		writeStoreError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, storeerrors.ErrStoreUnsupported):
		writeStoreError(w, http.StatusUnprocessableEntity, "store_unsupported", err.Error())
	case storeerrors.IsTransient(err), errors.Is(err, storeerrors.ErrStoreUnavailable):
		writeStoreError(w, http.StatusBadGateway, "store_unavailable", err.Error())
	default:
		writeStoreError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateStoreApp(w http.ResponseWriter, r *http.Request) {
	var req storehttp.CreateStoreAppRequest
	if !s.decodeJSON(w, r, &req, writeStoreError) {
		return
	}
	resp, err := s.stores.Handler.CreateStoreAppHandler(r.Context(), resolveActor(r), storeAppRef(r), req)
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListStoreApps(w http.ResponseWriter, r *http.Request) {
	resp, err := s.stores.Handler.ListStoreAppsHandler(r.Context(), resolveActor(r), storeAppRef(r))
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateStoreApp(w http.ResponseWriter, r *http.Request) {
	var req storehttp.UpdateStoreAppRequest
	if !s.decodeJSON(w, r, &req, writeStoreError) {
		return
	}
	resp, err := s.stores.Handler.UpdateStoreAppHandler(r.Context(), resolveActor(r), storeAppRef(r), r.PathValue("store_type"), req)
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteStoreApp(w http.ResponseWriter, r *http.Request) {
	if err := s.stores.Handler.DeleteStoreAppHandler(r.Context(), resolveActor(r), storeAppRef(r), r.PathValue("store_type")); err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleRefreshStoreVersion(w http.ResponseWriter, r *http.Request) {
	resp, err := s.stores.Handler.RefreshCurrentVersionHandler(r.Context(), resolveActor(r), storeAppRef(r), r.PathValue("store_type"))
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitRelease(w http.ResponseWriter, r *http.Request) {
	var req storehttp.SubmitReleaseRequest
	if !s.decodeJSON(w, r, &req, writeStoreError) {
		return
	}
	resp, err := s.stores.Handler.SubmitReleaseHandler(r.Context(), resolveActor(r), storeAppRef(r), r.PathValue("store_type"), req)
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.stores.Handler.ListSubmissionsHandler(r.Context(), resolveActor(r), storeAppRef(r), r.PathValue("store_type"))
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePollSubmission(w http.ResponseWriter, r *http.Request) {
	resp, err := s.stores.Handler.PollSubmissionHandler(r.Context(), resolveActor(r), storeAppRef(r), r.PathValue("store_type"), r.PathValue("submission_id"))
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkReleased(w http.ResponseWriter, r *http.Request) {
	resp, err := s.stores.Handler.MarkReleasedHandler(r.Context(), resolveActor(r), storeAppRef(r), r.PathValue("store_type"), r.PathValue("submission_id"))
	if err != nil {
		writeStoreDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
