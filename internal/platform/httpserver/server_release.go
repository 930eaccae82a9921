package httpserver

import (
	"errors"
	"net/http"

	relerrors "hangar/contexts/distribution/release-service/domain/errors"
	relports "hangar/contexts/distribution/release-service/ports"
	relhttp "hangar/contexts/distribution/release-service/transport/http"
)

func releaseAppRef(r *http.Request) relports.AppRef {
	owner := resolveOwner(r)
	return relports.AppRef{
		OwnerKind: string(owner.Kind),
		OwnerName: owner.Name,
		AppName:   r.PathValue("app"),
	}
}

func writeReleaseError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, relhttp.ErrorResponse{Code: code, Message: message})
}

func writeReleaseDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relerrors.ErrApplicationNotFound),
		errors.Is(err, relerrors.ErrPackageNotFound),
		errors.Is(err, relerrors.ErrReleaseNotFound),
		errors.Is(err, relerrors.ErrUpgradeNotFound),
		errors.Is(err, relerrors.ErrNoEnabledRelease):
		writeReleaseError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, relerrors.ErrForbidden):
		writeReleaseError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, relerrors.ErrConflict),
		errors.Is(err, relerrors.ErrReleaseEnabled),
		errors.Is(err, relerrors.ErrReleaseSubmitted),
		errors.Is(err, relerrors.ErrSequenceContention):
		writeReleaseError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, relerrors.ErrInvalidRequest),
		errors.Is(err, relerrors.ErrInvalidVersion),
		errors.Is(err, relerrors.ErrEnvironmentUnknown):
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeReleaseError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateRelease(w http.ResponseWriter, r *http.Request) {
	var req relhttp.CreateReleaseRequest
	if !s.decodeJSON(w, r, &req, writeReleaseError) {
		return
	}
	resp, err := s.releases.Handler.CreateReleaseHandler(r.Context(), resolveActor(r), releaseAppRef(r), req)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListReleases(w http.ResponseWriter, r *http.Request) {
	top, skip, ok := resolveWindow(w, r, writeReleaseError)
	if !ok {
		return
	}
	resp, err := s.releases.Handler.ListReleasesHandler(r.Context(), resolveActor(r), releaseAppRef(r), top, skip)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLatestRelease(w http.ResponseWriter, r *http.Request) {
	resp, err := s.releases.Handler.LatestReleaseHandler(r.Context(), resolveActor(r), releaseAppRef(r), r.URL.Query().Get("environment"))
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRelease(w http.ResponseWriter, r *http.Request) {
	releaseNumber, ok := resolveSequence(r, "release_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "release_number must be a positive integer")
		return
	}
	resp, err := s.releases.Handler.GetReleaseHandler(r.Context(), resolveActor(r), releaseAppRef(r), releaseNumber)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateRelease(w http.ResponseWriter, r *http.Request) {
	releaseNumber, ok := resolveSequence(r, "release_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "release_number must be a positive integer")
		return
	}
	var req relhttp.UpdateReleaseRequest
	if !s.decodeJSON(w, r, &req, writeReleaseError) {
		return
	}
	resp, err := s.releases.Handler.UpdateReleaseHandler(r.Context(), resolveActor(r), releaseAppRef(r), releaseNumber, req)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteRelease(w http.ResponseWriter, r *http.Request) {
	releaseNumber, ok := resolveSequence(r, "release_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "release_number must be a positive integer")
		return
	}
	if err := s.releases.Handler.DeleteReleaseHandler(r.Context(), resolveActor(r), releaseAppRef(r), releaseNumber); err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleCreateUpgrade(w http.ResponseWriter, r *http.Request) {
	releaseNumber, ok := resolveSequence(r, "release_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "release_number must be a positive integer")
		return
	}
	var req relhttp.CreateUpgradeRequest
	if !s.decodeJSON(w, r, &req, writeReleaseError) {
		return
	}
	resp, err := s.releases.Handler.CreateUpgradeHandler(r.Context(), resolveActor(r), releaseAppRef(r), releaseNumber, req)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListUpgrades(w http.ResponseWriter, r *http.Request) {
	releaseNumber, ok := resolveSequence(r, "release_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "release_number must be a positive integer")
		return
	}
	top, skip, ok := resolveWindow(w, r, writeReleaseError)
	if !ok {
		return
	}
	resp, err := s.releases.Handler.ListUpgradesHandler(r.Context(), resolveActor(r), releaseAppRef(r), releaseNumber, top, skip)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateUpgrade(w http.ResponseWriter, r *http.Request) {
	releaseNumber, ok := resolveSequence(r, "release_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "release_number must be a positive integer")
		return
	}
	upgradeNumber, ok := resolveSequence(r, "upgrade_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "upgrade_number must be a positive integer")
		return
	}
	var req relhttp.UpdateUpgradeRequest
	if !s.decodeJSON(w, r, &req, writeReleaseError) {
		return
	}
	resp, err := s.releases.Handler.UpdateUpgradeHandler(r.Context(), resolveActor(r), releaseAppRef(r), releaseNumber, upgradeNumber, req)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteUpgrade(w http.ResponseWriter, r *http.Request) {
	releaseNumber, ok := resolveSequence(r, "release_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "release_number must be a positive integer")
		return
	}
	upgradeNumber, ok := resolveSequence(r, "upgrade_number")
	if !ok {
		writeReleaseError(w, http.StatusBadRequest, "invalid_request", "upgrade_number must be a positive integer")
		return
	}
	if err := s.releases.Handler.DeleteUpgradeHandler(r.Context(), resolveActor(r), releaseAppRef(r), releaseNumber, upgradeNumber); err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleCheckUpgrade(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.releases.Handler.CheckUpgradeHandler(
		r.Context(),
		resolveActor(r),
		releaseAppRef(r),
		query.Get("environment"),
		query.Get("version"),
	)
	if err != nil {
		writeReleaseDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
