package httpserver

import (
	"errors"
	"io"
	"net/http"

	pkgerrors "hangar/contexts/distribution/package-service/domain/errors"
	pkgports "hangar/contexts/distribution/package-service/ports"
	pkghttp "hangar/contexts/distribution/package-service/transport/http"
)

const maxPackageUploadBytes = 512 << 20

func packageAppRef(r *http.Request) pkgports.AppRef {
	owner := resolveOwner(r)
	return pkgports.AppRef{
		OwnerKind: string(owner.Kind),
		OwnerName: owner.Name,
		AppName:   r.PathValue("app"),
	}
}

func writePackageError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, pkghttp.ErrorResponse{Code: code, Message: message})
}

func writePackageDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrApplicationNotFound),
		errors.Is(err, pkgerrors.ErrPackageNotFound):
		writePackageError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, pkgerrors.ErrForbidden):
		writePackageError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, pkgerrors.ErrConflict),
		errors.Is(err, pkgerrors.ErrPackageReleased),
		errors.Is(err, pkgerrors.ErrSequenceContention):
		writePackageError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, pkgerrors.ErrUnsupportedFormat),
		errors.Is(err, pkgerrors.ErrMalformedPackage):
		writePackageError(w, http.StatusUnprocessableEntity, "unprocessable_package", err.Error())
	case errors.Is(err, pkgerrors.ErrInvalidRequest):
		writePackageError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writePackageError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleUploadPackage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPackageUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writePackageError(w, http.StatusBadRequest, "invalid_upload", "multipart form with a package file is required")
		return
	}
	file, header, err := r.FormFile("package")
	if err != nil {
		writePackageError(w, http.StatusBadRequest, "invalid_upload", "package file field is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writePackageError(w, http.StatusBadRequest, "invalid_upload", "package file could not be read")
		return
	}

	resp, err := s.packages.Handler.UploadPackageHandler(
		r.Context(),
		resolveActor(r),
		packageAppRef(r),
		header.Filename,
		data,
		r.FormValue("description"),
		r.FormValue("commit_id"),
	)
	if err != nil {
		writePackageDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	top, skip, ok := resolveWindow(w, r, writePackageError)
	if !ok {
		return
	}
	resp, err := s.packages.Handler.ListPackagesHandler(r.Context(), resolveActor(r), packageAppRef(r), top, skip)
	if err != nil {
		writePackageDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	buildNumber, ok := resolveSequence(r, "build_number")
	if !ok {
		writePackageError(w, http.StatusBadRequest, "invalid_request", "build_number must be a positive integer")
		return
	}
	resp, err := s.packages.Handler.GetPackageHandler(r.Context(), resolveActor(r), packageAppRef(r), buildNumber)
	if err != nil {
		writePackageDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePackage(w http.ResponseWriter, r *http.Request) {
	buildNumber, ok := resolveSequence(r, "build_number")
	if !ok {
		writePackageError(w, http.StatusBadRequest, "invalid_request", "build_number must be a positive integer")
		return
	}
	var req pkghttp.UpdatePackageRequest
	if !s.decodeJSON(w, r, &req, writePackageError) {
		return
	}
	resp, err := s.packages.Handler.UpdatePackageHandler(r.Context(), resolveActor(r), packageAppRef(r), buildNumber, req)
	if err != nil {
		writePackageDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	buildNumber, ok := resolveSequence(r, "build_number")
	if !ok {
		writePackageError(w, http.StatusBadRequest, "invalid_request", "build_number must be a positive integer")
		return
	}
	if err := s.packages.Handler.DeletePackageHandler(r.Context(), resolveActor(r), packageAppRef(r), buildNumber); err != nil {
		writePackageDomainError(w, err)
		return
	}
	writeNoContent(w)
}
