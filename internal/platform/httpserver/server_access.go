package httpserver

import (
	"errors"
	"net/http"

	autherrors "hangar/contexts/identity-access/authorization-service/domain/errors"
	authhttp "hangar/contexts/identity-access/authorization-service/transport/http"
)

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authhttp.ErrorResponse{Code: code, Message: message})
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, autherrors.ErrInvalidKind),
		errors.Is(err, autherrors.ErrInvalidAction):
		writeAccessError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, autherrors.ErrNotFound):
		writeAccessError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// handleCheckAccess answers a single access question without mutating
// anything. The decision is returned in the body even when it denies, so a
// 200 here never implies the action is allowed.
func (s *Server) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.authorization.Handler.CheckAccessHandler(
		r.Context(),
		resolveActor(r),
		query.Get("kind"),
		query.Get("owner"),
		query.Get("name"),
		query.Get("action"),
	)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
