package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"channelinvites/internal/delivery/http/helpers"
	"channelinvites/internal/domain"
)

// writeDomainError maps core errors onto the API envelope. Decision races
// (AlreadyResolved) are benign and not logged; code space exhaustion is a
// systemic fault and logged at error level; anything unrecognized is a 500.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var notActive *domain.NotActiveError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidPolicy):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidPolicy, err.Error())
	case errors.Is(err, domain.ErrInvitesDisabled):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeInvitesDisabled, err.Error())
	case errors.As(err, &notActive):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInviteNotActive, string(notActive.Reason))
	case errors.Is(err, domain.ErrAlreadyResolved):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyResolved, err.Error())
	case errors.Is(err, domain.ErrInvalidDecision):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrCodeSpaceExhausted):
		logger.ErrorContext(r.Context(), "invite code space exhausted", "path", r.URL.Path, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
