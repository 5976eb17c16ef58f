package handler

import (
	"errors"
	"net/http"

	"vtz-stock-sync/internal/model"
	"vtz-stock-sync/internal/remote"
	"vtz-stock-sync/internal/service"
	"vtz-stock-sync/pkg/apierror"
	"vtz-stock-sync/pkg/response"
)

// respondError maps domain errors onto structured API errors.
func respondError(w http.ResponseWriter, err error) {
	var validation model.ValidationError
	switch {
	case errors.As(err, &validation):
		response.Error(w, apierror.BadRequest(validation.Error()))
	case errors.Is(err, service.ErrProductNotFound):
		response.Error(w, apierror.NotFound(err.Error()))
	case errors.Is(err, service.ErrInsufficientStock):
		response.Error(w, apierror.Conflict(err.Error()))
	case remote.IsPermissionDenied(err):
		response.Error(w, apierror.Forbidden("Access denied: only administrators can perform this action"))
	case remote.IsAuthExpired(err):
		response.Error(w, apierror.Unauthorized("Session expired, please sign in again"))
	default:
		response.Error(w, apierror.InternalError(err.Error()))
	}
}

// actingUser resolves the audit identity for a request: the X-User header
// when the UI supplies it, otherwise the configured default.
func actingUser(r *http.Request, fallback string) string {
	if user := r.Header.Get("X-User"); user != "" {
		return user
	}
	return fallback
}
