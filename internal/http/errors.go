package api

import (
	"errors"
	"net/http"

	"songvote/internal/domain/admin"
	"songvote/internal/platform/apperr"
	"songvote/internal/session"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slogLogger.Error("request failed", "error", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr)
}

func mapError(err error) *apperr.AppError {
	switch {
	case err == nil:
		return apperr.ErrInternal
	case errors.Is(err, session.ErrMissingSongID):
		return apperr.ErrMissingSongID.Wrap(err)
	case errors.Is(err, session.ErrMissingDeviceID):
		return apperr.ErrMissingDeviceID.Wrap(err)
	case errors.Is(err, admin.ErrInvalidCredentials):
		return apperr.ErrInvalidCredentials.Wrap(err)
	case errors.Is(err, admin.ErrDisabled):
		return apperr.ErrAdminDisabled.Wrap(err)
	}
	return apperr.FromError(err)
}
