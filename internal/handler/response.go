package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bizrecords/internal/middleware"
	"bizrecords/internal/model"
	"bizrecords/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	middleware.WriteJSON(w, status, model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	if apiErr, ok := apierror.As(err); ok {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrTrashItemNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Trash item not found"
	} else if errors.Is(err, model.ErrRestoreInProgress) {
		status = http.StatusConflict
		body.Code = "RESTORE_IN_PROGRESS"
		body.Message = "Restore already in progress"
	} else if errors.Is(err, model.ErrMissingParent) {
		status = http.StatusConflict
		body.Code = "MISSING_PARENT"
		body.Message = "Parent record no longer exists"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrUnsupportedType) {
		status = http.StatusUnprocessableEntity
		body.Code = "UNSUPPORTED_TYPE"
		body.Message = "No restore strategy for this record type"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrDeleteVerification) {
		status = http.StatusInternalServerError
		body.Code = "DELETE_VERIFICATION_FAILED"
		body.Message = "Trash record could not be confirmed removed"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrStorageWrite) {
		status = http.StatusBadGateway
		body.Code = "STORAGE_WRITE_FAILED"
		body.Message = "Storage write failed"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err.Error(), "code", body.Code, "request_id", w.Header().Get(middleware.RequestIDHeader))
	}

	middleware.WriteJSON(w, status, model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
