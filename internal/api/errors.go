package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/foyerhq/foyer/internal/apperror"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// successEnvelope is the standard success response shape.
type successEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// errorEnvelope is the standard non-validation error response shape.
type errorEnvelope struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// validationEnvelope carries the full list of field violations.
type validationEnvelope struct {
	Errors []apperror.FieldError `json:"errors"`
}

// writeSuccess writes the success envelope with the given status code.
func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(successEnvelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// writeJSON writes a bare JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the non-validation error envelope.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Status:     http.StatusText(statusCode),
		Message:    message,
		StatusCode: statusCode,
	})
}

// writeValidation writes the 422 validation envelope with every violated
// rule.
func writeValidation(w http.ResponseWriter, fields []apperror.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(validationEnvelope{Errors: fields})
}

// writeAppError is the centralized responder: it translates the error
// taxonomy into HTTP exactly once. Untyped errors become a generic 500;
// their detail goes to the log, never to the client.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		writeValidation(w, appErr.Fields)
	case apperror.KindConflict:
		writeError(w, http.StatusBadRequest, appErr.Message)
	case apperror.KindAuthentication:
		writeError(w, http.StatusUnauthorized, appErr.Message)
	case apperror.KindForbidden:
		writeError(w, http.StatusForbidden, appErr.Message)
	case apperror.KindNotFound:
		writeError(w, http.StatusNotFound, appErr.Message)
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v any) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}
