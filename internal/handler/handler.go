package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"product-catalog/internal/middleware"
	"product-catalog/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies accepted by write endpoints.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code. The body is
// encoded before the status line goes out, so a value that cannot be
// encoded still yields a well-formed 500.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "internal server error",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// writeError maps err onto an HTTP status and a standardised error body.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	resp := model.ErrorResponse{
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	}
	status := http.StatusInternalServerError

	var validationErr *model.ValidationError
	var domainErr *model.DomainError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		resp.Error = validationErr.Code()
		resp.Message = validationErr.Error()
		resp.Field = validationErr.Field
	case errors.As(err, &domainErr):
		status = statusForCode(domainErr.Code)
		resp.Error = domainErr.Code
		resp.Message = domainErr.Message
	default:
		resp.Error = model.ErrCodeInternalError
		resp.Message = "internal server error"
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("code", resp.Error).
		Str("correlation_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, resp)
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeProductNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidJSON, model.ErrCodeInvalidProductID:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
