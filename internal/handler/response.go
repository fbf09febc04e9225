package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/efreitasn/apife/internal/domain"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// WriteRawJSON writes an already-encoded JSON body.
func WriteRawJSON(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// failureStatus is the status value carried by every error response.
const failureStatus = "FAILURE"

// statusBody describes a failed request.
type statusBody struct {
	Code   int    `json:"code"`
	Info   string `json:"info"`
	Reason string `json:"reason"`
	Status string `json:"status"`
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Status statusBody `json:"status"`
}

// WriteError writes a standard error response with the given HTTP status,
// error code, reason and detail text.
func WriteError(w http.ResponseWriter, httpStatus, code int, reason, info string) {
	WriteJSON(w, httpStatus, errorResponse{
		Status: statusBody{
			Code:   code,
			Info:   info,
			Reason: reason,
			Status: failureStatus,
		},
	})
}

// WriteAPIError writes the response for a categorized gateway failure: the
// category ID is the code, its message the reason, and its HTTP status the
// response status.
func WriteAPIError(w http.ResponseWriter, err *domain.APIError) {
	c := err.Category()
	WriteError(w, c.HTTPStatus(), c.ID(), c.Message(), err.Info)
}

// mapError maps service and domain errors to HTTP responses.
func mapError(w http.ResponseWriter, err error) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		WriteAPIError(w, apiErr)
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		WriteError(w, http.StatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge,
			"request_too_large", "Request body is too large")
		return
	}

	switch {
	case errors.Is(err, domain.ErrDeploymentNotFound):
		WriteError(w, http.StatusNotFound, http.StatusNotFound, "deployment_not_found", err.Error())
	case errors.Is(err, domain.ErrDeploymentAlreadyExists):
		WriteError(w, http.StatusConflict, http.StatusConflict, "deployment_already_exists", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, http.StatusInternalServerError,
			"internal_error", "An unexpected error occurred")
	}
}

// jsonBodyMessage is the detail reported for unusable request bodies.
const jsonBodyMessage = "Request body must be valid JSON with Content-Type: application/json"

// ParseJSON decodes the request body as JSON into v.
// It validates that the Content-Type header is application/json and
// returns an InvalidJSON APIError for missing/incorrect content type or
// malformed JSON. Oversized bodies return the *http.MaxBytesError.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return domain.WrapAPIError(domain.InvalidJSON, jsonBodyMessage, nil)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return maxBytesErr
		}
		return domain.WrapAPIError(domain.InvalidJSON, jsonBodyMessage, err)
	}
	if dec.More() {
		return domain.WrapAPIError(domain.InvalidJSON, jsonBodyMessage, nil)
	}

	return nil
}

// readBody reads the whole request body. Oversized bodies return the
// *http.MaxBytesError set up by the body limit middleware.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, maxBytesErr
		}
		return nil, domain.WrapAPIError(domain.InvalidJSON, "request body could not be read", err)
	}
	return body, nil
}
