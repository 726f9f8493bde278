package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/modhouse/pkg/errors"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and a user message.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// HTTPStatus maps an error code to a response status.
func HTTPStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDNA, errors.ErrCodeCutConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCatalog:
		return http.StatusUnprocessableEntity
	case errors.ErrCodePrecondition, errors.ErrCodeNoActiveLayout, errors.ErrCodeNoAlternatives:
		return http.StatusConflict
	case errors.ErrCodeLayoutAssembly, errors.ErrCodeGeometryFetch:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, HTTPStatus(err), ErrorBody{Error: ErrorDetail{Code: code, Message: errors.UserMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
