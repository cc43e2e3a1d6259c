package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/roster"
	"github.com/riskibarqy/grid-manager/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "grid-manager"

	internalErrorMessage = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalMappedError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

// errorMappings is checked in order; roster rule violations come before the
// generic invalid input they are usually wrapped in.
var errorMappings = []struct {
	targets []error
	mapped  mappedError
}{
	{
		targets: []error{roster.ErrInvalidRosterSize, roster.ErrExceededBudget, roster.ErrDuplicateEntrant, roster.ErrInvalidEntrantPrice},
		mapped:  mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidRoster", Status: "INVALID_ARGUMENT"},
	},
	{
		targets: []error{usecase.ErrInvalidInput},
		mapped:  mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"},
	},
	{
		targets: []error{usecase.ErrNotFound},
		mapped:  mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"},
	},
	{
		targets: []error{usecase.ErrUnauthorized},
		mapped:  mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"},
	},
	{
		targets: []error{usecase.ErrDependencyUnavailable},
		mapped:  mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"},
	},
	{
		targets: []error{usecase.ErrConfigInvalid},
		mapped:  mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "configInvalid", Status: "FAILED_PRECONDITION"},
	},
	{
		targets: []error{usecase.ErrFeedUnavailable},
		mapped:  mappedError{HTTPStatus: http.StatusBadGateway, Reason: "feedUnavailable", Status: "UNAVAILABLE"},
	},
	{
		targets: []error{usecase.ErrFeedDataMalformed},
		mapped:  mappedError{HTTPStatus: http.StatusBadGateway, Reason: "feedDataMalformed", Status: "DATA_LOSS"},
	},
	{
		targets: []error{usecase.ErrStoreWriteFailed},
		mapped:  mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "storeWriteFailed", Status: "INTERNAL"},
	},
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	message := err.Error()
	if mapped == internalMappedError {
		// Unclassified failures can carry driver or query details.
		message = internalErrorMessage
	}
	writeJSON(ctx, w, mapped.HTTPStatus, errorEnvelope(mapped, message))
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, http.StatusInternalServerError, errorEnvelope(internalMappedError, internalErrorMessage))
}

func errorEnvelope(mapped mappedError, message string) googleResponseEnvelope {
	return googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: message}},
		},
	}
}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		for _, target := range m.targets {
			if errors.Is(err, target) {
				return m.mapped
			}
		}
	}
	return internalMappedError
}
