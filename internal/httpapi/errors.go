package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"tradeboard/internal/chart"
	"tradeboard/internal/forecast"
	"tradeboard/internal/model"
	"tradeboard/internal/stats"
	"tradeboard/internal/view"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: message}
}

// toAPIError maps pipeline errors onto HTTP statuses. Caller mistakes are
// 400; data that cannot produce a result is 422.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, FieldError{Field: fe.Field(), Message: fe.Error()})
		}
		apiErr := newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed")
		apiErr.Details = details
		return apiErr
	}

	switch {
	case errors.Is(err, view.ErrInvalidRange):
		return newAPIError(http.StatusBadRequest, "INVALID_RANGE", err.Error())
	case errors.Is(err, model.ErrUnknownMetric):
		return newAPIError(http.StatusBadRequest, "UNKNOWN_METRIC", err.Error())
	case errors.Is(err, forecast.ErrInvalidHorizon):
		return newAPIError(http.StatusBadRequest, "INVALID_HORIZON", err.Error())
	case errors.Is(err, stats.ErrEmptyDataset):
		return newAPIError(http.StatusUnprocessableEntity, "EMPTY_DATASET", err.Error())
	case errors.Is(err, forecast.ErrDegenerateFit):
		return newAPIError(http.StatusUnprocessableEntity, "DEGENERATE_FIT", err.Error())
	case errors.Is(err, chart.ErrNoData):
		return newAPIError(http.StatusUnprocessableEntity, "NO_DATA", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
