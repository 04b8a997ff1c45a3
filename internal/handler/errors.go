package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/menfistoo/purobeach/internal/booking"
)

// errorBody is the JSON shape of every failure answered by the API.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    booking.Kind   `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// statusOf maps an engine error kind to its HTTP status.
func statusOf(kind booking.Kind) int {
	switch kind {
	case booking.KindFurnitureUnavailable, booking.KindDuplicateReservation:
		return http.StatusConflict
	case booking.KindCapacityExceeded, booking.KindInvalidStateTransition:
		return http.StatusUnprocessableEntity
	case booking.KindRestrictionViolation:
		return http.StatusForbidden
	case booking.KindSequenceGenerationFailed:
		return http.StatusServiceUnavailable
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c echo.Context, msg string, details map[string]any) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: errorDetail{Kind: booking.KindValidation, Message: msg, Details: details}})
}

// respondError writes err using the engine's error shape.  Errors that
// are not engine errors are logged and answered with a generic 500.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var be *booking.Error
	if errors.As(err, &be) {
		return c.JSON(statusOf(be.Kind), errorBody{Error: errorDetail{Kind: be.Kind, Message: be.Message, Details: be.Details}})
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]any, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return badRequest(c, "request validation failed", map[string]any{"fields": fields})
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return badRequest(c, "malformed request body", nil)
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, errorBody{Error: errorDetail{Kind: "Internal", Message: "internal error"}})
}
