package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"internship-portal/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorCode := "INTERNAL_ERROR"
	field := ""

	var (
		fe         *fiber.Error
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		invalid    *domain.InvalidTransitionError
		missing    *domain.MissingReasonError
		immutable  *domain.ImmutableAfterSubmitError
	)

	switch {
	case errors.As(err, &validation):
		code, errorCode, message, field = fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", validation.Error(), validation.Field
	case errors.As(err, &notFound):
		code, errorCode, message = fiber.StatusNotFound, "NOT_FOUND", notFound.Error()
	case errors.As(err, &invalid):
		code, errorCode, message = fiber.StatusConflict, "INVALID_TRANSITION", invalid.Error()
	case errors.As(err, &missing):
		code, errorCode, message, field = fiber.StatusUnprocessableEntity, "MISSING_REASON", missing.Error(), "reason"
	case errors.As(err, &immutable):
		code, errorCode, message = fiber.StatusConflict, "IMMUTABLE_AFTER_SUBMIT", immutable.Error()
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message

		switch code {
		case fiber.StatusBadRequest:
			errorCode = "BAD_REQUEST"
		case fiber.StatusUnauthorized:
			errorCode = "UNAUTHORIZED"
		case fiber.StatusForbidden:
			errorCode = "FORBIDDEN"
		case fiber.StatusNotFound:
			errorCode = "NOT_FOUND"
		case fiber.StatusConflict:
			errorCode = "CONFLICT"
		case fiber.StatusUnprocessableEntity:
			errorCode = "VALIDATION_ERROR"
		}
	}

	traceID := uuid.New().String()[:8]

	return c.Status(code).JSON(ErrorResponse{
		Code:    errorCode,
		Message: message,
		Field:   field,
		TraceID: traceID,
	})
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}
