package api

import (
	"errors"
	"fmt"
	"log/slog"

	"pdfbot/types"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		apiErr Error
		valErr ValidationError
	)
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &valErr):
		return c.Status(valErr.Status).JSON(valErr)
	default:
		apiErr = FromError(err)
	}

	if apiErr.Code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "code", apiErr.Code, "err", err)
	} else {
		slog.Info("request rejected", "path", c.Path(), "code", apiErr.Code, "err", err)
	}
	return c.Status(apiErr.Code).JSON(apiErr)
}

// FromError maps pipeline error kinds to HTTP statuses.
func FromError(err error) Error {
	var (
		fiberErr *fiber.Error
		embErr   *types.EmbeddingServiceError
		synErr   *types.SynthesisError
	)
	switch {
	case errors.As(err, &fiberErr):
		return NewError(fiberErr.Code, fiberErr.Message)
	case errors.Is(err, types.ErrEmptyDocument),
		errors.Is(err, types.ErrEmptyQuery),
		errors.Is(err, types.ErrInvalidChunkConfig):
		return NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, types.ErrSessionNotFound):
		return NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &embErr) && embErr.CredentialRejected(),
		errors.As(err, &synErr) && synErr.CredentialRejected():
		return ErrUnAuthorized("credential rejected")
	case errors.Is(err, types.ErrEmbeddingService),
		errors.Is(err, types.ErrSynthesis),
		errors.Is(err, types.ErrEmbeddingModelMismatch):
		return NewError(fiber.StatusBadGateway, err.Error())
	default:
		return NewError(fiber.StatusInternalServerError, "internal server error")
	}
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

// Error implements the Error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrNoFiles() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "no PDF files in field 'files'",
	}
}

func ErrInvalidID() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid id given",
	}
}

func ErrUnAuthorized(msg string) Error {
	return Error{
		Code:    fiber.StatusUnauthorized,
		Message: msg,
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}
