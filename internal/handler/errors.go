package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/sift-profiler/internal/agent"
	"github.com/octobees/sift-profiler/internal/repository"
	"github.com/octobees/sift-profiler/internal/service"
)

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	var validation *service.ValidationError
	var worker *agent.WorkerError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Message
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrNoFieldsToUpdate):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, repository.ErrProfileNotFound):
		return http.StatusNotFound, "profile not found"
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, service.ErrCapacityExhausted):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, agent.ErrAutomationIncomplete),
		errors.Is(err, agent.ErrAutomationOutputInvalid),
		errors.As(err, &worker):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, service.ErrPersistenceFailed):
		return http.StatusInternalServerError, service.ErrPersistenceFailed.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func serviceError(c echo.Context, err error) error {
	status, message := statusFor(err)
	return Error(c, status, message)
}
