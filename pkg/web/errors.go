package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/dukex/flowstudio/pkg/playground"
	"github.com/dukex/flowstudio/pkg/services"
)

var errInvalidJSON = errors.New("invalid JSON format")

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleServiceError maps service layer errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	var runErr *playground.RunError

	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(fiber.StatusBadRequest).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsNotFoundError(err):
		return notFound(c, err.Error())

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(fiber.StatusConflict).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case services.IsGoneError(err):
		problem := problems.NewStatusProblem(fiber.StatusGone).
			WithInstance(c.Path()).
			WithType("session_closed").
			WithDetail(err.Error())

		return c.Status(fiber.StatusGone).JSON(problem)

	case errors.As(err, &runErr):
		problem := problems.NewStatusProblem(fiber.StatusBadGateway).
			WithInstance(c.Path()).
			WithType("playground_run_failed").
			WithDetail(runErr.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
