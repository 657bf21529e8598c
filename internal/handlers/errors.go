package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/middleware"
	"github.com/quillhub/quill/backend/internal/permissions"
	"github.com/quillhub/quill/backend/internal/repositories"
)

// ErrorHandler renders every error as {"detail": "..."}. Errors that are
// neither *apperr.Error nor *echo.HTTPError are internal faults and their
// message is not exposed.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "Internal server error"

	var appErr *apperr.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status, msg = appErr.Status, appErr.Message
	case errors.As(err, &httpErr):
		status = httpErr.Code
		msg = fmt.Sprint(httpErr.Message)
	case repositories.IsNotFound(err):
		status, msg = http.StatusNotFound, "Not found."
	default:
		slog.Error("unhandled error",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{"detail": msg})
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

// authorize asks the permission evaluator and turns a denial into the
// matching error: 401 for the anonymous actor, 403 otherwise.
func authorize(c echo.Context, req permissions.Request) (permissions.Actor, error) {
	actor := middleware.ActorFrom(c)
	if permissions.Decide(actor, req) == permissions.Allow {
		return actor, nil
	}
	return actor, denied(actor)
}

func denied(actor permissions.Actor) error {
	if actor.Anonymous() {
		return apperr.Unauthenticated("Authentication credentials were not provided.")
	}
	return apperr.Forbidden("You do not have permission to perform this action.")
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("Not found.")
	}
	return uint(id), nil
}

// bindAndValidate binds the request into req and runs the echo validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Validation("Invalid request payload")
	}
	return c.Validate(req)
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}
