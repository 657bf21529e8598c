package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/permissions"
	"github.com/quillhub/quill/backend/internal/repositories"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityHandler serves the actor's own action log
type ActivityHandler struct {
	activityRepository repositories.ActivityRepository
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityRepo repositories.ActivityRepository) *ActivityHandler {
	return &ActivityHandler{activityRepository: activityRepo}
}

// RegisterActivityRoutes registers activity routes
func (h *ActivityHandler) RegisterActivityRoutes(g *echo.Group) {
	g.GET("/activity/", h.ListActivity)
}

// ListActivity returns the actor's most recent actions, newest first
func (h *ActivityHandler) ListActivity(c echo.Context) error {
	actor, err := authorize(c, permissions.Request{Resource: permissions.ResourceActivity, Action: permissions.ActionList})
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", defaultActivityLimit)
	if limit == 0 || limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	activities, err := h.activityRepository.GetByActorID(c.Request().Context(), actor.UserID, limit)
	if err != nil {
		return err
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return c.JSON(http.StatusOK, activities)
}

// recordActivity appends to the action log. The log is best effort: a
// failure is logged and never fails the request.
func recordActivity(ctx context.Context, repo repositories.ActivityRepository, activity *models.Activity) {
	if repo == nil {
		return
	}
	if err := repo.Record(ctx, activity); err != nil {
		slog.Warn("failed to record activity",
			"type", activity.Type,
			"actor_id", activity.ActorID,
			"error", err,
		)
	}
}
