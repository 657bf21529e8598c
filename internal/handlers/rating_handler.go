package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/permissions"
	"github.com/quillhub/quill/backend/internal/repositories"
	"github.com/quillhub/quill/backend/internal/serializers"
	"github.com/quillhub/quill/backend/pkg/cache"
)

const (
	msgRatingExists  = "Rating already exists. Use PATCH method"
	msgRatingMissing = "Rating object does not exist. Use POST method"
)

// RatingHandler serves the set-rating action. Each (user, answer) pair is
// either unrated or rated: POST rates, PATCH replaces the value.
type RatingHandler struct {
	ratingRepository   repositories.RatingRepository
	answerRepository   repositories.AnswerRepository
	activityRepository repositories.ActivityRepository
	cache              PostCache
}

func NewRatingHandler(ratingRepo repositories.RatingRepository, answerRepo repositories.AnswerRepository, activityRepo repositories.ActivityRepository, pc PostCache) *RatingHandler {
	if pc == nil {
		pc = cache.Noop{}
	}
	return &RatingHandler{
		ratingRepository:   ratingRepo,
		answerRepository:   answerRepo,
		activityRepository: activityRepo,
		cache:              pc,
	}
}

// RegisterRatingRoutes registers set-rating under both /post/:id and /answer/:id.
// In both cases :id is the rated answer.
func (h *RatingHandler) RegisterRatingRoutes(g *echo.Group) {
	for _, path := range []string{"/post/:id/set-rating/", "/answer/:id/set-rating/"} {
		g.POST(path, h.SetRating)
		g.PATCH(path, h.SetRating)
	}
}

// SetRating creates (POST) or replaces (PATCH) the actor's rating of an answer
func (h *RatingHandler) SetRating(c echo.Context) error {
	method := c.Request().Method
	actor, err := authorize(c, permissions.Request{Resource: permissions.ResourceAnswer, Action: permissions.ActionSetRating, Method: method})
	if err != nil {
		return err
	}
	answerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	answer, err := loadAnswer(ctx, h.answerRepository, answerID)
	if err != nil {
		return err
	}

	existing, err := h.ratingRepository.GetRating(ctx, actor.UserID, answer.ID)
	if err != nil && !repositories.IsNotFound(err) {
		return err
	}

	var req models.RatingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	switch {
	case method == http.MethodPost && existing == nil:
		rating := &models.Rating{UserID: actor.UserID, AnswerID: answer.ID, Rating: req.Rating}
		if err := h.ratingRepository.CreateRating(ctx, rating); err != nil {
			if repositories.IsDuplicateKey(err) {
				return apperr.Conflict(msgRatingExists)
			}
			return err
		}
		h.afterChange(c, actor, answer, models.ActivityRate, req.Rating)
		return c.JSON(http.StatusCreated, serializers.Rating(rating, actor.Username))

	case method == http.MethodPatch && existing != nil:
		if err := h.ratingRepository.UpdateRatingValue(ctx, existing, req.Rating); err != nil {
			return err
		}
		h.afterChange(c, actor, answer, models.ActivityRateUpdate, req.Rating)
		return c.JSON(http.StatusOK, echo.Map{"detail": "Updated"})

	case method == http.MethodPost:
		return apperr.Conflict(msgRatingExists)

	default:
		return apperr.Conflict(msgRatingMissing)
	}
}

func (h *RatingHandler) afterChange(c echo.Context, actor permissions.Actor, answer *models.Answer, kind string, value int) {
	ctx := c.Request().Context()
	invalidatePost(ctx, h.cache, answer.PostID)
	recordActivity(ctx, h.activityRepository, &models.Activity{
		Type:       kind,
		ActorID:    actor.UserID,
		TargetID:   answer.ID,
		TargetType: "answer",
		Value:      value,
	})
}
