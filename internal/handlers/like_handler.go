package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/permissions"
	"github.com/quillhub/quill/backend/internal/repositories"
	"github.com/quillhub/quill/backend/internal/serializers"
	"github.com/quillhub/quill/backend/pkg/cache"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository     repositories.LikeRepository
	answerRepository   repositories.AnswerRepository
	activityRepository repositories.ActivityRepository
	cache              PostCache
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, answerRepo repositories.AnswerRepository, activityRepo repositories.ActivityRepository, pc PostCache) *LikeHandler {
	if pc == nil {
		pc = cache.Noop{}
	}
	return &LikeHandler{
		likeRepository:     likeRepo,
		answerRepository:   answerRepo,
		activityRepository: activityRepo,
		cache:              pc,
	}
}

// RegisterLikeRoutes registers like-related routes. :id is the liked answer.
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	for _, path := range []string{"/post/:id/like/", "/answer/:id/like/"} {
		g.POST(path, h.Like)
		g.DELETE(path, h.Unlike)
	}
	g.GET("/liked/", h.ListLiked)
}

// Like handles liking an answer. The target comes from the path only.
func (h *LikeHandler) Like(c echo.Context) error {
	actor, answer, err := h.target(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	hasLiked, err := h.likeRepository.HasUserLikedAnswer(ctx, answer.ID, actor.UserID)
	if err != nil {
		return err
	}
	if hasLiked {
		return apperr.Conflict("Already liked")
	}

	like := &models.Like{AnswerID: answer.ID, UserID: actor.UserID}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		if repositories.IsDuplicateKey(err) {
			return apperr.Conflict("Already liked")
		}
		return err
	}

	h.afterChange(c, actor, answer, models.ActivityLike)
	return c.JSON(http.StatusCreated, echo.Map{"detail": "Liked"})
}

// Unlike handles removing the actor's like of an answer
func (h *LikeHandler) Unlike(c echo.Context) error {
	actor, answer, err := h.target(c)
	if err != nil {
		return err
	}

	if err := h.likeRepository.DeleteLike(c.Request().Context(), answer.ID, actor.UserID); err != nil {
		if errors.Is(err, repositories.ErrLikeNotFound) {
			return apperr.Conflict("Not liked yet")
		}
		return err
	}

	h.afterChange(c, actor, answer, models.ActivityUnlike)
	return c.JSON(http.StatusOK, echo.Map{"detail": "Unliked"})
}

// ListLiked lists every like of the actor with the liked post
func (h *LikeHandler) ListLiked(c echo.Context) error {
	actor, err := authorize(c, permissions.Request{Resource: permissions.ResourceLiked, Action: permissions.ActionList})
	if err != nil {
		return err
	}

	rows, err := h.likeRepository.GetLikedPostsByUser(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializers.LikedPosts(rows))
}

func (h *LikeHandler) target(c echo.Context) (permissions.Actor, *models.Answer, error) {
	actor, err := authorize(c, permissions.Request{Resource: permissions.ResourceAnswer, Action: permissions.ActionLike, Method: c.Request().Method})
	if err != nil {
		return actor, nil, err
	}
	answerID, err := parseID(c, "id")
	if err != nil {
		return actor, nil, err
	}
	answer, err := loadAnswer(c.Request().Context(), h.answerRepository, answerID)
	if err != nil {
		return actor, nil, err
	}
	return actor, answer, nil
}

func (h *LikeHandler) afterChange(c echo.Context, actor permissions.Actor, answer *models.Answer, kind string) {
	ctx := c.Request().Context()
	invalidatePost(ctx, h.cache, answer.PostID)
	recordActivity(ctx, h.activityRepository, &models.Activity{
		Type:       kind,
		ActorID:    actor.UserID,
		TargetID:   answer.ID,
		TargetType: "answer",
	})
}
