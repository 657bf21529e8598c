package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/middleware"
	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/permissions"
	"github.com/quillhub/quill/backend/internal/repositories"
	"github.com/quillhub/quill/backend/internal/serializers"
	"github.com/quillhub/quill/backend/pkg/cache"
)

// AnswerHandler handles HTTP requests related to answers
type AnswerHandler struct {
	answerRepository   repositories.AnswerRepository
	postRepository     repositories.PostRepository
	activityRepository repositories.ActivityRepository
	serializer         *serializers.Serializer
	cache              PostCache
}

// NewAnswerHandler creates a new AnswerHandler
func NewAnswerHandler(answerRepo repositories.AnswerRepository, postRepo repositories.PostRepository, activityRepo repositories.ActivityRepository, serializer *serializers.Serializer, pc PostCache) *AnswerHandler {
	if pc == nil {
		pc = cache.Noop{}
	}
	return &AnswerHandler{
		answerRepository:   answerRepo,
		postRepository:     postRepo,
		activityRepository: activityRepo,
		serializer:         serializer,
		cache:              pc,
	}
}

// RegisterAnswerRoutes registers the nested answer action and the standalone answer resource
func (h *AnswerHandler) RegisterAnswerRoutes(g *echo.Group) {
	g.POST("/post/:id/answer/", h.CreateAnswer)
	g.DELETE("/post/:id/answer/", h.DeleteAnswer)
	g.POST("/answer/", h.CreateStandaloneAnswer)
	g.DELETE("/answer/:id/", h.DeleteAnswerByID)
}

// CreateAnswer attaches an answer by the actor to the post in the path
func (h *AnswerHandler) CreateAnswer(c echo.Context) error {
	actor, err := authorize(c, permissions.Request{Resource: permissions.ResourcePost, Action: permissions.ActionAnswer, Method: http.MethodPost})
	if err != nil {
		return err
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateAnswerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.create(c, actor, postID, req.Text)
}

// CreateStandaloneAnswer creates an answer on the post named in the body
func (h *AnswerHandler) CreateStandaloneAnswer(c echo.Context) error {
	actor, err := authorize(c, permissions.Request{Resource: permissions.ResourceAnswer, Action: permissions.ActionCreate})
	if err != nil {
		return err
	}

	var req models.CreateStandaloneAnswerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.create(c, actor, req.Post, req.Text)
}

func (h *AnswerHandler) create(c echo.Context, actor permissions.Actor, postID uint, text string) error {
	ctx := c.Request().Context()

	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		if repositories.IsNotFound(err) {
			return apperr.NotFound("Post not found")
		}
		return err
	}

	answer := &models.Answer{
		PostID: postID,
		UserID: actor.UserID,
		Text:   text,
	}
	if err := h.answerRepository.CreateAnswer(ctx, answer); err != nil {
		return err
	}
	invalidatePost(ctx, h.cache, postID)
	recordActivity(ctx, h.activityRepository, &models.Activity{
		Type:       models.ActivityAnswer,
		ActorID:    actor.UserID,
		TargetID:   postID,
		TargetType: "post",
	})

	rep, err := h.serializer.Answer(ctx, answer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rep)
}

// DeleteAnswer deletes the answer given by answer_id from the post in the path
func (h *AnswerHandler) DeleteAnswer(c echo.Context) error {
	if actor := middleware.ActorFrom(c); actor.Anonymous() {
		return denied(actor)
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.DeleteAnswerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.delete(c, req.AnswerID, postID)
}

// DeleteAnswerByID deletes an answer addressed directly
func (h *AnswerHandler) DeleteAnswerByID(c echo.Context) error {
	if actor := middleware.ActorFrom(c); actor.Anonymous() {
		return denied(actor)
	}
	answerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.delete(c, answerID, 0)
}

// delete removes the answer if the actor wrote it. A non-zero postID must
// match the answer's post.
func (h *AnswerHandler) delete(c echo.Context, answerID, postID uint) error {
	ctx := c.Request().Context()

	answer, err := loadAnswer(ctx, h.answerRepository, answerID)
	if err != nil {
		return err
	}
	if postID != 0 && answer.PostID != postID {
		return apperr.NotFound("Answer not found")
	}

	actor, err := authorize(c, permissions.Request{
		Resource: permissions.ResourceAnswer,
		Action:   permissions.ActionAnswer,
		Method:   http.MethodDelete,
		Owner:    answer.UserID,
	})
	if err != nil {
		return err
	}

	if err := h.answerRepository.DeleteAnswer(ctx, answer.ID); err != nil {
		return err
	}
	invalidatePost(ctx, h.cache, answer.PostID)
	recordActivity(ctx, h.activityRepository, &models.Activity{
		Type:       models.ActivityAnswerDelete,
		ActorID:    actor.UserID,
		TargetID:   answer.PostID,
		TargetType: "post",
	})
	return c.NoContent(http.StatusNoContent)
}

func loadAnswer(ctx context.Context, answers repositories.AnswerRepository, id uint) (*models.Answer, error) {
	answer, err := answers.GetAnswerByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("Answer not found")
		}
		return nil, err
	}
	return answer, nil
}
