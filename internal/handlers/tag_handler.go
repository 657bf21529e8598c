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

type TagHandler struct {
	tagRepository repositories.TagRepository
	cache         PostCache
}

func NewTagHandler(tagRepo repositories.TagRepository, pc PostCache) *TagHandler {
	if pc == nil {
		pc = cache.Noop{}
	}
	return &TagHandler{tagRepository: tagRepo, cache: pc}
}

func (h *TagHandler) RegisterTagRoutes(g *echo.Group) {
	g.GET("/tags/", h.ListTags)
	g.POST("/tags/", h.CreateTag)
	g.GET("/tags/:id/", h.GetTag)
	g.DELETE("/tags/:id/", h.DeleteTag)
}

func (h *TagHandler) ListTags(c echo.Context) error {
	tags, err := h.tagRepository.GetTags(c.Request().Context())
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return c.JSON(http.StatusOK, tags)
}

// CreateTag creates a tag whose title is not taken yet
func (h *TagHandler) CreateTag(c echo.Context) error {
	if _, err := authorize(c, permissions.Request{Resource: permissions.ResourceTag, Action: permissions.ActionCreate}); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req models.CreateTagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := serializers.ValidateTag(ctx, h.tagRepository, req.Title); err != nil {
		return err
	}

	tag := &models.Tag{Title: req.Title}
	if err := h.tagRepository.CreateTag(ctx, tag); err != nil {
		if repositories.IsDuplicateKey(err) {
			return apperr.Validation("Tag with this name already exists")
		}
		return err
	}
	return c.JSON(http.StatusCreated, tag)
}

func (h *TagHandler) GetTag(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tag, err := h.tagRepository.GetTagByID(c.Request().Context(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperr.NotFound("Tag not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag is reserved to administrators
func (h *TagHandler) DeleteTag(c echo.Context) error {
	if _, err := authorize(c, permissions.Request{Resource: permissions.ResourceTag, Action: permissions.ActionDestroy}); err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	postIDs, err := h.tagRepository.DeleteTag(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperr.NotFound("Tag not found")
		}
		return err
	}
	for _, postID := range postIDs {
		invalidatePost(ctx, h.cache, postID)
	}
	return c.NoContent(http.StatusNoContent)
}
