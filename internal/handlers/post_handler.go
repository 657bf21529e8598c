package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/permissions"
	"github.com/quillhub/quill/backend/internal/repositories"
	"github.com/quillhub/quill/backend/internal/serializers"
	"github.com/quillhub/quill/backend/pkg/cache"
	"github.com/quillhub/quill/backend/pkg/search"
)

// PostCache stores serialized post details. cache.RedisCache and cache.Noop implement it.
type PostCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string) error
	Del(ctx context.Context, keys ...string) error
}

// PostIndex is the external full-text index of posts
type PostIndex interface {
	IndexPost(ctx context.Context, doc search.PostDocument) error
	DeletePost(ctx context.Context, id uint) error
	SearchPostIDs(ctx context.Context, q string, size int) ([]uint, error)
}

const maxSearchHits = 1000

func postCacheKey(id uint) string {
	return "post:detail:" + strconv.FormatUint(uint64(id), 10)
}

// invalidatePost drops the cached detail of a post. Failures are logged only.
func invalidatePost(ctx context.Context, pc PostCache, postID uint) {
	if err := pc.Del(ctx, postCacheKey(postID)); err != nil {
		slog.Warn("post cache invalidation failed", "post_id", postID, "error", err)
	}
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	serializer     *serializers.Serializer
	cache          PostCache
	index          PostIndex
}

// NewPostHandler creates a new PostHandler. A nil cache disables caching and
// a nil index makes search run in the relational store.
func NewPostHandler(postRepo repositories.PostRepository, serializer *serializers.Serializer, pc PostCache, index PostIndex) *PostHandler {
	if pc == nil {
		pc = cache.Noop{}
	}
	return &PostHandler{
		postRepository: postRepo,
		serializer:     serializer,
		cache:          pc,
		index:          index,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/post/", h.ListPosts)
	g.POST("/post/", h.CreatePost)
	g.GET("/post/:id/", h.GetPost)
	g.PUT("/post/:id/", h.UpdatePost)
	g.PATCH("/post/:id/", h.UpdatePost)
	g.DELETE("/post/:id/", h.DeletePost)
}

// ListPosts lists posts newest first. ?search= matches title and owner
// username, ?ordering=created_at flips the order, ?skip= and ?limit= page.
func (h *PostHandler) ListPosts(c echo.Context) error {
	ctx := c.Request().Context()

	filter := models.PostFilter{
		Search:    strings.TrimSpace(c.QueryParam("search")),
		Ascending: c.QueryParam("ordering") == "created_at",
		Skip:      queryInt(c, "skip", 0),
		Limit:     queryInt(c, "limit", 0),
	}

	if filter.Search != "" && h.index != nil {
		ids, err := h.index.SearchPostIDs(ctx, filter.Search, maxSearchHits)
		if err != nil {
			slog.Warn("search index unavailable, falling back to database search", "error", err)
		} else {
			if ids == nil {
				ids = []uint{}
			}
			filter.IDs = ids
			filter.Search = ""
		}
	}

	posts, err := h.postRepository.GetPosts(ctx, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, serializers.PostList(posts))
}

// CreatePost creates a post with its tags and carousel images
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor, err := authorize(c, permissions.Request{Resource: permissions.ResourcePost, Action: permissions.ActionCreate})
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = models.PostStatusPublished
	}
	post := &models.Post{
		UserID: actor.UserID,
		Title:  req.Title,
		Image:  req.Image,
		Slug:   newSlug(req.Title),
		Status: status,
	}

	if err := h.postRepository.CreatePost(ctx, post, req.Tags, req.CarouselImg); err != nil {
		if errors.Is(err, repositories.ErrUnknownTag) {
			return apperr.Validation("tag: invalid pk - object does not exist")
		}
		return err
	}

	rep, err := h.detail(ctx, post.ID)
	if err != nil {
		return err
	}
	h.reindex(ctx, rep)
	return c.JSON(http.StatusCreated, rep)
}

// GetPost returns the post with its answers and carousel, served from the
// cache when possible.
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	key := postCacheKey(id)
	if cached, err := h.cache.Get(ctx, key); err == nil {
		return c.JSONBlob(http.StatusOK, []byte(cached))
	} else if !errors.Is(err, cache.ErrMiss) {
		slog.Warn("post cache read failed", "post_id", id, "error", err)
	}

	rep, err := h.detail(ctx, id)
	if err != nil {
		return err
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	if err := h.cache.Set(ctx, key, string(body)); err != nil {
		slog.Warn("post cache write failed", "post_id", id, "error", err)
	}
	return c.JSONBlob(http.StatusOK, body)
}

// UpdatePost serves PUT (title required) and PATCH (any subset of fields)
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.loadPost(ctx, id)
	if err != nil {
		return err
	}

	action := permissions.ActionPartialUpdate
	if c.Request().Method == http.MethodPut {
		action = permissions.ActionUpdate
	}
	if _, err := authorize(c, permissions.Request{Resource: permissions.ResourcePost, Action: action, Owner: post.UserID}); err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if action == permissions.ActionUpdate && req.Title == nil {
		return apperr.Validation("title: this field is required")
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Image != nil {
		post.Image = *req.Image
	}
	if req.Status != nil {
		post.Status = *req.Status
	}

	if err := h.postRepository.UpdatePost(ctx, post, req.Tags); err != nil {
		if errors.Is(err, repositories.ErrUnknownTag) {
			return apperr.Validation("tag: invalid pk - object does not exist")
		}
		return err
	}
	invalidatePost(ctx, h.cache, id)

	rep, err := h.detail(ctx, id)
	if err != nil {
		return err
	}
	h.reindex(ctx, rep)
	return c.JSON(http.StatusOK, rep)
}

// DeletePost deletes the post with its answers, ratings, likes and images
func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	post, err := h.loadPost(ctx, id)
	if err != nil {
		return err
	}
	if _, err := authorize(c, permissions.Request{Resource: permissions.ResourcePost, Action: permissions.ActionDestroy, Owner: post.UserID}); err != nil {
		return err
	}

	if err := h.postRepository.DeletePost(ctx, id); err != nil {
		return err
	}
	invalidatePost(ctx, h.cache, id)
	if h.index != nil {
		if err := h.index.DeletePost(ctx, id); err != nil {
			slog.Warn("search index delete failed", "post_id", id, "error", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandler) loadPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := h.postRepository.GetPostByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperr.NotFound("Post not found")
		}
		return nil, err
	}
	return post, nil
}

func (h *PostHandler) detail(ctx context.Context, id uint) (*serializers.PostRepresentation, error) {
	post, err := h.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return h.serializer.Post(ctx, post)
}

func (h *PostHandler) reindex(ctx context.Context, rep *serializers.PostRepresentation) {
	if h.index == nil {
		return
	}
	doc := search.PostDocument{
		ID:        rep.ID,
		Title:     rep.Title,
		Username:  rep.User,
		CreatedAt: rep.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := h.index.IndexPost(ctx, doc); err != nil {
		slog.Warn("search indexing failed", "post_id", rep.ID, "error", err)
	}
}

// newSlug is the slugified title followed by a short random suffix
func newSlug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if runes := []rune(base); len(runes) > 200 {
		base = strings.TrimSuffix(string(runes[:200]), "-")
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
