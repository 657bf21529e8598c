package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/middleware"
	"github.com/quillhub/quill/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me/", h.GetProfile)
	g.GET("/users/:username/", h.GetUser)
}

type publicProfile struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ownProfile struct {
	publicProfile
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// GetUser returns the public profile of a user
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperr.NotFound("User profile not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, publicProfile{Username: user.Username, CreatedAt: user.CreatedAt})
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	if actor.Anonymous() {
		return denied(actor)
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), actor.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperr.NotFound("User profile not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, ownProfile{
		publicProfile: publicProfile{Username: user.Username, CreatedAt: user.CreatedAt},
		Email:         user.Email,
		IsAdmin:       user.IsAdmin,
	})
}
