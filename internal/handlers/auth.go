package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillhub/quill/backend/internal/apperr"
	"github.com/quillhub/quill/backend/internal/middleware"
	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/repositories"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   TokenVerifier
	jwtSecret      string
	jwtTTL         time.Duration
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil, in which
// case firebase login answers 503.
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuth TokenVerifier, jwtSecret string, jwtTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
		jwtTTL:         jwtTTL,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup/", h.Signup)
	g.POST("/signin/", h.SignIn)
	g.POST("/firebase-login/", h.FirebaseLogin)
}

type tokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Signup handles local user registration with username, email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
		return apperr.Validation("A user with that username already exists.")
	} else if !repositories.IsNotFound(err) {
		return err
	}
	if _, err := h.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return apperr.Validation("A user with that email already exists.")
	} else if !repositories.IsNotFound(err) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		if repositories.IsDuplicateKey(err) {
			return apperr.Validation("A user with that username already exists.")
		}
		return err
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn checks the password of a local account and issues a token
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if repositories.IsNotFound(err) {
			return apperr.Unauthenticated("Invalid username or password")
		}
		return err
	}
	if user.Password == "" {
		return apperr.Unauthenticated("Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return apperr.Unauthenticated("Invalid username or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT. Users are
// matched by Firebase UID, then by email, and created on first login.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase login is not configured")
	}
	ctx := c.Request().Context()

	var req FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return apperr.Unauthenticated("Invalid Firebase ID token")
	}
	email, _ := token.Claims["email"].(string)
	uid := token.UID

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
		if email != "" && user.Email != email {
			user.Email = email
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return err
			}
		}
	case repositories.IsNotFound(err):
		user, err = h.linkOrCreateFirebaseUser(ctx, uid, email, token.Claims)
		if err != nil {
			return err
		}
	default:
		return err
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

func (h *AuthHandler) linkOrCreateFirebaseUser(ctx context.Context, uid, email string, claims map[string]interface{}) (*models.User, error) {
	if email != "" {
		user, err := h.userRepository.GetUserByEmail(ctx, email)
		if err == nil {
			user.FirebaseUID = &uid
			if err := h.userRepository.UpdateUser(ctx, user); err != nil {
				return nil, err
			}
			return user, nil
		}
		if !repositories.IsNotFound(err) {
			return nil, err
		}
	}

	username, err := h.freeUsername(ctx, firebaseUsername(uid, email, claims), uid)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Email: email, FirebaseUID: &uid}
	if email == "" {
		user.Email = uid + "@firebase.local"
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// freeUsername returns base, or base with a uid suffix when base is taken.
func (h *AuthHandler) freeUsername(ctx context.Context, base, uid string) (string, error) {
	_, err := h.userRepository.GetUserByUsername(ctx, base)
	if repositories.IsNotFound(err) {
		return base, nil
	}
	if err != nil {
		return "", err
	}
	suffix := uid
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return base + "-" + suffix, nil
}

func firebaseUsername(uid, email string, claims map[string]interface{}) string {
	if name, ok := claims["name"].(string); ok && strings.TrimSpace(name) != "" {
		return strings.Join(strings.Fields(name), "_")
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return uid
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, err := middleware.SignToken(h.jwtSecret, user, h.jwtTTL)
	if err != nil {
		return err
	}
	return c.JSON(status, tokenResponse{Token: token, Username: user.Username})
}
