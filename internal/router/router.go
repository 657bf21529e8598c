package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/quillhub/quill/backend/internal/handlers"
	"github.com/quillhub/quill/backend/internal/middleware"
	"github.com/quillhub/quill/backend/internal/repositories"
	"github.com/quillhub/quill/backend/internal/serializers"
	"github.com/quillhub/quill/backend/validators"
)

// Deps are the backends the routes run on. Only SQL is required; every
// other field may be left nil.
type Deps struct {
	SQL          *gorm.DB
	Mongo        *mongo.Database
	Cache        handlers.PostCache
	Index        handlers.PostIndex
	FirebaseAuth handlers.TokenVerifier
	RateLimiter  *middleware.IPRateLimiter
	HealthChecks map[string]handlers.Pinger
	JWTSecret    string
	JWTTTL       time.Duration
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.Use(middleware.JWTAuthMiddleware(deps.JWTSecret))
	if deps.RateLimiter != nil {
		e.Use(middleware.RateLimitMiddleware(deps.RateLimiter))
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.SQL)
	postRepo := repositories.NewPostgresPostRepository(deps.SQL)
	answerRepo := repositories.NewPostgresAnswerRepository(deps.SQL)
	tagRepo := repositories.NewPostgresTagRepository(deps.SQL)
	ratingRepo := repositories.NewPostgresRatingRepository(deps.SQL)
	likeRepo := repositories.NewPostgresLikeRepository(deps.SQL)
	activityRepo := activityRepository(deps)

	serializer := serializers.NewSerializer(answerRepo, ratingRepo, likeRepo)

	checks := deps.HealthChecks
	if checks == nil {
		checks = map[string]handlers.Pinger{}
	}
	if _, ok := checks["database"]; !ok {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := deps.SQL.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	healthHandler := handlers.NewHealthHandler(checks)
	e.GET("/health/", healthHandler.HealthCheck)

	authHandler := handlers.NewAuthHandler(userRepo, deps.FirebaseAuth, deps.JWTSecret, deps.JWTTTL)
	authHandler.RegisterAuthRoutes(e.Group("/auth"))

	api := e.Group("")

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, serializer, deps.Cache, deps.Index)
	postHandler.RegisterPostRoutes(api)

	answerHandler := handlers.NewAnswerHandler(answerRepo, postRepo, activityRepo, serializer, deps.Cache)
	answerHandler.RegisterAnswerRoutes(api)

	ratingHandler := handlers.NewRatingHandler(ratingRepo, answerRepo, activityRepo, deps.Cache)
	ratingHandler.RegisterRatingRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeRepo, answerRepo, activityRepo, deps.Cache)
	likeHandler.RegisterLikeRoutes(api)

	tagHandler := handlers.NewTagHandler(tagRepo, deps.Cache)
	tagHandler.RegisterTagRoutes(api)

	activityHandler := handlers.NewActivityHandler(activityRepo)
	activityHandler.RegisterActivityRoutes(api)

	slog.Debug("routes configured", "routes", len(e.Routes()))
}

// activityRepository keeps the action log in MongoDB when it is configured
func activityRepository(deps Deps) repositories.ActivityRepository {
	if deps.Mongo == nil {
		return repositories.NewPostgresActivityRepository(deps.SQL)
	}

	repo := repositories.NewMongoActivityRepository(deps.Mongo)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		slog.Warn("failed to create activity indexes", "error", err)
	}
	return repo
}
