// Package server contains the blog's HTTP handlers and routing.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inkpost/internal/config"
	"inkpost/internal/middleware"
	"inkpost/internal/repository"
	"inkpost/internal/security"
	"inkpost/internal/service"
	"inkpost/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	views          *views.Engine
	session        *middleware.Session
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	likeService    *service.LikeService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	hasher, err := security.NewPasswordHasher(cfg.PasswordScheme)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkpost"),
		views:          views.New(),
		userService:    service.NewUserService(userRepo, hasher),
		postService:    service.NewPostService(postRepo, commentRepo, likeRepo),
		commentService: service.NewCommentService(commentRepo, postRepo),
		likeService:    service.NewLikeService(likeRepo, postRepo),
	}
	s.session = middleware.NewSession(security.NewCookieCodec(cfg.CookieSecret), s.userService, cfg.CookieSecure)
	s.app = s.App()

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "inkpost",
		Views:        s.views,
		ErrorHandler: s.errorHandler,
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))

	app.Use(middleware.TracingMiddleware())

	// Session must resolve before the context middleware copies userID.
	app.Use(s.session.Middleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/blog")
	})

	blog := app.Group("/blog")
	blog.Get("", s.MainPage)
	blog.Get("/about", s.AboutPage)

	blog.Get("/signup", s.SignupForm)
	blog.Post("/signup", s.rateLimit(3, 10*time.Minute, "signup"), s.Signup)
	blog.Get("/login", s.LoginForm)
	blog.Post("/login", s.rateLimit(10, 5*time.Minute, "login"), s.Login)
	blog.Get("/logout", s.Logout)
	blog.Post("/logout", s.Logout)

	// LoginRequired is attached per route; a group-level handler would also
	// guard /blog/login and loop.
	auth := s.LoginRequired()

	blog.Get("/new_post", auth, s.NewPostForm)
	blog.Post("/new_post", auth, s.rateLimit(10, time.Minute, "create_post"), s.CreatePost)
	blog.Get("/edit_post/:id", auth, s.EditPostForm)
	blog.Post("/edit_post/:id", auth, s.UpdatePost)
	blog.Post("/delete_post/:id", auth, s.DeletePost)

	blog.Post("/new_comment", auth, s.rateLimit(20, time.Minute, "create_comment"), s.CreateComment)
	blog.Post("/edit_comment/:id", auth, s.UpdateComment)
	blog.Post("/delete_comment/:id", auth, s.DeleteComment)

	blog.Post("/like/:id", auth, s.LikePost)
	blog.Post("/unlike/:id", auth, s.UnlikePost)

	blog.Get("/my_posts", auth, s.MyPostsPage)
	blog.Get("/liked_posts", auth, s.LikedPostsPage)

	// Generic /:id route must be last
	blog.Get("/:id<int>", s.PostPage)
}

// LoginRequired redirects anonymous requests to the login page.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CurrentUser(c) == nil {
			return c.Redirect("/blog/login")
		}
		return c.Next()
	}
}

func (s *Server) rateLimit(limit int, window time.Duration, name string) fiber.Handler {
	if !s.config.RateLimitEnabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.redis, limit, window, name)
}

// errorHandler renders the error page. Server errors are logged.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong on our side. Please try again."

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}

	c.Status(code)
	if rerr := s.render(c, "error", fiber.Map{"Message": message}); rerr != nil {
		return c.SendString(message)
	}
	return nil
}

// Start starts the server
func (s *Server) Start() error {
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close sql db: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
