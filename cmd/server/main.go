package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Wahidu1/projects-tech-foring/internal/config"
	"github.com/Wahidu1/projects-tech-foring/internal/database"
	"github.com/Wahidu1/projects-tech-foring/internal/handlers"
	"github.com/Wahidu1/projects-tech-foring/internal/logger"
	"github.com/Wahidu1/projects-tech-foring/internal/middleware"
	"github.com/Wahidu1/projects-tech-foring/internal/repository"
	"github.com/Wahidu1/projects-tech-foring/internal/services"
	"github.com/Wahidu1/projects-tech-foring/internal/token"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	os.Exit(execute())
}

// execute runs the server and returns the process exit code. Deferred log
// flushing happens before main exits.
func execute() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	zapLogger := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	defer func() {
		_ = zapLogger.Sync()
	}()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Error("server stopped with error", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := utils.GenerateSecret(32)
		if err != nil {
			return err
		}
		secret = generated
		zapLogger.Warn("JWT_SECRET is not set, using an ephemeral secret; tokens will not survive a restart")
	}

	tokens, err := token.NewManager(token.Config{
		Secret:     []byte(secret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		return err
	}

	// Connect to database
	db, err := database.Connect(cfg, zapLogger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Run migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	userService := services.NewUserService(userRepo, services.NewBcryptHasher(cfg.BcryptCost))
	authService := services.NewAuthService(userService, tokens)

	// AI drafting is optional
	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		zapLogger.Info("OPENAI_API_KEY is not set, task generation is disabled")
	}

	if cfg.HasSuperuser() {
		user, created, err := userService.EnsureSuperuser(services.CreateUserInput{
			Username: cfg.SuperuserUsername,
			Email:    cfg.SuperuserEmail,
			Password: cfg.SuperuserPassword,
		})
		if err != nil {
			return err
		}
		if created {
			zapLogger.Info("superuser created", zap.String("username", user.Username))
		}
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.Recovery(zapLogger), middleware.RequestID(), middleware.RequestLogger(zapLogger))

	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		User:    handlers.NewUserHandler(userService),
		Project: handlers.NewProjectHandler(services.NewProjectService(projectRepo, userRepo)),
		Member:  handlers.NewMemberHandler(services.NewMemberService(memberRepo, projectRepo, userRepo)),
		Task:    handlers.NewTaskHandler(services.NewTaskService(taskRepo, projectRepo, userRepo, drafter)),
		Comment: handlers.NewCommentHandler(services.NewCommentService(commentRepo, taskRepo)),
	}, middleware.RequireAuth(authService, zapLogger))

	server := &http.Server{
		Addr:    cfg.Address(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
