package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-blog-api/internal/config"
	"go-blog-api/internal/database"
	"go-blog-api/internal/handler"
	"go-blog-api/internal/middleware"
	"go-blog-api/internal/repository"
	"go-blog-api/internal/router"
	"go-blog-api/internal/service"
	"go-blog-api/internal/session"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	slog.Info("database ready")

	sessions := session.NewStore(cfg.SessionTTL)
	sessionMW := middleware.NewSessionMiddleware(sessions)

	authService := service.NewAuthService(userRepo, sessions)
	userService := service.NewUserService(userRepo)
	articleService := service.NewArticleService(articleRepo)
	commentService := service.NewCommentService(commentRepo, articleRepo)

	appRouter := router.New(cfg, sessionMW, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Csrf:    handler.NewCsrfHandler(),
		User:    handler.NewUserHandler(userService),
		Article: handler.NewArticleHandler(articleService),
		Comment: handler.NewCommentHandler(commentService),
	})

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go sessions.StartSweeper(sweepCtx, cfg.SessionSweepInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				db.Close()
			},
			func() {
				sweepCancel()
			},
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
