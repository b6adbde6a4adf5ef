package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chronicle-cms/chronicle/internal/app"
	"github.com/chronicle-cms/chronicle/internal/auth"
	"github.com/chronicle-cms/chronicle/internal/categories"
	"github.com/chronicle-cms/chronicle/internal/keywords"
	"github.com/chronicle-cms/chronicle/internal/observability"
	"github.com/chronicle-cms/chronicle/internal/platform/cache"
	"github.com/chronicle-cms/chronicle/internal/platform/db"
	"github.com/chronicle-cms/chronicle/internal/platform/httpx"
	"github.com/chronicle-cms/chronicle/internal/posts"
	"github.com/chronicle-cms/chronicle/internal/rbac"
	"github.com/chronicle-cms/chronicle/internal/roles"
	"github.com/chronicle-cms/chronicle/internal/shared"
	"github.com/chronicle-cms/chronicle/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "chronicle_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	throttle := httpx.NewThrottle(cfg.ThrottleLimitStrict, cfg.ThrottleLimitNormal, cfg.ThrottleLimitRelaxed, cfg.ThrottleWindow)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, throttle)

	rbacService := rbac.NewService(rbac.NewRepository(dbpool))
	gate := rbac.Middleware{Service: rbacService, Logger: logger}
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, gate)

	usersService := users.NewService(users.NewRepository(dbpool))
	usersHandler := users.NewHandler(logger, usersService, gate, throttle)

	postsService := posts.NewService(posts.NewRepository(dbpool))
	postsHandler := posts.NewHandler(logger, postsService, rbacService, gate, throttle)

	categoriesService := categories.NewService(categories.NewRepository(dbpool))
	categoriesHandler := categories.NewHandler(logger, categoriesService, gate, throttle)

	keywordsService := keywords.NewService(keywords.NewRepository(dbpool))
	keywordsHandler := keywords.NewHandler(logger, keywordsService, gate, throttle)

	rolesService := roles.NewService(roles.NewRepository(dbpool))
	rolesHandler := roles.NewHandler(logger, rolesService, rbacService, gate, throttle)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		PostsHandler:       postsHandler,
		CategoriesHandler:  categoriesHandler,
		KeywordsHandler:    keywordsHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}
