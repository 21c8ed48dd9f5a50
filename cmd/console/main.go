package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/benirage/console/internal/access"
	"github.com/benirage/console/internal/announcements"
	"github.com/benirage/console/internal/app"
	"github.com/benirage/console/internal/auth"
	"github.com/benirage/console/internal/locale"
	"github.com/benirage/console/internal/notifications"
	"github.com/benirage/console/internal/observability"
	"github.com/benirage/console/internal/platform/cache"
	"github.com/benirage/console/internal/platform/db"
	"github.com/benirage/console/internal/roles"
	"github.com/benirage/console/internal/shared"
	"github.com/benirage/console/internal/submissions"
	"github.com/benirage/console/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "console_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	reviewTrail := shared.NewReviewTrail(pool, logger)

	accessRepo := access.NewRepository(pool)
	accessMiddleware := access.Middleware{Loader: accessRepo, Logger: logger}
	accessHandler := access.NewHandler()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	rolesRepo := roles.NewRepository(pool)
	rolesService := roles.NewService(rolesRepo)
	rolesHandler := roles.NewHandler(logger, rolesService, accessMiddleware)

	mailClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	notificationStore := notifications.NewStore(pool, redisClient, logger)
	dispatcher := notifications.NewDispatcher(notificationStore, jobs.NewMailQueue(mailClient), logger)
	notificationsHandler := notifications.NewHandler(logger, notificationStore, redisClient)

	submissionStore := submissions.NewStore(pool)
	workflow := submissions.NewWorkflow(submissionStore, reviewTrail, auditLogger, dispatcher, logger)
	submissionsHandler := submissions.NewHandler(logger, workflow, accessMiddleware)

	announcementRepo := announcements.NewRepository(pool)
	announcementService := announcements.NewService(
		announcementRepo,
		announcements.NewDismissals(redisClient),
		announcements.NewScheduler(),
		logger,
	)
	defer announcementService.Close()
	announcementsHandler := announcements.NewHandler(logger, announcementService, accessMiddleware)

	localeStore := locale.NewStore(cfg.DefaultLanguage)
	localeHandler := locale.NewHandler(logger, localeStore)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Access:               accessMiddleware,
		AuthHandler:          authHandler,
		AccessHandler:        accessHandler,
		RolesHandler:         rolesHandler,
		SubmissionsHandler:   submissionsHandler,
		NotificationsHandler: notificationsHandler,
		AnnouncementsHandler: announcementsHandler,
		LocaleHandler:        localeHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}
