package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dimitrije/gather-api/internal/config"
	"github.com/dimitrije/gather-api/internal/handlers"
	"github.com/dimitrije/gather-api/internal/metrics"
	"github.com/dimitrije/gather-api/internal/notify"
	"github.com/dimitrije/gather-api/internal/scheduler"
	"github.com/dimitrije/gather-api/internal/server"
	"github.com/dimitrije/gather-api/internal/services"
	"github.com/dimitrije/gather-api/internal/sse"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, notification workers and status sweeper",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on startup")
}

func newQueue(ctx context.Context, cfg *config.Config) (notify.Queue, error) {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS_ADDR not set, using in-process notification queue")
		return notify.NewMemoryQueue(cfg.Notify.BufferSize), nil
	}
	return notify.NewRedisQueue(ctx, notify.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Key:      cfg.Redis.Key,
	})
}

func serve(ctx context.Context) error {
	cfg, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	hub := sse.NewHub()
	go hub.Run()

	queue, err := newQueue(ctx, cfg)
	if err != nil {
		return err
	}
	defer queue.Close()

	templates, err := notify.LoadTemplates()
	if err != nil {
		return err
	}
	mailer, err := notify.NewMailer(cfg)
	if err != nil {
		return err
	}

	statusScheduler := scheduler.NewStatusScheduler()
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessExpiry)
	userService := services.NewUserService(db)
	groupService := services.NewGroupService(db)
	eventService := services.NewEventService(db, statusScheduler)
	scheduleService := services.NewScheduleService(db, statusScheduler)
	messageService := services.NewMessageService(db, hub)
	locationService := services.NewLocationService(db)
	invitationService := services.NewInvitationService(db, notify.NewDispatcher(queue), hub, cfg.BaseURL)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	pool := notify.NewPool(queue, notify.NewDeliverer(templates, mailer, messageService), cfg.Notify.Workers, cfg.Notify.MaxAttempts)
	pool.Start(workerCtx)

	sweeper := scheduler.NewSweeper(db, eventService, cfg.StatusSweepInterval)
	if err := sweeper.Start(workerCtx); err != nil {
		stopWorkers()
		return err
	}

	app := server.NewRouter(cfg.IsProduction(), jwtService, server.Handlers{
		Users:       handlers.NewUserHandler(userService),
		Friends:     handlers.NewFriendHandler(userService, invitationService),
		Groups:      handlers.NewGroupHandler(groupService, userService, invitationService),
		Events:      handlers.NewEventHandler(eventService, invitationService),
		Schedules:   handlers.NewScheduleHandler(scheduleService),
		Invitations: handlers.NewInvitationHandler(invitationService),
		InvitePage:  handlers.NewInvitePageHandler(invitationService),
		Messages:    handlers.NewMessageHandler(messageService),
		Locations:   handlers.NewLocationHandler(locationService),
		SSE:         handlers.NewSSEHandler(hub),
	})

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", httpServer.Addr).Info("Server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err = <-serverErr:
		log.WithError(err).Error("Server failed")
	}

	// SSE streams stay open until their clients go away, so shutdown is bounded.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	sweeper.Stop()
	stopWorkers()
	pool.Wait()
	return err
}
