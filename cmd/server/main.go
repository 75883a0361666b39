// @title           Tender Management API
// @version         1.0
// @description     Tracks public tenders, their briefing and submission deadlines, and the accounts allowed to manage them.
// @BasePath        /api
// @securityDefinitions.apikey SessionCookie
// @in              cookie
// @name            tender_session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/tsiemasilo/tendermanagement/docs"
	"github.com/tsiemasilo/tendermanagement/internal/api"
	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
	"github.com/tsiemasilo/tendermanagement/internal/core/service"
	"github.com/tsiemasilo/tendermanagement/internal/infrastructure/export"
	"github.com/tsiemasilo/tendermanagement/internal/infrastructure/telemetry"
	"github.com/tsiemasilo/tendermanagement/internal/pkg/config"
	"github.com/tsiemasilo/tendermanagement/pkg/logger"
)

const serviceName = "tender-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	}, logger.Component("telemetry"))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	sessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer sessions.close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	authService := service.NewAuthService(store.users, logger.Component("auth"))
	userService := service.NewUserService(store.users, logger.Component("users"))
	tenderService := service.NewTenderService(store.tenders, loc, logger.Component("tenders"))

	created, err := userService.EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info().Str("username", cfg.Seed.AdminUsername).Msg("seeded admin account")
	}

	e, err := api.NewRouter(api.Deps{
		Logger:   logger.Component("http"),
		Auth:     authService,
		Users:    userService,
		Tenders:  tenderService,
		Exporter: export.NewXLSXExporter(),
		Sessions: session.NewManager(sessions.store, session.Options{
			Secret: cfg.Session.Secret,
			TTL:    cfg.Session.TTL,
			Secure: cfg.IsProduction(),
		}),
		BasePath:      cfg.BasePath,
		CORSOrigin:    cfg.CORSOrigin,
		Pingers:       map[string]ports.Pinger{"storage": store.pinger, "sessions": sessions.pinger},
		EnableSwagger: !cfg.IsProduction(),
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(e, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("storage", cfg.StorageDriver).
			Str("sessions", cfg.Session.Driver).
			Msg("tender-api listening")
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

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
