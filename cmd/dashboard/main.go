package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"prediction-dashboard-service/internal/app"
	"prediction-dashboard-service/internal/config"
	apihttp "prediction-dashboard-service/internal/http"
	"prediction-dashboard-service/internal/observability"
)

func main() {
	cfg := config.Load()

	application := app.New(cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("application start failed")
	}

	// Metrics and probes
	obsServer := observability.NewServer(cfg.Observability.MetricsAddr)
	obsServer.Start()

	healthServer := observability.NewHealthServer(":"+cfg.Service.GRPCPort, application.Metrics)
	if err := healthServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start gRPC health server")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Service.HTTPPort,
		Handler: apihttp.NewRouter(application),
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Prediction dashboard API started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	healthServer.SetServing(false)
	obsServer.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	healthServer.Shutdown()
	if err := obsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("observability shutdown failed")
	}
	application.Shutdown()
}
