package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"example.com/carbon/internal/api"
	"example.com/carbon/internal/auth"
	"example.com/carbon/internal/config"
	"example.com/carbon/internal/domain"
	"example.com/carbon/internal/emission"
	"example.com/carbon/internal/logging"
	"example.com/carbon/internal/observability"
	"example.com/carbon/internal/store"
	httptransport "example.com/carbon/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.Configure(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open activity store")
	}
	defer st.Close()

	ledger := domain.NewLedger(st.Repository, emission.NewEstimator(emission.DefaultRates()))

	handler := api.NewHandler(ledger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		auth.PublicPaths("/", "/healthz", "/metrics"),
	)

	middlewares := append(httptransport.RequestLogging(logger),
		httptransport.CORS(cfg.CORSAllowedOrigin),
		authMiddleware.Wrap,
		observability.InstrumentHTTP,
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}, httptransport.Chain(mux, middlewares...))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress).Str("store", cfg.StoreDriver).Msg("carbon tracker listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := <-shutdownCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
