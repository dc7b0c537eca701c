package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/JudeSurin/SpaceLink-Complete/internal/database"
	"github.com/JudeSurin/SpaceLink-Complete/internal/gateway"
	"github.com/JudeSurin/SpaceLink-Complete/internal/health"
	"github.com/JudeSurin/SpaceLink-Complete/internal/metrics"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/auth"
	"github.com/JudeSurin/SpaceLink-Complete/pkg/config"
)

func init() {
	// Configure zerolog for human-friendly console output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	configFile := config.FindConfigFile("gateway")
	envFile := config.FindEnvironmentFile("gateway")

	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	cfg.Log.ConfigureZerolog()

	log.Info().Msg("Starting SpaceLink Enterprise Gateway")
	log.Info().Str("config_file", configFile).Msg("Configuration loaded")
	log.Info().Str("env_file", envFile).Msg("Environment loaded")
	log.Info().
		Str("log_level", cfg.Log.Level).
		Bool("debug", cfg.Log.Debug).
		Msg("Log level configured")

	db, err := database.New(cfg.Database.DSN, database.WithDebug(cfg.Log.Debug))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func(db *database.BunDB) {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo data")
		}
		log.Info().Msg("Demo data seeded")
	}

	clock := clockwork.NewRealClock()
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecretKey, cfg.Auth.TokenTTL, clock)
	resolver := auth.NewResolver(db.Users, db.DeviceKeys, jwtManager, clock)
	engine := health.NewEngine(db.Networks, clock)

	handler := gateway.NewHandler(db, resolver, engine, cfg.Gateway.StoreTimeout, clock)
	router := handler.Router(cfg.Gateway.Metrics.Enabled)

	if cfg.Gateway.Metrics.Enabled {
		collector := metrics.NewCollector(db, cfg.Gateway.Metrics.CollectionInterval)
		go collector.Start(ctx)
		defer collector.Stop()
	}

	server := &http.Server{
		Addr:           cfg.GetListenAddress(),
		Handler:        h2c.NewHandler(gateway.CORS(router), &http2.Server{}),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("address", cfg.GetListenAddress()).
		Str("database", cfg.Database.Driver).
		Bool("metrics", cfg.Gateway.Metrics.Enabled).
		Msg("Starting gateway server")
	log.Info().Msgf("Health check: http://%s/health", cfg.GetListenAddress())

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	log.Info().Msg("Gateway stopped")
}
