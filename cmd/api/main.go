// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wander/internal/adapter/provider"
	"wander/internal/adapter/sensor"
	"wander/internal/adapter/storage"
	"wander/internal/cache"
	"wander/internal/config"
	"wander/internal/domain/place"
	"wander/internal/server"
	"wander/internal/service/ai"
	"wander/internal/service/enrich"
	"wander/internal/service/intelligent"
	"wander/internal/service/location"
	"wander/internal/service/pipeline"
)

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.Environment)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize optional dependencies. The pipeline runs without a
	// database, NATS or AI endpoint; each absent piece disables only
	// its own concern.
	var db *pgxpool.Pool
	var queryStore place.QueryStore
	if cfg.Database.Host != "" {
		db, err = initDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()
		queryStore = storage.NewQueryStore(db)
	}

	var natsConn *nats.Conn
	if cfg.NATS.URL != "" {
		natsConn, err = initNATS(cfg.NATS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer natsConn.Close()
	}

	// Initialize the provider client
	providerClient := provider.NewHTTPClient(provider.Config{
		APIKey:   cfg.Provider.APIKey,
		BaseURL:  cfg.Provider.BaseURL,
		Language: cfg.Provider.Language,
		Region:   cfg.Provider.Region,
		Timeout:  cfg.Provider.Timeout,
	})

	// Initialize the location resolver
	var positionSensor location.Sensor = sensor.None{}
	if cfg.Location.SensorLat != 0 || cfg.Location.SensorLng != 0 {
		positionSensor = sensor.NewFixed(place.Coordinate{
			Latitude:  cfg.Location.SensorLat,
			Longitude: cfg.Location.SensorLng,
		})
	}

	resolver := location.NewCachingResolver(
		positionSensor,
		cache.New(),
		location.Config{
			SensorTimeout: cfg.Location.SensorTimeout,
			MaxStaleness:  cfg.Location.MaxStaleness,
			CacheTTL:      cfg.Location.CacheTTL,
			Default: place.Coordinate{
				Latitude:  cfg.Location.DefaultLat,
				Longitude: cfg.Location.DefaultLng,
			},
		},
		log.With().Str("component", "location").Logger(),
	)

	// Initialize the enrichment service
	enricher := enrich.NewService(
		providerClient,
		cache.New(cache.WithMaxSize(cfg.Enrichment.MaxCacheSize)),
		enrich.Config{
			CacheTTL:     cfg.Enrichment.CacheTTL,
			MaxCacheSize: cfg.Enrichment.MaxCacheSize,
			BatchSize:    cfg.Enrichment.BatchSize,
			BatchDelay:   cfg.Enrichment.BatchDelay,
			Language:     cfg.Provider.Language,
			Region:       cfg.Provider.Region,
		},
		log.With().Str("component", "enrich").Logger(),
	)

	// Initialize the soft-filter scorer and the optional AI client
	intelligentSvc := intelligent.NewService()

	var analyzer *ai.Client
	if cfg.AI.Endpoint != "" {
		analyzer = ai.NewClient(
			ai.Config{
				Endpoint:   cfg.AI.Endpoint,
				Timeout:    cfg.AI.Timeout,
				MaxRetries: cfg.AI.MaxRetries,
				BaseDelay:  cfg.AI.BaseDelay,
				CacheTTL:   cfg.AI.CacheTTL,
			},
			cache.New(),
			log.With().Str("component", "ai").Logger(),
		)
	}

	// Initialize the pipeline service
	pipelineService := pipeline.NewService(
		resolver,
		providerClient,
		enricher,
		intelligentSvc,
		analyzer,
		queryStore,
		natsConn,
		pipeline.Config{
			EventsTopic: cfg.Pipeline.EventsTopic,
			EnableAI:    analyzer != nil,
		},
		log.With().Str("component", "pipeline").Logger(),
	)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		pipelineService,
		queryStore,
		natsConn,
		cfg.Pipeline.EventsTopic,
	)

	// Start HTTP server
	go func() {
		log.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info().Msg("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// setupLogging configures the global logger
func setupLogging(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
