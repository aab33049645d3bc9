// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"

	corpusapp "github.com/platewise/v1/internal/application/corpus"
	memoryapp "github.com/platewise/v1/internal/application/memory"
	plannerapp "github.com/platewise/v1/internal/application/planner"
	"github.com/platewise/v1/internal/infrastructure/ai/openai"
	"github.com/platewise/v1/internal/infrastructure/config"
	"github.com/platewise/v1/internal/infrastructure/http/server"
	"github.com/platewise/v1/internal/infrastructure/monitoring"
	"github.com/platewise/v1/internal/infrastructure/persistence/memstore"
	redisstore "github.com/platewise/v1/internal/infrastructure/persistence/redis"
	"github.com/platewise/v1/internal/infrastructure/vector/memindex"
	"github.com/platewise/v1/internal/infrastructure/vector/pinecone"
	"github.com/platewise/v1/internal/infrastructure/weather"
	"github.com/platewise/v1/internal/ports/inbound"
	"github.com/platewise/v1/internal/ports/outbound"
	"github.com/platewise/v1/pkg/healthcheck"
	"github.com/platewise/v1/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	AdapterModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// MonitoringModule provides the metrics registry
var MonitoringModule = fx.Provide(
	func() *prometheus.Registry {
		return prometheus.NewRegistry()
	},
	func(reg *prometheus.Registry) *monitoring.Metrics {
		return monitoring.NewMetrics(reg)
	},
)

// AdapterModule provides external service adapters
var AdapterModule = fx.Provide(
	// Model provider, serving both chat and embeddings
	func(cfg *config.Config, log *zap.Logger) *openai.Client {
		return openai.NewClient(openai.Config{
			APIKey:            cfg.AI.APIKey,
			BaseURL:           cfg.AI.BaseURL,
			ChatModel:         cfg.AI.ChatModel,
			EmbeddingModel:    cfg.AI.EmbeddingModel,
			Temperature:       cfg.AI.Temperature,
			MaxTokens:         cfg.AI.MaxTokens,
			RequestsPerSecond: cfg.AI.RequestsPerSecond,
			Timeout:           cfg.AI.Timeout,
		}, log)
	},
	func(client *openai.Client) outbound.ChatService { return client },

	// Local development runs without an embedding model
	func(cfg *config.Config, client *openai.Client, log *zap.Logger) outbound.EmbeddingService {
		if cfg.AI.APIKey == "" && cfg.IsDevelopment() {
			log.Info("Using deterministic local embedder")
			return memindex.NewEmbedder()
		}
		return client
	},

	func(cfg *config.Config, log *zap.Logger) outbound.VectorIndex {
		if cfg.Vector.Provider == "memory" {
			log.Info("Using in-process vector index")
			return memindex.NewIndex()
		}
		return pinecone.NewClient(pinecone.Config{
			APIKey:  cfg.Vector.APIKey,
			Host:    cfg.Vector.Host,
			Timeout: cfg.Vector.Timeout,
		}, log)
	},

	func(cfg *config.Config, log *zap.Logger) (outbound.KeyValueStore, error) {
		if !cfg.Redis.Enabled {
			log.Info("Using in-process key-value store")
			return memstore.NewStore(), nil
		}
		return redisstore.NewStore(redisstore.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			Database:     cfg.Redis.Database,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, log)
	},

	func(cfg *config.Config, log *zap.Logger) outbound.WeatherService {
		return weather.NewClient(weather.Config{
			APIKey:  cfg.Weather.APIKey,
			BaseURL: cfg.Weather.BaseURL,
			Timeout: cfg.Weather.Timeout,
		}, log)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	fx.Annotate(
		corpusapp.NewService,
		fx.As(new(inbound.CorpusService)),
	),
	fx.Annotate(
		memoryapp.NewService,
		fx.As(new(inbound.MemoryService)),
	),
	plannerapp.NewCompiler,
	fx.Annotate(
		plannerapp.NewService,
		fx.As(new(inbound.PlannerService)),
	),
)

// HTTPModule provides the API server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		log *zap.Logger,
		index outbound.VectorIndex,
		kv outbound.KeyValueStore,
	) *healthcheck.HealthCheck {
		hc := healthcheck.New(cfg.App.Name, cfg.App.Version, log)
		hc.Register("vector_index", healthcheck.VectorIndexChecker(index))
		hc.Register("key_value_store", healthcheck.KeyValueChecker(kv))
		return hc
	},
	func(
		cfg *config.Config,
		log *zap.Logger,
		planner inbound.PlannerService,
		corpus inbound.CorpusService,
		memories inbound.MemoryService,
		chat outbound.ChatService,
		kv outbound.KeyValueStore,
		ws outbound.WeatherService,
		reg *prometheus.Registry,
		hc *healthcheck.HealthCheck,
	) *server.Server {
		return server.New(cfg, log, server.Dependencies{
			Planner:  planner,
			Corpus:   corpus,
			Memories: memories,
			Chat:     chat,
			KV:       kv,
			Weather:  ws,
			Registry: reg,
			Health:   hc,
		})
	},
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)
			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down application")
			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			_ = log.Sync()
			return nil
		},
	})
}
