package cli

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/framing-go/application"
	"github.com/felixgeelhaar/framing-go/domain/session"
	"github.com/felixgeelhaar/framing-go/infrastructure/completion"
	"github.com/felixgeelhaar/framing-go/infrastructure/config"
	"github.com/felixgeelhaar/framing-go/infrastructure/executor"
	"github.com/felixgeelhaar/framing-go/infrastructure/logging"
	"github.com/felixgeelhaar/framing-go/infrastructure/notion"
	"github.com/felixgeelhaar/framing-go/infrastructure/registry"
	"github.com/felixgeelhaar/framing-go/infrastructure/resilience"
	badgerstore "github.com/felixgeelhaar/framing-go/infrastructure/storage/badger"
	"github.com/felixgeelhaar/framing-go/infrastructure/storage/memory"
	redisstore "github.com/felixgeelhaar/framing-go/infrastructure/storage/redis"
	sqlitestore "github.com/felixgeelhaar/framing-go/infrastructure/storage/sqlite"
	"github.com/felixgeelhaar/framing-go/infrastructure/telemetry"
)

// runtime bundles the wired components of one process.
type runtime struct {
	pipeline *application.Pipeline
	engine   *application.Engine
	sessions session.Store
	notion   *notion.Store
	cfg      *config.Config
}

// close releases runtime resources.
func (rt *runtime) close() {
	if rt.sessions != nil {
		_ = rt.sessions.Close()
	}
}

// loadConfig loads the configuration file, falling back to defaults when no
// path is given.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.NewLoader().LoadFile(path)
}

// buildRuntime wires the full stack from configuration: completion provider
// behind the resilience executor, step registry and executor, session store
// backend, and the optional Notion adapter.
func buildRuntime(cfg *config.Config) (*runtime, error) {
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	provider := completion.NewOpenAIProvider(completion.Config{
		APIKey:  cfg.Completion.APIKey,
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		Timeout: cfg.Completion.TimeoutSeconds,
	})

	protected := resilience.NewExecutor(provider, resilience.ExecutorConfig{
		MaxConcurrent:           cfg.Resilience.MaxConcurrent,
		CircuitBreakerThreshold: cfg.Resilience.CircuitBreakerThreshold,
		CircuitBreakerTimeout:   time.Duration(cfg.Resilience.CircuitBreakerTimeoutSeconds) * time.Second,
		Timeout:                 time.Duration(cfg.Resilience.TimeoutSeconds) * time.Second,
	})

	metrics := telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())

	invoker := executor.New(registry.New(), protected,
		executor.WithModel(cfg.Completion.Model),
		executor.WithMetrics(metrics),
	)

	sessions, err := buildSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	engineOpts := []application.EngineOption{
		application.WithEngineMetrics(metrics),
		application.WithChatModel(cfg.Completion.Model),
	}

	var notionStore *notion.Store
	if cfg.Notion.Token != "" {
		notionStore = notion.NewStore(notion.Config{
			Token:             cfg.Notion.Token,
			RecordDatabaseID:  cfg.Notion.RecordDatabaseID,
			KeywordDatabaseID: cfg.Notion.KeywordDatabaseID,
		})
		engineOpts = append(engineOpts, application.WithRecordStore(notionStore))
	}

	engine, err := application.NewEngine(invoker, protected, sessions, engineOpts...)
	if err != nil {
		_ = sessions.Close()
		return nil, err
	}

	return &runtime{
		pipeline: application.NewPipeline(invoker, application.WithPipelineMetrics(metrics)),
		engine:   engine,
		sessions: sessions,
		notion:   notionStore,
		cfg:      cfg,
	}, nil
}

// buildSessionStore opens the configured session store backend.
func buildSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Storage.Backend {
	case "", "memory":
		return memory.NewSessionStore(), nil

	case "badger":
		return badgerstore.NewSessionStore(badgerstore.DefaultConfig(),
			badgerstore.WithDir(cfg.Storage.Badger.Dir))

	case "sqlite":
		c := sqlitestore.DefaultConfig()
		if cfg.Storage.SQLite.DSN != "" {
			c.DSN = cfg.Storage.SQLite.DSN
		}
		return sqlitestore.NewSessionStore(c)

	case "redis":
		c := redisstore.DefaultConfig()
		if cfg.Storage.Redis.Address != "" {
			c.Address = cfg.Storage.Redis.Address
		}
		c.Password = cfg.Storage.Redis.Password
		c.DB = cfg.Storage.Redis.DB
		return redisstore.NewSessionStore(c)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
