package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"gemcanvas/internal/ai"
	appsvc "gemcanvas/internal/app"
	"gemcanvas/internal/config"
	"gemcanvas/internal/logger"
	"gemcanvas/internal/model"
	mysqlClient "gemcanvas/internal/platform/mysql"
	rabbitmqClient "gemcanvas/internal/platform/rabbitmq"
	redisClient "gemcanvas/internal/platform/redis"
	sqliteClient "gemcanvas/internal/platform/sqlite"
	"gemcanvas/internal/repository"
	"gemcanvas/internal/store"
	"gemcanvas/internal/worker"
)

type App struct {
	Config *config.Config
	Log    *logger.Logger

	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Store         *store.Store
	Studio        *appsvc.Studio
	Auth          *appsvc.OwnerAuthService
	Journal       *repository.JournalRepository
	JournalWorker *worker.JournalWorker

	// ConfigErr is set when the gateway cannot serve requests.
	ConfigErr error

	StartedAt time.Time
}

// New builds the full server: storage, gateway and the archive journal.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a, err := open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	gateway, configErr := newGateway(ctx, cfg)
	if configErr != nil {
		log.Error("ai gateway unavailable", "provider", cfg.LLM.Provider, "error", configErr)
		gateway = appsvc.UnavailableGateway{Err: configErr}
	}
	a.ConfigErr = configErr

	if !cfg.AuthEnabled() {
		log.Warn("owner auth disabled, the api is open to anyone who can reach it",
			"hint", "set auth.owner_password_hash or OWNER_PASSWORD_HASH")
	}

	var events appsvc.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		if a.Journal == nil {
			log.Warn("archive journal needs a sql store, journal disabled", "store_driver", cfg.Store.Driver)
		} else {
			if err := a.startJournal(ctx); err != nil {
				_ = a.Close()
				return nil, err
			}
			events = rabbitmqClient.NewJournalPublisher(a.MQConn, cfg.RabbitMQ.JournalQueue)
		}
	}

	if err := a.buildStudio(ctx, gateway, events); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// NewStorage opens only the persistent store and the registries. The
// operator commands use it; the studio has no gateway.
func NewStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a, err := open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if err := a.buildStudio(ctx, appsvc.UnavailableGateway{Err: appsvc.ErrGatewayNotConfigured}, nil); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Log:    log,
		Auth: appsvc.NewOwnerAuthService(
			cfg.Auth.OwnerName,
			cfg.Auth.OwnerPasswordHash,
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		),
		StartedAt: time.Now(),
	}

	kv, err := a.openKV(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = store.New(kv, cfg.Store.KeyPrefix, log)
	return a, nil
}

func (a *App) openKV(ctx context.Context) (store.KV, error) {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite, config.StoreDriverMySQL:
		var (
			db  *gorm.DB
			err error
		)
		if cfg.Store.Driver == config.StoreDriverSQLite {
			db, err = sqliteClient.New(ctx, cfg.SQLite.Path)
		} else {
			db, err = mysqlClient.New(ctx, cfg.MySQLDSN())
		}
		if err != nil {
			return nil, err
		}
		a.DB = db
		if err := db.AutoMigrate(&model.Record{}, &model.JournalEntry{}); err != nil {
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
		a.Journal = repository.NewJournalRepository(db)
		return store.NewSQLKV(repository.NewRecordRepository(db)), nil
	case config.StoreDriverRedis:
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.Redis = client
		return store.NewRedisKV(client, cfg.App.Name), nil
	case config.StoreDriverMemory:
		a.Log.Warn("memory store selected, nothing survives a restart")
		return store.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func (a *App) buildStudio(ctx context.Context, gateway appsvc.Gateway, events appsvc.EventPublisher) error {
	gems, err := appsvc.NewGemRegistry(ctx, a.Store, a.Log)
	if err != nil {
		return fmt.Errorf("load gems failed: %w", err)
	}
	groups, err := appsvc.NewKnowledgeRegistry(ctx, a.Store, a.Log)
	if err != nil {
		return fmt.Errorf("load knowledge bases failed: %w", err)
	}
	a.Studio = appsvc.NewStudio(gems, groups, gateway, events, a.Log)
	return nil
}

func (a *App) startJournal(ctx context.Context) error {
	conn, err := rabbitmqClient.New(ctx, a.Config.RabbitMQ.URL)
	if err != nil {
		return err
	}
	a.MQConn = conn

	a.JournalWorker = worker.NewJournalWorker(conn, a.Journal, a.Config.RabbitMQ.JournalQueue, a.Log)
	if err := a.JournalWorker.Start(ctx); err != nil {
		return fmt.Errorf("start journal worker failed: %w", err)
	}
	return nil
}

func newGateway(ctx context.Context, cfg *config.Config) (appsvc.Gateway, error) {
	if !cfg.GatewayConfigured() {
		return nil, appsvc.ErrGatewayNotConfigured
	}
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		if cfg.LLM.BaseURL == "" {
			return nil, errors.New("llm base_url is required for the openai provider")
		}
		return ai.NewOpenAICompatibleGateway(ai.ChatConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: timeout,
		}), nil
	default:
		gateway, err := ai.NewGeminiGateway(ctx, ai.GeminiConfig{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			SpeechModel: cfg.LLM.SpeechModel,
			Voice:       cfg.LLM.Voice,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, err
		}
		return gateway, nil
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.JournalWorker != nil {
		a.JournalWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
