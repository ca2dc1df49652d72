package backend

import (
	"context"
	"fmt"

	"dailyspend/internal/amqp"
	"dailyspend/internal/log"
	"dailyspend/internal/notify"
	"dailyspend/internal/storage/file"
	"dailyspend/internal/storage/memory"
	"dailyspend/internal/storage/mongo"
	"dailyspend/internal/storage/sqlite"
	"dailyspend/internal/telegram"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*StoreResult, error) {
	switch config.Store {
	case MemoryStore:
		f.logger.Warn("Using in-memory store, data will not survive a restart")
		return &StoreResult{Store: memory.New()}, nil
	case FileStore:
		return f.createFileStore(config)
	case SQLiteStore:
		return f.createSQLiteStore(config)
	case MongoStore:
		return f.createMongoStore(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", config.Store)
	}
}

func (f *DefaultFactory) createFileStore(config Config) (*StoreResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := file.New(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	f.logger.Info("Initialized file store", "data_directory", dataDir)

	return &StoreResult{Store: store}, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*StoreResult, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)

	return &StoreResult{
		Store:   repo,
		Cleanup: func(context.Context) error { return repo.Close() },
	}, nil
}

func (f *DefaultFactory) createMongoStore(ctx context.Context, config Config) (*StoreResult, error) {
	store, err := mongo.New(ctx, mongo.Config{
		URI:        config.MongoURI,
		Database:   config.MongoDB,
		Collection: config.MongoCollection,
		Timeout:    config.MongoTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Mongo store: %w", err)
	}

	f.logger.Info("Initialized Mongo store",
		"database", config.MongoDB,
		"collection", config.MongoCollection)

	return &StoreResult{Store: store, Cleanup: store.Close}, nil
}

// CreateSender implements Factory.CreateSender. A remote channel that cannot
// be reached at startup is an error; the caller decides whether to fall back.
func (f *DefaultFactory) CreateSender(ctx context.Context, config Config) (*SenderResult, error) {
	switch config.Channel {
	case LogChannel:
		return &SenderResult{Sender: notify.NewLogSender(f.logger)}, nil

	case AMQPChannel:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.Info("Initialized AMQP reminder channel",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return &SenderResult{
			Sender:  client,
			Cleanup: func(context.Context) error { return client.Close() },
		}, nil

	case TelegramChannel:
		if config.TelegramChatID == 0 {
			return nil, telegram.ErrNoChat
		}
		sender, err := telegram.New(config.TelegramBotToken, config.TelegramChatID, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
		}
		if err := sender.Ready(ctx); err != nil {
			return nil, fmt.Errorf("telegram channel not ready: %w", err)
		}
		f.logger.Info("Initialized Telegram reminder channel", log.FieldChannel, sender.Name())
		return &SenderResult{Sender: sender}, nil

	default:
		return nil, fmt.Errorf("unsupported notify channel: %s", config.Channel)
	}
}
