package backend

import (
	"context"
	"time"

	"dailyspend/internal/notify"
	"dailyspend/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func(ctx context.Context) error

// StoreResult contains the store instance and optional cleanup function
type StoreResult struct {
	Store   storage.Store
	Cleanup CleanupFunc
}

// SenderResult contains the reminder channel and optional cleanup function
type SenderResult struct {
	Sender  notify.Sender
	Cleanup CleanupFunc
}

// Factory creates stores and reminder channels based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
	CreateSender(ctx context.Context, config Config) (*SenderResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Store   StoreType
	Channel ChannelType

	// File backend
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string

	// Mongo specific
	MongoURI        string
	MongoDB         string
	MongoCollection string
	MongoTimeout    time.Duration

	// AMQP channel
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Telegram channel
	TelegramBotToken string
	TelegramChatID   int64
}

// StoreType represents the type of persistent store
type StoreType string

const (
	MemoryStore StoreType = "memory"
	FileStore   StoreType = "file"
	SQLiteStore StoreType = "sqlite"
	MongoStore  StoreType = "mongo"
)

// String implements fmt.Stringer
func (st StoreType) String() string {
	return string(st)
}

// IsValid returns true if the store type is valid
func (st StoreType) IsValid() bool {
	switch st {
	case MemoryStore, FileStore, SQLiteStore, MongoStore:
		return true
	default:
		return false
	}
}

// ChannelType is where reminders end up.
type ChannelType string

const (
	LogChannel      ChannelType = "log"
	AMQPChannel     ChannelType = "amqp"
	TelegramChannel ChannelType = "telegram"
)

func (ct ChannelType) String() string {
	return string(ct)
}

func (ct ChannelType) IsValid() bool {
	switch ct {
	case LogChannel, AMQPChannel, TelegramChannel:
		return true
	default:
		return false
	}
}
