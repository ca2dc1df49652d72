package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Logging
	LogLevel string

	// Storage backend selection
	StoreBackend string
	StoreDir     string

	// SQLite
	SQLiteDBPath string

	// MongoDB
	MongoURI        string
	MongoDB         string
	MongoCollection string
	MongoTimeout    time.Duration

	// Reminder delivery
	NotifyChannel string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Telegram
	TelegramBotToken string
	TelegramChatID   int64

	// Analytics cache
	AnalyticsCacheSize int
	AnalyticsCacheTTL  time.Duration

	// Timeouts
	PersistTimeout  time.Duration
	ShutdownTimeout time.Duration
}

var (
	validLogLevels = []string{"debug", "info", "warn", "warning", "error"}
	validBackends  = []string{"memory", "file", "sqlite", "mongo"}
	validChannels  = []string{"log", "amqp", "telegram"}
)

func Load() *Config {
	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend: getEnv("STORE_BACKEND", "file"),
		StoreDir:     getEnv("STORE_DIR", "./data"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spese.db"),

		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "spese"),
		MongoCollection: getEnv("MONGO_COLLECTION", "kv"),
		MongoTimeout:    getEnvDuration("MONGO_TIMEOUT", 10*time.Second),

		NotifyChannel: getEnv("NOTIFY_CHANNEL", "log"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spese"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "reminders"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnvInt64("TELEGRAM_CHAT_ID", 0),

		AnalyticsCacheSize: getEnvInt("ANALYTICS_CACHE_SIZE", 64),
		AnalyticsCacheTTL:  getEnvDuration("ANALYTICS_CACHE_TTL", 10*time.Minute),

		PersistTimeout:  getEnvDuration("PERSIST_TIMEOUT", 5*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !oneOf(strings.ToLower(c.LogLevel), validLogLevels) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	// Validate store backend
	if !oneOf(c.StoreBackend, validBackends) {
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of %v", c.StoreBackend, validBackends))
	}

	switch c.StoreBackend {
	case "file":
		if c.StoreDir == "" {
			errors = append(errors, "store directory cannot be empty when using file backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "mongo":
		if c.MongoURI == "" {
			errors = append(errors, "MONGO_URI is required when using mongo backend")
		} else if u, err := url.Parse(c.MongoURI); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Mongo URI: %v", err))
		} else if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
			errors = append(errors, fmt.Sprintf("invalid Mongo URI scheme '%s': must be 'mongodb' or 'mongodb+srv'", u.Scheme))
		}
		if c.MongoDB == "" || c.MongoCollection == "" {
			errors = append(errors, "Mongo database and collection names cannot be empty")
		}
		if c.MongoTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("invalid Mongo timeout %v: must be positive", c.MongoTimeout))
		}
	}

	// Validate reminder channel
	if !oneOf(c.NotifyChannel, validChannels) {
		errors = append(errors, fmt.Sprintf("invalid notify channel '%s': must be one of %v", c.NotifyChannel, validChannels))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
	}

	if c.NotifyChannel == "amqp" {
		if c.AMQPURL == "" {
			errors = append(errors, "AMQP_URL is required when using amqp notify channel")
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when using amqp notify channel")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when using amqp notify channel")
		}
	}

	if c.NotifyChannel == "telegram" {
		if c.TelegramBotToken == "" {
			errors = append(errors, "TELEGRAM_BOT_TOKEN is required when using telegram notify channel")
		}
		if c.TelegramChatID == 0 {
			errors = append(errors, "TELEGRAM_CHAT_ID is required when using telegram notify channel")
		}
	}

	// Validate analytics cache
	if c.AnalyticsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid analytics cache size %d: must be at least 1", c.AnalyticsCacheSize))
	} else if c.AnalyticsCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid analytics cache size %d: must be at most 10000", c.AnalyticsCacheSize))
	}
	if c.AnalyticsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid analytics cache TTL %v: must be at least 1 second", c.AnalyticsCacheTTL))
	}

	if c.PersistTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid persist timeout %v: must be at least 100ms", c.PersistTimeout))
	}
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func oneOf(v string, valid []string) bool {
	for _, s := range valid {
		if v == s {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
