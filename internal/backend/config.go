package backend

import (
	"fmt"

	"dailyspend/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	storeType := StoreType(appConfig.StoreBackend)
	if !storeType.IsValid() {
		return Config{}, fmt.Errorf("invalid store backend in config: %s", appConfig.StoreBackend)
	}
	channelType := ChannelType(appConfig.NotifyChannel)
	if !channelType.IsValid() {
		return Config{}, fmt.Errorf("invalid notify channel in config: %s", appConfig.NotifyChannel)
	}

	return Config{
		Store:   storeType,
		Channel: channelType,

		DataDirectory: appConfig.StoreDir,
		SQLiteDBPath:  appConfig.SQLiteDBPath,

		MongoURI:        appConfig.MongoURI,
		MongoDB:         appConfig.MongoDB,
		MongoCollection: appConfig.MongoCollection,
		MongoTimeout:    appConfig.MongoTimeout,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		TelegramBotToken: appConfig.TelegramBotToken,
		TelegramChatID:   appConfig.TelegramChatID,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Store.IsValid() {
		return fmt.Errorf("invalid store backend: %s", c.Store)
	}
	if !c.Channel.IsValid() {
		return fmt.Errorf("invalid notify channel: %s", c.Channel)
	}

	switch c.Store {
	case FileStore:
		// DataDirectory defaults to "data" when empty
	case SQLiteStore:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MongoStore:
		if c.MongoURI == "" {
			return fmt.Errorf("Mongo URI is required for mongo backend")
		}
	}

	switch c.Channel {
	case AMQPChannel:
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP URL is required for amqp channel")
		}
	case TelegramChannel:
		if c.TelegramBotToken == "" || c.TelegramChatID == 0 {
			return fmt.Errorf("Telegram bot token and chat id are required for telegram channel")
		}
	}

	return nil
}

// GetStoreTypes returns all valid store types
func GetStoreTypes() []StoreType {
	return []StoreType{MemoryStore, FileStore, SQLiteStore, MongoStore}
}

// GetStoreTypeStrings returns all valid store type strings
func GetStoreTypeStrings() []string {
	types := GetStoreTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
