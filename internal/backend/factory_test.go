package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"dailyspend/internal/config"
	"dailyspend/internal/log"
	"dailyspend/internal/storage"
	"dailyspend/internal/telegram"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		app     *config.Config
		wantErr bool
	}{
		{"nil config", nil, true},
		{"file and log", &config.Config{StoreBackend: "file", StoreDir: "d", NotifyChannel: "log"}, false},
		{"unknown store", &config.Config{StoreBackend: "sheets", NotifyChannel: "log"}, true},
		{"unknown channel", &config.Config{StoreBackend: "file", NotifyChannel: "sms"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromAppConfig(tt.app)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (cfg.Store != FileStore || cfg.DataDirectory != "d" || cfg.Channel != LogChannel) {
				t.Errorf("FromAppConfig() = %+v", cfg)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Store: MemoryStore, Channel: LogChannel}, false},
		{"sqlite without path", Config{Store: SQLiteStore, Channel: LogChannel}, true},
		{"mongo without uri", Config{Store: MongoStore, Channel: LogChannel}, true},
		{"amqp without url", Config{Store: MemoryStore, Channel: AMQPChannel}, true},
		{"telegram without chat", Config{Store: MemoryStore, Channel: TelegramChannel, TelegramBotToken: "t"}, true},
		{"bad store", Config{Store: "x", Channel: LogChannel}, true},
		{"bad channel", Config{Store: MemoryStore, Channel: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_CreateStore(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.Discard())

	for _, st := range []StoreType{MemoryStore, FileStore, SQLiteStore} {
		t.Run(st.String(), func(t *testing.T) {
			dir := t.TempDir()
			res, err := f.CreateStore(ctx, Config{
				Store:         st,
				DataDirectory: dir,
				SQLiteDBPath:  dir + "/spese.db",
			})
			if err != nil {
				t.Fatalf("CreateStore() error = %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup(ctx)
			}

			if _, err := res.Store.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
			}
			if err := res.Store.Set(ctx, "k", []byte("v")); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := res.Store.Get(ctx, "k")
			if err != nil || string(got) != "v" {
				t.Fatalf("Get() = %q, %v", got, err)
			}
		})
	}
}

func TestFactory_CreateStoreRejectsUnknownType(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateStore(context.Background(), Config{Store: "sheets"}); err == nil {
		t.Fatal("expected error for unknown store type")
	}
}

func TestFactory_CreateSender(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f := NewFactory(log.Discard())

	res, err := f.CreateSender(ctx, Config{Channel: LogChannel})
	if err != nil {
		t.Fatalf("CreateSender(log) error = %v", err)
	}
	if res.Sender.Name() != "log" {
		t.Errorf("sender name = %s, want log", res.Sender.Name())
	}

	if _, err := f.CreateSender(ctx, Config{Channel: "pigeon"}); err == nil {
		t.Error("expected error for unknown channel")
	}
	if _, err := f.CreateSender(ctx, Config{Channel: TelegramChannel, TelegramBotToken: "1:x"}); !errors.Is(err, telegram.ErrNoChat) {
		t.Errorf("CreateSender(telegram) error = %v, want ErrNoChat", err)
	}
}
