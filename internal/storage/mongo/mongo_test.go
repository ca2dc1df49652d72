package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"dailyspend/internal/storage"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{URI: "mongodb://localhost:27017", Database: "spese", Timeout: time.Second}, false},
		{"missing uri", Config{Database: "spese", Timeout: time.Second}, true},
		{"missing database", Config{URI: "mongodb://localhost:27017", Timeout: time.Second}, true},
		{"zero timeout", Config{URI: "mongodb://localhost:27017", Database: "spese"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestStoreIntegration needs a reachable server: MONGO_TEST_URI=mongodb://localhost:27017
func TestStoreIntegration(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	s, err := New(ctx, Config{
		URI:        uri,
		Database:   "spese_test",
		Collection: fmt.Sprintf("kv_%d", time.Now().UnixNano()),
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = s.collection.Drop(ctx)
		_ = s.Close(ctx)
	})

	if _, err := s.Get(ctx, "k"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "two" {
		t.Fatalf("unexpected get: %q err=%v", got, err)
	}
}
