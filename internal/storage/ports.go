// Package storage defines the persistent key/value port the ledger writes its
// snapshot blob through. Backends live in subpackages.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Ports for outbound adapters.
type (
	Getter interface {
		Get(ctx context.Context, key string) ([]byte, error)
	}

	Setter interface {
		Set(ctx context.Context, key string, value []byte) error
	}

	// Store is a single-writer key/value store holding opaque blobs.
	Store interface {
		Getter
		Setter
	}
)
