package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
	"dailyspend/internal/log"
	"dailyspend/internal/storage"
)

// PersistProcessorConfig holds configuration for the persist processor
type PersistProcessorConfig struct {
	// Key is the storage key the snapshot is written under (default: ledger.StorageKey)
	Key string

	// WriteTimeout bounds a single store write (default: 5s)
	WriteTimeout time.Duration
}

// DefaultPersistProcessorConfig returns sensible defaults
func DefaultPersistProcessorConfig() PersistProcessorConfig {
	return PersistProcessorConfig{
		Key:          ledger.StorageKey,
		WriteTimeout: 5 * time.Second,
	}
}

// PersistenceError reports a snapshot that could not be written. The
// in-memory ledger is unaffected.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PersistProcessor writes ledger snapshots to a store in the background.
// Only the newest submitted snapshot is kept; older ones not yet written are
// dropped. Writes are serialised, so an older snapshot can never land after
// a newer one.
type PersistProcessor struct {
	store  storage.Setter
	config PersistProcessorConfig
	logger *log.Logger

	mu         sync.Mutex
	pending    []byte
	hasPending bool
	lastErr    error
	written    uint64

	// writeMu is held across taking the pending blob and writing it.
	writeMu sync.Mutex
	wake    chan struct{}

	// Lifecycle management
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var _ ledger.Persister = (*PersistProcessor)(nil)

func NewPersistProcessor(store storage.Setter, config PersistProcessorConfig, logger *log.Logger) *PersistProcessor {
	defaults := DefaultPersistProcessorConfig()
	if config.Key == "" {
		config.Key = defaults.Key
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	return &PersistProcessor{
		store:  store,
		config: config,
		logger: logger.WithComponent(log.ComponentPersist),
		wake:   make(chan struct{}, 1),
	}
}

// Submit queues s for writing, replacing any snapshot still waiting. It
// never blocks on I/O.
func (p *PersistProcessor) Submit(s core.Snapshot) {
	blob, err := ledger.Encode(s)

	p.mu.Lock()
	if err != nil {
		p.lastErr = &PersistenceError{Key: p.config.Key, Err: err}
		p.mu.Unlock()
		p.logger.LogError(context.Background(), "Failed to encode snapshot", err, log.OpPersist, log.ErrorTypeInternal)
		return
	}
	p.pending, p.hasPending = blob, true
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Start begins the write loop. Returns an error if already running.
func (p *PersistProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("persist processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Persist processor started",
		log.FieldStoreKey, p.config.Key,
		"write_timeout", p.config.WriteTimeout)
	return nil
}

// Stop ends the write loop and flushes whatever is still pending.
func (p *PersistProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return p.Flush(ctx)
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Persist processor stop timed out")
		return ctx.Err()
	}

	if err := p.Flush(ctx); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Persist processor stopped gracefully",
		"writes", p.Written())
	return nil
}

func (p *PersistProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *PersistProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-p.wake:
			p.writeOnce(ctx)
		}
	}
}

// Flush writes the pending snapshot, if any, before returning.
func (p *PersistProcessor) Flush(ctx context.Context) error {
	return p.writeOnce(ctx)
}

func (p *PersistProcessor) writeOnce(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	blob, ok := p.pending, p.hasPending
	p.pending, p.hasPending = nil, false
	p.mu.Unlock()
	if !ok {
		return nil
	}

	wctx, cancel := context.WithTimeout(ctx, p.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := p.store.Set(wctx, p.config.Key, blob); err != nil {
		perr := &PersistenceError{Key: p.config.Key, Err: err}
		p.mu.Lock()
		p.lastErr = perr
		// Keep the blob for the next attempt unless something newer arrived.
		if !p.hasPending {
			p.pending, p.hasPending = blob, true
		}
		p.mu.Unlock()

		p.logger.ErrorContext(ctx, "Failed to persist snapshot",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeStorage).
				WithOperation(log.OpPersist).
				WithStore(p.config.Key, len(blob)).
				ToSlice()...)
		return perr
	}

	p.mu.Lock()
	p.lastErr = nil
	p.written++
	p.mu.Unlock()

	p.logger.DebugContext(ctx, "Snapshot persisted",
		log.FieldOperation, log.OpPersist,
		log.FieldStoreKey, p.config.Key,
		log.FieldBytes, len(blob),
		log.FieldDurationMs, time.Since(start).Milliseconds())
	return nil
}

// LastError returns the error of the most recent write, or nil if it
// succeeded.
func (p *PersistProcessor) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Written returns the number of successful writes.
func (p *PersistProcessor) Written() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}

// Pending reports whether a snapshot is waiting to be written.
func (p *PersistProcessor) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasPending
}
