package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dailyspend/internal/core"
	"dailyspend/internal/log"
	"dailyspend/internal/storage"
)

var (
	// ErrNotReady is returned for commands issued before Load has finished.
	ErrNotReady = errors.New("ledger is still loading")

	ErrAlreadyLoaded = errors.New("ledger already loaded")
)

// State is the load lifecycle of a Ledger.
type State int

const (
	Loading State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Persister receives every snapshot produced by a changing command, in order.
// Submit must not block on I/O.
type Persister interface {
	Submit(core.Snapshot)
}

type Option func(*Ledger)

func WithLogger(l *log.Logger) Option {
	return func(lg *Ledger) {
		lg.logger = l.WithComponent(log.ComponentLedger)
	}
}

// WithClock replaces time.Now for id and createdAt generation.
func WithClock(now func() time.Time) Option {
	return func(lg *Ledger) {
		lg.now = now
	}
}

// WithKey overrides the storage key the snapshot is read from.
func WithKey(key string) Option {
	return func(lg *Ledger) {
		lg.key = key
	}
}

// Ledger is the authoritative, in-memory owner of the expense snapshot.
// Commands are serialised; snapshots handed out are never modified
// afterwards and may be shared freely as read-only values.
type Ledger struct {
	store     storage.Getter
	persister Persister
	key       string
	now       func() time.Time
	logger    *log.Logger

	mu       sync.RWMutex
	state    State
	snap     core.Snapshot
	revision uint64
}

// New returns a ledger in the Loading state. store may be nil, in which case
// Load always starts from defaults. persister may be nil for a ledger that
// never writes.
func New(store storage.Getter, persister Persister, opts ...Option) *Ledger {
	lg := &Ledger{
		store:     store,
		persister: persister,
		key:       StorageKey,
		now:       time.Now,
		logger:    log.Discard().WithComponent(log.ComponentLedger),
		state:     Loading,
		snap:      core.EmptySnapshot(),
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Load reads the persisted snapshot and moves the ledger to Ready. A missing
// blob yields defaults and firstRun=true. Unreadable or corrupt data also
// yields defaults; it is logged and never returned as an error.
func (lg *Ledger) Load(ctx context.Context) (core.Snapshot, bool, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if lg.state == Ready {
		return lg.snap, false, ErrAlreadyLoaded
	}

	snap, firstRun := lg.read(ctx)
	lg.snap = snap
	lg.state = Ready
	lg.revision++

	lg.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldExpenses, len(snap.Expenses),
		log.FieldFirstRun, firstRun)

	return snap, firstRun, nil
}

func (lg *Ledger) read(ctx context.Context) (core.Snapshot, bool) {
	if lg.store == nil {
		return core.EmptySnapshot(), true
	}

	blob, err := lg.store.Get(ctx, lg.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return core.EmptySnapshot(), true
	case err != nil:
		lg.logger.LogError(ctx, "Failed to read snapshot, starting from defaults",
			err, log.OpLoad, log.ErrorTypeStorage)
		return core.EmptySnapshot(), false
	}

	snap, err := Decode(blob)
	if err != nil {
		lg.logger.WarnContext(ctx, "Stored snapshot is corrupt, starting from defaults",
			log.NewFields().
				WithError(err).
				WithErrorType(log.ErrorTypeCorruptData).
				WithOperation(log.OpLoad).
				WithStore(lg.key, len(blob)).
				ToSlice()...)
		return core.EmptySnapshot(), false
	}
	return snap, false
}

// Dispatch applies cmd to the current snapshot and reports whether it
// changed anything. Changing commands bump the revision and are handed to
// the persister before the lock is released, so persisted order always
// matches command order. The typed methods below are thin wrappers over it.
func (lg *Ledger) Dispatch(cmd Command) (core.Snapshot, bool, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if lg.state != Ready {
		return lg.snap, false, ErrNotReady
	}

	next, changed, err := Apply(lg.snap, cmd)
	if err != nil || !changed {
		return lg.snap, false, err
	}

	lg.snap = next
	lg.revision++
	if lg.persister != nil {
		lg.persister.Submit(next)
	}
	lg.logger.Debug("Command applied",
		log.NewFields().
			WithOperation(operationOf(cmd)).
			WithRevision(lg.revision).
			ToSlice()...)
	return next, true, nil
}

func operationOf(cmd Command) string {
	switch cmd.(type) {
	case AddExpense:
		return log.OpAddExpense
	case DeleteExpense:
		return log.OpDelete
	case AddCustomCategory:
		return log.OpAddCategory
	case UpdateSettings:
		return log.OpSettings
	default:
		return "unknown"
	}
}

// AddExpense validates d, assigns an id and creation time and prepends the
// new expense.
func (lg *Ledger) AddExpense(d core.Draft) (core.Expense, error) {
	now := lg.now()
	snap, _, err := lg.Dispatch(AddExpense{Draft: d, ID: core.NewID(now), CreatedAt: now.UTC()})
	if err != nil {
		return core.Expense{}, err
	}

	e := snap.Expenses[0]
	lg.logger.Debug("Expense added",
		log.NewFields().
			WithOperation(log.OpAddExpense).
			WithExpense(e.ID, e.Amount.String(), e.Category, e.Date.String()).
			ToSlice()...)
	return e, nil
}

// DeleteExpense removes the expense with the given id. It reports whether
// anything was removed; an unknown id is not an error.
func (lg *Ledger) DeleteExpense(id string) (bool, error) {
	_, removed, err := lg.Dispatch(DeleteExpense{ID: id})
	return removed, err
}

// AddCustomCategory appends name to the custom categories unless it is
// already a known category. It reports whether the set grew.
func (lg *Ledger) AddCustomCategory(name string) (bool, error) {
	_, added, err := lg.Dispatch(AddCustomCategory{Name: name})
	return added, err
}

// UpdateSettings merges p into the current settings and returns the result.
// A malformed patch is rejected and the current settings are returned.
func (lg *Ledger) UpdateSettings(p core.SettingsPatch) (core.Settings, error) {
	snap, _, err := lg.Dispatch(UpdateSettings{Patch: p})
	return snap.Settings, err
}

func (lg *Ledger) Snapshot() core.Snapshot {
	lg.mu.RLock()
	defer lg.mu.RUnlock()
	return lg.snap
}

// Revision increases by one on load and on every changing command.
func (lg *Ledger) Revision() uint64 {
	lg.mu.RLock()
	defer lg.mu.RUnlock()
	return lg.revision
}

// View returns the snapshot together with its revision, read atomically.
func (lg *Ledger) View() (core.Snapshot, uint64) {
	lg.mu.RLock()
	defer lg.mu.RUnlock()
	return lg.snap, lg.revision
}

func (lg *Ledger) State() State {
	lg.mu.RLock()
	defer lg.mu.RUnlock()
	return lg.state
}
