// Package services wires the ledger, analytics and reminder logic into the
// command surface used by the application shell.
package services

import (
	"context"
	"fmt"
	"time"

	"dailyspend/internal/analytics"
	"dailyspend/internal/cache"
	"dailyspend/internal/core"
	"dailyspend/internal/ledger"
	"dailyspend/internal/log"
	"dailyspend/internal/notify"
	"dailyspend/internal/reminder"
)

// ExpenseService is the command surface exposed to the UI. Commands go to
// the ledger; the daily reminder is re-planned whenever the totals it
// reports may have changed.
type ExpenseService struct {
	ledger   *ledger.Ledger
	notifier notify.Service
	bundles  cache.Cache[analytics.Bundle]
	logger   *log.Logger
	now      func() time.Time
}

type ServiceOption func(*ExpenseService)

// WithServiceClock replaces time.Now for reminder planning.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *ExpenseService) {
		s.now = now
	}
}

// NewExpenseService builds the service. notifier and bundles may be nil:
// without a notifier reminders are skipped, without a cache analytics are
// recomputed on every call.
func NewExpenseService(
	lg *ledger.Ledger,
	notifier notify.Service,
	bundles cache.Cache[analytics.Bundle],
	logger *log.Logger,
	opts ...ServiceOption,
) *ExpenseService {
	s := &ExpenseService{
		ledger:   lg,
		notifier: notifier,
		bundles:  bundles,
		logger:   logger.WithComponent(log.ComponentApp),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the ledger and arms the reminder when it is enabled. It
// reports whether this is the first run on this store.
func (s *ExpenseService) Start(ctx context.Context) (bool, error) {
	_, firstRun, err := s.ledger.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load ledger: %w", err)
	}
	s.refreshIfEnabled(ctx)
	return firstRun, nil
}

func (s *ExpenseService) AddExpense(ctx context.Context, d core.Draft) (core.Expense, error) {
	e, err := s.ledger.AddExpense(d)
	if err != nil {
		return core.Expense{}, err
	}
	s.refreshIfEnabled(ctx)
	return e, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) (bool, error) {
	removed, err := s.ledger.DeleteExpense(id)
	if err != nil {
		return false, err
	}
	if removed {
		s.refreshIfEnabled(ctx)
	}
	return removed, nil
}

func (s *ExpenseService) AddCustomCategory(_ context.Context, name string) (bool, error) {
	return s.ledger.AddCustomCategory(name)
}

// UpdateSettings merges patch into the settings and brings the reminder in
// line with the result. The flag may arrive as the typed field or as a raw
// notificationsEnabled key in Extra; either way a flip re-plans the reminder.
func (s *ExpenseService) UpdateSettings(ctx context.Context, patch core.SettingsPatch) (core.Settings, error) {
	before := s.ledger.Snapshot().Settings.NotificationsEnabled
	settings, err := s.ledger.UpdateSettings(patch)
	if err != nil {
		return settings, err
	}
	if settings.NotificationsEnabled != before || patch.NotificationsEnabled != nil {
		if err := s.RefreshReminder(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to refresh reminder after settings change",
				log.FieldError, err.Error())
		}
	}
	return settings, nil
}

func (s *ExpenseService) Snapshot() core.Snapshot {
	return s.ledger.Snapshot()
}

// Analytics returns the statistics bundle for now. Bundles are cached by
// ledger revision and calendar day, the only inputs they depend on.
func (s *ExpenseService) Analytics(now time.Time) analytics.Bundle {
	snap, rev := s.ledger.View()
	if s.bundles == nil {
		return analytics.Compute(snap, now)
	}

	key := fmt.Sprintf("%d|%s", rev, core.DateOf(now))
	if b, ok := s.bundles.Get(key); ok {
		return b
	}
	b := analytics.Compute(snap, now)
	s.bundles.Set(key, b)
	return b
}

// Insights returns the spending observations for the bundle at now.
func (s *ExpenseService) Insights(now time.Time) []analytics.Insight {
	return analytics.Insights(s.Analytics(now))
}

// EnableNotifications asks for permission and, when granted, turns the
// daily reminder on. A denied permission is reported as false, not as an
// error.
func (s *ExpenseService) EnableNotifications(ctx context.Context) (bool, error) {
	if s.notifier == nil || !s.notifier.RequestPermission(ctx) {
		return false, nil
	}
	if _, err := s.UpdateSettings(ctx, core.SettingsPatch{NotificationsEnabled: core.Bool(true)}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ExpenseService) DisableNotifications(ctx context.Context) error {
	if s.notifier != nil {
		if err := s.notifier.CancelAll(ctx); err != nil {
			return fmt.Errorf("cancel notifications: %w", err)
		}
	}
	_, err := s.ledger.UpdateSettings(core.SettingsPatch{NotificationsEnabled: core.Bool(false)})
	return err
}

// SendTestNotification delivers the current summary once, shortly. It
// returns false when notifications are not permitted.
func (s *ExpenseService) SendTestNotification(ctx context.Context) (bool, error) {
	if s.notifier == nil || !s.notifier.RequestPermission(ctx) {
		return false, nil
	}
	msg := reminder.TestMessage(s.Analytics(s.now()))
	if err := s.notifier.ScheduleOnce(ctx, reminder.TestDelay, msg); err != nil {
		return false, fmt.Errorf("schedule test notification: %w", err)
	}
	return true, nil
}

// RefreshReminder cancels any scheduled reminder and, when notifications
// are enabled and permitted, schedules a new one with today's totals.
func (s *ExpenseService) RefreshReminder(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancel notifications: %w", err)
	}

	now := s.now()
	snap := s.ledger.Snapshot()
	if !snap.Settings.NotificationsEnabled {
		return nil
	}
	if !s.notifier.RequestPermission(ctx) {
		return nil
	}

	d := reminder.Plan(snap.Settings, s.Analytics(now), now)
	if err := s.notifier.ScheduleDaily(ctx, d.Hour, d.Minute, d.Message); err != nil {
		return fmt.Errorf("schedule daily reminder: %w", err)
	}

	s.logger.DebugContext(ctx, "Reminder planned",
		log.FieldOperation, log.OpSchedule,
		log.FieldTriggerAt, d.At,
		"body", d.Message.Body)
	return nil
}

func (s *ExpenseService) refreshIfEnabled(ctx context.Context) {
	if !s.ledger.Snapshot().Settings.NotificationsEnabled {
		return
	}
	if err := s.RefreshReminder(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to refresh reminder",
			log.FieldError, err.Error())
	}
}
