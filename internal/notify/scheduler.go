package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dailyspend/internal/log"
	"dailyspend/internal/reminder"
)

// SchedulerConfig holds configuration for the scheduler
type SchedulerConfig struct {
	// Location is the zone daily triggers are evaluated in (default: time.Local)
	Location *time.Location

	// SendTimeout bounds a single delivery (default: 30s)
	SendTimeout time.Duration
}

// DefaultSchedulerConfig returns sensible defaults
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Location:    time.Local,
		SendTimeout: 30 * time.Second,
	}
}

// Scheduler implements Service on top of a cron runner for the daily
// reminder and timers for one-shot messages.
type Scheduler struct {
	sender Sender
	config SchedulerConfig
	logger *log.Logger
	cron   *cron.Cron

	mu       sync.Mutex
	daily    cron.EntryID
	hasDaily bool
	timers   map[*time.Timer]struct{}
	inflight sync.WaitGroup
	running  bool
}

var _ Service = (*Scheduler)(nil)

func NewScheduler(sender Sender, config SchedulerConfig, logger *log.Logger) *Scheduler {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultSchedulerConfig().SendTimeout
	}
	return &Scheduler{
		sender: sender,
		config: config,
		logger: logger.WithComponent(log.ComponentNotify),
		cron:   cron.New(cron.WithLocation(config.Location)),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Start begins running scheduled jobs. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("notification scheduler is already running")
	}
	s.running = true
	s.cron.Start()

	s.logger.InfoContext(ctx, "Notification scheduler started",
		log.FieldChannel, s.sender.Name(),
		"location", s.config.Location.String())
	return nil
}

// Stop cancels pending one-shot timers and waits for running deliveries.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.stopTimersLocked()
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.InfoContext(ctx, "Notification scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Notification scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) RequestPermission(ctx context.Context) bool {
	err := s.sender.Ready(ctx)
	granted := err == nil
	fields := log.NewFields().
		WithOperation(log.OpPermission).
		WithError(err)
	fields[log.FieldChannel] = s.sender.Name()
	fields[log.FieldPermission] = granted
	if granted {
		s.logger.DebugContext(ctx, "Notification permission granted", fields.ToSlice()...)
	} else {
		s.logger.WarnContext(ctx, "Notification permission denied",
			fields.WithErrorType(log.ErrorTypePermission).ToSlice()...)
	}
	return granted
}

func (s *Scheduler) ScheduleDaily(ctx context.Context, hour, minute int, msg reminder.Message) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeDailyLocked()
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	id, err := s.cron.AddFunc(spec, func() {
		s.deliver(msg)
	})
	if err != nil {
		return fmt.Errorf("schedule daily reminder: %w", err)
	}
	s.daily, s.hasDaily = id, true

	s.logger.InfoContext(ctx, "Daily reminder scheduled",
		log.FieldOperation, log.OpSchedule,
		log.FieldChannel, s.sender.Name(),
		"spec", spec)
	return nil
}

func (s *Scheduler) ScheduleOnce(ctx context.Context, delay time.Duration, msg reminder.Message) error {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var t *time.Timer
	s.inflight.Add(1)
	t = time.AfterFunc(delay, func() {
		defer s.inflight.Done()
		s.mu.Lock()
		_, pending := s.timers[t]
		delete(s.timers, t)
		s.mu.Unlock()
		if pending {
			s.deliver(msg)
		}
	})
	s.timers[t] = struct{}{}

	s.logger.DebugContext(ctx, "One-shot notification scheduled",
		log.FieldOperation, log.OpSchedule,
		log.FieldChannel, s.sender.Name(),
		log.FieldTriggerAt, time.Now().Add(delay))
	return nil
}

// CancelAll drops the daily reminder and any pending one-shot messages.
func (s *Scheduler) CancelAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeDailyLocked()
	n := s.stopTimersLocked()

	s.logger.DebugContext(ctx, "Notifications cancelled",
		log.FieldOperation, log.OpCancel,
		"timers", n)
	return nil
}

// NextDaily returns the next time the daily reminder fires after t.
func (s *Scheduler) NextDaily(t time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDaily {
		return time.Time{}, false
	}
	e := s.cron.Entry(s.daily)
	if !e.Valid() {
		return time.Time{}, false
	}
	return e.Schedule.Next(t.In(s.config.Location)), true
}

// Pending returns the number of one-shot messages not yet delivered.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) removeDailyLocked() {
	if s.hasDaily {
		s.cron.Remove(s.daily)
		s.hasDaily = false
	}
}

func (s *Scheduler) stopTimersLocked() int {
	n := 0
	for t := range s.timers {
		if t.Stop() {
			s.inflight.Done()
			n++
		}
		delete(s.timers, t)
	}
	return n
}

func (s *Scheduler) deliver(msg reminder.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.SendTimeout)
	defer cancel()

	start := time.Now()
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.LogError(ctx, "Failed to deliver notification", err, log.OpDeliver, log.ErrorTypeNetwork)
		return
	}
	s.logger.DebugContext(ctx, "Notification delivered",
		log.FieldOperation, log.OpDeliver,
		log.FieldChannel, s.sender.Name(),
		log.FieldDurationMs, time.Since(start).Milliseconds())
}
