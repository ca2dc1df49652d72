// Package notify delivers reminder messages on a schedule. It plays the part
// of the device notification service for a host process: the daily trigger
// runs on a cron scheduler and delivery goes through a pluggable Sender.
package notify

import (
	"context"
	"errors"
	"time"

	"dailyspend/internal/reminder"
)

var ErrInvalidTime = errors.New("invalid time of day")

// Service is the notification surface the expense service depends on.
type Service interface {
	// RequestPermission reports whether notifications can be delivered.
	RequestPermission(ctx context.Context) bool
	// ScheduleDaily replaces any daily reminder with one firing at hour:minute.
	ScheduleDaily(ctx context.Context, hour, minute int, msg reminder.Message) error
	ScheduleOnce(ctx context.Context, delay time.Duration, msg reminder.Message) error
	CancelAll(ctx context.Context) error
}

// Sender delivers a single message over some channel.
type Sender interface {
	Name() string
	// Ready returns nil when Send is expected to succeed.
	Ready(ctx context.Context) error
	Send(ctx context.Context, msg reminder.Message) error
}
