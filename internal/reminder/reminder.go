// Package reminder decides what the daily spending reminder says and when it
// fires. It performs no delivery; see package notify for that.
package reminder

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"dailyspend/internal/analytics"
	"dailyspend/internal/core"
)

const (
	Hour   = 22
	Minute = 0

	Title     = "Daily Spending Summary"
	TestTitle = "Test Notification"

	// TestDelay is how long a test notification waits before delivery.
	TestDelay = time.Second
)

// DailySpec is the cron expression for the reminder trigger.
var DailySpec = fmt.Sprintf("%d %d * * *", Minute, Hour)

var daily = mustParse(DailySpec)

func mustParse(spec string) cron.Schedule {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		panic(fmt.Sprintf("reminder: bad schedule %q: %v", spec, err))
	}
	return s
}

type Message struct {
	Title string
	Body  string
}

// Compose builds the reminder text from today's and yesterday's totals.
func Compose(b analytics.Bundle) Message {
	return Message{Title: Title, Body: body(b)}
}

// TestMessage is the one-off notification sent on demand.
func TestMessage(b analytics.Bundle) Message {
	return Message{Title: TestTitle, Body: body(b)}
}

func body(b analytics.Bundle) string {
	today, yesterday := b.TotalToday, b.TotalYesterday
	switch {
	case today.IsZero():
		return "Great job! You didn't spend anything today 🎉"
	case yesterday.IsZero():
		return fmt.Sprintf("You spent %s today.", core.FormatAmount(today))
	case today.GreaterThan(yesterday):
		return fmt.Sprintf("You spent %s today, %s more than yesterday (%s).",
			core.FormatAmount(today), core.FormatAmount(today.Sub(yesterday)), core.FormatAmount(yesterday))
	case today.LessThan(yesterday):
		return fmt.Sprintf("You spent %s today, %s less than yesterday (%s). Great job! 👏",
			core.FormatAmount(today), core.FormatAmount(yesterday.Sub(today)), core.FormatAmount(yesterday))
	default:
		return fmt.Sprintf("You spent %s today, same as yesterday.", core.FormatAmount(today))
	}
}

// NextTrigger returns the first 22:00 at or after now, in now's location.
func NextTrigger(now time.Time) time.Time {
	// Schedule.Next is strictly after its argument, at second granularity.
	return daily.Next(now.Add(-time.Nanosecond))
}

// Decision is everything the notification service needs to (re)arm the
// daily reminder.
type Decision struct {
	Enabled bool
	Hour    int
	Minute  int
	At      time.Time
	Message Message
}

// Plan decides the reminder for the given settings and totals. A disabled
// decision still carries the message so callers can preview it.
func Plan(s core.Settings, b analytics.Bundle, now time.Time) Decision {
	return Decision{
		Enabled: s.NotificationsEnabled,
		Hour:    Hour,
		Minute:  Minute,
		At:      NextTrigger(now),
		Message: Compose(b),
	}
}
