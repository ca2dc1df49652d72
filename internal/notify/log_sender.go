package notify

import (
	"context"

	"dailyspend/internal/log"
	"dailyspend/internal/reminder"
)

// LogSender writes reminders to the structured log. It is always ready.
type LogSender struct {
	logger *log.Logger
}

func NewLogSender(logger *log.Logger) *LogSender {
	return &LogSender{logger: logger.WithComponent(log.ComponentNotify)}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Ready(context.Context) error { return nil }

func (s *LogSender) Send(ctx context.Context, msg reminder.Message) error {
	s.logger.InfoContext(ctx, "Reminder",
		log.FieldOperation, log.OpDeliver,
		log.FieldChannel, s.Name(),
		"title", msg.Title,
		"body", msg.Body)
	return nil
}
