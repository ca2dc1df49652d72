// Package telegram delivers reminders as Telegram chat messages.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dailyspend/internal/log"
	"dailyspend/internal/reminder"
)

var ErrNoChat = errors.New("telegram chat id not configured")

// Sender posts reminders to a single chat.
type Sender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *log.Logger
}

// New connects to the Bot API with token and verifies it.
func New(token string, chatID int64, logger *log.Logger) (*Sender, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, http.DefaultClient, chatID, logger)
}

// NewWithEndpoint is New against a custom Bot API endpoint, which must be a
// format string taking the token and the method name.
func NewWithEndpoint(token, endpoint string, client *http.Client, chatID int64, logger *log.Logger) (*Sender, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	s := &Sender{
		bot:    bot,
		chatID: chatID,
		logger: logger.WithComponent(log.ComponentTelegram),
	}
	s.logger.Info("Telegram bot connected", "bot", bot.Self.UserName)
	return s, nil
}

func (s *Sender) Name() string { return "telegram" }

// Ready checks the chat id and that the bot token is still accepted.
func (s *Sender) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.chatID == 0 {
		return ErrNoChat
	}
	if _, err := s.bot.GetMe(); err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	return nil
}

func (s *Sender) Send(ctx context.Context, msg reminder.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.chatID == 0 {
		return ErrNoChat
	}

	m := tgbotapi.NewMessage(s.chatID, formatMessage(msg))
	sent, err := s.bot.Send(m)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	s.logger.DebugContext(ctx, "Reminder sent",
		log.FieldOperation, log.OpDeliver,
		"chat_id", s.chatID,
		"message_id", sent.MessageID)
	return nil
}

func formatMessage(msg reminder.Message) string {
	if msg.Title == "" {
		return msg.Body
	}
	return msg.Title + "\n\n" + msg.Body
}
