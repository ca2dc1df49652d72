package amqp

import (
	"encoding/json"
	"time"

	"dailyspend/internal/reminder"
)

// ReminderMessage is the payload published for every reminder delivery.
// Consumers (a push bridge, a mail relay) render Title and Body as they like.
type ReminderMessage struct {
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// NewReminderMessage stamps msg with the current time
func NewReminderMessage(msg reminder.Message) *ReminderMessage {
	return &ReminderMessage{
		Title:     msg.Title,
		Body:      msg.Body,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderMessageFromJSON creates a message from JSON bytes
func ReminderMessageFromJSON(data []byte) (*ReminderMessage, error) {
	var msg ReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
