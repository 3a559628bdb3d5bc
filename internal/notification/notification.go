package notification

import (
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

func newNotification(message string, severity Severity) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
}

// Notifier is the sink services report outcomes to. Every operation
// notifies on success and on failure.
type Notifier interface {
	Notify(message string, severity Severity)
}
