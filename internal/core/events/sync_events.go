package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionChanged = "transaction.changed"
	EventTypeIdentityChanged    = "identity.changed"
	EventTypeNotification       = "notification.emitted"
)

// TransactionChangedEvent is published after every committed write to the
// transaction store. The change feed fans these out to per-owner watchers.
type TransactionChangedEvent struct {
	BaseEvent
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	ChangeKind    string `json:"change_kind"`
}

const (
	ChangeKindCreated = "created"
	ChangeKindUpdated = "updated"
	ChangeKindDeleted = "deleted"
)

func NewTransactionChangedEvent(transactionID, userID, changeKind string) *TransactionChangedEvent {
	return &TransactionChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransactionChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id": transactionID,
				"user_id":        userID,
				"change_kind":    changeKind,
			},
		},
		TransactionID: transactionID,
		UserID:        userID,
		ChangeKind:    changeKind,
	}
}

// IdentityChangedEvent is published after admin mutations so listeners can
// refresh the roster.
type IdentityChangedEvent struct {
	BaseEvent
	IdentityID string `json:"identity_id"`
	ChangeKind string `json:"change_kind"`
}

func NewIdentityChangedEvent(identityID, changeKind string) *IdentityChangedEvent {
	return &IdentityChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeIdentityChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"identity_id": identityID,
				"change_kind": changeKind,
			},
		},
		IdentityID: identityID,
		ChangeKind: changeKind,
	}
}

type NotificationEvent struct {
	BaseEvent
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func NewNotificationEvent(message, severity string) *NotificationEvent {
	return &NotificationEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeNotification,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"message":  message,
				"severity": severity,
			},
		},
		Message:  message,
		Severity: severity,
	}
}
