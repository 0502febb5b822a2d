package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification event types emitted by the reconciliation sweeps.
const (
	EventPaymentRefunded = "PAYMENT_REFUNDED"
	EventEditorWarning   = "EDITOR_WARNING"
	EventEditorSuspended = "EDITOR_SUSPENDED"
)

// NotificationEvent is the message published to the notification exchange
// whenever a compensation action is applied. Delivery is at-most-once; the
// notification-service consumes these and materializes in-app notifications.
type NotificationEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Type        string    `json:"type"`
	RecipientID uuid.UUID `json:"recipient_id"`
	QuotationID uuid.UUID `json:"quotation_id"`
	Message     string    `json:"message"`
	OccurredAt  time.Time `json:"occurred_at"`
}
