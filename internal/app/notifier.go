package app

import (
	"context"

	"github.com/editlance/reconciliation-service/internal/domain"
	"github.com/editlance/reconciliation-service/pkg/rabbitmq"
)

// NotificationsExchange is the topic exchange the notification-service binds to.
const NotificationsExchange = "editlance.notifications"

var eventRoutingKeys = map[string]string{
	domain.EventPaymentRefunded: "notification.payment.refunded",
	domain.EventEditorWarning:   "notification.editor.warning",
	domain.EventEditorSuspended: "notification.editor.suspended",
}

// EventNotifier publishes compensation events to RabbitMQ for in-app
// notification fan-out.
type EventNotifier struct {
	producer rabbitmq.Publisher
}

// NewEventNotifier creates a notifier backed by the given producer.
func NewEventNotifier(producer rabbitmq.Publisher) *EventNotifier {
	return &EventNotifier{producer: producer}
}

// Emit publishes a single notification event. Delivery is at-most-once.
func (n *EventNotifier) Emit(ctx context.Context, event domain.NotificationEvent) error {
	routingKey, ok := eventRoutingKeys[event.Type]
	if !ok {
		routingKey = "notification.generic"
	}
	return n.producer.Publish(ctx, NotificationsExchange, routingKey, event)
}
