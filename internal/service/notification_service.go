package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/config"
	"github.com/spec-kit/maintenance-service/internal/events"
)

// Notification is a queued outbound message derived from a domain event.
type Notification struct {
	EventType events.EventType
	TicketID  int64
	Subject   string
}

// NotificationService translates domain events into queued notifications.
// Delivery is drained asynchronously by the notification worker so event
// publication never blocks on external channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	queue      chan Notification
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		queue:      make(chan Notification, size),
	}
}

// Queue exposes the outbound channel for the worker.
func (n *NotificationService) Queue() <-chan Notification {
	return n.queue
}

// RegisterHandlers subscribes to the event types that produce notifications.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.enqueue("a ticket was opened"))
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.enqueue("a ticket changed status"))
	n.dispatcher.Subscribe(events.EventBidPlaced, n.enqueue("a vendor placed a bid"))
	n.dispatcher.Subscribe(events.EventBidResolved, n.enqueue("a bid was resolved"))
	n.dispatcher.Subscribe(events.EventWorkOrderSubmitted, n.enqueue("a work order was submitted"))
	n.dispatcher.Subscribe(events.EventInvoiceSent, n.enqueue("an invoice was sent"))
	n.dispatcher.Subscribe(events.EventInvoicePaid, n.enqueue("an invoice was paid"))
}

func (n *NotificationService) enqueue(subject string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		notification := Notification{
			EventType: event.Type,
			TicketID:  event.TicketID,
			Subject:   subject,
		}
		select {
		case n.queue <- notification:
		default:
			n.logger.Warn("notification queue full; dropping",
				zap.String("event_type", string(event.Type)),
				zap.Int64("ticket_id", event.TicketID))
		}
		return nil
	}
}

// Deliver sends one notification through the configured stub channels.
func (n *NotificationService) Deliver(ctx context.Context, notification Notification) {
	n.logger.Info("notification",
		zap.String("event_type", string(notification.EventType)),
		zap.Int64("ticket_id", notification.TicketID),
		zap.String("subject", notification.Subject))

	if n.cfg.EmailFrom != "" {
		n.logger.Debug("email notification stub",
			zap.String("from", n.cfg.EmailFrom),
			zap.String("subject", fmt.Sprintf("[MNT] %s", notification.Subject)))
	}
	if n.cfg.WebhookURL != "" {
		n.logger.Debug("webhook notification stub",
			zap.String("url", n.cfg.WebhookURL),
			zap.String("event_type", string(notification.EventType)))
	}
}
