package worker

import (
	"context"
	"log"

	"registration-service/internal/broker"
	"registration-service/internal/models"
	"registration-service/internal/notify"
	"registration-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes post-commit registration events and sends
// confirmation emails. Each send failure is logged per ticket and the message
// is committed anyway: notification delivery never blocks or rolls back
// ticket issuance.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	mailer       *notify.Mailer
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, mailer *notify.Mailer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		mailer:   mailer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnTicketIssued(w.handleTicketIssued)
	eventHandler.OnOrderCompleted(w.handleOrderCompleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleTicketIssued(ctx context.Context, event *models.TicketIssuedEvent) error {
	if err := w.mailer.SendRegistrationConfirmation(event); err != nil {
		util.NotificationsFailedTotal.Inc()
		w.logger.Error("Failed to send confirmation email",
			zap.Int64("ticket_id", event.TicketID),
			zap.String("order_reference", event.OrderReference),
			zap.Error(err))
		// Best-effort: commit the message regardless.
		return nil
	}

	util.NotificationsSentTotal.Inc()
	w.logger.Info("Confirmation email sent",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("participant_email", event.ParticipantEmail))
	return nil
}

func (w *NotificationWorker) handleOrderCompleted(ctx context.Context, event *models.OrderCompletedEvent) error {
	w.logger.Info("Order completed",
		zap.String("order_reference", event.OrderReference),
		zap.Int("tickets", event.TicketCount),
		zap.String("total_amount", event.TotalAmount))
	return nil
}
