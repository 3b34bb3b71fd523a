package models

import "time"

// Event types published after commit
const (
	EventTypeTicketIssued    = "TICKET_ISSUED"
	EventTypeOrderCompleted  = "ORDER_COMPLETED"
	EventTypeOrderPaid       = "ORDER_PAID"
	EventTypeTicketCancelled = "TICKET_CANCELLED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketIssuedEvent is published once per ticket after a registration commits.
// The notification worker turns it into a confirmation email.
type TicketIssuedEvent struct {
	BaseEvent
	OrderReference   string `json:"order_reference"`
	TicketID         int64  `json:"ticket_id"`
	EventName        string `json:"event_name"`
	OrganiserName    string `json:"organiser_name"`
	OrganiserEmail   string `json:"organiser_email"`
	DistanceName     string `json:"distance_name"`
	ParticipantName  string `json:"participant_name"`
	ParticipantEmail string `json:"participant_email"`
	Amount           string `json:"amount"`
}

// OrderCompletedEvent is published once per registration after commit.
type OrderCompletedEvent struct {
	BaseEvent
	OrderReference string `json:"order_reference"`
	OrderID        int64  `json:"order_id"`
	EventName      string `json:"event_name"`
	TicketCount    int    `json:"ticket_count"`
	TotalAmount    string `json:"total_amount"`
}

// OrderPaidEvent is published when a payment webhook confirms an order.
type OrderPaidEvent struct {
	BaseEvent
	OrderReference string `json:"order_reference"`
	OrderID        int64  `json:"order_id"`
	TotalAmount    string `json:"total_amount"`
}

// TicketCancelledEvent is published when a ticket is cancelled and its
// capacity slot and stock have been released.
type TicketCancelledEvent struct {
	BaseEvent
	TicketID       int64  `json:"ticket_id"`
	OrderReference string `json:"order_reference"`
	DistanceID     int64  `json:"distance_id"`
}
