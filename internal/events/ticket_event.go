package events

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Broker topology names. Publisher and consumer must agree on all three;
// changing any one of them breaks delivery silently.
const (
	TicketsExchange  = "tickets_exchange"
	TicketsQueue     = "tickets_queue"
	TicketCreatedKey = "ticket.created"
)

// TicketEvent is the wire payload announcing a persisted ticket. It is a
// point-in-time snapshot of the submitted fields, not a live reference:
// consumers must not assume it reflects later status transitions.
type TicketEvent struct {
	Topic       string              `json:"topic"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	Owner       int64               `json:"owner"`
}

// NewTicketEvent snapshots a persisted ticket for publication.
func NewTicketEvent(ticket *domain.Ticket) TicketEvent {
	return TicketEvent{
		Topic:       ticket.Topic,
		Description: ticket.Description,
		Status:      ticket.Status,
		Owner:       ticket.OwnerID,
	}
}

// Encode serializes the event for transport.
func (e TicketEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeTicketEvent parses a wire payload, rejecting malformed bodies and
// status values outside the closed set. Both are permanent failures: the
// payload will never become valid on redelivery.
func DecodeTicketEvent(body []byte) (TicketEvent, error) {
	var event TicketEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return TicketEvent{}, fmt.Errorf("decode ticket event: %w", err)
	}
	if _, err := domain.ParseTicketStatus(string(event.Status)); err != nil {
		return TicketEvent{}, fmt.Errorf("decode ticket event: %w", err)
	}
	return event, nil
}
