package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Owner       int64  `json:"owner"`
}

// TicketResponse is the external view of a ticket.
type TicketResponse struct {
	ID          int64               `json:"id"`
	Topic       string              `json:"topic"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	Owner       int64               `json:"owner"`
}
