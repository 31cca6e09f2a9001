package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusDone       TicketStatus = "done"
)

// TicketStatuses lists every recognized status, in lifecycle order.
var TicketStatuses = []TicketStatus{TicketStatusNew, TicketStatusInProgress, TicketStatusDone}

// ParseTicketStatus validates a raw status string against the closed set.
func ParseTicketStatus(raw string) (TicketStatus, error) {
	for _, status := range TicketStatuses {
		if raw == string(status) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid status %q, must be one of: %s", raw, allowedStatuses())
}

// Valid reports whether the status belongs to the closed set.
func (s TicketStatus) Valid() bool {
	_, err := ParseTicketStatus(string(s))
	return err == nil
}

func allowedStatuses() string {
	names := make([]string, 0, len(TicketStatuses))
	for _, status := range TicketStatuses {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

// Ticket is the aggregate for support requests. CreatedAt is assigned by the
// store at insert time and never changes; OwnerID is immutable after creation.
type Ticket struct {
	ID          int64
	Topic       string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	OwnerID     int64
}
