package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// EventPublisher announces persisted tickets. A nil error means the broker
// confirmed receipt of the event.
type EventPublisher interface {
	PublishTicketCreated(ctx context.Context, event events.TicketEvent) error
}

// TicketService orchestrates ticket submission: validate, persist, publish.
type TicketService struct {
	tickets   repository.TicketRepository
	users     repository.UserRepository
	publisher EventPublisher
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Publisher  EventPublisher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// SubmitTicketInput describes a candidate ticket payload.
type SubmitTicketInput struct {
	Topic       string
	Description string
	Status      string
	Owner       int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:   deps.TicketRepo,
		users:     deps.UserRepo,
		publisher: deps.Publisher,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}

// SubmitTicket persists a ticket for its rightful owner and announces it on
// the broker. Persistence strictly precedes publication: a persistence
// failure aborts the whole operation and nothing is published. A publication
// failure after a successful insert leaves a persisted-but-unannounced
// ticket; the ticket is still returned to the caller and the gap is surfaced
// through the error log and the unpublished counter for later replay.
func (s *TicketService) SubmitTicket(ctx context.Context, principalID int64, input SubmitTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Topic) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("topic and description required", nil)
	}
	status, err := domain.ParseTicketStatus(input.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "status"})
	}

	if input.Owner != principalID {
		return nil, apperrors.NewForbidden("tickets can only be filed on your own behalf")
	}
	if _, err := s.users.GetByID(ctx, input.Owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown owner", map[string]any{"owner": input.Owner})
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Topic:       input.Topic,
		Description: input.Description,
		Status:      status,
		OwnerID:     input.Owner,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.metrics.TicketsSubmitted.Inc()

	if err := s.publisher.PublishTicketCreated(ctx, events.NewTicketEvent(ticket)); err != nil {
		// Dual-write gap: the ticket exists but downstream processors will
		// not see it on the event stream until an external replay runs.
		s.metrics.EventsUnpublished.Inc()
		s.logger.Error("ticket persisted but event publication failed",
			zap.Int64("ticket_id", ticket.ID),
			zap.Error(err))
		return ticket, nil
	}
	s.metrics.EventsPublished.Inc()

	s.logger.Info("ticket submitted",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("owner_id", ticket.OwnerID))
	return ticket, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListOwnTickets returns the principal's tickets, newest first.
func (s *TicketService) ListOwnTickets(ctx context.Context, principalID int64, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, principalID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}
