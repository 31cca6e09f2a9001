package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Implementations acquire a
// store connection for the duration of each call and release it on every exit
// path; callers never hold an ambient session.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	const query = `
        INSERT INTO tickets (topic, description, status, owner_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	return conn.QueryRow(ctx, query,
		ticket.Topic,
		ticket.Description,
		ticket.Status,
		ticket.OwnerID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	const query = `
        SELECT id, topic, description, status, created_at, owner_id
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := conn.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Topic,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.OwnerID,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Ticket, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
        SELECT id, topic, description, status, created_at, owner_id
        FROM tickets WHERE owner_id=$1
        ORDER BY id DESC LIMIT $2 OFFSET $3`

	rows, err := conn.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Topic,
			&ticket.Description,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.OwnerID,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
