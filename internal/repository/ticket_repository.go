package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// TicketFilter captures dashboard search parameters.
type TicketFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	District    *string
	BreachedBy  *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence. UpdateStatus is a
// compare-and-swap keyed on the ticket's current status: it fails with
// ErrStatusConflict when a concurrent transition won, so callers can
// re-read and re-evaluate instead of silently losing updates.
type TicketRepository interface {
	Insert(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	LastSequence(ctx context.Context, year int) (uint64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (id, category, priority, reporter_name, reporter_phone, reporter_email,
            latitude, longitude, address, city, district, pincode, description, status, created_at, sla_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        ON CONFLICT (id) DO NOTHING`
	cmd, err := tx.Exec(ctx, query,
		ticket.ID,
		ticket.Category,
		ticket.Priority,
		ticket.Reporter.Name,
		ticket.Reporter.Phone,
		ticket.Reporter.Email,
		ticket.Location.Latitude,
		ticket.Location.Longitude,
		ticket.Location.Address,
		ticket.Location.City,
		ticket.Location.District,
		ticket.Location.Pincode,
		ticket.Description,
		ticket.Status,
		ticket.CreatedAt,
		ticket.SLADeadline,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateID
	}
	if err := insertEvents(ctx, tx, ticket.ID, ticket.Timeline); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, category, priority, reporter_name, reporter_phone, reporter_email,
               latitude, longitude, address, city, district, pincode, description, status, created_at, sla_deadline
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Reporter.Name,
		&ticket.Reporter.Phone,
		&ticket.Reporter.Email,
		&ticket.Location.Latitude,
		&ticket.Location.Longitude,
		&ticket.Location.Address,
		&ticket.Location.City,
		&ticket.Location.District,
		&ticket.Location.Pincode,
		&ticket.Description,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.SLADeadline,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	timeline, err := r.loadTimeline(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.Timeline = timeline
	return &ticket, nil
}

// UpdateStatus applies a transition only when the stored status still
// matches expected, and appends the new timeline entries in the same
// transaction.
func (r *ticketRepository) UpdateStatus(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `UPDATE tickets SET status=$1 WHERE id=$2 AND status=$3`
	cmd, err := tx.Exec(ctx, query, ticket.Status, ticket.ID, expected)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}

	var have int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM ticket_status_events WHERE ticket_id=$1`, ticket.ID).Scan(&have); err != nil {
		return err
	}
	if have < len(ticket.Timeline) {
		if err := insertEvents(ctx, tx, ticket.ID, ticket.Timeline[have:]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, category, priority, reporter_name, reporter_phone, reporter_email,
                    latitude, longitude, address, city, district, pincode, description, status, created_at, sla_deadline
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, cat := range filter.Categories {
			args = append(args, cat)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.District != nil {
		args = append(args, *filter.District)
		clauses = append(clauses, fmt.Sprintf("district=$%d", len(args)))
	}
	if filter.BreachedBy != nil {
		args = append(args, *filter.BreachedBy)
		clauses = append(clauses, fmt.Sprintf("status <> 'RESOLVED' AND sla_deadline < $%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := base + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Category,
			&ticket.Priority,
			&ticket.Reporter.Name,
			&ticket.Reporter.Phone,
			&ticket.Reporter.Email,
			&ticket.Location.Latitude,
			&ticket.Location.Longitude,
			&ticket.Location.Address,
			&ticket.Location.City,
			&ticket.Location.District,
			&ticket.Location.Pincode,
			&ticket.Description,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.SLADeadline,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// LastSequence returns the highest issued sequence number for the year, so
// in-memory counters can be re-seeded after a restart.
func (r *ticketRepository) LastSequence(ctx context.Context, year int) (uint64, error) {
	const query = `
        SELECT COALESCE(MAX(SUBSTRING(id FROM 10)::bigint), 0)
        FROM tickets WHERE id LIKE $1`
	var last int64
	pattern := fmt.Sprintf("CMP-%d-%%", year)
	if err := r.pool.QueryRow(ctx, query, pattern).Scan(&last); err != nil {
		return 0, err
	}
	return uint64(last), nil
}

func (r *ticketRepository) loadTimeline(ctx context.Context, ticketID string) ([]domain.StatusEvent, error) {
	const query = `
        SELECT status, occurred_at, note
        FROM ticket_status_events WHERE ticket_id=$1
        ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []domain.StatusEvent{}
	for rows.Next() {
		var event domain.StatusEvent
		if err := rows.Scan(&event.Status, &event.Timestamp, &event.Note); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func insertEvents(ctx context.Context, tx pgx.Tx, ticketID string, events []domain.StatusEvent) error {
	const query = `
        INSERT INTO ticket_status_events (ticket_id, status, occurred_at, note)
        VALUES ($1,$2,$3,$4)`
	for _, event := range events {
		if _, err := tx.Exec(ctx, query, ticketID, event.Status, event.Timestamp, event.Note); err != nil {
			return err
		}
	}
	return nil
}
