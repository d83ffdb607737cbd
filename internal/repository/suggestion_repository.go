package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// SuggestionRepository encapsulates suggestion persistence. Update is a
// compare-and-swap keyed on the current workflow status.
type SuggestionRepository interface {
	Insert(ctx context.Context, suggestion *domain.Suggestion) error
	GetByID(ctx context.Context, id string) (*domain.Suggestion, error)
	Update(ctx context.Context, suggestion *domain.Suggestion, expected domain.SuggestionStatus) error
	List(ctx context.Context, limit, offset int) ([]domain.Suggestion, error)
	LastSequence(ctx context.Context, year int) (uint64, error)
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository instantiates the Postgres-backed repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

func (r *suggestionRepository) Insert(ctx context.Context, suggestion *domain.Suggestion) error {
	const query = `
        INSERT INTO suggestions (id, author_name, author_email, title, description, category, status, created_at, voting_opens_at, voting_closes_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query,
		suggestion.ID,
		suggestion.Author.Name,
		suggestion.Author.Email,
		suggestion.Title,
		suggestion.Description,
		suggestion.Category,
		suggestion.Status,
		suggestion.CreatedAt,
		suggestion.VotingOpensAt,
		suggestion.VotingClosesAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateID
	}
	return nil
}

func (r *suggestionRepository) GetByID(ctx context.Context, id string) (*domain.Suggestion, error) {
	const query = `
        SELECT id, author_name, author_email, title, description, category, status, created_at, voting_opens_at, voting_closes_at
        FROM suggestions WHERE id=$1`
	var suggestion domain.Suggestion
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&suggestion.ID,
		&suggestion.Author.Name,
		&suggestion.Author.Email,
		&suggestion.Title,
		&suggestion.Description,
		&suggestion.Category,
		&suggestion.Status,
		&suggestion.CreatedAt,
		&suggestion.VotingOpensAt,
		&suggestion.VotingClosesAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &suggestion, nil
}

func (r *suggestionRepository) Update(ctx context.Context, suggestion *domain.Suggestion, expected domain.SuggestionStatus) error {
	const query = `
        UPDATE suggestions SET status=$1, voting_opens_at=$2, voting_closes_at=$3
        WHERE id=$4 AND status=$5`
	cmd, err := r.pool.Exec(ctx, query,
		suggestion.Status,
		suggestion.VotingOpensAt,
		suggestion.VotingClosesAt,
		suggestion.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM suggestions WHERE id=$1)`, suggestion.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *suggestionRepository) List(ctx context.Context, limit, offset int) ([]domain.Suggestion, error) {
	query := `
        SELECT id, author_name, author_email, title, description, category, status, created_at, voting_opens_at, voting_closes_at
        FROM suggestions ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		var suggestion domain.Suggestion
		if err := rows.Scan(
			&suggestion.ID,
			&suggestion.Author.Name,
			&suggestion.Author.Email,
			&suggestion.Title,
			&suggestion.Description,
			&suggestion.Category,
			&suggestion.Status,
			&suggestion.CreatedAt,
			&suggestion.VotingOpensAt,
			&suggestion.VotingClosesAt,
		); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, rows.Err()
}

func (r *suggestionRepository) LastSequence(ctx context.Context, year int) (uint64, error) {
	const query = `
        SELECT COALESCE(MAX(SUBSTRING(id FROM 10)::bigint), 0)
        FROM suggestions WHERE id LIKE $1`
	var last int64
	pattern := fmt.Sprintf("SUG-%d-%%", year)
	if err := r.pool.QueryRow(ctx, query, pattern).Scan(&last); err != nil {
		return 0, err
	}
	return uint64(last), nil
}
