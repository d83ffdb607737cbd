package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// VoteLedger enforces one vote per (suggestion, voter) pair. Insert must be
// atomic insert-if-absent: concurrent casts from distinct voters run in
// parallel, and a duplicate pair is reported (inserted=false), never
// double-counted and never an error.
type VoteLedger interface {
	Insert(ctx context.Context, vote domain.Vote) (inserted bool, err error)
	Count(ctx context.Context, suggestionID string) (int, error)
}

type voteRepository struct {
	pool *pgxpool.Pool
}

// NewVoteRepository instantiates the Postgres-backed ledger. Uniqueness is
// the primary key on (suggestion_id, voter_identity).
func NewVoteRepository(pool *pgxpool.Pool) VoteLedger {
	return &voteRepository{pool: pool}
}

func (r *voteRepository) Insert(ctx context.Context, vote domain.Vote) (bool, error) {
	const query = `
        INSERT INTO suggestion_votes (suggestion_id, voter_identity, cast_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (suggestion_id, voter_identity) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, vote.SuggestionID, vote.VoterIdentity, vote.CastAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *voteRepository) Count(ctx context.Context, suggestionID string) (int, error) {
	const query = `SELECT COUNT(*) FROM suggestion_votes WHERE suggestion_id=$1`
	var count int
	if err := r.pool.QueryRow(ctx, query, suggestionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
