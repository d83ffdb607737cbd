package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/complaint-engine/internal/domain"
)

// redisVoteLedger stores voter identities in one Redis set per suggestion.
// SADD is the atomic insert-if-absent, so the composite-key invariant holds
// across service instances without any application-side locking.
type redisVoteLedger struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisVoteLedger instantiates the Redis-backed ledger.
func NewRedisVoteLedger(client *redis.Client, keyPrefix string) VoteLedger {
	if keyPrefix == "" {
		keyPrefix = "votes"
	}
	return &redisVoteLedger{client: client, keyPrefix: keyPrefix}
}

func (l *redisVoteLedger) Insert(ctx context.Context, vote domain.Vote) (bool, error) {
	key := l.key(vote.SuggestionID)
	added, err := l.client.SAdd(ctx, key, vote.VoterIdentity).Result()
	if err != nil {
		return false, fmt.Errorf("record vote for %s: %w", vote.SuggestionID, err)
	}
	return added == 1, nil
}

func (l *redisVoteLedger) Count(ctx context.Context, suggestionID string) (int, error) {
	count, err := l.client.SCard(ctx, l.key(suggestionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count votes for %s: %w", suggestionID, err)
	}
	return int(count), nil
}

func (l *redisVoteLedger) key(suggestionID string) string {
	return fmt.Sprintf("%s:%s", l.keyPrefix, suggestionID)
}
