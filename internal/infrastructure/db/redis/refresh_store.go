package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arenaops/tournament-api/internal/core/ports"
)

// RefreshTokenStore keeps refresh token hashes in Redis.
// Key format: refresh:<sha256 of token> -> user id
type RefreshTokenStore struct {
	client *redis.Client
}

var _ ports.RefreshTokenStore = (*RefreshTokenStore)(nil)

// NewRefreshTokenStore creates a RefreshTokenStore wrapping the given client.
func NewRefreshTokenStore(client *redis.Client) *RefreshTokenStore {
	return &RefreshTokenStore{client: client}
}

// Save stores the hash with an expiry equal to the refresh token lifetime.
func (s *RefreshTokenStore) Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// Consume deletes the hash and returns its owner in a single GETDEL, so two
// concurrent redemptions of one token cannot both succeed.
func (s *RefreshTokenStore) Consume(ctx context.Context, tokenHash string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrRecordNotFound
		}
		return "", fmt.Errorf("consume refresh token: %w", err)
	}
	return userID, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, s.key(tokenHash)).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *RefreshTokenStore) key(tokenHash string) string {
	return "refresh:" + tokenHash
}
