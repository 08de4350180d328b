package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AssertionsStore remembers redeemed OTP assertion ids and accepted
// authenticator time steps.
type AssertionsStore struct {
	client *redis.Client
	prefix string
}

// NewAssertionsStore creates a new Redis assertion store.
func NewAssertionsStore(client *redis.Client, prefix string) *AssertionsStore {
	return &AssertionsStore{client: client, prefix: prefix}
}

// MarkUsed records id until ttl passes. It returns false if id was already
// recorded.
func (s *AssertionsStore) MarkUsed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.SetNX(ctx, s.prefix+"otp_assertion:"+id, 1, ttl).Result()
}

// MarkTOTPStepUsed records that the authenticator code for step was accepted
// for userID. It returns false if the step was already recorded.
func (s *AssertionsStore) MarkTOTPStepUsed(ctx context.Context, userID uuid.UUID, step int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	key := fmt.Sprintf("%stotp:%s:%d", s.prefix, userID, step)
	return s.client.SetNX(ctx, key, 1, ttl).Result()
}
