package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/contextauth/pkg/domain"
)

// putCodeScript replaces the code for a (user, purpose) key and keeps the
// reverse index from code to user in step. It returns 0 without writing
// anything if the code is already indexed for another user.
//
// KEYS[1] code hash, KEYS[2] new lookup key
// ARGV[1] code, ARGV[2] user id, ARGV[3] expires_at (unix ms, 0 = never),
// ARGV[4] lookup key prefix
var putCodeScript = redis.NewScript(`
local owner = redis.call('GET', KEYS[2])
if owner and owner ~= ARGV[2] then
	return 0
end
local old = redis.call('HGET', KEYS[1], 'code')
if old then
	local oldKey = ARGV[4] .. old
	if redis.call('GET', oldKey) == ARGV[2] then
		redis.call('DEL', oldKey)
	end
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'code', ARGV[1], 'expires_at', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2])
local exp = tonumber(ARGV[3])
if exp > 0 then
	redis.call('PEXPIREAT', KEYS[1], exp)
	redis.call('PEXPIREAT', KEYS[2], exp)
end
return 1
`)

// consumeCodeScript deletes the code iff it matches and has not expired.
//
// KEYS[1] code hash, KEYS[2] lookup key
// ARGV[1] code, ARGV[2] now (unix ms), ARGV[3] user id
var consumeCodeScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'code')
if not stored or stored ~= ARGV[1] then
	return 0
end
local exp = tonumber(redis.call('HGET', KEYS[1], 'expires_at') or '0')
if exp > 0 and tonumber(ARGV[2]) >= exp then
	return 0
end
redis.call('DEL', KEYS[1])
if redis.call('GET', KEYS[2]) == ARGV[3] then
	redis.call('DEL', KEYS[2])
end
return 1
`)

// CodesStore keeps one-time codes in Redis.
type CodesStore struct {
	client *redis.Client
	prefix string
}

// NewCodesStore creates a new Redis code store. Keys are namespaced with
// prefix.
func NewCodesStore(client *redis.Client, prefix string) *CodesStore {
	return &CodesStore{client: client, prefix: prefix}
}

func (s *CodesStore) codeKey(userID uuid.UUID, purpose domain.CodePurpose) string {
	return fmt.Sprintf("%scode:%s:%s", s.prefix, purpose, userID)
}

func (s *CodesStore) lookupPrefix(purpose domain.CodePurpose) string {
	return fmt.Sprintf("%scode_lookup:%s:", s.prefix, purpose)
}

// Put stores code, replacing any unconsumed code for the same user and purpose.
// It returns domain.ErrCodeCollision if another user holds the same code for
// the purpose.
func (s *CodesStore) Put(ctx context.Context, code *domain.OneTimeCode) error {
	var expiresAt int64
	if code.ExpiresAt != nil {
		expiresAt = code.ExpiresAt.UnixMilli()
	}

	prefix := s.lookupPrefix(code.Purpose)
	keys := []string{s.codeKey(code.UserID, code.Purpose), prefix + code.Code}
	n, err := putCodeScript.Run(ctx, s.client, keys,
		code.Code, code.UserID.String(), strconv.FormatInt(expiresAt, 10), prefix,
	).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCodeCollision
	}
	return nil
}

// Consume deletes the code and returns true iff it matches and has not
// expired at now.
func (s *CodesStore) Consume(ctx context.Context, userID uuid.UUID, purpose domain.CodePurpose, code string, now time.Time) (bool, error) {
	keys := []string{s.codeKey(userID, purpose), s.lookupPrefix(purpose) + code}
	n, err := consumeCodeScript.Run(ctx, s.client, keys,
		code, strconv.FormatInt(now.UnixMilli(), 10), userID.String(),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// LookupByCode returns the user an unconsumed code was issued to.
func (s *CodesStore) LookupByCode(ctx context.Context, purpose domain.CodePurpose, code string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, s.lookupPrefix(purpose)+code).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, domain.ErrCodeNotFound
	}
	return userID, nil
}

// Throttle returns false if key was marked within window and marks it
// otherwise.
func (s *CodesStore) Throttle(ctx context.Context, key string, window time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+"throttle:"+key, 1, window).Result()
}
