package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/repository"
	"storefront/internal/errors"

	"github.com/redis/go-redis/v9"
)

const pendingKeyPrefix = "storefront:register:pending:"

// incrementAttemptsScript bumps the attempt counter only while the pending sign-up
// exists and keeps both keys expiring together. It returns -1 when nothing is pending.
var incrementAttemptsScript = redis.NewScript(`
local ttl = redis.call('PTTL', KEYS[1])
if ttl <= 0 then
  return -1
end
local n = redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ttl)
return n
`)

type pendingRegistrationStore struct {
	client redis.UniversalClient
}

// NewPendingRegistrationStore is the constructor for the Redis pending sign-up store.
func NewPendingRegistrationStore(client *redis.Client) repository.PendingRegistrationStore {
	return &pendingRegistrationStore{client: client}
}

func pendingKey(email string) string {
	return pendingKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

func attemptsKey(email string) string {
	return pendingKey(email) + ":attempts"
}

// Put replaces any earlier sign-up for the same email and resets its attempts.
func (s *pendingRegistrationStore) Put(ctx context.Context, pending *entity.PendingRegistration, ttl time.Duration) error {
	raw, err := json.Marshal(pending)
	if err != nil {
		return errors.Wrap(err, "encode pending registration")
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, pendingKey(pending.Email), raw, ttl)
		pipe.Del(ctx, attemptsKey(pending.Email))

		return nil
	})

	return errors.Wrap(err, "store pending registration")
}

// Get returns nil, nil when the sign-up is unknown or expired.
func (s *pendingRegistrationStore) Get(ctx context.Context, email string) (*entity.PendingRegistration, error) {
	values, err := s.client.MGet(ctx, pendingKey(email), attemptsKey(email)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "load pending registration")
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, nil
	}

	var pending entity.PendingRegistration
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, errors.Wrap(err, "decode pending registration")
	}

	if attempts, ok := values[1].(string); ok {
		if n, convErr := strconv.Atoi(attempts); convErr == nil {
			pending.Attempts = n
		}
	}

	return &pending, nil
}

// IncrementAttempts returns 0 when the sign-up has already expired.
func (s *pendingRegistrationStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	n, err := incrementAttemptsScript.Run(ctx, s.client, []string{pendingKey(email), attemptsKey(email)}).Int()
	if err != nil {
		return 0, errors.Wrap(err, "increment verification attempts")
	}
	if n < 0 {
		return 0, nil
	}

	return n, nil
}

func (s *pendingRegistrationStore) Delete(ctx context.Context, email string) error {
	return errors.Wrap(s.client.Del(ctx, pendingKey(email), attemptsKey(email)).Err(), "delete pending registration")
}

