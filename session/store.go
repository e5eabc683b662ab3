package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/routegate/routegate/internal"
)

// ErrRegistryUnavailable is returned when Redis cannot be reached or answers
// with a transport-level failure.
var ErrRegistryUnavailable = errors.New("session registry unavailable")

const deleteSessionScript = `
local existed = redis.call("EXISTS", KEYS[1])
redis.call("SREM", KEYS[2], ARGV[1])
if existed == 1 then
  redis.call("DEL", KEYS[1])
end
return existed
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

// Registry is the Redis-backed session registry. It persists fingerprint-bound
// session records and answers read-only resolution queries.
//
// Unknown, expired, and fingerprint-mismatched sessions are indistinguishable:
// every such lookup returns [redis.Nil].
type Registry struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRegistry creates a session [Registry] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewRegistry(redis redis.UniversalClient, prefix string) *Registry {
	return &Registry{
		redis:  redis,
		prefix: prefix,
	}
}

func (r *Registry) key(sessionID string) string {
	return r.prefix + ":" + sessionID
}

func (r *Registry) userKey(userID string) string {
	return r.prefix + ":u:" + userID
}

// Save persists a [Session] and indexes it under its user.
func (r *Registry) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	sessionKey := r.key(sess.SessionID)
	userKey := r.userKey(sess.UserID)

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey, data, ttl)
		pipe.SAdd(ctx, userKey, sess.SessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	return nil
}

// Resolve fetches a session by ID and verifies the presented device
// fingerprint against the bound hash in constant time.
//
// The lookup is strictly read-only: no TTL refresh, no lazy deletion, no
// index mutation on either outcome. A missing record, a corrupt blob, a
// stored expiry in the past, and a fingerprint mismatch all return
// [redis.Nil] so that callers cannot distinguish them.
func (r *Registry) Resolve(ctx context.Context, sessionID, fingerprint string) (*Session, error) {
	data, err := r.redis.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, redis.Nil
	}
	sess.SessionID = sessionID

	if time.Now().Unix() >= sess.ExpiresAt {
		return nil, redis.Nil
	}

	presented := internal.HashFingerprint(fingerprint)
	if subtle.ConstantTimeCompare(presented[:], sess.FingerprintHash[:]) != 1 {
		return nil, redis.Nil
	}

	return sess, nil
}

// Delete removes a session record and its user index entry atomically.
// Deleting an unknown session is a no-op.
func (r *Registry) Delete(ctx context.Context, sessionID string) error {
	data, err := r.redis.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		// Corrupt blob: drop the key anyway, the index entry is unknowable.
		if delErr := r.redis.Del(ctx, r.key(sessionID)).Err(); delErr != nil {
			return fmt.Errorf("%w: %v", ErrRegistryUnavailable, delErr)
		}
		return nil
	}

	return r.deleteSessionAndIndex(ctx, sess.UserID, sessionID)
}

// DeleteAllForUser removes every indexed session for a user.
//
// ATOMICITY NOTE: the read of the index set and the deletion are separate
// phases. A session created between them is not captured and will expire
// naturally or be caught by a later call.
func (r *Registry) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := r.userKey(userID)

	sessionIDs, err := r.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	sessionKeys := make([]string, 0, len(sessionIDs))
	for _, sessionID := range sessionIDs {
		sessionKeys = append(sessionKeys, r.key(sessionID))
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(sessionKeys) > 0 {
			pipe.Del(ctx, sessionKeys...)
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	return nil
}

// ActiveSessionIDs returns tracked session IDs for a user.
func (r *Registry) ActiveSessionIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.redis.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return ids, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (r *Registry) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return time.Since(start), nil
}

func (r *Registry) deleteSessionAndIndex(ctx context.Context, userID, sessionID string) error {
	key := r.key(sessionID)
	userKey := r.userKey(userID)

	_, err := deleteSessionLua.Run(ctx, r.redis, []string{key, userKey}, sessionID).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	return nil
}
