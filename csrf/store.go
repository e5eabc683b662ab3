package csrf

import (
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/routegate/routegate/internal"
)

// ErrAuthorityUnavailable is returned when Redis cannot be reached or answers
// with a transport-level failure.
var ErrAuthorityUnavailable = errors.New("csrf authority unavailable")

// ErrTokenMismatch is returned when the presented token is not the user's
// current token. Absence and mismatch are deliberately indistinguishable.
var ErrTokenMismatch = errors.New("csrf token mismatch")

const (
	recordVersionV1 = 1
	recordSize      = 41 // version(1) + issuedAt(8) + hash(32)
	hashOffset      = 9
)

const (
	rotateStatusNotFound    int64 = 0
	rotateStatusMismatch    int64 = 1
	rotateStatusRotated     int64 = 2
	rotateStatusInvalidBlob int64 = 3
)

const rotateTokenScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if #data ~= 41 or string.byte(data, 1) ~= 1 then
  return 3
end
local stored_hash = string.sub(data, 10, 41)
if stored_hash ~= ARGV[1] then
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 2
`

var rotateTokenLua = redis.NewScript(rotateTokenScript)

// Authority is the Redis-backed CSRF token authority. Each user holds at most
// one active token; issuing or rotating atomically supersedes the prior one.
// Only the SHA-256 hash of a token is ever persisted.
type Authority struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewAuthority creates a token [Authority] backed by the given Redis client.
// prefix sets the Redis key namespace; ttl bounds the lifetime of each token.
func NewAuthority(redis redis.UniversalClient, prefix string, ttl time.Duration) *Authority {
	return &Authority{
		redis:  redis,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (a *Authority) key(userID string) string {
	return a.prefix + ":" + userID
}

// Issue creates a fresh token for the user and stores its hash, replacing any
// prior token in a single SET. The plaintext token is returned to the caller
// and never retained.
func (a *Authority) Issue(ctx context.Context, userID string) (string, error) {
	token, hash, err := internal.NewCSRFToken()
	if err != nil {
		return "", err
	}

	record := encodeRecord(time.Now().Unix(), hash)
	if err := a.redis.Set(ctx, a.key(userID), record, a.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}

	return token, nil
}

// Validate checks the presented token against the user's current token hash
// in constant time. It performs no writes.
func (a *Authority) Validate(ctx context.Context, userID, token string) error {
	data, err := a.redis.Get(ctx, a.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrTokenMismatch
		}
		return fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}

	storedHash, err := decodeRecord(data)
	if err != nil {
		return ErrTokenMismatch
	}

	presented := internal.HashCSRFToken(token)
	if subtle.ConstantTimeCompare(presented[:], storedHash[:]) != 1 {
		return ErrTokenMismatch
	}

	return nil
}

// Rotate atomically replaces the user's token with a fresh one, but only if
// the presented token is still current. The compare-and-swap runs as a single
// Lua script: under concurrent rotation for the same user exactly one caller
// receives the new token and every other caller gets [ErrTokenMismatch].
func (a *Authority) Rotate(ctx context.Context, userID, presented string) (string, error) {
	next, nextHash, err := internal.NewCSRFToken()
	if err != nil {
		return "", err
	}

	presentedHash := internal.HashCSRFToken(presented)
	record := encodeRecord(time.Now().Unix(), nextHash)

	result, err := rotateTokenLua.Run(
		ctx,
		a.redis,
		[]string{a.key(userID)},
		presentedHash[:],
		record,
		a.ttl.Milliseconds(),
	).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}

	code, ok := result.(int64)
	if !ok {
		return "", fmt.Errorf("%w: invalid rotate script status", ErrAuthorityUnavailable)
	}

	switch code {
	case rotateStatusNotFound, rotateStatusMismatch, rotateStatusInvalidBlob:
		return "", ErrTokenMismatch
	case rotateStatusRotated:
		return next, nil
	default:
		return "", fmt.Errorf("%w: unknown rotate script status", ErrAuthorityUnavailable)
	}
}

// Revoke deletes the user's current token. Revoking an absent token is a no-op.
func (a *Authority) Revoke(ctx context.Context, userID string) error {
	if err := a.redis.Del(ctx, a.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}
	return nil
}

func encodeRecord(issuedAt int64, hash [32]byte) []byte {
	record := make([]byte, recordSize)
	record[0] = recordVersionV1
	binary.BigEndian.PutUint64(record[1:hashOffset], uint64(issuedAt))
	copy(record[hashOffset:], hash[:])
	return record
}

func decodeRecord(data []byte) ([32]byte, error) {
	var hash [32]byte
	if len(data) != recordSize || data[0] != recordVersionV1 {
		return hash, errors.New("invalid csrf record")
	}
	copy(hash[:], data[hashOffset:])
	return hash, nil
}
