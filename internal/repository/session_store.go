package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backoffice-api/internal/models"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

const sessionKeyPrefix = "session:"

const (
	fieldUserID     = "user_id"
	fieldFirstName  = "first_name"
	fieldLastName   = "last_name"
	fieldRole       = "role"
	fieldRefreshJTI = "refresh_jti"
	fieldCreatedAt  = "created_at"
)

const (
	rotateStatusNotFound int64 = 0
	rotateStatusRotated  int64 = 1
	rotateStatusConflict int64 = 2
	rotateStatusExpired  int64 = 3
)

// KEYS[1] session key
// ARGV: expected jti, next jti, now (ms), sliding ttl (ms), max lifetime (ms, 0 = none)
const rotateRefreshScript = `
local current = redis.call("HGET", KEYS[1], "refresh_jti")
if not current then
  return 0
end
if current ~= ARGV[1] then
  return 2
end

local ttl = tonumber(ARGV[4])
local max_lifetime = tonumber(ARGV[5])
if max_lifetime > 0 then
  local created_at = tonumber(redis.call("HGET", KEYS[1], "created_at") or "0")
  local remaining = created_at + max_lifetime - tonumber(ARGV[3])
  if remaining <= 0 then
    redis.call("DEL", KEYS[1])
    return 3
  end
  if remaining < ttl then
    ttl = remaining
  end
end

redis.call("HSET", KEYS[1], "refresh_jti", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ttl)
return 1
`

var rotateRefreshLua = redis.NewScript(rotateRefreshScript)

// StoreObserver receives timings of session store operations.
type StoreObserver interface {
	ObserveSessionStore(op, outcome string, duration time.Duration)
}

// SessionStoreConfig bounds record lifetime and call latency.
type SessionStoreConfig struct {
	TTL         time.Duration
	MaxLifetime time.Duration
	Timeout     time.Duration
}

// SessionStore keeps the live session records in Redis. The record's refresh jti
// is the single source of truth for which refresh token may rotate next.
type SessionStore struct {
	client   redis.UniversalClient
	config   SessionStoreConfig
	observer StoreObserver
	now      func() time.Time
}

// NewSessionStore constructs a Redis backed session store.
func NewSessionStore(client redis.UniversalClient, config SessionStoreConfig, observer StoreObserver) *SessionStore {
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	return &SessionStore{client: client, config: config, observer: observer, now: time.Now}
}

// WithClock returns a copy of the store reading time from now.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	clone := *s
	clone.now = now
	return &clone
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Create writes the record, replacing any previous one for the same session id.
func (s *SessionStore) Create(ctx context.Context, record *models.SessionRecord) (err error) {
	defer s.observe("create", time.Now(), &err)

	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	key := sessionKey(record.SessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldUserID, record.UserID,
			fieldFirstName, record.FirstName,
			fieldLastName, record.LastName,
			fieldRole, string(record.Role),
			fieldRefreshJTI, record.RefreshJTI,
			fieldCreatedAt, strconv.FormatInt(record.CreatedAt.UnixMilli(), 10),
		)
		pipe.PExpire(ctx, key, s.config.TTL)
		return nil
	})
	if err != nil {
		return appErrors.Unavailable(err, "session create")
	}
	return nil
}

// Get returns the record of sessionID or ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (record *models.SessionRecord, err error) {
	defer s.observe("get", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	values, err := s.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, appErrors.Unavailable(err, "session get")
	}
	if len(values) == 0 || values[fieldRefreshJTI] == "" {
		return nil, appErrors.ErrSessionNotFound
	}

	createdMs, _ := strconv.ParseInt(values[fieldCreatedAt], 10, 64)
	return &models.SessionRecord{
		UserID:     values[fieldUserID],
		SessionID:  sessionID,
		FirstName:  values[fieldFirstName],
		LastName:   values[fieldLastName],
		Role:       models.UserRole(values[fieldRole]),
		RefreshJTI: values[fieldRefreshJTI],
		CreatedAt:  time.UnixMilli(createdMs).UTC(),
	}, nil
}

// Rotate swaps the refresh jti from expectedJTI to newJTI atomically and renews the
// record TTL, never past the absolute lifetime measured from creation.
func (s *SessionStore) Rotate(ctx context.Context, sessionID, expectedJTI, newJTI string) (err error) {
	defer s.observe("rotate", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	status, err := rotateRefreshLua.Run(ctx, s.client, []string{sessionKey(sessionID)},
		expectedJTI,
		newJTI,
		s.now().UnixMilli(),
		s.config.TTL.Milliseconds(),
		s.config.MaxLifetime.Milliseconds(),
	).Int64()
	if err != nil {
		return appErrors.Unavailable(err, "session rotate")
	}

	switch status {
	case rotateStatusRotated:
		return nil
	case rotateStatusNotFound:
		return appErrors.ErrSessionNotFound
	case rotateStatusConflict:
		return appErrors.ErrRefreshJTIConflict
	case rotateStatusExpired:
		return appErrors.ErrSessionLifetimeExceeded
	default:
		return appErrors.Unavailable(errors.New("unexpected rotate status "+strconv.FormatInt(status, 10)), "session rotate")
	}
}

// Delete removes the records of the given sessions. Absent ids are ignored.
func (s *SessionStore) Delete(ctx context.Context, sessionIDs ...string) (err error) {
	if len(sessionIDs) == 0 {
		return nil
	}
	defer s.observe("delete", time.Now(), &err)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	keys := make([]string, len(sessionIDs))
	for i, id := range sessionIDs {
		keys[i] = sessionKey(id)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return appErrors.Unavailable(err, "session delete")
	}
	return nil
}

// Ping checks connectivity to Redis.
func (s *SessionStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	if err := s.client.Ping(ctx).Err(); err != nil {
		return appErrors.Unavailable(err, "session ping")
	}
	return nil
}

func (s *SessionStore) observe(op string, start time.Time, errp *error) {
	if s.observer == nil {
		return
	}
	outcome := "ok"
	if errp != nil && *errp != nil {
		var appErr *appErrors.Error
		if errors.As(*errp, &appErr) {
			outcome = appErr.Code
		} else {
			outcome = "error"
		}
	}
	s.observer.ObserveSessionStore(op, outcome, time.Since(start))
}
