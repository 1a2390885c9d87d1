package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/metrics"
)

const (
	loginTokenPrefix = "user:login:token:"
	userInfoPrefix   = "user:info:cache:"
	emailCodePrefix  = "email:login:code:"
)

// SessionCache resolves bearer tokens to identities, cache-aside over the
// user repository. Both the token mapping and the identity snapshot use
// sliding expiration: every successful resolve refreshes their TTLs. This
// is a security boundary, so unlike the rate governor it fails closed.
// A Redis outage means nobody is authenticated.
type SessionCache struct {
	rdb      *goredis.Client
	users    domain.UserRepository
	ttl      time.Duration
	backfill singleflight.Group
}

func NewSessionCache(rdb *goredis.Client, users domain.UserRepository, ttl time.Duration) *SessionCache {
	return &SessionCache{rdb: rdb, users: users, ttl: ttl}
}

var _ domain.SessionCache = (*SessionCache)(nil)

func (s *SessionCache) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	tokenKey := loginTokenPrefix + token

	userIDStr, err := s.rdb.Get(ctx, tokenKey).Result()
	if errors.Is(err, goredis.Nil) {
		metrics.SessionCacheLookups.WithLabelValues("reject").Inc()
		return nil, domain.ErrNotAuthenticated
	}
	if err != nil {
		slog.ErrorContext(ctx, "Token lookup failed, rejecting request", "error", err)
		metrics.SessionCacheLookups.WithLabelValues("reject").Inc()
		return nil, domain.ErrNotAuthenticated
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return nil, domain.ErrNotAuthenticated
	}

	// Sliding expiration on the token.
	if err := s.rdb.Expire(ctx, tokenKey, s.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "Failed to refresh token TTL", "error", err)
	}

	identityKey := userInfoPrefix + strconv.FormatInt(userID, 10)
	payload, err := s.rdb.Get(ctx, identityKey).Result()
	if err == nil {
		var identity domain.Identity
		if jsonErr := json.Unmarshal([]byte(payload), &identity); jsonErr == nil {
			if expErr := s.rdb.Expire(ctx, identityKey, s.ttl).Err(); expErr != nil {
				slog.WarnContext(ctx, "Failed to refresh identity TTL", "error", expErr)
			}
			metrics.SessionCacheLookups.WithLabelValues("hit").Inc()
			return &identity, nil
		}
		// Corrupt entry: fall through to a store reload.
	} else if !errors.Is(err, goredis.Nil) {
		slog.ErrorContext(ctx, "Identity lookup failed, rejecting request", "error", err)
		metrics.SessionCacheLookups.WithLabelValues("reject").Inc()
		return nil, domain.ErrNotAuthenticated
	}

	metrics.SessionCacheLookups.WithLabelValues("miss").Inc()
	return s.loadAndBackfill(ctx, userID, identityKey)
}

// loadAndBackfill reads the identity from the relational store and writes it
// back to the cache. Concurrent misses for the same user are collapsed into
// a single store read.
func (s *SessionCache) loadAndBackfill(ctx context.Context, userID int64, identityKey string) (*domain.Identity, error) {
	v, err, _ := s.backfill.Do(identityKey, func() (any, error) {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}

		identity := user.Identity()
		payload, err := json.Marshal(identity)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal identity: %w", err)
		}

		if err := s.rdb.Set(ctx, identityKey, payload, s.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "Failed to backfill identity cache", "user_id", userID, "error", err)
		}
		metrics.SessionCacheLookups.WithLabelValues("backfill").Inc()
		return &identity, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Identity), nil
}

func (s *SessionCache) Establish(ctx context.Context, token string, identity domain.Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, loginTokenPrefix+token, strconv.FormatInt(identity.UserID, 10), s.ttl)
	pipe.Set(ctx, userInfoPrefix+strconv.FormatInt(identity.UserID, 10), payload, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}
	return nil
}

func (s *SessionCache) Drop(ctx context.Context, token string, userID int64) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, loginTokenPrefix+token)
	pipe.Del(ctx, userInfoPrefix+strconv.FormatInt(userID, 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to drop session: %w", err)
	}
	return nil
}

func (s *SessionCache) Invalidate(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, userInfoPrefix+strconv.FormatInt(userID, 10)).Err()
}

// --- Email verification codes ---

// SetEmailCode stores a registration/login verification code.
func (s *SessionCache) SetEmailCode(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, emailCodePrefix+email, code, ttl).Err()
}

// ConsumeEmailCode validates and deletes the stored code for email.
func (s *SessionCache) ConsumeEmailCode(ctx context.Context, email, code string) error {
	key := emailCodePrefix + email
	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.ErrBadEmailCode
	}
	if err != nil {
		return fmt.Errorf("failed to read email code: %w", err)
	}
	if stored != code {
		return domain.ErrBadEmailCode
	}
	return s.rdb.Del(ctx, key).Err()
}
