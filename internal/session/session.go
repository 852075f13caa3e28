// Package session implements cookie-based sessions: the cookie carries a
// signed JWT whose session ID must also be present in a Redis allowlist.
// Deleting the Redis entry revokes the session regardless of the token's
// remaining lifetime.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// ErrInvalidSession is returned for missing, expired, malformed, or
// revoked sessions.
var ErrInvalidSession = errors.New("invalid session")

// Store manages sessions backed by Redis.
type Store struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

// NewStore returns a session store signing with secret and keeping
// sessions alive in Redis for ttl.
func NewStore(rdb *redis.Client, secret string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

// Create establishes a session for the user and returns the cookie value.
func (s *Store) Create(ctx context.Context, userID int) (string, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return "", err
	}

	key := sessionKeyPrefix + sessionID
	if err := s.rdb.Set(ctx, key, strconv.Itoa(userID), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis: %w", err)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Resolve validates a cookie value and returns the session's user ID.
func (s *Store) Resolve(ctx context.Context, cookieValue string) (int, error) {
	userID, sessionID, err := s.parse(cookieValue)
	if err != nil {
		return 0, ErrInvalidSession
	}

	stored, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidSession
	}
	if err != nil {
		return 0, fmt.Errorf("redis: %w", err)
	}
	if stored != strconv.Itoa(userID) {
		return 0, ErrInvalidSession
	}
	return userID, nil
}

// Revoke removes the session from the allowlist. Revoking an unknown or
// malformed cookie is not an error.
func (s *Store) Revoke(ctx context.Context, cookieValue string) error {
	_, sessionID, err := s.parse(cookieValue)
	if err != nil {
		return nil
	}
	return s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}

func (s *Store) parse(cookieValue string) (userID int, sessionID string, err error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookieValue, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidSession
	}
	if claims.ID == "" {
		return 0, "", ErrInvalidSession
	}
	userID, err = strconv.Atoi(claims.Subject)
	if err != nil || userID < 1 {
		return 0, "", ErrInvalidSession
	}
	return userID, claims.ID, nil
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
