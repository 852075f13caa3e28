package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Marcel-mosha/task-manager/types"
)

const tokenKeyBytes = 20

// TokenRepository handles persistence for opaque bearer tokens. Each user
// holds at most one token, created lazily and never expiring.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetOrCreate returns the user's token, minting one if none exists yet.
// The insert races safely against concurrent first logins: ON CONFLICT
// DO NOTHING plus the re-select guarantees every caller observes the
// single persisted key.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID int) (string, error) {
	key, err := newTokenKey()
	if err != nil {
		return "", err
	}

	const insert = `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, key, userID, time.Now()); err != nil {
		return "", err
	}

	const query = `SELECT key FROM auth_tokens WHERE user_id = $1`
	var persisted string
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&persisted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return persisted, nil
}

// GetUserByKey resolves a bearer token to its owning user.
func (r *TokenRepository) GetUserByKey(ctx context.Context, key string) (types.User, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.password_hash, u.created_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func newTokenKey() (string, error) {
	b := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
