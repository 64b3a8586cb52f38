package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kimbia-events/server/internal/domain/users"
)

var _ users.TokenRepository = (*TokenRepository)(nil)

// GetOrCreate inserts a token for the user or returns the existing one. The
// unique constraint on user_id makes this race-safe: the losing insert lands
// on the conflict arm and reads back the winner's key.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, key string) (*users.Token, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
INSERT INTO auth_tokens (user_id, key)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, key, created_at, last_used_at`, userID, key)

	token, err := scanToken(row)
	if err != nil {
		return nil, fmt.Errorf("get or create token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) GetByKey(ctx context.Context, key string) (*users.Token, error) {
	row := pick(r.pool, r.tx).QueryRow(ctx, `
SELECT id, user_id, key, created_at, last_used_at FROM auth_tokens WHERE key = $1`, key)

	token, err := scanToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := pick(r.pool, r.tx).Exec(ctx, `UPDATE auth_tokens SET last_used_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch token: %w", err)
	}
	return nil
}

func scanToken(row pgx.Row) (*users.Token, error) {
	var token users.Token
	if err := row.Scan(&token.ID, &token.UserID, &token.Key, &token.CreatedAt, &token.LastUsedAt); err != nil {
		return nil, err
	}
	return &token, nil
}
