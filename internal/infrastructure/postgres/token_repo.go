package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tokenColumns = `id, user_id, value, created_at, expires_at, is_used`

type RecoveryTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRecoveryTokenRepository(pool *pgxpool.Pool) *RecoveryTokenRepository {
	return &RecoveryTokenRepository{pool: pool}
}

func (r *RecoveryTokenRepository) Create(ctx context.Context, token *domain.RecoveryToken) (*domain.RecoveryToken, error) {
	query := `
		INSERT INTO recovery_tokens (user_id, value, expires_at)
		VALUES ($1, $2, $3)
		RETURNING ` + tokenColumns

	row := r.pool.QueryRow(ctx, query, token.UserID, token.Value, token.ExpiresAt)
	created, err := scanToken(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrIssueFailed
		}
		return nil, err
	}
	return created, nil
}

func (r *RecoveryTokenRepository) FindByValue(ctx context.Context, value string) (*domain.RecoveryToken, error) {
	// The active-value unique index allows spent rows to share a value with
	// one active row; prefer the active one for check().
	query := `
		SELECT ` + tokenColumns + `
		FROM recovery_tokens
		WHERE value = $1
		ORDER BY is_used ASC, created_at DESC
		LIMIT 1`

	row := r.pool.QueryRow(ctx, query, value)
	return scanToken(row)
}

// Consume re-validates the token, updates the bound user's password hash
// and marks the token used in a single transaction. The row lock taken by
// FOR UPDATE serializes concurrent redemptions of the same value: the
// loser re-reads after commit, finds no active row, and fails.
func (r *RecoveryTokenRepository) Consume(ctx context.Context, value, newPasswordHash string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin consume: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID string
	var expiresAt time.Time
	err = tx.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM recovery_tokens
		WHERE value = $1 AND NOT is_used
		FOR UPDATE`, value).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("lock token: %w", err)
	}
	if time.Now().After(expiresAt) {
		return domain.ErrTokenInvalid
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, newPasswordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	if _, err := tx.Exec(ctx,
		`UPDATE recovery_tokens SET is_used = TRUE WHERE value = $1 AND NOT is_used`,
		value); err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit consume: %w", err)
	}
	return nil
}

func (r *RecoveryTokenRepository) DeleteStale(ctx context.Context, now time.Time, limit int) (int, error) {
	query := `
		DELETE FROM recovery_tokens
		WHERE id IN (
			SELECT id FROM recovery_tokens
			WHERE is_used OR expires_at < $1
			LIMIT $2
		)`

	tag, err := r.pool.Exec(ctx, query, now, limit)
	if err != nil {
		return 0, fmt.Errorf("delete stale tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanToken(row pgx.Row) (*domain.RecoveryToken, error) {
	var t domain.RecoveryToken
	err := row.Scan(&t.ID, &t.UserID, &t.Value, &t.CreatedAt, &t.ExpiresAt, &t.IsUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	return &t, nil
}
