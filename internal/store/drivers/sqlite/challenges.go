package sqlite

import (
	"context"
	"time"

	"github.com/greenhollow/stockade/internal/domain"
	"github.com/greenhollow/stockade/internal/store"
)

type loginChallengesRepo struct {
	db dbtx
}

func (r *loginChallengesRepo) Create(ctx context.Context, ch domain.LoginChallenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_challenges (id, user_id, token_hash, attempts, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ch.ID,
		ch.UserID,
		ch.TokenHash,
		ch.Attempts,
		ch.ExpiresAt,
		ch.CreatedAt,
	)
	return mapConflict(err)
}

func (r *loginChallengesRepo) GetByTokenHash(ctx context.Context, hash string) (domain.LoginChallenge, error) {
	var ch domain.LoginChallenge
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, attempts, expires_at, created_at
		 FROM login_challenges WHERE token_hash = ?`,
		hash,
	).Scan(
		&ch.ID,
		&ch.UserID,
		&ch.TokenHash,
		&ch.Attempts,
		&ch.ExpiresAt,
		&ch.CreatedAt,
	)
	if err != nil {
		return domain.LoginChallenge{}, mapNotFound(err)
	}
	return ch, nil
}

func (r *loginChallengesRepo) IncrementAttempts(ctx context.Context, id string) (domain.LoginChallenge, error) {
	var ch domain.LoginChallenge
	err := r.db.QueryRowContext(ctx,
		`UPDATE login_challenges SET attempts = attempts + 1
		 WHERE id = ?
		 RETURNING id, user_id, token_hash, attempts, expires_at, created_at`,
		id,
	).Scan(
		&ch.ID,
		&ch.UserID,
		&ch.TokenHash,
		&ch.Attempts,
		&ch.ExpiresAt,
		&ch.CreatedAt,
	)
	if err != nil {
		return domain.LoginChallenge{}, mapNotFound(err)
	}
	return ch, nil
}

func (r *loginChallengesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM login_challenges WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *loginChallengesRepo) DeleteExpired(ctx context.Context) error {
	// Comparing against a bound time keeps the cutoff in the same encoding
	// the driver used when storing expires_at.
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM login_challenges WHERE expires_at < ?`, time.Now().UTC())
	return err
}
