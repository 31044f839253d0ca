package sqlite

import (
	"context"

	"github.com/greenhollow/stockade/internal/domain"
)

type identitiesRepo struct {
	db dbtx
}

func (r *identitiesRepo) GetByID(ctx context.Context, id string) (domain.Identity, error) {
	var ident domain.Identity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, totp_secret, created_at, updated_at
		 FROM identities WHERE id = ?`,
		id,
	).Scan(
		&ident.ID,
		&ident.Username,
		&ident.PasswordHash,
		&ident.TOTPSecret,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return ident, nil
}

func (r *identitiesRepo) GetByUsername(ctx context.Context, username string) (domain.Identity, error) {
	var ident domain.Identity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, totp_secret, created_at, updated_at
		 FROM identities WHERE username = ?`,
		username,
	).Scan(
		&ident.ID,
		&ident.Username,
		&ident.PasswordHash,
		&ident.TOTPSecret,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	)
	if err != nil {
		return domain.Identity{}, mapNotFound(err)
	}
	return ident, nil
}

func (r *identitiesRepo) Create(ctx context.Context, ident domain.Identity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, username, password_hash, totp_secret, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ident.ID,
		ident.Username,
		ident.PasswordHash,
		ident.TOTPSecret,
		ident.CreatedAt,
		ident.UpdatedAt,
	)
	return mapConflict(err)
}
