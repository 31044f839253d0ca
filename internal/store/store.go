package store

import (
	"context"
	"errors"

	"github.com/greenhollow/stockade/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep concerns tidy and let tests stub one
// table at a time.
type Store interface {
	Identities() Identities
	LoginChallenges() LoginChallenges
	Products() Products

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store with explicit Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Identities interface {
	// GetByID returns an identity by id.
	GetByID(ctx context.Context, id string) (domain.Identity, error)

	// GetByUsername looks up an identity during login and enrollment.
	GetByUsername(ctx context.Context, username string) (domain.Identity, error)

	// Create inserts a new identity (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken; the unique index
	// makes concurrent registrations resolve to exactly one success.
	Create(ctx context.Context, ident domain.Identity) error
}

type LoginChallenges interface {
	// Create stores a freshly minted login challenge.
	Create(ctx context.Context, ch domain.LoginChallenge) error

	// GetByTokenHash fetches a challenge by its token fingerprint,
	// expired rows included; expiry is enforced by the service layer so it
	// can distinguish "expired" from "never existed" in logs.
	GetByTokenHash(ctx context.Context, hash string) (domain.LoginChallenge, error)

	// IncrementAttempts bumps the failed-attempt counter and returns the
	// updated challenge.
	IncrementAttempts(ctx context.Context, id string) (domain.LoginChallenge, error)

	// Delete removes a challenge (consumption or lockout). Returns
	// ErrNotFound when the row is already gone, so concurrent consumers
	// resolve to exactly one winner.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all expired challenges (housekeeping).
	DeleteExpired(ctx context.Context) error
}

type Products interface {
	// GetByID returns a product by id.
	GetByID(ctx context.Context, id string) (domain.Product, error)

	// List returns all products ordered by creation (oldest first).
	List(ctx context.Context) ([]domain.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p domain.Product) error

	// Update mutates name and price and bumps updated_at.
	Update(ctx context.Context, p domain.Product) error

	// Delete removes a product.
	Delete(ctx context.Context, id string) error
}
