package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/greenhollow/stockade/internal/domain"
	"github.com/greenhollow/stockade/internal/store"
	"github.com/greenhollow/stockade/internal/store/drivers/sqlite"
	"github.com/greenhollow/stockade/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(10000)"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newIdentity(username string) domain.Identity {
	now := time.Now().UTC()
	return domain.Identity{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		TOTPSecret:   "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestIdentitiesCreateAndGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ident := newIdentity("alice")
	require.NoError(t, st.Identities().Create(ctx, ident))

	byName, err := st.Identities().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, ident.ID, byName.ID)
	require.Equal(t, ident.PasswordHash, byName.PasswordHash)
	require.Equal(t, ident.TOTPSecret, byName.TOTPSecret)

	byID, err := st.Identities().GetByID(ctx, ident.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	_, err = st.Identities().GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestIdentitiesDuplicateUsernameConflicts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Identities().Create(ctx, newIdentity("bob")))
	err := st.Identities().Create(ctx, newIdentity("bob"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestIdentitiesConcurrentRegistrationRace(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	const racers = 2
	errs := make([]error, racers)
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = st.Identities().Create(ctx, newIdentity("carol"))
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, store.ErrAlreadyExists)
			conflict++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflict)
}

func TestLoginChallengesLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ident := newIdentity("dave")
	require.NoError(t, st.Identities().Create(ctx, ident))

	now := time.Now().UTC()
	ch := domain.LoginChallenge{
		ID:        idx.New().String(),
		UserID:    ident.ID,
		TokenHash: "fingerprint-1",
		ExpiresAt: now.Add(5 * time.Minute),
		CreatedAt: now,
	}
	require.NoError(t, st.LoginChallenges().Create(ctx, ch))

	got, err := st.LoginChallenges().GetByTokenHash(ctx, "fingerprint-1")
	require.NoError(t, err)
	require.Equal(t, ch.ID, got.ID)
	require.Equal(t, 0, got.Attempts)

	got, err = st.LoginChallenges().IncrementAttempts(ctx, ch.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Attempts)

	require.NoError(t, st.LoginChallenges().Delete(ctx, ch.ID))
	_, err = st.LoginChallenges().GetByTokenHash(ctx, "fingerprint-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginChallengesDeleteExpired(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ident := newIdentity("erin")
	require.NoError(t, st.Identities().Create(ctx, ident))

	now := time.Now().UTC()
	expired := domain.LoginChallenge{
		ID:        idx.New().String(),
		UserID:    ident.ID,
		TokenHash: "expired-hash",
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-10 * time.Minute),
	}
	live := domain.LoginChallenge{
		ID:        idx.New().String(),
		UserID:    ident.ID,
		TokenHash: "live-hash",
		ExpiresAt: now.Add(5 * time.Minute),
		CreatedAt: now,
	}
	require.NoError(t, st.LoginChallenges().Create(ctx, expired))
	require.NoError(t, st.LoginChallenges().Create(ctx, live))

	require.NoError(t, st.LoginChallenges().DeleteExpired(ctx))

	_, err := st.LoginChallenges().GetByTokenHash(ctx, "expired-hash")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.LoginChallenges().GetByTokenHash(ctx, "live-hash")
	require.NoError(t, err)
}

func TestProductsCRUD(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	p := domain.Product{
		ID:        idx.New().String(),
		Name:      "Widget",
		Price:     9.99,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Products().Create(ctx, p))

	got, err := st.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Widget", got.Name)
	require.InDelta(t, 9.99, got.Price, 0.0001)

	p.Name = "Widget Pro"
	p.Price = 19.99
	require.NoError(t, st.Products().Update(ctx, p))

	all, err := st.Products().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Widget Pro", all[0].Name)

	require.NoError(t, st.Products().Delete(ctx, p.ID))
	require.ErrorIs(t, st.Products().Delete(ctx, p.ID), store.ErrNotFound)
	require.ErrorIs(t, st.Products().Update(ctx, p), store.ErrNotFound)

	_, err = st.Products().GetByID(ctx, p.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	errBoom := context.Canceled
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Identities().Create(ctx, newIdentity("frank")); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = st.Identities().GetByUsername(ctx, "frank")
	require.ErrorIs(t, err, store.ErrNotFound)
}
