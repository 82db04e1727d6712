package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/logging"
	"github.com/josh-kwaku/mobile-payments/internal/repository"
	"github.com/josh-kwaku/mobile-payments/internal/testutil"
)

func TestPostgresStore(t *testing.T) {
	db, connStr := testutil.SetupTestDB(t)

	runStoreTests(t, func(t *testing.T) repository.TransactionStore {
		_, err := db.Exec(`TRUNCATE transactions`)
		require.NoError(t, err)
		return repository.NewPostgresStore(db, connStr, logging.Discard())
	})
}

func TestPostgresStore_SkipsCorruptRows(t *testing.T) {
	db, connStr := testutil.SetupTestDB(t)
	store := repository.NewPostgresStore(db, connStr, logging.Discard())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testutil.NewRecord(t, "payment_good", 0)))
	_, err := db.Exec(
		`INSERT INTO transactions (id, recipient_email, amount, currency, status, timestamp_ms)
		 VALUES ('payment_bad', 'x@example.com', 5, 'GBP', 'SUCCESS', 1)`,
	)
	require.NoError(t, err)

	got, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"payment_good"}, testutil.IDs(got))
}

func TestPostgresStore_Unavailable(t *testing.T) {
	db, connStr := testutil.SetupTestDB(t)
	store := repository.NewPostgresStore(db, connStr, logging.Discard())
	require.NoError(t, store.Close())

	err := store.Save(context.Background(), testutil.NewRecord(t, "payment_x", 0))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
