package repository_test

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/logging"
	"github.com/josh-kwaku/mobile-payments/internal/repository"
	"github.com/josh-kwaku/mobile-payments/internal/testutil"
)

func TestRedisStore(t *testing.T) {
	url := testutil.SetupTestRedis(t)
	client, err := repository.NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	runStoreTests(t, func(t *testing.T) repository.TransactionStore {
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return repository.NewRedisStore(client, "test", logging.Discard())
	})
}

func TestRedisStore_SkipsCorruptEntries(t *testing.T) {
	url := testutil.SetupTestRedis(t)
	ctx := context.Background()
	client, err := repository.NewRedisClient(ctx, url)
	require.NoError(t, err)
	store := repository.NewRedisStore(client, "test:", logging.Discard())
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Save(ctx, testutil.NewRecord(t, "payment_good", 0)))
	require.NoError(t, client.HSet(ctx, "test:transactions", "payment_bad", `{"id":"payment_bad"`).Err())
	require.NoError(t, client.ZAdd(ctx, "test:transactions:by_time", redis.Z{Score: 5, Member: "payment_bad"}).Err())
	require.NoError(t, client.ZAdd(ctx, "test:transactions:by_time", redis.Z{Score: 6, Member: "payment_missing"}).Err())

	got, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"payment_good"}, testutil.IDs(got))
}

func TestRedisStore_Unavailable(t *testing.T) {
	url := testutil.SetupTestRedis(t)
	client, err := repository.NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	store := repository.NewRedisStore(client, "test", logging.Discard())
	require.NoError(t, store.Close())

	_, err = store.ListAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
