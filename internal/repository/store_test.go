package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/repository"
	"github.com/josh-kwaku/mobile-payments/internal/testutil"
)

const waitFor = 5 * time.Second

// runStoreTests exercises the behaviour every TransactionStore shares.
func runStoreTests(t *testing.T, newStore func(t *testing.T) repository.TransactionStore) {
	t.Run("ListAll newest first", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		for _, rec := range testutil.NewRecords(t, 3) {
			require.NoError(t, store.Save(ctx, rec))
		}

		got, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"payment_002", "payment_001", "payment_000"}, testutil.IDs(got))
	})

	t.Run("Save is an upsert", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		rec := testutil.NewRecord(t, "payment_dup", 0)

		require.NoError(t, store.Save(ctx, rec))
		require.NoError(t, store.Save(ctx, rec))

		got, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, rec.ID, got[0].ID)
		assert.True(t, rec.Amount.Equal(got[0].Amount))
		assert.Equal(t, rec.Currency, got[0].Currency)
		assert.Equal(t, rec.Status, got[0].Status)
		assert.Equal(t, rec.TimestampMillis, got[0].TimestampMillis)
	})

	t.Run("Subscribe emits snapshot then every change", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		first := testutil.NewRecord(t, "payment_a", 0)
		require.NoError(t, store.Save(ctx, first))

		updates, err := store.Subscribe(ctx)
		require.NoError(t, err)

		snap := receive(t, updates)
		assert.Equal(t, []string{"payment_a"}, testutil.IDs(snap))

		require.NoError(t, store.Save(ctx, testutil.NewRecord(t, "payment_b", 1000)))
		snap = receiveUntil(t, updates, 2)
		assert.Equal(t, []string{"payment_b", "payment_a"}, testutil.IDs(snap))
	})

	t.Run("Subscribe closes on cancel", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())

		updates, err := store.Subscribe(ctx)
		require.NoError(t, err)
		receive(t, updates)

		cancel()
		assertClosed(t, updates)
	})

	t.Run("Subscribe can be restarted", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Save(ctx, testutil.NewRecord(t, "payment_a", 0)))

		first, cancelFirst := context.WithCancel(ctx)
		updates, err := store.Subscribe(first)
		require.NoError(t, err)
		receive(t, updates)
		cancelFirst()
		assertClosed(t, updates)

		second, cancelSecond := context.WithCancel(ctx)
		defer cancelSecond()
		updates, err = store.Subscribe(second)
		require.NoError(t, err)
		assert.Equal(t, []string{"payment_a"}, testutil.IDs(receive(t, updates)))
	})
}

func receive(t *testing.T, ch <-chan []domain.TransactionRecord) []domain.TransactionRecord {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return snap
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

// receiveUntil reads snapshots until one holds n records.
func receiveUntil(t *testing.T, ch <-chan []domain.TransactionRecord, n int) []domain.TransactionRecord {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case snap, ok := <-ch:
			require.True(t, ok, "subscription closed unexpectedly")
			if len(snap) == n {
				return snap
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %d records", n)
			return nil
		}
	}
}

func assertClosed(t *testing.T, ch <-chan []domain.TransactionRecord) {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription was not closed")
		}
	}
}
