// Package repository holds the transaction record stores backing payment history.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

// TransactionStore is the durable, observable holder of accepted transactions.
type TransactionStore interface {
	// Save upserts rec by id.
	Save(ctx context.Context, rec domain.TransactionRecord) error
	// ListAll returns every readable record, newest first. Entries that cannot
	// be decoded are skipped.
	ListAll(ctx context.Context) ([]domain.TransactionRecord, error)
	// Subscribe emits the full ordered list immediately and again after every
	// change. The channel is closed and the listener released once ctx is done.
	Subscribe(ctx context.Context) (<-chan []domain.TransactionRecord, error)
	Close() error
}

type loadFunc func(context.Context) ([]domain.TransactionRecord, error)

// stream turns change signals into snapshots. A snapshot the consumer has not
// picked up yet is replaced by the newer one rather than queued behind it.
func stream(
	ctx context.Context,
	logger *slog.Logger,
	initial []domain.TransactionRecord,
	changed <-chan struct{},
	load loadFunc,
	release func(),
) <-chan []domain.TransactionRecord {
	out := make(chan []domain.TransactionRecord, 1)
	out <- initial

	go func() {
		defer close(out)
		defer release()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changed:
				if !ok {
					return
				}
			}

			records, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("reload after change failed", "error", err)
				continue
			}

			select {
			case <-out:
			default:
			}
			out <- records
		}
	}()

	return out
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
