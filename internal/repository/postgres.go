package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

// NotifyChannel is the LISTEN/NOTIFY channel signalled on every save.
const NotifyChannel = "transactions_changed"

type PoolConfig struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetimeS int
	ConnMaxIdleTimeS int
}

func NewPostgresDB(ctx context.Context, databaseURL string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresDB: open: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(pool.ConnMaxIdleTimeS) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewPostgresDB: ping: %w", err)
	}

	return db, nil
}

type PostgresStore struct {
	db          *sql.DB
	databaseURL string
	logger      *slog.Logger
}

// NewPostgresStore wraps an open pool. databaseURL is used again by Subscribe,
// which needs a dedicated connection for LISTEN.
func NewPostgresStore(db *sql.DB, databaseURL string, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, databaseURL: databaseURL, logger: logger}
}

func (s *PostgresStore) Save(ctx context.Context, rec domain.TransactionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("Save", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			recipient_email = EXCLUDED.recipient_email,
			amount          = EXCLUDED.amount,
			currency        = EXCLUDED.currency,
			status          = EXCLUDED.status,
			timestamp_ms    = EXCLUDED.timestamp_ms`,
		rec.ID, rec.RecipientEmail, rec.Amount.String(), string(rec.Currency), string(rec.Status), rec.TimestampMillis,
	)
	if err != nil {
		return unavailable("Save", err)
	}

	// Delivered to listeners only once the transaction commits.
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, rec.ID); err != nil {
		return unavailable("Save", err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("Save", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]domain.TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY timestamp_ms DESC, id ASC`,
	)
	if err != nil {
		return nil, unavailable("ListAll", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			s.logger.Warn("skipping unreadable transaction row", "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("ListAll", err)
	}
	return records, nil
}

func (s *PostgresStore) Subscribe(ctx context.Context) (<-chan []domain.TransactionRecord, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, unavailable("Subscribe", err)
	}

	listener := pq.NewListener(s.databaseURL, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				s.logger.Warn("transaction listener event", "event", ev, "error", err)
			}
		},
	)
	// Listen blocks until the listener has a connection.
	listening := make(chan error, 1)
	go func() { listening <- listener.Listen(NotifyChannel) }()
	select {
	case err := <-listening:
		if err != nil {
			listener.Close()
			return nil, unavailable("Subscribe", err)
		}
	case <-ctx.Done():
		listener.Close()
		return nil, unavailable("Subscribe", ctx.Err())
	}

	initial, err := s.ListAll(ctx)
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("Subscribe: %w", err)
	}

	changed := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(changed)
		for {
			select {
			case <-done:
				return
			case _, ok := <-listener.Notify:
				if !ok {
					return
				}
				// A nil notification means the connection was re-established
				// and changes may have been missed, so reload either way.
				select {
				case changed <- struct{}{}:
				default:
				}
			}
		}
	}()

	release := func() {
		close(done)
		if err := listener.Close(); err != nil {
			s.logger.Warn("close transaction listener", "error", err)
		}
	}
	return stream(ctx, s.logger, initial, changed, s.ListAll, release), nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
