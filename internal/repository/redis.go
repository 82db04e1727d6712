package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/josh-kwaku/mobile-payments/internal/codec"
	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

// RedisStore keeps each record as a JSON document in one hash, with a sorted
// set scored by timestamp for ordering. Saves are announced on a pub/sub
// channel.
type RedisStore struct {
	client  *redis.Client
	records string
	index   string
	channel string
	logger  *slog.Logger
}

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("NewRedisClient: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewRedisClient: ping: %w", err)
	}
	return client, nil
}

func NewRedisStore(client *redis.Client, keyPrefix string, logger *slog.Logger) *RedisStore {
	p := strings.TrimSuffix(keyPrefix, ":")
	return &RedisStore{
		client:  client,
		records: p + ":transactions",
		index:   p + ":transactions:by_time",
		channel: p + ":transactions:changed",
		logger:  logger,
	}
}

func (s *RedisStore) Save(ctx context.Context, rec domain.TransactionRecord) error {
	doc, err := codec.EncodeResult(rec.Result())
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.records, rec.ID, doc)
	pipe.ZAdd(ctx, s.index, redis.Z{Score: float64(rec.TimestampMillis), Member: rec.ID})
	pipe.Publish(ctx, s.channel, rec.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return unavailable("Save", err)
	}
	return nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]domain.TransactionRecord, error) {
	ids, err := s.client.ZRevRange(ctx, s.index, 0, -1).Result()
	if err != nil {
		return nil, unavailable("ListAll", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	docs, err := s.client.HMGet(ctx, s.records, ids...).Result()
	if err != nil {
		return nil, unavailable("ListAll", err)
	}

	records := make([]domain.TransactionRecord, 0, len(docs))
	for i, d := range docs {
		doc, ok := d.(string)
		if !ok {
			s.logger.Warn("skipping indexed transaction with no document", "id", ids[i])
			continue
		}
		res, err := codec.DecodeResult(strings.NewReader(doc))
		if err != nil {
			s.logger.Warn("skipping unreadable transaction document", "id", ids[i], "error", err)
			continue
		}
		records = append(records, domain.NewTransactionRecord(res))
	}
	domain.SortNewestFirst(records)
	return records, nil
}

func (s *RedisStore) Subscribe(ctx context.Context) (<-chan []domain.TransactionRecord, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	// Wait for the subscription to be confirmed so no save between here and
	// the initial listing goes unnoticed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, unavailable("Subscribe", err)
	}

	initial, err := s.ListAll(ctx)
	if err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("Subscribe: %w", err)
	}

	msgs := pubsub.Channel()
	changed := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(changed)
		for {
			select {
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			}
		}
	}()

	release := func() {
		close(done)
		if err := pubsub.Close(); err != nil {
			s.logger.Warn("close transaction subscription", "error", err)
		}
	}
	return stream(ctx, s.logger, initial, changed, s.ListAll, release), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
