package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
	"wish-wall/contract"
	"wish-wall/domain/document"
	domainerrors "wish-wall/errors"
	"wish-wall/observability"

	"github.com/go-redis/redis/v8"
	"github.com/rs/xid"
)

const (
	redisBackend = "redis"
	watchBackoff = 2 * time.Millisecond
)

// RedisStore keeps each collection in one hash (id -> encoded fields) and
// announces writes on a pub/sub channel so every process sharing the redis
// instance sees the same realtime snapshots.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
	closed atomic.Bool
	hub    *hub
}

func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	return &RedisStore{client: client, log: log, hub: newHub()}
}

func hashKey(collection document.CollectionPath) string {
	return fmt.Sprintf("wishwall:%s", collection)
}

func changesChannel(collection document.CollectionPath) string {
	return fmt.Sprintf("wishwall:%s:changes", collection)
}

func (s *RedisStore) Create(ctx context.Context, collection document.CollectionPath, fields document.Fields) (string, error) {
	defer observability.ObserveStore(redisBackend, "create", time.Now())
	if s.closed.Load() {
		return "", domainerrors.ErrStoreClosed
	}
	bytes, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	id := xid.New().String()
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hashKey(collection), id, bytes)
	pipe.Publish(ctx, changesChannel(collection), id)
	if _, err = pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields optimistically with WATCH, retrying when another
// writer touched the collection in between.
func (s *RedisStore) Update(ctx context.Context, doc document.DocumentPath, fields document.Fields) error {
	defer observability.ObserveStore(redisBackend, "update", time.Now())
	if s.closed.Load() {
		return domainerrors.ErrStoreClosed
	}
	if !doc.Valid() {
		return domainerrors.ErrInvalidID
	}
	key := hashKey(doc.Collection())
	id := doc.ID()

	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, id).Bytes()
		if errors.Is(err, redis.Nil) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := decodeFields(raw)
		if err != nil {
			return err
		}
		bytes, err := encodeFields(current.Merge(fields))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, bytes)
			pipe.Publish(ctx, changesChannel(doc.Collection()), id)
			return nil
		})
		return err
	}

	// WATCH conflicts are retried until the write lands so the last writer wins.
	for attempt := 1; ; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		s.log.Debug("Optimistic update conflict, retrying", "doc", doc, "attempt", attempt)
		select {
		case <-ctx.Done():
			return fmt.Errorf("update %s: %w", doc, ctx.Err())
		case <-time.After(watchBackoff):
		}
	}
}

func (s *RedisStore) Delete(ctx context.Context, doc document.DocumentPath) error {
	defer observability.ObserveStore(redisBackend, "delete", time.Now())
	if s.closed.Load() {
		return domainerrors.ErrStoreClosed
	}
	if !doc.Valid() {
		return domainerrors.ErrInvalidID
	}
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, hashKey(doc.Collection()), doc.ID())
	pipe.Publish(ctx, changesChannel(doc.Collection()), doc.ID())
	_, err := pipe.Exec(ctx)
	return err
}

// DeleteBatch runs a single HDEL so the removal is atomic.
func (s *RedisStore) DeleteBatch(ctx context.Context, collection document.CollectionPath, ids []string) error {
	defer observability.ObserveStore(redisBackend, "delete_batch", time.Now())
	if s.closed.Load() {
		return domainerrors.ErrStoreClosed
	}
	if len(ids) == 0 {
		return nil
	}
	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, hashKey(collection), ids...)
	pipe.Publish(ctx, changesChannel(collection), "batch")
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) List(ctx context.Context, collection document.CollectionPath) ([]document.Document, error) {
	defer observability.ObserveStore(redisBackend, "list", time.Now())
	if s.closed.Load() {
		return nil, domainerrors.ErrStoreClosed
	}
	raw, err := s.client.HGetAll(ctx, hashKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]document.Document, 0, len(raw))
	for id, value := range raw {
		fields, err := decodeFields([]byte(value))
		if err != nil {
			s.log.Warn("Skipping undecodable document", "id", id, "error", err)
			continue
		}
		docs = append(docs, document.Document{ID: id, Fields: fields})
	}
	return docs, nil
}

// Subscribe confirms the redis subscription before the first snapshot is
// read, so no write can fall between the two.
func (s *RedisStore) Subscribe(ctx context.Context, collection document.CollectionPath) (contract.Subscription, error) {
	if s.closed.Load() {
		return nil, domainerrors.ErrStoreClosed
	}
	pubsub := s.client.Subscribe(ctx, changesChannel(collection))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	var sub *subscription
	sub = newSubscription(
		func(ctx context.Context) ([]document.Document, error) { return s.List(ctx, collection) },
		func() {
			s.hub.remove(collection, sub)
			if err := pubsub.Close(); err != nil {
				s.log.Debug("Closing pubsub", "error", err)
			}
		},
	)
	s.hub.add(collection, sub)

	changes := pubsub.Channel()
	go func() {
		for range changes {
			sub.notify()
		}
	}()
	go sub.run(ctx)
	return sub, nil
}

// Close ends every subscription. The redis client is owned by the caller.
func (s *RedisStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.hub.closeAll()
	}
	return nil
}
