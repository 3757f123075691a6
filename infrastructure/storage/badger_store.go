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

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const badgerBackend = "badger"

// BadgerStore keeps documents in an embedded badger database and notifies
// in-process subscribers after each committed write.
// The key is formatted as "doc:{collection}:{id}" so a collection is a prefix scan.
type BadgerStore struct {
	db     *badger.DB
	log    *slog.Logger
	closed atomic.Bool
	hub    *hub
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{
		db:  db,
		log: log,
		hub: newHub(),
	}
}

func docKey(collection document.CollectionPath, id string) []byte {
	return []byte(collectionPrefix(collection) + id)
}

func collectionPrefix(collection document.CollectionPath) string {
	return BadgerKeyPrefix + string(collection) + ":"
}

func (s *BadgerStore) Create(_ context.Context, collection document.CollectionPath, fields document.Fields) (string, error) {
	defer observability.ObserveStore(badgerBackend, "create", time.Now())
	if s.closed.Load() {
		return "", domainerrors.ErrStoreClosed
	}
	bytes, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(collection, id), bytes)
	})
	if err != nil {
		return "", err
	}
	s.hub.notify(collection)
	return id, nil
}

// Update merges fields into the stored ones inside a single transaction.
// Transactions aborted by a concurrent writer are replayed until one commits
// or ctx is done, so the last writer wins.
func (s *BadgerStore) Update(ctx context.Context, doc document.DocumentPath, fields document.Fields) error {
	defer observability.ObserveStore(badgerBackend, "update", time.Now())
	if s.closed.Load() {
		return domainerrors.ErrStoreClosed
	}
	if !doc.Valid() {
		return domainerrors.ErrInvalidID
	}
	key := docKey(doc.Collection(), doc.ID())
	merge := func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domainerrors.ErrNotFound
		}
		if err != nil {
			return err
		}
		var current document.Fields
		err = item.Value(func(val []byte) error {
			current, err = decodeFields(val)
			return err
		})
		if err != nil {
			return err
		}
		bytes, err := encodeFields(current.Merge(fields))
		if err != nil {
			return err
		}
		return txn.Set(key, bytes)
	}
	for attempt := 1; ; attempt++ {
		err := s.db.Update(merge)
		if err == nil {
			break
		}
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("Update transaction conflict, retrying", "doc", doc, "attempt", attempt)
		if ctx.Err() != nil {
			return fmt.Errorf("update %s: %w", doc, ctx.Err())
		}
	}
	s.hub.notify(doc.Collection())
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, doc document.DocumentPath) error {
	defer observability.ObserveStore(badgerBackend, "delete", time.Now())
	if s.closed.Load() {
		return domainerrors.ErrStoreClosed
	}
	if !doc.Valid() {
		return domainerrors.ErrInvalidID
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(doc.Collection(), doc.ID()))
	})
	if err != nil {
		return err
	}
	s.hub.notify(doc.Collection())
	return nil
}

// DeleteBatch removes every id with one write batch, subscribers see a single change.
func (s *BadgerStore) DeleteBatch(_ context.Context, collection document.CollectionPath, ids []string) error {
	defer observability.ObserveStore(badgerBackend, "delete_batch", time.Now())
	if s.closed.Load() {
		return domainerrors.ErrStoreClosed
	}
	if len(ids) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, id := range ids {
		if err := wb.Delete(docKey(collection, id)); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}
	s.hub.notify(collection)
	return nil
}

func (s *BadgerStore) List(_ context.Context, collection document.CollectionPath) ([]document.Document, error) {
	defer observability.ObserveStore(badgerBackend, "list", time.Now())
	if s.closed.Load() {
		return nil, domainerrors.ErrStoreClosed
	}
	var docs []document.Document
	err := s.db.View(func(txn *badger.Txn) error {
		prefixStr := collectionPrefix(collection)
		prefix := []byte(prefixStr)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefixStr):])
			err := item.Value(func(val []byte) error {
				fields, err := decodeFields(val)
				if err != nil {
					s.log.Warn("Skipping undecodable document", "id", id, "error", err)
					return nil
				}
				docs = append(docs, document.Document{ID: id, Fields: fields})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *BadgerStore) Subscribe(ctx context.Context, collection document.CollectionPath) (contract.Subscription, error) {
	if s.closed.Load() {
		return nil, domainerrors.ErrStoreClosed
	}
	var sub *subscription
	sub = newSubscription(
		func(ctx context.Context) ([]document.Document, error) { return s.List(ctx, collection) },
		func() { s.hub.remove(collection, sub) },
	)
	s.hub.add(collection, sub)

	go sub.run(ctx)
	return sub, nil
}

// Close ends every subscription. The badger database itself is owned by the caller.
func (s *BadgerStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.hub.closeAll()
	}
	return nil
}
