package storage

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
	"wish-wall/contract"
	"wish-wall/domain/document"
	"wish-wall/domain/wall"
	"wish-wall/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

const snapshotTimeout = 2 * time.Second

var collection = document.NewCollectionPath("artifacts", "test", "public", "data", "wall_messages")

type storeFactory func(t *testing.T) contract.DocumentStore

func newBadgerStore(t *testing.T) contract.DocumentStore {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	store := NewBadgerStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		_ = store.Close()
		_ = db.Close()
	})
	return store
}

func newRedisStore(t *testing.T) contract.DocumentStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		_ = store.Close()
		_ = client.Close()
	})
	return store
}

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"badger": newBadgerStore,
		"redis":  newRedisStore,
	}
}

func nextSnapshot(t *testing.T, sub contract.Subscription) document.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(snapshotTimeout):
		require.FailNow(t, "no snapshot received")
		return document.Snapshot{}
	}
}

// waitFor reads snapshots until one satisfies cond, tolerating coalesced
// or intermediate deliveries.
func waitFor(t *testing.T, sub contract.Subscription, cond func(document.Snapshot) bool) document.Snapshot {
	t.Helper()
	deadline := time.After(snapshotTimeout)
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			require.True(t, ok, "subscription closed")
			if cond(snap) {
				return snap
			}
		case <-deadline:
			require.FailNow(t, "expected snapshot never arrived")
			return document.Snapshot{}
		}
	}
}

func byID(docs []document.Document) map[string]document.Fields {
	out := make(map[string]document.Fields, len(docs))
	for _, d := range docs {
		out[d.ID] = d.Fields
	}
	return out
}

func TestStore_Create_Update_List(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			store := factory(t)

			// Given a created document
			id, err := store.Create(ctx, collection, document.Fields{"text": "Peace on Earth", "status": "pending", "createdAt": int64(1000)})
			req.NoError(err)
			req.NotEmpty(id)

			// When only its status is updated
			err = store.Update(ctx, collection.Doc(id), document.Fields{"status": "approved"})
			req.NoError(err)

			// Then the other fields are untouched
			docs, err := store.List(ctx, collection)
			req.NoError(err)
			req.Len(docs, 1)
			fields := byID(docs)[id]
			req.Equal("Peace on Earth", fields["text"])
			req.Equal("approved", fields["status"])
			req.Equal(float64(1000), fields["createdAt"])
		})
	}
}

func TestStore_Update_Missing_Document(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			store := factory(t)

			err := store.Update(context.Background(), collection.Doc("ghost"), document.Fields{"status": "approved"})

			req.ErrorIs(err, errors.ErrNotFound)
		})
	}
}

func TestStore_Concurrent_Updates_Last_Write_Wins(t *testing.T) {
	const (
		writers = 8
		rounds  = 10
	)
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			store := factory(t)

			// Given a pending message
			id, err := store.Create(ctx, collection, wall.NewFields("Joy to the world", time.UnixMilli(1000)))
			req.NoError(err)
			doc := collection.Doc(id)

			// When several moderators flip its status at the same time
			errs := make(chan error, writers*rounds)
			var wg sync.WaitGroup
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for r := 0; r < rounds; r++ {
						status := wall.Approved
						if (w+r)%2 == 1 {
							status = wall.Rejected
						}
						errs <- store.Update(ctx, doc, wall.StatusFields(status))
					}
				}(w)
			}
			wg.Wait()
			close(errs)

			// Then every write succeeds and the document stays whole
			for err := range errs {
				req.NoError(err)
			}
			docs, err := store.List(ctx, collection)
			req.NoError(err)
			fields := byID(docs)[id]
			req.Equal("Joy to the world", fields[wall.FieldText])
			req.Contains([]any{string(wall.Approved), string(wall.Rejected)}, fields[wall.FieldStatus])

			// And a later single write is the one that sticks
			req.NoError(store.Update(ctx, doc, wall.StatusFields(wall.Rejected)))
			docs, err = store.List(ctx, collection)
			req.NoError(err)
			req.Equal(string(wall.Rejected), byID(docs)[id][wall.FieldStatus])
		})
	}
}

func TestStore_Delete_And_DeleteBatch(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			store := factory(t)

			var ids []string
			for i := 0; i < 4; i++ {
				id, err := store.Create(ctx, collection, document.Fields{"text": "wish", "status": "pending", "createdAt": int64(i)})
				req.NoError(err)
				ids = append(ids, id)
			}

			// Deleting a missing document is not an error
			req.NoError(store.Delete(ctx, collection.Doc("ghost")))

			req.NoError(store.Delete(ctx, collection.Doc(ids[0])))
			req.NoError(store.DeleteBatch(ctx, collection, ids[1:3]))

			docs, err := store.List(ctx, collection)
			req.NoError(err)
			req.Len(docs, 1)
			req.Equal(ids[3], docs[0].ID)

			// An empty batch is a no-op
			req.NoError(store.DeleteBatch(ctx, collection, nil))
		})
	}
}

func TestStore_Collections_Are_Isolated(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			store := factory(t)
			other := document.NewCollectionPath("artifacts", "other", "public", "data", "wall_messages")

			_, err := store.Create(ctx, other, document.Fields{"text": "elsewhere"})
			req.NoError(err)

			docs, err := store.List(ctx, collection)
			req.NoError(err)
			req.Empty(docs)
		})
	}
}

func TestStore_Subscribe_Delivers_Initial_And_Changes(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			store := factory(t)

			// Given a document already stored
			first, err := store.Create(ctx, collection, document.Fields{"text": "first", "status": "pending", "createdAt": int64(1)})
			req.NoError(err)

			// When subscribing
			sub, err := store.Subscribe(ctx, collection)
			req.NoError(err)
			defer sub.Unsubscribe()

			// Then the initial snapshot holds it
			initial := nextSnapshot(t, sub)
			req.Len(initial.Documents, 1)
			req.Equal(first, initial.Documents[0].ID)

			// When a second one is created
			second, err := store.Create(ctx, collection, document.Fields{"text": "second", "status": "pending", "createdAt": int64(2)})
			req.NoError(err)

			// Then a snapshot with both eventually arrives
			snap := waitFor(t, sub, func(s document.Snapshot) bool { return len(s.Documents) == 2 })
			req.Contains(byID(snap.Documents), second)

			// When the first one is approved
			req.NoError(store.Update(ctx, collection.Doc(first), document.Fields{"status": "approved"}))

			// Then the change is visible
			waitFor(t, sub, func(s document.Snapshot) bool {
				return byID(s.Documents)[first]["status"] == "approved"
			})
		})
	}
}

func TestStore_Unsubscribe_Closes_Snapshots(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			store := factory(t)

			sub, err := store.Subscribe(ctx, collection)
			req.NoError(err)
			nextSnapshot(t, sub)

			sub.Unsubscribe()
			sub.Unsubscribe()

			req.Eventually(func() bool {
				_, ok := <-sub.Snapshots()
				return !ok
			}, snapshotTimeout, 10*time.Millisecond)
		})
	}
}

func TestStore_Close_Ends_Subscriptions_And_Rejects_Writes(t *testing.T) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			store := factory(t)

			sub, err := store.Subscribe(ctx, collection)
			req.NoError(err)
			nextSnapshot(t, sub)

			req.NoError(store.Close())

			req.Eventually(func() bool {
				_, ok := <-sub.Snapshots()
				return !ok
			}, snapshotTimeout, 10*time.Millisecond)

			_, err = store.Create(ctx, collection, document.Fields{"text": "late"})
			req.ErrorIs(err, errors.ErrStoreClosed)
			_, err = store.Subscribe(ctx, collection)
			req.ErrorIs(err, errors.ErrStoreClosed)
		})
	}
}

func TestInspectMapper(t *testing.T) {
	req := require.New(t)

	// Given an encoded pending wish
	at := time.UnixMilli(1_700_000_000_000)
	bytes, err := encodeFields(wall.NewFields("Peace on Earth", at))
	req.NoError(err)

	// When mapped for the inspector
	row := InspectMapper("doc:artifacts/app/public/data/wall_messages:abc", bytes)

	// Then the row shows its status and text
	req.Equal("PENDING", row.Type)
	req.Equal("Peace on Earth", row.Detail)

	// And garbage is reported, not dropped
	row = InspectMapper("doc:x:y", []byte{0xff, 0xff})
	req.Equal("Error: unmarshal failed", row.Detail)
}
