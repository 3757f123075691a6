package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"wish-wall/contract"
	"wish-wall/domain/document"
	"wish-wall/domain/wall"
	"wish-wall/errors"
	"wish-wall/observability"
	"wish-wall/projection"
)

// Feed owns one live subscription to the message collection and keeps
// the latest projected view for a set of viewers.
// Every snapshot is projected from scratch and pushed to every sink
// registered on the feed; a slow sink is given up after sinkTimeout.
type Feed struct {
	name        contract.FeedName
	store       contract.DocumentStore
	collection  document.CollectionPath
	registry    contract.IRegistry
	project     projection.Projector
	log         *slog.Logger
	sinkTimeout time.Duration

	mu     sync.RWMutex
	latest contract.View

	// deliverMu keeps pushes to sinks in snapshot order
	deliverMu sync.Mutex
}

func NewFeed(
	name contract.FeedName,
	store contract.DocumentStore,
	collection document.CollectionPath,
	registry contract.IRegistry,
	project projection.Projector,
	log *slog.Logger,
	sinkTimeout time.Duration,
) *Feed {
	return &Feed{
		name:        name,
		store:       store,
		collection:  collection,
		registry:    registry,
		project:     project,
		log:         log.With("feed", name),
		sinkTimeout: sinkTimeout,
	}
}

// Run subscribes and applies snapshots until ctx is done or the
// subscription ends. Subscription errors keep the last good view.
func (f *Feed) Run(ctx context.Context) error {
	sub, err := f.store.Subscribe(ctx, f.collection)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	defer sub.Unsubscribe()
	f.log.Info("Feed subscribed", "collection", f.collection)

	snapshots := sub.Snapshots()
	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			f.log.Debug("Context done, stopping feed")
			return nil
		case err := <-errs:
			f.log.Warn("Subscription error, keeping last view", "error", err)
		case snap, ok := <-snapshots:
			if !ok {
				return errors.ErrSubscriptionClosed
			}
			f.apply(ctx, snap)
		}
	}
}

func (f *Feed) apply(ctx context.Context, snap document.Snapshot) {
	view := f.project(decodeMessages(snap.Documents, f.log))

	f.mu.Lock()
	f.latest = view
	f.mu.Unlock()

	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()
	for _, sink := range f.registry.GetSinksForFeed(f.name) {
		f.deliver(ctx, sink, view)
	}
}

func (f *Feed) deliver(ctx context.Context, sink contract.ViewSink, view contract.View) {
	sinkCtx, cancel := context.WithTimeout(ctx, f.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, view); err != nil {
		observability.DeliveriesDropped.WithLabelValues(string(f.name)).Inc()
		f.log.Debug("View delivery failed", "error", err)
		return
	}
	observability.SnapshotsDelivered.WithLabelValues(string(f.name)).Inc()
}

// Current returns the latest view, or the empty view before the first snapshot.
func (f *Feed) Current() contract.View {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.latest == nil {
		return f.project(nil)
	}
	return f.latest
}

// Watch registers a viewer and pushes it the latest view right away.
func (f *Feed) Watch(ctx context.Context, viewerID string, sink contract.ViewSink) {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()
	f.registry.Subscribe(viewerID, f.name, sink)
	f.deliver(ctx, sink, f.Current())
}

func (f *Feed) Unwatch(viewerID string) {
	f.registry.Unsubscribe(viewerID, f.name)
}

// decodeMessages skips documents that are not wishes instead of failing the whole snapshot.
func decodeMessages(docs []document.Document, log *slog.Logger) []wall.Message {
	messages := make([]wall.Message, 0, len(docs))
	for _, doc := range docs {
		msg, err := wall.FromDocument(doc)
		if err != nil {
			log.Warn("Skipping malformed message", "id", doc.ID, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}
