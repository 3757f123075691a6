package services

import (
	"context"
	"log/slog"
	"time"
	"wish-wall/contract"
	"wish-wall/domain/document"
	"wish-wall/domain/wall"
	"wish-wall/errors"
	"wish-wall/observability"
	"wish-wall/projection"

	"github.com/samber/lo"
)

type IModerationService interface {
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	ClearAll(ctx context.Context, confirmed bool) (int, error)
	Current() projection.QueueView
	Watch(ctx context.Context, viewerID string, sink contract.ViewSink)
	Unwatch(viewerID string)
}

// ModerationService backs the moderator view: the live queue of pending
// wishes and the decisions taken on them.
type ModerationService struct {
	store      contract.DocumentStore
	collection document.CollectionPath
	log        *slog.Logger
	*Feed
}

func NewModerationService(
	store contract.DocumentStore,
	collection document.CollectionPath,
	registry contract.IRegistry,
	hinter projection.Hinter,
	log *slog.Logger,
	sinkTimeout time.Duration,
) *ModerationService {
	return &ModerationService{
		store:      store,
		collection: collection,
		log:        log,
		Feed: NewFeed(contract.QueueFeed, store, collection, registry,
			projection.QueueProjector(hinter), log, sinkTimeout),
	}
}

func (s *ModerationService) Approve(ctx context.Context, id string) error {
	return s.decide(ctx, id, wall.Approved)
}

func (s *ModerationService) Reject(ctx context.Context, id string) error {
	return s.decide(ctx, id, wall.Rejected)
}

// decide writes the status field only. Deciding twice is not an error.
func (s *ModerationService) decide(ctx context.Context, id string, status wall.Status) error {
	if !document.ValidID(id) {
		return errors.ErrInvalidID
	}
	if err := s.store.Update(ctx, s.collection.Doc(id), wall.StatusFields(status)); err != nil {
		s.log.Error("Moderation failed", "id", id, "status", status, "error", err)
		return storeError(err)
	}
	observability.ModerationActions.WithLabelValues(string(status)).Inc()
	s.log.Info("Wish moderated", "id", id, "status", status)
	return nil
}

// ClearAll deletes every message, whatever its status, after an explicit
// confirmation. It reads the collection once then deletes in one batch.
func (s *ModerationService) ClearAll(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, errors.ErrConfirmationRequired
	}
	docs, err := s.store.List(ctx, s.collection)
	if err != nil {
		s.log.Error("Clear-all listing failed", "error", err)
		return 0, storeError(err)
	}
	ids := lo.Map(docs, func(d document.Document, _ int) string { return d.ID })
	if len(ids) == 0 {
		return 0, nil
	}
	if err = s.store.DeleteBatch(ctx, s.collection, ids); err != nil {
		s.log.Error("Clear-all delete failed", "count", len(ids), "error", err)
		return 0, storeError(err)
	}
	observability.MessagesCleared.Add(float64(len(ids)))
	s.log.Warn("Wall cleared", "count", len(ids))
	return len(ids), nil
}

func (s *ModerationService) Current() projection.QueueView {
	view, _ := s.Feed.Current().(projection.QueueView)
	return view
}
