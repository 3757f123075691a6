package services

import (
	"context"
	"log/slog"
	"time"
	"wish-wall/contract"
	"wish-wall/domain/document"
	"wish-wall/projection"
)

type IBroadcastService interface {
	Current() projection.WallView
	Watch(ctx context.Context, viewerID string, sink contract.ViewSink)
	Unwatch(viewerID string)
}

// BroadcastService backs the public wall: approved wishes, newest first,
// each with its seeded layout.
type BroadcastService struct {
	*Feed
}

func NewBroadcastService(
	store contract.DocumentStore,
	collection document.CollectionPath,
	registry contract.IRegistry,
	log *slog.Logger,
	sinkTimeout time.Duration,
) *BroadcastService {
	return &BroadcastService{
		Feed: NewFeed(contract.WallFeed, store, collection, registry,
			projection.WallProjector(), log, sinkTimeout),
	}
}

func (s *BroadcastService) Current() projection.WallView {
	view, _ := s.Feed.Current().(projection.WallView)
	return view
}
