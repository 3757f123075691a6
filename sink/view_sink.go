package sink

import (
	"context"
	"sync"
	"wish-wall/contract"
)

// ViewSink is the mailbox of one connected viewer.
// It holds at most one pending view: a newer view replaces one the viewer
// has not read yet, since each view fully supersedes the previous one.
type ViewSink struct {
	mu    sync.Mutex
	views chan contract.View
}

func NewViewSink() *ViewSink {
	return &ViewSink{views: make(chan contract.View, 1)}
}

// Consume is called by the feed worker and never blocks on a slow viewer.
func (s *ViewSink) Consume(ctx context.Context, v contract.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.views:
	default:
	}
	s.views <- v
	return nil
}

// Views is read by the transport handler owning the viewer connection.
func (s *ViewSink) Views() <-chan contract.View {
	return s.views
}
