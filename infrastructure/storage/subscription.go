package storage

import (
	"context"
	"sync"
	"time"
	"wish-wall/domain/document"
)

type lister func(ctx context.Context) ([]document.Document, error)

// subscription turns change notifications into full collection snapshots.
// Notifications are coalesced: a burst of writes yields at least one
// snapshot reflecting all of them.
type subscription struct {
	list      lister
	changed   chan struct{}
	snapshots chan document.Snapshot
	errs      chan error
	done      chan struct{}
	once      sync.Once
	release   func()
}

func newSubscription(list lister, release func()) *subscription {
	return &subscription{
		list:      list,
		changed:   make(chan struct{}, 1),
		snapshots: make(chan document.Snapshot),
		errs:      make(chan error, 1),
		done:      make(chan struct{}),
		release:   release,
	}
}

func (s *subscription) Snapshots() <-chan document.Snapshot { return s.snapshots }

func (s *subscription) Errors() <-chan error { return s.errs }

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		if s.release != nil {
			s.release()
		}
	})
}

// notify never blocks, a pending signal already covers the new change.
func (s *subscription) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *subscription) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// run is the only writer of snapshots and the one closing it.
func (s *subscription) run(ctx context.Context) {
	defer close(s.snapshots)
	defer s.Unsubscribe()

	if !s.emit(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.changed:
			if !s.emit(ctx) {
				return
			}
		}
	}
}

func (s *subscription) emit(ctx context.Context) bool {
	docs, err := s.list(ctx)
	if err != nil {
		s.fail(err)
		return ctx.Err() == nil
	}
	select {
	case s.snapshots <- document.Snapshot{Documents: docs, ReadAt: time.Now().UTC()}:
		return true
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	}
}

// hub tracks live subscriptions per collection.
type hub struct {
	mu   sync.RWMutex
	subs map[document.CollectionPath]map[*subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[document.CollectionPath]map[*subscription]struct{})}
}

func (h *hub) add(collection document.CollectionPath, sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[collection]; !ok {
		h.subs[collection] = make(map[*subscription]struct{})
	}
	h.subs[collection][sub] = struct{}{}
}

func (h *hub) remove(collection document.CollectionPath, sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subs[collection]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subs, collection)
		}
	}
}

func (h *hub) notify(collection document.CollectionPath) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[collection] {
		sub.notify()
	}
}

// closeAll ends every subscription. Locks are released before
// Unsubscribe since it calls back into remove.
func (h *hub) closeAll() {
	h.mu.RLock()
	var all []*subscription
	for _, subs := range h.subs {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range all {
		sub.Unsubscribe()
	}
}
