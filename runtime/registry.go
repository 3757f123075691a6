package runtime

import (
	"sync"
	"wish-wall/contract"
)

type members map[string]contract.ViewSink

// Registry tracks which viewers watch which feed.
// A viewer may watch several feeds with a distinct sink for each one.
type Registry struct {
	mu          sync.RWMutex
	feedViewers map[contract.FeedName]members
}

func NewRegistry() *Registry {
	return &Registry{feedViewers: make(map[contract.FeedName]members)}
}

// GetSinksForFeed returns a snapshot of the sinks currently attached to a feed,
// or nil when nobody is watching.
func (r *Registry) GetSinksForFeed(feed contract.FeedName) []contract.ViewSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	viewers, ok := r.feedViewers[feed]
	if !ok {
		return nil
	}
	sinks := make([]contract.ViewSink, 0, len(viewers))
	for _, sink := range viewers {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Subscribe attaches a viewer's sink to a feed, replacing any previous sink
// the same viewer had on it.
func (r *Registry) Subscribe(viewerID string, feed contract.FeedName, sink contract.ViewSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.feedViewers[feed]; !ok {
		r.feedViewers[feed] = make(members)
	}
	r.feedViewers[feed][viewerID] = sink
}

// Unsubscribe detaches a viewer from a feed and drops the feed entry once empty.
func (r *Registry) Unsubscribe(viewerID string, feed contract.FeedName) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if viewers, ok := r.feedViewers[feed]; ok {
		delete(viewers, viewerID)
		if len(viewers) == 0 {
			delete(r.feedViewers, feed)
		}
	}
}

func (r *Registry) Count(feed contract.FeedName) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.feedViewers[feed])
}
