//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"wish-wall/domain/document"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision lifecycle events.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// DocumentStore is the shared realtime document collection every client talks to.
// Implementations must be safe for concurrent use.
type DocumentStore interface {
	// Create adds a document under a store generated id and returns that id.
	Create(ctx context.Context, collection document.CollectionPath, fields document.Fields) (string, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, doc document.DocumentPath, fields document.Fields) error
	// Delete removes a document, a missing one is not an error.
	Delete(ctx context.Context, doc document.DocumentPath) error
	List(ctx context.Context, collection document.CollectionPath) ([]document.Document, error)
	// DeleteBatch removes all listed ids in a single atomic write.
	DeleteBatch(ctx context.Context, collection document.CollectionPath, ids []string) error
	// Subscribe delivers a full snapshot right away and again after every change.
	Subscribe(ctx context.Context, collection document.CollectionPath) (Subscription, error)
	Close() error
}

type Subscription interface {
	// Snapshots is closed once the subscription ends.
	Snapshots() <-chan document.Snapshot
	Errors() <-chan error
	Unsubscribe()
}

type FeedName string

const (
	QueueFeed FeedName = "queue"
	WallFeed  FeedName = "wall"
)

// View is a projection ready to be pushed to a viewer.
type View interface {
	Feed() FeedName
}

type ViewSink interface {
	Consume(ctx context.Context, v View) error
}

type IRegistry interface {
	GetSinksForFeed(feed FeedName) []ViewSink
	Subscribe(viewerID string, feed FeedName, sink ViewSink)
	Unsubscribe(viewerID string, feed FeedName)
	Count(feed FeedName) int
}
