package db

import (
	"context"
	"reflect"
	"sync"
	"time"

	"campusconnect/pkg/docstore"
	"campusconnect/pkg/logging"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Subscribe delivers the current result of q and then a fresh snapshot after
// each change to the backing collection. Change streams need a replica set;
// on a standalone server the query is polled instead and a snapshot is only
// delivered when the result differs from the last one.
func (m *MongoStore) Subscribe(ctx context.Context, q docstore.Query, fn docstore.SnapshotFunc) (docstore.Unsubscribe, error) {
	coll, _, err := m.resolve(q.Collection)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)

	// The stream is opened before the first read so a commit landing between
	// the two still produces an event.
	stream, watchErr := openChangeStream(watchCtx, coll)

	initial, err := m.Find(ctx, q)
	if err != nil {
		cancel()
		if stream != nil {
			_ = stream.Close(context.Background())
		}
		return nil, err
	}
	fn(initial)

	w := &watcher{store: m, query: q, fn: fn, last: initial}
	go w.run(watchCtx, stream, watchErr)

	var once sync.Once
	return func() {
		once.Do(cancel)
	}, nil
}

var openChangeStream = func(ctx context.Context, coll *mongo.Collection) (*mongo.ChangeStream, error) {
	return coll.Watch(ctx, mongo.Pipeline{}, options.ChangeStream().SetFullDocument(options.UpdateLookup))
}

type watcher struct {
	store *MongoStore
	query docstore.Query
	fn    docstore.SnapshotFunc
	last  []docstore.Document
}

// run consumes stream, or polls when the stream could not be opened.
func (w *watcher) run(ctx context.Context, stream *mongo.ChangeStream, watchErr error) {
	log := logging.FromContext(ctx).With(logging.Collection(w.query.Collection))

	if watchErr != nil {
		if ctx.Err() != nil {
			return
		}
		log.Debug("change stream unavailable, polling", logging.Err(watchErr))
		w.poll(ctx)
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		w.refresh(ctx, false)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		log.Warn("change stream closed, polling", logging.Err(err))
		w.poll(ctx)
	}
}

func (w *watcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.store.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx, true)
		}
	}
}

func (w *watcher) refresh(ctx context.Context, onlyChanged bool) {
	docs, err := w.store.Find(ctx, w.query)
	if err != nil {
		if ctx.Err() == nil {
			logging.FromContext(ctx).Warn("live query refresh failed",
				logging.Collection(w.query.Collection), logging.Err(err))
		}
		return
	}
	if onlyChanged && reflect.DeepEqual(docs, w.last) {
		return
	}
	w.last = docs
	w.fn(docs)
}
