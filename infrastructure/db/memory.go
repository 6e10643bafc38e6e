package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"campusconnect/pkg/docstore"

	"github.com/google/uuid"
)

// MemoryStore is an in-process docstore.Store. Snapshots are delivered
// synchronously after each commit, outside the store lock. Each snapshot
// carries the commit version it was taken at, and a subscription never
// receives a version older than one it has already seen, so concurrent
// writers cannot leave a subscriber on a stale result.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]*memDoc
	subs        map[int64]*memSub
	nextSub     int64
	seq         int64
	version     int64
	now         func() time.Time
}

type memDoc struct {
	fields map[string]any
	seq    int64
}

// memSub serializes delivery for one live query. SnapshotFunc runs with
// deliverMu held, so it must not write to the store it is subscribed to.
type memSub struct {
	query docstore.Query
	fn    docstore.SnapshotFunc

	deliverMu sync.Mutex
	delivered int64
}

// deliver hands docs to the subscriber unless a newer snapshot already went out.
func (s *memSub) deliver(version int64, docs []docstore.Document) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version
	s.fn(docs)
}

type MemoryOption func(*MemoryStore)

// WithClock sets the time source used to resolve docstore.ServerTimestamp.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		collections: make(map[string]map[string]*memDoc),
		subs:        make(map[int64]*memSub),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{Id: id, Fields: copyFields(doc.fields)}, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]any, opts docstore.SetOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := docstore.SplitPath(collection); err != nil {
		return err
	}

	m.mu.Lock()
	coll := m.collection(collection)
	existing, ok := coll[id]
	if !ok || !opts.Merge {
		doc := &memDoc{fields: make(map[string]any)}
		if ok {
			doc.seq = existing.seq
		} else {
			m.seq++
			doc.seq = m.seq
		}
		coll[id] = doc
		existing = doc
	}
	m.apply(existing.fields, fields)
	notify := m.pending(collection)
	m.mu.Unlock()

	notify()
	return nil
}

func (m *MemoryStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.New().String()
	if err := m.Set(ctx, collection, id, fields, docstore.SetOptions{}); err != nil {
		return "", err
	}
	return id, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	doc, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return docstore.ErrNotFound
	}
	m.apply(doc.fields, fields)
	notify := m.pending(collection)
	m.mu.Unlock()

	notify()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	coll, ok := m.collections[collection]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	if _, ok := coll[id]; !ok {
		m.mu.Unlock()
		return nil
	}
	delete(coll, id)
	notify := m.pending(collection)
	m.mu.Unlock()

	notify()
	return nil
}

func (m *MemoryStore) Find(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.run(q), nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, q docstore.Query, fn docstore.SnapshotFunc) (docstore.Unsubscribe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.nextSub++
	subId := m.nextSub
	sub := &memSub{query: q, fn: fn, delivered: -1}
	m.subs[subId] = sub
	initial := m.run(q)
	version := m.version
	m.mu.Unlock()

	sub.deliver(version, initial)

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, subId)
			m.mu.Unlock()
			close(stop)
		})
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				unsubscribe()
			case <-stop:
			}
		}()
	}

	return unsubscribe, nil
}

// SubscriberCount reports the number of live queries.
func (m *MemoryStore) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (m *MemoryStore) collection(name string) map[string]*memDoc {
	coll, ok := m.collections[name]
	if !ok {
		coll = make(map[string]*memDoc)
		m.collections[name] = coll
	}
	return coll
}

// apply writes fields into dst resolving sentinels. Caller holds m.mu.
func (m *MemoryStore) apply(dst map[string]any, fields map[string]any) {
	commitTime := m.now().UTC()
	for k, v := range fields {
		if docstore.IsServerTimestamp(v) {
			dst[k] = commitTime
			continue
		}
		if union, ok := v.(docstore.ArrayUnionValue); ok {
			dst[k] = unionInto(dst[k], union.Elements)
			continue
		}
		dst[k] = normalize(v)
	}
}

// pending records a commit and snapshots every subscription on collection.
// Caller holds m.mu; the returned func must be called after unlocking.
func (m *MemoryStore) pending(collection string) func() {
	type delivery struct {
		sub  *memSub
		docs []docstore.Document
	}
	m.version++
	version := m.version
	var deliveries []delivery
	for _, sub := range m.subs {
		if sub.query.Collection != collection {
			continue
		}
		deliveries = append(deliveries, delivery{sub: sub, docs: m.run(sub.query)})
	}
	return func() {
		for _, d := range deliveries {
			d.sub.deliver(version, d.docs)
		}
	}
}

// run evaluates q. Caller holds m.mu.
func (m *MemoryStore) run(q docstore.Query) []docstore.Document {
	coll := m.collections[q.Collection]

	type entry struct {
		id  string
		doc *memDoc
	}
	entries := make([]entry, 0, len(coll))
	for id, doc := range coll {
		if docstore.Matches(doc.fields, q.Filters) {
			entries = append(entries, entry{id: id, doc: doc})
		}
	}
	// insertion order is the tiebreak kept by SortDocuments' stable sort
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].doc.seq < entries[j].doc.seq
	})

	docs := make([]docstore.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, docstore.Document{Id: e.id, Fields: copyFields(e.doc.fields)})
	}
	docstore.SortDocuments(docs, q)
	return docs
}

func unionInto(current any, elements []any) []any {
	var out []any
	switch cur := current.(type) {
	case []any:
		out = append(out, cur...)
	case []string:
		for _, s := range cur {
			out = append(out, s)
		}
	}
	for _, e := range elements {
		e = normalize(e)
		found := false
		for _, have := range out {
			if docstore.Equal(have, e) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, e)
		}
	}
	return out
}

func normalize(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC()
	case *time.Time:
		if val == nil {
			return nil
		}
		return val.UTC()
	case []string:
		out := make([]any, 0, len(val))
		for _, s := range val {
			out = append(out, s)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, e := range val {
			out = append(out, normalize(e))
		}
		return out
	case map[string]any:
		return copyFields(val)
	}
	return v
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = normalize(v)
	}
	return out
}
