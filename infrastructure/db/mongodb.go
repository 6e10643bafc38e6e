package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"campusconnect/pkg/docstore"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	idField     = "_id"
	parentField = "_parent"

	defaultPollInterval = 2 * time.Second
)

// MongoStore implements docstore.Store on MongoDB. Sub-collections such as
// chats/{id}/messages live in a flat "chats_messages" collection keyed by a
// _parent field holding the owning document path.
type MongoStore struct {
	Client *mongo.Client
	DB     *mongo.Database

	pollInterval time.Duration
	now          func() time.Time
}

type MongoOption func(*MongoStore)

// WithPollInterval sets how often live queries re-run when change streams are
// not available (standalone servers).
func WithPollInterval(d time.Duration) MongoOption {
	return func(m *MongoStore) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

func NewMongoStore(ctx context.Context, uri, dbName string, opts ...MongoOption) (*MongoStore, error) {
	if uri == "" {
		uri = os.Getenv("MONGODB_URI")
		if uri == "" {
			uri = "mongodb://localhost:27017"
		}
	}
	if dbName == "" {
		dbName = os.Getenv("MONGODB_DATABASE")
	}

	if dbName == "" {
		return nil, errors.New("database name required (set dbName or MONGODB_DATABASE)")
	}

	clientOpts := options.Client().ApplyURI(uri).
		SetMaxPoolSize(100)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, err
	}

	store := &MongoStore{
		Client:       client,
		DB:           client.Database(dbName),
		pollInterval: defaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	disconnectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(disconnectCtx)
}

func (m *MongoStore) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return errors.New("mongo client is nil")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.Client.Ping(pingCtx, nil)
}

// EnsureIndexes creates the indexes backing the live queries.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"chats": {
			{Keys: bson.D{{Key: "users", Value: 1}, {Key: "updatedAt", Value: -1}}},
		},
		"chats_messages": {
			{Keys: bson.D{{Key: parentField, Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		"friend_requests": {
			{Keys: bson.D{{Key: "to", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "from", Value: 1}, {Key: "status", Value: 1}}},
		},
		"activities": {
			{Keys: bson.D{{Key: "community_name", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "volunteer_list", Value: 1}}},
		},
		"assignments": {
			{Keys: bson.D{{Key: "studentId", Value: 1}}},
			{Keys: bson.D{{Key: "communityName", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if _, err := m.DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	coll, parent, err := m.resolve(collection)
	if err != nil {
		return docstore.Document{}, err
	}

	var raw bson.M
	err = coll.FindOne(ctx, docFilter(parent, id)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, err
	}
	return decodeDocument(raw), nil
}

func (m *MongoStore) Set(ctx context.Context, collection, id string, fields map[string]any, opts docstore.SetOptions) error {
	coll, parent, err := m.resolve(collection)
	if err != nil {
		return err
	}

	if opts.Merge {
		// the upsert seeds _id and _parent from the equality filter
		_, err = coll.UpdateOne(ctx, docFilter(parent, id), buildUpdate(fields), options.Update().SetUpsert(true))
		return err
	}

	replacement := bson.M{idField: id}
	if parent != "" {
		replacement[parentField] = parent
	}
	commitTime := m.now().UTC()
	for k, v := range fields {
		switch {
		case docstore.IsServerTimestamp(v):
			replacement[k] = commitTime
		default:
			if union, ok := v.(docstore.ArrayUnionValue); ok {
				replacement[k] = dedupe(union.Elements)
				continue
			}
			replacement[k] = v
		}
	}
	_, err = coll.ReplaceOne(ctx, docFilter(parent, id), replacement, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := newDocumentId()
	if err := m.Set(ctx, collection, id, fields, docstore.SetOptions{Merge: true}); err != nil {
		return "", err
	}
	return id, nil
}

func (m *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	coll, parent, err := m.resolve(collection)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, docFilter(parent, id), buildUpdate(fields))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, collection, id string) error {
	coll, parent, err := m.resolve(collection)
	if err != nil {
		return err
	}
	_, err = coll.DeleteOne(ctx, docFilter(parent, id))
	return err
}

func (m *MongoStore) Find(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	coll, parent, err := m.resolve(q.Collection)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	if parent != "" {
		filter[parentField] = parent
	}
	for _, f := range q.Filters {
		switch f.Op {
		case docstore.OpEqual, docstore.OpArrayContains:
			// an equality match on an array field matches any element
			filter[f.Field] = f.Value
		default:
			return nil, fmt.Errorf("%w: operator %q", docstore.ErrUnsupportedType, f.Op)
		}
	}

	findOpts := options.Find()
	if q.OrderBy != "" {
		dir := 1
		if q.Descending {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: q.OrderBy, Value: dir}, {Key: idField, Value: 1}})
	}

	cursor, err := coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, err
	}

	docs := make([]docstore.Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, decodeDocument(raw))
	}
	// mongo orders missing fields first; keep them last like the memory store
	docstore.SortDocuments(docs, q)
	return docs, nil
}

// resolve maps a collection path to its physical collection and parent path.
func (m *MongoStore) resolve(collection string) (*mongo.Collection, string, error) {
	parent, name, err := docstore.SplitPath(collection)
	if err != nil {
		return nil, "", err
	}
	if parent == "" {
		return m.DB.Collection(name), "", nil
	}
	return m.DB.Collection(physicalName(parent, name)), parent, nil
}

func docFilter(parent, id string) bson.M {
	filter := bson.M{idField: id}
	if parent != "" {
		filter[parentField] = parent
	}
	return filter
}

func buildUpdate(fields map[string]any) bson.M {
	set := bson.M{}
	currentDate := bson.M{}
	addToSet := bson.M{}
	for k, v := range fields {
		if docstore.IsServerTimestamp(v) {
			currentDate[k] = bson.M{"$type": "date"}
			continue
		}
		if union, ok := v.(docstore.ArrayUnionValue); ok {
			addToSet[k] = bson.M{"$each": union.Elements}
			continue
		}
		set[k] = v
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(currentDate) > 0 {
		update["$currentDate"] = currentDate
	}
	if len(addToSet) > 0 {
		update["$addToSet"] = addToSet
	}
	if len(update) == 0 {
		// an empty update document is rejected by the server
		update["$set"] = bson.M{}
	}
	return update
}

func dedupe(elements []any) []any {
	out := make([]any, 0, len(elements))
	for _, e := range elements {
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
