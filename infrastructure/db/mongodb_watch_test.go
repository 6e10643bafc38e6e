package db

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"campusconnect/pkg/docstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// Needs a replica set: MONGODB_TEST_URI=mongodb://localhost:27017/?replicaSet=rs0
func newReplicaSetStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx := context.Background()
	store, err := NewMongoStore(ctx, uri, "campusconnect_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.DB.Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func TestMongoStore_SubscribeSeesCommitRacingTheFirstRead(t *testing.T) {
	store := newReplicaSetStore(t)
	ctx := context.Background()
	path := docstore.Path("chats", "a_b", "messages")

	_, err := store.Add(ctx, path, map[string]any{"text": "M1", "createdAt": docstore.ServerTimestamp})
	require.NoError(t, err)

	origOpen := openChangeStream
	t.Cleanup(func() { openChangeStream = origOpen })
	openChangeStream = func(ctx context.Context, coll *mongo.Collection) (*mongo.ChangeStream, error) {
		// the other participant sends while the subscription is being set up
		_, err := store.Add(context.Background(), path, map[string]any{"text": "M2", "createdAt": docstore.ServerTimestamp})
		require.NoError(t, err)
		return origOpen(ctx, coll)
	}

	var mu sync.Mutex
	var last []docstore.Document
	unsub, err := store.Subscribe(ctx, docstore.Collection(path).Order("createdAt", false), func(docs []docstore.Document) {
		mu.Lock()
		last = docs
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsub()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestMongoStore_SubscribeDeliversLaterWrites(t *testing.T) {
	store := newReplicaSetStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var last []docstore.Document
	unsub, err := store.Subscribe(ctx, docstore.Collection("friend_requests").Where("to", "u2"), func(docs []docstore.Document) {
		mu.Lock()
		last = docs
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, store.Set(ctx, "friend_requests", "u1_u2", map[string]any{"from": "u1", "to": "u2"}, docstore.SetOptions{}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 1 && last[0].Id == "u1_u2"
	}, 5*time.Second, 20*time.Millisecond)
}
