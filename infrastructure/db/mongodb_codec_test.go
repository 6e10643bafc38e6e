package db

import (
	"testing"
	"time"

	"campusconnect/pkg/docstore"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPhysicalName(t *testing.T) {
	assert.Equal(t, "chats_messages", physicalName("chats/a_b", "messages"))
	assert.Equal(t, "activities_tasks_notes", physicalName("activities/a1/tasks/t1", "notes"))
}

func TestDecodeDocument(t *testing.T) {
	ts := time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)
	raw := bson.M{
		"_id":       "u1_u2",
		"_parent":   "chats/x",
		"users":     primitive.A{"u1", "u2"},
		"updatedAt": primitive.NewDateTimeFromTime(ts),
		"count":     int32(4),
		"meta":      primitive.D{{Key: "k", Value: "v"}},
	}

	doc := decodeDocument(raw)
	assert.Equal(t, "u1_u2", doc.Id)
	assert.False(t, doc.Has("_parent"))
	assert.Equal(t, []string{"u1", "u2"}, doc.Strings("users"))
	got, ok := doc.Time("updatedAt")
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))
	assert.Equal(t, int64(4), doc.Fields["count"])
	assert.Equal(t, map[string]any{"k": "v"}, doc.Fields["meta"])
}

func TestBuildUpdate(t *testing.T) {
	update := buildUpdate(map[string]any{
		"name":       "Study",
		"updatedAt":  docstore.ServerTimestamp,
		"volunteers": docstore.ArrayUnion("u1"),
	})

	assert.Equal(t, bson.M{"name": "Study"}, update["$set"])
	assert.Equal(t, bson.M{"updatedAt": bson.M{"$type": "date"}}, update["$currentDate"])
	assert.Equal(t, bson.M{"volunteers": bson.M{"$each": []any{"u1"}}}, update["$addToSet"])

	assert.Equal(t, bson.M{"$set": bson.M{}}, buildUpdate(map[string]any{}))
}

func TestDocFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "c1"}, docFilter("", "c1"))
	assert.Equal(t, bson.M{"_id": "m1", "_parent": "chats/c1"}, docFilter("chats/c1", "m1"))
}
