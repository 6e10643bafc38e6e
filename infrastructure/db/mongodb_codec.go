package db

import (
	"strings"
	"time"

	"campusconnect/pkg/docstore"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// physicalName flattens "chats/abc" + "messages" into "chats_messages".
func physicalName(parent, name string) string {
	segments := strings.Split(parent, "/")
	parts := make([]string, 0, len(segments)/2+1)
	for i := 0; i < len(segments); i += 2 {
		parts = append(parts, segments[i])
	}
	parts = append(parts, name)
	return strings.Join(parts, "_")
}

// newDocumentId returns a time-ordered UUIDv7 so the _id tiebreak in Find
// follows insertion order.
func newDocumentId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func decodeDocument(raw bson.M) docstore.Document {
	doc := docstore.Document{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case idField:
			doc.Id = idString(v)
		case parentField:
		default:
			doc.Fields[k] = fromBSON(v)
		}
	}
	return doc
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	}
	return ""
}

// fromBSON converts driver types into the plain values documented on
// docstore.Document.
func fromBSON(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(val.T), 0).UTC()
	case time.Time:
		return val.UTC()
	case primitive.A:
		out := make([]any, 0, len(val))
		for _, e := range val {
			out = append(out, fromBSON(e))
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, e := range val {
			out = append(out, fromBSON(e))
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = fromBSON(e)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case primitive.ObjectID:
		return val.Hex()
	case int32:
		return int64(val)
	}
	return v
}
