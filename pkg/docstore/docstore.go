package docstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidPath     = errors.New("invalid collection path")
	ErrUnsupportedType = errors.New("unsupported field value")
)

// Document is a single stored record. Fields holds the decoded values with
// timestamps as time.Time and arrays as []any.
type Document struct {
	Id     string
	Fields map[string]any
}

type SetOptions struct {
	Merge bool
}

type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// Where returns a copy of q with an equality filter added.
func (q Query) Where(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: OpEqual, Value: value})
	return q
}

// WhereArrayContains returns a copy of q that matches documents whose array
// field contains value.
func (q Query) WhereArrayContains(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Op: OpArrayContains, Value: value})
	return q
}

func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

func Collection(name string) Query {
	return Query{Collection: name}
}

// SnapshotFunc receives the full result set of a live query.
type SnapshotFunc func(docs []Document)

// Unsubscribe releases a live query. Calling it more than once is safe.
type Unsubscribe func()

// Store is the document database consumed by the repositories.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Set(ctx context.Context, collection, id string, fields map[string]any, opts SetOptions) error
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, q Query) ([]Document, error)
	Subscribe(ctx context.Context, q Query, fn SnapshotFunc) (Unsubscribe, error)
}

type serverTimestamp struct{}

// ServerTimestamp is replaced with the commit time by the store.
var ServerTimestamp any = serverTimestamp{}

func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// ArrayUnionValue adds elements to an array field, skipping ones already present.
type ArrayUnionValue struct {
	Elements []any
}

func ArrayUnion(elements ...any) ArrayUnionValue {
	return ArrayUnionValue{Elements: elements}
}

// Path joins collection and document segments: Path("chats", id, "messages").
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// SplitPath returns the parent document path and the leaf collection name.
// For a top-level collection the parent is empty.
func SplitPath(collection string) (parent string, name string, err error) {
	segments := strings.Split(collection, "/")
	if len(segments)%2 == 0 {
		return "", "", ErrInvalidPath
	}
	for _, s := range segments {
		if s == "" {
			return "", "", ErrInvalidPath
		}
	}
	name = segments[len(segments)-1]
	parent = strings.Join(segments[:len(segments)-1], "/")
	return parent, name, nil
}

// String returns the string field or "".
func (d Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

// Time returns the timestamp field. The second result is false when the field
// is missing or not a timestamp.
func (d Document) Time(field string) (time.Time, bool) {
	t, ok := d.Fields[field].(time.Time)
	if !ok || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// Strings returns an array field of strings, skipping non-string elements.
func (d Document) Strings(field string) []string {
	switch v := d.Fields[field].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (d Document) Has(field string) bool {
	_, ok := d.Fields[field]
	return ok
}
