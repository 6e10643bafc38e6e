package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPath(t *testing.T) {
	parent, name, err := SplitPath("chats")
	require.NoError(t, err)
	assert.Equal(t, "", parent)
	assert.Equal(t, "chats", name)

	parent, name, err = SplitPath(Path("chats", "a_b", "messages"))
	require.NoError(t, err)
	assert.Equal(t, "chats/a_b", parent)
	assert.Equal(t, "messages", name)

	_, _, err = SplitPath("chats/a_b")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, _, err = SplitPath("chats//messages")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestMatches(t *testing.T) {
	fields := map[string]any{
		"status": "pending",
		"users":  []any{"u1", "u2"},
		"count":  int64(3),
	}

	assert.True(t, Matches(fields, Collection("x").Where("status", "pending").Filters))
	assert.False(t, Matches(fields, Collection("x").Where("status", "accepted").Filters))
	assert.True(t, Matches(fields, Collection("x").WhereArrayContains("users", "u2").Filters))
	assert.False(t, Matches(fields, Collection("x").WhereArrayContains("users", "u3").Filters))
	assert.False(t, Matches(fields, Collection("x").WhereArrayContains("status", "pending").Filters))
	assert.True(t, Matches(fields, Collection("x").Where("count", 3).Filters))
	assert.False(t, Matches(fields, Collection("x").Where("missing", "v").Filters))
}

func TestWhereDoesNotShareFilters(t *testing.T) {
	base := Collection("x").Where("a", 1)
	q1 := base.Where("b", 2)
	q2 := base.Where("c", 3)

	require.Len(t, q1.Filters, 2)
	require.Len(t, q2.Filters, 2)
	assert.Equal(t, "b", q1.Filters[1].Field)
	assert.Equal(t, "c", q2.Filters[1].Field)
}

func TestSortDocumentsMissingFieldLast(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []Document{
		{Id: "none", Fields: map[string]any{}},
		{Id: "old", Fields: map[string]any{"updatedAt": t0}},
		{Id: "new", Fields: map[string]any{"updatedAt": t0.Add(time.Hour)}},
	}

	SortDocuments(docs, Collection("x").Order("updatedAt", true))
	assert.Equal(t, []string{"new", "old", "none"}, ids(docs))

	SortDocuments(docs, Collection("x").Order("updatedAt", false))
	assert.Equal(t, []string{"old", "new", "none"}, ids(docs))
}

func TestDocumentAccessors(t *testing.T) {
	ts := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	d := Document{Id: "1", Fields: map[string]any{
		"name":  "Study Group",
		"at":    ts,
		"users": []any{"u1", 7, "u2"},
	}}

	assert.Equal(t, "Study Group", d.String("name"))
	assert.Equal(t, "", d.String("at"))
	got, ok := d.Time("at")
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))
	_, ok = d.Time("name")
	assert.False(t, ok)
	assert.Equal(t, []string{"u1", "u2"}, d.Strings("users"))
	assert.True(t, d.Has("users"))
	assert.False(t, d.Has("missing"))
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Id)
	}
	return out
}
