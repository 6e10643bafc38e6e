package docstore

import (
	"reflect"
	"sort"
	"time"
)

// Matches reports whether fields satisfy every filter.
func Matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		switch f.Op {
		case OpEqual:
			if !ok || !equalValues(v, f.Value) {
				return false
			}
		case OpArrayContains:
			if !ok || !arrayContains(v, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// SortDocuments orders docs by q.OrderBy. Documents missing the field sort
// last in either direction. The sort is stable so callers can pass docs in
// insertion order to get a deterministic tiebreak.
func SortDocuments(docs []Document, q Query) {
	if q.OrderBy == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, aok := docs[i].Fields[q.OrderBy]
		b, bok := docs[j].Fields[q.OrderBy]
		if !aok || !bok {
			return aok && !bok
		}
		c := compareValues(a, b)
		if q.Descending {
			return c > 0
		}
		return c < 0
	})
}

// Equal compares two field values the way equality filters do.
func Equal(a, b any) bool {
	return equalValues(a, b)
}

func arrayContains(array, value any) bool {
	switch arr := array.(type) {
	case []any:
		for _, e := range arr {
			if equalValues(e, value) {
				return true
			}
		}
	case []string:
		for _, e := range arr {
			if equalValues(e, value) {
				return true
			}
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if na, ok := toFloat(a); ok {
		nb, ok := toFloat(b)
		return ok && na == nb
	}
	return reflect.DeepEqual(a, b)
}

func compareValues(a, b any) int {
	switch va := a.(type) {
	case time.Time:
		if vb, ok := b.(time.Time); ok {
			return va.Compare(vb)
		}
	case string:
		if vb, ok := b.(string); ok {
			switch {
			case va < vb:
				return -1
			case va > vb:
				return 1
			}
			return 0
		}
	}
	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			}
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
