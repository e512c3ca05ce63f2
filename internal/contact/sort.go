package contact

import (
	"fmt"
	"slices"
	"strings"
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Sort returns a copy of list stably sorted by field. String comparison is
// case-insensitive; records with equal keys keep their input order in both
// directions.
func Sort(list []Contact, by Field, dir Direction) []Contact {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Contact) int {
		c := strings.Compare(fold(a.Value(by)), fold(b.Value(by)))
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

// SortRecent returns a copy of list with the most recently added first.
// Contacts without a timestamp sort last, in their input order.
func SortRecent(list []Contact) []Contact {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Contact) int {
		switch {
		case a.AddedAt.IsZero() && b.AddedAt.IsZero():
			return 0
		case a.AddedAt.IsZero():
			return 1
		case b.AddedAt.IsZero():
			return -1
		}
		return b.AddedAt.Compare(a.AddedAt)
	})
	return out
}

// SortKey selects a list ordering: one of the fields, or recency.
type SortKey string

// KeyRecent orders by creation time, newest first.
const KeyRecent SortKey = "recent"

// SortKeys lists the accepted keys in display-cycle order.
var SortKeys = []SortKey{SortKey(FieldName), SortKey(FieldPhone), SortKey(FieldEmail), KeyRecent}

// ParseSortKey converts a user-supplied ordering name. The empty string means name.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortKey(FieldName), nil
	}
	if k := SortKey(s); slices.Contains(SortKeys, k) {
		return k, nil
	}
	return "", fmt.Errorf("contact: unknown sort key %q (want name, phone, email, or recent)", s)
}

// Order returns a sorted copy of list. Recency ignores dir.
func Order(list []Contact, key SortKey, dir Direction) []Contact {
	if key == KeyRecent {
		return SortRecent(list)
	}
	return Sort(list, Field(key), dir)
}
