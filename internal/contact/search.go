package contact

import "strings"

// Matches reports whether query matches c: a case-insensitive substring of
// the name or email, or a raw substring of the stored phone. The empty
// query matches everything.
func Matches(c Contact, query string) bool {
	return MatchesField(c, FieldName, query) ||
		MatchesField(c, FieldPhone, query) ||
		MatchesField(c, FieldEmail, query)
}

// MatchesField applies the Matches rule to the single field f.
func MatchesField(c Contact, f Field, query string) bool {
	if query == "" {
		return true
	}
	if f == FieldPhone {
		return strings.Contains(c.Phone, query)
	}
	return strings.Contains(fold(c.Value(f)), fold(query))
}

// Filter returns the contacts matching query, preserving their order.
func Filter(list []Contact, query string) []Contact {
	out := make([]Contact, 0, len(list))
	for _, c := range list {
		if Matches(c, query) {
			out = append(out, c)
		}
	}
	return out
}

// FilterField returns the contacts whose field f matches query, preserving
// their order.
func FilterField(list []Contact, f Field, query string) []Contact {
	out := make([]Contact, 0, len(list))
	for _, c := range list {
		if MatchesField(c, f, query) {
			out = append(out, c)
		}
	}
	return out
}
