// Package contact implements the contact record and the pure validation,
// deduplication, search, and sort rules applied to it.
package contact

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Contact is a single address-book entry.
type Contact struct {
	Name    string
	Phone   string
	Email   string
	AddedAt time.Time // Zero when the record predates timestamps.
}

// Field names one of the validated contact fields.
type Field string

const (
	FieldName  Field = "name"
	FieldPhone Field = "phone"
	FieldEmail Field = "email"
)

// ValidationOrder is the order in which fields are validated. The first
// failing field in this order is the one reported.
var ValidationOrder = []Field{FieldName, FieldPhone, FieldEmail}

// DuplicateOrder is the priority in which colliding fields are reported.
var DuplicateOrder = []Field{FieldName, FieldPhone, FieldEmail}

// ParseField converts a user-supplied field name.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldName, FieldPhone, FieldEmail:
		return f, nil
	default:
		return "", fmt.Errorf("contact: unknown field %q (want name, phone, or email)", s)
	}
}

// Value returns the contact's value for f.
func (c Contact) Value(f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldPhone:
		return c.Phone
	case FieldEmail:
		return c.Email
	}
	return ""
}

// Identity is how an existing record is addressed: there is no synthetic ID,
// so a record is found by its stored name and phone.
type Identity struct {
	Name  string
	Phone string
}

// Identity returns the identity of c.
func (c Contact) Identity() Identity {
	return Identity{Name: c.Name, Phone: c.Phone}
}

// Is reports whether c is the record addressed by id. Names compare
// case-insensitively; phones compare exactly.
func (id Identity) Is(c Contact) bool {
	return fold(id.Name) == fold(c.Name) && id.Phone == c.Phone
}

func (id Identity) String() string {
	return id.Name + " | " + id.Phone
}

// fold returns the case-folded form of s used for all case-insensitive
// comparisons. A new Caser is built per call because Casers are stateful.
func fold(s string) string {
	return cases.Fold().String(s)
}

// equalFold reports whether a and b are equal under case folding.
func equalFold(a, b string) bool {
	return fold(a) == fold(b)
}
