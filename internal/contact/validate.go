package contact

import (
	"fmt"
	"regexp"
	"strings"
)

// Default phone digit bounds.
const (
	DefaultMinDigits = 7
	DefaultMaxDigits = 15
)

// emailPattern treats any Unicode letter, digit, or mark as a word character.
var emailPattern = regexp.MustCompile(`^[\p{L}\p{N}\p{M}_.-]+@[\p{L}\p{N}\p{M}_.-]+\.[\p{L}\p{N}\p{M}_]+$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "")

// Policy holds the configurable parts of validation.
type Policy struct {
	MinDigits int
	MaxDigits int
}

// DefaultPolicy accepts phone numbers with 7 to 15 digits.
func DefaultPolicy() Policy {
	return Policy{MinDigits: DefaultMinDigits, MaxDigits: DefaultMaxDigits}
}

// ValidateName trims surrounding whitespace and rejects an empty result.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &ValidationError{Field: FieldName, Value: raw, Message: "name cannot be empty"}
	}
	return name, nil
}

// ValidatePhone strips spaces and hyphens and returns the canonical phone.
// An optional leading '+' is kept; everything after it must be digits, and
// the digit count must fall within the policy bounds.
func (p Policy) ValidatePhone(raw string) (string, error) {
	phone := phoneSeparators.Replace(strings.TrimSpace(raw))

	digits := strings.TrimPrefix(phone, "+")
	if !isDigits(digits) || len(digits) < p.MinDigits || len(digits) > p.MaxDigits {
		return "", &ValidationError{Field: FieldPhone, Value: raw, Message: p.phoneRule()}
	}
	return phone, nil
}

func (p Policy) phoneRule() string {
	if p.MinDigits == p.MaxDigits {
		return fmt.Sprintf("phone must be %d digits", p.MinDigits)
	}
	return fmt.Sprintf("phone must be %d-%d digits", p.MinDigits, p.MaxDigits)
}

// ValidateEmail trims and lower-cases raw and checks it against the address pattern.
func ValidateEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		return "", &ValidationError{Field: FieldEmail, Value: raw, Message: "not a valid email address"}
	}
	return email, nil
}

// Validate checks every field of c in ValidationOrder and returns the
// canonical contact, or the first failure.
func (p Policy) Validate(c Contact) (Contact, error) {
	out := c
	for _, f := range ValidationOrder {
		var err error
		switch f {
		case FieldName:
			out.Name, err = ValidateName(c.Name)
		case FieldPhone:
			out.Phone, err = p.ValidatePhone(c.Phone)
		case FieldEmail:
			out.Email, err = ValidateEmail(c.Email)
		}
		if err != nil {
			return Contact{}, err
		}
	}
	return out, nil
}

// Check is the commit gate shared by add and edit: shape first, then
// uniqueness. Duplicate detection never runs on a candidate with an invalid
// field. exclude names the record being edited, or nil for an add.
func (p Policy) Check(existing []Contact, candidate Contact, exclude *Contact) (Contact, error) {
	c, err := p.Validate(candidate)
	if err != nil {
		return Contact{}, err
	}
	if field, idx := findDuplicate(existing, c, exclude); idx >= 0 {
		return Contact{}, &DuplicateError{Field: field, Value: c.Value(field), Existing: existing[idx]}
	}
	return c, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
