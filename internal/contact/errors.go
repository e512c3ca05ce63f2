package contact

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrInvalid   = errors.New("contact: invalid field")
	ErrDuplicate = errors.New("contact: duplicate field")
)

// ValidationError reports a single field that failed validation.
type ValidationError struct {
	Field   Field
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalid).
func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// DuplicateError reports that a candidate collides with an existing record.
type DuplicateError struct {
	Field    Field
	Value    string
	Existing Contact
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %q already belongs to %s", e.Field, e.Value, e.Existing.Name)
}

// Unwrap lets callers match any collision with errors.Is(err, ErrDuplicate).
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// FailedField returns the field named by a ValidationError or DuplicateError
// anywhere in err's chain.
func FailedField(err error) (Field, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field, true
	}
	var de *DuplicateError
	if errors.As(err, &de) {
		return de.Field, true
	}
	return "", false
}
