package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/smileynet/contactbook/internal/contact"
)

// JSONCodec stores contacts as an array of objects with lower-case keys.
// Records written under the older capitalized schema are migrated on read.
type JSONCodec struct{}

// Name returns "json".
func (JSONCodec) Name() string { return "json" }

// jsonRecord is the current on-disk schema.
type jsonRecord struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	AddedAt string `json:"added_at,omitempty"`
}

// legacyRecord is the capitalized schema with the "Added" timestamp key.
// A stray "added_at" is still honored when "Added" is absent.
type legacyRecord struct {
	Name    string `json:"Name"`
	Phone   string `json:"Phone"`
	Email   string `json:"Email"`
	Added   string `json:"Added"`
	AddedAt string `json:"added_at"`
}

// errOtherSchema reports that a record carries none of a version's marker keys.
var errOtherSchema = errors.New("no keys of this schema")

// schemaStep decodes one raw record under a single schema version.
type schemaStep struct {
	version string
	decode  func(raw json.RawMessage) (contact.Contact, error)
}

// schemaChain lists schema versions newest first. Each record is decoded by
// the first step that accepts it.
var schemaChain = []schemaStep{
	{version: "v2", decode: decodeCurrent},
	{version: "v1", decode: decodeLegacy},
}

// Encode writes records as an indented JSON array.
func (JSONCodec) Encode(w io.Writer, records []contact.Contact) error {
	out := make([]jsonRecord, len(records))
	for i, c := range records {
		out[i] = jsonRecord{Name: c.Name, Phone: c.Phone, Email: c.Email}
		if !c.AddedAt.IsZero() {
			out[i].AddedAt = c.AddedAt.Format(time.RFC3339Nano)
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	return nil
}

// Decode parses a JSON array of contact objects.
func (JSONCodec) Decode(data []byte) ([]contact.Contact, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	records := make([]contact.Contact, 0, len(raws))
	for i, raw := range raws {
		c, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, c)
	}
	return records, nil
}

// decodeRecord runs raw through the schema chain.
func decodeRecord(raw json.RawMessage) (contact.Contact, error) {
	var errs []error
	for _, step := range schemaChain {
		c, err := step.decode(raw)
		if err == nil {
			return c, nil
		}
		errs = append(errs, fmt.Errorf("schema %s: %w", step.version, err))
	}
	return contact.Contact{}, errors.Join(errs...)
}

// currentKeys mark a record as the current schema. Keys are compared
// exactly, since encoding/json field matching ignores case.
var currentKeys = []string{"name", "phone", "email", "added_at"}

// decodeCurrent accepts records that use any current key. Unknown keys are
// ignored.
func decodeCurrent(raw json.RawMessage) (contact.Contact, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return contact.Contact{}, err
	}
	if !slices.ContainsFunc(currentKeys, func(k string) bool { _, ok := keys[k]; return ok }) {
		return contact.Contact{}, errOtherSchema
	}
	var r jsonRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return contact.Contact{}, err
	}
	return contact.Contact{Name: r.Name, Phone: r.Phone, Email: r.Email, AddedAt: parseTimestamp(r.AddedAt)}, nil
}

// decodeLegacy maps the capitalized keys and ignores anything else.
func decodeLegacy(raw json.RawMessage) (contact.Contact, error) {
	var r legacyRecord
	if err := json.Unmarshal(raw, &r); err != nil {
		return contact.Contact{}, err
	}
	added := r.Added
	if added == "" {
		added = r.AddedAt
	}
	return contact.Contact{Name: r.Name, Phone: r.Phone, Email: r.Email, AddedAt: parseTimestamp(added)}, nil
}

// timestampLayouts are the accepted shapes of a stored timestamp. Fractional
// seconds are accepted after any seconds field.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp returns the zero time for empty or unrecognized values.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
