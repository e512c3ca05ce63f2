package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"github.com/smileynet/contactbook/internal/contact"
)

// csvHeader is the required header row.
var csvHeader = []string{"Name", "Phone", "Email"}

// CSVCodec stores contacts as a header row followed by one row per contact.
// Timestamps are not stored; an optional trailing "Added" column is read.
type CSVCodec struct{}

// Name returns "csv".
func (CSVCodec) Name() string { return "csv" }

// Encode writes the header and one row per record.
func (CSVCodec) Encode(w io.Writer, records []contact.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, c := range records {
		if err := cw.Write([]string{c.Name, c.Phone, c.Email}); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode parses the header and rows. The header must match exactly.
func (CSVCodec) Decode(data []byte) ([]contact.Contact, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if len(rows) == 0 {
		return []contact.Contact{}, nil
	}

	header := rows[0]
	withAdded := slices.Equal(header, append(slices.Clone(csvHeader), "Added"))
	if !withAdded && !slices.Equal(header, csvHeader) {
		return nil, fmt.Errorf("unexpected header %q (want %q)", header, csvHeader)
	}

	records := make([]contact.Contact, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d: got %d fields, want %d", i+1, len(row), len(header))
		}
		c := contact.Contact{Name: row[0], Phone: row[1], Email: row[2]}
		if withAdded {
			c.AddedAt = parseTimestamp(row[3])
		}
		records = append(records, c)
	}
	return records, nil
}
