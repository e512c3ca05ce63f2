// Package dashboard implements a two-pane TUI for browsing, searching,
// and editing the contact book.
package dashboard

import (
	"context"

	"github.com/smileynet/contactbook/internal/contact"
)

// Mode represents the current dashboard view mode.
type Mode int

const (
	ModeBrowse  Mode = iota // Browsing the contact list with detail pane.
	ModeSearch              // Typing a filter query.
	ModeForm                // Adding or editing a contact.
	ModeConfirm             // Confirming a delete.
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Contact list has focus.
	PaneRight              // Detail viewport has focus.
)

// --- Consumer-side interfaces ---

// Book is the contact collection the dashboard edits. *book.Session
// satisfies it.
type Book interface {
	List(key contact.SortKey, dir contact.Direction) []contact.Contact
	Add(ctx context.Context, raw contact.Contact) (contact.Contact, error)
	Update(ctx context.Context, id contact.Identity, raw contact.Contact) (contact.Contact, error)
	Delete(ctx context.Context, id contact.Identity) (bool, error)
}

// --- tea.Msg types ---

// SavedMsg carries the result of an add or edit.
type SavedMsg struct {
	Editing bool
	Contact contact.Contact
	Err     error
}

// DeletedMsg carries the result of a confirmed delete.
type DeletedMsg struct {
	ID      contact.Identity
	Deleted bool
	Err     error
}

