// Package book holds a contact-book session: the loaded collection, the
// store it came from, and the add/edit/delete/search/sort actions over it.
package book

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/smileynet/contactbook/internal/contact"
)

// Sentinel errors for caller-checkable conditions.
var (
	ErrNotFound           = errors.New("book: contact not found")
	ErrDeleteNotConfirmed = errors.New("book: delete not confirmed")
)

// Store loads and saves the whole contact collection.
type Store interface {
	Load(ctx context.Context) ([]contact.Contact, error)
	Save(ctx context.Context, records []contact.Contact) error
}

// Session is one user's working copy of the contact book. Every mutation
// is persisted before it returns; a failed action leaves the in-memory
// collection as it was.
//
// A Session is not safe for concurrent use.
type Session struct {
	store    Store
	policy   contact.Policy
	logger   *zap.Logger
	now      func() time.Time
	contacts []contact.Contact
}

// Option configures a Session.
type Option func(*Session)

// WithPolicy sets the validation policy.
func WithPolicy(p contact.Policy) Option {
	return func(s *Session) { s.policy = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source used to stamp new contacts.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Open loads the collection from st and returns a session over it.
func Open(ctx context.Context, st Store, opts ...Option) (*Session, error) {
	s := &Session{
		store:  st,
		policy: contact.DefaultPolicy(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	records, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}
	s.contacts = records
	s.logger.Debug("contacts loaded", zap.Int("count", len(records)))
	return s, nil
}

// Policy returns the session's validation policy.
func (s *Session) Policy() contact.Policy {
	return s.policy
}

// Contacts returns a copy of the collection: file order right after Open,
// name order once anything has been saved.
func (s *Session) Contacts() []contact.Contact {
	return slices.Clone(s.contacts)
}

// Len returns the number of contacts.
func (s *Session) Len() int {
	return len(s.contacts)
}

// Find returns the contact addressed by id.
func (s *Session) Find(id contact.Identity) (contact.Contact, bool) {
	if i := s.index(id); i >= 0 {
		return s.contacts[i], true
	}
	return contact.Contact{}, false
}

// Add validates raw, rejects duplicates, stamps the creation time, and
// persists the collection with the new contact appended.
func (s *Session) Add(ctx context.Context, raw contact.Contact) (contact.Contact, error) {
	c, err := s.policy.Check(s.contacts, raw, nil)
	if err != nil {
		s.reject("add", err)
		return contact.Contact{}, err
	}
	c.AddedAt = s.now().UTC().Truncate(time.Second)

	next := append(slices.Clone(s.contacts), c)
	if err := s.commit(ctx, next); err != nil {
		return contact.Contact{}, err
	}
	s.logger.Info("contact added", zap.String("name", c.Name))
	return c, nil
}

// Update replaces the contact addressed by id with the validated raw
// values. The edited record is excluded from duplicate checks and keeps
// its creation time.
func (s *Session) Update(ctx context.Context, id contact.Identity, raw contact.Contact) (contact.Contact, error) {
	i := s.index(id)
	if i < 0 {
		return contact.Contact{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	current := s.contacts[i]

	c, err := s.policy.Check(s.contacts, raw, &current)
	if err != nil {
		s.reject("update", err)
		return contact.Contact{}, err
	}
	c.AddedAt = current.AddedAt

	next := slices.Clone(s.contacts)
	next[i] = c
	if err := s.commit(ctx, next); err != nil {
		return contact.Contact{}, err
	}
	s.logger.Info("contact updated", zap.String("from", current.Name), zap.String("to", c.Name))
	return c, nil
}

// Delete removes the contact addressed by id. Deleting a contact that is
// not present is a no-op: it reports false and writes nothing.
func (s *Session) Delete(ctx context.Context, id contact.Identity) (bool, error) {
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("delete skipped, contact absent", zap.Stringer("id", id))
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.contacts), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.logger.Info("contact deleted", zap.Stringer("id", id))
	return true, nil
}

// ConfirmDelete asks confirm about the contact addressed by id and deletes
// it only on a yes. An absent contact is a no-op and confirm is not called.
func (s *Session) ConfirmDelete(ctx context.Context, id contact.Identity, confirm func(contact.Contact) bool) (bool, error) {
	c, ok := s.Find(id)
	if !ok {
		return false, nil
	}
	if !confirm(c) {
		return false, ErrDeleteNotConfirmed
	}
	return s.Delete(ctx, id)
}

// Search returns the contacts matching query in collection order.
func (s *Session) Search(query string) []contact.Contact {
	return contact.Filter(s.contacts, query)
}

// List returns the collection sorted for display. Storage order is not affected.
func (s *Session) List(key contact.SortKey, dir contact.Direction) []contact.Contact {
	return contact.Order(s.contacts, key, dir)
}

// Recent returns up to n contacts, most recently added first. n <= 0 returns all.
func (s *Session) Recent(n int) []contact.Contact {
	out := contact.SortRecent(s.contacts)
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// commit persists next and adopts it as the collection only once the
// write succeeded. The store decides the on-disk order; memory mirrors it.
func (s *Session) commit(ctx context.Context, next []contact.Contact) error {
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("save failed", zap.Error(err))
		return fmt.Errorf("book: %w", err)
	}
	s.contacts = contact.Sort(next, contact.FieldName, contact.Ascending)
	return nil
}

func (s *Session) index(id contact.Identity) int {
	return slices.IndexFunc(s.contacts, id.Is)
}

func (s *Session) reject(action string, err error) {
	field, _ := contact.FailedField(err)
	s.logger.Warn("candidate rejected",
		zap.String("action", action),
		zap.String("field", string(field)),
		zap.Error(err))
}
