package dashboard

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactbook/internal/book"
	"github.com/smileynet/contactbook/internal/contact"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// memStore is an in-memory book.Store.
type memStore struct {
	records []contact.Contact
}

func (m *memStore) Load(context.Context) ([]contact.Contact, error) {
	return slices.Clone(m.records), nil
}

func (m *memStore) Save(_ context.Context, records []contact.Contact) error {
	m.records = slices.Clone(records)
	return nil
}

// openBook returns a session over an in-memory store holding seed.
func openBook(t *testing.T, seed ...contact.Contact) *book.Session {
	t.Helper()
	s, err := book.Open(context.Background(), &memStore{})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range seed {
		if _, err := s.Add(context.Background(), c); err != nil {
			t.Fatalf("seeding %s: %v", c.Name, err)
		}
	}
	return s
}

func seedContacts() []contact.Contact {
	return []contact.Contact{
		{Name: "Carol", Phone: "5550003", Email: "carol@example.com"},
		{Name: "alice", Phone: "+15550001", Email: "alice@x.com"},
		{Name: "Bob", Phone: "5550002", Email: "bob@x.com"},
	}
}

// failingBook wraps a Book and fails every write.
type failingBook struct {
	Book
}

var errDiskFull = errors.New("disk full")

func (failingBook) Add(context.Context, contact.Contact) (contact.Contact, error) {
	return contact.Contact{}, errDiskFull
}

func (failingBook) Delete(context.Context, contact.Identity) (bool, error) {
	return false, errDiskFull
}

// countingBook wraps a Book and counts writes that reach it.
type countingBook struct {
	Book
	adds, updates int
}

func (c *countingBook) Add(ctx context.Context, raw contact.Contact) (contact.Contact, error) {
	c.adds++
	return c.Book.Add(ctx, raw)
}

func (c *countingBook) Update(ctx context.Context, id contact.Identity, raw contact.Contact) (contact.Contact, error) {
	c.updates++
	return c.Book.Update(ctx, id, raw)
}

func newSizedModel(t *testing.T, b Book, opts ...Option) Model {
	t.Helper()
	m := NewModel(b, opts...)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

// keep reports whether a command result should be fed back into the model.
// Cursor blinks and spinner ticks are timers and are dropped.
func keep(msg tea.Msg) bool {
	switch msg.(type) {
	case SavedMsg, DeletedMsg, tea.QuitMsg:
		return true
	}
	return false
}

// runCmd executes cmd, expanding batches, and returns the messages worth
// feeding back. Commands that do not answer promptly are timers.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var msgs []tea.Msg
			for _, c := range batch {
				msgs = append(msgs, runCmd(t, c)...)
			}
			return msgs
		}
		if keep(msg) {
			return []tea.Msg{msg}
		}
	case <-time.After(20 * time.Millisecond):
	}
	return nil
}

// feed sends msgs to m, running the resulting commands to completion.
// It returns the final model and whether a quit was requested.
func feed(t *testing.T, m Model, msgs ...tea.Msg) (Model, bool) {
	t.Helper()
	quit := false
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
			continue
		}
		updated, cmd := m.Update(msg)
		m = updated.(Model)
		var q bool
		m, q = feed(t, m, runCmd(t, cmd)...)
		quit = quit || q
	}
	return m, quit
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typed returns one key message per rune of s.
func typed(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

// fillForm types name, phone, and email into a freshly opened form,
// replacing any prefilled values.
func fillForm(name, phone, email string) []tea.Msg {
	var msgs []tea.Msg
	for i, v := range []string{name, phone, email} {
		if i > 0 {
			msgs = append(msgs, tab)
		}
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyCtrlU})
		msgs = append(msgs, typed(v)...)
	}
	return msgs
}

func visibleNames(bs browseState) []string {
	out := make([]string, len(bs.visible))
	for i, c := range bs.visible {
		out[i] = c.Name
	}
	return out
}
