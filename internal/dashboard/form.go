package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactbook/internal/contact"
)

var formLabels = map[contact.Field]string{
	contact.FieldName:  "Name",
	contact.FieldPhone: "Phone",
	contact.FieldEmail: "Email",
}

var formPlaceholders = map[contact.Field]string{
	contact.FieldName:  "Ada Lovelace",
	contact.FieldPhone: "+44 7700 900123",
	contact.FieldEmail: "ada@example.com",
}

// formState holds the add/edit form. Inputs follow contact.ValidationOrder.
type formState struct {
	inputs  []textinput.Model
	focus   int
	editing *contact.Identity // nil when adding.
	failed  contact.Field     // Field named by the last rejection.
	err     error
	keys    formKeys
}

// newFormState returns an empty add form, or an edit form prefilled from
// current when it is non-nil.
func newFormState(current *contact.Contact) formState {
	fs := formState{keys: FormKeyMap()}
	for _, f := range contact.ValidationOrder {
		ti := textinput.New()
		ti.Placeholder = formPlaceholders[f]
		ti.CharLimit = 120
		ti.Width = 40
		if current != nil {
			ti.SetValue(current.Value(f))
		}
		fs.inputs = append(fs.inputs, ti)
	}
	if current != nil {
		id := current.Identity()
		fs.editing = &id
	}
	fs.inputs[0].Focus()
	return fs
}

// Update handles field navigation and forwards everything else to the
// focused input. Save is handled by the model, which owns the busy state.
func (fs formState) Update(msg tea.Msg) (formState, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, fs.keys.Next):
			return fs.focusOn((fs.focus + 1) % len(fs.inputs)), textinput.Blink
		case key.Matches(km, fs.keys.Prev):
			return fs.focusOn((fs.focus + len(fs.inputs) - 1) % len(fs.inputs)), textinput.Blink
		}
	}
	var cmd tea.Cmd
	fs.inputs[fs.focus], cmd = fs.inputs[fs.focus].Update(msg)
	return fs, cmd
}

func (fs formState) focusOn(i int) formState {
	fs.inputs = slices.Clone(fs.inputs)
	fs.inputs[fs.focus].Blur()
	fs.focus = i
	fs.inputs[fs.focus].Focus()
	return fs
}

// values returns the raw, unvalidated field values.
func (fs formState) values() contact.Contact {
	var c contact.Contact
	for i, f := range contact.ValidationOrder {
		v := fs.inputs[i].Value()
		switch f {
		case contact.FieldName:
			c.Name = v
		case contact.FieldPhone:
			c.Phone = v
		case contact.FieldEmail:
			c.Email = v
		}
	}
	return c
}

// rejected records a failed save and moves focus to the offending field.
func (fs formState) rejected(err error) formState {
	fs.err = err
	fs.failed = ""
	if f, ok := contact.FailedField(err); ok {
		fs.failed = f
		if i := slices.Index(contact.ValidationOrder, f); i >= 0 {
			fs = fs.focusOn(i)
		}
	}
	return fs
}

// View renders the form for the given width.
func (fs formState) View(width int) string {
	var b strings.Builder
	if fs.editing != nil {
		fmt.Fprintf(&b, "Edit %s\n", labelText.Render(fs.editing.Name))
	} else {
		b.WriteString(labelText.Render("New contact") + "\n")
	}
	for i, f := range contact.ValidationOrder {
		label := fmt.Sprintf("%-6s", formLabels[f])
		if f == fs.failed {
			label = errorText.Render(label)
		} else if i == fs.focus {
			label = accentText.Render(label)
		}
		fmt.Fprintf(&b, "\n%s %s", label, fs.inputs[i].View())
	}
	if fs.err != nil {
		fmt.Fprintf(&b, "\n\n%s", errorText.Render(fs.err.Error()))
	}
	b.WriteString("\n\n  [Enter] Save   [Esc] Cancel")
	return b.String()
}
