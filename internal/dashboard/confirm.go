package dashboard

import (
	"fmt"
	"strings"

	"github.com/smileynet/contactbook/internal/contact"
)

// confirmState holds the contact awaiting delete confirmation.
type confirmState struct {
	target contact.Contact
}

// View renders the confirmation screen.
func (cs confirmState) View(width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Delete %s?\n", cs.target.Name)
	fmt.Fprintf(&b, "\n  Phone: %s", cs.target.Phone)
	fmt.Fprintf(&b, "\n  Email: %s", cs.target.Email)
	b.WriteString("\n\n  This cannot be undone.")
	b.WriteString("\n\n  [y] Delete   [n/Esc] Keep")
	return b.String()
}
