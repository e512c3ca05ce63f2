package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/smileynet/contactbook/internal/contact"
)

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

// browseState manages the sorted contact list, the active filter, and the
// cursor for browse mode's left pane.
type browseState struct {
	all     []contact.Contact // Sorted, unfiltered.
	visible []contact.Contact // all after the filter.
	cursor  int
	key     contact.SortKey
	dir     contact.Direction
	query   string
}

func newBrowseState(key contact.SortKey, dir contact.Direction) browseState {
	return browseState{key: key, dir: dir}
}

// reload re-reads the list from b in the current order and reapplies the filter.
func (bs browseState) reload(b Book) browseState {
	bs.all = b.List(bs.key, bs.dir)
	return bs.refilter()
}

func (bs browseState) refilter() browseState {
	bs.visible = contact.Filter(bs.all, bs.query)
	bs.cursor = min(bs.cursor, max(len(bs.visible)-1, 0))
	return bs
}

// withQuery sets the filter and moves the cursor to the first match.
func (bs browseState) withQuery(q string) browseState {
	if q == bs.query {
		return bs
	}
	bs.query = q
	bs.cursor = 0
	return bs.refilter()
}

// cycleSort advances to the next sort key.
func (bs browseState) cycleSort() browseState {
	i := slices.Index(contact.SortKeys, bs.key)
	bs.key = contact.SortKeys[(i+1)%len(contact.SortKeys)]
	return bs
}

// reverse flips the sort direction.
func (bs browseState) reverse() browseState {
	if bs.dir == contact.Ascending {
		bs.dir = contact.Descending
	} else {
		bs.dir = contact.Ascending
	}
	return bs
}

func (bs browseState) up() browseState {
	if len(bs.visible) > 0 {
		bs.cursor--
		if bs.cursor < 0 {
			bs.cursor = len(bs.visible) - 1
		}
	}
	return bs
}

func (bs browseState) down() browseState {
	if len(bs.visible) > 0 {
		bs.cursor++
		if bs.cursor >= len(bs.visible) {
			bs.cursor = 0
		}
	}
	return bs
}

// selectIdentity moves the cursor onto the contact addressed by id, if visible.
func (bs browseState) selectIdentity(id contact.Identity) browseState {
	if i := slices.IndexFunc(bs.visible, id.Is); i >= 0 {
		bs.cursor = i
	}
	return bs
}

// Selected returns the contact at the cursor.
func (bs browseState) Selected() (contact.Contact, bool) {
	if bs.cursor < 0 || bs.cursor >= len(bs.visible) {
		return contact.Contact{}, false
	}
	return bs.visible[bs.cursor], true
}

func (bs browseState) orderLabel() string {
	if bs.key == contact.KeyRecent {
		return "recent"
	}
	arrow := "↑"
	if bs.dir == contact.Descending {
		arrow = "↓"
	}
	return fmt.Sprintf("%s %s", bs.key, arrow)
}

// View renders the list pane: an order/filter header and the rows that fit
// in height, scrolled to keep the cursor visible.
func (bs browseState) View(width, height int) string {
	var b strings.Builder
	b.WriteString(mutedText.Render("Sort: " + bs.orderLabel()))
	headerLines := 1
	if bs.query != "" {
		b.WriteString("\n" + mutedText.Render(fmt.Sprintf("Filter: %q (%d/%d)", bs.query, len(bs.visible), len(bs.all))))
		headerLines++
	}

	switch {
	case len(bs.all) == 0:
		b.WriteString("\n\nNo contacts saved, press a to add one")
		return b.String()
	case len(bs.visible) == 0:
		b.WriteString("\n\nNo contacts match")
		return b.String()
	}

	rows := max(height-headerLines, 1)
	start := 0
	if bs.cursor >= rows {
		start = bs.cursor - rows + 1
	}
	end := min(start+rows, len(bs.visible))
	for i := start; i < end; i++ {
		b.WriteByte('\n')
		name := bs.visible[i].Name
		if r := []rune(name); width > 5 && len(r) > width-4 {
			name = string(r[:width-5]) + "…"
		}
		if i == bs.cursor {
			b.WriteString(CursorMarker + accentText.Render(name))
		} else {
			b.WriteString("  " + name)
		}
	}
	return b.String()
}

// renderDetail renders the right-pane detail for c.
func renderDetail(c contact.Contact) string {
	added := "unknown"
	if !c.AddedAt.IsZero() {
		added = c.AddedAt.Local().Format("2006-01-02 15:04")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", labelText.Render(c.Name))
	fmt.Fprintf(&b, "%s %s\n", mutedText.Render("Phone:"), c.Phone)
	fmt.Fprintf(&b, "%s %s\n", mutedText.Render("Email:"), c.Email)
	fmt.Fprintf(&b, "%s %s", mutedText.Render("Added:"), added)
	return b.String()
}
