package dashboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contactbook/internal/contact"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// statusBarHeight is the number of lines reserved for the status line.
const statusBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model for the dashboard TUI.
// It manages a two-pane layout with mode-based routing and focus management.
type Model struct {
	ctx      context.Context
	book     Book
	keys     browseKeys
	mode     Mode
	focus    Focus
	width    int
	height   int
	browse   browseState
	form     formState
	confirm  confirmState
	search   textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	busy     bool
	status   string
	failed   bool // status describes a failure.
}

// Option configures a Model.
type Option func(*Model)

// WithSort sets the initial list order.
func WithSort(key contact.SortKey, dir contact.Direction) Option {
	return func(m *Model) {
		m.browse.key = key
		m.browse.dir = dir
	}
}

// WithContext sets the context passed to book operations.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// NewModel creates a dashboard Model in browse mode with left-pane focus.
func NewModel(b Book, opts ...Option) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, phone, or email"
	search.CharLimit = 80

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		ctx:      context.Background(),
		book:     b,
		keys:     BrowseKeyMap(),
		mode:     ModeBrowse,
		focus:    PaneLeft,
		browse:   newBrowseState(contact.SortKey(contact.FieldName), contact.Ascending),
		search:   search,
		viewport: viewport.New(0, 0),
		spinner:  s,
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.browse = m.browse.reload(b)
	m.syncDetail()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages with mode-based routing and keeps the
// detail pane in step with the selection.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.syncDetail()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		_, rightWidth := PaneWidths(msg.Width)
		m.viewport.Width = max(rightWidth-borderChrome, 0)
		m.viewport.Height = m.contentHeight()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SavedMsg:
		return m.applySaved(msg), nil

	case DeletedMsg:
		return m.applyDeleted(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and similar input housekeeping.
	var cmd tea.Cmd
	switch m.mode {
	case ModeForm:
		m.form, cmd = m.form.Update(msg)
	case ModeSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

// saveCmd adds raw to b, or updates the contact at editing when it is
// non-nil, and wraps the result in a SavedMsg.
func saveCmd(ctx context.Context, b Book, raw contact.Contact, editing *contact.Identity) tea.Cmd {
	return func() tea.Msg {
		if editing != nil {
			c, err := b.Update(ctx, *editing, raw)
			return SavedMsg{Editing: true, Contact: c, Err: err}
		}
		c, err := b.Add(ctx, raw)
		return SavedMsg{Contact: c, Err: err}
	}
}

// deleteCmd removes id from b and wraps the result in a DeletedMsg.
func deleteCmd(ctx context.Context, b Book, id contact.Identity) tea.Cmd {
	return func() tea.Msg {
		deleted, err := b.Delete(ctx, id)
		return DeletedMsg{ID: id, Deleted: deleted, Err: err}
	}
}

func (m Model) applySaved(msg SavedMsg) Model {
	m.busy = false
	if msg.Err != nil {
		// Rejected candidates and failed writes both keep the form open so
		// the user can correct or retry.
		m.form = m.form.rejected(msg.Err)
		m.setStatus(msg.Err.Error(), true)
		return m
	}
	m.mode = ModeBrowse
	m.browse = m.browse.reload(m.book).selectIdentity(msg.Contact.Identity())
	verb := "Added"
	if msg.Editing {
		verb = "Updated"
	}
	m.setStatus(fmt.Sprintf("%s %s", verb, msg.Contact.Name), false)
	return m
}

func (m Model) applyDeleted(msg DeletedMsg) Model {
	m.busy = false
	m.mode = ModeBrowse
	switch {
	case msg.Err != nil:
		m.setStatus(msg.Err.Error(), true)
	case !msg.Deleted:
		m.setStatus(fmt.Sprintf("%s was already gone", msg.ID.Name), false)
	default:
		m.setStatus(fmt.Sprintf("Deleted %s", msg.ID.Name), false)
	}
	m.browse = m.browse.reload(m.book)
	return m
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeForm:
		switch {
		case msg.Type == tea.KeyEsc:
			m.mode = ModeBrowse
			m.setStatus("", false)
			return m, nil
		case key.Matches(msg, m.form.keys.Save):
			// Busy until SavedMsg; repeated saves and Esc are ignored meanwhile.
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, saveCmd(m.ctx, m.book, m.form.values(), m.form.editing))
		}
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if m.focus == PaneLeft {
			m.focus = PaneRight
		} else {
			m.focus = PaneLeft
		}
		return m, nil

	case m.focus == PaneRight && (key.Matches(msg, m.keys.Up) || key.Matches(msg, m.keys.Down)):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		m.browse = m.browse.up()
	case key.Matches(msg, m.keys.Down):
		m.browse = m.browse.down()

	case key.Matches(msg, m.keys.Sort):
		m.browse = m.browse.cycleSort().reload(m.book)
		m.setStatus("Sorted by "+m.browse.orderLabel(), false)
	case key.Matches(msg, m.keys.Reverse):
		m.browse = m.browse.reverse().reload(m.book)
		m.setStatus("Sorted by "+m.browse.orderLabel(), false)

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.search.SetValue(m.browse.query)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Add):
		m.mode = ModeForm
		m.form = newFormState(nil)
		m.setStatus("", false)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		if c, ok := m.browse.Selected(); ok {
			m.mode = ModeForm
			m.form = newFormState(&c)
			m.setStatus("", false)
			return m, textinput.Blink
		}

	case key.Matches(msg, m.keys.Delete):
		if c, ok := m.browse.Selected(); ok {
			m.mode = ModeConfirm
			m.confirm = confirmState{target: c}
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := SearchKeyMap()
	switch {
	case key.Matches(msg, keys.Apply):
		m.mode = ModeBrowse
		m.search.Blur()
		return m, nil
	case key.Matches(msg, keys.Clear):
		m.mode = ModeBrowse
		m.search.Blur()
		m.search.SetValue("")
		m.browse = m.browse.withQuery("")
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.browse = m.browse.withQuery(m.search.Value())
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keys := ConfirmKeyMap()
	switch {
	case key.Matches(msg, keys.Yes):
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, deleteCmd(m.ctx, m.book, m.confirm.target.Identity()))
	case key.Matches(msg, keys.No):
		m.mode = ModeBrowse
		m.setStatus(fmt.Sprintf("Kept %s", m.confirm.target.Name), false)
	}
	return m, nil
}

// syncDetail loads the selected contact into the detail viewport.
func (m *Model) syncDetail() {
	c, ok := m.browse.Selected()
	if !ok {
		m.viewport.SetContent(mutedText.Render("Nothing selected"))
		return
	}
	m.viewport.SetContent(renderDetail(c))
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the status line, and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - statusBarHeight - helpBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the two-pane layout with status line and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	leftStyle, rightStyle := FocusedBorder(), UnfocusedBorder()
	if m.rightFocused() {
		leftStyle, rightStyle = UnfocusedBorder(), FocusedBorder()
	}

	leftStyle = leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle = rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	leftPane := leftStyle.Render(m.viewLeft(leftWidth-borderChrome, contentHeight))
	rightPane := rightStyle.Render(m.viewRight(rightWidth-borderChrome, contentHeight))
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	helpView := m.help.View(HelpBindings(m.mode))

	return lipgloss.JoinVertical(lipgloss.Left, panes, m.viewStatus(), helpView)
}

// rightFocused reports whether the right pane should draw as focused:
// always while editing or confirming, otherwise when tabbed to.
func (m Model) rightFocused() bool {
	switch m.mode {
	case ModeForm, ModeConfirm:
		return true
	case ModeBrowse:
		return m.focus == PaneRight
	}
	return false
}

func (m Model) viewLeft(width, height int) string {
	if m.mode == ModeSearch {
		return m.search.View() + "\n" + m.browse.View(width, height-1)
	}
	return m.browse.View(width, height)
}

func (m Model) viewRight(width, height int) string {
	switch m.mode {
	case ModeForm:
		return m.form.View(width)
	case ModeConfirm:
		return m.confirm.View(width, height)
	default:
		return m.viewport.View()
	}
}

func (m Model) viewStatus() string {
	switch {
	case m.busy:
		return m.spinner.View() + " Saving..."
	case m.status == "":
		return ""
	case m.failed:
		return errorText.Render("✗ " + m.status)
	default:
		return successText.Render("✓ " + m.status)
	}
}
