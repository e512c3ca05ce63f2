// Package display renders contacts for the command line: aligned plain text
// when output is piped, a styled table when it is a terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/contactbook/internal/contact"
)

// EmptyMessage is printed in place of a table when there is nothing to show.
const EmptyMessage = "No contacts saved"

var headers = []string{"NAME", "PHONE", "EMAIL", "ADDED"}

// Display renders contact lists and one-line notices.
type Display interface {
	Contacts(list []contact.Contact) error
	Notice(format string, args ...any) error
}

// Options configures display creation.
type Options struct {
	Writer     io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force plain text even if TTY.
}

// New returns a styled display when the writer is a TTY, or a plain text
// display otherwise. ForcePlain overrides TTY detection.
func New(opts Options) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.ForcePlain || !isTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer}
	}
	return &StyledDisplay{w: opts.Writer}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func row(c contact.Contact) []string {
	added := "-"
	if !c.AddedAt.IsZero() {
		added = c.AddedAt.Local().Format("2006-01-02 15:04")
	}
	return []string{c.Name, c.Phone, c.Email, added}
}

// PlainDisplay writes tab-aligned columns with no escape sequences.
type PlainDisplay struct {
	w io.Writer
}

// NewPlain returns a PlainDisplay writing to w.
func NewPlain(w io.Writer) *PlainDisplay {
	return &PlainDisplay{w: w}
}

func (d *PlainDisplay) Contacts(list []contact.Contact) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(d.w, EmptyMessage)
		return err
	}
	tw := tabwriter.NewWriter(d.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", headers[0], headers[1], headers[2], headers[3])
	for _, c := range list {
		r := row(c)
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r[0], r[1], r[2], r[3])
	}
	return tw.Flush()
}

func (d *PlainDisplay) Notice(format string, args ...any) error {
	_, err := fmt.Fprintf(d.w, format+"\n", args...)
	return err
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
)

// StyledDisplay renders a bordered lipgloss table.
type StyledDisplay struct {
	w io.Writer
}

// NewStyled returns a StyledDisplay writing to w.
func NewStyled(w io.Writer) *StyledDisplay {
	return &StyledDisplay{w: w}
}

func (d *StyledDisplay) Contacts(list []contact.Contact) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(d.w, dimStyle.Render(EmptyMessage))
		return err
	}
	rows := make([][]string, len(list))
	for i, c := range list {
		rows[i] = row(c)
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, _ int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintf(d.w, "%s\n%s\n", t.Render(), dimStyle.Render(fmt.Sprintf("%d contact(s)", len(list))))
	return err
}

func (d *StyledDisplay) Notice(format string, args ...any) error {
	_, err := fmt.Fprintln(d.w, noticeStyle.Render("✓ "+fmt.Sprintf(format, args...)))
	return err
}
