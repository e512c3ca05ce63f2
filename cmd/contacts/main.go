package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/contactbook"
	"github.com/smileynet/contactbook/internal/book"
	"github.com/smileynet/contactbook/internal/config"
	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/dashboard"
	"github.com/smileynet/contactbook/internal/display"
	"github.com/smileynet/contactbook/internal/logging"
	"github.com/smileynet/contactbook/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Config file to use instead of the user and project layers." type:"existingfile"`
	File   string `help:"Contact file (overrides config)." short:"f" type:"path"`
	Format string `help:"File format: json or csv (default: from extension)."`
}

// CLI is the top-level command structure for contacts.
type CLI struct {
	Globals

	Version   kong.VersionFlag `help:"Show version." short:"V"`
	Add       AddCmd           `cmd:"" help:"Add a contact."`
	List      ListCmd          `cmd:"" help:"List contacts."`
	Search    SearchCmd        `cmd:"" help:"Find contacts by name, phone, or email."`
	Edit      EditCmd          `cmd:"" help:"Edit a contact."`
	Delete    DeleteCmd        `cmd:"" help:"Delete a contact."`
	Dashboard DashboardCmd     `cmd:"" help:"Open interactive dashboard TUI."`
	Init      InitCmd          `cmd:"" help:"Write a sample config file."`
}

// loadConfig loads path when given, or else the layered user and project
// configs, then applies env overrides.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadLayered(
			os.ExpandEnv("$HOME/.config/contactbook/config.yaml"),
			".contactbook.yaml",
		)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env is what a command works with once config, logging, and the store are up.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *book.Session
}

func (e *env) close() {
	_ = e.logger.Sync()
}

// setup loads config, applies the global flags, and opens the session.
func (g *Globals) setup(ctx context.Context) (*env, error) {
	cfg, err := loadConfig(g.Config)
	if err != nil {
		return nil, err
	}
	return g.setupWith(ctx, cfg)
}

func (g *Globals) setupWith(ctx context.Context, cfg *config.Config) (*env, error) {
	if g.File != "" {
		cfg.Store.Path = g.File
	}
	if g.Format != "" {
		cfg.Store.Format = g.Format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store.Path, cfg.Store.Format)
	if err != nil {
		return nil, err
	}
	session, err := book.Open(ctx, st,
		book.WithPolicy(cfg.Policy()),
		book.WithLogger(logger.With(zap.String("file", st.Path()), zap.String("format", st.Format()))),
	)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, session: session}, nil
}

// --- add ---

// AddCmd adds a new contact.
type AddCmd struct {
	Name  string `help:"Full name." required:""`
	Phone string `help:"Phone number: digits, optional leading +, spaces and hyphens ignored." required:""`
	Email string `help:"Email address." required:""`
	Plain bool   `help:"Force plain text output even if stdout is a TTY."`
}

// Run executes the add command.
func (a *AddCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup(ctx)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer e.close()
	return a.run(ctx, e.session, display.New(display.Options{ForcePlain: a.Plain}))
}

func (a *AddCmd) run(ctx context.Context, s *book.Session, d display.Display) error {
	c, err := s.Add(ctx, contact.Contact{Name: a.Name, Phone: a.Phone, Email: a.Email})
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return d.Notice("Added %s (%s, %s)", c.Name, c.Phone, c.Email)
}

// --- list ---

// ListCmd prints every contact.
type ListCmd struct {
	Sort  string `help:"Order by name, phone, email, or recent (default: from config)."`
	Desc  bool   `help:"Reverse the order."`
	Limit int    `help:"Show at most N contacts (0 for all)." default:"0"`
	Plain bool   `help:"Force plain text output even if stdout is a TTY."`
}

// Run executes the list command.
func (l *ListCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer e.close()
	return l.run(e.session, e.cfg, display.New(display.Options{ForcePlain: l.Plain}))
}

func (l *ListCmd) run(s *book.Session, cfg *config.Config, d display.Display) error {
	key, dir := cfg.SortOrder()
	if l.Sort != "" {
		var err error
		if key, err = contact.ParseSortKey(l.Sort); err != nil {
			return fmt.Errorf("list: %w", err)
		}
	}
	if l.Desc {
		dir = contact.Descending
	}

	var list []contact.Contact
	if key == contact.KeyRecent {
		list = s.Recent(l.Limit)
	} else {
		list = s.List(key, dir)
	}
	if l.Limit > 0 && l.Limit < len(list) {
		list = list[:l.Limit]
	}
	return d.Contacts(list)
}

// --- search ---

// SearchCmd prints the contacts matching a query.
type SearchCmd struct {
	Query string `arg:"" help:"Text to find in name, email (case-insensitive), or phone."`
	Field string `help:"Only match this field: name, phone, or email."`
	Plain bool   `help:"Force plain text output even if stdout is a TTY."`
}

// Run executes the search command.
func (c *SearchCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup(ctx)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer e.close()
	return c.run(e.session, display.New(display.Options{ForcePlain: c.Plain}))
}

func (c *SearchCmd) run(s *book.Session, d display.Display) error {
	found := s.Search(c.Query)
	if c.Field != "" {
		f, err := contact.ParseField(c.Field)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		found = contact.FilterField(s.Contacts(), f, c.Query)
	}
	if len(found) == 0 && s.Len() > 0 {
		return d.Notice("No contacts match %q", c.Query)
	}
	return d.Contacts(found)
}

// identityArg addresses a stored contact from command-line text. A phone
// typed with separators is reduced to its canonical form when it is valid.
func identityArg(p contact.Policy, name, phone string) contact.Identity {
	if canon, err := p.ValidatePhone(phone); err == nil {
		phone = canon
	}
	return contact.Identity{Name: strings.TrimSpace(name), Phone: phone}
}

// --- edit ---

// EditCmd changes an existing contact, addressed by its current name and phone.
// Omitted flags keep their current value.
type EditCmd struct {
	CurrentName  string `arg:"" help:"Current name of the contact."`
	CurrentPhone string `arg:"" help:"Current phone of the contact, as stored."`
	Name         string `help:"New name."`
	Phone        string `help:"New phone."`
	Email        string `help:"New email."`
	Plain        bool   `help:"Force plain text output even if stdout is a TTY."`
}

// Run executes the edit command.
func (c *EditCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup(ctx)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	defer e.close()
	return c.run(ctx, e.session, display.New(display.Options{ForcePlain: c.Plain}))
}

func (c *EditCmd) run(ctx context.Context, s *book.Session, d display.Display) error {
	id := identityArg(s.Policy(), c.CurrentName, c.CurrentPhone)
	current, ok := s.Find(id)
	if !ok {
		return fmt.Errorf("edit: %w: %s", book.ErrNotFound, id)
	}

	raw := current
	if c.Name != "" {
		raw.Name = c.Name
	}
	if c.Phone != "" {
		raw.Phone = c.Phone
	}
	if c.Email != "" {
		raw.Email = c.Email
	}

	updated, err := s.Update(ctx, id, raw)
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	return d.Notice("Updated %s (%s, %s)", updated.Name, updated.Phone, updated.Email)
}

// --- delete ---

// DeleteCmd removes a contact after confirmation.
type DeleteCmd struct {
	Name  string `arg:"" help:"Name of the contact."`
	Phone string `arg:"" help:"Phone of the contact, as stored."`
	Yes   bool   `help:"Skip the confirmation prompt." short:"y"`
	Plain bool   `help:"Force plain text output even if stdout is a TTY."`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(g *Globals, ctx context.Context) error {
	e, err := g.setup(ctx)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer e.close()
	return c.run(ctx, e.session, display.New(display.Options{ForcePlain: c.Plain}), os.Stdin, os.Stdout)
}

func (c *DeleteCmd) run(ctx context.Context, s *book.Session, d display.Display, in io.Reader, out io.Writer) error {
	id := identityArg(s.Policy(), c.Name, c.Phone)
	confirm := func(contact.Contact) bool { return true }
	if !c.Yes {
		confirm = promptConfirm(in, out)
	}

	deleted, err := s.ConfirmDelete(ctx, id, confirm)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if !deleted {
		return d.Notice("No contact %s; nothing deleted", id)
	}
	return d.Notice("Deleted %s", id)
}

// promptConfirm asks on out and reads a yes/no answer from in. Anything but
// y or yes, including EOF, is a no.
func promptConfirm(in io.Reader, out io.Writer) func(contact.Contact) bool {
	return func(c contact.Contact) bool {
		_, _ = fmt.Fprintf(out, "Delete %s (%s, %s)? [y/N] ", c.Name, c.Phone, c.Email)
		line, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

// --- dashboard ---

// DashboardCmd opens the interactive dashboard TUI.
type DashboardCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds the session and launches the dashboard TUI.
func (d *DashboardCmd) Run(g *Globals, ctx context.Context) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return d.run(false, nil)
	}

	e, err := g.setup(ctx)
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	defer e.close()

	key, dir := e.cfg.SortOrder()
	m := dashboard.NewModel(e.session,
		dashboard.WithSort(key, dir),
		dashboard.WithContext(ctx),
	)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	return d.run(isTTY, prog)
}

// run executes the tea program, enabling testable wiring.
func (d *DashboardCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// --- init ---

// InitCmd writes the sample config.
type InitCmd struct {
	Path  string `arg:"" optional:"" help:"Where to write the config." default:".contactbook.yaml" type:"path"`
	Force bool   `help:"Overwrite an existing file."`
}

// Run executes the init command.
func (c *InitCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *InitCmd) run(w io.Writer) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if c.Force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(c.Path, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("init: %s already exists (use --force to overwrite)", c.Path)
		}
		return fmt.Errorf("init: %w", err)
	}
	if _, err := f.Write(contactbook.SampleConfig()); err != nil {
		_ = f.Close()
		return fmt.Errorf("init: writing %s: %w", c.Path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", c.Path)
	return nil
}

const (
	exitSuccess  = 0
	exitRejected = 1
	exitSetup    = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	for _, target := range []error{
		contact.ErrInvalid,
		contact.ErrDuplicate,
		book.ErrNotFound,
		book.ErrDeleteNotConfirmed,
	} {
		if errors.Is(err, target) {
			return exitRejected
		}
	}
	return exitSetup
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("contacts"),
		kong.Description("A local contact book."),
		kong.UsageOnError(),
		kong.Vars{"version": version + " " + commit + " " + date},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(&cli.Globals)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
