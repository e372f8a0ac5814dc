package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/smileynet/vcfview"
	"github.com/smileynet/vcfview/internal/browse"
	"github.com/smileynet/vcfview/internal/config"
	"github.com/smileynet/vcfview/internal/logging"
	"github.com/smileynet/vcfview/internal/tui"
	"github.com/smileynet/vcfview/internal/vcard"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// stdinPath is the FILE argument that reads cards from standard input.
const stdinPath = "-"

// CLI is the top-level command structure for vcfview.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Config  string           `help:"Extra config file, applied after the default layers." type:"path"`

	View   ViewCmd   `cmd:"" default:"withargs" help:"Browse the cards in a file (default command)."`
	List   ListCmd   `cmd:"" help:"Print one numbered line per card."`
	Show   ShowCmd   `cmd:"" help:"Print a single card."`
	Fields FieldsCmd `cmd:"" help:"List the fields with a dedicated handler."`
	Demo   DemoCmd   `cmd:"" help:"Browse a bundled sample address book."`
}

// runEnv carries process resources into command Run methods.
type runEnv struct {
	ctx        context.Context
	stdout     io.Writer
	stdin      io.Reader
	configPath string
}

// DisplayFlags are the per-invocation overrides shared by commands that show cards.
type DisplayFlags struct {
	Plain      bool   `help:"Force plain text output even if stdout is a TTY."`
	Sort       string `help:"Card order: file or name."`
	Wrap       bool   `help:"Wrap the cursor at the ends of the list."`
	HideCustom bool   `help:"Hide the custom fields section."`
}

func (f DisplayFlags) apply(cfg *config.Config) {
	if f.Plain {
		cfg.Display.Plain = true
	}
	if f.Sort != "" {
		cfg.Browse.Sort = f.Sort
	}
	if f.Wrap {
		cfg.Browse.WrapCursor = true
	}
	if f.HideCustom {
		cfg.Display.ShowCustomFields = false
	}
}

// ViewCmd opens the browser on a file, or prints it when not on a terminal.
type ViewCmd struct {
	File string `arg:"" help:"Address book to read, or - for stdin."`
	DisplayFlags `embed:""`
}

// Run executes the view command.
func (v *ViewCmd) Run(env *runEnv) error {
	sess, err := newSession(env, v.DisplayFlags)
	if err != nil {
		return fmt.Errorf("view: %w", err)
	}
	defer sess.close()

	// Standard input can only be read once and cannot also drive the keyboard.
	plain := sess.cfg.Display.Plain || v.File == stdinPath
	return sess.display(plain).Run(env.ctx, sess.fileLoader(v.File))
}

// ListCmd prints a numbered summary of the cards in a file.
type ListCmd struct {
	File string `arg:"" help:"Address book to read, or - for stdin."`
	Sort string `help:"Card order: file or name."`
}

// Run executes the list command.
func (l *ListCmd) Run(env *runEnv) error {
	sess, err := newSession(env, DisplayFlags{Sort: l.Sort})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer sess.close()

	cards, err := sess.fileLoader(l.File).Load()
	if err != nil {
		return err
	}
	tui.WriteSummary(env.stdout, cards)
	return nil
}

// ShowCmd prints one card by its position in the list output.
type ShowCmd struct {
	File       string `arg:"" help:"Address book to read, or - for stdin."`
	Index      int    `arg:"" help:"Card number as printed by list (starting at 1)."`
	Sort       string `help:"Card order: file or name."`
	HideCustom bool   `help:"Hide the custom fields section."`
}

// Run executes the show command.
func (s *ShowCmd) Run(env *runEnv) error {
	sess, err := newSession(env, DisplayFlags{Sort: s.Sort, HideCustom: s.HideCustom})
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	defer sess.close()

	cards, err := sess.fileLoader(s.File).Load()
	if err != nil {
		return err
	}
	if s.Index < 1 || s.Index > len(cards) {
		return fmt.Errorf("show: index %d out of range (file has %d cards)", s.Index, len(cards))
	}
	tui.WriteCard(env.stdout, cards[s.Index-1], !sess.cfg.Display.ShowCustomFields)
	return nil
}

// FieldsCmd lists the registered field handlers.
type FieldsCmd struct{}

// Run executes the fields command.
func (f *FieldsCmd) Run(env *runEnv) error {
	writeFields(env.stdout, vcard.DefaultRegistry())
	return nil
}

// writeFields prints one line per registered field: name, arity and recognized parameters.
func writeFields(w io.Writer, reg *vcard.Registry) {
	for _, name := range reg.Names() {
		spec, _ := reg.Lookup(name)
		params := "-"
		if len(spec.Params) > 0 {
			params = strings.Join(spec.Params, ",")
		}
		_, _ = fmt.Fprintf(w, "%-8s %d  %s\n", name, spec.Arity, params)
	}
}

// DemoCmd browses one of the bundled sample address books.
type DemoCmd struct {
	Name string `arg:"" optional:"" default:"contacts" help:"Sample to open."`
	Dir  string `help:"Directory of extra samples, checked before the bundled ones." type:"path"`
	List bool   `help:"List the available samples and exit."`
	DisplayFlags `embed:""`
}

// Run executes the demo command.
func (d *DemoCmd) Run(env *runEnv) error {
	samples := vcfview.Samples
	if d.Dir != "" {
		samples = vcfview.OverlayFS(d.Dir, vcfview.Samples)
	}

	if d.List {
		names, err := vcfview.SampleNames(samples)
		if err != nil {
			return fmt.Errorf("demo: %w", err)
		}
		for _, n := range names {
			_, _ = fmt.Fprintln(env.stdout, n)
		}
		return nil
	}

	sess, err := newSession(env, d.DisplayFlags)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	defer sess.close()

	if _, err := fs.Stat(samples, d.Name+vcfview.SampleExt); err != nil {
		names, _ := vcfview.SampleNames(samples)
		return fmt.Errorf("demo: unknown sample %q (available: %s)", d.Name, strings.Join(names, ", "))
	}
	return sess.display(sess.cfg.Display.Plain).Run(env.ctx, sess.sampleLoader(samples, d.Name))
}

// session holds the resolved config and logger for one command.
type session struct {
	env    *runEnv
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

// newSession loads config, applies flag overrides and opens the log file.
func newSession(env *runEnv, flags DisplayFlags) (*session, error) {
	cfg, err := loadConfig(env.configPath)
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return &session{env: env, cfg: cfg, log: logger, closer: closer}, nil
}

func (s *session) close() {
	_ = s.closer.Close()
}

func (s *session) display(plain bool) tui.Display {
	return tui.NewDisplay(tui.DisplayOptions{
		Writer:           s.env.stdout,
		ForcePlain:       plain,
		WrapCursor:       s.cfg.Browse.WrapCursor,
		HideCustomFields: !s.cfg.Display.ShowCustomFields,
	})
}

// fileLoader reads path on every Load, so the browser's reload picks up edits.
func (s *session) fileLoader(path string) browse.CardLoader {
	return browse.LoaderFunc(func() ([]*vcard.Record, error) {
		if path == stdinPath {
			return s.load("stdin", s.env.stdin)
		}
		f, err := os.Open(path)
		if err != nil {
			s.log.Error().Err(err).Str("path", path).Msg("open failed")
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return s.load(path, f)
	})
}

func (s *session) sampleLoader(fsys fs.FS, name string) browse.CardLoader {
	return browse.LoaderFunc(func() ([]*vcard.Record, error) {
		f, err := fsys.Open(name + vcfview.SampleExt)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return s.load("sample:"+name, f)
	})
}

// load parses src and orders the cards per config.
func (s *session) load(source string, src io.Reader) ([]*vcard.Record, error) {
	s.log.Debug().Str("source", source).Msg("loading cards")
	cards, err := vcard.ReadAll(src)
	if err != nil {
		s.log.Error().Err(err).Str("source", source).Msg("parse failed")
		return nil, err
	}
	sortCards(cards, s.cfg.Browse.Sort)
	s.log.Info().Str("source", source).Int("records", len(cards)).Msg("cards loaded")
	return cards, nil
}

// sortCards orders cards in place. SortFile keeps input order.
func sortCards(cards []*vcard.Record, order string) {
	if order != config.SortName {
		return
	}
	slices.SortStableFunc(cards, func(a, b *vcard.Record) int {
		return strings.Compare(strings.ToLower(a.Title()), strings.ToLower(b.Title()))
	})
}

// loadConfig loads layered config from user and project paths, then the
// --config file if given, with env overrides.
func loadConfig(extra string) (*config.Config, error) {
	paths := config.DefaultPaths()
	if extra != "" {
		if _, err := os.Stat(extra); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		paths = append(paths, extra)
	}
	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const (
	exitSuccess = 0
	exitSetup   = 1
	exitParse   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var pe *vcard.ParseError
	if errors.As(err, &pe) {
		return exitParse
	}
	return exitSetup
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("vcfview"),
		kong.Description("Read and browse vCard address books."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := kctx.Run(&runEnv{
		ctx:        ctx,
		stdout:     os.Stdout,
		stdin:      os.Stdin,
		configPath: cli.Config,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
