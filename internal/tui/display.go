// Package tui selects how parsed cards are shown: the interactive browser
// when writing to a terminal, plain text otherwise.
package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/vcfview/internal/browse"
)

// Display renders the cards produced by a loader.
type Display interface {
	Run(ctx context.Context, loader browse.CardLoader) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer           io.Writer // Output destination (default: os.Stdout).
	Input            io.Reader // Keyboard input for the TUI (default: os.Stdin).
	ForcePlain       bool      // Force plain text even if TTY.
	WrapCursor       bool      // Browser cursor wraps at list ends (ignored by PlainDisplay).
	HideCustomFields bool      // Omit the custom fields section.
}

// NewDisplay returns a TUI display when the writer is a TTY, or a plain text
// display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	if opts.ForcePlain || !isTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer, hideCustom: opts.HideCustomFields}
	}

	return &TUIDisplay{
		w:          opts.Writer,
		in:         opts.Input,
		wrap:       opts.WrapCursor,
		hideCustom: opts.HideCustomFields,
	}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PlainDisplay writes every card as indented text.
type PlainDisplay struct {
	w          io.Writer
	hideCustom bool
}

// Run loads the cards and writes them one after another.
// Returns the load error, or the context error if cancelled.
func (d *PlainDisplay) Run(ctx context.Context, loader browse.CardLoader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cards, err := loader.Load()
	if err != nil {
		return err
	}
	for i, rec := range cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			_, _ = io.WriteString(d.w, "\n")
		}
		WriteCard(d.w, rec, d.hideCustom)
	}
	return nil
}

// TUIDisplay runs the card browser as a Bubble Tea program.
// Falls back to PlainDisplay if the program fails to start.
type TUIDisplay struct {
	w          io.Writer
	in         io.Reader
	wrap       bool
	hideCustom bool
}

// Run starts the browser and blocks until the user quits.
// It returns the browser's last load error so a file that failed to parse
// still ends with a non-zero exit.
func (d *TUIDisplay) Run(ctx context.Context, loader browse.CardLoader) error {
	model := browse.NewModel(loader,
		browse.WithWrapCursor(d.wrap),
		browse.WithHideCustomFields(d.hideCustom),
	)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithOutput(d.w),
		tea.WithInput(d.in),
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		plain := &PlainDisplay{w: d.w, hideCustom: d.hideCustom}
		return plain.Run(ctx, loader)
	}

	if m, ok := final.(browse.Model); ok {
		return m.Err()
	}
	return nil
}
