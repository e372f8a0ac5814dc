package browse

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/vcfview/internal/vcard"
)

// helpBarHeight is the number of lines reserved for the collapsed help bar.
const helpBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model for the card browser.
// It manages a two-pane layout with focus switching between the card list
// and the detail viewport.
type Model struct {
	focus      Focus
	width      int
	height     int
	list       listState
	viewport   viewport.Model
	help       help.Model
	keys       keyMap
	spinner    spinner.Model
	loader     CardLoader
	cache      *Cache
	hideCustom bool
	shownIdx   int // List index rendered into the viewport, -1 if none.
}

// Option configures a Model.
type Option func(*Model)

// WithWrapCursor makes the cursor wrap around at the ends of the list.
func WithWrapCursor(wrap bool) Option {
	return func(m *Model) {
		m.list.wrap = wrap
	}
}

// WithHideCustomFields omits the custom fields section from the detail pane.
func WithHideCustomFields(hide bool) Option {
	return func(m *Model) {
		m.hideCustom = hide
	}
}

// NewModel creates a browser Model with left-pane focus that loads its cards from loader.
func NewModel(loader CardLoader, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		focus:    PaneLeft,
		list:     newListState(false),
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     KeyMap(),
		spinner:  s,
		loader:   loader,
		cache:    NewCache(),
		shownIdx: -1,
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// Init starts loading cards and the loading spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadCards(m.loader), m.spinner.Tick)
}

// Err returns the last load error, if any.
func (m Model) Err() error {
	return m.list.err
}

// Selected returns the card under the cursor, or nil.
func (m Model) Selected() *vcard.Record {
	return m.list.Selected()
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case CardsLoadedMsg:
		m.list, _ = m.list.Update(msg)
		m.cache.Invalidate()
		m.shownIdx = -1
		m.syncDetail()
		return m, nil

	case spinner.TickMsg:
		// Stop ticking once loading finishes.
		if !m.list.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes key messages with global and pane-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.list.loading {
			return m, nil
		}
		m.list.loading = true
		m.list.err = nil
		return m, tea.Batch(loadCards(m.loader), m.spinner.Tick)
	}

	if m.focus == PaneRight {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	m.list, _ = m.list.Update(msg)
	m.syncDetail()
	return m, nil
}

// resize recomputes the viewport size and drops renders made for the old width.
func (m *Model) resize() {
	_, rightWidth := PaneWidths(m.width)
	m.viewport.Width = max(0, rightWidth-borderChrome)
	m.viewport.Height = m.contentHeight()
	m.cache.Invalidate()
	m.shownIdx = -1
	m.syncDetail()
}

// syncDetail loads the selected card's rendered detail into the viewport
// when the selection changed.
func (m *Model) syncDetail() {
	rec := m.list.Selected()
	if rec == nil {
		m.viewport.SetContent("")
		m.shownIdx = -1
		return
	}
	idx := m.list.cursor
	if idx == m.shownIdx {
		return
	}

	detail, ok := m.cache.Get(idx)
	if !ok {
		detail = renderDetail(rec, m.viewport.Width, m.hideCustom)
		m.cache.Set(idx, detail)
	}
	m.viewport.SetContent(detail)
	m.viewport.GotoTop()
	m.shownIdx = idx
}

// helpHeight returns the number of lines the help view occupies.
func (m Model) helpHeight() int {
	if m.help.ShowAll {
		return fullHelpRows
	}
	return helpBarHeight
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - m.helpHeight()
	if h < 1 {
		return 1
	}
	return h
}

// View renders the two-pane layout with help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	var leftStyle, rightStyle lipgloss.Style
	if m.focus == PaneLeft {
		leftStyle = FocusedBorder()
		rightStyle = UnfocusedBorder()
	} else {
		leftStyle = UnfocusedBorder()
		rightStyle = FocusedBorder()
	}

	leftStyle = leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle = rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	leftPane := leftStyle.Render(m.list.View(leftWidth-borderChrome, contentHeight, m.spinner.View()))
	rightPane := rightStyle.Render(m.viewport.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	helpView := m.help.View(m.keys)

	return lipgloss.JoinVertical(lipgloss.Left, panes, helpView)
}
