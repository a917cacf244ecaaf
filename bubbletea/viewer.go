// Package bubbletea provides a terminal viewer for the uncommitted changes in
// the notes repository using the Bubble Tea framework.
package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultPollInterval is how often the diff source is re-read.
const DefaultPollInterval = 2 * time.Second

// flashDuration is how long a status message stays in the status bar.
const flashDuration = 2 * time.Second

// Snapshot is one reading of the diff source.
type Snapshot struct {
	Raw  string
	Stat string
	Diff *nucleus.Diff
	Err  error
}

// Loader reads the current Snapshot. It runs outside the Bubble Tea event
// loop and must be safe to call repeatedly.
type Loader func() Snapshot

type (
	snapshotMsg Snapshot
	tickMsg     struct{}
	changedMsg  struct{}
	flashMsg    struct{ id int }
)

// Model is the Bubble Tea model for the diff viewer.
type Model struct {
	load         Loader
	pollInterval time.Duration
	changes      <-chan struct{}
	clipboard    nucleus.Clipboard

	languageDetector nucleus.LanguageDetector
	tokenizer        nucleus.Tokenizer
	wordDiffer       nucleus.WordDiffer

	// Last snapshot that loaded without error.
	snap    Snapshot
	loaded  bool
	loading bool
	err     error
	layout  layout

	viewport   viewport.Model
	help       help.Model
	keymap     KeyMap
	styles     nucleus.Styles
	lines      lineStyles
	renderer   *lipgloss.Renderer
	title      string
	width      int
	height     int
	ready      bool
	showHelp   bool
	pendingKey string
	flash      string
	flashID    int
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(m *Model) { m.renderer = r }
}

// WithTheme sets the color theme.
func WithTheme(t nucleus.Theme) ModelOption {
	return func(m *Model) { m.styles = t.Styles() }
}

// WithLanguageDetector sets the language detector for syntax highlighting.
func WithLanguageDetector(d nucleus.LanguageDetector) ModelOption {
	return func(m *Model) { m.languageDetector = d }
}

// WithTokenizer sets the tokenizer for syntax highlighting.
func WithTokenizer(t nucleus.Tokenizer) ModelOption {
	return func(m *Model) { m.tokenizer = t }
}

// WithWordDiffer sets the word differ for word-level highlighting.
func WithWordDiffer(d nucleus.WordDiffer) ModelOption {
	return func(m *Model) { m.wordDiffer = d }
}

// WithClipboard enables the copy key bindings.
func WithClipboard(c nucleus.Clipboard) ModelOption {
	return func(m *Model) { m.clipboard = c }
}

// WithPollInterval sets how often the loader is called. Zero disables polling.
func WithPollInterval(d time.Duration) ModelOption {
	return func(m *Model) { m.pollInterval = d }
}

// WithChanges reloads whenever a value arrives on ch.
func WithChanges(ch <-chan struct{}) ModelOption {
	return func(m *Model) { m.changes = ch }
}

// WithTitle sets the text shown at the left of the status bar.
func WithTitle(title string) ModelOption {
	return func(m *Model) { m.title = title }
}

// NewModel creates a Model that displays what load returns.
func NewModel(load Loader, opts ...ModelOption) Model {
	m := Model{
		load:         load,
		pollInterval: DefaultPollInterval,
		keymap:       DefaultKeyMap(),
		help:         help.New(),
		styles:       defaultStyles(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.lines = newLineStyles(m.styles, m.renderer)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd(), m.waitCmd())
}

func (m Model) loadCmd() tea.Cmd {
	load := m.load
	return func() tea.Msg { return snapshotMsg(load()) }
}

func (m Model) tickCmd() tea.Cmd {
	if m.pollInterval <= 0 {
		return nil
	}
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) waitCmd() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// reload starts a load unless one is already running.
func (m *Model) reload() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	return m.loadCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case snapshotMsg:
		m.loading = false
		m.apply(Snapshot(msg))
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.reload(), m.tickCmd())

	case changedMsg:
		return m, tea.Batch(m.reload(), m.waitCmd())

	case flashMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pendingKey == "g" && key.Matches(msg, m.keymap.GotoTop) {
		m.pendingKey = ""
		m.viewport.GotoTop()
		return m, nil
	}
	if key.Matches(msg, m.keymap.GotoTop) {
		m.pendingKey = "g"
		return m, nil
	}
	m.pendingKey = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.GotoBottom):
		m.viewport.GotoBottom()
	case key.Matches(msg, m.keymap.HalfPageUp):
		m.viewport.HalfPageUp()
	case key.Matches(msg, m.keymap.HalfPageDown):
		m.viewport.HalfPageDown()
	case key.Matches(msg, m.keymap.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keymap.NextHunk):
		m.jump(hunkRows(m.layout), 1)
	case key.Matches(msg, m.keymap.PrevHunk):
		m.jump(hunkRows(m.layout), -1)
	case key.Matches(msg, m.keymap.NextFile):
		m.jump(m.layout.files, 1)
	case key.Matches(msg, m.keymap.PrevFile):
		m.jump(m.layout.files, -1)
	case key.Matches(msg, m.keymap.CopyPath):
		return m, m.copyCurrent(false)
	case key.Matches(msg, m.keymap.CopyHunk):
		return m, m.copyCurrent(true)
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.reload()
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resize(m.width, m.height)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	if width == 0 && height == 0 {
		return
	}
	widthChanged := m.width != width
	m.width, m.height = width, height
	m.help.Width = width

	vpHeight := max(height-lipgloss.Height(m.footerView()), 1)
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
		m.viewport.SetContent(m.renderContent())
		return
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	if widthChanged {
		m.viewport.SetContent(m.renderContent())
	}
}

// apply stores a snapshot. A failed read keeps the last good content and
// reports the error in the status bar. Unchanged diff text skips rendering
// so the scroll position is untouched.
func (m *Model) apply(s Snapshot) {
	if s.Err != nil {
		m.err = s.Err
		return
	}
	m.err = nil
	if m.loaded && s.Raw == m.snap.Raw {
		m.snap.Stat = s.Stat
		return
	}
	m.snap = s
	m.loaded = true
	m.layout = computeLayout(m.parsed())
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

// parsed returns the diff to lay out, or nil when the raw fallback is shown.
func (m Model) parsed() *nucleus.Diff {
	if m.snap.Diff == nil || len(m.snap.Diff.Files) == 0 {
		return nil
	}
	return m.snap.Diff
}

func (m Model) renderContent() string {
	switch {
	case !m.loaded:
		return "Loading..."
	case strings.TrimSpace(m.snap.Raw) == "":
		return m.lines.context.Render("No uncommitted changes.")
	case m.parsed() == nil:
		return renderRaw(m.snap.Raw, m.lines)
	}
	return renderDiff(renderConfig{
		diff:             m.snap.Diff,
		styles:           m.styles,
		renderer:         m.renderer,
		width:            m.width,
		languageDetector: m.languageDetector,
		tokenizer:        m.tokenizer,
		wordDiffer:       m.wordDiffer,
	})
}

func hunkRows(l layout) []int {
	rows := make([]int, len(l.hunks))
	for i, h := range l.hunks {
		rows[i] = h.row
	}
	return rows
}

// jump scrolls to the next (dir > 0) or previous row in rows relative to
// the top of the viewport.
func (m *Model) jump(rows []int, dir int) {
	top := m.viewport.YOffset
	if dir > 0 {
		for _, row := range rows {
			if row > top {
				m.viewport.SetYOffset(row)
				return
			}
		}
		return
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i] < top {
			m.viewport.SetYOffset(rows[i])
			return
		}
	}
}

// current returns the index of the last entry in rows at or above the top of
// the viewport, or -1.
func (m Model) current(rows []int) int {
	idx := -1
	for i, row := range rows {
		if row > m.viewport.YOffset {
			break
		}
		idx = i
	}
	return idx
}

func (m *Model) copyCurrent(wholeHunk bool) tea.Cmd {
	if m.clipboard == nil {
		return m.setFlash("clipboard unavailable")
	}
	diff := m.parsed()
	if diff == nil {
		return m.setFlash("nothing to copy")
	}

	var text, what string
	if wholeHunk {
		idx := m.current(hunkRows(m.layout))
		if idx < 0 {
			return m.setFlash("no hunk at cursor")
		}
		ref := m.layout.hunks[idx]
		text = hunkText(diff.Files[ref.file].Hunks[ref.hunk])
		what = "hunk"
	} else {
		idx := max(m.current(m.layout.files), 0)
		text = diff.Files[idx].FilePath
		what = text
	}

	if err := m.clipboard.Copy(text); err != nil {
		return m.setFlash("copy failed: " + err.Error())
	}
	return m.setFlash("copied " + what)
}

func (m *Model) setFlash(text string) tea.Cmd {
	m.flashID++
	m.flash = text
	id := m.flashID
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashMsg{id: id} })
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.footerView())
}

func (m Model) footerView() string {
	bar := m.statusBarView()
	if !m.showHelp {
		return bar
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.help.View(m.keymap), bar)
}

func (m Model) statusBarView() string {
	barStyle := m.lines.statusBar
	sep := barStyle.Render(" │ ")

	var parts []string
	if m.title != "" {
		parts = append(parts, m.title)
	}

	if diff := m.parsed(); diff != nil {
		fileIdx := m.current(m.layout.files) + 1
		hunkIdx := m.current(hunkRows(m.layout)) + 1
		added, removed := 0, 0
		for _, f := range diff.Files {
			a, r := f.Stats()
			added += a
			removed += r
		}
		parts = append(parts,
			fmt.Sprintf("file %d/%d", max(fileIdx, 1), len(m.layout.files)),
			fmt.Sprintf("hunk %d/%d", hunkIdx, len(m.layout.hunks)),
			fmt.Sprintf("+%d -%d", added, removed),
		)
	} else if m.loaded && strings.TrimSpace(m.snap.Raw) != "" {
		parts = append(parts, "raw diff")
		if summary := lastLine(m.snap.Stat); summary != "" {
			parts = append(parts, summary)
		}
	}

	switch {
	case m.flash != "":
		parts = append(parts, m.flash)
	case m.err != nil:
		parts = append(parts, "error: "+firstLine(m.err.Error()))
	default:
		parts = append(parts, m.scrollPosition())
	}

	var content strings.Builder
	for i, p := range parts {
		if i > 0 {
			content.WriteString(sep)
		}
		content.WriteString(barStyle.Render(p))
	}
	hint := barStyle.Render("  ?:help  q:quit ")

	line := content.String()
	if pad := m.width - lipgloss.Width(line) - lipgloss.Width(hint); pad > 0 {
		line += barStyle.Render(strings.Repeat(" ", pad))
	}
	return line + hint
}

func (m Model) scrollPosition() string {
	switch {
	case m.viewport.AtTop():
		return "Top"
	case m.viewport.AtBottom():
		return "Bot"
	default:
		return fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
	}
}

// lastLine returns the last non-blank line of s, trimmed. For "git diff
// --stat" output that is the "N files changed" summary.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// defaultStyles is used when no theme is configured.
func defaultStyles() nucleus.Styles {
	return nucleus.Styles{
		Added:            nucleus.ColorPair{Foreground: "#a6e3a1"},
		Removed:          nucleus.ColorPair{Foreground: "#f38ba8"},
		Context:          nucleus.ColorPair{Foreground: "#a6adc8"},
		NoNewline:        nucleus.ColorPair{Foreground: "#6c7086"},
		HunkHeader:       nucleus.ColorPair{Foreground: "#89b4fa"},
		FileHeader:       nucleus.ColorPair{Foreground: "#f9e2af"},
		LineNumber:       nucleus.ColorPair{Foreground: "#6c7086"},
		AddedGutter:      nucleus.ColorPair{Foreground: "#a6e3a1"},
		RemovedGutter:    nucleus.ColorPair{Foreground: "#f38ba8"},
		AddedHighlight:   nucleus.ColorPair{Foreground: "#1e1e2e", Background: "#a6e3a1"},
		RemovedHighlight: nucleus.ColorPair{Foreground: "#1e1e2e", Background: "#f38ba8"},
	}
}

// Compile-time interface verification.
var _ nucleus.Viewer = (*Viewer)(nil)

// Viewer implements nucleus.Viewer by running the Model full screen against
// a diff source.
type Viewer struct {
	source nucleus.DiffSource
	parser nucleus.DiffParser
	opts   []ModelOption
	prog   []tea.ProgramOption
}

// NewViewer creates a Viewer. Model options are passed to every Model it
// creates.
func NewViewer(source nucleus.DiffSource, parser nucleus.DiffParser, opts ...ModelOption) *Viewer {
	return &Viewer{source: source, parser: parser, opts: opts}
}

// WithProgramOptions appends Bubble Tea program options, replacing the
// alternate screen and mouse defaults.
func (v *Viewer) WithProgramOptions(opts ...tea.ProgramOption) *Viewer {
	v.prog = opts
	return v
}

// View shows the changes in dir until the user quits or ctx is cancelled.
func (v *Viewer) View(ctx context.Context, dir string) error {
	opts := append([]ModelOption{WithTitle(dir)}, v.opts...)
	m := NewModel(v.Loader(ctx, dir), opts...)

	progOpts := v.prog
	if progOpts == nil {
		progOpts = []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	}
	progOpts = append(progOpts, tea.WithContext(ctx))

	_, err := tea.NewProgram(m, progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Loader returns a Loader reading dir from the viewer's source.
func (v *Viewer) Loader(ctx context.Context, dir string) Loader {
	return func() Snapshot {
		raw, stat, err := nucleus.TakeSnapshot(ctx, v.source, dir)
		if err != nil {
			return Snapshot{Err: err}
		}
		return Snapshot{Raw: raw, Stat: stat, Diff: v.parser.Parse(raw)}
	}
}
