package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/DocSum/internal/auth"
	"github.com/yildizm/DocSum/internal/config"
	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/emoji"
	"github.com/yildizm/DocSum/internal/logger"
	"github.com/yildizm/DocSum/internal/session"
	"github.com/yildizm/DocSum/internal/site"
)

// HealthChecker probes the Document Service
type HealthChecker interface {
	Health(ctx context.Context) (*docservice.Health, error)
}

// Focus identifies the panel receiving keys
type Focus int

const (
	FocusFile Focus = iota
	FocusSuggestions
	FocusQuestion
)

// Options configures the summarizer model
type Options struct {
	Session *session.Session
	Service docservice.Service
	Health  HealthChecker
	Auth    auth.Context
	Logger  *logger.Logger
	Theme   string

	// RequireAuth hides the summarizer while nobody is signed in
	RequireAuth bool

	// LoadFile reads a picked path. Defaults to docservice.LoadDocument.
	LoadFile func(path string) (*docservice.Document, error)
}

// Model is the Summarizer view: pick a PDF, read its summary, ask questions
type Model struct {
	sess     *session.Session
	svc      docservice.Service
	health   HealthChecker
	authCtx  auth.Context
	log      *logger.Logger
	styles   *Styles
	loadFile func(string) (*docservice.Document, error)
	ctx      context.Context

	requireAuth bool
	user        *auth.User
	authEvents  chan *auth.User
	unsubscribe func()

	width    int
	height   int
	ready    bool
	quitting bool

	focus         Focus
	fileInput     textField
	questionInput textField
	selected      int
	scroll        int
	notice        string
	serviceStatus string

	spinnerFrame int
	tick         int
}

// NewModel creates the summarizer model
func NewModel(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(log)
	}
	loadFile := opts.LoadFile
	if loadFile == nil {
		loadFile = docservice.LoadDocument
	}
	theme, _ := ThemeByName(opts.Theme)

	m := &Model{
		sess:          sess,
		svc:           opts.Service,
		health:        opts.Health,
		authCtx:       opts.Auth,
		log:           log.WithComponent("ui"),
		styles:        NewStyles(theme),
		loadFile:      loadFile,
		ctx:           sess.Context(context.Background()),
		requireAuth:   opts.RequireAuth,
		fileInput:     newTextField("path/to/document.pdf"),
		questionInput: newTextField("Ask a question about the document"),
	}

	if m.authCtx != nil {
		m.user, _ = m.authCtx.CurrentUser()
		m.authEvents = make(chan *auth.User, 8)
		m.unsubscribe = m.authCtx.Subscribe(func(u *auth.User) {
			select {
			case m.authEvents <- u:
			default:
			}
		})
	}

	return m
}

// Session returns the workflow driven by the model
func (m *Model) Session() *session.Session {
	return m.sess
}

// Init starts the spinner, the identity listener and the health probe
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.authEvents != nil {
		cmds = append(cmds, waitForAuth(m.authEvents))
	}
	if m.health != nil {
		cmds = append(cmds, healthCmd(m.ctx, m.health))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and navigation
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tickMsg:
		return m.handleTick()
	case summarizeDoneMsg:
		return m.handleSummarizeDone(msg)
	case askDoneMsg:
		return m.handleAskDone(msg)
	case authChangedMsg:
		return m.handleAuthChanged(msg)
	case healthMsg:
		return m.handleHealth(msg)
	}
	return m, nil
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.clampScroll()
	return m, nil
}

func (m *Model) handleTick() (tea.Model, tea.Cmd) {
	m.tick++
	m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerChars)
	return m, tick()
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m.handleQuit()
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case "ctrl+r":
		return m.handleReset()
	case "ctrl+x":
		return m.handleRemoveFile()
	case "ctrl+s":
		return m.submitFile()
	case "pgup":
		m.scroll -= m.resultsHeight() / 2
		m.clampScroll()
		return m, nil
	case "pgdown":
		m.scroll += m.resultsHeight() / 2
		m.clampScroll()
		return m, nil
	}

	if !m.signedIn() {
		return m, nil
	}

	switch m.focus {
	case FocusFile:
		return m.handleFileKey(msg)
	case FocusSuggestions:
		return m.handleSuggestionKey(msg)
	case FocusQuestion:
		return m.handleQuestionKey(msg)
	}
	return m, nil
}

func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return m, tea.Quit
}

func (m *Model) handleReset() (tea.Model, tea.Cmd) {
	m.sess.Reset()
	m.fileInput.SetValue("")
	m.questionInput.SetValue("")
	m.focus = FocusFile
	m.selected = 0
	m.scroll = 0
	m.notice = ""
	return m, nil
}

func (m *Model) handleRemoveFile() (tea.Model, tea.Cmd) {
	m.sess.RemoveFile()
	m.selected = 0
	m.scroll = 0
	m.notice = ""
	m.focus = FocusFile
	return m, nil
}

func (m *Model) handleFileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.selectFile()
	}
	m.fileInput.Update(msg)
	return m, nil
}

// selectFile makes the typed path the session file. With nothing typed,
// Enter uploads the file already selected.
func (m *Model) selectFile() (tea.Model, tea.Cmd) {
	path := strings.TrimSpace(m.fileInput.Value())
	if path == "" {
		return m.submitFile()
	}

	doc, err := m.loadFile(config.ExpandPath(path))
	if err != nil {
		m.notice = fmt.Sprintf("Could not open %s", path)
		m.log.Warn("File load failed", logger.F("path", path), logger.Error(err))
		return m, nil
	}
	if !doc.IsPDF() {
		m.notice = "Only PDF files are supported"
		return m, nil
	}

	m.sess.SelectFile(doc)
	m.fileInput.SetValue("")
	m.selected = 0
	m.scroll = 0
	m.notice = ""
	return m, nil
}

func (m *Model) submitFile() (tea.Model, tea.Cmd) {
	if !m.signedIn() {
		return m, nil
	}

	ticket, err := m.sess.BeginSummarize()
	if err != nil {
		m.notice = docservice.MessageOf(err)
		return m, nil
	}
	m.notice = ""
	return m, summarizeCmd(m.ctx, m.svc, ticket)
}

func (m *Model) handleSuggestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	questions := m.sess.Snapshot().Questions()
	if len(questions) == 0 {
		m.focus = FocusQuestion
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(questions)-1 {
			m.selected++
		}
	case "enter", " ":
		if err := m.sess.PickSuggestedQuestion(m.selected); err != nil {
			return m, nil
		}
		m.questionInput.SetValue(m.sess.Question())
		m.focus = FocusQuestion
	}
	return m, nil
}

func (m *Model) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.submitQuestion()
	}
	if m.questionInput.Update(msg) {
		m.sess.SetQuestion(m.questionInput.Value())
	}
	return m, nil
}

func (m *Model) submitQuestion() (tea.Model, tea.Cmd) {
	ticket, err := m.sess.BeginAsk()
	if err != nil {
		m.notice = docservice.MessageOf(err)
		return m, nil
	}
	m.notice = ""
	return m, askCmd(m.ctx, m.svc, ticket)
}

func (m *Model) handleSummarizeDone(msg summarizeDoneMsg) (tea.Model, tea.Cmd) {
	if !m.sess.CompleteSummarize(msg.ticket, msg.summary, msg.err) {
		return m, nil
	}

	m.log.Debug("Summary rendered", logger.Duration(msg.elapsed))
	m.selected = 0
	m.scroll = 0
	if msg.err == nil {
		if len(m.sess.Snapshot().Questions()) > 0 {
			m.focus = FocusSuggestions
		} else {
			m.focus = FocusQuestion
		}
	}
	return m, nil
}

func (m *Model) handleAskDone(msg askDoneMsg) (tea.Model, tea.Cmd) {
	if !m.sess.CompleteAsk(msg.ticket, msg.answer, msg.err) {
		return m, nil
	}
	m.log.Debug("Answer rendered", logger.Duration(msg.elapsed))
	m.scroll = m.maxScroll()
	return m, nil
}

// handleAuthChanged follows sign-in and sign-out from any terminal
func (m *Model) handleAuthChanged(msg authChangedMsg) (tea.Model, tea.Cmd) {
	wasSignedIn := m.user != nil
	m.user = msg.user

	if wasSignedIn && msg.user == nil && m.requireAuth {
		m.log.Info("Signed out, clearing session")
		m.handleReset()
	}
	return m, waitForAuth(m.authEvents)
}

func (m *Model) handleHealth(msg healthMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err != nil:
		m.serviceStatus = docservice.MessageOf(msg.err)
		m.log.Warn("Document service health check failed", logger.Error(msg.err))
	case msg.health != nil && msg.health.Status != "healthy" && msg.health.Status != "ok":
		m.serviceStatus = "Document service is " + msg.health.Status
	default:
		m.serviceStatus = ""
	}
	return m, nil
}

func (m *Model) signedIn() bool {
	return !m.requireAuth || m.user != nil
}

func (m *Model) cycleFocus(step int) {
	order := []Focus{FocusFile, FocusSuggestions, FocusQuestion}
	if len(m.sess.Snapshot().Questions()) == 0 {
		order = []Focus{FocusFile, FocusQuestion}
	}

	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	m.focus = order[(idx+step+len(order))%len(order)]
}

// View renders the summarizer
func (m *Model) View() string {
	if !m.ready {
		return "Initializing DocSum..."
	}
	if m.quitting {
		return "Thanks for using DocSum! " + emoji.GetEmoji("door") + "\n"
	}
	if !m.signedIn() {
		return m.renderSignedOut()
	}

	snap := m.sess.Snapshot()
	width := m.contentWidth()

	parts := []string{
		m.renderHeader(width),
		m.renderFilePanel(snap, width),
	}
	if status := m.renderStatus(snap); status != "" {
		parts = append(parts, status)
	}
	parts = append(parts,
		m.renderResults(snap, width),
		m.renderQuestionPanel(snap, width),
		m.renderFooter(snap),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderSignedOut() string {
	title := m.styles.Title.Render(emoji.GetEmoji("lock") + " Sign in required")
	body := m.styles.Muted.Render(auth.ErrNotSignedIn.Error())
	hint := m.styles.Muted.Render("This view updates as soon as you sign in. Esc to quit.")

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", body, hint)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.styles.Focused.Render(content))
}

func (m *Model) renderHeader(width int) string {
	title := m.styles.Title.Render(emoji.GetEmoji("document") + " DocSum Summarizer")

	right := ""
	if m.user != nil {
		right = m.styles.Muted.Render(emoji.GetEmoji("user") + " " + m.user.Name())
	}

	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m *Model) renderFilePanel(snap session.Snapshot, width int) string {
	var line string
	switch {
	case snap.UploadInFlight:
		line = fmt.Sprintf("%s Summarizing %s...",
			m.styles.Spinner.Render(spinnerChars[m.spinnerFrame]), snap.FileName)
	case snap.HasFile() && m.focus != FocusFile:
		line = fmt.Sprintf("%s %s (%s)", emoji.GetEmoji("document"), snap.FileName, formatSize(snap.FileSize))
	default:
		line = "PDF: " + m.fileInput.View(m.focus == FocusFile, m.styles.Muted)
		if snap.HasFile() {
			line += m.styles.Muted.Render(fmt.Sprintf("  [selected: %s]", snap.FileName))
		}
	}
	return m.panelStyle(FocusFile, width).Render(line)
}

func (m *Model) renderStatus(snap session.Snapshot) string {
	switch {
	case snap.Failure != nil:
		return m.styles.Error.Render(emoji.GetEmoji("error") + " " + snap.Failure.Message)
	case m.notice != "":
		return m.styles.Warning.Render(emoji.GetEmoji("warning") + " " + m.notice)
	case m.serviceStatus != "":
		return m.styles.Warning.Render(emoji.GetEmoji("health") + " " + m.serviceStatus)
	}
	return ""
}

// resultSection is one titled block of the scrollable results area
type resultSection struct {
	id    string
	title string
	lines []string
}

func (m *Model) resultSections(snap session.Snapshot, width int) []resultSection {
	var sections []resultSection
	body := lipgloss.NewStyle().Width(width)

	if snap.Summary != nil {
		title := emoji.GetEmoji("summary") + " Summary"
		if snap.ProcessedFileName != "" {
			title += " of " + snap.ProcessedFileName
		}
		text := snap.Summary.Summary
		if !snap.Summary.HasSummary() {
			text = m.styles.Muted.Render("The service returned no summary text.")
		}
		sections = append(sections, resultSection{
			id:    "summary",
			title: title,
			lines: strings.Split(body.Render(text), "\n"),
		})
	}

	if questions := snap.Questions(); len(questions) > 0 {
		lines := make([]string, 0, len(questions))
		for i, q := range questions {
			item := fmt.Sprintf("%d. %s", i+1, q)
			if m.focus == FocusSuggestions && i == m.selected {
				lines = append(lines, m.styles.Selected.Render("▶ "+item))
			} else {
				lines = append(lines, "  "+item)
			}
		}
		sections = append(sections, resultSection{
			id:    "questions",
			title: emoji.GetEmoji("help") + " Suggested Questions",
			lines: lines,
		})
	}

	switch {
	case snap.QuestionInFlight:
		sections = append(sections, resultSection{
			id:    "answer",
			title: emoji.GetEmoji("answer") + " Answer",
			lines: []string{m.styles.Spinner.Render(spinnerChars[m.spinnerFrame]) + " Thinking..."},
		})
	case snap.Answer != nil:
		sections = append(sections, resultSection{
			id:    "answer",
			title: emoji.GetEmoji("answer") + " Answer",
			lines: strings.Split(body.Render(snap.Answer.Answer), "\n"),
		})
	}

	return sections
}

// flatten joins sections into lines and records where each one sits
func flatten(sections []resultSection) ([]string, []site.SectionBounds) {
	var lines []string
	ids := make([]string, 0, len(sections))
	heights := make([]float64, 0, len(sections))

	for _, s := range sections {
		top := len(lines)
		lines = append(lines, s.title)
		lines = append(lines, s.lines...)
		lines = append(lines, "")
		ids = append(ids, s.id)
		heights = append(heights, float64(len(lines)-top))
	}
	return lines, site.Stack(0, ids, heights)
}

// ActiveResultSection names the results section under the viewport
func (m *Model) ActiveResultSection() string {
	_, bounds := flatten(m.resultSections(m.sess.Snapshot(), m.contentWidth()))
	return site.ActiveSection(float64(m.scroll), float64(m.resultsHeight()), bounds)
}

func (m *Model) renderResults(snap session.Snapshot, width int) string {
	sections := m.resultSections(snap, width)
	if len(sections) == 0 {
		hint := "Type the path of a PDF and press Enter to select it."
		if snap.HasFile() {
			hint = "Press Enter or Ctrl+S to summarize " + snap.FileName + "."
		}
		return m.styles.Muted.Render(hint)
	}

	lines, bounds := flatten(sections)
	for i, s := range sections {
		lines[int(bounds[i].Top)] = m.styles.Header.Render(s.title)
	}

	height := m.resultsHeight()
	start := m.scroll
	if start > len(lines) {
		start = len(lines)
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func (m *Model) renderQuestionPanel(snap session.Snapshot, width int) string {
	label := "Ask: "
	if snap.QuestionInFlight {
		label = m.styles.Spinner.Render(spinnerChars[m.spinnerFrame]) + " Ask: "
	}
	line := label + m.questionInput.View(m.focus == FocusQuestion, m.styles.Muted)
	return m.panelStyle(FocusQuestion, width).Render(line)
}

func (m *Model) renderFooter(snap session.Snapshot) string {
	section := ""
	if _, bounds := flatten(m.resultSections(snap, m.contentWidth())); len(bounds) > 0 {
		if id := site.ActiveSection(float64(m.scroll), float64(m.resultsHeight()), bounds); id != "" {
			section = "§ " + id + " • "
		}
	}

	help := "Tab focus • Enter submit • Ctrl+S summarize • Ctrl+X remove file • Ctrl+R reset • PgUp/PgDn scroll • Esc quit"
	return m.styles.Muted.Render(section + snap.StateName + " • " + help)
}

func (m *Model) panelStyle(panel Focus, width int) lipgloss.Style {
	style := m.styles.Blurred
	if m.focus == panel {
		style = m.styles.Focused
	}
	if m.tick > 0 && m.sess.Snapshot().UploadInFlight && panel == FocusFile {
		style = style.BorderForeground(m.getRainbowColor())
	}
	return style.Width(width)
}

func (m *Model) getRainbowColor() lipgloss.AdaptiveColor {
	colors := []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7", "#DDA0DD", "#98D8C8",
	}
	return lipgloss.AdaptiveColor{
		Light: colors[m.tick/10%len(colors)],
		Dark:  colors[m.tick/10%len(colors)],
	}
}

func (m *Model) contentWidth() int {
	return max(20, min(m.width-4, 100))
}

// resultsHeight leaves room for header, panels, status and footer
func (m *Model) resultsHeight() int {
	return max(3, m.height-11)
}

func (m *Model) maxScroll() int {
	lines, _ := flatten(m.resultSections(m.sess.Snapshot(), m.contentWidth()))
	return max(0, len(lines)-m.resultsHeight())
}

func (m *Model) clampScroll() {
	m.scroll = max(0, min(m.scroll, m.maxScroll()))
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Run runs the summarizer until the user quits or ctx is done
func Run(ctx context.Context, opts Options) error {
	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if model.unsubscribe != nil {
		model.unsubscribe()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
