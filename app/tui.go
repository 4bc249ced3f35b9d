package app

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"find-text/config"
	"find-text/search"
)

var latestProgress progressMsg
var haveLatestProgress bool
var progressMu sync.Mutex

// progressMsg updates the top progress line while loading.
// Format in View: "⏳ {Stage} [num/total]: filename"
type progressMsg struct {
	Stage string
	Count int
	Total int
	Path  string
}

// Styles (shared with CLI error output)
var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7"))

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// highlightColors maps the highlight palette onto the TUI theme
var highlightColors = map[string]lipgloss.Color{
	"red":     lipgloss.Color("#f7768e"),
	"green":   lipgloss.Color("#9ece6a"),
	"yellow":  lipgloss.Color("#e0af68"),
	"blue":    lipgloss.Color("#7aa2f7"),
	"magenta": lipgloss.Color("#bb9af7"),
	"cyan":    lipgloss.Color("#7dcfff"),
}

type model struct {
	ctx    context.Context
	cancel context.CancelFunc // stops the background search

	// Results and paging (one document per page)
	results       []search.SearchResult
	warnings      []search.Warning
	currentPage   int
	totalPages    int
	contentScroll int

	// progress totals
	totalFiles int

	// Session and timing
	startWall  time.Time
	searchTime time.Duration
	quitting   bool
	loading    bool
	err        error

	// Window size
	width  int
	height int

	// Search parameters
	pattern   string
	paths     []string
	opts      search.Options
	highlight lipgloss.Style

	// UI state
	memUsageText string // e.g., " • RAM: XXX MB • CPU: YY%"
	progressText string // e.g., "⏳ Processing..."
}

func newModel(ctx context.Context, cancel context.CancelFunc, pattern string, paths []string, opts search.Options, cfg *config.Config) model {
	hl := lipgloss.NewStyle()
	if c, ok := highlightColors[cfg.Highlight]; ok && cfg.Style != "none" {
		hl = hl.Foreground(c)
	}
	switch cfg.Style {
	case "bold":
		hl = hl.Bold(true)
	case "underline":
		hl = hl.Underline(true)
	case "color":
		hl = hl.Bold(true)
	}
	width, height := terminalSize()
	return model{
		ctx:       ctx,
		cancel:    cancel,
		loading:   true,
		startWall: time.Now(),
		width:     width,
		height:    height,
		pattern:   pattern,
		paths:     paths,
		opts:      opts,
		highlight: hl.TabWidth(lipgloss.NoTabConversion),
	}
}

// terminalSize returns the terminal size, defaulting to 120x30 if unable to detect
func terminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return 120, 30
	}
	return width, height
}

func (m model) Init() tea.Cmd {
	// Start polling progress and kick off the background search immediately.
	return tea.Batch(pollProgress(), m.runSearch(), m.memUsageTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// While loading, only allow quit
		if m.loading {
			switch msg.String() {
			case "q", "ctrl+c":
				return m.quit()
			}
			return m, nil
		}

		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m.quit()
		case "enter", "n", "right", "l", " ":
			if m.currentPage < m.totalPages-1 {
				m.currentPage++
				m.contentScroll = 0
			}
			return m, nil
		case "p", "left", "h":
			if m.currentPage > 0 {
				m.currentPage--
			}
			m.contentScroll = 0
			return m, nil
		case "home":
			m.currentPage = 0
			m.contentScroll = 0
			return m, nil
		case "end":
			m.currentPage = m.totalPages - 1
			m.contentScroll = 0
			return m, nil
		case "up", "k":
			m.contentScroll--
			return m, nil
		case "down", "j":
			m.contentScroll++
			return m, nil
		case "pgup":
			m.contentScroll -= 5
			return m, nil
		case "pgdown":
			m.contentScroll += 5
			return m, nil
		}
		return m, nil

	case searchResultMsg:
		// Search completed: store results, compute pages, stop loading
		m.searchTime = msg.searchTime
		m.err = msg.err
		if msg.report != nil {
			m.results = msg.report.Results
			m.warnings = msg.report.Warnings
			m.totalFiles = msg.report.Stats.DocumentsResolved
		}
		m.totalPages = max(1, len(m.results))
		m.loading = false
		return m, nil

	case memUsageMsg:
		m.memUsageText = msg.Text
		return m, m.memUsageTick()

	case progressTick:
		if !m.loading {
			return m, nil
		}
		// Periodic poll: read the most recent progress snapshot (mutex-protected)
		progressMu.Lock()
		lp := latestProgress
		hv := haveLatestProgress
		progressMu.Unlock()

		if hv {
			m.totalFiles = lp.Total
			m.progressText = fmt.Sprintf("%s [%d/%d]: %s", capitalize(lp.Stage), lp.Count, lp.Total, lp.Path)
		}
		return m, pollProgress()
	}
	return m, nil
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit
}

func (m model) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 30
	}

	if m.quitting {
		return "Goodbye!\n"
	}

	// Build header lines
	var headerLines []string
	headerLines = append(headerLines, "")
	headerLines = append(headerLines, subHeaderStyle.Render(fmt.Sprintf("🔍 Searching: %q (%s)", m.pattern, m.matchDescription())))

	target := strings.Join(m.paths, ", ") + " • " + config.GetFileTypeDescription(m.opts.Extensions)
	if m.opts.Recursive {
		target += " • recursive"
	}
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Render(wrapTextWithIndent("📁 Target: ", target, width-4)))

	engine := fmt.Sprintf("⚙️ Engine: Workers %d%s", m.opts.Workers, m.memUsageText)
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7")).Render(engine))

	// Elapsed search time (freeze after completion)
	elapsed := m.searchTime
	if m.loading {
		elapsed = time.Since(m.startWall)
	}
	status := fmt.Sprintf("⏱️ Searched: %.1fs • Matched: %d of %d documents", elapsed.Seconds(), len(m.results), m.totalFiles)
	if len(m.warnings) > 0 {
		status += fmt.Sprintf(" • %d warnings", len(m.warnings))
	}
	headerLines = append(headerLines, lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Render(status))

	searchInfo := strings.Join(headerLines, "\n")
	headerHeight := strings.Count(searchInfo, "\n") + 1
	progressHeight := 1
	footerHeight := 1

	var parts []string
	parts = append(parts, searchInfo)
	if m.loading {
		txt := "⏳ Processing"
		if m.progressText != "" {
			txt = "⏳ " + m.progressText
		}
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Render(txt))
	} else {
		// Reserve the progress row to keep the box fixed when not loading
		parts = append(parts, "")
	}

	innerWidth := max(10, width-4-6)
	var boxContent string
	switch {
	case m.loading:
		boxContent = "Searching..."
	case m.err != nil:
		boxContent = errorStyle.Render("Error: " + m.err.Error())
	case len(m.results) == 0:
		boxContent = "No matches found."
		for _, w := range m.warnings {
			boxContent += "\n" + warningStyle.Render("Warning: "+w.Error())
		}
	default:
		boxContent = m.renderResult(m.results[m.currentPage], innerWidth)
	}

	boxOuterWidth := width - 4
	chromeHeight := 4
	contentHeight := max(1, height-headerHeight-progressHeight-footerHeight-chromeHeight)

	// Window the box content according to contentScroll to enable vertical scrolling
	lines := strings.Split(boxContent, "\n")
	maxStart := max(0, len(lines)-contentHeight)
	start := min(max(m.contentScroll, 0), maxStart)
	end := min(start+contentHeight, len(lines))
	window := strings.Join(lines[start:end], "\n")
	parts = append(parts, appStyle.Width(boxOuterWidth).Height(contentHeight).Render(window))

	footer := "🔚 'q' quit • n/→: next • p/←: previous • j/k: scroll"
	parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(footer))

	return strings.Join(parts, "\n")
}

func (m model) matchDescription() string {
	desc := m.opts.Mode.String()
	if m.opts.CaseSensitive {
		return desc + ", case-sensitive"
	}
	return desc + ", ignoring case"
}

// renderResult shows one document's matches with highlighted spans
func (m model) renderResult(res search.SearchResult, width int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("File: %s (%s)\n\n", res.Document.Path, search.FormatFileSize(res.Document.SizeHint)))
	for _, rec := range res.Matches {
		label := locationStyle.Render(fmt.Sprintf("%s: ", rec.Unit.Location))
		var line strings.Builder
		for _, seg := range search.Annotate(rec).Segments() {
			if seg.Emphasis {
				line.WriteString(m.highlight.Render(seg.Text))
			} else {
				line.WriteString(seg.Text)
			}
		}
		b.WriteString(wrapTextWithIndent(label, line.String(), width) + "\n")
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("Document %d of %d • %d matches", m.currentPage+1, len(m.results), len(res.Matches))))
	return b.String()
}

// Background search command
func (m model) runSearch() tea.Cmd {
	opts := m.opts
	// Stream progress from the engine to the TUI header
	opts.OnProgress = func(stage string, processed, total int, path string) {
		progressMu.Lock()
		latestProgress = progressMsg{Stage: stage, Count: processed, Total: total, Path: path}
		haveLatestProgress = true
		progressMu.Unlock()
	}
	ctx, pattern, paths := m.ctx, m.pattern, m.paths

	return func() tea.Msg {
		start := time.Now()
		engine, err := search.NewEngine(pattern, opts)
		if err != nil {
			return searchResultMsg{err: err}
		}
		report, err := engine.Run(ctx, paths)
		return searchResultMsg{report: report, err: err, searchTime: time.Since(start)}
	}
}

func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(max(1, width-prefixWidth)).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (m model) memUsageTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		mem, cpu := sampleMemoryAndCPU()
		return memUsageMsg{Text: fmt.Sprintf(" • Heap %5.1f MB • Max RSS %5.1f MB • CPU %5.1f%%", float64(mem.heap)/(1024*1024), float64(mem.rss)/(1024*1024), cpu)}
	})
}

func pollProgress() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		// Always trigger a poll tick; Update reads the newest progress snapshot
		return progressTick{}
	})
}

var lastCPUWall time.Time
var lastCPUProc time.Duration
var haveCPUSample bool

func sampleMemoryAndCPU() (mem struct{ heap, rss uint64 }, cpu float64) {
	var rusage unix.Rusage
	_ = unix.Getrusage(unix.RUSAGE_SELF, &rusage)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	mem.heap = ms.HeapAlloc
	mem.rss = uint64(rusage.Maxrss * 1024) // KB to bytes

	// Sample CPU (process user+sys time from rusage)
	nowWall := time.Now()
	user := time.Duration(rusage.Utime.Sec)*time.Second + time.Duration(rusage.Utime.Usec)*time.Microsecond
	sys := time.Duration(rusage.Stime.Sec)*time.Second + time.Duration(rusage.Stime.Usec)*time.Microsecond
	nowProc := user + sys
	if haveCPUSample {
		wallDiff := nowWall.Sub(lastCPUWall)
		procDiff := nowProc - lastCPUProc
		if wallDiff > 0 {
			cpu = max(0, procDiff.Seconds()/wallDiff.Seconds()*100)
		}
	}
	lastCPUWall = nowWall
	lastCPUProc = nowProc
	haveCPUSample = true
	return
}

// runTUI runs the search in the background and browses the results
func runTUI(ctx context.Context, pattern string, paths []string, opts search.Options, cfg *config.Config) error {
	if _, err := search.Compile(pattern, opts.Mode, opts.CaseSensitive); err != nil {
		return err
	}
	// The log handler writes to stderr, which would tear the alternate screen
	opts.Logger = nil

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(searchCtx, cancel, pattern, paths, opts, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// Messages for TUI updates
type searchResultMsg struct {
	report     *search.Report
	err        error
	searchTime time.Duration
}

type memUsageMsg struct {
	Text string
}

type progressTick struct{}
