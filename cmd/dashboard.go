package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"landkit/internal/core/domain"
	"landkit/internal/core/services"
	"landkit/pkg/ui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:     "dashboard [capture-file]",
	Aliases: []string{"dash"},
	Short:   "Launch interactive dashboard (alias: dash)",
	Long: `Launch a full-screen interactive dashboard for working with land records.

The dashboard provides:
- List view of every record in the current capture with fetch status
- Paste mode for loading a fresh capture without leaving the dashboard
- A GeoJSON preview pane with syntax highlighting
- Quick actions: copy, save as GeoJSON, save as KML

Keyboard Shortcuts:
  Navigation:
    ↑/k         Move up
    ↓/j         Move down
    g           Jump to top
    G           Jump to bottom

  Actions:
    Enter       Preview GeoJSON
    c           Copy GeoJSON to clipboard
    s           Save as .geojson
    K           Save as .kml
    p           Paste a new capture

  General:
    ?           Show help
    q           Quit dashboard
    Ctrl+C      Force quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDashboard,
}

var dashboardOut string

func init() {
	dashboardCmd.Flags().StringVarP(&dashboardOut, "out", "o", "", "Output directory for saves (default from config)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// A capture file is optional; paste mode can load one later
	if len(args) > 0 {
		if err := loadCapture(args); err != nil {
			return err
		}
	}

	outDir := dashboardOut
	if outDir == "" {
		outDir = appConfig.OutputDir
	}

	m := newDashboardModel(outDir)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}

// Dashboard view modes
type viewMode int

const (
	modeList viewMode = iota
	modePaste
	modeHelp
)

// Preview state
type previewState struct {
	content  string
	uuid     string
	viewport viewport.Model
}

// Dashboard model
type dashboardModel struct {
	items         []domain.DownloadItem
	cursor        int
	offset        int
	mode          viewMode
	pasteInput    textarea.Model
	help          help.Model
	keys          keyMap
	outDir        string
	width         int
	height        int
	ready         bool
	message       string
	messageStyle  lipgloss.Style
	messageExpiry time.Time
	preview       previewState
}

// Key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Preview key.Binding
	Copy    key.Binding
	SaveGeo key.Binding
	SaveKML key.Binding
	Paste   key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Submit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Preview, k.Copy, k.Paste, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Preview, k.Copy, k.SaveGeo, k.SaveKML},
		{k.Paste, k.Help, k.Escape, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	Preview: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "preview"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy GeoJSON"),
	),
	SaveGeo: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save .geojson"),
	),
	SaveKML: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "save .kml"),
	),
	Paste: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "paste capture"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "load capture"),
	),
}

func newDashboardModel(outDir string) dashboardModel {
	ta := textarea.New()
	ta.Placeholder = "Paste the captured listing response here..."
	ta.CharLimit = 0
	ta.SetWidth(80)
	ta.SetHeight(15)

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle().Foreground(ui.ColorDefault)

	return dashboardModel{
		items:      registry.Items(),
		cursor:     0,
		offset:     0,
		mode:       modeList,
		pasteInput: ta,
		help:       help.New(),
		keys:       keys,
		outDir:     outDir,
		ready:      false,
		preview: previewState{
			viewport: vp,
		},
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return nil
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

		previewWidth := (msg.Width / 2) - 4
		previewHeight := msg.Height - 14
		if previewHeight < 10 {
			previewHeight = 10
		}
		m.preview.viewport.Width = previewWidth
		m.preview.viewport.Height = previewHeight
		m.pasteInput.SetWidth(msg.Width - 6)
		m.pasteInput.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modePaste:
			return m.updatePaste(msg)
		case modeHelp:
			return m.updateHelp(msg)
		case modeList:
			return m.updateList(msg)
		}

	case statusMsg:
		m.message = msg.message
		m.messageStyle = msg.style
		m.messageExpiry = time.Now().Add(3 * time.Second)
		m.items = registry.Items()
		m.clampCursor()
		return m, nil

	case reloadItemsMsg:
		m.items = registry.Items()
		m.clampCursor()
		m.preview.content = ""
		m.preview.uuid = ""
		return m, nil

	case previewLoadedMsg:
		m.items = registry.Items()
		m.preview.content = msg.content
		m.preview.uuid = msg.uuid
		m.preview.viewport.SetContent(msg.content)
		m.preview.viewport.GotoTop()
		return m, nil
	}

	if m.mode == modeList {
		var cmd tea.Cmd
		m.preview.viewport, cmd = m.preview.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m dashboardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustViewport()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.adjustViewport()
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0

	case key.Matches(msg, m.keys.Bottom):
		if len(m.items) > 0 {
			m.cursor = len(m.items) - 1
			m.adjustViewport()
		}

	case msg.Type == tea.KeyPgUp:
		m.preview.viewport.ViewUp()

	case msg.Type == tea.KeyPgDown:
		m.preview.viewport.ViewDown()

	case key.Matches(msg, m.keys.Preview):
		if len(m.items) > 0 {
			return m, m.loadPreview(m.items[m.cursor])
		}

	case key.Matches(msg, m.keys.Copy):
		if len(m.items) > 0 {
			return m, m.copyItem(m.items[m.cursor])
		}

	case key.Matches(msg, m.keys.SaveGeo):
		if len(m.items) > 0 {
			return m, m.saveItem(m.items[m.cursor], "geojson")
		}

	case key.Matches(msg, m.keys.SaveKML):
		if len(m.items) > 0 {
			return m, m.saveItem(m.items[m.cursor], "kml")
		}

	case key.Matches(msg, m.keys.Paste):
		m.mode = modePaste
		m.pasteInput.Reset()
		m.pasteInput.Focus()
		return m, textarea.Blink

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}

	return m, nil
}

func (m dashboardModel) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.pasteInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		input := m.pasteInput.Value()
		m.mode = modeList
		m.pasteInput.Blur()
		return m, m.parseCapture(input)
	}

	var cmd tea.Cmd
	m.pasteInput, cmd = m.pasteInput.Update(msg)
	return m, cmd
}

func (m dashboardModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeList
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if !m.ready {
		return "\n  Loading dashboard..."
	}

	switch m.mode {
	case modePaste:
		return m.viewPaste()
	case modeHelp:
		return m.viewHelp()
	default:
		return m.viewList()
	}
}

func (m dashboardModel) viewList() string {
	listWidth := int(float64(m.width) * 0.4)
	previewWidth := m.width - listWidth - 2

	if listWidth < 30 {
		listWidth = 30
	}

	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")

	listContent := m.renderItemList(listWidth)
	previewContent := m.renderPreview(previewWidth)

	listLines := strings.Split(listContent, "\n")
	previewLines := strings.Split(previewContent, "\n")

	maxLines := len(listLines)
	if len(previewLines) > maxLines {
		maxLines = len(previewLines)
	}

	for i := 0; i < maxLines; i++ {
		var listLine, previewLine string
		if i < len(listLines) {
			listLine = listLines[i]
		}
		if i < len(previewLines) {
			previewLine = previewLines[i]
		}

		s.WriteString(padRight(listLine, listWidth))
		s.WriteString("  ")
		s.WriteString(previewLine)
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m dashboardModel) viewPaste() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Padding(1, 2)

	s.WriteString(titleStyle.Render("Paste Capture"))
	s.WriteString("\n")
	s.WriteString(ui.StyleMuted.Render("  Paste the JSON response of the land listing query below."))
	s.WriteString("\n\n")
	s.WriteString(m.pasteInput.View())
	s.WriteString("\n\n")
	s.WriteString(ui.StyleMuted.Render("  [Ctrl+S] Load capture  [Esc] Cancel"))
	s.WriteString("\n")

	return s.String()
}

func (m dashboardModel) viewHelp() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Padding(1, 2)

	sectionStyle := lipgloss.NewStyle().
		Foreground(ui.ColorAccent).
		Bold(true).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(ui.ColorSuccess).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(ui.ColorDefault)

	s.WriteString(titleStyle.Render("Landkit Dashboard - Keyboard Shortcuts"))
	s.WriteString("\n\n")

	sections := []struct {
		title string
		keys  []struct{ key, desc string }
	}{
		{
			title: "Navigation",
			keys: []struct{ key, desc string }{
				{"↑ / k", "Move cursor up"},
				{"↓ / j", "Move cursor down"},
				{"g", "Jump to top"},
				{"G", "Jump to bottom"},
			},
		},
		{
			title: "Actions",
			keys: []struct{ key, desc string }{
				{"Enter", "Fetch and preview GeoJSON"},
				{"c", "Copy GeoJSON to clipboard"},
				{"s", "Save as .geojson"},
				{"K", "Save as .kml"},
				{"p", "Paste a new capture"},
			},
		},
		{
			title: "Preview",
			keys: []struct{ key, desc string }{
				{"PgUp/PgDn", "Scroll preview pane"},
			},
		},
		{
			title: "General",
			keys: []struct{ key, desc string }{
				{"?", "Show this help"},
				{"q", "Quit dashboard"},
				{"Ctrl+C", "Force quit"},
			},
		},
	}

	for _, section := range sections {
		s.WriteString(sectionStyle.Render(section.title))
		s.WriteString("\n")
		for _, binding := range section.keys {
			s.WriteString("  ")
			s.WriteString(keyStyle.Render(binding.key))
			s.WriteString(descStyle.Render(binding.desc))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(ui.StyleMuted.Render("  Press ESC or ? to return to dashboard"))
	s.WriteString("\n")

	return s.String()
}

func (m dashboardModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	statsStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Align(lipgloss.Right)

	title := titleStyle.Render(ui.IconGlobe + " Landkit Dashboard")
	stats := statsStyle.Render(fmt.Sprintf("%d records  out: %s", len(m.items), m.outDir))

	titleWidth := lipgloss.Width(title)
	statsWidth := lipgloss.Width(stats)
	spacer := m.width - titleWidth - statsWidth
	if spacer < 0 {
		spacer = 0
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", spacer),
		stats,
	)
}

func (m dashboardModel) renderItemList(width int) string {
	var s strings.Builder

	if len(m.items) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Padding(2, 2).
			Width(width)

		s.WriteString(emptyStyle.Render("No land records loaded. Press 'p' to paste a capture."))
		return s.String()
	}

	listHeight := m.height - 8
	if listHeight < 3 {
		listHeight = 3
	}

	start := m.offset
	end := m.offset + listHeight
	if end > len(m.items) {
		end = len(m.items)
	}

	for i := start; i < end; i++ {
		s.WriteString(m.renderItem(m.items[i], i == m.cursor, width))
	}

	return s.String()
}

func (m dashboardModel) renderItem(item domain.DownloadItem, selected bool, width int) string {
	var cursor string
	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)

	if selected {
		cursor = ui.StylePrimary.Render("▶ ")
		nameStyle = ui.StylePrimary.Bold(true)
	} else {
		cursor = "  "
	}

	status := " "
	switch {
	case item.Status == domain.StatusLoading:
		status = ui.StyleWarning.Render("…")
	case item.Status == domain.StatusError:
		status = ui.StyleError.Render(ui.IconError)
	case item.Fetched():
		status = ui.StyleSuccess.Render(ui.IconSuccess)
	}

	maxNameLen := width - 8
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	name := truncate(item.Name, maxNameLen)

	line := fmt.Sprintf("%s%s %s", cursor, status, nameStyle.Render(name))

	// Surface the failure inline so the user sees why an item is stuck
	if item.Status == domain.StatusError && selected && item.LastError != "" {
		line += "\n" + padRight("", 4) + ui.StyleError.Render(truncate(item.LastError, width-6))
	}

	return padRight(line, width) + "\n"
}

func (m dashboardModel) renderPreview(width int) string {
	var s strings.Builder

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Width(width - 2).
		Height(m.height - 10)

	if m.preview.content == "" {
		return borderStyle.Render(
			lipgloss.NewStyle().
				Foreground(ui.ColorMuted).
				Italic(true).
				Padding(1).
				Render("Press Enter to fetch and preview the selected record"),
		)
	}

	var item *domain.DownloadItem
	for i := range m.items {
		if m.items[i].UUID == m.preview.uuid {
			item = &m.items[i]
			break
		}
	}

	if item != nil {
		titleStyle := lipgloss.NewStyle().
			Foreground(ui.ColorPrimary).
			Bold(true).
			Width(width - 4)
		s.WriteString(titleStyle.Render(item.Name))
		s.WriteString("\n\n")
	}

	s.WriteString(lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Render(fmt.Sprintf("PgUp/PgDn to scroll • %d%%", int(m.preview.viewport.ScrollPercent()*100))))
	s.WriteString("\n")
	s.WriteString(m.preview.viewport.View())

	return borderStyle.Render(s.String())
}

func (m dashboardModel) renderFooter() string {
	var statusLine string
	if m.message != "" && time.Now().Before(m.messageExpiry) {
		statusLine = m.messageStyle.Render(m.message)
	} else {
		statusLine = ui.StyleMuted.Render("Ready")
	}

	helpHint := ui.StyleMuted.Render("[↑↓/jk] Navigate  [Enter] Preview  [c] Copy  [s] GeoJSON  [K] KML  [p] Paste  [?] Help  [q] Quit")

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		statusLine,
		helpHint,
	)

	return footerStyle.Render(content)
}

func padRight(s string, width int) string {
	realLen := lipgloss.Width(s)
	if realLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-realLen)
}

func (m *dashboardModel) adjustViewport() {
	listHeight := m.height - 8
	if listHeight < 3 {
		listHeight = 3
	}

	if m.cursor >= m.offset+listHeight {
		m.offset = m.cursor - listHeight + 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}

func (m *dashboardModel) clampCursor() {
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustViewport()
}

// Commands

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type reloadItemsMsg struct{}

type previewLoadedMsg struct {
	uuid    string
	content string
}

func (m dashboardModel) parseCapture(input string) tea.Cmd {
	return func() tea.Msg {
		resp, err := parseService.Execute(getContext(), services.ParseRequest{Input: input})
		if err != nil {
			return statusMsg{
				message: fmt.Sprintf("Capture rejected: %v", err),
				style:   ui.StyleError,
			}
		}

		return tea.Sequence(
			func() tea.Msg {
				return reloadItemsMsg{}
			},
			func() tea.Msg {
				return statusMsg{
					message: fmt.Sprintf("Loaded %d records", len(resp.Items)),
					style:   ui.StyleSuccess,
				}
			},
		)()
	}
}

func (m dashboardModel) loadPreview(item domain.DownloadItem) tea.Cmd {
	return func() tea.Msg {
		payload, err := fetchService.EnsurePayload(getContext(), item.UUID)
		if err != nil {
			return statusMsg{
				message: fmt.Sprintf("Fetch failed: %v", err),
				style:   ui.StyleError,
			}
		}

		pretty, err := payload.PrettyJSON()
		if err != nil {
			return statusMsg{
				message: fmt.Sprintf("Preview failed: %v", err),
				style:   ui.StyleError,
			}
		}

		return previewLoadedMsg{
			uuid:    item.UUID,
			content: highlightJSON(pretty),
		}
	}
}

func (m dashboardModel) copyItem(item domain.DownloadItem) tea.Cmd {
	return func() tea.Msg {
		if err := exportService.CopyItem(getContext(), item.UUID); err != nil {
			return statusMsg{
				message: fmt.Sprintf("Copy failed: %v", err),
				style:   ui.StyleError,
			}
		}

		return statusMsg{
			message: fmt.Sprintf("Copied: %s", item.Name),
			style:   ui.StyleSuccess,
		}
	}
}

func (m dashboardModel) saveItem(item domain.DownloadItem, format string) tea.Cmd {
	return func() tea.Msg {
		req := services.ExportRequest{UUID: item.UUID, OutputDir: m.outDir}

		var resp *services.ExportResponse
		var err error
		if format == "kml" {
			resp, err = exportService.SaveKML(getContext(), req)
		} else {
			resp, err = exportService.SaveGeoJSON(getContext(), req)
		}
		if err != nil {
			return statusMsg{
				message: fmt.Sprintf("Save failed: %v", err),
				style:   ui.StyleError,
			}
		}

		return statusMsg{
			message: fmt.Sprintf("Wrote %s", resp.Path),
			style:   ui.StyleSuccess,
		}
	}
}

// highlightJSON applies syntax highlighting to a GeoJSON document
func highlightJSON(content string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.TTY16m

	var buf strings.Builder
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	if err := formatter.Format(&buf, style, iterator); err != nil {
		return content
	}

	return buf.String()
}
