package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"valed/internal/lint"
)

type progressModel struct {
	title      string
	events     <-chan lint.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []rootItem
	index      map[string]int
	stageLabel string
	width      int
	done       bool
}

type rootItem struct {
	root   string
	status string
	files  int
}

type eventMsg lint.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders batch lint
// progress, one row per project root.
func NewProgressModel(title string, roots []string, events <-chan lint.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]rootItem, 0, len(roots))
	index := make(map[string]int, len(roots))
	for i, root := range roots {
		items = append(items, rootItem{root: root, status: "queued"})
		index[root] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := lint.Event(msg)
		cmd := m.applyEvent(ev)
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.root, nameWidth)
		if item.files > 0 {
			name = fmt.Sprintf("%s (%d files)", name, item.files)
		}
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		line := fmt.Sprintf("  %s %s", statusStyled, name)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev lint.Event) tea.Cmd {
	if ev.Root == "" {
		// Run-wide events carry the active stage for the header.
		if lbl := stageLabel(ev.Stage, ev.Status); lbl != "" {
			m.stageLabel = lbl
		}
		return nil
	}
	idx, ok := m.index[ev.Root]
	if !ok {
		return nil
	}
	if label := statusLabel(ev.Status); label != "" {
		m.items[idx].status = label
	}
	if ev.Files > 0 {
		m.items[idx].files = ev.Files
	}

	totalProgress := 0.0
	for _, item := range m.items {
		switch item.status {
		case "done", "error":
			totalProgress += 1.0
		case "linting":
			totalProgress += 0.5
		}
	}
	pct := totalProgress / float64(len(m.items))
	return m.prog.SetPercent(pct)
}

func statusLabel(status lint.Status) string {
	switch status {
	case lint.StatusQueued:
		return "queued"
	case lint.StatusDone:
		return "done"
	case lint.StatusError:
		return "error"
	case lint.StatusWorking:
		return "linting"
	default:
		return ""
	}
}

func stageLabel(stage lint.Stage, status lint.Status) string {
	if status != lint.StatusWorking {
		return ""
	}
	switch stage {
	case lint.StageDiscover:
		return "discovering files"
	case lint.StageLint:
		return "linting"
	case lint.StagePublish:
		return "publishing"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "linting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
