package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/memlayout/pkg/memgraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorText)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorFaint)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFaint).Padding(0, 1)
)

// =============================================================================
// ReplayModel - Interactive frame stepping
// =============================================================================

// ReplayModel is the bubbletea model for stepping through replayed frames.
// The left panel lists frames; the right panel shows the selected frame's
// graph.
type ReplayModel struct {
	Title  string
	Steps  []replayStep
	Cursor int
	Height int
	Offset int
}

func newReplayModel(title string, steps []replayStep) ReplayModel {
	return ReplayModel{Title: title, Steps: steps, Height: 15}
}

func (m ReplayModel) Init() tea.Cmd {
	return nil
}

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "home", "g":
			m.move(-len(m.Steps))
		case "end", "G":
			m.move(len(m.Steps))
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.clampOffset()
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the frame list.
func (m *ReplayModel) move(delta int) {
	m.Cursor = min(max(m.Cursor+delta, 0), max(len(m.Steps)-1, 0))
	m.clampOffset()
}

func (m *ReplayModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m ReplayModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Replay " + m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Steps) == 0 {
		b.WriteString(listDimStyle.Render("no frames"))
		return b.String()
	}

	list := m.frameList()
	detail := m.frameDetail(m.Steps[m.Cursor])
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(list), " ", panelStyle.Render(detail)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Steps))))

	return b.String()
}

func (m ReplayModel) frameList() string {
	end := min(m.Offset+m.Height, len(m.Steps))
	lines := make([]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		s := m.Steps[i]
		line := fmt.Sprintf("%3d %s", s.Index, s.Response.Decision)
		if i == m.Cursor {
			lines = append(lines, listSelectedStyle.Render("▸ "+line))
			continue
		}
		lines = append(lines, "  "+renderDecisionLine(line, s))
	}
	return strings.Join(lines, "\n")
}

func renderDecisionLine(line string, s replayStep) string {
	if s.Response.Error != nil {
		return styleFrozen.Render(line)
	}
	return listNormalStyle.Render(line)
}

// frameDetail lists the nodes of one frame's graph, stack first.
func (m ReplayModel) frameDetail(s replayStep) string {
	r := s.Response
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", renderDecision(r.Decision), listDimStyle.Render(shortGeneration(r.Generation)))
	if msg := stepError(r); msg != "" {
		b.WriteString(styleIconError.Render(iconError) + " " + msg + "\n")
	}
	for _, d := range r.Diagnostics {
		b.WriteString(styleIconWarning.Render(iconWarning) + " " + listDimStyle.Render(d) + "\n")
	}
	b.WriteString("\n")

	for _, n := range r.Graph.Nodes {
		if n.Kind == memgraph.KindLabel {
			b.WriteString(styleTitle.Render(n.Label) + "\n")
			continue
		}
		value := n.Value
		if n.Extra.IsFree {
			value = "free"
		}
		fmt.Fprintf(&b, "  %-12s %s %s\n",
			n.Label,
			listDimStyle.Render(n.Extra.Address),
			styleText.Render(value))
	}
	fmt.Fprintf(&b, "\n%s", listDimStyle.Render(fmt.Sprintf("%d nodes · %d edges", len(r.Graph.Nodes), len(r.Graph.Edges))))
	return b.String()
}
