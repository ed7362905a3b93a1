// Package tui is the interactive inspector for assembled contexts: it runs
// the pipeline for one milestone and lets you scroll the rendered context and
// flip to the fragment/escalation breakdown.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"weft/internal/pipeline"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type resultMsg struct {
	result *pipeline.Result
	err    error
}

type Model struct {
	assembler   *pipeline.Assembler
	milestoneID string
	task        string
	maxTokens   int

	loading  bool
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	showMeta bool

	result *pipeline.Result
	err    error

	width  int
	height int
}

// NewModel builds the inspector for one task. milestoneID may be empty;
// maxTokens is shown alongside the post-render token count.
func NewModel(assembler *pipeline.Assembler, milestoneID, task string, maxTokens int) Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = false

	return Model{
		assembler:   assembler,
		milestoneID: milestoneID,
		task:        task,
		maxTokens:   maxTokens,
		loading:     true,
		spinner:     s,
		viewport:    vp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.assemble)
}

func (m Model) assemble() tea.Msg {
	res, err := m.assembler.Assemble(m.milestoneID, m.task)
	return resultMsg{result: res, err: err}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "m":
			if m.result != nil {
				m.showMeta = !m.showMeta
				m.viewport.SetContent(m.bodyContent())
				m.viewport.GotoTop()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := 3
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight
		m.ready = true
		if m.result != nil {
			m.viewport.SetContent(m.bodyContent())
		}
		return m, nil

	case resultMsg:
		m.loading = false
		m.result = msg.result
		m.err = msg.err
		if m.result != nil {
			m.viewport.SetContent(m.bodyContent())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	header := titleStyle.Render("weft inspect")
	if m.milestoneID != "" {
		header += metaStyle.Render("  " + m.milestoneID)
	}

	if m.loading {
		return fmt.Sprintf("%s\n\n %s assembling context...\n", header, m.spinner.View())
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s\n", header,
			errStyle.Render("assembly failed: "+m.err.Error()),
			hintStyle.Render("q: quit"))
	}
	if !m.ready {
		return header + "\n\n loading...\n"
	}

	return fmt.Sprintf("%s\n\n%s\n%s", header, m.viewport.View(), m.footer())
}

func (m Model) bodyContent() string {
	if m.showMeta {
		return m.metaContent()
	}
	return m.result.Context
}

func (m Model) metaContent() string {
	var b strings.Builder
	meta := m.result.Meta

	fmt.Fprintf(&b, "Final tier:  %s\n", meta.Tier)
	fmt.Fprintf(&b, "Tokens used: %d\n", meta.TokensUsed)
	fmt.Fprintf(&b, "Symbols:     %d\n", meta.SymbolsProcessed)
	fmt.Fprintf(&b, "Duration:    %s\n", m.result.Duration.Round(0))

	b.WriteString("\nPrimary targets:\n")
	if len(m.result.Primary) == 0 {
		b.WriteString("  (none: no symbol scored above zero)\n")
	}
	for _, p := range m.result.Primary {
		fmt.Fprintf(&b, "  - %s\n", p)
	}

	b.WriteString("\nRanking:\n")
	for i, r := range m.result.Ranked {
		if i >= 15 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(m.result.Ranked)-i)
			break
		}
		fmt.Fprintf(&b, "  %2d. %-30s score %d\n", i+1, r.Name, r.Score)
	}

	b.WriteString("\nEscalations:\n")
	if len(meta.Escalations) == 0 {
		b.WriteString("  (none: task stayed at stub tier)\n")
	}
	for _, e := range meta.Escalations {
		fmt.Fprintf(&b, "  %s -> %s  (%s)\n", e.From, e.To, e.Reason)
	}
	return b.String()
}

func (m Model) footer() string {
	meta := m.result.Meta
	line := fmt.Sprintf("tier %s · %d/%d tokens · %d symbols · %d escalation(s)",
		meta.Tier, meta.TokensUsed, m.maxTokens, meta.SymbolsProcessed, len(meta.Escalations))
	hints := "↑/↓: scroll · m: toggle metadata · q: quit"
	return metaStyle.Render(line) + "\n" + hintStyle.Render(hints)
}
