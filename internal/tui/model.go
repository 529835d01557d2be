package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ask/internal/domain"
)

// AnswerPort is the TUI-facing subset of the orchestrator.
type AnswerPort interface {
	Answer(ctx context.Context, question string) (*domain.Result, error)
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service  AnswerPort
	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	ready    bool
	waiting  bool
}

// answerMsg carries one finished pipeline run back into the update loop.
type answerMsg struct {
	result *domain.Result
	err    error
}

// New creates a new TUI model instance. summary is shown under the
// header (the ingested corpus overview, or a note about the active
// sources).
func New(service AnswerPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, status: "Ready."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("Answer synthesized from %d sources.", len(msg.result.Citations))
		m.viewport.SetContent(renderResult(msg.result))
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.waiting = true
				m.status = fmt.Sprintf("Researching %q...", q)
				svc := m.service
				return m, func() tea.Msg {
					result, err := svc.Answer(context.Background(), q)
					return answerMsg{result: result, err: err}
				}
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ask - research assistant")
	summary := summaryStyle.Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	result := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + result + "\n" + input + "\n" + status
}

func renderResult(result *domain.Result) string {
	var b strings.Builder
	b.WriteString(result.Answer)
	if len(result.Citations) == 0 {
		return b.String()
	}
	b.WriteString("\n\n")
	b.WriteString(sourcesHeaderStyle.Render("Sources"))
	for _, c := range result.Citations {
		b.WriteString(fmt.Sprintf("\n[%d] %s (%s)\n    %s", c.Index, c.Title, c.OriginDomain, c.SourceLocation))
	}
	return b.String()
}

var (
	resultBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	summaryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourcesHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
