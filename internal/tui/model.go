// Package tui provides the interactive question-and-answer surface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skedroski/glen-ellyn-chatbot/internal/service"
)

// AnswerPort is the TUI-facing subset of the assistant.
type AnswerPort interface {
	Answer(ctx context.Context, question string) (service.Answer, error)
}

type answerMsg struct {
	question string
	answer   service.Answer
	err      error
}

// Model is the Bubble Tea model for the chat surface.
type Model struct {
	assistant AnswerPort
	input     textinput.Model
	viewport  viewport.Model
	status    string
	thinking  bool
	ready     bool
}

// New creates a new TUI model instance.
func New(assistant AnswerPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about Glen Ellyn history and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	vp.SetContent("Ask about historical places and events in Glen Ellyn, IL.")
	return Model{assistant: assistant, input: ti, viewport: vp, status: "Ready."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := questionBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.thinking {
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.thinking = true
				m.status = "Thinking..."
				m.input.SetValue("")
				return m, ask(m.assistant, q)
			}
		}
	case answerMsg:
		m.thinking = false
		if msg.err != nil {
			m.status = "Sorry, something went wrong answering that."
			return m, nil
		}
		m.status = fmt.Sprintf("Answered %q", msg.question)
		m.viewport.SetContent(renderAnswer(msg.answer))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Glen Ellyn History Bot")
	answer := answerBoxStyle.Render(m.viewport.View())
	input := questionBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func ask(assistant AnswerPort, question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := assistant.Answer(context.Background(), question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func renderAnswer(a service.Answer) string {
	var b strings.Builder
	b.WriteString(a.Text)
	if len(a.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceStyle.Render("Sources:"))
		for _, s := range a.Sources {
			title := s.Chunk.Metadata.Title
			if title == "" {
				title = s.Chunk.ID
			}
			b.WriteString(sourceStyle.Render(fmt.Sprintf("\n  - %s (score %.3f)", title, s.Score)))
		}
	}
	return b.String()
}

var (
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	sourceStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
