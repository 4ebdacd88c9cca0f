package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragdocs/internal/domain"
	"ragdocs/internal/service"
	"ragdocs/internal/textutil"
)

// AssistantPort is the TUI-facing subset of the chat service.
type AssistantPort interface {
	Ask(ctx context.Context, history []domain.ChatMessage, question string) (*service.Answer, error)
}

// answerMsg carries the result of an asynchronous Ask.
type answerMsg struct {
	question string
	answer   *service.Answer
	err      error
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	ctx       context.Context
	assistant AssistantPort
	input     textinput.Model
	viewport  viewport.Model
	history   []domain.ChatMessage
	sources   []domain.SearchResult
	summary   string
	status    string
	cursor    int
	ready     bool
	pending   bool
	lastQuery string
}

// New creates a new TUI model instance.
func New(ctx context.Context, assistant AssistantPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:       ctx,
		assistant: assistant,
		input:     ti,
		viewport:  vp,
		summary:   summary,
		status:    "Ready. Up/Down browse sources, Ctrl+C quits.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil
	case answerMsg:
		m.pending = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.refresh()
			return m, nil
		}
		m.history = append(m.history,
			domain.ChatMessage{Role: domain.RoleUser, Content: msg.question},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: msg.answer.Content},
		)
		m.sources = msg.answer.Sources
		m.cursor = 0
		m.lastQuery = msg.question
		if len(m.sources) == 0 {
			m.status = "Answered without documentation."
		} else {
			m.status = fmt.Sprintf("Answered from %d sources.", len(m.sources))
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending {
				return m, nil
			}
			m.pending = true
			m.input.SetValue("")
			m.status = "Thinking..."
			return m, m.ask(q)
		case "down":
			if len(m.sources) > 0 {
				m.cursor = (m.cursor + 1) % len(m.sources)
				m.refresh()
				return m, nil
			}
		case "up":
			if len(m.sources) > 0 {
				m.cursor = (m.cursor - 1 + len(m.sources)) % len(m.sources)
				m.refresh()
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the question off the update loop. The history slice is copied so
// later turns cannot race with the request.
func (m Model) ask(question string) tea.Cmd {
	history := append([]domain.ChatMessage(nil), m.history...)
	assistant, ctx := m.assistant, m.ctx
	return func() tea.Msg {
		answer, err := assistant.Ask(ctx, history, question)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("RAG Docs Assistant")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderConversation() + "\n\n" + m.renderCurrentSource())
}

func (m Model) renderConversation() string {
	if len(m.history) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for i, msg := range m.history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == domain.RoleUser {
			b.WriteString(userStyle.Render("You: "))
		} else {
			b.WriteString(assistantStyle.Render("Assistant: "))
		}
		b.WriteString(msg.Content)
	}
	return b.String()
}

func (m Model) renderCurrentSource() string {
	if len(m.sources) == 0 {
		return ""
	}
	r := m.sources[m.cursor]
	title := fmt.Sprintf("Source %d/%d  %s #%d  score=%.3f", m.cursor+1, len(m.sources), r.Chunk.Source, r.Chunk.Position, r.Score)
	return sourceTitleStyle.Render(title) + "\n" + highlightBestSentence(r.Chunk.Text, m.lastQuery)
}

var (
	resultBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	userStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	sourceTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Underline(true)
)

// highlightBestSentence renders text with the sentence sharing the most
// words with query emphasised.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := textutil.Sentences(text)
	qTokens := textutil.TokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := bestSentence(sentences, qTokens)
	out := make([]string, len(sentences))
	for i, sent := range sentences {
		if i == bestIdx {
			out[i] = highlightStyle.Render(sent)
		} else {
			out[i] = sent
		}
	}
	return strings.Join(out, " ")
}

// bestSentence returns the index of the first sentence with the highest
// overlap, or 0.
func bestSentence(sentences []string, query map[string]struct{}) int {
	bestIdx, bestScore := 0, -1
	for i, s := range sentences {
		if score := textutil.Overlap(query, s); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	return bestIdx
}
