package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const asciiLogo = `
╔═══════════════════════════════════════════════════════════╗
║                                                             ║
║   ██████╗ ████████╗ ██████╗ █████╗                         ║
║   ██╔══██╗╚══██╔══╝██╔════╝██╔══██╗                        ║
║   ██████╔╝   ██║   ██║     ███████║                        ║
║   ██╔══██╗   ██║   ██║     ██╔══██║                        ║
║   ██████╔╝   ██║   ╚██████╗██║  ██║                        ║
║   ╚═════╝    ╚═╝    ╚═════╝╚═╝  ╚═╝                         ║
║                                                             ║
║              documentation question-answering              ║
║                                                             ║
╚═══════════════════════════════════════════════════════════╝
`

// model is the terminal chat client's bubbletea state. Unlike the
// teacher's multi-repository browser, btca has a single server-side
// collection: the model drives one SSE stream at a time over HTTP
// instead of holding an in-process app/store.
type model struct {
	styles styles
	client *sseClient

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	isLoading bool
	streaming bool

	provider  string
	llmModel  string
	resources []string

	history  []string
	showLogo bool
}

func initialModel(theme ThemeName, client *sseClient) *model {
	st := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your documentation..."
	ta.Focus()
	ta.Prompt = st.prompt.Render("> ")
	ta.CharLimit = 2000
	ta.SetWidth(60)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	return &model{
		styles:    st,
		client:    client,
		textarea:  ta,
		spinner:   sp,
		isLoading: true,
		showLogo:  true,
		history:   []string{st.ascii.Render(asciiLogo), "", "connecting to btca server..."},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(loadConfigCmd(m.client), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.streaming {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.handleInput(input)
		}

	case configLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendLine(m.styles.error.Render("failed to reach server: " + msg.err.Error()))
			return m, nil
		}
		m.provider = msg.provider
		m.llmModel = msg.model
		m.resources = msg.resources
		m.appendLine(m.styles.success.Render(fmt.Sprintf("connected: %s/%s, resources: %s", m.provider, m.llmModel, strings.Join(m.resources, ", "))))
		m.appendLine("type /help for commands or ask a question directly.")
		return m, nil

	case streamStartedMsg:
		if msg.err != nil {
			m.streaming = false
			m.isLoading = false
			m.appendLine(m.styles.error.Render("failed to start question: " + msg.err.Error()))
			return m, nil
		}
		return m, readNextFrameCmd(msg.frames)

	case nextFrameMsg:
		return m.handleFrame(msg)

	case tea.WindowSizeMsg:
		m.styles.header.Width(msg.Width - 4)
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.textarea.SetWidth(msg.Width - 10)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) handleFrame(msg nextFrameMsg) (tea.Model, tea.Cmd) {
	ev := msg.event
	switch ev.kind {
	case "delta":
		if len(m.history) == 0 {
			m.history = append(m.history, "")
		}
		m.history[len(m.history)-1] += ev.text
		m.viewport.SetContent(strings.Join(m.history, "\n"))
		m.viewport.GotoBottom()
		return m, readNextFrameCmd(msg.frames)

	case "tool":
		m.appendLine(m.styles.command.Render("→ " + ev.tool))
		m.history = append(m.history, "")
		return m, readNextFrameCmd(msg.frames)

	case "done":
		m.isLoading = false
		m.streaming = false
		m.viewport.SetContent(strings.Join(m.history, "\n"))
		m.viewport.GotoBottom()
		return m, nil

	case "error":
		m.isLoading = false
		m.streaming = false
		errText := "unknown error"
		if ev.err != nil {
			errText = ev.err.Error()
		}
		m.appendLine(m.styles.error.Render("⚠ " + errText))
		return m, nil

	case "closed":
		m.isLoading = false
		m.streaming = false
		return m, nil

	default: // "meta" or unrecognized
		return m, readNextFrameCmd(msg.frames)
	}
}

func (m *model) handleInput(input string) tea.Cmd {
	m.appendLine(m.styles.prompt.Render("> ") + input)

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}
	return m.askQuestion(input)
}

func (m *model) handleCommand(input string) tea.Cmd {
	parts := strings.Fields(input)
	command := parts[0]

	switch command {
	case "/help", "/h":
		m.appendLine(m.styles.success.Render("AVAILABLE COMMANDS:") + `

  /help, /h       Show this help message.
  /resources      List the resources the server has configured.
  /exit, /quit    Exit.

  Anything else is sent as a question.`)
		return nil

	case "/resources":
		if len(m.resources) == 0 {
			m.appendLine(m.styles.inactive.Render("no resources configured on the server."))
		} else {
			m.appendLine(m.styles.success.Render("resources: ") + strings.Join(m.resources, ", "))
		}
		return nil

	case "/exit", "/quit":
		return tea.Quit

	default:
		m.appendLine(m.styles.error.Render("unknown command: " + command))
		return nil
	}
}

func (m *model) askQuestion(question string) tea.Cmd {
	m.isLoading = true
	m.streaming = true
	m.history = append(m.history, "", m.styles.command.Render("→ thinking..."), "")
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
	return tea.Batch(m.spinner.Tick, startQuestionCmd(m.client, question, m.resources))
}

func (m *model) appendLine(line string) {
	m.history = append(m.history, "", line)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	var statusParts []string
	if m.provider != "" {
		statusParts = append(statusParts, fmt.Sprintf("%s/%s", m.provider, m.llmModel))
	} else {
		statusParts = append(statusParts, "not connected")
	}
	statusParts = append(statusParts, fmt.Sprintf("resources: %d", len(m.resources)))

	status := m.styles.inactive.Render(strings.Join(statusParts, " │ "))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("working...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			"",
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}
