package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	noticeUpgrade = "Free trial has expired. Upgrade to pro to keep generating."
	noticeFailure = "Something went wrong."

	defaultWidth  = 80
	defaultHeight = 24

	// header, input box, status line and spacing
	chromeHeight = 8
)

var placeholders = map[Mode]string{
	ModeChat:  "ask anything...",
	ModeCode:  "describe the code you need...",
	ModeImage: "describe an image...",
}

// returns a new prompt editor in chat mode
func NewEditor(client *Client) *EditorModel {
	ti := textinput.New()
	ti.Placeholder = placeholders[ModeChat]
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = defaultWidth - 10
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorLightGray)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorWhite)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPurple)

	m := &EditorModel{
		client:   client,
		mode:     ModeChat,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(defaultWidth-4, defaultHeight-chromeHeight),
		width:    defaultWidth,
		height:   defaultHeight,
	}

	m.renderer = newRenderer(defaultWidth - 8)

	return m
}

func (m *EditorModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *EditorModel) Update(msg tea.Msg) (*EditorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// input is disabled while a request is in flight
		if m.isFetching {
			return m, nil
		}

		switch msg.String() {
		case "enter":
			return m.submit()

		case "ctrl+l":
			m.reset()
			return m, nil
		}

	case ReplyMsg:
		m.finish()
		m.history = append(m.history, msg.reply)
		m.appendTranscript(m.renderMarkdown(msg.reply.Content))
		return m, nil

	case ImagesMsg:
		m.finish()

		lines := make([]string, 0, len(msg.images))
		for _, img := range msg.images {
			lines = append(lines, "  "+img.URL)
		}

		m.appendTranscript(successStyle.Render("images:") + "\n" + strings.Join(lines, "\n"))
		return m, nil

	case UsageMsg:
		m.finish()
		m.notice = formatUsage(msg.usage)
		return m, nil

	case RequestErrorMsg:
		m.finish()

		// drop the unanswered prompt so a retry doesn't send it twice
		if n := len(m.history); n > 0 && m.history[n-1].Role == "user" {
			m.history = m.history[:n-1]
		}

		if errors.Is(msg.err, ErrLimitExceeded) {
			m.notice = noticeUpgrade
		} else {
			m.notice = noticeFailure
		}

		return m, nil

	case spinner.TickMsg:
		if !m.isFetching {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 10
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.renderer = newRenderer(msg.Width - 8)
		return m, nil
	}

	var inputCmd, viewportCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewportCmd = m.viewport.Update(msg)

	return m, tea.Batch(inputCmd, viewportCmd)
}

// handles a slash command or sends the prompt for the current mode
func (m *EditorModel) submit() (*EditorModel, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.notice = ""

	if strings.HasPrefix(value, "/") {
		return m.command(value)
	}

	m.appendTranscript(promptStyle.Render("you: ") + value)

	switch m.mode {
	case ModeImage:
		return m, m.start(m.client.GenerateImagesCmd(value))

	default:
		m.history = append(m.history, Message{Role: "user", Content: value})

		messages := make([]Message, len(m.history))
		copy(messages, m.history)

		return m, m.start(m.client.CompleteCmd(m.mode, messages))
	}
}

func (m *EditorModel) command(value string) (*EditorModel, tea.Cmd) {
	switch value {
	case "/chat":
		m.setMode(ModeChat)
	case "/code":
		m.setMode(ModeCode)
	case "/image":
		m.setMode(ModeImage)
	case "/usage":
		return m, m.start(m.client.UsageCmd())
	case "/clear":
		m.reset()
	default:
		m.notice = fmt.Sprintf("unknown command: %s", value)
	}

	return m, nil
}

func (m *EditorModel) setMode(mode Mode) {
	if m.mode != mode {
		m.history = nil
	}

	m.mode = mode
	m.input.Placeholder = placeholders[mode]
	m.notice = fmt.Sprintf("switched to %s mode", mode)
}

func (m *EditorModel) start(cmd tea.Cmd) tea.Cmd {
	m.isFetching = true
	m.input.Blur()

	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *EditorModel) finish() {
	m.isFetching = false
	m.input.Focus()
}

func (m *EditorModel) reset() {
	m.history = nil
	m.transcript = nil
	m.notice = ""
	m.input.SetValue("")
	m.viewport.SetContent("")
}

func (m *EditorModel) appendTranscript(entry string) {
	m.transcript = append(m.transcript, entry)
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *EditorModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}

	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimSpace(out)
}

func (m *EditorModel) View() string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorWhite).
		Render(strings.ToUpper(string(m.mode)) + " MODE")

	help := lipgloss.NewStyle().
		Foreground(colorGray).
		Render("[/chat /code /image /usage /clear] [Ctrl+C: Back]")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
		header,
		strings.Repeat(" ", max(0, m.width-lipgloss.Width(header)-lipgloss.Width(help)-2)),
		help,
	))
	b.WriteString("\n\n")

	if len(m.transcript) == 0 {
		b.WriteString(infoStyle.Render("ready! type a prompt below and press enter."))
	} else {
		b.WriteString(m.viewport.View())
	}

	b.WriteString("\n\n")

	b.WriteString(borderStyle.
		Width(m.width - 4).
		Padding(0, 1).
		Render(m.input.View()))
	b.WriteString("\n")

	switch {
	case m.isFetching:
		b.WriteString(m.spinner.View() + infoStyle.Render(" generating..."))
	case m.notice == noticeUpgrade || m.notice == noticeFailure:
		b.WriteString(errorStyle.Render(m.notice))
	case m.notice != "":
		b.WriteString(infoStyle.Render(m.notice))
	}

	return b.String()
}

func formatUsage(u Usage) string {
	if u.IsPro {
		return fmt.Sprintf("pro subscription, %d calls made", u.Count)
	}

	return fmt.Sprintf("%d / %d free generations used, %d remaining", u.Count, u.Limit, u.Remaining)
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return nil
	}

	return r
}
