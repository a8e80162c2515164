package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func NewApp(env string, client *Client) *Model {
	return &Model{
		state:   StateWelcome,
		env:     env,
		welcome: NewWelcome(env),
		editor:  NewEditor(client),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// only quit from welcome screen, the editor goes back to it
			if m.state == StateWelcome {
				return m, tea.Quit
			}

			m.state = StateWelcome
			return m, nil
		}

		// any key dismisses an error
		if m.err != nil {
			m.err = nil
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// the editor keeps its size while hidden
		m.editor, _ = m.editor.Update(msg)
		return m, nil

	case ErrorMsg:
		m.err = msg.err
		return m, nil

	case EnterEditorMsg:
		m.state = StateEditor
		return m, m.editor.Init()
	}

	switch m.state {
	case StateWelcome:
		return m.updateWelcome(msg)

	case StateEditor:
		return m.updateEditor(msg)

	default:
		return m, nil
	}
}

func (m *Model) View() string {
	if m.err != nil {
		return errorView(m.err)
	}

	switch m.state {
	case StateWelcome:
		return m.welcome.View()

	case StateEditor:
		return m.editor.View()

	default:
		return "Unknown state"
	}
}

func (m *Model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.welcome, cmd = m.welcome.Update(msg)

	return m, cmd
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	return m, cmd
}

func errorView(err error) string {
	return fmt.Sprintf("\n  Error: %v\n\n  Press any key to continue, Ctrl+C to exit\n", err)
}
