package main

import (
	"fmt"
	"os"

	"codeberg.org/genius/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	env := os.Getenv("GENIUS_ENV")

	if env == "" {
		env = "development"
	}

	client := tui.NewClient(os.Getenv("GENIUS_API_ENDPOINT"), os.Getenv("GENIUS_TOKEN"))

	app := tui.NewApp(env, client)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running genius: %v\n", err)
		os.Exit(1)
	}
}
