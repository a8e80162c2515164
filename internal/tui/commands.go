package tui

import (
	"fmt"
	"os"
	"os/exec"

	"codeberg.org/genius/server/internal/logger"
	tea "github.com/charmbracelet/bubbletea"
)

const serverPath = "bin/server"

// builds the server when missing and runs it in the background
func startServer() tea.Msg {
	if _, err := os.Stat(serverPath); os.IsNotExist(err) {
		buildCmd := exec.Command("go", "build", "-o", serverPath, "./cmd/server")
		if err := buildCmd.Run(); err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to build server: %w", err)}
		}
	}

	cmd := exec.Command(serverPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	go func() {
		if err := cmd.Run(); err != nil {
			logger.ErrorErr(err, "server error")
		}
	}()

	return ServerStartedMsg{}
}
