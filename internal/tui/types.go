package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// represents the current state of the TUI
type AppState int

const (
	StateWelcome AppState = iota
	StateEditor
)

// which route the editor sends prompts to
type Mode string

const (
	ModeChat  Mode = "chat"
	ModeCode  Mode = "code"
	ModeImage Mode = "image"
)

// main TUI application model
type Model struct {
	state   AppState
	env     string
	width   int
	height  int
	err     error
	welcome *Welcome
	editor  *EditorModel
}

// sent when an error occurs
type ErrorMsg struct {
	err error
}

// sent to transition to the editor state
type EnterEditorMsg struct{}

// sent when the server started from the welcome screen is running
type ServerStartedMsg struct{}

// one turn of the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Image struct {
	URL string `json:"url"`
}

type Usage struct {
	Count     int  `json:"count"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
	IsPro     bool `json:"is_pro"`
}

// prompt editor and transcript
type EditorModel struct {
	client     *Client
	mode       Mode
	input      textinput.Model
	viewport   viewport.Model
	spinner    spinner.Model
	renderer   *glamour.TermRenderer
	width      int
	height     int
	isFetching bool
	notice     string

	// sent with each chat or code request, reset when the mode changes
	history []Message

	// rendered transcript shown in the viewport
	transcript []string
}

// sent when a chat or code request completes
type ReplyMsg struct {
	mode  Mode
	reply Message
}

// sent when an image request completes
type ImagesMsg struct {
	images []Image
}

// sent when the usage counter is fetched
type UsageMsg struct {
	usage Usage
}

// sent when a request fails
type RequestErrorMsg struct {
	err error
}

// welcome screen model
type Welcome struct {
	env      string
	input    string
	commands []Command
}

// represents an available TUI command
type Command struct {
	Name        string
	Description string
	Available   bool
}
