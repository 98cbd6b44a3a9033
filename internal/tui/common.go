// Package tui holds Bubble Tea models and lipgloss renderers for footprint's
// interactive and styled terminal output.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewState is the screen a model is showing.
type ViewState int

const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateQuitting
	ViewStateError
)

const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keySlash  = "/"
	keyS      = "s"
	keyAccept = "a"
	keyReject = "r"

	defaultWidth  = 100
	defaultHeight = 24
	minHeight     = 3

	filterInputCharLimit = 64
	filterInputWidth     = 40

	errSelectedOutOfBounds = "Error: selected recommendation is out of range\n"
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	majorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	smallStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("22"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Italic(true)
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("35")).
			Padding(0, 1)
)

// LoadingState wraps a spinner shown while data loads.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState returns a spinner with a default message.
func NewLoadingState() *LoadingState {
	return &LoadingState{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(statusStyle)),
		message: "Loading recommendations...",
	}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// RenderLoading renders the spinner line.
func RenderLoading(l *LoadingState) string {
	if l == nil {
		return ""
	}
	return l.spinner.View() + " " + l.message + "\n"
}

// OutputMode is how table output is presented.
type OutputMode int

const (
	// OutputModePlain writes unstyled tables, for pipes and files.
	OutputModePlain OutputMode = iota
	// OutputModeStyled adds lipgloss styling on a terminal.
	OutputModeStyled
	// OutputModeInteractive runs a Bubble Tea program.
	OutputModeInteractive
)

// DetectOutputMode picks the presentation for table output. Interactive mode
// needs a terminal; without one the request degrades to plain output.
func DetectOutputMode(interactive, noColor, isTTY bool) OutputMode {
	switch {
	case !isTTY:
		return OutputModePlain
	case interactive:
		return OutputModeInteractive
	case noColor:
		return OutputModePlain
	default:
		return OutputModeStyled
	}
}
