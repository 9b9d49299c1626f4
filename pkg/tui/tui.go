// Package tui provides a terminal user interface for carillon2asm
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/carillon2asm/pkg/converter"
)

// DMG palette
var (
	dmgLight   = lipgloss.Color("#9BBC0F")
	dmgMid     = lipgloss.Color("#8BAC0F")
	dmgDark    = lipgloss.Color("#306230")
	dmgDarkest = lipgloss.Color("#0F380F")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(dmgLight).
			Background(dmgDarkest).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(dmgMid).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(dmgLight).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(dmgMid).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	successStyle = lipgloss.NewStyle().
			Foreground(dmgLight).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(dmgDark).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dmgMid).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateConverting
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	ToFormat    converter.Format
}

var menuItems = []MenuItem{
	{Title: "SAV → CRLMOD", Description: "Convert a savefile to RGBDS music data", ToFormat: converter.FormatModule},
	{Title: "SAV → MIDI", Description: "Export the song order as a MIDI file", ToFormat: converter.FormatMIDI},
	{Title: "SAV → WAV", Description: "Export defined samples as WAV files", ToFormat: converter.FormatWAV},
	{Title: "Exit", Description: "Exit the application"},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	outputFiles  []string
	warnings     []converter.Warning
	conversion   MenuItem
	err          error
	width        int
	height       int
}

// conversionDoneMsg signals conversion completion
type conversionDoneMsg struct {
	outputFiles []string
	warnings    []converter.Warning
	err         error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".sav"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(dmgLight)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateConverting
			return m, tea.Batch(m.spinner.Tick, m.performConversion())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case conversionDoneMsg:
		m.state = StateResult
		m.outputFiles = msg.outputFiles
		m.warnings = msg.warnings
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.conversion = menuItems[m.menuIndex]
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.outputFiles = nil
		m.warnings = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performConversion() tea.Cmd {
	path := m.selectedFile
	format := m.conversion.ToFormat
	return func() tea.Msg {
		return convert(path, format)
	}
}

// convert runs one menu action against a savefile
func convert(path string, format converter.Format) conversionDoneMsg {
	conv := converter.New()
	src := converter.Source{Sav: path}

	switch format {
	case converter.FormatModule:
		output := converter.DefaultOutputPath(path, converter.ModuleExt)
		res, err := conv.ConvertFile(src, output)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		return conversionDoneMsg{outputFiles: []string{output}, warnings: res.Warnings}

	case converter.FormatMIDI:
		song, err := conv.Load(src)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		output := converter.DefaultOutputPath(path, ".mid")
		if err := conv.WriteMIDIFile(song, output); err != nil {
			return conversionDoneMsg{err: err}
		}
		return conversionDoneMsg{outputFiles: []string{output}, warnings: song.Warnings}

	case converter.FormatWAV:
		song, err := conv.Load(src)
		if err != nil {
			return conversionDoneMsg{err: err}
		}
		written, err := converter.WriteSampleWAVs(song, path)
		return conversionDoneMsg{outputFiles: written, warnings: song.Warnings, err: err}
	}
	return conversionDoneMsg{err: fmt.Errorf("unsupported output format %q", format)}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateConverting:
		s.WriteString(m.viewConverting())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT CONVERSION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(dmgMid).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT SAV FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewConverting() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" CONVERTING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Converting %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  sav → %s", m.conversion.ToFormat)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Conversion failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Conversion complete!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Input:  %s\n", filepath.Base(m.selectedFile)))
		if len(m.outputFiles) == 0 {
			s.WriteString("Output: (nothing to write)")
		}
		for _, out := range m.outputFiles {
			s.WriteString(fmt.Sprintf("Output: %s\n", filepath.Base(out)))
		}
	}

	for _, w := range m.warnings {
		s.WriteString("\n")
		s.WriteString(warnStyle.Render("! " + w.Message))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   ___   _   ___ ___ _    _    ___  _  _
  / __| /_\ | _ \_ _| |  | |  / _ \| \| |
 | (__ / _ \|   /| || |__| |_| (_) | .' |
  \___/_/ \_\_|_\___|____|____\___/|_|\_|
`
	return lipgloss.NewStyle().Foreground(dmgLight).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
