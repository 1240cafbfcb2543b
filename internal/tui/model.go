// Package tui provides the BubbleTea-based terminal volume control.
package tui

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/euxx/volume-grid-sub001/internal/adapter/output"
	"github.com/euxx/volume-grid-sub001/internal/hud"
	"github.com/euxx/volume-grid-sub001/internal/model"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeMain Mode = iota
	ModeDevices
	ModeHelp
)

// Volume steps in segments.
const (
	coarseStep = 1.0
	fineStep   = 0.25
)

// Model is the main TUI model.
type Model struct {
	backend   Backend
	clipboard string

	mode Mode
	help help.Model
	keys KeyMap

	status  output.Status
	devices []model.AudioDevice
	cursor  int
	width   int
	height  int
	ready   bool

	// Status message
	statusMsg string
	statusErr bool
}

// New creates a new TUI model. clipboard overrides clipboard detection.
func New(b Backend, clipboard string) Model {
	return Model{
		backend:   b,
		clipboard: clipboard,
		mode:      ModeMain,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		status:    b.Status(),
		devices:   b.Devices(),
	}
}

// Init starts watching the backend.
func (m Model) Init() tea.Cmd {
	return m.watchForChanges
}

// watchForChanges blocks until the backend publishes something.
func (m Model) watchForChanges() tea.Msg {
	<-m.backend.Changes()
	return refreshMsg{}
}

type refreshMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	what string
	err  error
}

// appliedMsg follows a write once its result has been published.
type appliedMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case refreshMsg:
		m.refresh()
		return m, m.watchForChanges

	case appliedMsg:
		m.refresh()
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Copied " + msg.what + " to clipboard"}
		}
	}

	return m, nil
}

func (m *Model) refresh() {
	m.status = m.backend.Status()
	m.devices = m.backend.Devices()
	if m.cursor >= len(m.devices) {
		m.cursor = max(0, len(m.devices)-1)
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeMain
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	switch m.mode {
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeMain
		}
		return m, nil
	case ModeDevices:
		switch {
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Devices):
			m.mode = ModeMain
			return m, nil
		case key.Matches(msg, m.keys.Next):
			if m.cursor < len(m.devices)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Copy):
			if m.cursor < len(m.devices) {
				return m, m.copyToClipboard("device name", m.devices[m.cursor].Name)
			}
			return m, nil
		}
	}

	return m.handleVolumeKey(msg)
}

// handleVolumeKey handles the keys shared by the main and device views.
func (m Model) handleVolumeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Devices):
		m.mode = ModeDevices
		m.cursor = m.currentIndex()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		return m.setVolume(stepVolume(m.status.Scalar, coarseStep))
	case key.Matches(msg, m.keys.Down):
		return m.setVolume(stepVolume(m.status.Scalar, -coarseStep))
	case key.Matches(msg, m.keys.FineUp):
		return m.setVolume(stepVolume(m.status.Scalar, fineStep))
	case key.Matches(msg, m.keys.FineDown):
		return m.setVolume(stepVolume(m.status.Scalar, -fineStep))
	case key.Matches(msg, m.keys.Max):
		return m.setVolume(1)
	case key.Matches(msg, m.keys.Min):
		return m.setVolume(0)
	case key.Matches(msg, m.keys.Mute):
		if !m.status.Supported {
			return m, unsupported
		}
		muted := !m.status.Muted
		done := m.backend.SetMuted(muted)
		m.status = output.NewStatus(m.status.Device, m.status.Scalar, muted, true, time.Now())
		return m, waitApplied(done)
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyToClipboard("status", m.formatStatus(output.NewPlainFormatter(output.DefaultFormatterOptions())))
	case key.Matches(msg, m.keys.CopyJSON):
		return m, m.copyToClipboard("JSON", m.formatStatus(output.NewJSONFormatter(output.FormatterOptions{Compact: true})))
	}
	return m, nil
}

// setVolume writes scalar and shows it right away. A positive volume unmutes.
func (m Model) setVolume(scalar float64) (tea.Model, tea.Cmd) {
	if !m.status.Supported {
		return m, unsupported
	}
	done := m.backend.SetVolume(scalar)
	muted := m.status.Muted && scalar <= 0
	m.status = output.NewStatus(m.status.Device, scalar, muted, true, time.Now())
	return m, waitApplied(done)
}

func unsupported() tea.Msg {
	return statusMsg{text: "Volume control is not supported on this device", isErr: true}
}

func waitApplied(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return appliedMsg{}
	}
}

// stepVolume moves scalar by delta segments on the quarter segment grid.
// Whole steps snap to whole segments first.
func stepVolume(scalar, delta float64) float64 {
	seg := hud.QuarterSegments(scalar)
	switch {
	case delta == coarseStep:
		seg = math.Floor(seg) + 1
	case delta == -coarseStep:
		seg = math.Ceil(seg) - 1
	default:
		seg += delta
	}
	return model.Clamp(seg / hud.SegmentCount)
}

func (m Model) currentIndex() int {
	for i, d := range m.devices {
		if d.ID == m.status.Device.ID {
			return i
		}
	}
	return 0
}

func (m Model) formatStatus(f output.Formatter) string {
	var buf bytes.Buffer
	if err := f.FormatStatus(&buf, m.status); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(what, text string) tea.Cmd {
	return func() tea.Msg {
		err := copyText(text, m.clipboard)
		return copyResultMsg{what: what, err: err}
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	selectedItem = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// barStyle colors the bar by volume band.
func barStyle(band string) lipgloss.Style {
	switch band {
	case hud.BandMuted.String():
		return dimStyle
	case hud.BandHigh.String():
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	default:
		return keyStyle
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeDevices:
		return m.viewDevices()
	case ModeHelp:
		return m.viewHelp()
	default:
		return m.viewMain()
	}
}

func (m Model) viewMain() string {
	s := titleStyle.Render("Volume") + "\n\n"

	name := m.status.Device.Name
	if name == "" {
		name = "(no output device)"
	}
	s += "  " + name + "\n\n"

	s += "  " + barStyle(m.status.Band).Render(m.status.Bar()) + "  " + m.status.Segments
	switch {
	case !m.status.Supported:
	case m.status.Muted:
		s += dimStyle.Render("  muted")
	default:
		s += dimStyle.Render(fmt.Sprintf("  %d%%", m.status.Percentage))
	}
	s += "\n\n"

	return s + m.footer()
}

func (m Model) viewDevices() string {
	s := titleStyle.Render("Output Devices") + "\n\n"

	if len(m.devices) == 0 {
		s += dimStyle.Render("  no output devices") + "\n"
	}
	for i, d := range m.devices {
		marker := "  "
		if d.ID == m.status.Device.ID {
			marker = "* "
		}
		line := fmt.Sprintf("%s%-6d %s", marker, d.ID, d.Name)
		if i == m.cursor {
			line = selectedItem.Render("> " + line)
		} else {
			line = "  " + line
		}
		s += line + "\n"
	}
	s += "\n"

	return s + m.footer()
}

func (m Model) viewHelp() string {
	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"

	h := m.help
	h.ShowAll = true
	s += h.View(m.keys) + "\n\n"

	s += dimStyle.Render("Press ? or esc to return")
	return s
}

// footer shows the status message, or the short help when there is none.
func (m Model) footer() string {
	if m.statusMsg != "" {
		if m.statusErr {
			return errorStyle.Render(m.statusMsg)
		}
		return m.statusMsg
	}
	return m.help.View(m.keys)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Backend Backend
	// ClipboardCommand overrides clipboard detection, e.g. "wl-copy".
	ClipboardCommand string
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	if opts.Backend == nil {
		return fmt.Errorf("no volume backend provided")
	}

	p := tea.NewProgram(New(opts.Backend, opts.ClipboardCommand), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
