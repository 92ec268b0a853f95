package main

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vallet/gui"
	"vallet/uistate"
)

type modeMsg struct{ mode uistate.Mode }
type sizeMsg struct{ size uistate.Size }
type visibleMsg struct{ visible bool }
type listeningMsg struct{ on bool }
type noticeMsg struct{ text string }
type transcriptionMsg struct{ text string }
type clearQueryMsg struct{}
type tickMsg time.Time

// tuiActions are the key bindings' targets.
type tuiActions struct {
	post   func(uistate.Event) bool
	toggle func()
	show   func()
}

type tuiModel struct {
	actions   tuiActions
	hotkeys   string
	mode      uistate.Mode
	size      uistate.Size
	visible   bool
	listening bool
	started   time.Time
	elapsed   time.Duration
	notice    string
	lastText  string
	msgCount  int
	width     int
	height    int
}

func newTUIModel(actions tuiActions, hotkeys string) tuiModel {
	return tuiModel{
		actions: actions,
		hotkeys: hotkeys,
		mode:    uistate.ModeLauncher,
		size:    uistate.SizeLauncher,
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			m.actions.post(uistate.Escape())
		case "a":
			m.actions.post(uistate.OpenAdmin())
		case "x":
			m.actions.post(uistate.Hide())
		case "r":
			m.actions.toggle()
		case "s":
			m.actions.show()
		}

	case tickMsg:
		if m.listening {
			m.elapsed = time.Since(m.started)
		}
		return m, tuiTick()

	case modeMsg:
		m.mode = msg.mode
	case sizeMsg:
		m.size = msg.size
	case visibleMsg:
		m.visible = msg.visible
	case listeningMsg:
		if msg.on && !m.listening {
			m.started = time.Now()
			m.elapsed = 0
		}
		m.listening = msg.on
	case noticeMsg:
		m.notice = msg.text
	case clearQueryMsg:
		m.notice = ""
	case transcriptionMsg:
		m.msgCount++
		m.lastText = msg.text
	}
	return m, nil
}

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	windowStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
)

// windowCells scales the window's pixel size down to terminal cells.
func windowCells(s uistate.Size, maxW, maxH int) (int, int) {
	w, h := gui.PixelSize(s, runtime.GOOS)
	cols, rows := int(w/10), int(h/20)
	if maxW > 2 {
		cols = min(cols, maxW-2)
	}
	if maxH > 2 {
		rows = min(rows, maxH-2)
	}
	return max(cols, 10), max(rows, 1)
}

func (m tuiModel) status() string {
	switch {
	case m.listening:
		return recStyle.Render(fmt.Sprintf("● REC %.1fs", m.elapsed.Seconds()))
	case m.mode == uistate.ModeRecording:
		return dimStyle.Render("◌ processing")
	default:
		return dimStyle.Render("○ " + m.mode.String())
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var lines []string
	if !m.visible {
		lines = append(lines, dimStyle.Render("window hidden (s to show)"))
	} else {
		cols, rows := windowCells(m.size, m.width, m.height-6)
		var body strings.Builder
		body.WriteString(m.status() + "\n")
		if m.notice != "" {
			body.WriteString(warnStyle.Render("⚠ "+m.notice) + "\n")
		}
		if m.lastText != "" && m.mode != uistate.ModeRecording {
			body.WriteString("\n" + dimStyle.Render(fmt.Sprintf("Last transcription (#%d)", m.msgCount)) + "\n")
			for _, l := range wrapText(m.lastText, cols-2) {
				body.WriteString(textStyle.Render(l) + "\n")
			}
		}
		lines = append(lines, windowStyle.Width(cols).Height(rows).Render(strings.TrimRight(body.String(), "\n")))
	}

	lines = append(lines, "")
	lines = append(lines, helpStyle.Render(m.hotkeys))
	lines = append(lines, helpStyle.Render("esc back/hide · a admin · r record · s show · x hide · q quit"))
	lines = append(lines, helpStyle.Render("vallet "+version))
	return strings.Join(lines, "\n")
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}

// tuiView forwards host calls to the running program.
type tuiView struct {
	p *tea.Program
}

func newTUIView(actions tuiActions, hotkeys string) *tuiView {
	return &tuiView{p: tea.NewProgram(newTUIModel(actions, hotkeys), tea.WithAltScreen())}
}

func (v *tuiView) Resize(s uistate.Size)     { v.p.Send(sizeMsg{s}) }
func (v *tuiView) Hide()                     { v.p.Send(visibleMsg{false}) }
func (v *tuiView) ClearQuery()               { v.p.Send(clearQueryMsg{}) }
func (v *tuiView) Show()                     { v.p.Send(visibleMsg{true}) }
func (v *tuiView) SetMode(m uistate.Mode)    { v.p.Send(modeMsg{m}) }
func (v *tuiView) SetListening(on bool)      { v.p.Send(listeningMsg{on}) }
func (v *tuiView) Notice(text string)        { v.p.Send(noticeMsg{text}) }
func (v *tuiView) Transcription(text string) { v.p.Send(transcriptionMsg{text}) }
