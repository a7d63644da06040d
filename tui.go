package main

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hush/overlay"
)

// TUI message types
type SnapshotMsg struct {
	Snap     overlay.Snapshot
	Mirrored bool
}
type SourceLineMsg struct{ Text string } // where events come from
type DeviceLineMsg struct{ Text string } // microphone device name
type LogMsg struct{ Text string }

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{}, tea.WithAltScreen())
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func logToTUI(format string, args ...interface{}) {
	tuiSend(LogMsg{Text: fmt.Sprintf(format, args...)})
}

type tuiModel struct {
	snap          tuiSnapshot
	sourceLine    string
	deviceLine    string
	lastLog       string
	width, height int
}

type tuiSnapshot struct {
	overlay.Snapshot
	Mirrored bool
}

var (
	styleBarLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleBarHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleState   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleText    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleCopied  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "c":
			if machine != nil {
				machine.CopyText()
			}
		case "esc":
			if machine != nil {
				machine.Close()
			}
		}

	case SnapshotMsg:
		m.snap = tuiSnapshot{Snapshot: msg.Snap, Mirrored: msg.Mirrored}

	case SourceLineMsg:
		m.sourceLine = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case LogMsg:
		m.lastLog = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var lines []string

	if !m.snap.Visible {
		lines = append(lines, styleDim.Render("○ hidden"))
	} else {
		lines = append(lines, styleState.Render("● "+m.snap.State.String()))

		if m.snap.State == overlay.Recording && m.snap.Text == "" {
			lines = append(lines, "", renderLevelBars(m.snap.Levels, m.snap.Mirrored))
		} else {
			lines = append(lines, "")
			wrapWidth := m.width - 4
			if wrapWidth < 10 {
				wrapWidth = 10
			}
			text := m.snap.Text
			if text == "" {
				text = "(no text)"
			}
			textStyle := styleText
			if m.snap.Mirrored {
				textStyle = textStyle.Width(wrapWidth).Align(lipgloss.Right)
			}
			for _, line := range wrapText(text, wrapWidth) {
				lines = append(lines, textStyle.Render(line))
			}
		}

		if m.snap.Copied {
			lines = append(lines, "", styleCopied.Render("✓ copied"))
		}
	}

	lines = append(lines, "")
	if m.sourceLine != "" {
		lines = append(lines, styleDim.Render(m.sourceLine))
	}
	if m.deviceLine != "" {
		lines = append(lines, styleDim.Render(m.deviceLine))
	}
	if m.lastLog != "" {
		lines = append(lines, styleDim.Render(m.lastLog))
	}
	lines = append(lines, "")
	lines = append(lines, styleHelp.Render("c copy · esc close · ctrl+shift+x cancel · ctrl+c quit"))
	lines = append(lines, styleHelp.Render("hush "+version))

	return strings.Join(lines, "\n")
}

var barGlyphs = []rune("▁▂▃▄▅▆▇█")

// renderLevelBars draws the nine level bars on one line, tallest glyph at
// full scale. Mirroring reverses the bar order for RTL scripts.
func renderLevelBars(levels [overlay.RenderBars]float64, mirrored bool) string {
	var b strings.Builder
	for i := 0; i < overlay.RenderBars; i++ {
		idx := i
		if mirrored {
			idx = overlay.RenderBars - 1 - i
		}
		h := overlay.BarHeight(levels[idx])
		g := barGlyphs[int(h*float64(len(barGlyphs)-1)+0.5)]
		style := styleBarLow
		if h > 0.6 {
			style = styleBarHigh
		}
		b.WriteString(style.Render(string(g)))
		if i < overlay.RenderBars-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
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
