// Package tui renders a running session in the terminal with
// bubbletea. The structure and projectile are drawn on a rune canvas;
// a stats panel and a height sparkline sit beside it. The view drives
// itself with a scripted drag gesture so the collapse can be watched
// without a mouse.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/topple/internal/game"
	"github.com/san-kum/topple/internal/geom"
	"github.com/san-kum/topple/internal/input"
)

const (
	canvasW   = 96
	canvasH   = 26
	frameRate = 30
	historyN  = 120
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// script phases for the automated drag gesture.
const (
	scriptIdle = iota
	scriptDragging
	scriptDone
)

// Model runs a headless session against a rune-canvas visual.
type Model struct {
	session *game.Session
	canvas  *Canvas

	heights []float64
	phase   int
	wait    int
	dragDst geom.Vec2
	dragT   int
	shots   int
}

func NewModel(session *game.Session, canvas *Canvas) Model {
	session.SetViewport(canvasW, canvasH)
	return Model{session: session, canvas: canvas}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case TickMsg:
		m.autoplay()
		m.session.Tick(1.0 / frameRate)
		m.observe()
		return m, tick()
	}
	return m, nil
}

// autoplay feeds scripted pointer events through the same mapper a
// real pointer would use.
func (m *Model) autoplay() {
	l := m.session.Launcher()
	switch m.phase {
	case scriptIdle:
		if l.State() != game.Ready {
			return
		}
		m.wait++
		if m.wait < frameRate {
			return
		}
		m.wait = 0
		shot := l.Shot()
		if shot == nil {
			return
		}
		pos, _, err := m.session.World().Pose(shot.Body)
		if err != nil {
			return
		}
		m.pointer(input.PointerDown, pos)
		// Alternate between a flat shot and a lob.
		if m.shots%2 == 0 {
			m.dragDst = l.Origin().Add(geom.V(-3.0, -0.8))
		} else {
			m.dragDst = l.Origin().Add(geom.V(-2.4, -2.2))
		}
		m.dragT = 0
		m.phase = scriptDragging
	case scriptDragging:
		m.dragT++
		f := float64(m.dragT) / 15.0
		if f >= 1 {
			m.pointer(input.PointerMove, m.dragDst)
			m.pointer(input.PointerUp, m.dragDst)
			m.shots++
			m.phase = scriptIdle
			return
		}
		from := m.session.Launcher().Origin()
		at := from.Add(m.dragDst.Sub(from).Scale(f))
		m.pointer(input.PointerMove, at)
	}
}

func (m *Model) pointer(t input.PointerType, world geom.Vec2) {
	ev := input.PointerEvent{Type: t, Screen: m.session.Mapper().ToScreen(world)}
	m.session.HandlePointer(&ev)
}

func (m *Model) observe() {
	h := 0.0
	if shot := m.session.Launcher().Shot(); shot != nil {
		if pos, _, err := m.session.World().Pose(shot.Body); err == nil {
			h = pos.Y - m.session.Launcher().Origin().Y
		}
	}
	m.heights = append(m.heights, h)
	if len(m.heights) > historyN {
		m.heights = m.heights[len(m.heights)-historyN:]
	}
}

func (m Model) View() string {
	canvas := canvasStyle.Render(m.canvas.Render())

	l := m.session.Launcher()
	rows := []string{
		headerStyle.Render("topple"),
		statRow("state", l.State().String()),
		statRow("objects", fmt.Sprintf("%d", m.session.Registry().Len())),
		statRow("bodies", fmt.Sprintf("%d", m.session.World().BodyCount())),
		statRow("joints", fmt.Sprintf("%d", m.session.World().JointCount())),
		statRow("shots", fmt.Sprintf("%d", m.shots)),
	}
	if len(m.heights) > 2 {
		graph := asciigraph.Plot(m.heights,
			asciigraph.Height(6), asciigraph.Width(32), asciigraph.Caption("shot height"))
		rows = append(rows, graphStyle.Render(graph))
	}
	rows = append(rows, helpStyle.Render("q quit"))
	stats := statsStyle.Render(strings.Join(rows, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, stats)
}

func statRow(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value)
}
