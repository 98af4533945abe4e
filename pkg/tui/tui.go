package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-mclib/physics/pkg/collisions"
	"github.com/go-mclib/physics/pkg/physics"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cellStyles = map[rune]lipgloss.Style{
		cellSolid:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		cellFluid:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		cellBody:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		cellSelected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
	}
)

const (
	mapRows     = 14
	maxLogLines = 500
	// how far below a body the status line looks for ground
	groundReach = 32
)

// TUI is an interactive sandbox over a physics world. It owns the tick loop:
// the world is only touched from Update.
type TUI struct {
	session  *Session
	interval time.Duration

	viewport  viewport.Model
	textInput textinput.Model
	logs      []string
	logMutex  sync.Mutex
	ready     bool
	width     int
	height    int
}

type frameMsg time.Time

// New creates a sandbox that ticks w every interval.
func New(w *physics.World, interval time.Duration) *TUI {
	if interval <= 0 {
		interval = physics.TickDuration
	}
	ti := textinput.New()
	ti.Placeholder = "impulse 0 5 0, spawn 0 6 0, pause, step, help..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	s := &Session{World: w}
	if bodies := w.Bodies(); len(bodies) > 0 {
		s.Selected = bodies[0]
	}
	return &TUI{
		session:   s,
		interval:  interval,
		textInput: ti,
		logs:      []string{},
	}
}

func (t *TUI) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, t.nextFrame())
}

func (t *TUI) nextFrame() tea.Cmd {
	return tea.Tick(t.interval, func(now time.Time) tea.Msg { return frameMsg(now) })
}

func (t *TUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return t, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(t.textInput.Value())
			if input != "" {
				t.AddLog(fmt.Sprintf("> %s", input))
				out, err := t.session.Execute(input)
				if err != nil {
					t.AddLog(fmt.Sprintf("Error: %v", err))
				} else if out != "" {
					t.AddLog(out)
				}
				t.textInput.SetValue("")
				t.refreshLogs()
			}
			return t, nil
		}

	case tea.WindowSizeMsg:
		logHeight := max(msg.Height-mapRows-4, 3)
		if !t.ready {
			t.viewport = viewport.New(msg.Width, logHeight)
			t.viewport.SetContent(t.renderLogs())
			t.ready = true
		} else {
			t.viewport.Width = msg.Width
			t.viewport.Height = logHeight
		}
		t.width = msg.Width
		t.height = msg.Height
		t.textInput.Width = msg.Width - 2

	case frameMsg:
		t.advance()
		t.refreshLogs()
		return t, t.nextFrame()
	}

	if t.ready {
		t.viewport, cmd = t.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	t.textInput, cmd = t.textInput.Update(msg)
	cmds = append(cmds, cmd)

	return t, tea.Batch(cmds...)
}

// advance runs one world tick unless paused with no pending steps.
func (t *TUI) advance() {
	s := t.session
	if s.Paused {
		if s.Steps == 0 {
			return
		}
		s.Steps--
	}
	s.World.Tick(float64(t.interval) / float64(time.Millisecond))
	if s.Selected != nil && !slices.Contains(s.World.Bodies(), s.Selected) {
		s.Selected = nil
	}
}

func (t *TUI) View() string {
	if !t.ready {
		return "Initializing..."
	}

	mode := "running"
	if t.session.Paused {
		mode = "paused"
	}
	title := titleStyle.Render(fmt.Sprintf("Physics Sandbox - %s @ %d tps", mode, int(time.Second/t.interval)))

	return fmt.Sprintf(
		"%s\n%s\n%s\n%s\n%s\n%s",
		title,
		t.renderMap(),
		statusStyle.Render(t.status()),
		t.viewport.View(),
		inputStyle.Render("> "+t.textInput.View()),
		helpStyle.Render("Enter: run command • Ctrl+C/Esc: quit"),
	)
}

func (t *TUI) renderMap() string {
	center := mgl64.Vec3{0, float64(mapRows) / 2, 0}
	if b := t.session.Selected; b != nil {
		center = b.AABB.Center()
	}
	grid := Slice(t.session.World, t.session.Selected, center, max(t.width, 1), mapRows)

	var sb strings.Builder
	for r, row := range grid {
		if r > 0 {
			sb.WriteByte('\n')
		}
		// style runs of equal cells together
		for start := 0; start < len(row); {
			end := start
			for end < len(row) && row[end] == row[start] {
				end++
			}
			run := string(row[start:end])
			if style, ok := cellStyles[row[start]]; ok {
				run = style.Render(run)
			}
			sb.WriteString(run)
			start = end
		}
	}
	return sb.String()
}

func (t *TUI) status() string {
	w := t.session.World
	st := w.Stats()
	line := fmt.Sprintf("tick %d | bodies %d (active %d, asleep %d, static %d) | rollbacks %d | faults %d",
		st.Ticks, st.Bodies, st.Integrated, st.Asleep, st.Static, st.RolledBack, st.NumericFaults)

	b := t.session.Selected
	if b == nil {
		return line + " | no body selected"
	}
	p, v := b.Position(), b.Velocity
	line += fmt.Sprintf(" | %s pos (%.2f, %.2f, %.2f) vel (%.2f, %.2f, %.2f) rest %v",
		b, p.X(), p.Y(), p.Z(), v.X(), v.Y(), v.Z(), b.Resting)
	if d, ok := collisions.GroundDistance(w.Solid, b.AABB, groundReach); ok {
		line += fmt.Sprintf(" ground %.2f", d)
	}
	if b.Asleep() {
		line += " zz"
	}
	return line
}

// AddLog adds a log message to the TUI
func (t *TUI) AddLog(msg string) {
	t.logMutex.Lock()
	defer t.logMutex.Unlock()
	t.logs = append(t.logs, strings.Split(msg, "\n")...)

	if len(t.logs) > maxLogLines {
		t.logs = t.logs[len(t.logs)-maxLogLines:]
	}
}

func (t *TUI) refreshLogs() {
	if !t.ready {
		return
	}
	// do not scroll if not at bottom, to prevent flickering
	wasAtBottom := t.viewport.AtBottom()
	t.viewport.SetContent(t.renderLogs())
	if wasAtBottom {
		t.viewport.GotoBottom()
	}
}

func (t *TUI) renderLogs() string {
	t.logMutex.Lock()
	defer t.logMutex.Unlock()
	return strings.Join(t.logs, "\n")
}

// Writer is an io.Writer that appends output to the TUI log pane.
// The world logs from inside Update, so lines are buffered rather than
// sent to the program.
type Writer struct {
	tui *TUI
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (n int, err error) {
	msg := strings.TrimSuffix(string(p), "\n")
	if msg != "" {
		w.tui.AddLog(msg)
	}
	return len(p), nil
}

// Start creates a sandbox program for w, returning the program and a writer for logging
func Start(w *physics.World, interval time.Duration) (*tea.Program, io.Writer) {
	t := New(w, interval)
	p := tea.NewProgram(t, tea.WithAltScreen())
	return p, &Writer{tui: t}
}
