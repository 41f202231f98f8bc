package viz

import (
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spheresim/internal/game"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	trailCapacity   = 200
	statsWidth      = 50
	orbitStep       = 0.1
)

// Directions indexing Model.hold.
const (
	dirUp = iota
	dirDown
	dirLeft
	dirRight
)

// BuildFunc creates a fresh session. It is called again on reset.
type BuildFunc func() (*game.Session, error)

type TickMsg time.Time

// Model is the live view of a running session.
type Model struct {
	build   BuildFunc
	title   string
	session *game.Session
	sprites []*Sprite
	static  *Wireframe
	cam     *Camera
	canvas  *Canvas

	dt           float64
	fps          int
	stepsPerTick int
	holdTicks    int
	// hold counts the ticks each arrow stays pressed. Terminals only report
	// key presses, so a press holds for a few ticks and repeats extend it.
	hold [4]int

	running  bool
	showHelp bool
	theme    Theme
	st       styles

	heights   []float64
	energy    []float64
	trail     []mgl64.Vec3
	startDist float64
	err       error
}

// NewModel builds the first session. fps is the redraw rate; the session is
// stepped enough times per redraw to stay close to real time.
func NewModel(title string, build BuildFunc, dt float64, fps int) (Model, error) {
	if dt <= 0 {
		return Model{}, fmt.Errorf("dt must be positive, got %f", dt)
	}
	if fps <= 0 {
		fps = 30
	}
	m := Model{
		build:        build,
		title:        title,
		cam:          NewCamera(),
		canvas:       NewCanvas(width, height),
		dt:           dt,
		fps:          fps,
		stepsPerTick: StepsPerTick(fps, dt),
		holdTicks:    max(1, fps/4),
		running:      true,
		theme:        Themes[0],
		st:           newStyles(Themes[0]),
	}
	if err := m.load(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// StepsPerTick is how many steps of dt cover one frame at fps.
func StepsPerTick(fps int, dt float64) int {
	return max(1, int(math.Round(1/float64(fps)/dt)))
}

func (m *Model) load() error {
	s, err := m.build()
	if err != nil {
		return err
	}
	s.Logger = log.New(io.Discard, "", 0)
	m.session = s
	m.sprites = AttachSprites(s)
	m.static = StaticWireframe(s)
	m.heights = make([]float64, 0, historyCapacity)
	m.energy = make([]float64, 0, historyCapacity)
	m.trail = make([]mgl64.Vec3, 0, trailCapacity)
	m.hold = [4]int{}
	m.err = nil
	m.startDist = 0
	m.cam.Follow(Focus(s))
	if p, ok := s.PlayerBody(); ok {
		if s.Goal != nil {
			m.startDist = p.Position().Sub(s.Goal.Region.Center()).Len()
		}
	}
	return nil
}

func (m Model) Session() *game.Session { return m.session }
func (m Model) Running() bool          { return m.running }
func (m Model) Theme() Theme           { return m.theme }
func (m Model) Err() error             { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.load(); err != nil {
				m.err = err
				m.running = false
			}
		case "up", "w":
			m.hold[dirUp] = m.holdTicks
		case "down", "s":
			m.hold[dirDown] = m.holdTicks
		case "left", "a":
			m.hold[dirLeft] = m.holdTicks
		case "right", "d":
			m.hold[dirRight] = m.holdTicks
		case "x":
			m.cam.Orbit(orbitStep, 0)
		case "X":
			m.cam.Orbit(-orbitStep, 0)
		case "y":
			m.cam.Orbit(0, orbitStep)
		case "Y":
			m.cam.Orbit(0, -orbitStep)
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-statsWidth-4)
		h := max(10, msg.Height-4)
		m.canvas = NewCanvas(w, h)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step runs one tick worth of frames.
func (m *Model) step() {
	s := m.session
	s.Input.Up = m.hold[dirUp] > 0
	s.Input.Down = m.hold[dirDown] > 0
	s.Input.Left = m.hold[dirLeft] > 0
	s.Input.Right = m.hold[dirRight] > 0
	for i := 0; i < m.stepsPerTick; i++ {
		if err := s.Frame(m.dt); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	for i := range m.hold {
		if m.hold[i] > 0 {
			m.hold[i]--
		}
	}

	m.energy = appendCapped(m.energy, s.World.KineticEnergy(), historyCapacity)
	if p, ok := s.PlayerBody(); ok {
		m.heights = appendCapped(m.heights, p.Position().Y(), historyCapacity)
		m.trail = append(m.trail, p.Position())
		if len(m.trail) > trailCapacity {
			m.trail = m.trail[1:]
		}
		m.cam.Follow(p.Position())
	} else if len(s.World.Bodies()) > 0 {
		m.heights = appendCapped(m.heights, s.World.Bodies()[0].Position().Y(), historyCapacity)
	}
}

func appendCapped(xs []float64, v float64, capacity int) []float64 {
	xs = append(xs, v)
	if len(xs) > capacity {
		xs = xs[1:]
	}
	return xs
}

func (m *Model) draw() {
	m.canvas.Clear()
	Render3D(m.canvas, m.static, m.cam)
	DrawTrail(m.canvas, m.cam, m.trail)
	DrawSprites(m.canvas, m.cam, m.sprites, playerIndex(m.session))
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.warn.Render("ERROR: " + m.err.Error())
	case m.session.GoalReached():
		return m.st.ok.Render(fmt.Sprintf("GOAL at %.2fs", m.session.GoalTime))
	case !m.running:
		return m.st.warn.Render("PAUSED")
	default:
		return m.st.ok.Render("RUNNING")
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := m.st.canvas.Render(m.canvas.String())

	s := m.session
	var b strings.Builder
	b.WriteString(m.st.header.Render(strings.ToUpper(m.title)) + "\n")
	b.WriteString(m.status() + "\n\n")

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("height"))
		b.WriteString(m.st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		b.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", s.Time))
	row("Frames", fmt.Sprintf("%d", s.Frames))
	row("Bodies", fmt.Sprintf("%d", s.World.Len()))
	row("KE", fmt.Sprintf("%.3f", s.World.KineticEnergy()))
	row("", Sparkline(m.energy, 30))
	if p, ok := s.PlayerBody(); ok {
		pos, vel := p.Position(), p.Velocity
		row("Player", fmt.Sprintf("(%.2f, %.2f, %.2f)", pos.X(), pos.Y(), pos.Z()))
		row("Speed", fmt.Sprintf("%.2f", vel.Len()))
		if s.Goal != nil && m.startDist > 0 {
			d := pos.Sub(s.Goal.Region.Center()).Len()
			row("Goal", ProgressBar(1-d/m.startDist, 20))
		}
	}
	row("Theme", m.theme.Name)

	b.WriteString(m.st.help.Render("─────────────────────\nArrows:Move SP:Pause R:Reset\nX/Y:Orbit +/-:Zoom T:Theme\n?:Help Q:Quit"))
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.st.stats.Render(b.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Arrows/WASD - Push the player       ║
║  Space       - Pause/Resume          ║
║  R           - Rebuild the scene     ║
║  x/X y/Y     - Orbit the camera      ║
║  +/-         - Zoom                  ║
║  T           - Cycle themes          ║
║  ?           - Toggle this help      ║
║  Q           - Quit                  ║
╚══════════════════════════════════════╝`

// RunLive runs the live view until the user quits.
func RunLive(title string, build BuildFunc, dt float64, fps int) error {
	m, err := NewModel(title, build, dt, fps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
