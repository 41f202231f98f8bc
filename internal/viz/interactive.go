package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/game"
	"github.com/san-kum/spheresim/internal/scene"
)

var presetInfo = map[string]string{
	"drop":    "one ball onto the ground",
	"collide": "head-on pair",
	"stack":   "column of resting balls",
	"pile":    "random heap from a seed",
	"rain":    "a ball drops in every half second",
	"level":   "steer the player across the mesh",
}

const (
	stateMenu = iota
	stateSim
)

// picker lists the presets and hands the chosen one to the live view.
type picker struct {
	state   int
	cursor  int
	presets []string
	dt      float64
	fps     int
	err     error
	live    Model
}

func NewInteractiveApp(dt float64, fps int) *picker {
	return &picker{
		state:   stateMenu,
		presets: config.ListPresets(),
		dt:      dt,
		fps:     fps,
	}
}

// PresetBuilder rebuilds the named preset on every call.
func PresetBuilder(name string) BuildFunc {
	return func() (*game.Session, error) {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return nil, err
		}
		return scene.Build(cfg)
	}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "m" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p picker) start() (picker, tea.Cmd) {
	name := p.presets[p.cursor]
	dt := p.dt
	if dt <= 0 {
		cfg, err := config.GetPreset(name)
		if err != nil {
			p.err = err
			return p, nil
		}
		dt = cfg.Dt
	}
	live, err := NewModel(name, PresetBuilder(name), dt, p.fps)
	if err != nil {
		p.err = err
		return p, nil
	}
	p.err = nil
	p.live = live
	p.state = stateSim
	return p, live.Init()
}

func (p picker) View() string {
	if p.state == stateSim {
		return p.live.View() + "\n" + p.live.st.help.Render("M:Menu")
	}

	st := newStyles(Themes[0])
	var b strings.Builder
	b.WriteString(st.header.Render("SPHERESIM") + "\n")
	for i, name := range p.presets {
		line := fmt.Sprintf("%-10s %s", name, presetInfo[name])
		if i == p.cursor {
			b.WriteString(st.pick.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + st.value.Render(line) + "\n")
		}
	}
	if p.err != nil {
		b.WriteString("\n" + st.warn.Render(p.err.Error()) + "\n")
	}
	b.WriteString(st.help.Render("↑↓:Select Enter:Start Q:Quit"))
	return b.String()
}

// RunInteractive opens the preset menu.
func RunInteractive(dt float64, fps int) error {
	_, err := tea.NewProgram(NewInteractiveApp(dt, fps), tea.WithAltScreen()).Run()
	return err
}
