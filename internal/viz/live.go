package viz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/polymd/internal/md"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	tickRate        = time.Second / 30
)

type TickMsg time.Time

type LiveConfig struct {
	N            int
	Params       md.Params
	Seed         int64
	StepsPerTick int
	Workers      int
}

// Live integrates a chain and draws it on every tick.
type Live struct {
	cfg     LiveConfig
	params  md.Params
	engine  *md.Engine
	noise   *rand.Rand
	x       []r2.Vec
	step    int
	running bool
	err     error
	rg      []float64
	canvas  *Canvas
}

func NewLive(cfg LiveConfig) (*Live, error) {
	if cfg.StepsPerTick <= 0 {
		cfg.StepsPerTick = 50
	}
	l := &Live{
		cfg:    cfg,
		canvas: NewCanvas(width, height),
	}
	if err := l.reset(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Live) reset() error {
	l.params = l.cfg.Params
	l.noise = rand.New(rand.NewSource(l.cfg.Seed))
	if err := l.rebuild(); err != nil {
		return err
	}
	l.x = md.InitialConfiguration(l.params.MinSep, l.cfg.N)
	l.step = 0
	l.err = nil
	l.running = true
	l.rg = l.rg[:0]
	return nil
}

// rebuild swaps the engine after a parameter change. The noise stream
// continues.
func (l *Live) rebuild() error {
	var opts []md.Option
	if l.cfg.Workers > 1 {
		opts = append(opts, md.WithWorkers(l.cfg.Workers))
	}
	eng, err := md.NewEngine(l.cfg.N, l.params, l.noise, opts...)
	if err != nil {
		return err
	}
	l.engine = eng
	return nil
}

func (l *Live) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return l, tea.Quit
		case " ":
			l.running = !l.running
		case "r":
			if err := l.reset(); err != nil {
				l.err = err
			}
		case "up", "k":
			l.setTemperature(l.params.Temperature * 1.1)
		case "down", "j":
			l.setTemperature(l.params.Temperature * 0.9)
		}
	case TickMsg:
		if l.running && l.err == nil {
			l.advance()
		}
		return l, tick()
	}
	return l, nil
}

func (l *Live) setTemperature(t float64) {
	if t == 0 {
		t = 0.01
	}
	prev := l.params.Temperature
	l.params.Temperature = t
	if err := l.rebuild(); err != nil {
		l.params.Temperature = prev
		l.err = err
	}
}

func (l *Live) advance() {
	for i := 0; i < l.cfg.StepsPerTick; i++ {
		st, err := l.engine.Step(l.x)
		if err != nil {
			l.err = err
			return
		}
		if !md.IsFinite(st.Positions) {
			l.err = fmt.Errorf("step %d: non-finite positions", l.step)
			return
		}
		l.x = st.Positions
		l.step++
	}
	l.rg = append(l.rg, md.RadiusOfGyration(l.x))
	if len(l.rg) > historyCapacity {
		l.rg = l.rg[1:]
	}
}

func (l *Live) View() string {
	l.canvas.Clear()
	l.canvas.DrawChain(l.x, DefaultWindow)
	canvasView := canvasStyle.Render(l.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("POLYMER N=%d", l.cfg.N)) + "\n")
	switch {
	case l.err != nil:
		s.WriteString(StatusFailed.Render("FAILED") + "\n" + valueStyle.Render(l.err.Error()) + "\n\n")
	case l.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(l.rg) > 1 {
		chart := asciigraph.Plot(l.rg, asciigraph.Height(5), asciigraph.Width(34), asciigraph.Caption("Rg"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	rg := 0.0
	if len(l.rg) > 0 {
		rg = l.rg[len(l.rg)-1]
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", l.step))
	row("Rg", fmt.Sprintf("%.4f", rg))
	row("Rg (rms)", fmt.Sprintf("%.4f", md.RadiusOfGyrationRMS(l.x)))
	row("Bond", fmt.Sprintf("%.4f", md.MeanBondLength(l.x)))
	row("Temperature", fmt.Sprintf("%.4f", l.params.Temperature))
	row("Epsilon LJ", fmt.Sprintf("%.3f", l.params.EpsilonLJ))

	s.WriteString(helpStyle.Render("─────────────────────\nSP:Pause R:Reset Q:Quit\n↑↓:Temperature"))
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}
