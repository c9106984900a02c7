package viz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/evoimg/internal/evo"
)

const historyCapacity = 600

// GenerationMsg carries one generation's summary and a copy of its best grid.
type GenerationMsg struct {
	Stats evo.GenerationStats
	Best  evo.Grid
}

// DoneMsg is sent once the engine returns.
type DoneMsg struct {
	Result *evo.Result
	Err    error
}

// Model is the live view of one evolution run.
type Model struct {
	pattern string
	cfg     evo.Config
	cancel  context.CancelFunc

	target  *Canvas
	best    *Canvas
	targetG evo.Grid
	bestG   evo.Grid

	stats    evo.GenerationStats
	bestHist []float64
	meanHist []float64

	theme    int
	showDiff bool
	done     bool
	result   *evo.Result
	err      error
}

// NewModel builds the live view. cancel stops the engine when the user quits.
func NewModel(pattern string, target evo.Grid, cfg evo.Config, cancel context.CancelFunc) Model {
	m := Model{
		pattern:  pattern,
		cfg:      cfg,
		cancel:   cancel,
		target:   NewCanvas(cfg.Width, cfg.Height),
		best:     NewCanvas(cfg.Width, cfg.Height),
		targetG:  target,
		bestHist: make([]float64, 0, historyCapacity),
		meanHist: make([]float64, 0, historyCapacity),
	}
	m.target.Draw(target)
	return m
}

// SetTheme selects the chrome theme by name.
func (m *Model) SetTheme(name string) { m.theme = themeIndex(name) }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "d":
			m.showDiff = !m.showDiff
			m.redraw()
		}
	case GenerationMsg:
		m.stats = msg.Stats
		m.bestG = msg.Best
		m.bestHist = appendCapped(m.bestHist, msg.Stats.Best)
		m.meanHist = appendCapped(m.meanHist, msg.Stats.Mean)
		m.redraw()
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if msg.Result != nil && msg.Result.Best != nil {
			m.bestG = msg.Result.Best.Pixels
			m.stats.Generation = msg.Result.Generations
			m.stats.Best = msg.Result.BestFitness
			m.redraw()
		}
	}
	return m, nil
}

func (m *Model) redraw() {
	if m.bestG == nil {
		return
	}
	if m.showDiff {
		m.best.Draw(DiffGrid(m.bestG, m.targetG))
		return
	}
	m.best.Draw(m.bestG)
}

func appendCapped(hist []float64, v float64) []float64 {
	if len(hist) >= historyCapacity {
		copy(hist, hist[1:])
		hist = hist[:len(hist)-1]
	}
	return append(hist, v)
}

func (m Model) Done() bool          { return m.done }
func (m Model) Result() *evo.Result { return m.result }
func (m Model) Err() error          { return m.err }

func (m Model) View() string {
	theme := Themes[m.theme]
	st := newStyles(theme)

	bestTitle := "BEST"
	if m.showDiff {
		bestTitle = "DIFF"
	}
	images := lipgloss.JoinHorizontal(lipgloss.Top,
		st.panel.Render(st.muted.Render("TARGET")+"\n"+m.target.String()),
		"  ",
		st.panel.Render(st.muted.Render(bestTitle)+"\n"+m.best.String()),
	)

	var s strings.Builder
	s.WriteString(st.title.Render(strings.ToUpper(m.pattern)) + "\n")
	s.WriteString(m.status(st) + "\n\n")
	s.WriteString(images + "\n\n")

	s.WriteString(st.label.Render("Generation") + st.value.Render(fmt.Sprintf("%d / %d", m.stats.Generation, m.cfg.MaxGenerations)) + "\n")
	s.WriteString(st.label.Render("Best") + st.value.Render(fmt.Sprintf("%.6f", m.stats.Best)) + "\n")
	s.WriteString(st.label.Render("Mean") + st.value.Render(fmt.Sprintf("%.6f", m.stats.Mean)) + "\n")
	s.WriteString(st.label.Render("Elapsed") + st.value.Render(m.stats.Elapsed.Round(time.Millisecond).String()) + "\n")

	progress := 0.0
	if m.cfg.TargetFitness > 0 {
		progress = m.stats.Best / m.cfg.TargetFitness
	}
	s.WriteString(st.label.Render("Target") + ProgressBar(progress, 30, theme) +
		st.muted.Render(fmt.Sprintf(" %.2f", m.cfg.TargetFitness)) + "\n")

	if len(m.bestHist) > 1 {
		chart := asciigraph.PlotMany([][]float64{m.bestHist, m.meanHist},
			asciigraph.Height(6), asciigraph.Width(50),
			asciigraph.Precision(3), asciigraph.Caption("best / mean fitness"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString("\n" + st.muted.Render("q quit  t theme ("+theme.Name+")  d diff"))
	return s.String()
}

func (m Model) status(st styles) string {
	switch {
	case !m.done:
		return st.warning.Render("EVOLVING")
	case m.err != nil:
		return st.errorMsg.Render("STOPPED: " + m.err.Error())
	case m.result != nil && m.result.Converged:
		return st.success.Render("CONVERGED")
	}
	return st.warning.Render("GENERATION CAP REACHED")
}

// Forwarder is an engine observer that posts GenerationMsg values to a
// running program, at most once per Interval. Generation 0 is always sent.
type Forwarder struct {
	Send     func(tea.Msg)
	Engine   *evo.Engine
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (f *Forwarder) OnGeneration(s evo.GenerationStats) {
	f.mu.Lock()
	now := time.Now()
	if s.Generation != 0 && now.Sub(f.last) < f.Interval {
		f.mu.Unlock()
		return
	}
	f.last = now
	f.mu.Unlock()

	f.Send(GenerationMsg{Stats: s, Best: f.Engine.Best().Pixels.Clone()})
}
