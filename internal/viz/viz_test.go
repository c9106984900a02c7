package viz

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/evoimg/internal/evo"
	"github.com/san-kum/evoimg/internal/pattern"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testConfig() evo.Config {
	cfg := evo.DefaultConfig()
	cfg.Width = 4
	cfg.Height = 4
	cfg.PopulationSize = 6
	cfg.MaxGenerations = 10
	return cfg
}

func solidGrid(n int, c evo.Color) evo.Grid {
	g := evo.NewGrid(n)
	for i := range g {
		g[i] = c
	}
	return g
}

func TestCanvasRows(t *testing.T) {
	tests := []struct {
		height, rows int
	}{
		{1, 1},
		{2, 1},
		{5, 3},
		{32, 16},
	}
	for _, tt := range tests {
		c := NewCanvas(3, tt.height)
		if c.Rows() != tt.rows {
			t.Errorf("height %d: expected %d rows, got %d", tt.height, tt.rows, c.Rows())
		}
		lines := strings.Split(c.String(), "\n")
		if len(lines) != tt.rows {
			t.Errorf("height %d: expected %d lines, got %d", tt.height, tt.rows, len(lines))
		}
		for _, l := range lines {
			if strings.Count(l, halfBlock) != 3 {
				t.Errorf("expected 3 cells per line, got %q", l)
			}
		}
	}
}

func TestCanvasSetBounds(t *testing.T) {
	c := NewCanvas(2, 2)
	red := evo.Color{R: 255}

	c.Set(1, 1, red)
	c.Set(-1, 0, red)
	c.Set(2, 0, red)
	c.Set(0, 5, red)

	if c.At(1, 1) != red {
		t.Errorf("expected red at (1,1), got %v", c.At(1, 1))
	}
	if c.At(0, 0) != (evo.Color{}) {
		t.Errorf("expected black at (0,0), got %v", c.At(0, 0))
	}

	c.Clear()
	if c.At(1, 1) != (evo.Color{}) {
		t.Error("expected clear to reset pixels")
	}
}

func TestCanvasDraw(t *testing.T) {
	c := NewCanvas(2, 2)
	g := evo.Grid{{R: 1}, {R: 2}, {R: 3}, {R: 4}, {R: 5}}

	c.Draw(g)
	if c.At(0, 1) != (evo.Color{R: 3}) {
		t.Errorf("expected R=3 at (0,1), got %v", c.At(0, 1))
	}

	c.Draw(evo.Grid{{G: 9}})
	if c.At(0, 0) != (evo.Color{G: 9}) || c.At(1, 1) != (evo.Color{R: 4}) {
		t.Error("expected short grid to overwrite only its prefix")
	}
}

func TestDiffGrid(t *testing.T) {
	target := evo.Grid{{R: 10, G: 20, B: 30}, {}}
	g := evo.Grid{{R: 10, G: 20, B: 30}, {R: 255, G: 255, B: 255}}

	d := DiffGrid(g, target)
	if d[0] != (evo.Color{}) {
		t.Errorf("expected black for identical pixel, got %v", d[0])
	}
	if d[1] != (evo.Color{R: 255, G: 255, B: 255}) {
		t.Errorf("expected white for maximal distance, got %v", d[1])
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor(255, 0, 16); got != "#ff0010" {
		t.Errorf("expected #ff0010, got %s", got)
	}
	if got := hexColor(-5, 300, 0); got != "#00ff00" {
		t.Errorf("expected clamped #00ff00, got %s", got)
	}
}

func TestModelGeneration(t *testing.T) {
	cfg := testConfig()
	target := solidGrid(cfg.GridSize(), evo.Color{R: 200})
	m := NewModel("gradient", target, cfg, nil)

	best := solidGrid(cfg.GridSize(), evo.Color{G: 100})
	updated, cmd := m.Update(GenerationMsg{
		Stats: evo.GenerationStats{Generation: 3, Best: 0.8, Mean: 0.5},
		Best:  best,
	})
	if cmd != nil {
		t.Error("expected no command")
	}
	m = updated.(Model)

	if m.stats.Generation != 3 {
		t.Errorf("expected generation 3, got %d", m.stats.Generation)
	}
	if len(m.bestHist) != 1 || m.bestHist[0] != 0.8 {
		t.Errorf("expected best history [0.8], got %v", m.bestHist)
	}
	if m.best.At(0, 0) != (evo.Color{G: 100}) {
		t.Errorf("expected best canvas redrawn, got %v", m.best.At(0, 0))
	}

	updated, _ = m.Update(keyMsg("d"))
	m = updated.(Model)
	want := DiffGrid(best, target)[0]
	if m.best.At(0, 0) != want {
		t.Errorf("expected diff pixel %v, got %v", want, m.best.At(0, 0))
	}

	view := m.View()
	if !strings.Contains(view, "GRADIENT") || !strings.Contains(view, "EVOLVING") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestModelDone(t *testing.T) {
	cfg := testConfig()
	m := NewModel("circle", solidGrid(cfg.GridSize(), evo.Color{}), cfg, nil)

	best := evo.NewCandidate(cfg.GridSize())
	res := &evo.Result{Generations: 7, BestFitness: 0.97, Best: best, Converged: true}
	updated, _ := m.Update(DoneMsg{Result: res})
	m = updated.(Model)

	if !m.Done() {
		t.Error("expected done")
	}
	if m.Result() != res {
		t.Error("expected result to be kept")
	}
	if m.stats.Generation != 7 {
		t.Errorf("expected generation 7, got %d", m.stats.Generation)
	}
	if !strings.Contains(m.View(), "CONVERGED") {
		t.Error("expected converged status")
	}

	updated, _ = m.Update(DoneMsg{Err: context.Canceled})
	m = updated.(Model)
	if !errors.Is(m.Err(), context.Canceled) {
		t.Errorf("expected canceled error, got %v", m.Err())
	}
	if !strings.Contains(m.View(), "STOPPED") {
		t.Error("expected stopped status")
	}
}

func TestModelQuitCancels(t *testing.T) {
	cfg := testConfig()
	canceled := false
	m := NewModel("stripes", solidGrid(cfg.GridSize(), evo.Color{}), cfg, func() { canceled = true })

	_, cmd := m.Update(keyMsg("q"))
	if !canceled {
		t.Error("expected cancel to be called")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelThemeCycle(t *testing.T) {
	cfg := testConfig()
	m := NewModel("stripes", solidGrid(cfg.GridSize(), evo.Color{}), cfg, nil)
	m.SetTheme("minimal")

	for i := 0; i < len(Themes); i++ {
		updated, _ := m.Update(keyMsg("t"))
		m = updated.(Model)
	}
	if Themes[m.theme].Name != "minimal" {
		t.Errorf("expected full cycle back to minimal, got %s", Themes[m.theme].Name)
	}
}

func TestAppendCapped(t *testing.T) {
	hist := make([]float64, 0)
	for i := 0; i < historyCapacity+5; i++ {
		hist = appendCapped(hist, float64(i))
	}
	if len(hist) != historyCapacity {
		t.Fatalf("expected %d entries, got %d", historyCapacity, len(hist))
	}
	if hist[0] != 5 || hist[len(hist)-1] != float64(historyCapacity+4) {
		t.Errorf("expected oldest entries dropped, got first=%v last=%v", hist[0], hist[len(hist)-1])
	}
}

func TestForwarderThrottles(t *testing.T) {
	cfg := testConfig()
	eng, err := evo.New(cfg, solidGrid(cfg.GridSize(), evo.Color{}), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("engine failed: %v", err)
	}

	var sent []GenerationMsg
	f := &Forwarder{
		Send:     func(msg tea.Msg) { sent = append(sent, msg.(GenerationMsg)) },
		Engine:   eng,
		Interval: time.Hour,
	}

	f.OnGeneration(evo.GenerationStats{Generation: 0})
	f.OnGeneration(evo.GenerationStats{Generation: 1})
	f.OnGeneration(evo.GenerationStats{Generation: 0})

	if len(sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sent))
	}
	if !sent[0].Best.Equal(eng.Best().Pixels) {
		t.Error("expected best grid copy")
	}
	orig := eng.Best().Pixels[0]
	sent[0].Best[0] = evo.Color{R: ^orig.R, G: ^orig.G, B: ^orig.B}
	if eng.Best().Pixels[0] != orig {
		t.Error("expected forwarded grid to be independent")
	}
}

func TestPicker(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want pattern.Kind
	}{
		{"number", []tea.KeyMsg{keyMsg("3")}, pattern.Checkerboard},
		{"invalid", []tea.KeyMsg{keyMsg("x")}, pattern.Gradient},
		{"out of range", []tea.KeyMsg{keyMsg("9")}, pattern.Gradient},
		{"cursor", []tea.KeyMsg{{Type: tea.KeyDown}, {Type: tea.KeyEnter}}, pattern.Circle},
		{"cursor clamps", []tea.KeyMsg{{Type: tea.KeyUp}, {Type: tea.KeyEnter}}, pattern.Gradient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p tea.Model = NewPicker()
			for _, k := range tt.keys {
				p, _ = p.Update(k)
			}
			got, ok := p.(Picker).Choice()
			if !ok {
				t.Fatal("expected a choice")
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestPickerCancel(t *testing.T) {
	var p tea.Model = NewPicker()
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Error("expected quit command")
	}
	if _, ok := p.(Picker).Choice(); ok {
		t.Error("expected no choice after cancel")
	}
	if !strings.Contains(NewPicker().View(), "Checkerboard") {
		t.Error("expected pattern labels in view")
	}
}
