package pattern

import (
	"errors"
	"testing"

	"github.com/san-kum/evoimg/internal/evo"
)

func TestRenderDeterministic(t *testing.T) {
	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			a, err := Render(k, 32, 32)
			if err != nil {
				t.Fatalf("render failed: %v", err)
			}
			b, _ := Render(k, 32, 32)
			if !a.Grid.Equal(b.Grid) {
				t.Error("render is not deterministic")
			}
			if len(a.Grid) != 1024 {
				t.Errorf("expected 1024 colors, got %d", len(a.Grid))
			}
			if a.Name != k.String() || a.Label == "" {
				t.Errorf("unexpected metadata: %q / %q", a.Name, a.Label)
			}
		})
	}
}

func TestRenderValues(t *testing.T) {
	at := func(p Pattern, x, y int) evo.Color { return p.Grid[y*p.Width+x] }

	g, _ := Render(Gradient, 32, 32)
	if c := at(g, 0, 0); c != (evo.Color{}) {
		t.Errorf("gradient origin: got %v", c)
	}
	if c := at(g, 31, 31); c != (evo.Color{R: 255, G: 255, B: 255}) {
		t.Errorf("gradient corner: got %v", c)
	}
	if c := at(g, 31, 0); c != (evo.Color{R: 255, G: 0, B: 127}) {
		t.Errorf("gradient top right: got %v", c)
	}

	c, _ := Render(Circle, 32, 32)
	if got := at(c, 16, 16); got != circleFill {
		t.Errorf("circle centre: got %v", got)
	}
	if got := at(c, 0, 0); got != circleBackground {
		t.Errorf("circle corner: got %v", got)
	}
	if got := at(c, 26, 16); got != circleFill {
		t.Errorf("circle edge (distance 10): got %v", got)
	}
	if got := at(c, 27, 16); got != circleBackground {
		t.Errorf("circle outside (distance 11): got %v", got)
	}

	cb, _ := Render(Checkerboard, 32, 32)
	if got := at(cb, 0, 0); got != (evo.Color{R: 255, G: 255, B: 255}) {
		t.Errorf("checkerboard origin: got %v", got)
	}
	if got := at(cb, 4, 0); got != (evo.Color{}) {
		t.Errorf("checkerboard second cell: got %v", got)
	}
	if got := at(cb, 4, 4); got != (evo.Color{R: 255, G: 255, B: 255}) {
		t.Errorf("checkerboard diagonal cell: got %v", got)
	}

	s, _ := Render(Stripes, 32, 32)
	if got := at(s, 3, 10); got != (evo.Color{R: 255}) {
		t.Errorf("stripes red band: got %v", got)
	}
	if got := at(s, 4, 10); got != (evo.Color{R: 255, G: 255}) {
		t.Errorf("stripes yellow band: got %v", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		expected Kind
		ok       bool
	}{
		{"gradient", Gradient, true},
		{" Circle ", Circle, true},
		{"3", Checkerboard, true},
		{"4", Stripes, true},
		{"5", 0, false},
		{"spiral", 0, false},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.ok && (err != nil || got != tt.expected) {
			t.Errorf("Parse(%q) = %v, %v; want %v", tt.in, got, err, tt.expected)
		}
		if !tt.ok && !errors.Is(err, ErrUnknownPattern) {
			t.Errorf("Parse(%q): expected ErrUnknownPattern, got %v", tt.in, err)
		}
	}

	if ParseOrDefault("nonsense") != Gradient {
		t.Error("expected gradient fallback")
	}
}

func TestRenderInvalid(t *testing.T) {
	if _, err := Render(Kind(99), 32, 32); !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("expected ErrUnknownPattern, got %v", err)
	}
	if _, err := Render(Circle, 0, 32); err == nil {
		t.Error("expected error for zero width")
	}
}
