// Package pattern renders the deterministic target images an evolution run
// tries to match.
package pattern

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/evoimg/internal/evo"
)

var ErrUnknownPattern = errors.New("pattern: unknown pattern")

type Kind int

const (
	Gradient Kind = iota + 1
	Circle
	Checkerboard
	Stripes
)

// Pattern is a rendered target together with its descriptive metadata.
type Pattern struct {
	Kind   Kind
	Name   string
	Label  string
	Width  int
	Height int
	Grid   evo.Grid
}

type entry struct {
	name   string
	label  string
	render func(x, y, w, h int) evo.Color
}

var registry = map[Kind]entry{
	Gradient:     {"gradient", "Color Gradient", gradient},
	Circle:       {"circle", "Circle", circle},
	Checkerboard: {"checkerboard", "Checkerboard", checkerboard},
	Stripes:      {"stripes", "Stripes", stripes},
}

func (k Kind) String() string {
	if s, ok := registry[k]; ok {
		return s.name
	}
	return "unknown"
}

// Label is the human-readable menu entry for k.
func (k Kind) Label() string {
	if s, ok := registry[k]; ok {
		return s.label
	}
	return "Unknown"
}

// Kinds lists every pattern in menu order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func Names() []string {
	kinds := Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// Parse accepts a pattern name ("circle") or its menu number ("2").
func Parse(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		k := Kind(n)
		if _, ok := registry[k]; ok {
			return k, nil
		}
		return 0, fmt.Errorf("%w: %d (choose 1-%d)", ErrUnknownPattern, n, len(registry))
	}
	for k, sp := range registry {
		if sp.name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPattern, s, strings.Join(Names(), ", "))
}

// ParseOrDefault falls back to Gradient for anything Parse rejects.
func ParseOrDefault(s string) Kind {
	k, err := Parse(s)
	if err != nil {
		return Gradient
	}
	return k
}

// Render draws kind onto a width×height grid. The same arguments always
// produce the same grid.
func Render(kind Kind, width, height int) (Pattern, error) {
	sp, ok := registry[kind]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %d", ErrUnknownPattern, int(kind))
	}
	if width <= 0 || height <= 0 {
		return Pattern{}, fmt.Errorf("pattern: invalid size %dx%d", width, height)
	}

	grid := evo.NewGrid(width * height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			grid[y*width+x] = sp.render(x, y, width, height)
		}
	}
	return Pattern{
		Kind:   kind,
		Name:   sp.name,
		Label:  sp.label,
		Width:  width,
		Height: height,
		Grid:   grid,
	}, nil
}

func scale(v, limit int) uint8 {
	if limit <= 0 {
		return 0
	}
	return uint8(v * 255 / limit)
}

// red grows left to right, green top to bottom, blue along the diagonal.
func gradient(x, y, w, h int) evo.Color {
	return evo.Color{
		R: scale(x, w-1),
		G: scale(y, h-1),
		B: scale(x+y, w+h-2),
	}
}

var (
	circleFill       = evo.Color{R: 255, G: 100, B: 100}
	circleBackground = evo.Color{R: 50, G: 50, B: 150}
)

// radius is 10/32 of the shorter side, centred on (w/2, h/2).
func circle(x, y, w, h int) evo.Color {
	cx, cy := float64(w)/2, float64(h)/2
	radius := float64(min(w, h)) * 10 / 32
	dx, dy := float64(x)-cx, float64(y)-cy
	if math.Sqrt(dx*dx+dy*dy) <= radius {
		return circleFill
	}
	return circleBackground
}

const checkerCell = 4

func checkerboard(x, y, w, h int) evo.Color {
	if (x/checkerCell+y/checkerCell)%2 == 0 {
		return evo.Color{R: 255, G: 255, B: 255}
	}
	return evo.Color{}
}

const stripePeriod = 8

func stripes(x, y, w, h int) evo.Color {
	if x%stripePeriod < stripePeriod/2 {
		return evo.Color{R: 255}
	}
	return evo.Color{R: 255, G: 255}
}
