package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/evoimg/internal/evo"
)

const halfBlock = "▀"

// Canvas holds a grid of true colors. Each printed cell covers two pixel
// rows: the foreground paints the upper one, the background the lower one.
type Canvas struct {
	Width, Height int
	pixels        []evo.Color
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		Width:  w,
		Height: h,
		pixels: make([]evo.Color, w*h),
	}
}

func (c *Canvas) Set(x, y int, col evo.Color) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return
	}
	c.pixels[y*c.Width+x] = col
}

func (c *Canvas) At(x, y int) evo.Color {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return evo.Color{}
	}
	return c.pixels[y*c.Width+x]
}

// Draw copies a row-major grid onto the canvas. Extra pixels are ignored.
func (c *Canvas) Draw(g evo.Grid) {
	n := len(c.pixels)
	if len(g) < n {
		n = len(g)
	}
	copy(c.pixels, g[:n])
}

func (c *Canvas) Clear() {
	for i := range c.pixels {
		c.pixels[i] = evo.Color{}
	}
}

func (c *Canvas) Rows() int {
	return (c.Height + 1) / 2
}

func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Rows(); row++ {
		top := row * 2
		for x := 0; x < c.Width; x++ {
			style := lipgloss.NewStyle().Foreground(colorOf(c.At(x, top)))
			if top+1 < c.Height {
				style = style.Background(colorOf(c.At(x, top+1)))
			}
			b.WriteString(style.Render(halfBlock))
		}
		if row < c.Rows()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// DiffGrid maps every pixel to a gray level proportional to its distance
// from the target. Identical pixels are black.
func DiffGrid(g, target evo.Grid) evo.Grid {
	n := len(g)
	if len(target) < n {
		n = len(target)
	}
	out := evo.NewGrid(n)
	for i := 0; i < n; i++ {
		v := uint8(g[i].Difference(target[i]) * 255 / evo.MaxColorDifference)
		out[i] = evo.Color{R: v, G: v, B: v}
	}
	return out
}

func colorOf(c evo.Color) lipgloss.Color {
	return lipgloss.Color(hexColor(int(c.R), int(c.G), int(c.B)))
}
