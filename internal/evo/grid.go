package evo

// Grid is a row-major sequence of colors.
type Grid []Color

func NewGrid(n int) Grid {
	return make(Grid, n)
}

func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	copy(c, g)
	return c
}

func (g Grid) Equal(o Grid) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if g[i] != o[i] {
			return false
		}
	}
	return true
}

// Raster returns interleaved RGB bytes, 3 per color, no row padding.
func (g Grid) Raster() []byte {
	out := make([]byte, len(g)*3)
	for i, c := range g {
		out[i*3] = c.R
		out[i*3+1] = c.G
		out[i*3+2] = c.B
	}
	return out
}

// GridFromRaster is the inverse of Raster. Trailing bytes that do not form
// a whole color are ignored.
func GridFromRaster(raster []byte) Grid {
	g := make(Grid, len(raster)/3)
	for i := range g {
		g[i] = Color{R: raster[i*3], G: raster[i*3+1], B: raster[i*3+2]}
	}
	return g
}
