package export

import (
	"fmt"
	"os"
	"strings"
)

// RasterToSVG draws an RGB raster as one square per pixel.
func RasterToSVG(raster []byte, width, height int, scale float64) (string, error) {
	if len(raster) != width*height*3 {
		return "", fmt.Errorf("raster has %d bytes, %dx%d needs %d", len(raster), width, height, width*height*3)
	}
	if scale <= 0 {
		scale = 1
	}

	w := float64(width) * scale
	h := float64(height) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
`, w, h, w, h))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#%02x%02x%02x"/>
`, float64(x)*scale, float64(y)*scale, scale, scale, raster[i], raster[i+1], raster[i+2]))
		}
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

// Series is one polyline of a fitness chart.
type Series struct {
	Values []float64
	Color  string
}

// FitnessCurveSVG plots every series against generation index on shared
// axes. Series with fewer than two points are skipped.
func FitnessCurveSVG(series []Series, width, height int) string {
	n := 0
	first := true
	var minY, maxY float64
	for _, s := range series {
		if len(s.Values) > n {
			n = len(s.Values)
		}
		for _, v := range s.Values {
			if first {
				minY, maxY = v, v
				first = false
			}
			if v < minY {
				minY = v
			}
			if v > maxY {
				maxY = v
			}
		}
	}
	if n < 2 {
		return ""
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(n - 1)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		if len(s.Values) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for i, v := range s.Values {
			x := float64(i) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func WriteSVG(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}
