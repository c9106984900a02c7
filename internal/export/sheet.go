package export

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	sheetPadding     = 10
	sheetLabelHeight = 18
)

// Tile is one labelled raster on a contact sheet.
type Tile struct {
	Label  string
	Raster []byte
}

// ContactSheet lays tiles out left to right, each upscaled by scale and
// captioned with its label.
func ContactSheet(tiles []Tile, width, height, scale int) (*image.RGBA, error) {
	if scale < 1 {
		scale = 1
	}
	tileW, tileH := width*scale, height*scale
	face := basicfont.Face7x13

	// labels wider than a tile widen every column
	colW := tileW
	for _, t := range tiles {
		if w := font.MeasureString(face, t.Label).Ceil(); w > colW {
			colW = w
		}
	}

	sheetW := sheetPadding + len(tiles)*(colW+sheetPadding)
	sheetH := sheetPadding + sheetLabelHeight + tileH + sheetPadding
	sheet := image.NewRGBA(image.Rect(0, 0, sheetW, sheetH))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  sheet,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	for i, t := range tiles {
		img, err := RasterImage(t.Raster, width, height)
		if err != nil {
			return nil, err
		}
		x0 := sheetPadding + i*(colW+sheetPadding)
		y0 := sheetPadding + sheetLabelHeight

		d.Dot = fixed.P(x0, sheetPadding+face.Ascent)
		d.DrawString(t.Label)

		dst := image.Rect(x0, y0, x0+tileW, y0+tileH)
		draw.Draw(sheet, dst, Upscale(img, scale), image.Point{}, draw.Src)
	}
	return sheet, nil
}

func WriteContactSheet(path string, tiles []Tile, width, height, scale int) error {
	sheet, err := ContactSheet(tiles, width, height, scale)
	if err != nil {
		return err
	}
	return WritePNG(path, sheet)
}
