package export

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/transform"
)

// PNGWriter persists raster buffers as PNG files, optionally upscaled with
// nearest-neighbour sampling so individual pixels stay crisp.
type PNGWriter struct {
	Scale int
}

func NewPNGWriter(scale int) *PNGWriter {
	if scale < 1 {
		scale = 1
	}
	return &PNGWriter{Scale: scale}
}

func (w *PNGWriter) Persist(raster []byte, width, height int, path string) error {
	img, err := RasterImage(raster, width, height)
	if err != nil {
		return err
	}
	return WritePNG(path, Upscale(img, w.Scale))
}

// RasterImage wraps interleaved RGB bytes in an opaque NRGBA image.
func RasterImage(raster []byte, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("export: invalid size %dx%d", width, height)
	}
	if len(raster) != width*height*3 {
		return nil, fmt.Errorf("export: raster has %d bytes, %dx%d needs %d", len(raster), width, height, width*height*3)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4] = raster[i*3]
		img.Pix[i*4+1] = raster[i*3+1]
		img.Pix[i*4+2] = raster[i*3+2]
		img.Pix[i*4+3] = 0xff
	}
	return img, nil
}

// Upscale enlarges img by an integer factor. factor <= 1 returns img as is.
func Upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	return transform.Resize(img, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor)
}

func WritePNG(path string, img image.Image) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}

// ReadRaster decodes a PNG back into RGB bytes. Used to rebuild reports
// from stored artifacts.
func ReadRaster(path string) ([]byte, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}

	b := img.Bounds()
	raster := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			raster = append(raster, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return raster, b.Dx(), b.Dy(), nil
}
