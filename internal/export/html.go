package export

import (
	"html/template"
	"os"
)

// DefaultViewerScale is how much the viewer enlarges each image.
const DefaultViewerScale = 10

// Viewer describes the results page written next to a run's images.
type Viewer struct {
	Pattern     string
	Generations int
	BestFitness float64
	Width       int
	Height      int
	Scale       int
	Images      []ViewerImage
}

type ViewerImage struct {
	Title string
	Src   string
}

var viewerTmpl = template.Must(template.New("viewer").Funcs(template.FuncMap{
	"mul":     func(a, b int) int { return a * b },
	"percent": func(f float64) float64 { return f * 100 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Genetic Algorithm Image Evolution Results</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .container { display: flex; flex-wrap: wrap; gap: 20px; }
        .image-box { text-align: center; border: 1px solid #ccc; padding: 10px; }
        img { border: 1px solid #000; image-rendering: pixelated; width: {{mul .Width .Scale}}px; height: {{mul .Height .Scale}}px; }
        h1 { color: #333; }
        .info { background: #f0f0f0; padding: 15px; margin: 20px 0; }
    </style>
</head>
<body>
    <h1>Genetic Algorithm Image Evolution Results</h1>
    <div class="info">
        <p>Target Pattern: {{.Pattern}}</p>
        <p>Generations: {{.Generations}}</p>
        <p>Best Fitness: {{printf "%.4f" .BestFitness}} ({{printf "%.2f" (percent .BestFitness)}}% similar)</p>
        <p>Images are {{.Width}}x{{.Height}} pixels, scaled {{.Scale}}x for viewing</p>
    </div>
    <div class="container">
{{- range .Images}}
        <div class="image-box">
            <h3>{{.Title}}</h3>
            <img src="{{.Src}}" alt="{{.Title}}">
        </div>
{{- end}}
    </div>
</body>
</html>
`))

func WriteViewer(path string, v Viewer) (err error) {
	if v.Scale < 1 {
		v.Scale = DefaultViewerScale
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
	return viewerTmpl.Execute(f, v)
}
