// Package render turns archived canvases into standalone HTML pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"

	"gemcanvas/internal/model"
)

var canvasPage = template.Must(template.New("canvas").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "{{.Signature}}", serif; max-width: 48rem; margin: 2rem auto; line-height: 1.6; }
.practice { border-top: 1px solid #ccc; margin-top: 2rem; padding-top: 1rem; }
.meta { color: #666; font-size: 0.9rem; }
</style>
</head>
<body>
<p class="meta">{{.GemName}} with {{.StudentName}}, {{.Date}}</p>
<article class="canvas">
{{.Content}}
</article>
{{if .Practice}}<section class="practice">
{{.Practice}}
</section>{{end}}
{{if .Proposed}}<p class="meta">Evolved into {{.Proposed}}</p>{{end}}
</body>
</html>
`))

type canvasView struct {
	Title       string
	Signature   string
	GemName     string
	StudentName string
	Date        string
	Content     template.HTML
	Practice    template.HTML
	Proposed    string
}

// Markdown converts markdown to HTML. Raw HTML in the source is omitted.
func Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert markdown failed: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// CanvasHTML renders one canvas of the Gem, written in the Gem's signature.
func CanvasHTML(gem *model.Gem, canvas model.ConnectionCanvas) ([]byte, error) {
	content, err := Markdown(canvas.Content)
	if err != nil {
		return nil, err
	}
	view := canvasView{
		Title:       fmt.Sprintf("%s: Connection Canvas", gem.Name),
		Signature:   gem.VisualSignature,
		GemName:     gem.Name,
		StudentName: gem.StudentName,
		Date:        canvas.CreatedAt.Format("2 January 2006"),
		Content:     content,
		Proposed:    canvas.ProposedVisualSignature,
	}
	if canvas.PersonalizedPractice != "" {
		if view.Practice, err = Markdown(canvas.PersonalizedPractice); err != nil {
			return nil, err
		}
	}

	var out bytes.Buffer
	if err := canvasPage.Execute(&out, view); err != nil {
		return nil, fmt.Errorf("render canvas failed: %w", err)
	}
	return out.Bytes(), nil
}
