package rendering

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const (
	socialTemplate     = "social-image.html"
	newsletterTemplate = "newsletter.html"
)

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, &TemplateError{Message: "failed to execute " + name, Cause: err}
	}
	return buf.Bytes(), nil
}
