package rendering

import (
	"html/template"
	"os"
	"path/filepath"

	"github.com/jonathan/teamverse/internal/types"
)

type newsletterData struct {
	types.Newsletter
	Body template.HTML
}

// NewsletterHTML executes the newsletter template. BodyHTML is inserted
// unescaped; every other field is escaped.
func NewsletterHTML(newsletter types.Newsletter) ([]byte, error) {
	return execute(newsletterTemplate, newsletterData{
		Newsletter: newsletter,
		Body:       template.HTML(newsletter.BodyHTML), //nolint:gosec // body is authored HTML
	})
}

// RenderNewsletter writes the newsletter HTML to outputPath, creating parent
// directories as needed.
func RenderNewsletter(newsletter types.Newsletter, outputPath string) (string, error) {
	if err := newsletter.Validate(); err != nil {
		return "", err
	}
	page, err := NewsletterHTML(newsletter)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", &RenderError{Message: "failed to create output directory", Cause: err}
	}
	if err := os.WriteFile(outputPath, page, 0644); err != nil {
		return "", &RenderError{Message: "failed to write newsletter", Cause: err}
	}
	return outputPath, nil
}
