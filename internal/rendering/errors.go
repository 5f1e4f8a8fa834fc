// Package rendering turns content records into artifacts: social images
// screenshotted by a headless browser and newsletter HTML files.
package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/teamverse/internal/validation"
)

// TemplateError represents an error parsing or executing an HTML template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a browser run that failed or produced no output
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// UnavailableError means no browser executable could be located
type UnavailableError struct {
	Searched []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("render unavailable: no browser found (searched %s); install Google Chrome or Chromium",
		strings.Join(e.Searched, ", "))
}

// InvalidOutputError means a screenshot was produced but failed image validation.
// Nothing was written to Path.
type InvalidOutputError struct {
	Path   string
	Result validation.Result
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("image validation failed for %s: %s", e.Path, strings.Join(e.Result.Errors, "; "))
}
