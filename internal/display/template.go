package display

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = sprig.TxtFuncMap()

// Template is a text template with the sprig functions available.
type Template struct {
	tmpl *template.Template
}

// MustParse parses text and panics on a malformed template. It is meant for
// package level templates.
func MustParse(name, text string) *Template {
	return &Template{
		tmpl: template.Must(template.New(name).Funcs(templateFuncs).Parse(text)),
	}
}

// Expand executes the template against data.
func (t *Template) Expand(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", t.tmpl.Name(), err)
	}
	return buf.String(), nil
}
