package handler

import (
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"time"
)

const baseTemplate = "base.html"

func add(a, b int) int { return a + b }

func dict(values ...any) (map[string]interface{}, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

func formatDate(t time.Time) string { return t.Format("Jan 2, 2006") }

func isoDate(t time.Time) string { return t.UTC().Format(time.RFC3339) }

var funcs = template.FuncMap{
	"add":        add,
	"dict":       dict,
	"formatDate": formatDate,
	"isoDate":    isoDate,
}

// LoadTemplates parses every page in dir together with the base layout and
// the partials. The partials are also parsed alone under PartialsTemplate.
func LoadTemplates(dir string) (map[string]*template.Template, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate || f.Name() == PartialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFiles(
			path.Join(dir, baseTemplate),
			path.Join(dir, f.Name()),
			path.Join(dir, PartialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.Name(), err)
		}
		templates[f.Name()] = tmpl
	}

	partials, err := template.New(PartialsTemplate).Funcs(funcs).ParseFiles(path.Join(dir, PartialsTemplate))
	if err != nil {
		return nil, fmt.Errorf("parsing partials: %w", err)
	}
	templates[PartialsTemplate] = partials
	return templates, nil
}
