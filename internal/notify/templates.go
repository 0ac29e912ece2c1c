package notify

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/aymerick/raymond"
)

//go:embed templates/*.hbs
var templateFS embed.FS

var ErrUnknownTemplate = fmt.Errorf("%w: unknown template", ErrPermanent)

type Rendered struct {
	HTML string
	Text string
}

type templatePair struct {
	html *raymond.Template
	text *raymond.Template
}

// Templates holds the handlebars templates compiled at startup. A template
// named x is made of templates/x.html.hbs and/or templates/x.txt.hbs, and
// every templates/*.partial.hbs file is available as a partial.
type Templates struct {
	byName map[string]*templatePair
}

func LoadTemplates() (*Templates, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	partials := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".partial.hbs") {
			content, err := templateFS.ReadFile(path.Join("templates", name))
			if err != nil {
				return nil, err
			}
			partials[strings.TrimSuffix(name, ".partial.hbs")] = string(content)
		}
	}

	t := &Templates{byName: map[string]*templatePair{}}
	for _, e := range entries {
		name := e.Name()
		var base string
		var html bool
		switch {
		case strings.HasSuffix(name, ".partial.hbs"):
			continue
		case strings.HasSuffix(name, ".html.hbs"):
			base, html = strings.TrimSuffix(name, ".html.hbs"), true
		case strings.HasSuffix(name, ".txt.hbs"):
			base = strings.TrimSuffix(name, ".txt.hbs")
		default:
			continue
		}

		content, err := templateFS.ReadFile(path.Join("templates", name))
		if err != nil {
			return nil, err
		}
		tmpl, err := raymond.Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		tmpl.RegisterPartials(partials)

		pair, ok := t.byName[base]
		if !ok {
			pair = &templatePair{}
			t.byName[base] = pair
		}
		if html {
			pair.html = tmpl
		} else {
			pair.text = tmpl
		}
	}
	return t, nil
}

func (t *Templates) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

func (t *Templates) Render(name string, data map[string]any) (*Rendered, error) {
	pair, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTemplate, name)
	}

	var out Rendered
	var err error
	if pair.html != nil {
		if out.HTML, err = pair.html.Exec(data); err != nil {
			return nil, fmt.Errorf("failed to render %s html: %w", name, err)
		}
	}
	if pair.text != nil {
		if out.Text, err = pair.text.Exec(data); err != nil {
			return nil, fmt.Errorf("failed to render %s text: %w", name, err)
		}
	}
	return &out, nil
}
