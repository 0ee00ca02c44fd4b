package main

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// ErrMissingLayout is returned when a page names a layout that does not exist.
var ErrMissingLayout = errors.New("layout not found")

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("January 2, 2006")
}

func formatDateShort(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("Jan 2, 2006")
}

func templateDate(v any) time.Time {
	d, _ := parseDate(v)
	return d
}

var templateFuncs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"markdown": func(s string) template.HTML {
		return template.HTML(renderMarkdown([]byte(s)))
	},
	"safe":            func(s string) template.HTML { return template.HTML(s) },
	"formatDate":      func(v any) string { return formatDate(templateDate(v)) },
	"formatDateShort": func(v any) string { return formatDateShort(templateDate(v)) },
}

type templateEngine struct {
	templateDir   string
	templateCache *lru.Cache[string, *template.Template]
}

func newTemplateEngine(dir string, cacheSize int) (*templateEngine, error) {
	cache, err := lru.New[string, *template.Template](cacheSize)
	if err != nil {
		return nil, err
	}
	return &templateEngine{templateDir: dir, templateCache: cache}, nil
}

// getTemplate parses layout together with the shared partials/*.html.
func (te *templateEngine) getTemplate(layout string) (*template.Template, error) {
	if t, ok := te.templateCache.Get(layout); ok {
		return t, nil
	}
	file := filepath.Join(te.templateDir, filepath.FromSlash(layout))
	if _, err := os.Stat(file); err != nil {
		return nil, errors.Wrapf(ErrMissingLayout, "%s", file)
	}
	t, err := template.New(filepath.Base(file)).Funcs(templateFuncs).ParseFiles(file)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing layout %s", layout)
	}
	partials, err := filepath.Glob(filepath.Join(te.templateDir, "partials", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(partials) > 0 {
		if t, err = t.ParseFiles(partials...); err != nil {
			return nil, errors.Wrapf(err, "parsing partials for %s", layout)
		}
	}
	te.templateCache.Add(layout, t)
	return t, nil
}

// pageData is what a layout sees: the build context, the page's own
// metadata on top, `contents` and `file`.
func pageData(b *Build, f *File) Metadata {
	data := make(Metadata, len(b.Meta)+len(f.Meta)+2)
	for k, v := range b.Meta {
		data[k] = v
	}
	for k, v := range f.Meta {
		data[k] = v
	}
	data["contents"] = template.HTML(f.Contents)
	data["file"] = f
	return data
}

func (te *templateEngine) renderPage(b *Build, f *File, layout string) ([]byte, error) {
	t, err := te.getTemplate(layout)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, pageData(b, f)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type layoutOptions struct {
	Directory string
	Default   string
	Pattern   Pattern
	CacheSize int
}

// layouts wraps matching pages in their `layout` template, or the default
// one. `layout: false` opts a page out.
func layouts(opts layoutOptions) (Stage, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	engine, err := newTemplateEngine(opts.Directory, opts.CacheSize)
	if err != nil {
		return Stage{}, err
	}
	return Stage{
		Name: "layouts",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			// Layouts may change between watch rebuilds.
			engine.templateCache.Purge()
			for _, name := range files.Matching(opts.Pattern) {
				f := files[name]
				layout := opts.Default
				switch v := f.Meta[keyLayout].(type) {
				case string:
					layout = v
				case bool:
					if !v {
						layout = ""
					}
				}
				if layout == "" {
					continue
				}
				out, err := engine.renderPage(b, f, layout)
				if err != nil {
					return nil, errors.Wrapf(err, "rendering %s", name)
				}
				f.Contents = out
			}
			return files, nil
		},
	}, nil
}
