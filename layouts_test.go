package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayouts(t *testing.T) Stage {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"default.html":         `{{template "header" .}}<main>{{.contents}}</main><footer>{{.site.title}}</footer>`,
		"plain.html":           `[{{.contents}}] {{formatDateShort .date}}`,
		"partials/header.html": `{{define "header"}}<h1>{{.title}}</h1>{{end}}`,
	})
	s, err := layouts(layoutOptions{Directory: dir, Default: "default.html", Pattern: mustPattern("**/*.html")})
	require.NoError(t, err)
	return s
}

func TestLayoutsWrapPages(t *testing.T) {
	files := Files{
		"index.html":   newFile([]byte("<p>Body</p>"), Metadata{keyTitle: "Home"}),
		"post/a.html":  newFile([]byte("A"), Metadata{keyLayout: "plain.html", keyDate: "2020-03-04"}),
		"raw.html":     newFile([]byte("untouched"), Metadata{keyLayout: false}),
		"css/site.css": newFile([]byte("body{}"), nil),
	}
	out := runStage(t, testLayouts(t), testBuild(), files)

	assert.Equal(t, "<h1>Home</h1><main><p>Body</p></main><footer>Test Site</footer>", string(out["index.html"].Contents))
	assert.Equal(t, "[A] Mar 4, 2020", string(out["post/a.html"].Contents))
	assert.Equal(t, "untouched", string(out["raw.html"].Contents))
	assert.Equal(t, "body{}", string(out["css/site.css"].Contents))
}

func TestLayoutsPageMetadataShadowsContext(t *testing.T) {
	b := testBuild()
	b.Meta[keyTitle] = "Context"
	files := Files{"index.html": newFile(nil, Metadata{keyTitle: "Page"})}

	out := runStage(t, testLayouts(t), b, files)
	assert.Contains(t, string(out["index.html"].Contents), "<h1>Page</h1>")
}

func TestLayoutsMissingLayout(t *testing.T) {
	files := Files{"index.html": newFile(nil, Metadata{keyLayout: "nope.html"})}
	_, err := testLayouts(t).Run(t.Context(), testBuild(), files)
	require.ErrorIs(t, err, ErrMissingLayout)
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2021, time.November, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "November 9, 2021", formatDate(d))
	assert.Equal(t, "Nov 9, 2021", formatDateShort(d))
	assert.Empty(t, formatDate(time.Time{}))
}
