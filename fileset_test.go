package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	meta, body, err := parseFrontMatter([]byte("---\ntitle: Hello\ndraft: true\ntags: [go, web]\n---\nBody text\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", meta.String(keyTitle))
	assert.True(t, meta.Bool(keyDraft))
	assert.Equal(t, []any{"go", "web"}, meta[keyTags])
	assert.Equal(t, "Body text\n", string(body))
}

func TestParseFrontMatterVariants(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantBody string
		wantMeta Metadata
	}{
		{"none", "Just text\n", "Just text\n", Metadata{}},
		{"empty block", "---\n---\nBody\n", "Body\n", Metadata{}},
		{"crlf", "---\r\ntitle: Win\r\n---\r\nBody\r\n", "Body\r\n", Metadata{"title": "Win"}},
		{"closing at eof", "---\ntitle: Only\n---", "", Metadata{"title": "Only"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := parseFrontMatter([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMeta, meta)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestParseFrontMatterErrors(t *testing.T) {
	_, _, err := parseFrontMatter([]byte("---\ntitle: Hello\nno end here\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)

	_, _, err = parseFrontMatter([]byte("---\ntitle: [unclosed\n---\nbody"))
	require.Error(t, err)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2017, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, v := range []any{"2017-03-04", want, "2017-03-04T00:00:00Z"} {
		got, err := parseDate(v)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%v", v)
	}
	_, err := parseDate("March fourth")
	assert.Error(t, err)
	_, err = parseDate(nil)
	assert.Error(t, err)
}

func TestMetadataCloneIsDeep(t *testing.T) {
	m := Metadata{"site": map[string]any{"title": "A"}, "list": []any{Metadata{"x": 1}}}
	c := m.Clone()
	c["site"].(Metadata)["title"] = "B"
	c["list"].([]any)[0].(Metadata)["x"] = 2

	assert.Equal(t, "A", m["site"].(map[string]any)["title"])
	assert.Equal(t, 1, m["list"].([]any)[0].(Metadata)["x"])
}

func TestFilesMatchingIsSorted(t *testing.T) {
	files := Files{"post/b.md": newFile(nil, nil), "post/a.md": newFile(nil, nil), "x.md": newFile(nil, nil)}
	assert.Equal(t, []string{"post/a.md", "post/b.md"}, files.Matching(mustPattern("post/*.md")))
}
