package main

import (
	"bytes"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Metadata keys set by the stages. A stage only deletes or rewrites the
// keys it owns.
const (
	keyTitle      = "title"
	keyDate       = "date"
	keyDraft      = "draft"
	keyLayout     = "layout"
	keyTags       = "tags"
	keyReadTime   = "readtime"
	keyExcerpt    = "excerpt"
	keyPath       = "path"
	keyPermalink  = "permalink"
	keyPagination = "pagination"
	keyTag        = "tag"
	keyCollection = "collection"
)

// Metadata is the key/value bag attached to every file and to the build.
// Nested values are Metadata or map[string]any as decoded from YAML.
type Metadata map[string]any

// Clone returns a deep copy of m. Nested maps and slices are copied, other
// values are shared.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Metadata:
		return t.Clone()
	case map[string]any:
		return Metadata(t).Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// String returns the string value at key, or "" when absent or not a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Bool reports whether key holds true.
func (m Metadata) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// File is one entry of the file set.
type File struct {
	Contents []byte
	Meta     Metadata
	Mode     os.FileMode
}

func newFile(contents []byte, meta Metadata) *File {
	if meta == nil {
		meta = Metadata{}
	}
	return &File{Contents: contents, Meta: meta, Mode: 0o644}
}

// Title is called from templates.
func (f *File) Title() string { return f.Meta.String(keyTitle) }

// Path is the permalink path set by the permalinks stage.
func (f *File) Path() string { return f.Meta.String(keyPath) }

// Date is the parsed date front matter, zero if missing or unparsable.
func (f *File) Date() time.Time {
	d, _ := parseDate(f.Meta[keyDate])
	return d
}

func (f *File) FormatDate() string      { return formatDate(f.Date()) }
func (f *File) FormatDateShort() string { return formatDateShort(f.Date()) }

// Files maps slash-separated output-relative paths to files.
type Files map[string]*File

// Paths returns the keys sorted, for stages that need a stable order.
func (fs Files) Paths() []string {
	paths := make([]string, 0, len(fs))
	for p := range fs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Matching returns the sorted paths matched by p.
func (fs Files) Matching(p Pattern) []string {
	var out []string
	for _, name := range fs.Paths() {
		if p.Match(name) {
			out = append(out, name)
		}
	}
	return out
}

// Clone deep-copies the set; used by tests to compare before and after.
func (fs Files) Clone() Files {
	out := make(Files, len(fs))
	for p, f := range fs {
		out[p] = &File{
			Contents: append([]byte(nil), f.Contents...),
			Meta:     f.Meta.Clone(),
			Mode:     f.Mode,
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return d, nil
			}
		}
		return time.Time{}, errors.Errorf("unrecognized date %q", t)
	case nil:
		return time.Time{}, errors.New("no date")
	default:
		return time.Time{}, errors.Errorf("unsupported date value %v", v)
	}
}

// ErrPathConflict is returned when a stage would put two files at one path.
var ErrPathConflict = errors.New("output path conflict")

// ErrMissingClosingDelimiter is returned for a document that opens a front
// matter block but never closes it.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// splitFrontMatter separates a `---` delimited YAML block from the body.
// A document without the opening delimiter is returned as body only.
func splitFrontMatter(content []byte) (fm []byte, body []byte, had bool, err error) {
	nl := "\n"
	if bytes.HasPrefix(content, []byte("---\r\n")) {
		nl = "\r\n"
	}
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter at EOF without a trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			return content[start : len(content)-len(nl)-3], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}
	return content[start : start+idx], content[start+idx+len(closeSeq):], true, nil
}

// parseFrontMatter splits and decodes the front matter of content.
func parseFrontMatter(content []byte) (Metadata, []byte, error) {
	fm, body, had, err := splitFrontMatter(content)
	if err != nil {
		return nil, nil, err
	}
	meta := Metadata{}
	if !had || len(bytes.TrimSpace(fm)) == 0 {
		return meta, body, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, nil, errors.Wrap(err, "invalid front matter")
	}
	for k, v := range fields {
		meta[k] = v
	}
	return meta, body, nil
}

func replaceExt(p, ext string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + ext
}

func isHTML(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}
