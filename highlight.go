package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/pkg/errors"
	"github.com/russross/blackfriday/v2"
)

// highlightCSS is the stylesheet for the classes the code formatter emits.
const highlightCSS = "css/highlight.css"

var (
	codeFormatter = chromahtml.New(chromahtml.WithClasses(true))
	codeStyle     = styles.Get("github")
)

// highlightRenderer is the blackfriday html renderer with fenced code
// blocks coloured by chroma. Blocks without a known language fall through
// to the plain renderer.
type highlightRenderer struct {
	*blackfriday.HTMLRenderer
}

func newHighlightRenderer(params blackfriday.HTMLRendererParameters) *highlightRenderer {
	return &highlightRenderer{HTMLRenderer: blackfriday.NewHTMLRenderer(params)}
}

func (r *highlightRenderer) RenderNode(w io.Writer, node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
	if node.Type == blackfriday.CodeBlock {
		if out, err := highlightBlock(codeLanguage(node.Info), string(node.Literal)); err == nil && out != nil {
			w.Write(out)
			return blackfriday.GoToNext
		}
	}
	return r.HTMLRenderer.RenderNode(w, node, entering)
}

// codeLanguage is the first word of a fence info string.
func codeLanguage(info []byte) string {
	if f := bytes.Fields(info); len(f) > 0 {
		return string(f[0])
	}
	return ""
}

// highlightBlock returns nil for languages chroma does not know.
func highlightBlock(lang, code string) ([]byte, error) {
	if lang == "" {
		return nil, nil
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil, nil
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := codeFormatter.Format(&buf, codeStyle, it); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func isIndentedCode(line []byte) bool {
	return bytes.HasPrefix(line, []byte("    ")) || bytes.HasPrefix(line, []byte("\t"))
}

func dedent(line []byte) []byte {
	if bytes.HasPrefix(line, []byte("\t")) {
		return line[1:]
	}
	return line[4:]
}

// expandHighlightDirectives turns a `!highlight <lang>` line followed by an
// indented code block into a fenced block tagged with lang. A directive with
// no code block after it is dropped.
func expandHighlightDirectives(text []byte) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, len(text)))
	r := bufio.NewReader(bytes.NewReader(text))

	var (
		lang    string
		inBlock bool
		blanks  int
	)
	closeBlock := func() {
		out.WriteString("```\n")
		out.WriteString(strings.Repeat("\n", blanks))
		inBlock, blanks = false, 0
	}

	for {
		line, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) > 0 {
			trimmed := bytes.TrimSpace(line)
			switch {
			case bytes.HasPrefix(trimmed, []byte("!highlight")):
				if inBlock {
					closeBlock()
				}
				lang = strings.TrimSpace(string(trimmed[len("!highlight"):]))
			case len(trimmed) == 0 && inBlock:
				blanks++
			case len(trimmed) == 0:
				out.Write(line)
			case isIndentedCode(line) && (inBlock || lang != ""):
				if !inBlock {
					out.WriteString("```" + lang + "\n")
					inBlock, lang = true, ""
				}
				out.WriteString(strings.Repeat("\n", blanks))
				blanks = 0
				code := dedent(line)
				out.Write(code)
				if !bytes.HasSuffix(code, []byte("\n")) {
					out.WriteByte('\n')
				}
			default:
				if inBlock {
					closeBlock()
				}
				lang = ""
				out.Write(line)
			}
		}
		if err == io.EOF {
			break
		}
	}
	if inBlock {
		closeBlock()
	}
	return out.Bytes(), nil
}

// highlight resolves `!highlight` directives in markdown files and adds the
// stylesheet for the highlighted code the markdown stage renders.
func highlight() Stage {
	return Stage{
		Name: "highlight",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			for _, name := range files.Paths() {
				if !isMarkdown(name) {
					continue
				}
				out, err := expandHighlightDirectives(files[name].Contents)
				if err != nil {
					return nil, errors.Wrap(err, name)
				}
				files[name].Contents = out
			}

			if _, exists := files[highlightCSS]; exists {
				b.Log.Debug("Keeping site highlight stylesheet", slog.String("file", highlightCSS))
				return files, nil
			}
			var css bytes.Buffer
			if err := codeFormatter.WriteCSS(&css, codeStyle); err != nil {
				return nil, errors.Wrap(err, "writing highlight stylesheet")
			}
			files[highlightCSS] = newFile(css.Bytes(), nil)
			return files, nil
		},
	}
}
