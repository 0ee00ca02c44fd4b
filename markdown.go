package main

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/russross/blackfriday/v2"
)

const htmlFlags = blackfriday.UseXHTML |
	blackfriday.Smartypants |
	blackfriday.SmartypantsFractions |
	blackfriday.SmartypantsLatexDashes

const extensions = blackfriday.NoIntraEmphasis |
	blackfriday.Tables |
	blackfriday.FencedCode |
	blackfriday.Autolink |
	blackfriday.Strikethrough |
	blackfriday.SpaceHeadings |
	blackfriday.HeadingIDs

// renderMarkdown converts markdown to html with highlighted code blocks.
// The html renderer keeps state between calls, so each document gets its own.
func renderMarkdown(in []byte) []byte {
	r := newHighlightRenderer(blackfriday.HTMLRendererParameters{Flags: htmlFlags})
	return blackfriday.Run(in, blackfriday.WithRenderer(r), blackfriday.WithExtensions(extensions))
}

func isMarkdown(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// markdown renders every markdown file and renames it to .html. A source
// html file already at the new name is a conflict.
func markdown() Stage {
	return Stage{
		Name: "markdown",
		Run: func(_ context.Context, _ *Build, files Files) (Files, error) {
			for _, name := range files.Paths() {
				if !isMarkdown(name) {
					continue
				}
				target := replaceExt(name, ".html")
				if _, taken := files[target]; taken {
					return nil, errors.Wrapf(ErrPathConflict, "rendering %s would replace %s", name, target)
				}
				f := files[name]
				f.Contents = renderMarkdown(f.Contents)
				delete(files, name)
				files[target] = f
			}
			return files, nil
		},
	}
}
