package main

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const defaultExcerptLength = 250

// moreMarker ends a hand-picked excerpt, e.g. `<!-- more -->`.
var moreMarker = regexp.MustCompile(`<!--\s*more\s*-->`)

type excerptOptions struct {
	Pattern Pattern
	// MaxLength is counted in runes.
	MaxLength int
	// Ellipsis is appended when the text was cut.
	Ellipsis string
}

// excerpt derives the teaser of a rendered html body. Text before a more
// marker is used when there is one, otherwise the first paragraph, otherwise
// the whole document. The result is cut at a word boundary.
func excerpt(contents []byte, maxLen int, ellipsis string) string {
	if len(contents) == 0 {
		return ""
	}
	var s string
	if loc := moreMarker.FindIndex(contents); loc != nil {
		s = htmlText(contents[:loc[0]])
	} else {
		s = leadText(contents)
	}
	return truncateWords(s, maxLen, ellipsis)
}

func leadText(contents []byte) string {
	doc, err := html.Parse(bytes.NewReader(contents))
	if err != nil {
		return ""
	}
	if p := findElement(doc, atom.P); p != nil {
		if s := nodeText(p); s != "" {
			return s
		}
	}
	return nodeText(doc)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// truncateWords shortens s to at most maxLen runes without splitting a word.
func truncateWords(s string, maxLen int, ellipsis string) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	cut := maxLen
	if isWordRune(runes[cut-1]) && isWordRune(runes[cut]) {
		// Back off to the start of the word that straddles the limit.
		for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
			cut--
		}
		if cut == 0 {
			// A single word longer than the limit.
			cut = maxLen
		}
	}
	out := strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
	return out + ellipsis
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' || r == '_'
}

// excerpts sets `excerpt` on matching files. An excerpt already present in
// the front matter is kept.
func excerpts(opts excerptOptions) Stage {
	if opts.MaxLength == 0 {
		opts.MaxLength = defaultExcerptLength
	}
	return Stage{
		Name: "excerpts",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			for _, name := range files.Matching(opts.Pattern) {
				f := files[name]
				if _, ok := f.Meta[keyExcerpt]; ok {
					continue
				}
				if !utf8.Valid(f.Contents) {
					b.Log.Warn("Not valid UTF-8, using an empty excerpt", slog.String("file", name))
					f.Meta[keyExcerpt] = ""
					continue
				}
				f.Meta[keyExcerpt] = excerpt(f.Contents, opts.MaxLength, opts.Ellipsis)
			}
			return files, nil
		},
	}
}
