package main

import (
	"cmp"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	atom "github.com/thomas11/atomgenerator"
)

type feedOptions struct {
	Collection  string
	Destination string
	Limit       int
}

// absoluteURL joins the site url and a page path.
func absoluteURL(base, rel string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}

func siteField(meta Metadata, key string) string {
	site, _ := asMetadata(meta["site"])
	return site.String(key)
}

func entryFor(siteURL string, f *File) *atom.Entry {
	e := &atom.Entry{
		Title:       f.Title(),
		Description: f.Meta.String(keyExcerpt),
		Link:        absoluteURL(siteURL, f.Path()),
		PubDate:     f.Date(),
		Content:     string(f.Contents),
	}
	for _, t := range tagsOf(f) {
		e.AddCategory(atom.Category{Term: t.String()})
	}
	return e
}

func renderFeed(meta Metadata, posts []*File, limit int, now time.Time) ([]byte, error) {
	siteURL := siteField(meta, "url")
	feed := atom.Feed{
		Title:   siteField(meta, "title"),
		Link:    absoluteURL(siteURL, ""),
		PubDate: now,
	}
	// An atom author needs a name; the site title stands in for a missing one.
	author := cmp.Or(siteField(meta, "author"), siteField(meta, "title"))
	if author != "" {
		feed.AddAuthor(atom.Author{
			Name: author,
			Uri:  cmp.Or(siteField(meta, "authorUri"), absoluteURL(siteURL, "")),
		})
	}

	n := 0
	for _, p := range posts {
		if limit > 0 && n == limit {
			break
		}
		if p.Date().IsZero() {
			continue
		}
		feed.AddEntry(entryFor(siteURL, p))
		n++
	}

	if errs := feed.Validate(); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "atom feed is not valid")
	}
	return feed.GenXml()
}

// feed writes an Atom feed of a collection. It runs before layouts so
// entries carry the bare article body.
func feed(opts feedOptions) Stage {
	return Stage{
		Name: "feed",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			posts := collectionFiles(b.Meta, opts.Collection)
			xml, err := renderFeed(b.Meta, posts, opts.Limit, time.Now())
			if err != nil {
				return nil, err
			}
			b.Log.Debug("Feed rendered", slog.String("file", opts.Destination), slog.Int("posts", len(posts)))
			files[opts.Destination] = newFile(xml, nil)
			return files, nil
		},
	}
}
