package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pagination is stored under `pagination` on every generated page.
type Pagination struct {
	Num      int
	Files    []*File
	Pages    []*File
	Next     *File
	Previous *File
}

func (p *Pagination) First() *File { return p.Pages[0] }
func (p *Pagination) Last() *File  { return p.Pages[len(p.Pages)-1] }

type paginationOptions struct {
	Collection string
	PerPage    int
	Layout     string
	// First is where page one goes, e.g. "posts/index.html".
	First string
	// NoPageOne skips writing page one under Path.
	NoPageOne bool
	// Path is the page path template; ":num" is replaced by the page number.
	Path string
	// Meta is copied onto each generated page.
	Meta Metadata
}

func chunk(files []*File, size int) [][]*File {
	if size <= 0 {
		size = len(files)
	}
	var out [][]*File
	for i := 0; i < len(files); i += size {
		out = append(out, files[i:min(i+size, len(files))])
	}
	return out
}

// pageSet creates the page files for members, named by pathFor(num).
// Page one is also written at first when that is set. Existing paths are
// never overwritten.
func pageSet(files Files, members []*File, perPage int, meta Metadata, pathFor func(int) string, first string, noPageOne bool) error {
	chunks := chunk(members, perPage)
	if len(chunks) == 0 {
		chunks = [][]*File{nil}
	}
	pages := make([]*File, len(chunks))
	for i := range chunks {
		pages[i] = newFile(nil, meta.Clone())
	}
	for i, c := range chunks {
		pg := &Pagination{Num: i + 1, Files: c, Pages: pages}
		if i > 0 {
			pg.Previous = pages[i-1]
		}
		if i < len(pages)-1 {
			pg.Next = pages[i+1]
		}
		pages[i].Meta[keyPagination] = pg
	}

	add := func(p string, f *File) error {
		if _, exists := files[p]; exists {
			return errors.Wrapf(ErrPathConflict, "page %s already exists", p)
		}
		files[p] = f
		return nil
	}
	for i, page := range pages {
		num := i + 1
		if num == 1 && first != "" {
			if err := add(first, page); err != nil {
				return err
			}
			if noPageOne {
				continue
			}
			page = &File{Contents: nil, Meta: page.Meta.Clone(), Mode: page.Mode}
			page.Meta[keyPagination] = pages[0].Meta[keyPagination]
		}
		if err := add(pathFor(num), page); err != nil {
			return err
		}
	}
	return nil
}

// paginate splits a collection over generated listing pages.
func paginate(opts paginationOptions) Stage {
	return Stage{
		Name: "pagination",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			members := collectionFiles(b.Meta, opts.Collection)
			meta := opts.Meta.Clone()
			if meta == nil {
				meta = Metadata{}
			}
			if opts.Layout != "" {
				meta[keyLayout] = opts.Layout
			}
			pathFor := func(num int) string {
				return strings.ReplaceAll(opts.Path, ":num", strconv.Itoa(num))
			}
			err := pageSet(files, members, opts.PerPage, meta, pathFor, opts.First, opts.NoPageOne)
			return files, errors.Wrapf(err, "paginating %s", opts.Collection)
		},
	}
}
