package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
)

type collectionOptions struct {
	Name    string
	Pattern Pattern
	// SortBy names the metadata key to order by; "date" compares parsed dates.
	SortBy  string
	Reverse bool
}

// memberOf reports whether the front matter lists the file in collection name.
func memberOf(f *File, name string) bool {
	switch v := f.Meta[keyCollection].(type) {
	case string:
		return v == name
	case []string:
		return slices.Contains(v, name)
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && s == name {
				return true
			}
		}
	}
	return false
}

func compareBy(key string) func(a, b *File) int {
	if key == "date" {
		return func(a, b *File) int { return a.Date().Compare(b.Date()) }
	}
	return func(a, b *File) int {
		return cmp.Compare(fmt.Sprint(a.Meta[key]), fmt.Sprint(b.Meta[key]))
	}
}

// collection gathers the files matching the pattern, plus the ones whose
// front matter names it, into `collections.<name>` of the build context.
func collection(opts collectionOptions) Stage {
	return Stage{
		Name: "collections",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			var members []*File
			for _, name := range files.Paths() {
				f := files[name]
				if opts.Pattern.Match(name) || memberOf(f, opts.Name) {
					members = append(members, f)
					if !memberOf(f, opts.Name) {
						f.Meta[keyCollection] = appendCollection(f.Meta[keyCollection], opts.Name)
					}
				}
			}
			if opts.SortBy != "" {
				less := compareBy(opts.SortBy)
				slices.SortStableFunc(members, less)
			}
			if opts.Reverse {
				slices.Reverse(members)
			}

			all, ok := asMetadata(b.Meta["collections"])
			if !ok {
				all = Metadata{}
			}
			all[opts.Name] = members
			b.Meta["collections"] = all
			return files, nil
		},
	}
}

func appendCollection(existing any, name string) any {
	switch v := existing.(type) {
	case string:
		return []any{v, name}
	case []any:
		return append(v, name)
	case []string:
		out := make([]any, 0, len(v)+1)
		for _, s := range v {
			out = append(out, s)
		}
		return append(out, name)
	}
	return []any{name}
}

// collectionFiles fetches a collection from the build context.
func collectionFiles(meta Metadata, name string) []*File {
	all, ok := asMetadata(meta["collections"])
	if !ok {
		return nil
	}
	files, _ := all[name].([]*File)
	return files
}
