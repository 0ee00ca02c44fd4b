package main

import (
	"context"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ErrPermalinkConflict is returned when two files would end up at one path.
var ErrPermalinkConflict = errors.New("permalink conflict")

// permalinkFor maps "post/hello.html" to "post/hello/index.html" and the
// url path "post/hello/". Index files keep their location.
func permalinkFor(name string) (target, urlPath string) {
	dir := path.Dir(name)
	base := path.Base(name)
	if base == "index.html" {
		target = name
	} else {
		dir = path.Join(dir, strings.TrimSuffix(base, path.Ext(base)))
		target = path.Join(dir, "index.html")
	}
	if dir == "." {
		return target, ""
	}
	return target, dir + "/"
}

// permalinks gives every html page a directory of its own and records the
// url path under `path`. Front matter `permalink: false` leaves a file where
// it is.
func permalinks() Stage {
	return Stage{
		Name: "permalinks",
		Run: func(_ context.Context, _ *Build, files Files) (Files, error) {
			out := make(Files, len(files))
			for _, name := range files.Paths() {
				f := files[name]
				target := name
				if isHTML(name) {
					if v, ok := f.Meta[keyPermalink].(bool); ok && !v {
						f.Meta[keyPath] = name
					} else {
						var urlPath string
						target, urlPath = permalinkFor(name)
						f.Meta[keyPath] = urlPath
					}
				}
				if _, taken := out[target]; taken {
					return nil, errors.Wrapf(ErrPermalinkConflict, "%s and another file both map to %s", name, target)
				}
				out[target] = f
			}
			return out, nil
		},
	}
}
