package main

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// ErrBadPattern is returned when a stage is configured with an invalid glob.
var ErrBadPattern = errors.New("invalid pattern")

// Pattern is a compiled glob over slash-separated paths. `**` matches any
// number of segments, `*` matches within one segment.
type Pattern struct {
	glob string
}

func newPattern(glob string) (Pattern, error) {
	if glob == "" || !doublestar.ValidatePattern(glob) {
		return Pattern{}, errors.Wrapf(ErrBadPattern, "%q", glob)
	}
	return Pattern{glob: glob}, nil
}

func mustPattern(glob string) Pattern {
	p, err := newPattern(glob)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) Match(name string) bool {
	if p.glob == "" {
		return false
	}
	ok, _ := doublestar.Match(p.glob, name)
	return ok
}

func (p Pattern) String() string { return p.glob }

// patterns matches if any of its members does.
type patterns []Pattern

func newPatterns(globs ...string) (patterns, error) {
	out := make(patterns, 0, len(globs))
	for _, g := range globs {
		p, err := newPattern(g)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (ps patterns) Match(name string) bool {
	for _, p := range ps {
		if p.Match(name) {
			return true
		}
	}
	return false
}
