package main

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// defaultWordsPerMinute is the average adult silent reading speed used when
// no rate is configured.
const defaultWordsPerMinute = 200

type readTimeOptions struct {
	Pattern        Pattern
	WordsPerMinute int
}

// readTime returns the whole minutes needed to read words at wpm. Any
// non-empty text takes at least one minute; no words take zero.
func readTime(words, wpm int) int {
	if words <= 0 {
		return 0
	}
	if wpm <= 0 {
		wpm = defaultWordsPerMinute
	}
	return (words + wpm - 1) / wpm
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// readtime sets `readtime` (minutes, int) on files matching the pattern.
func readtime(opts readTimeOptions) Stage {
	if opts.WordsPerMinute <= 0 {
		opts.WordsPerMinute = defaultWordsPerMinute
	}
	return Stage{
		Name: "readtime",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			for _, name := range files.Matching(opts.Pattern) {
				f := files[name]
				if !utf8.Valid(f.Contents) {
					b.Log.Warn("Not valid UTF-8, read time set to zero", slog.String("file", name))
					f.Meta[keyReadTime] = 0
					continue
				}
				words := countWords(plainText(name, f.Contents))
				f.Meta[keyReadTime] = readTime(words, opts.WordsPerMinute)
			}
			return files, nil
		},
	}
}
