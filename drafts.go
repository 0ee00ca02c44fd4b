package main

import (
	"context"
	"log/slog"
)

// drafts drops files flagged `draft: true` unless include is set.
func drafts(include bool) Stage {
	return Stage{
		Name: "drafts",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			if include {
				return files, nil
			}
			for _, name := range files.Paths() {
				if files[name].Meta.Bool(keyDraft) {
					b.Log.Debug("Skipping draft", slog.String("file", name))
					delete(files, name)
				}
			}
			return files, nil
		},
	}
}
