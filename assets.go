package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
)

// assets copies a directory into the output untouched. The copy happens
// when the build is written, after every stage succeeded.
func assets(source, destination string) Stage {
	return Stage{
		Name: "assets",
		Run: func(_ context.Context, b *Build, files Files) (Files, error) {
			info, err := os.Stat(source)
			if os.IsNotExist(err) {
				b.Log.Warn("Assets directory missing, skipping", slog.String("dir", source))
				return files, nil
			}
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				return nil, errors.Errorf("assets source %s is not a directory", source)
			}
			b.copyDir(source, destination)
			return files, nil
		},
	}
}

// ignore drops files matching any of the patterns from the output.
func ignore(ps patterns) Stage {
	return Stage{
		Name: "ignore",
		Run: func(_ context.Context, _ *Build, files Files) (Files, error) {
			for _, name := range files.Paths() {
				if ps.Match(name) {
					delete(files, name)
				}
			}
			return files, nil
		},
	}
}
