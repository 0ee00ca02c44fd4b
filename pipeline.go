package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// StageFunc transforms the file set. It may mutate files in place and return
// the same set, or return a new one.
type StageFunc func(ctx context.Context, b *Build, files Files) (Files, error)

// Stage is one named step of the pipeline.
type Stage struct {
	Name string
	Run  StageFunc
}

// dirCopy is a directory copied verbatim into the output at write time.
type dirCopy struct {
	src, dest string
}

// Build is the state of a single pipeline run.
type Build struct {
	ID   string
	Meta Metadata
	Log  *slog.Logger

	copies []dirCopy
}

func newBuild(global Metadata) *Build {
	id := uuid.NewString()
	b := &Build{
		ID:   id,
		Meta: Metadata{},
		Log:  slog.Default().With(slog.String("build_id", id)),
	}
	patchMetadata(b.Meta, global)
	return b
}

// copyDir schedules src to be copied to dest (relative to the output
// directory) once every stage has succeeded.
func (b *Build) copyDir(src, dest string) {
	b.copies = append(b.copies, dirCopy{src: src, dest: dest})
}

// Pipeline runs stages over the files of a source directory and writes the
// result to a destination directory.
type Pipeline struct {
	Source      string
	Destination string
	Clean       bool
	// ReadConcurrency bounds parallel source reads.
	ReadConcurrency int

	global  Metadata
	stages  []Stage
	metrics *buildMetrics
}

func newPipeline(source, destination string, global Metadata) *Pipeline {
	return &Pipeline{
		Source:          source,
		Destination:     destination,
		Clean:           true,
		ReadConcurrency: 8,
		global:          global,
	}
}

// Use appends stages; they run in the order they were added.
func (p *Pipeline) Use(stages ...Stage) *Pipeline {
	p.stages = append(p.stages, stages...)
	return p
}

// Stages returns the registered stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Process runs every stage in order over files. The global record is merged
// into the build context before each stage, so a stage that replaces
// b.Meta cannot drop it. The first failing stage aborts the run.
func (p *Pipeline) Process(ctx context.Context, b *Build, files Files) (Files, error) {
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if b.Meta == nil {
			b.Meta = Metadata{}
		}
		patchMetadata(b.Meta, p.global)

		start := time.Now()
		out, err := s.Run(ctx, b, files)
		p.metrics.observeStage(s.Name, time.Since(start))
		if err != nil {
			return nil, errors.Wrapf(err, "stage %s", s.Name)
		}
		if out == nil {
			out = Files{}
		}
		b.Log.Debug("stage done", slog.String("stage", s.Name), slog.Int("files", len(out)),
			slog.Duration("took", time.Since(start)))
		files = out
	}
	return files, nil
}

// Run performs one complete build: read, process, write.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	b := newBuild(p.global)
	start := time.Now()
	defer func() { p.metrics.observeBuild(err, time.Since(start)) }()

	b.Log.Info("Building site", slog.String("source", p.Source), slog.String("destination", p.Destination))
	files, err := p.Read(ctx)
	if err != nil {
		return err
	}
	files, err = p.Process(ctx, b, files)
	if err != nil {
		return err
	}
	if err = p.Write(b, files); err != nil {
		return err
	}
	b.Log.Info("Site build complete", slog.Int("files", len(files)), slog.Duration("took", time.Since(start)))
	return nil
}

// Read loads every regular file under Source, parsing front matter.
func (p *Pipeline) Read(ctx context.Context) (Files, error) {
	var paths []string
	err := filepath.WalkDir(p.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking source")
	}

	records := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.ReadConcurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := readFile(path)
			if err != nil {
				return err
			}
			records[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	files := make(Files, len(paths))
	for i, path := range paths {
		rel, err := filepath.Rel(p.Source, path)
		if err != nil {
			return nil, errors.Wrapf(err, "relative path of %s", path)
		}
		files[filepath.ToSlash(rel)] = records[i]
	}
	return files, nil
}

func readFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	meta, body, err := parseFrontMatter(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	f := newFile(body, meta)
	f.Mode = info.Mode().Perm()
	return f, nil
}

// Write renders files into a staging directory beside Destination and swaps
// it in once everything succeeded, so a failed write leaves the previous
// output in place.
func (p *Pipeline) Write(b *Build, files Files) error {
	parent := filepath.Dir(p.Destination)
	if err := os.MkdirAll(parent, 0o775); err != nil {
		return errors.Wrap(err, "creating output parent")
	}
	staging, err := os.MkdirTemp(parent, ".sitesmith-"+b.ID[:8]+"-")
	if err != nil {
		return errors.Wrap(err, "creating staging directory")
	}
	defer os.RemoveAll(staging)

	for _, rel := range files.Paths() {
		f := files[rel]
		out := filepath.Join(staging, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(out), 0o775); err != nil {
			return errors.Wrapf(err, "writing %s", rel)
		}
		mode := f.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(out, f.Contents, mode); err != nil {
			return errors.Wrapf(err, "writing %s", rel)
		}
	}
	for _, c := range b.copies {
		b.Log.Info("Recursively copying", slog.String("from", c.src), slog.String("to", c.dest))
		if err := copy.Copy(c.src, filepath.Join(staging, filepath.FromSlash(c.dest))); err != nil {
			return errors.Wrapf(err, "copying %s", c.src)
		}
	}

	if !p.Clean {
		return errors.Wrap(copy.Copy(staging, p.Destination), "merging output")
	}
	if err := os.RemoveAll(p.Destination); err != nil {
		return errors.Wrap(err, "cleaning output")
	}
	return errors.Wrap(os.Rename(staging, p.Destination), "swapping output")
}
