// Command sitesmith builds the engineering blog: markdown posts with front
// matter go through a fixed pipeline of stages (titles, drafts, read time,
// markdown, excerpts, collections, pagination, tags, permalinks, feed,
// layouts) and end up as a static site.
//
// You need to provide your own templates.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

var cli struct {
	Config  string `short:"c" help:"Site configuration file." default:"site.yaml" type:"path"`
	Prod    bool   `help:"Production build: drafts are never included and templates see site.prod."`
	Serve   bool   `help:"Serve the site on localhost:8080 and rebuild on changes."`
	Drafts  bool   `help:"Include articles with the 'draft' flag."`
	Verbose bool   `short:"v" help:"Enable debug logging."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("sitesmith"),
		kong.Description("Build the static site."),
	)

	logLevel := slog.LevelInfo
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("Build failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	conf, err := readConf(cli.Config)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	pipe, err := newSitePipeline(conf, buildOptions{
		Prod:       cli.Prod,
		Drafts:     cli.Drafts,
		LiveReload: cli.Serve,
	}, reg)
	if err != nil {
		return err
	}

	if err := pipe.Run(ctx); err != nil {
		return err
	}
	if !cli.Serve {
		return nil
	}

	hub := newReloadHub()
	rb := newRebuilder(pipe.Run, func(err error) {
		if err != nil {
			slog.Warn("rebuild failed", slog.Any("error", err))
			hub.Broadcast("error:" + strconv.FormatInt(time.Now().UnixNano(), 10))
			return
		}
		hub.Broadcast(strconv.FormatInt(time.Now().UnixNano(), 10))
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveSite(ctx, conf.OutDir, hub, reg) })
	g.Go(func() error {
		return watchSource(ctx, []string{conf.SourceDir, conf.TemplateDir, conf.AssetsDir}, rb)
	})
	err = g.Wait()
	rb.Wait()
	return err
}
