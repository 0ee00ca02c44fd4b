package main

import (
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

type buildOptions struct {
	Prod   bool
	Drafts bool
	// LiveReload injects the reload client; only set while serving.
	LiveReload bool
}

// newSitePipeline wires the stages in the order the site depends on.
// Patterns and templates are checked here, before any file is read.
func newSitePipeline(conf *SiteConf, opts buildOptions, reg prometheus.Registerer) (*Pipeline, error) {
	readTimePattern, err := newPattern(conf.ReadTimePattern)
	if err != nil {
		return nil, err
	}
	excerptPattern, err := newPattern(conf.ExcerptPattern)
	if err != nil {
		return nil, err
	}
	postsPattern, err := newPattern(conf.PostsPattern)
	if err != nil {
		return nil, err
	}
	ignored, err := newPatterns(conf.Ignore...)
	if err != nil {
		return nil, err
	}
	layoutStage, err := layouts(layoutOptions{
		Directory: conf.TemplateDir,
		Default:   "default.html",
		Pattern:   mustPattern("**/*.html"),
	})
	if err != nil {
		return nil, err
	}

	global := newGlobalMetadata(conf, opts.Prod)
	p := newPipeline(conf.SourceDir, conf.OutDir, global)
	if reg != nil {
		p.metrics = newBuildMetrics(reg)
	}

	p.Use(
		titles(),
		metadataPatch(global),
		assets(conf.AssetsDir, filepath.Base(conf.AssetsDir)),
		drafts(opts.Drafts && !opts.Prod),
		readtime(readTimeOptions{Pattern: readTimePattern, WordsPerMinute: conf.WordsPerMinute}),
		highlight(),
		markdown(),
		typography(),
		excerpts(excerptOptions{Pattern: excerptPattern, MaxLength: conf.ExcerptLength, Ellipsis: conf.ExcerptEllipsis}),
		collection(collectionOptions{Name: "posts", Pattern: postsPattern, SortBy: "date", Reverse: true}),
		paginate(paginationOptions{
			Collection: "posts",
			PerPage:    conf.PostsPerPage,
			Layout:     "posts.html",
			First:      "posts/index.html",
			NoPageOne:  true,
			Path:       "posts/page/:num/index.html",
		}),
		tagPages(tagOptions{
			Handle:              "tags",
			Path:                "tags/:tag.html",
			PathPage:            "tags/:tag/:num/index.html",
			PerPage:             conf.PostsPerPage,
			Layout:              "tag.html",
			SortBy:              "date",
			Reverse:             true,
			NumFrequent:         conf.NumFrequentTags,
			MinPostsForFrequent: conf.MinPostsForFrequentTags,
		}),
		permalinks(),
		feed(feedOptions{Collection: "posts", Destination: "index.xml", Limit: 20}),
		layoutStage,
	)
	if opts.LiveReload {
		p.Use(liveReloadScript(servePort))
	}
	p.Use(ignore(ignored))
	return p, nil
}
