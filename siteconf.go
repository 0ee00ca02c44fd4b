package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type SiteConf struct {
	Author    string `yaml:"author"`
	AuthorURI string `yaml:"author_uri"`
	SiteURL   string `yaml:"site_url"`
	SiteTitle string `yaml:"site_title"`

	SourceDir   string `yaml:"source_dir"`
	AssetsDir   string `yaml:"assets_dir"`
	TemplateDir string `yaml:"template_dir"`
	OutDir      string `yaml:"out_dir"`

	ReadTimePattern string `yaml:"readtime_pattern"`
	WordsPerMinute  int    `yaml:"words_per_minute"`

	ExcerptPattern  string `yaml:"excerpt_pattern"`
	ExcerptLength   int    `yaml:"excerpt_length"`
	ExcerptEllipsis string `yaml:"excerpt_ellipsis"`

	PostsPattern string   `yaml:"posts_pattern"`
	PostsPerPage int      `yaml:"posts_per_page"`
	Ignore       []string `yaml:"ignore"`

	NumFrequentTags         int `yaml:"num_frequent_tags"`
	MinPostsForFrequentTags int `yaml:"min_posts_for_frequent_tags"`
}

// readConf loads the YAML site configuration. A .env file next to it is
// loaded first; SITE_URL and SITE_TITLE override the file.
func readConf(fileName string) (*SiteConf, error) {
	baseDir := filepath.Dir(fileName)
	if err := godotenv.Load(filepath.Join(baseDir, ".env")); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env")
	}

	rawConf, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "reading site configuration")
	}

	conf := SiteConf{}
	if err = yaml.Unmarshal(rawConf, &conf); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", fileName)
	}

	if v := os.Getenv("SITE_URL"); v != "" {
		conf.SiteURL = v
	}
	if v := os.Getenv("SITE_TITLE"); v != "" {
		conf.SiteTitle = v
	}

	conf.setDefaults()

	// Relative directories are relative to the config file, not the working directory.
	conf.SourceDir = normalizePath(conf.SourceDir, baseDir)
	conf.AssetsDir = normalizePath(conf.AssetsDir, baseDir)
	conf.TemplateDir = normalizePath(conf.TemplateDir, baseDir)
	conf.OutDir = normalizePath(conf.OutDir, baseDir)

	conf.OutDir, err = filepath.Abs(conf.OutDir)
	if err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *SiteConf) setDefaults() {
	if c.Author == "" {
		c.Author = c.SiteTitle
	}
	if c.AuthorURI == "" {
		c.AuthorURI = c.SiteURL
	}
	if c.SourceDir == "" {
		c.SourceDir = "contents"
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "assets"
	}
	if c.TemplateDir == "" {
		c.TemplateDir = "templates"
	}
	if c.OutDir == "" {
		c.OutDir = "output"
	}
	if c.ReadTimePattern == "" {
		c.ReadTimePattern = "post/**/*.md"
	}
	if c.WordsPerMinute == 0 {
		c.WordsPerMinute = defaultWordsPerMinute
	}
	if c.ExcerptPattern == "" {
		c.ExcerptPattern = "**/*.html"
	}
	if c.ExcerptLength == 0 {
		c.ExcerptLength = defaultExcerptLength
	}
	if c.PostsPattern == "" {
		c.PostsPattern = "post/**/*.html"
	}
	if c.PostsPerPage == 0 {
		c.PostsPerPage = 6
	}
	if c.Ignore == nil {
		c.Ignore = []string{"**/*.json"}
	}
	if c.NumFrequentTags == 0 {
		c.NumFrequentTags = 6
	}
	if c.MinPostsForFrequentTags == 0 {
		c.MinPostsForFrequentTags = 2
	}
}

// normalizePath resolves dir against the config file's directory.
func normalizePath(dir, baseDir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	resolved := filepath.Join(baseDir, dir)
	slog.Debug("Resolved config directory", slog.String("dir", dir), slog.String("path", resolved))
	return resolved
}
