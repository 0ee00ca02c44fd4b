package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedMeta() Metadata {
	return Metadata{"site": Metadata{
		"url":       "http://example.com/",
		"title":     "Test Site",
		"author":    "Jane Doe",
		"authorUri": "http://example.com/about/",
	}}
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "http://example.com/post/a/", absoluteURL("http://example.com/", "/post/a/"))
	assert.Equal(t, "http://example.com/post/a/", absoluteURL("http://example.com", "post/a/"))
	assert.Equal(t, "http://example.com/", absoluteURL("http://example.com/", ""))
}

func TestRenderFeed(t *testing.T) {
	dated := newFile([]byte("<p>First post body</p>"), Metadata{
		keyTitle:   "First Post",
		keyDate:    "2020-05-01",
		keyPath:    "post/first/",
		keyExcerpt: "First post body",
		keyTags:    []any{"go"},
	})
	undated := newFile([]byte("<p>Undated</p>"), Metadata{keyTitle: "Undated Page", keyPath: "undated/"})

	xml, err := renderFeed(feedMeta(), []*File{dated, undated}, 20, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	out := string(xml)
	assert.Contains(t, out, "Test Site")
	assert.Contains(t, out, "First Post")
	assert.Contains(t, out, "http://example.com/post/first/")
	assert.NotContains(t, out, "Undated Page")
}

func TestFeedStageWritesDestination(t *testing.T) {
	b := newBuild(feedMeta())
	post := newFile([]byte("<p>Body</p>"), Metadata{keyTitle: "Only Post", keyDate: "2020-05-01", keyPath: "post/only/"})
	b.Meta["collections"] = Metadata{"posts": []*File{post}}

	out := runStage(t, feed(feedOptions{Collection: "posts", Destination: "index.xml", Limit: 20}), b, Files{})
	require.Contains(t, out, "index.xml")
	assert.Contains(t, string(out["index.xml"].Contents), "Only Post")
}

func TestRenderFeedWithoutAuthor(t *testing.T) {
	meta := Metadata{"site": Metadata{"url": "http://example.com/", "title": "Test Site"}}
	post := newFile([]byte("<p>Body</p>"), Metadata{keyTitle: "Post", keyDate: "2020-05-01", keyPath: "post/p/"})

	xml, err := renderFeed(meta, []*File{post}, 0, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, string(xml), "Test Site")
}
