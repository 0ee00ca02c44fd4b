package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchMetadataRestoresDroppedKeys(t *testing.T) {
	global := Metadata{"site": Metadata{"title": "X"}}
	ctx := Metadata{"site": map[string]any{"url": "http://example.com/"}, "collections": Metadata{}}

	patchMetadata(ctx, global)

	site, ok := asMetadata(ctx["site"])
	require.True(t, ok)
	assert.Equal(t, "X", site["title"])
	assert.Equal(t, "http://example.com/", site["url"], "keys only in the context survive")
	assert.Contains(t, ctx, "collections")
}

func TestPatchMetadataGlobalWins(t *testing.T) {
	global := Metadata{"site": Metadata{"title": "X", "prod": true}, "version": 2}
	ctx := Metadata{"site": Metadata{"title": "Y"}, "version": "old"}

	patchMetadata(ctx, global)

	assert.Equal(t, Metadata{"site": Metadata{"title": "X", "prod": true}, "version": 2}, ctx)
}

func TestPatchMetadataIsIdempotent(t *testing.T) {
	global := Metadata{"site": Metadata{"title": "X", "nested": Metadata{"a": 1}}}
	ctx := Metadata{"other": "value"}

	patchMetadata(ctx, global)
	once := ctx.Clone()
	patchMetadata(ctx, global)

	assert.Equal(t, once, ctx)
}

func TestPatchMetadataDoesNotAliasGlobal(t *testing.T) {
	global := Metadata{"site": Metadata{"title": "X"}}
	ctx := Metadata{}

	patchMetadata(ctx, global)
	ctx["site"].(Metadata)["title"] = "changed"

	assert.Equal(t, "X", global["site"].(Metadata)["title"])
}

func TestMetadataPatchStage(t *testing.T) {
	global := Metadata{"site": Metadata{"title": "X"}}
	b := testBuild()
	b.Meta = nil
	files := Files{"a.html": newFile([]byte("a"), nil)}
	before := files.Clone()

	out, err := metadataPatch(global).Run(context.Background(), b, files)
	require.NoError(t, err)
	assert.Equal(t, "X", b.Meta["site"].(Metadata)["title"])
	assert.Equal(t, before, out)
}
