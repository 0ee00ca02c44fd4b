package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testBuild() *Build {
	return newBuild(Metadata{"site": Metadata{"title": "Test Site", "url": "http://example.com/"}})
}

func runStage(t *testing.T, s Stage, b *Build, files Files) Files {
	t.Helper()
	out, err := s.Run(context.Background(), b, files)
	require.NoError(t, err)
	return out
}

func writeTree(t *testing.T, root string, tree map[string]string) {
	t.Helper()
	for name, content := range tree {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readOut(t *testing.T, root, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(b)
}
