package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveReloadScript(t *testing.T) {
	files := Files{
		"index.html":   newFile([]byte("<html><body><p>Hi</p></body></html>"), nil),
		"frag.html":    newFile([]byte("<p>Fragment</p>"), nil),
		"css/site.css": newFile([]byte("body{}"), nil),
	}
	out := runStage(t, liveReloadScript(servePort), testBuild(), files)

	page := string(out["index.html"].Contents)
	assert.True(t, strings.HasSuffix(page, "</script></body></html>"), page)
	assert.Contains(t, page, "ws://localhost:8080/livereload")
	assert.True(t, strings.HasPrefix(string(out["frag.html"].Contents), "<p>Fragment</p><script>"))
	assert.Equal(t, "body{}", string(out["css/site.css"].Contents))
}

func TestServeMux(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"index.html": "<p>home</p>"})
	reg := prometheus.NewRegistry()
	newBuildMetrics(reg).observeBuild(nil, 0)

	srv := httptest.NewServer(newServeMux(dir, newReloadHub(), reg))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestReloadHubBroadcast(t *testing.T) {
	hub := newReloadHub()
	srv := httptest.NewServer(newServeMux(t.TempDir(), hub, prometheus.NewRegistry()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+liveReloadPath, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.conns) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast("reload")
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "reload", string(msg))
}
