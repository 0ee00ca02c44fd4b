package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const servePort = 8080

const liveReloadPath = "/livereload"

// liveReloadScript adds the reload client to every html page.
func liveReloadScript(port int) Stage {
	script := []byte(fmt.Sprintf(`<script>(function(){var ws=new WebSocket("ws://localhost:%d%s");`+
		`ws.onmessage=function(){location.reload();};})();</script>`, port, liveReloadPath))
	return Stage{
		Name: "livereload",
		Run: func(_ context.Context, _ *Build, files Files) (Files, error) {
			for _, name := range files.Paths() {
				if !isHTML(name) {
					continue
				}
				f := files[name]
				if i := bytes.LastIndex(f.Contents, []byte("</body>")); i >= 0 {
					out := make([]byte, 0, len(f.Contents)+len(script))
					out = append(out, f.Contents[:i]...)
					out = append(out, script...)
					f.Contents = append(out, f.Contents[i:]...)
				} else {
					f.Contents = append(f.Contents, script...)
				}
			}
			return files, nil
		},
	}
}

// reloadHub tells connected browsers to reload after a build.
type reloadHub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
}

func newReloadHub() *reloadHub {
	return &reloadHub{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

func (h *reloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("livereload upgrade failed", slog.Any("error", err))
		return
	}
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	// Block until the browser goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends msg to every connected browser.
func (h *reloadHub) Broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			slog.Debug("livereload write failed", slog.Any("error", err))
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

func newServeMux(dir string, hub *reloadHub, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(dir)))
	mux.Handle(liveReloadPath, hub)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// serveSite serves dir until ctx is cancelled.
func serveSite(ctx context.Context, dir string, hub *reloadHub, gatherer prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", servePort),
		Handler:           newServeMux(dir, hub, gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving site", slog.String("dir", dir), slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
