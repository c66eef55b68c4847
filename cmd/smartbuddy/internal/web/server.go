// Package web serves the HTTP JSON API and the single-page front-end.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFiles embed.FS

// SetupMux wires handlers with the full middleware chain.
func SetupMux(eng Engine, log *slog.Logger) http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err) // embedded directory is fixed at build time
	}

	mux := http.NewServeMux()
	mux.Handle("GET /{$}", http.FileServerFS(static))
	mux.HandleFunc("GET /api/health", Health(eng))
	mux.HandleFunc("GET /api/languages", Languages(eng))
	mux.HandleFunc("POST /api/generate/{feature}", Generate(eng))
	mux.Handle("GET /metrics", promhttp.Handler())

	return Chain(mux, log)
}
