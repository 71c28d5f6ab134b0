// Package web holds the embedded single-page dashboard. The page is
// static; all data arrives through the JSON API.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the dashboard assets with index.html at the root.
func Handler() http.Handler {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(static))
}
