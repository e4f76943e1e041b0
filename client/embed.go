// Package client embeds the browser runtime of live views.
package client

import (
	"embed"
	"io/fs"
	"net/http"
)

// ScriptName is the runtime file served under /_live/.
const ScriptName = "live.js"

//go:embed src/*.js
var assets embed.FS

// Assets returns the embedded runtime files.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "src")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler serves the embedded runtime. Mount it behind http.StripPrefix.
func Handler() http.Handler {
	return http.FileServer(http.FS(Assets()))
}

// GetFile returns the contents of an embedded file.
func GetFile(name string) ([]byte, error) {
	return assets.ReadFile("src/" + name)
}
