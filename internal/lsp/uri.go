package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// URIForPath returns the file:// URI of path, made absolute first. Volume
// paths gain the leading slash LSP clients expect ("C:/x" -> "/C:/x").
func URIForPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}
