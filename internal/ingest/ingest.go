// Package ingest defines the corpus text record shared by all sources.
package ingest

import (
	"path"
	"strings"
)

// DefaultExtensions are the file extensions read as corpus text.
var DefaultExtensions = []string{".txt", ".md"}

// Text is one corpus document read from a source.
type Text struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Options controls which files a source reads.
type Options struct {
	Extensions []string
	MaxFiles   int   // 0 = unlimited
	MaxBytes   int64 // per file, 0 = unlimited
}

// DefaultOptions returns options reading .txt and .md files without limits.
func DefaultOptions() Options {
	return Options{Extensions: DefaultExtensions}
}

// Accepts reports whether a file path has one of the wanted extensions.
func (o Options) Accepts(p string) bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := strings.ToLower(path.Ext(p))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Full reports whether n files reach the MaxFiles limit.
func (o Options) Full(n int) bool {
	return o.MaxFiles > 0 && n >= o.MaxFiles
}

// TitleFromPath derives a document title from a file path.
func TitleFromPath(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
