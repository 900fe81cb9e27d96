// Package local reads corpus texts from the filesystem.
package local

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Yates-Labs/anar/internal/ingest"
)

// ReadTexts reads a single file, or every accepted file under a directory,
// sorted by path. A single file is read regardless of its extension.
func ReadTexts(root string, opts ingest.Options) ([]ingest.Text, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	if !info.IsDir() {
		text, err := readFile(root, filepath.Base(root), root)
		if err != nil {
			return nil, err
		}
		return []ingest.Text{text}, nil
	}

	var texts []ingest.Text
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if opts.Full(len(texts)) {
			return filepath.SkipAll
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !opts.Accepts(rel) {
			return nil
		}
		if opts.MaxBytes > 0 {
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if fi.Size() > opts.MaxBytes {
				return nil
			}
		}

		text, err := readFile(p, rel, root)
		if err != nil {
			return err
		}
		texts = append(texts, text)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(texts, func(i, j int) bool { return texts[i].Path < texts[j].Path })
	return texts, nil
}

func readFile(p, rel, source string) (ingest.Text, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return ingest.Text{}, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return ingest.Text{
		Path:    rel,
		Title:   ingest.TitleFromPath(rel),
		Content: string(data),
		Source:  source,
	}, nil
}
