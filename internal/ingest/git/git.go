package git

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/Yates-Labs/anar/internal/ingest"
)

var errStop = errors.New("stop")

// OpenRepository opens a Git repository from a local path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpen(path)
}

// CloneRepository clones a Git repository to memory
func CloneRepository(url string) (*git.Repository, error) {
	return git.Clone(memory.NewStorage(), nil, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
}

// ReadTexts reads corpus files from the tree at HEAD, sorted by path.
// Binary files and files over MaxBytes are skipped.
func ReadTexts(repo *git.Repository, source string, opts ingest.Options) ([]ingest.Text, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	var texts []ingest.Text
	err = tree.Files().ForEach(func(file *object.File) error {
		if opts.Full(len(texts)) {
			return errStop
		}
		if !opts.Accepts(file.Name) {
			return nil
		}
		if opts.MaxBytes > 0 && file.Size > opts.MaxBytes {
			return nil
		}
		if isBinary, _ := file.IsBinary(); isBinary {
			return nil
		}

		content, err := file.Contents()
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file.Name, err)
		}

		texts = append(texts, ingest.Text{
			Path:    file.Name,
			Title:   ingest.TitleFromPath(file.Name),
			Content: content,
			Source:  source,
		})
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, fmt.Errorf("failed to walk tree: %w", err)
	}

	sort.Slice(texts, func(i, j int) bool { return texts[i].Path < texts[j].Path })
	return texts, nil
}
