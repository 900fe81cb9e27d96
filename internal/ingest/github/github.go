// Package github reads corpus texts from a repository through the GitHub
// contents API.
package github

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/go-github/v77/github"

	"github.com/Yates-Labs/anar/internal/ingest"
)

// NewClient creates a GitHub API client, authenticated when token is set
func NewClient(token string) *github.Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// ReadTexts walks dir (recursively) at ref and returns matching files
// sorted by path. An empty ref uses the default branch.
func ReadTexts(ctx context.Context, client *github.Client, owner, repo, dir, ref string, opts ingest.Options) ([]ingest.Text, error) {
	source := fmt.Sprintf("github.com/%s/%s", owner, repo)
	var texts []ingest.Text
	if err := walk(ctx, client, owner, repo, dir, ref, source, opts, &texts); err != nil {
		return nil, err
	}
	sort.Slice(texts, func(i, j int) bool { return texts[i].Path < texts[j].Path })
	return texts, nil
}

func walk(ctx context.Context, client *github.Client, owner, repo, dir, ref, source string, opts ingest.Options, texts *[]ingest.Text) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	getOpts := &github.RepositoryContentGetOptions{Ref: ref}
	file, entries, _, err := client.Repositories.GetContents(ctx, owner, repo, dir, getOpts)
	if err != nil {
		return fmt.Errorf("failed to get contents of %q: %w", dir, err)
	}

	if file != nil {
		return appendFile(file, source, opts, texts)
	}

	// directory listings come back name-sorted; keep that order
	for _, entry := range entries {
		if opts.Full(len(*texts)) {
			return nil
		}
		switch entry.GetType() {
		case "dir":
			if err := walk(ctx, client, owner, repo, entry.GetPath(), ref, source, opts, texts); err != nil {
				return err
			}
		case "file":
			if !opts.Accepts(entry.GetPath()) {
				continue
			}
			if opts.MaxBytes > 0 && int64(entry.GetSize()) > opts.MaxBytes {
				continue
			}
			f, _, _, err := client.Repositories.GetContents(ctx, owner, repo, entry.GetPath(), getOpts)
			if err != nil {
				return fmt.Errorf("failed to get file %q: %w", entry.GetPath(), err)
			}
			if f == nil {
				continue
			}
			if err := appendFile(f, source, opts, texts); err != nil {
				return err
			}
		}
	}
	return nil
}

func appendFile(file *github.RepositoryContent, source string, opts ingest.Options, texts *[]ingest.Text) error {
	if !opts.Accepts(file.GetPath()) || opts.Full(len(*texts)) {
		return nil
	}
	content, err := file.GetContent()
	if err != nil {
		return fmt.Errorf("failed to decode %q: %w", file.GetPath(), err)
	}
	*texts = append(*texts, ingest.Text{
		Path:    file.GetPath(),
		Title:   ingest.TitleFromPath(file.GetPath()),
		Content: content,
		Source:  source,
	})
	return nil
}
