package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/anar/internal/ingest"
	"github.com/Yates-Labs/anar/internal/ingest/git"
	ghingest "github.com/Yates-Labs/anar/internal/ingest/github"
	"github.com/Yates-Labs/anar/internal/ingest/local"
)

// SourceKind identifies where a corpus is read from.
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceGit    SourceKind = "git"
	SourceGitHub SourceKind = "github"
)

// Source is a parsed corpus location.
type Source struct {
	Kind     SourceKind
	Location string
	Name     string
	Owner    string // github only
	Repo     string // github only
	Ref      string // github only
	Path     string // github only
}

// DetectSource classifies a corpus location. GitHub URLs may point into a
// tree, e.g. https://github.com/owner/repo/tree/main/nights.
func DetectSource(location string) Source {
	src := Source{Kind: SourceLocal, Location: location, Name: extractRepoName(location)}

	if strings.Contains(location, "github.com") {
		src.Kind = SourceGitHub
		src.Owner, src.Repo, src.Ref, src.Path = parseHostedGitURL(location, "github.com")
		src.Name = src.Repo
		return src
	}

	if isRemote(location) || strings.HasSuffix(location, ".git") {
		src.Kind = SourceGit
	}
	return src
}

// LoadCorpus reads every accepted text from src. The token is only used for
// GitHub sources and may be empty.
func LoadCorpus(ctx context.Context, src Source, token string, opts ingest.Options) ([]ingest.Text, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before loading corpus: %w", err)
	}

	switch src.Kind {
	case SourceLocal:
		return local.ReadTexts(src.Location, opts)
	case SourceGit:
		// Try to open as local repository first
		repo, err := git.OpenRepository(src.Location)
		if err != nil {
			repo, err = git.CloneRepository(src.Location)
			if err != nil {
				return nil, fmt.Errorf("failed to open or clone repository '%s': %w", src.Location, err)
			}
		}
		return git.ReadTexts(repo, src.Location, opts)
	case SourceGitHub:
		if src.Owner == "" || src.Repo == "" {
			return nil, fmt.Errorf("invalid GitHub location %q: expected owner/repo", src.Location)
		}
		client := ghingest.NewClient(token)
		return ghingest.ReadTexts(ctx, client, src.Owner, src.Repo, src.Path, src.Ref, opts)
	}
	return nil, fmt.Errorf("unsupported source kind: %s", src.Kind)
}

func isRemote(location string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git://", "git@"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

// extractRepoName extracts the repository name from a path or URL
func extractRepoName(repo string) string {
	repo = strings.TrimSuffix(repo, "/")

	name := repo
	if i := strings.LastIndex(repo, "/"); i >= 0 && i < len(repo)-1 {
		name = repo[i+1:]
	}

	return strings.TrimSuffix(name, ".git")
}

// parseHostedGitURL is a generic parser for hosted git services. It accepts
// HTTPS and SSH forms, with an optional /tree/<ref>/<path> or
// /blob/<ref>/<path> suffix.
func parseHostedGitURL(url, host string) (owner, repo, ref, path string) {
	// Remove protocol if present
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "git@")

	// Replace colon with slash for SSH URLs
	url = strings.Replace(url, ":", "/", 1)

	url = strings.TrimPrefix(url, host+"/")
	url = strings.TrimSuffix(url, "/")

	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return "", strings.TrimSuffix(url, ".git"), "", ""
	}

	owner, repo = parts[0], strings.TrimSuffix(parts[1], ".git")
	if len(parts) >= 4 && (parts[2] == "tree" || parts[2] == "blob") {
		ref = parts[3]
		path = strings.Join(parts[4:], "/")
	}
	return owner, repo, ref, path
}
