package orchestrator

import (
	"testing"
)

func TestExtractRepoName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "/path/to/nights", expected: "nights"},
		{input: "https://example.com/user/nights.git", expected: "nights"},
		{input: "nights", expected: "nights"},
		{input: "/path/to/nights/", expected: "nights"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := extractRepoName(tt.input)
			if result != tt.expected {
				t.Errorf("extractRepoName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		location string
		expected Source
	}{
		{
			location: "https://github.com/Yates-Labs/nights",
			expected: Source{Kind: SourceGitHub, Location: "https://github.com/Yates-Labs/nights", Name: "nights", Owner: "Yates-Labs", Repo: "nights"},
		},
		{
			location: "git@github.com:Yates-Labs/nights.git",
			expected: Source{Kind: SourceGitHub, Location: "git@github.com:Yates-Labs/nights.git", Name: "nights", Owner: "Yates-Labs", Repo: "nights"},
		},
		{
			location: "https://github.com/Yates-Labs/nights/tree/main/corpus/bulaq",
			expected: Source{Kind: SourceGitHub, Location: "https://github.com/Yates-Labs/nights/tree/main/corpus/bulaq", Name: "nights", Owner: "Yates-Labs", Repo: "nights", Ref: "main", Path: "corpus/bulaq"},
		},
		{
			location: "https://gitlab.com/scholar/nights.git",
			expected: Source{Kind: SourceGit, Location: "https://gitlab.com/scholar/nights.git", Name: "nights"},
		},
		{
			location: "/srv/corpora/nights.git",
			expected: Source{Kind: SourceGit, Location: "/srv/corpora/nights.git", Name: "nights"},
		},
		{
			location: "./texts",
			expected: Source{Kind: SourceLocal, Location: "./texts", Name: "texts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			if got := DetectSource(tt.location); got != tt.expected {
				t.Errorf("DetectSource(%q) = %+v, want %+v", tt.location, got, tt.expected)
			}
		})
	}
}

func TestParseHostedGitURL(t *testing.T) {
	tests := []struct {
		url           string
		expectedOwner string
		expectedRepo  string
		expectedRef   string
		expectedPath  string
	}{
		{url: "https://github.com/owner/repo", expectedOwner: "owner", expectedRepo: "repo"},
		{url: "git@github.com:owner/repo.git", expectedOwner: "owner", expectedRepo: "repo"},
		{url: "https://github.com/owner/repo/", expectedOwner: "owner", expectedRepo: "repo"},
		{url: "github.com/owner/repo.git", expectedOwner: "owner", expectedRepo: "repo"},
		{url: "https://github.com/owner/repo/blob/v1/night.txt", expectedOwner: "owner", expectedRepo: "repo", expectedRef: "v1", expectedPath: "night.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo, ref, path := parseHostedGitURL(tt.url, "github.com")
			if owner != tt.expectedOwner || repo != tt.expectedRepo || ref != tt.expectedRef || path != tt.expectedPath {
				t.Errorf("parseHostedGitURL(%q) = %q, %q, %q, %q", tt.url, owner, repo, ref, path)
			}
		})
	}
}
