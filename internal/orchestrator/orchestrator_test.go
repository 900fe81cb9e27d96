package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/ingest"
	"github.com/Yates-Labs/anar/internal/narrative"
	"github.com/Yates-Labs/anar/internal/rules"
	"github.com/Yates-Labs/anar/internal/store/sqlite"
)

const nestedTale = "فقال الملك: حدثني الوزير قائلاً: سمعت من التاجر"

func newTestPipeline(t *testing.T, opts ...narrative.Option) *Pipeline {
	t.Helper()
	set, err := rules.Default()
	require.NoError(t, err)
	return NewPipeline(arabic.NewProcessor(), narrative.NewAnalyzer(set, opts...), zaptest.NewLogger(t))
}

func TestAnalyzeBatch_OrderAndIsolation(t *testing.T) {
	defer goleak.VerifyNone(t)

	texts := []ingest.Text{
		{Title: "tale", Content: nestedTale},
		{Title: "empty", Content: ""},
		{Title: "latin", Content: "hello world"},
		{Title: "broken", Content: "قال: وقال: وقال:"},
		{Content: "السلام عليكم يا مولاي"},
	}

	results, err := newTestPipeline(t).AnalyzeBatch(context.Background(), texts, BatchOptions{Workers: 2, BatchSize: 2})
	require.NoError(t, err)
	require.Len(t, results, len(texts))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}

	require.NoError(t, results[0].Err)
	assert.Equal(t, 3, results[0].Structure.FrameLevel)
	assert.Equal(t, "tale", results[0].Structure.Title)

	assert.Nil(t, results[1].Structure)
	assert.ErrorIs(t, results[1].Err, engine.ErrEmptyText)
	assert.Equal(t, engine.CodeInvalidInput, engine.Classify(results[1].Err))

	assert.Nil(t, results[2].Structure)
	assert.ErrorIs(t, results[2].Err, engine.ErrNonArabicText)
	assert.False(t, errors.Is(results[2].Err, engine.ErrEmptyText))

	assert.Nil(t, results[3].Structure)
	assert.Equal(t, engine.CodeMalformedStructure, engine.Classify(results[3].Err))
	var docErr *engine.DocumentError
	require.ErrorAs(t, results[3].Err, &docErr)
	assert.NotEmpty(t, docErr.DocumentID)

	require.NoError(t, results[4].Err)
	assert.Equal(t, "السلام عليكم يا مولاي", results[4].Title)

	assert.Len(t, Structures(results), 2)
}

func TestAnalyzeBatch_MatchesSingleDocument(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := newTestPipeline(t)
	texts := make([]ingest.Text, 20)
	for i := range texts {
		texts[i] = ingest.Text{Content: nestedTale}
	}

	single, err := p.AnalyzeText(context.Background(), texts[0])
	require.NoError(t, err)

	results, err := p.AnalyzeBatch(context.Background(), texts, BatchOptions{Workers: 8, BatchSize: 5})
	require.NoError(t, err)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, single, r.Structure)
	}
}

func TestAnalyzeBatch_FrameOverflowKeepsStructure(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := newTestPipeline(t, narrative.WithMaxDepth(2))
	results, err := p.AnalyzeBatch(context.Background(), []ingest.Text{{Content: nestedTale}}, DefaultBatchOptions())
	require.NoError(t, err)

	r := results[0]
	assert.ErrorIs(t, r.Err, engine.ErrFrameOverflow)
	require.NotNil(t, r.Structure)
	assert.Empty(t, r.Structure.Frames)
	assert.Equal(t, engine.CodeFrameOverflow, r.Structure.Metadata.FrameError)
}

func TestAnalyzeBatch_Canceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	texts := []ingest.Text{{Content: nestedTale}, {Content: nestedTale}}
	results, err := newTestPipeline(t).AnalyzeBatch(ctx, texts, DefaultBatchOptions())

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Nil(t, r.Structure)
		assert.Equal(t, engine.CodeCanceled, engine.Classify(r.Err))
	}
}

func corpus(n int) []ingest.Text {
	texts := make([]ingest.Text, n)
	for i := range texts {
		texts[i] = ingest.Text{
			Title:   fmt.Sprintf("night %d", i),
			Content: nestedTale,
			Source:  fmt.Sprintf("nights/%03d.txt", i),
		}
	}
	return texts
}

func TestAnalyzeBatch_CheckpointSurvivesCancel(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "anar.db"))
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	opts := BatchOptions{
		Workers:   2,
		BatchSize: 2,
		OnBatch: func(ctx context.Context, results []DocumentResult) error {
			calls++
			if calls == 2 {
				// interrupt arrives while the second batch is being saved
				cancel()
			}
			return store.SaveAll(ctx, Structures(results))
		},
	}

	results, err := newTestPipeline(t).AnalyzeBatch(ctx, corpus(6), opts)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 6)
	assert.Equal(t, 2, calls)

	for _, r := range results[:4] {
		require.NoError(t, r.Err)
	}
	for _, r := range results[4:] {
		assert.Nil(t, r.Structure)
		assert.Equal(t, engine.CodeCanceled, engine.Classify(r.Err))
	}

	summaries, err := store.List(context.Background(), sqlite.ListOptions{})
	require.NoError(t, err)
	require.Len(t, summaries, 4)
	for i, sum := range summaries {
		assert.Equal(t, results[i].Structure.ID, sum.DocumentID)
	}
}

func TestAnalyzeBatch_CheckpointReceivesEachBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	var sizes []int
	opts := BatchOptions{Workers: 3, BatchSize: 2, OnBatch: func(_ context.Context, results []DocumentResult) error {
		sizes = append(sizes, len(results))
		return nil
	}}

	results, err := newTestPipeline(t).AnalyzeBatch(context.Background(), corpus(5), opts)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, []int{2, 2, 1}, sizes)
}

func TestAnalyzeBatch_CheckpointErrorStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	errDiskFull := errors.New("disk full")
	opts := BatchOptions{Workers: 1, BatchSize: 2, OnBatch: func(context.Context, []DocumentResult) error {
		return errDiskFull
	}}

	results, err := newTestPipeline(t).AnalyzeBatch(context.Background(), corpus(4), opts)
	require.ErrorIs(t, err, errDiskFull)
	require.Len(t, results, 4)
	require.NoError(t, results[0].Err)
	require.NoError(t, results[1].Err)
	assert.ErrorIs(t, results[2].Err, errDiskFull)
	assert.ErrorIs(t, results[3].Err, errDiskFull)
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	results, err := newTestPipeline(t).AnalyzeBatch(context.Background(), nil, BatchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLoadCorpus_Local(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001.txt"), []byte(nestedTale), 0o644))

	src := DetectSource(dir)
	require.Equal(t, SourceLocal, src.Kind)

	texts, err := LoadCorpus(context.Background(), src, "", ingest.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, texts, 1)
	assert.Equal(t, "001", texts[0].Title)
}

func TestLoadCorpus_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadCorpus(ctx, DetectSource(t.TempDir()), "", ingest.DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCorpus_InvalidGitHub(t *testing.T) {
	_, err := LoadCorpus(context.Background(), Source{Kind: SourceGitHub, Location: "github.com"}, "", ingest.DefaultOptions())
	assert.Error(t, err)
}

func TestLoadCorpus_GitHub(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GitHub API test in short mode")
	}

	texts, err := LoadCorpus(context.Background(), DetectSource("https://github.com/Yates-Labs/thunk"), os.Getenv("GITHUB_TOKEN"), ingest.Options{Extensions: []string{".md"}, MaxFiles: 1})
	if err != nil {
		t.Skipf("network unavailable: %v", err)
	}
	assert.LessOrEqual(t, len(texts), 1)
}
