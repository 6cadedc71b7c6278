package classifier

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxbolgarin/commitminer/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	result model.Classification
	err    error
	calls  int
}

func (f *fakeAnalyzer) ClassifyCommit(context.Context, string) (model.Classification, error) {
	f.calls++
	return f.result, f.err
}

func TestDelegatedUsesAnalyzer(t *testing.T) {
	analyzer := &fakeAnalyzer{result: model.Classification{Category: model.CategoryDeadlock, Confidence: 0.8}}
	d := NewDelegated(analyzer, nil)

	got := d.Classify(context.Background(), "fix memory leak in buffer alloc")
	assert.Equal(t, model.CategoryDeadlock, got.Category)
	assert.Equal(t, model.SourceAgent, got.Source)
	assert.Equal(t, 1, analyzer.calls)

	calls, fallbacks := d.Stats()
	assert.Equal(t, 1, calls)
	assert.Zero(t, fallbacks)
	assert.Equal(t, "agent", d.Name())
}

func TestDelegatedFallback(t *testing.T) {
	tests := []struct {
		name     string
		analyzer *fakeAnalyzer
	}{
		{name: "service error", analyzer: &fakeAnalyzer{err: errors.New("timeout")}},
		{name: "context deadline", analyzer: &fakeAnalyzer{err: context.DeadlineExceeded}},
		{name: "out of taxonomy", analyzer: &fakeAnalyzer{result: model.Classification{Category: "Cosmic Ray"}}},
		{name: "empty category", analyzer: &fakeAnalyzer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDelegated(tt.analyzer, nil)

			got := d.Classify(context.Background(), "fix memory leak in buffer alloc")
			assert.Equal(t, model.CategoryMemoryLeak, got.Category)
			assert.Equal(t, model.SourceKeyword, got.Source)

			_, fallbacks := d.Stats()
			assert.Equal(t, 1, fallbacks)
		})
	}
}

func TestDelegatedSkipsEmptyMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{result: model.Classification{Category: model.CategoryDeadlock}}
	d := NewDelegated(analyzer, nil)

	got := d.Classify(context.Background(), "  \n")
	assert.Equal(t, model.CategoryNonBugFix, got.Category)
	assert.Zero(t, analyzer.calls)
}

func TestNewByMode(t *testing.T) {
	analyzer := &fakeAnalyzer{}

	c, err := New(Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Keyword{}, c)

	c, err = New(Config{}, analyzer)
	require.NoError(t, err)
	assert.IsType(t, &Delegated{}, c)

	c, err = New(Config{Mode: ModeKeyword}, analyzer)
	require.NoError(t, err)
	assert.IsType(t, &Keyword{}, c)

	_, err = New(Config{Mode: ModeAgent}, nil)
	assert.Error(t, err)

	_, err = New(Config{Mode: "magic"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid classifier mode: magic")
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - category: Deadlock
    keywords: [hang, stuck]
  - category: Memory Leak
    keywords:
      - leak
`), 0o600))

	c, err := New(Config{Mode: ModeKeyword, RulesFile: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryMemoryLeak, c.Classify(context.Background(), "process stuck and leak").Category)
	assert.Equal(t, model.CategoryDeadlock, c.Classify(context.Background(), "worker hang").Category)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("rules: []\n"), 0o600))
	_, err = LoadRules(empty)
	assert.Error(t, err)
}
