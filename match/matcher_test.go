package match

import (
	"context"
	"errors"
	"testing"

	"github.com/occlab/nocmatch/ai"
	"github.com/occlab/nocmatch/ai/mock"
	"github.com/occlab/nocmatch/core"
	"github.com/occlab/nocmatch/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIndex builds a tiny two-dimensional index with hand-picked
// vectors so every cosine in the tests is exact.
func testIndex() *index.Index {
	return &index.Index{
		Dim: 2,
		Entities: []core.Entity{
			{
				Code:        "1111",
				Title:       "Software developers",
				Description: "Write and maintain software.",
				Duties:      []string{"Develop software", "Manage projects"},
			},
			{
				Code:        "2222",
				Title:       "Cooks",
				Description: "Prepare meals.",
				Duties:      []string{"Cook meals"},
			},
			{
				Code:        "3333",
				Title:       "Legislators",
				Description: "Enact laws.",
			},
		},
		Profiles: [][]float32{
			{1, 0},
			{0, 1},
			{1, 1},
		},
		DutyTexts: []string{"Develop software", "Manage projects", "Cook meals"},
		DutyRefs: []core.DutyRef{
			{Entity: 0, Position: 0},
			{Entity: 0, Position: 1},
			{Entity: 1, Position: 0},
		},
		Duties: [][]float32{
			{1, 0},
			{0, 1},
			{-1, 0},
		},
	}
}

const testDescription = "Develop software applications. Manage project timelines."

// testEmbedder returns fixed vectors per text, orthogonal to
// everything for unknown texts.
func testEmbedder() *mock.MockEmbedder {
	vectors := map[string][]float32{
		testDescription:                 {1, 0},
		"Develop software applications": {1, 0},
		"Manage project timelines":      {0, 1},
	}
	m := mock.NewMockEmbedder()
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			v, ok := vectors[text]
			if !ok {
				v = []float32{0, 0}
			}
			out[i] = v
		}
		return out, nil
	}
	return m
}

func TestNewMatcher(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		m, err := NewMatcher(testIndex(), testEmbedder())
		require.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewMatcher(nil, testEmbedder())
		assert.Equal(t, ErrIndexRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewMatcher(testIndex(), nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("corrupt index", func(t *testing.T) {
		idx := testIndex()
		idx.Profiles = idx.Profiles[:1]
		_, err := NewMatcher(idx, testEmbedder())
		assert.ErrorIs(t, err, core.ErrCorruptIndex)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewMatcher(testIndex(), testEmbedder(), WithWeights(-1, 0.5))
		assert.Error(t, err)
		_, err = NewMatcher(testIndex(), testEmbedder(), WithTopDuties(0))
		assert.Error(t, err)
	})
}

func TestMatch(t *testing.T) {
	ctx := context.Background()
	m, err := NewMatcher(testIndex(), testEmbedder())
	require.NoError(t, err)

	results, err := m.Match(ctx, testDescription, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	t.Run("ranking", func(t *testing.T) {
		assert.Equal(t, "1111", results[0].Entity.Code)
		assert.Equal(t, "3333", results[1].Entity.Code)
		assert.Equal(t, "2222", results[2].Entity.Code)
	})

	t.Run("duty explanations", func(t *testing.T) {
		top := results[0]
		require.Len(t, top.MatchedDuties, 2)
		assert.Equal(t, "Develop software", top.MatchedDuties[0].Duty)
		assert.Equal(t, "Develop software applications", top.MatchedDuties[0].Segment)
		assert.InDelta(t, 1.0, top.MatchedDuties[0].Score, 1e-6)
		assert.Equal(t, "Manage projects", top.MatchedDuties[1].Duty)
		assert.Equal(t, "Manage project timelines", top.MatchedDuties[1].Segment)

		// The cook duty points away from both segments and must not
		// appear anywhere.
		assert.Empty(t, results[2].MatchedDuties)
	})

	t.Run("scores", func(t *testing.T) {
		assert.InDelta(t, 1.0, results[0].OverallScore, 1e-6)
		assert.InDelta(t, 1.0, results[0].DutyScore, 1e-6)
		assert.InDelta(t, 1.0, results[0].CombinedScore, 1e-6)

		// Entities without retained duties score on profile similarity
		// alone.
		assert.Zero(t, results[1].DutyScore)
		assert.InDelta(t, 0.4*float64(results[1].OverallScore), float64(results[1].CombinedScore), 1e-6)
	})

	t.Run("combined is the weighted sum", func(t *testing.T) {
		for _, r := range results {
			want := DefaultProfileWeight*r.OverallScore + DefaultDutyWeight*r.DutyScore
			assert.InDelta(t, float64(want), float64(r.CombinedScore), 1e-6)
		}
	})

	t.Run("keywords from the description", func(t *testing.T) {
		assert.Equal(t,
			[]string{"develop", "software", "applications", "manage", "project", "timelines"},
			results[0].Keywords)
	})

	t.Run("idempotent", func(t *testing.T) {
		again, err := m.Match(ctx, testDescription, 10)
		require.NoError(t, err)
		assert.Equal(t, results, again)
	})
}

func TestMatch_TopK(t *testing.T) {
	ctx := context.Background()
	m, err := NewMatcher(testIndex(), testEmbedder())
	require.NoError(t, err)

	t.Run("truncates to K", func(t *testing.T) {
		results, err := m.Match(ctx, testDescription, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "1111", results[0].Entity.Code)
	})

	t.Run("clamps K to the entity count", func(t *testing.T) {
		results, err := m.Match(ctx, testDescription, 100)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})
}

func TestMatch_InputErrors(t *testing.T) {
	ctx := context.Background()
	embedder := testEmbedder()
	m, err := NewMatcher(testIndex(), embedder)
	require.NoError(t, err)

	t.Run("bad K", func(t *testing.T) {
		_, err := m.Match(ctx, testDescription, 0)
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})

	t.Run("blank description", func(t *testing.T) {
		_, err := m.Match(ctx, "   \n\t  ", 10)
		assert.ErrorIs(t, err, ErrEmptyDescription)
	})

	t.Run("rejected before any embedding call", func(t *testing.T) {
		assert.Zero(t, embedder.CallCount())
	})
}

func TestMatch_EmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, ai.ErrEmbedding
	}

	m, err := NewMatcher(testIndex(), embedder)
	require.NoError(t, err)

	_, err = m.Match(ctx, testDescription, 10)
	assert.ErrorIs(t, err, ai.ErrEmbedding)
}

func TestMatch_NoSegments(t *testing.T) {
	// An input too short to segment still matches on profile
	// similarity; every duty score is 0.
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0}
		}
		return out, nil
	}

	m, err := NewMatcher(testIndex(), embedder)
	require.NoError(t, err)

	results, err := m.Match(ctx, "x. y. z.", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.Zero(t, r.DutyScore)
		assert.Empty(t, r.MatchedDuties)
		assert.InDelta(t, 0.4*float64(r.OverallScore), float64(r.CombinedScore), 1e-6)
	}
}

func TestMatch_ThresholdIsStrict(t *testing.T) {
	ctx := context.Background()

	t.Run("exactly at the threshold is excluded", func(t *testing.T) {
		m, err := NewMatcher(testIndex(), testEmbedder(), WithDutyThreshold(1.0))
		require.NoError(t, err)
		results, err := m.Match(ctx, testDescription, 10)
		require.NoError(t, err)
		// Both of the top entity's duties match a segment at exactly
		// 1.0, which does not exceed the threshold.
		for _, r := range results {
			assert.Empty(t, r.MatchedDuties)
			assert.Zero(t, r.DutyScore)
		}
	})

	t.Run("just above the threshold is included", func(t *testing.T) {
		m, err := NewMatcher(testIndex(), testEmbedder(), WithDutyThreshold(0.999))
		require.NoError(t, err)
		results, err := m.Match(ctx, testDescription, 10)
		require.NoError(t, err)
		require.Len(t, results[0].MatchedDuties, 2)
	})
}

func TestMatch_StableTieOrder(t *testing.T) {
	ctx := context.Background()
	idx := &index.Index{
		Dim: 2,
		Entities: []core.Entity{
			{Code: "aaa", Title: "A", Description: "a"},
			{Code: "bbb", Title: "B", Description: "b"},
			{Code: "ccc", Title: "C", Description: "c"},
		},
		Profiles: [][]float32{{1, 0}, {1, 0}, {1, 0}},
	}

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{1, 0}
		}
		return out, nil
	}

	m, err := NewMatcher(idx, embedder)
	require.NoError(t, err)

	results, err := m.Match(ctx, "Manage identical candidates fairly.", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "aaa", results[0].Entity.Code)
	assert.Equal(t, "bbb", results[1].Entity.Code)
	assert.Equal(t, "ccc", results[2].Entity.Code)
}

func TestTopAverage(t *testing.T) {
	duties := func(scores ...float32) []core.MatchedDuty {
		out := make([]core.MatchedDuty, len(scores))
		for i, s := range scores {
			out[i] = core.MatchedDuty{Score: s}
		}
		return out
	}

	t.Run("averages the top five of seven", func(t *testing.T) {
		got := topAverage(duties(0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.35), 5)
		assert.InDelta(t, 0.70, got, 1e-6)
	})

	t.Run("fewer duties than the cap", func(t *testing.T) {
		got := topAverage(duties(0.8, 0.6), 5)
		assert.InDelta(t, 0.70, got, 1e-6)
	})

	t.Run("no duties", func(t *testing.T) {
		assert.Zero(t, topAverage(nil, 5))
	})
}

type recordingMonitor struct {
	started     string
	segments    []string
	matched     int
	resultCount int
}

func (r *recordingMonitor) Start(description string)       { r.started = description }
func (r *recordingMonitor) AfterSegmentation(s []string)   { r.segments = s }
func (r *recordingMonitor) AfterDutyMatching(m map[int][]core.MatchedDuty) {
	for _, duties := range m {
		r.matched += len(duties)
	}
}
func (r *recordingMonitor) Finish(results []*core.MatchResult) { r.resultCount = len(results) }

func TestMatchWithMonitor(t *testing.T) {
	ctx := context.Background()
	m, err := NewMatcher(testIndex(), testEmbedder())
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	_, err = m.MatchWithMonitor(ctx, testDescription, 2, monitor)
	require.NoError(t, err)

	assert.Equal(t, testDescription, monitor.started)
	assert.Equal(t, []string{
		"Develop software applications",
		"Manage project timelines",
	}, monitor.segments)
	assert.Equal(t, 2, monitor.matched)
	assert.Equal(t, 2, monitor.resultCount)
}

func TestMatch_EmbedderErrorPropagation(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	wrapped := errors.New("connection refused")
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, wrapped
	}

	m, err := NewMatcher(testIndex(), embedder)
	require.NoError(t, err)

	_, err = m.Match(ctx, testDescription, 10)
	assert.ErrorIs(t, err, wrapped)
}
