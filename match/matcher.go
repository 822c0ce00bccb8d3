// Copyright 2025 Occlab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/occlab/nocmatch/ai"
	"github.com/occlab/nocmatch/core"
	"github.com/occlab/nocmatch/index"
)

// Scoring defaults. Duty-level specificity is weighted more heavily
// than whole-profile similarity.
const (
	DefaultProfileWeight = 0.4
	DefaultDutyWeight    = 0.6
	DefaultDutyThreshold = 0.3
	DefaultTopDuties     = 5
	DefaultTopK          = 10
)

// Matcher ranks taxonomy entities against a free-text job description.
// It combines whole-profile similarity with duty-level best-match
// aggregation. The index is treated as read-only, so a single Matcher
// may serve concurrent requests.
type Matcher struct {
	index         *index.Index
	embedder      ai.Embedder
	segmenter     *Segmenter
	profileWeight float32
	dutyWeight    float32
	dutyThreshold float32
	topDuties     int
	logger        *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithWeights sets the profile and duty score weights.
// Defaults are 0.4 and 0.6.
func WithWeights(profile, duty float32) Option {
	return func(m *Matcher) error {
		if profile < 0 || duty < 0 {
			return fmt.Errorf("weights must be non-negative, got %v and %v", profile, duty)
		}
		m.profileWeight = profile
		m.dutyWeight = duty
		return nil
	}
}

// WithDutyThreshold sets the relevance threshold a duty's best segment
// similarity must strictly exceed to count as matched.
// Default is 0.3.
func WithDutyThreshold(threshold float32) Option {
	return func(m *Matcher) error {
		m.dutyThreshold = threshold
		return nil
	}
}

// WithTopDuties sets how many of an entity's best duty scores are
// averaged into its duty score.
// Default is 5.
func WithTopDuties(n int) Option {
	return func(m *Matcher) error {
		if n < 1 {
			return fmt.Errorf("top duties must be at least 1, got %d", n)
		}
		m.topDuties = n
		return nil
	}
}

// WithSegmenter sets a custom segmenter.
func WithSegmenter(segmenter *Segmenter) Option {
	return func(m *Matcher) error {
		if segmenter == nil {
			segmenter = NewSegmenter()
		}
		m.segmenter = segmenter
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMatcher creates a matcher over a verified index.
func NewMatcher(idx *index.Index, embedder ai.Embedder, opts ...Option) (*Matcher, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	m := &Matcher{
		index:         idx,
		embedder:      embedder,
		segmenter:     NewSegmenter(),
		profileWeight: DefaultProfileWeight,
		dutyWeight:    DefaultDutyWeight,
		dutyThreshold: DefaultDutyThreshold,
		topDuties:     DefaultTopDuties,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Match ranks all indexed entities against the description and returns
// the top topK results by combined score.
func (m *Matcher) Match(ctx context.Context, description string, topK int) ([]*core.MatchResult, error) {
	return m.MatchWithMonitor(ctx, description, topK, nil)
}

// MatchWithMonitor ranks entities against the description with
// monitoring. The monitor receives callbacks at each stage of the
// matching process. Input errors are rejected before any embedding
// call is made.
func (m *Matcher) MatchWithMonitor(ctx context.Context, description string, topK int, monitor MatchMonitor) ([]*core.MatchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if topK < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	monitor.Start(description)

	segments := m.segmenter.Segment(description)
	monitor.AfterSegmentation(segments)

	// 1. Embed the full description and its segments in one batched call.
	texts := make([]string, 0, len(segments)+1)
	texts = append(texts, description)
	texts = append(texts, segments...)

	vectors, err := m.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		m.logger.Error("error embedding description", "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, received %d", ai.ErrEmbedding, len(texts), len(vectors))
	}
	queryVector := vectors[0]
	segmentVectors := vectors[1:]

	// 2. For every duty, find its best-matching segment. Duties whose
	// best similarity does not exceed the threshold are excluded, not
	// scored as zero.
	matched := make(map[int][]core.MatchedDuty)
	for d, dutyVector := range m.index.Duties {
		var bestScore float32
		var bestSegment string
		for i, segmentVector := range segmentVectors {
			score := Cosine(segmentVector, dutyVector)
			if i == 0 || score > bestScore {
				bestScore = score
				bestSegment = segments[i]
			}
		}
		if len(segmentVectors) > 0 && bestScore > m.dutyThreshold {
			owner := m.index.DutyRefs[d].Entity
			matched[owner] = append(matched[owner], core.MatchedDuty{
				Duty:    m.index.DutyTexts[d],
				Score:   bestScore,
				Segment: bestSegment,
			})
		}
	}
	monitor.AfterDutyMatching(matched)

	keywords := ExtractKeywords(description)

	// 3. Score every entity and rank. Ties keep store order.
	results := make([]*core.MatchResult, 0, len(m.index.Entities))
	for i := range m.index.Entities {
		duties := matched[i]
		sort.SliceStable(duties, func(a, b int) bool {
			return duties[a].Score > duties[b].Score
		})

		overall := Cosine(queryVector, m.index.Profiles[i])
		dutyScore := topAverage(duties, m.topDuties)

		results = append(results, &core.MatchResult{
			Entity:        &m.index.Entities[i],
			OverallScore:  overall,
			DutyScore:     dutyScore,
			CombinedScore: m.profileWeight*overall + m.dutyWeight*dutyScore,
			MatchedDuties: duties,
			Keywords:      keywords,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CombinedScore > results[j].CombinedScore
	})
	if topK > len(results) {
		topK = len(results)
	}
	results = results[:topK]

	monitor.Finish(results)
	return results, nil
}

// topAverage averages the first n scores of duties, which must already
// be sorted by descending score. No retained duties means 0.
func topAverage(duties []core.MatchedDuty, n int) float32 {
	if len(duties) == 0 {
		return 0
	}
	if n > len(duties) {
		n = len(duties)
	}
	var sum float64
	for _, duty := range duties[:n] {
		sum += float64(duty.Score)
	}
	return float32(sum / float64(n))
}
