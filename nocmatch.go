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


// Package nocmatch ranks occupational classification entries against
// free-text job descriptions using dense embedding similarity.
package nocmatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/occlab/nocmatch/ai"
	"github.com/occlab/nocmatch/ai/openai"
	"github.com/occlab/nocmatch/core"
	"github.com/occlab/nocmatch/index"
	"github.com/occlab/nocmatch/match"
	"github.com/occlab/nocmatch/taxonomy"
)

// ErrRebuildInProgress is returned when a rebuild is requested while
// another rebuild is still running.
var ErrRebuildInProgress = errors.New("index rebuild already in progress")

// Service bundles a loaded embedding index with an embedder and serves
// match requests. The live index sits behind an atomic pointer:
// concurrent matches read it without locking, and a rebuild swaps it
// in one step while in-flight requests keep the version they started
// with.
type Service struct {
	indexPath string
	current   atomic.Pointer[index.Index]
	rebuild   sync.Mutex
	embedder  ai.Embedder
	matchOpts []match.Option
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig  *ai.Config
	embedder  ai.Embedder
	matchOpts []match.Option
	logger    *slog.Logger
}

// WithAIConfig sets the embedding backend configuration used when no
// explicit embedder is provided.
func WithAIConfig(cfg *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbedder sets an explicit embedder, bypassing the AI config.
func WithEmbedder(embedder ai.Embedder) ServiceOption {
	return func(o *serviceOptions) {
		o.embedder = embedder
	}
}

// WithMatchOptions sets matcher options applied to every match served
// by this service.
func WithMatchOptions(opts ...match.Option) ServiceOption {
	return func(o *serviceOptions) {
		o.matchOpts = opts
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open loads a persisted index from indexPath and returns a service
// ready to match against it. A missing or corrupt index is fatal here;
// the remedy is a rebuild, never a partial load.
func Open(indexPath string, opts ...ServiceOption) (*Service, error) {
	// Apply options
	options := &serviceOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	idx, err := index.Load(indexPath)
	if err != nil {
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	s := &Service{
		indexPath: indexPath,
		embedder:  embedder,
		matchOpts: options.matchOpts,
		logger:    options.logger,
	}
	s.current.Store(idx)
	return s, nil
}

// Index returns the currently served index.
func (s *Service) Index() *index.Index {
	return s.current.Load()
}

// NewMatcher creates a matcher over the currently served index. The
// matcher keeps that index version even if the service rebuilds.
func (s *Service) NewMatcher(opts ...match.Option) (*match.Matcher, error) {
	combined := make([]match.Option, 0, len(s.matchOpts)+len(opts))
	combined = append(combined, s.matchOpts...)
	combined = append(combined, opts...)
	return match.NewMatcher(s.current.Load(), s.embedder, combined...)
}

// Match ranks the indexed entities against description and returns the
// top topK results.
func (s *Service) Match(ctx context.Context, description string, topK int) ([]*core.MatchResult, error) {
	matcher, err := s.NewMatcher()
	if err != nil {
		return nil, err
	}
	return matcher.Match(ctx, description, topK)
}

// Rebuild builds a fresh index from store, persists it over the
// service's index path and swaps it in. At most one rebuild may run at
// a time; a second caller gets ErrRebuildInProgress. In-flight matches
// keep serving the previous index until the swap.
func (s *Service) Rebuild(ctx context.Context, store *taxonomy.Store, opts ...index.Option) error {
	if !s.rebuild.TryLock() {
		return ErrRebuildInProgress
	}
	defer s.rebuild.Unlock()

	builder, err := index.NewBuilder(s.embedder, opts...)
	if err != nil {
		return err
	}

	idx, err := builder.Build(ctx, store)
	if err != nil {
		return err
	}
	if err := idx.Save(s.indexPath); err != nil {
		return err
	}

	s.current.Store(idx)
	s.logger.Info("index rebuilt", "entities", len(idx.Entities), "duties", len(idx.Duties))
	return nil
}
