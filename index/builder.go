package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/occlab/nocmatch/ai"
	"github.com/occlab/nocmatch/core"
	"github.com/occlab/nocmatch/taxonomy"
)

const defaultBatchSize = 32

// Builder turns a taxonomy store into an embedding index. Building is a
// rare, heavyweight offline operation: every entity's weighted
// searchable text and every duty string is embedded in batches.
type Builder struct {
	embedder    ai.Embedder
	batchSize   int
	concurrency int
	logger      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithBatchSize sets how many texts are embedded per call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		b.batchSize = size
		return nil
	}
}

// WithConcurrency sets how many embedding batches may be in flight at
// once. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithConcurrency(n int) Option {
	return func(b *Builder) error {
		if n < 1 {
			n = 1
		}
		b.concurrency = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a new index builder.
func NewBuilder(embedder ai.Embedder, opts ...Option) (*Builder, error) {
	if embedder == nil {
		return nil, ai.ErrEmbedderRequired
	}

	concurrency := runtime.NumCPU() / 2
	if concurrency < 1 {
		concurrency = 1
	}

	b := &Builder{
		embedder:    embedder,
		batchSize:   defaultBatchSize,
		concurrency: concurrency,
		logger:      slog.Default().With("component", "index-builder"),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Build embeds the store's profiles and duties and assembles a verified
// index. Embedding failures abort the build; nothing is persisted here,
// so a failed build can never leave a partial index behind. Use Save on
// the returned index to persist it atomically.
func (b *Builder) Build(ctx context.Context, store *taxonomy.Store) (*Index, error) {
	if store == nil || store.Len() == 0 {
		return nil, core.ErrEmptyTaxonomy
	}

	entities := store.Entities()
	for i := range entities {
		if err := core.ValidateEntity(&entities[i]); err != nil {
			return nil, err
		}
	}

	profileTexts := make([]string, len(entities))
	for i := range entities {
		profileTexts[i] = SearchableText(&entities[i])
	}
	dutyTexts, dutyRefs := store.Duties()

	b.logger.Info("building embedding index",
		"entities", len(entities), "duties", len(dutyTexts))

	profiles, err := b.embedAll(ctx, profileTexts)
	if err != nil {
		return nil, fmt.Errorf("embedding profiles: %w", err)
	}

	var duties [][]float32
	if len(dutyTexts) > 0 {
		duties, err = b.embedAll(ctx, dutyTexts)
		if err != nil {
			return nil, fmt.Errorf("embedding duties: %w", err)
		}
	}

	idx := &Index{
		Dim:         len(profiles[0]),
		Fingerprint: store.Fingerprint(),
		Entities:    entities,
		Profiles:    profiles,
		DutyTexts:   dutyTexts,
		DutyRefs:    dutyRefs,
		Duties:      duties,
	}
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrEmbedding, err)
	}

	b.logger.Info("embedding index built", "dim", idx.Dim)
	return idx, nil
}

// embedAll embeds texts in order-preserving batches, with up to
// b.concurrency batches in flight on a worker pool.
func (b *Builder) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	pool, err := ants.NewPool(b.concurrency)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for start := 0; start < len(texts); start += b.batchSize {
		end := min(start+b.batchSize, len(texts))
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if failed() {
				return
			}
			batch, err := b.embedder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				setErr(err)
				return
			}
			if len(batch) != end-start {
				setErr(fmt.Errorf("%w: expected %d vectors, received %d", ai.ErrEmbedding, end-start, len(batch)))
				return
			}
			copy(vectors[start:end], batch)
		}); err != nil {
			wg.Done()
			setErr(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}
