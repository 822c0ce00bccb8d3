package taxonomy

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/occlab/nocmatch/core"
)

// Column names expected in the taxonomy CSV header.
const (
	colCode           = "noc_code"
	colTitle          = "title"
	colDescription    = "description"
	colDuties         = "main_duties"
	colExampleTitles  = "example_titles"
	colRequirements   = "employment_requirements"
	colAdditionalInfo = "additional_information"
	colExclusions     = "exclusions"
	colBroadCategory  = "broad_category"
	colMajorGroup     = "major_group"
	colURL            = "url"
)

var requiredColumns = []string{colCode, colTitle, colDescription}

// Store is an immutable, loaded-once collection of taxonomy entities.
// It is safe for concurrent reads.
type Store struct {
	entities []core.Entity
}

// Option configures taxonomy loading.
type Option func(*loader)

type loader struct {
	lenientLists bool
	logger       *slog.Logger
}

// WithLenientLists makes malformed bracket-encoded list fields parse to
// an empty list (with a warning logged) instead of failing the load.
// This preserves the legacy behavior of the upstream data pipeline; the
// default is to fail fast.
func WithLenientLists() Option {
	return func(l *loader) {
		l.lenientLists = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// New creates a store from pre-built entities. Every entity is validated
// and codes must be unique; duty order is preserved as given.
func New(entities []core.Entity) (*Store, error) {
	if len(entities) == 0 {
		return nil, core.ErrEmptyTaxonomy
	}

	seen := make(map[string]bool, len(entities))
	for i := range entities {
		if err := core.ValidateEntity(&entities[i]); err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		if seen[entities[i].Code] {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateCode, entities[i].Code)
		}
		seen[entities[i].Code] = true
	}

	return &Store{entities: entities}, nil
}

// Load reads a taxonomy store from a CSV file.
func Load(path string, opts ...Option) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrData, err)
	}
	defer f.Close()
	return Read(f, opts...)
}

// Read reads a taxonomy store from CSV data. The first record must be a
// header carrying at least the noc_code, title and description columns;
// list-valued fields may be pipe-joined or bracket-encoded strings.
func Read(r io.Reader, opts ...Option) (*Store, error) {
	l := &loader{logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, core.ErrEmptyTaxonomy
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", core.ErrData, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", core.ErrData, name)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var entities []core.Entity
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", core.ErrData, line, err)
		}

		entity := core.Entity{
			Code:           field(record, colCode),
			Title:          field(record, colTitle),
			Description:    field(record, colDescription),
			Requirements:   field(record, colRequirements),
			AdditionalInfo: field(record, colAdditionalInfo),
			BroadCategory:  field(record, colBroadCategory),
			MajorGroup:     field(record, colMajorGroup),
			ReferenceURL:   field(record, colURL),
		}

		for _, lf := range []struct {
			col  string
			dest *[]string
		}{
			{colDuties, &entity.Duties},
			{colExampleTitles, &entity.ExampleTitles},
			{colExclusions, &entity.Exclusions},
		} {
			items, err := parseListField(field(record, lf.col))
			if err != nil {
				if !l.lenientLists {
					return nil, fmt.Errorf("line %d, column %s: %w", line, lf.col, err)
				}
				l.logger.Warn("malformed list field, defaulting to empty",
					"line", line, "column", lf.col, "err", err)
				items = nil
			}
			*lf.dest = items
		}

		entities = append(entities, entity)
	}

	return New(entities)
}

// Entities returns all entities in store order. The returned slice is
// shared and must not be mutated.
func (s *Store) Entities() []core.Entity {
	return s.entities
}

// Len returns the number of entities in the store.
func (s *Store) Len() int {
	return len(s.entities)
}

// Entity returns the entity at the given store index.
func (s *Store) Entity(i int) *core.Entity {
	return &s.entities[i]
}

// Duties returns the global duty list: every non-empty duty string in
// entity order then within-entity order, with a parallel reference
// table identifying each duty's owner. The ordering is deterministic
// and reproducible from the store alone; it is the index into the duty
// embedding matrix.
func (s *Store) Duties() ([]string, []core.DutyRef) {
	var texts []string
	var refs []core.DutyRef
	for i := range s.entities {
		for pos, duty := range s.entities[i].Duties {
			if strings.TrimSpace(duty) == "" {
				continue
			}
			texts = append(texts, duty)
			refs = append(refs, core.DutyRef{Entity: i, Position: pos})
		}
	}
	return texts, refs
}

// Fingerprint returns the deterministic corpus fingerprint of the store.
func (s *Store) Fingerprint() core.ID {
	return core.Fingerprint(s.entities)
}
