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


package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/occlab/nocmatch/core"
)

const (
	indexMagic   = "NOCIDX"
	indexVersion = 1
)

// Serializers for the persisted bundle. The field order below is the
// wire format.
var (
	matrixMUS   = ord.NewSliceSer[[]float32](core.VectorMUS)
	refsMUS     = ord.NewSliceSer[core.DutyRef](core.DutyRefMUS)
	entitiesMUS = ord.NewSliceSer[core.Entity](core.EntityMUS)
)

// Index is the embedding index: one profile vector per entity, one duty
// vector per duty, a duty ownership table and the verbatim entity
// metadata needed to render results. It is built once and treated as
// read-only afterwards; concurrent readers need no locking.
type Index struct {
	// Dim is the embedding dimensionality shared by every vector.
	Dim int

	// Fingerprint binds this index to the taxonomy corpus it was built
	// from (core.Fingerprint of the source entities).
	Fingerprint core.ID

	// Entities holds the metadata bundle, indexed identically to Profiles.
	Entities []core.Entity

	// Profiles holds one vector per entity, in store order.
	Profiles [][]float32

	// DutyTexts, DutyRefs and Duties are parallel arrays in the global
	// duty order: duty i has text DutyTexts[i], vector Duties[i] and is
	// owned by Entities[DutyRefs[i].Entity].
	DutyTexts []string
	DutyRefs  []core.DutyRef
	Duties    [][]float32
}

// Validate checks the index invariants: parallel array lengths, uniform
// dimensionality and in-range ownership references. Violations are
// reported as core.ErrCorruptIndex.
func (idx *Index) Validate() error {
	if len(idx.Entities) == 0 {
		return fmt.Errorf("%w: no entities", core.ErrCorruptIndex)
	}
	if len(idx.Profiles) != len(idx.Entities) {
		return fmt.Errorf("%w: %d profile vectors for %d entities", core.ErrCorruptIndex, len(idx.Profiles), len(idx.Entities))
	}
	if len(idx.Duties) != len(idx.DutyRefs) || len(idx.Duties) != len(idx.DutyTexts) {
		return fmt.Errorf("%w: duty arrays disagree: %d vectors, %d refs, %d texts",
			core.ErrCorruptIndex, len(idx.Duties), len(idx.DutyRefs), len(idx.DutyTexts))
	}
	for i, row := range idx.Profiles {
		if len(row) != idx.Dim {
			return fmt.Errorf("%w: profile %d has dimension %d, want %d", core.ErrCorruptIndex, i, len(row), idx.Dim)
		}
	}
	for i, row := range idx.Duties {
		if len(row) != idx.Dim {
			return fmt.Errorf("%w: duty %d has dimension %d, want %d", core.ErrCorruptIndex, i, len(row), idx.Dim)
		}
	}
	for i, ref := range idx.DutyRefs {
		if ref.Entity < 0 || ref.Entity >= len(idx.Entities) || ref.Position < 0 {
			return fmt.Errorf("%w: duty %d has owner reference %+v", core.ErrCorruptIndex, i, ref)
		}
	}
	return nil
}

// Save writes the index to path atomically: the bundle is serialized
// into a temporary file in the same directory, synced, then renamed
// over the target. A crash mid-write never corrupts an existing index.
// The whole bundle lives in one container so the profile matrix, duty
// matrix and metadata can never be loaded partially.
func (idx *Index) Save(path string) error {
	if err := idx.Validate(); err != nil {
		return err
	}

	size := ord.String.Size(indexMagic) +
		varint.Int.Size(indexVersion) +
		core.IDMUS.Size(idx.Fingerprint) +
		varint.Int.Size(idx.Dim) +
		entitiesMUS.Size(idx.Entities) +
		matrixMUS.Size(idx.Profiles) +
		core.StringsMUS.Size(idx.DutyTexts) +
		refsMUS.Size(idx.DutyRefs) +
		matrixMUS.Size(idx.Duties)

	buf := make([]byte, size)
	n := ord.String.Marshal(indexMagic, buf)
	n += varint.Int.Marshal(indexVersion, buf[n:])
	n += core.IDMUS.Marshal(idx.Fingerprint, buf[n:])
	n += varint.Int.Marshal(idx.Dim, buf[n:])
	n += entitiesMUS.Marshal(idx.Entities, buf[n:])
	n += matrixMUS.Marshal(idx.Profiles, buf[n:])
	n += core.StringsMUS.Marshal(idx.DutyTexts, buf[n:])
	n += refsMUS.Marshal(idx.DutyRefs, buf[n:])
	matrixMUS.Marshal(idx.Duties, buf[n:])

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Load reads and verifies a persisted index. A missing, truncated or
// otherwise invalid file is reported as core.ErrData and must be
// treated as startup-fatal; the remedy is a full rebuild.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading index: %w", core.ErrData, err)
	}

	magic, n, err := ord.String.Unmarshal(data)
	if err != nil || magic != indexMagic {
		return nil, fmt.Errorf("%w: not an index file", core.ErrCorruptIndex)
	}

	version, n1, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	n += n1
	if version != indexVersion {
		return nil, fmt.Errorf("%w: unsupported index version %d", core.ErrCorruptIndex, version)
	}

	idx := &Index{}
	if idx.Fingerprint, n1, err = core.IDMUS.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	n += n1
	if idx.Dim, n1, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	n += n1
	if idx.Entities, n1, err = entitiesMUS.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	n += n1
	if idx.Profiles, n1, err = matrixMUS.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	n += n1
	if idx.DutyTexts, n1, err = core.StringsMUS.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	n += n1
	if idx.DutyRefs, n1, err = refsMUS.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}
	n += n1
	if idx.Duties, _, err = matrixMUS.Unmarshal(data[n:]); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptIndex, err)
	}

	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}
