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


package core

import (
	"errors"
	"fmt"
)

// ErrData is the base error for all taxonomy and index data failures.
// Every more specific data sentinel wraps it, so callers can test with
// errors.Is(err, core.ErrData) and treat the condition as startup-fatal.
var ErrData = errors.New("invalid taxonomy data")

var (
	// ErrEmptyTaxonomy indicates the taxonomy store holds no entities.
	ErrEmptyTaxonomy = fmt.Errorf("%w: taxonomy is empty", ErrData)

	// ErrMissingTitle indicates an entity record has no title.
	ErrMissingTitle = fmt.Errorf("%w: entity title is required", ErrData)

	// ErrMissingDescription indicates an entity record has no description.
	ErrMissingDescription = fmt.Errorf("%w: entity description is required", ErrData)

	// ErrMissingCode indicates an entity record has no classification code.
	ErrMissingCode = fmt.Errorf("%w: entity code is required", ErrData)

	// ErrDuplicateCode indicates two entities share the same classification code.
	ErrDuplicateCode = fmt.Errorf("%w: duplicate entity code", ErrData)

	// ErrMalformedListField indicates a bracket-encoded list field could not be parsed.
	ErrMalformedListField = fmt.Errorf("%w: malformed list field", ErrData)

	// ErrCorruptIndex indicates a persisted index failed verification on load.
	ErrCorruptIndex = fmt.Errorf("%w: corrupt index", ErrData)
)
