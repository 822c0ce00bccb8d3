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
	"fmt"
	"strings"
)

// ValidateEntity validates an Entity according to domain rules.
//
// Validation rules:
//   - Code must not be empty
//   - Title must not be empty
//   - Description must not be empty
//
// NOT validated:
//   - Duties, ExampleTitles, Exclusions (may legitimately be empty)
//   - Hierarchy labels and ReferenceURL (optional in the source data)
func ValidateEntity(entity *Entity) error {
	if entity == nil {
		return fmt.Errorf("%w: entity is nil", ErrData)
	}

	if strings.TrimSpace(entity.Code) == "" {
		return ErrMissingCode
	}

	if strings.TrimSpace(entity.Title) == "" {
		return fmt.Errorf("%w (code %s)", ErrMissingTitle, entity.Code)
	}

	if strings.TrimSpace(entity.Description) == "" {
		return fmt.Errorf("%w (code %s)", ErrMissingDescription, entity.Code)
	}

	return nil
}

// Fingerprint computes a deterministic corpus fingerprint over the given
// entities. The fingerprint binds a persisted index to the exact source
// data it was built from: any change to codes, titles, descriptions or
// duties changes the value.
func Fingerprint(entities []Entity) ID {
	var sb strings.Builder
	for i := range entities {
		e := &entities[i]
		sb.WriteString(e.Code)
		sb.WriteByte(0)
		sb.WriteString(e.Title)
		sb.WriteByte(0)
		sb.WriteString(e.Description)
		sb.WriteByte(0)
		for _, d := range e.Duties {
			sb.WriteString(d)
			sb.WriteByte(0)
		}
		sb.WriteByte('\n')
	}
	return IDFromContent(sb.String())
}
