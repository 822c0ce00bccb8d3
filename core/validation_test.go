package core

import (
	"errors"
	"testing"
)

func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name    string
		entity  *Entity
		wantErr error
	}{
		{
			name: "valid entity",
			entity: &Entity{
				Code:        "21232",
				Title:       "Software developers and programmers",
				Description: "Software developers write, modify and test code.",
				Duties:      []string{"Write code", "Fix defects"},
			},
			wantErr: nil,
		},
		{
			name: "valid entity with no duties",
			entity: &Entity{
				Code:        "00011",
				Title:       "Legislators",
				Description: "Participate in legislative activities.",
			},
			wantErr: nil,
		},
		{
			name:    "nil entity",
			entity:  nil,
			wantErr: ErrData,
		},
		{
			name: "missing code",
			entity: &Entity{
				Title:       "Software developers",
				Description: "Write software.",
			},
			wantErr: ErrMissingCode,
		},
		{
			name: "whitespace-only code",
			entity: &Entity{
				Code:        "   ",
				Title:       "Software developers",
				Description: "Write software.",
			},
			wantErr: ErrMissingCode,
		},
		{
			name: "missing title",
			entity: &Entity{
				Code:        "21232",
				Description: "Write software.",
			},
			wantErr: ErrMissingTitle,
		},
		{
			name: "missing description",
			entity: &Entity{
				Code:  "21232",
				Title: "Software developers",
			},
			wantErr: ErrMissingDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntity(tt.entity)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntity() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntity() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorsWrapErrData(t *testing.T) {
	for _, err := range []error{
		ErrEmptyTaxonomy,
		ErrMissingTitle,
		ErrMissingDescription,
		ErrMissingCode,
		ErrDuplicateCode,
		ErrMalformedListField,
		ErrCorruptIndex,
	} {
		if !errors.Is(err, ErrData) {
			t.Errorf("%v does not wrap ErrData", err)
		}
	}
}
