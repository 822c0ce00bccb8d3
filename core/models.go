package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a 64-bit content-derived identifier, used to fingerprint the
// taxonomy corpus an index was built from.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Entity is one occupational classification unit group.
// It is immutable once loaded into a taxonomy store.
type Entity struct {
	Code           string
	Title          string
	Description    string
	Duties         []string
	ExampleTitles  []string
	Requirements   string
	AdditionalInfo string
	Exclusions     []string
	BroadCategory  string
	MajorGroup     string
	ReferenceURL   string
}

// DutyRef identifies a single duty by its owning entity's index in the
// store and the duty's position within that entity. Duty identity is
// positional and stable across runs.
type DutyRef struct {
	Entity   int
	Position int
}

// MatchedDuty is one duty of a ranked entity paired with the input
// segment it matched best and the similarity of that pairing.
type MatchedDuty struct {
	Duty    string
	Score   float32
	Segment string
}

// MatchResult is one ranked entity with its component scores and the
// duty-level explanation of the match. Results are ephemeral and carry
// a full entity snapshot so renderers need no second lookup.
type MatchResult struct {
	Entity        *Entity
	OverallScore  float32
	DutyScore     float32
	CombinedScore float32
	MatchedDuties []MatchedDuty
	Keywords      []string
}
