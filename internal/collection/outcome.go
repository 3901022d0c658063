package collection

import (
	"cointracker/internal/catalog"
	"cointracker/internal/normalize"
)

// Status tags a ResolutionOutcome. The tags are expected domain
// results, not errors: a submission always yields exactly one.
type Status string

const (
	// StatusInvalidCombination: all fields canonical but the described
	// coin was never minted.
	StatusInvalidCombination Status = "invalid_combination"
	// StatusAlreadyOwned: exact match, already in the collection.
	StatusAlreadyOwned Status = "already_owned"
	// StatusUniqueMatch: exactly one catalog variant fits and it was
	// not yet owned.
	StatusUniqueMatch Status = "unique_match"
	// StatusAmbiguous: two or more variants fit a partial description.
	StatusAmbiguous Status = "ambiguous"
	// StatusNoMatch: nothing fits, or unresolved fields made lookup
	// impossible.
	StatusNoMatch Status = "no_match"
)

// Outcome is returned for every submission. It carries enough
// structured data for the chat layer to phrase a precise reply: the
// matched variant and its ownership record, the candidate list on
// ambiguity, or the unresolved fields and their errors on failure.
type Outcome struct {
	Status Status `json:"status"`

	// Set for UniqueMatch, AlreadyOwned and InvalidCombination (Key
	// only for the latter, since no variant exists).
	Variant *catalog.Variant         `json:"variant,omitempty"`
	Key     *catalog.Key             `json:"key,omitempty"`
	Record  *catalog.OwnershipRecord `json:"record,omitempty"`

	// Set for Ambiguous. Candidates is capped at MaxCandidates;
	// CandidateCount is the uncapped total.
	Candidates     []catalog.Variant `json:"candidates,omitempty"`
	CandidateCount int               `json:"candidate_count,omitempty"`

	// Set for NoMatch and Ambiguous.
	Unresolved  []normalize.Field      `json:"unresolved,omitempty"`
	FieldErrors []normalize.FieldError `json:"field_errors,omitempty"`
}

// MaxCandidates caps the ambiguity list presented to the collector.
const MaxCandidates = 10
