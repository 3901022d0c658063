// Package normalize turns noisy per-field coin descriptions into
// canonical catalog attributes. All functions are pure: the current
// year is injected so behavior never depends on the wall clock.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"cointracker/internal/catalog"
)

// Field names a CandidateGuess attribute.
type Field string

const (
	FieldValue   Field = "value"
	FieldCountry Field = "country"
	FieldYear    Field = "year"
	FieldMint    Field = "mint"
)

// Code classifies a field-level normalization failure.
type Code string

const (
	UnparsableValue Code = "unparsable_value"
	UnknownCountry  Code = "unknown_country"
	YearOutOfRange  Code = "year_out_of_range"
	UnexpectedMint  Code = "unexpected_mint"
)

// FieldError reports one field that could not be normalized. Errors
// are collected across fields, never short-circuited, so a caller can
// ask one clarifying question covering every problem.
type FieldError struct {
	Field   Field  `json:"field"`
	Code    Code   `json:"code"`
	Raw     string `json:"raw"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Raw, e.Message)
}

// Guess is the raw, possibly partial description of a single coin as
// produced by the vision scanner or typed by the collector. It is
// transient: consumed by Normalize and discarded.
type Guess struct {
	RawValue   string            `json:"value"`
	RawCountry string            `json:"country"`
	RawYear    string            `json:"year"`
	RawMint    string            `json:"mint"`
	Confidence map[Field]float64 `json:"confidence,omitempty"`
}

// Tuple is the normalization result: canonical values for every field
// that resolved, plus the explicit set of fields that did not. A field
// appears in Unresolved when it was absent, when it failed to
// normalize (its FieldError is in Errors), or when it is a mint mark
// that the country requires but the guess omitted.
type Tuple struct {
	Value   catalog.Denomination
	Country catalog.Country
	Year    int
	Mint    string

	HasValue   bool
	HasCountry bool
	HasYear    bool
	HasMint    bool

	// MintRequired marks the missing-but-required mint case: the
	// country strikes at multiple facilities but no mark was given.
	MintRequired bool

	Unresolved []Field
	Errors     []FieldError
}

// Complete reports whether every field needed for an exact catalog
// lookup resolved.
func (t Tuple) Complete() bool {
	return t.HasValue && t.HasCountry && t.HasYear && t.HasMint && len(t.Errors) == 0
}

// Key builds the exact lookup key. Only valid when Complete.
func (t Tuple) Key() catalog.Key {
	return catalog.Key{Value: t.Value, Country: t.Country, Year: t.Year, Mint: t.Mint}
}

// Filter builds a partial-search filter from the resolved fields.
func (t Tuple) Filter() catalog.Filter {
	var f catalog.Filter
	if t.HasValue {
		v := t.Value
		f.Value = &v
	}
	if t.HasCountry {
		c := t.Country
		f.Country = &c
	}
	if t.HasYear {
		y := t.Year
		f.Year = &y
	}
	if t.HasMint {
		m := t.Mint
		f.Mint = &m
	}
	return f
}

// Normalize converts a raw guess into a Tuple against the supplied
// current year. It never drops information silently: every field is
// either canonical or listed in Unresolved.
func Normalize(g Guess, currentYear int) Tuple {
	var t Tuple

	fail := func(f Field, code Code, raw, msg string) {
		t.Errors = append(t.Errors, FieldError{Field: f, Code: code, Raw: raw, Message: msg})
		t.Unresolved = append(t.Unresolved, f)
	}

	// Value.
	if raw := strings.TrimSpace(g.RawValue); raw == "" {
		t.Unresolved = append(t.Unresolved, FieldValue)
	} else if v, ok := Value(raw); ok {
		t.Value, t.HasValue = v, true
	} else {
		fail(FieldValue, UnparsableValue, raw, "not a euro coin value")
	}

	// Country.
	if raw := strings.TrimSpace(g.RawCountry); raw == "" {
		t.Unresolved = append(t.Unresolved, FieldCountry)
	} else if c, ok := CountryName(raw); ok {
		t.Country, t.HasCountry = c, true
	} else {
		fail(FieldCountry, UnknownCountry, raw, "not a euro-issuing country")
	}

	// Year.
	if raw := strings.TrimSpace(g.RawYear); raw == "" {
		t.Unresolved = append(t.Unresolved, FieldYear)
	} else if y, err := strconv.Atoi(raw); err != nil {
		fail(FieldYear, YearOutOfRange, raw, "not a year")
	} else if y < FirstEuroYear || y > currentYear {
		fail(FieldYear, YearOutOfRange, raw,
			fmt.Sprintf("must be between %d and %d", FirstEuroYear, currentYear))
	} else {
		t.Year, t.HasYear = y, true
	}

	// Mint. The rules depend on the country, so an unresolved country
	// leaves a present mark as a raw filter value and an absent one
	// unresolved.
	mint := strings.ToUpper(strings.TrimSpace(g.RawMint))
	switch {
	case !t.HasCountry:
		if mint != "" {
			t.Mint, t.HasMint = mint, true
		} else {
			t.Unresolved = append(t.Unresolved, FieldMint)
		}
	case catalog.UsesMintMarks(t.Country):
		switch {
		case mint == "":
			t.MintRequired = true
			t.Unresolved = append(t.Unresolved, FieldMint)
		case len(mint) == 1:
			t.Mint, t.HasMint = mint, true
		default:
			fail(FieldMint, UnexpectedMint, g.RawMint, "mint mark must be a single character")
		}
	default:
		if mint != "" {
			fail(FieldMint, UnexpectedMint, g.RawMint,
				fmt.Sprintf("%s coins carry no mint mark", t.Country))
		} else {
			// Single-mint country: the empty mark is canonical.
			t.HasMint = true
		}
	}

	return t
}

// FirstEuroYear is the earliest year appearing on any euro coin.
const FirstEuroYear = 1999
