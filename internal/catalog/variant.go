package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Denomination is one of the eight circulating euro coin values.
type Denomination int

const (
	Cent1 Denomination = iota
	Cent2
	Cent5
	Cent10
	Cent20
	Cent50
	Euro1
	Euro2
)

// Denominations lists all values in ascending order.
var Denominations = []Denomination{
	Cent1, Cent2, Cent5, Cent10, Cent20, Cent50, Euro1, Euro2,
}

var denominationNames = [...]string{
	"1 cent", "2 cent", "5 cent", "10 cent", "20 cent", "50 cent", "1 euro", "2 euro",
}

func (d Denomination) String() string {
	if d < 0 || int(d) >= len(denominationNames) {
		return fmt.Sprintf("denomination(%d)", int(d))
	}
	return denominationNames[d]
}

// Cents returns the face value in cents (1..200).
func (d Denomination) Cents() int {
	switch d {
	case Cent1:
		return 1
	case Cent2:
		return 2
	case Cent5:
		return 5
	case Cent10:
		return 10
	case Cent20:
		return 20
	case Cent50:
		return 50
	case Euro1:
		return 100
	case Euro2:
		return 200
	}
	return 0
}

// DenominationFromString maps a canonical name ("2 euro", "50 cent")
// back to its Denomination.
func DenominationFromString(s string) (Denomination, bool) {
	for i, name := range denominationNames {
		if name == s {
			return Denomination(i), true
		}
	}
	return 0, false
}

func (d Denomination) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Denomination) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("unquoting denomination: %w", err)
	}
	v, ok := DenominationFromString(s)
	if !ok {
		return fmt.Errorf("unknown denomination %q", s)
	}
	*d = v
	return nil
}

// Country is a canonical issuing-country name, lowercase English.
type Country string

// Key uniquely identifies a coin variant. Mint is empty for countries
// that strike at a single facility.
type Key struct {
	Value   Denomination `json:"value"`
	Country Country      `json:"country"`
	Year    int          `json:"year"`
	Mint    string       `json:"mint,omitempty"`
}

// String renders the key in its storage form: country|year|value|mint.
// The field order matches the catalog's canonical sort order so that
// a bbolt cursor walks variants in the same order as FindCandidates.
func (k Key) String() string {
	return fmt.Sprintf("%s|%04d|%s|%s", k.Country, k.Year, k.Value, k.Mint)
}

// ParseKey reverses Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 {
		return Key{}, fmt.Errorf("malformed variant key %q", s)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Key{}, fmt.Errorf("malformed year in variant key %q: %w", s, err)
	}
	value, ok := DenominationFromString(parts[2])
	if !ok {
		return Key{}, fmt.Errorf("unknown denomination in variant key %q", s)
	}
	return Key{Value: value, Country: Country(parts[0]), Year: year, Mint: parts[3]}, nil
}

// Variant is one entry of the fixed coin universe. Mintage is the
// number of coins struck, zero when unknown; it is informational only
// and never consulted during resolution.
type Variant struct {
	Key
	Mintage int64 `json:"mintage,omitempty"`
}

// OwnershipRecord tracks whether a variant is held and how many
// physical duplicates exist. Quantity zero implies not owned.
type OwnershipRecord struct {
	Owned           bool      `json:"owned"`
	Quantity        int       `json:"quantity"`
	FirstAcquiredAt time.Time `json:"first_acquired_at,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// Validate checks the owned/quantity invariants.
func (r OwnershipRecord) Validate() error {
	if r.Owned && r.Quantity < 1 {
		return fmt.Errorf("owned record must have quantity >= 1, got %d", r.Quantity)
	}
	if !r.Owned && r.Quantity != 0 {
		return fmt.Errorf("unowned record must have quantity 0, got %d", r.Quantity)
	}
	return nil
}
