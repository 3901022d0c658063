// Package catalog holds the fixed universe of euro coin variants. The
// variant set is reference data: it is built once at startup and only
// the ownership state attached to it (managed by the collection
// package) changes at runtime.
package catalog

import (
	"fmt"
	"sort"
)

// Catalog serves lookup and enumeration over an immutable variant set.
type Catalog struct {
	variants []Variant
	index    map[Key]int
}

// New builds a catalog from a variant list. It fails fast if two
// variants share a key or if a variant violates the mint-mark rule
// (mint present iff the country uses mint marks).
func New(variants []Variant) (*Catalog, error) {
	sorted := make([]Variant, len(variants))
	copy(sorted, variants)
	sort.Slice(sorted, func(i, j int) bool { return keyLess(sorted[i].Key, sorted[j].Key) })

	index := make(map[Key]int, len(sorted))
	for i, v := range sorted {
		if _, dup := index[v.Key]; dup {
			return nil, fmt.Errorf("duplicate variant key %s", v.Key)
		}
		if _, ok := CountryByName(v.Country); !ok {
			return nil, fmt.Errorf("variant %s: unknown country", v.Key)
		}
		if UsesMintMarks(v.Country) != (v.Mint != "") {
			return nil, fmt.Errorf("variant %s: mint mark presence does not match country", v.Key)
		}
		index[v.Key] = i
	}
	return &Catalog{variants: sorted, index: index}, nil
}

func keyLess(a, b Key) bool {
	if a.Country != b.Country {
		return a.Country < b.Country
	}
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.Mint < b.Mint
}

// Lookup finds a variant by exact key. A miss means the described
// coin was never minted, which is distinct from "not yet owned".
func (c *Catalog) Lookup(k Key) (Variant, bool) {
	i, ok := c.index[k]
	if !ok {
		return Variant{}, false
	}
	return c.variants[i], true
}

// Filter selects variants by any subset of key fields; nil fields are
// wildcards.
type Filter struct {
	Value   *Denomination
	Country *Country
	Year    *int
	Mint    *string
}

func (f Filter) matches(v Variant) bool {
	if f.Value != nil && v.Value != *f.Value {
		return false
	}
	if f.Country != nil && v.Country != *f.Country {
		return false
	}
	if f.Year != nil && v.Year != *f.Year {
		return false
	}
	if f.Mint != nil && v.Mint != *f.Mint {
		return false
	}
	return true
}

// FindCandidates returns all variants matching the filter, ordered by
// country, year, value, mint. The order is stable across calls so
// that tie-break handling downstream is reproducible.
func (c *Catalog) FindCandidates(f Filter) []Variant {
	var out []Variant
	for _, v := range c.variants {
		if f.matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// All enumerates every variant in canonical order. The returned slice
// is shared; callers must not modify it.
func (c *Catalog) All() []Variant {
	return c.variants
}

// Len reports the size of the variant universe.
func (c *Catalog) Len() int {
	return len(c.variants)
}
