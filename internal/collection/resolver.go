package collection

import (
	"cointracker/internal/catalog"
	"cointracker/internal/normalize"
)

// Resolver classifies a normalized candidate against the catalog and
// the current ownership state. It is a pure read: classification never
// mutates the ledger, and the same catalog state and candidate always
// produce the same outcome. Precedence: InvalidCombination, then
// AlreadyOwned, then UniqueMatch, then Ambiguous, then NoMatch.
type Resolver struct {
	cat    *catalog.Catalog
	ledger *Ledger
}

// NewResolver builds a resolver over a catalog and its ledger.
func NewResolver(cat *catalog.Catalog, ledger *Ledger) *Resolver {
	return &Resolver{cat: cat, ledger: ledger}
}

// Resolve turns a normalized tuple into exactly one Outcome.
func (r *Resolver) Resolve(t normalize.Tuple) Outcome {
	if t.Complete() {
		key := t.Key()
		v, ok := r.cat.Lookup(key)
		if !ok {
			return Outcome{Status: StatusInvalidCombination, Key: &key}
		}
		return r.classifyExact(v)
	}

	// A field that failed normalization blocks the candidate search:
	// widening it to a wildcard could match coins the collector never
	// described, and the ledger must not be updated on a guess that
	// could be wrong.
	if len(t.Errors) > 0 {
		return Outcome{Status: StatusNoMatch, Unresolved: t.Unresolved, FieldErrors: t.Errors}
	}

	candidates := r.cat.FindCandidates(t.Filter())
	switch len(candidates) {
	case 0:
		return Outcome{Status: StatusNoMatch, Unresolved: t.Unresolved}
	case 1:
		return r.classifyExact(candidates[0])
	default:
		out := Outcome{
			Status:         StatusAmbiguous,
			Candidates:     candidates,
			CandidateCount: len(candidates),
			Unresolved:     t.Unresolved,
		}
		if len(out.Candidates) > MaxCandidates {
			out.Candidates = out.Candidates[:MaxCandidates]
		}
		return out
	}
}

// ResolveKey classifies an exact variant key, as supplied by the
// follow-up choice after an ambiguous outcome.
func (r *Resolver) ResolveKey(key catalog.Key) Outcome {
	v, ok := r.cat.Lookup(key)
	if !ok {
		return Outcome{Status: StatusInvalidCombination, Key: &key}
	}
	return r.classifyExact(v)
}

func (r *Resolver) classifyExact(v catalog.Variant) Outcome {
	rec := r.ledger.Record(v.Key)
	if rec.Owned {
		return Outcome{Status: StatusAlreadyOwned, Variant: &v, Record: &rec}
	}
	return Outcome{Status: StatusUniqueMatch, Variant: &v, Record: &rec}
}
