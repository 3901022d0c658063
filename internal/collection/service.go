package collection

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cointracker/internal/catalog"
	"cointracker/internal/normalize"
	"cointracker/internal/scanning"
)

// IDGenerator generates unique IDs for submission events.
type IDGenerator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// Service is the single entry point for the chat/vision layer: it
// combines Normalizer, Resolver and the conditional Ledger mutation,
// and records an audit event per submission. It holds no cross-call
// state; an ambiguous outcome is followed up with ResolveChoice, and
// the caller carries the candidate list between the two calls.
type Service struct {
	cat      *catalog.Catalog
	ledger   *Ledger
	resolver *Resolver
	scanner  scanning.Scanner
	db       DB
	idGen    IDGenerator
}

// NewService builds a service over a catalog, its database and a coin
// scanner. The scanner may be nil when photo submissions are not
// needed (e.g. offline reporting).
func NewService(cat *catalog.Catalog, db DB, scanner scanning.Scanner) (*Service, error) {
	ledger, err := NewLedger(cat, db)
	if err != nil {
		return nil, err
	}
	return &Service{
		cat:      cat,
		ledger:   ledger,
		resolver: NewResolver(cat, ledger),
		scanner:  scanner,
		db:       db,
		idGen:    uuidGenerator{},
	}, nil
}

// NewServiceWithDeps is NewService with an injectable ID generator.
func NewServiceWithDeps(cat *catalog.Catalog, db DB, scanner scanning.Scanner, idGen IDGenerator) (*Service, error) {
	s, err := NewService(cat, db, scanner)
	if err != nil {
		return nil, err
	}
	s.idGen = idGen
	return s, nil
}

// Submit runs one raw guess through normalization and resolution and,
// on a unique match (or a duplicate of an owned coin when asDuplicate
// is set), applies the ledger mutation. The returned error is
// reserved for storage failures; every domain result, including
// failures to identify the coin, arrives as an Outcome.
func (s *Service) Submit(guess normalize.Guess, asDuplicate bool, now time.Time) (Outcome, error) {
	tuple := normalize.Normalize(guess, now.Year())
	out := s.resolver.Resolve(tuple)
	out, err := s.applyMutation(out, asDuplicate, now)
	if err != nil {
		return Outcome{}, err
	}
	s.logEvent(guess, out, asDuplicate, now)
	return out, nil
}

// SubmitPhoto scans a coin photo into a guess and submits it. Scanner
// failures are returned as errors for the caller to relay; they never
// reach the resolver.
func (s *Service) SubmitPhoto(image []byte, contentType string, asDuplicate bool, now time.Time) (Outcome, error) {
	if s.scanner == nil {
		return Outcome{}, fmt.Errorf("no scanner configured")
	}
	data, err := s.scanner.ScanCoin(image, contentType)
	if err != nil {
		return Outcome{}, fmt.Errorf("scanning coin photo: %w", err)
	}
	guess := normalize.Guess{
		RawValue:   data.Value,
		RawCountry: data.Country,
		RawYear:    data.Year,
		RawMint:    data.Mint,
	}
	if len(data.Confidence) > 0 {
		guess.Confidence = make(map[normalize.Field]float64, len(data.Confidence))
		for field, c := range data.Confidence {
			guess.Confidence[normalize.Field(field)] = c
		}
	}
	return s.Submit(guess, asDuplicate, now)
}

// ResolveChoice applies the collector's explicit pick after an
// ambiguous outcome. The key must be exact; anything not in the
// catalog is an invalid combination.
func (s *Service) ResolveChoice(key catalog.Key, asDuplicate bool, now time.Time) (Outcome, error) {
	out := s.resolver.ResolveKey(key)
	out, err := s.applyMutation(out, asDuplicate, now)
	if err != nil {
		return Outcome{}, err
	}
	guess := normalize.Guess{
		RawValue:   key.Value.String(),
		RawCountry: string(key.Country),
		RawYear:    fmt.Sprintf("%d", key.Year),
		RawMint:    key.Mint,
	}
	s.logEvent(guess, out, asDuplicate, now)
	return out, nil
}

// applyMutation performs the ledger write implied by an outcome: a
// unique match becomes owned, an already-owned match gains a
// duplicate only on the explicit flag. All other outcomes leave the
// ledger untouched.
func (s *Service) applyMutation(out Outcome, asDuplicate bool, now time.Time) (Outcome, error) {
	switch out.Status {
	case StatusUniqueMatch:
		rec, err := s.ledger.MarkOwned(out.Variant.Key, now, false)
		if err != nil {
			return Outcome{}, err
		}
		out.Record = &rec
	case StatusAlreadyOwned:
		if asDuplicate {
			rec, err := s.ledger.MarkOwned(out.Variant.Key, now, true)
			if err != nil {
				return Outcome{}, err
			}
			out.Record = &rec
		}
	}
	return out, nil
}

func (s *Service) logEvent(guess normalize.Guess, out Outcome, asDuplicate bool, now time.Time) {
	ev := &SubmissionEvent{
		ID:          s.idGen.Generate(),
		At:          now,
		Guess:       guess,
		Status:      out.Status,
		AsDuplicate: asDuplicate,
	}
	if out.Variant != nil {
		ev.VariantKey = out.Variant.Key.String()
	}
	// The audit log is best-effort: a failed append must not fail the
	// submission that produced it.
	if err := s.db.SaveEvent(ev); err != nil {
		slog.Warn("Failed to record submission event", "status", out.Status, "error", err)
	}
}

// Stats reports aggregate collection progress.
func (s *Service) Stats() Stats {
	return s.ledger.Stats()
}

// StatsBreakdown reports progress split by country, year and value.
func (s *Service) StatsBreakdown() Breakdown {
	return s.ledger.StatsBreakdown()
}

// Missing lists all variants not yet owned, in catalog order.
func (s *Service) Missing() []catalog.Variant {
	return s.ledger.Missing()
}

// VariantStatus pairs a variant with its ownership record for series
// listings.
type VariantStatus struct {
	Variant catalog.Variant         `json:"variant"`
	Record  catalog.OwnershipRecord `json:"record"`
}

// Series lists every variant of one country and year with its
// ownership state, in catalog order. Year zero lists all years.
func (s *Service) Series(country catalog.Country, year int) ([]VariantStatus, error) {
	if _, ok := catalog.CountryByName(country); !ok {
		return nil, fmt.Errorf("unknown country %q", country)
	}
	f := catalog.Filter{Country: &country}
	if year != 0 {
		f.Year = &year
	}
	variants := s.cat.FindCandidates(f)
	out := make([]VariantStatus, 0, len(variants))
	for _, v := range variants {
		out = append(out, VariantStatus{Variant: v, Record: s.ledger.Record(v.Key)})
	}
	return out, nil
}

// Events returns the submission audit log, oldest first.
func (s *Service) Events() ([]*SubmissionEvent, error) {
	events, err := s.db.ListEvents()
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Ledger exposes the underlying ledger for offline tooling.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}
