package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"cointracker/internal/catalog"
)

// maxCountryDistance bounds the edit-distance fallback. Anything
// further from every known name than this is UnknownCountry.
const maxCountryDistance = 2

// countryAliases maps folded spellings onto canonical country names:
// German names (the collection spreadsheet is German), ISO codes and
// common alternates. Canonical names and codes are added at init.
var countryAliases = map[string]catalog.Country{
	"belgien":      "belgium",
	"deutschland":  "germany",
	"brd":          "germany",
	"estland":      "estonia",
	"finnland":     "finland",
	"frankreich":   "france",
	"griechenland": "greece",
	"hellas":       "greece",
	"el":           "greece",
	"irland":       "ireland",
	"eire":         "ireland",
	"italien":      "italy",
	"kroatien":     "croatia",
	"lettland":     "latvia",
	"litauen":      "lithuania",
	"luxemburg":    "luxembourg",
	"niederlande":  "netherlands",
	"holland":      "netherlands",
	"osterreich":   "austria",
	"oesterreich":  "austria",
	"slowakei":     "slovakia",
	"slowenien":    "slovenia",
	"spanien":      "spain",
	"espana":       "spain",
	"zypern":       "cyprus",
	"monako":       "monaco",
	"vatikan":      "vatican",
	"vatican city": "vatican",
	"vatikanstadt": "vatican",
	"san marino":   "san marino",
	"sanmarino":    "san marino",
}

func init() {
	for _, ci := range catalog.Countries() {
		countryAliases[string(ci.Name)] = ci.Name
		countryAliases[strings.ToLower(ci.Code)] = ci.Name
	}
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldCountry lowercases, strips diacritics and punctuation, and
// collapses whitespace, so "Österreich." and "osterreich" compare
// equal.
func foldCountry(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	s = strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// CountryName resolves a raw country description to a canonical
// country. Exact alias hits win; otherwise the nearest name within
// the edit-distance bound is taken, unless two countries tie for it.
func CountryName(raw string) (catalog.Country, bool) {
	folded := foldCountry(raw)
	if folded == "" {
		return "", false
	}
	if c, ok := countryAliases[folded]; ok {
		return c, true
	}

	// Codes are too short for fuzzy matching.
	if len(folded) <= 3 {
		return "", false
	}

	best := maxCountryDistance + 1
	var match catalog.Country
	ambiguous := false
	for alias, country := range countryAliases {
		if len(alias) <= 3 {
			continue
		}
		d := editDistance(folded, alias, maxCountryDistance)
		switch {
		case d < best:
			best, match, ambiguous = d, country, false
		case d == best && country != match:
			ambiguous = true
		}
	}
	if best > maxCountryDistance || ambiguous {
		return "", false
	}
	return match, true
}

// editDistance computes the Levenshtein distance between a and b,
// giving up early once it exceeds max.
func editDistance(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > max {
		return max + 1
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > max {
			return max + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
