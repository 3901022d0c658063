package normalize

import (
	"math"
	"strconv"
	"strings"

	"cointracker/internal/catalog"
)

var valueReplacer = strings.NewReplacer(
	"€", " euro ",
	"euros", "euro",
	"cents", "cent",
	"ct", "cent",
	",", ".",
)

// Value maps a textual or numeric coin value onto one of the eight
// denominations. Accepted forms include "2 euro", "2€", "50 Cent",
// "200 cent", "0.10 euro" and bare cent amounts like "20". Bare "1"
// and "2" are rejected as ambiguous between cent and euro.
func Value(raw string) (catalog.Denomination, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = valueReplacer.Replace(s)
	fields := strings.Fields(s)

	// "50ct" collapses to "50cent" without a separator.
	if len(fields) == 1 {
		if amount := strings.TrimSuffix(fields[0], "cent"); amount != fields[0] {
			fields = []string{amount, "cent"}
		} else if amount := strings.TrimSuffix(fields[0], "euro"); amount != fields[0] {
			fields = []string{amount, "euro"}
		}
	}

	switch len(fields) {
	case 1:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, false
		}
		// The original collection rule: a bare 5, 10, 20 or 50 can
		// only mean cents. 1 and 2 stay ambiguous.
		switch n {
		case 5, 10, 20, 50:
			return centsToDenomination(n)
		}
		return 0, false
	case 2:
		amount, unit := fields[0], fields[1]
		switch unit {
		case "cent":
			n, err := strconv.Atoi(amount)
			if err != nil {
				return 0, false
			}
			return centsToDenomination(n)
		case "euro":
			f, err := strconv.ParseFloat(amount, 64)
			if err != nil {
				return 0, false
			}
			cents := int(math.Round(f * 100))
			if math.Abs(f*100-float64(cents)) > 1e-6 {
				// Guard against values like 0.015 euro.
				return 0, false
			}
			return centsToDenomination(cents)
		}
	}
	return 0, false
}

func centsToDenomination(cents int) (catalog.Denomination, bool) {
	for _, d := range catalog.Denominations {
		if d.Cents() == cents {
			return d, true
		}
	}
	return 0, false
}
