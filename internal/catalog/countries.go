package catalog

import "sort"

// CountryInfo describes an issuing country: its ISO-style code, the
// first year coins were struck bearing its name, and the set of mint
// marks if it strikes at multiple facilities.
type CountryInfo struct {
	Name      Country
	Code      string
	FirstYear int
	MintMarks []string
}

// The euro-issuing countries: the eurozone members plus the four
// microstates that mint their own coins. FirstYear is the earliest
// year appearing on circulation coins, not the year of accession:
// Belgium, Finland, France, the Netherlands and Spain struck coins
// dated 1999 through 2001 before the cash changeover.
var countryTable = []CountryInfo{
	{Name: "andorra", Code: "AD", FirstYear: 2014},
	{Name: "austria", Code: "AT", FirstYear: 2002},
	{Name: "belgium", Code: "BE", FirstYear: 1999},
	{Name: "croatia", Code: "HR", FirstYear: 2023},
	{Name: "cyprus", Code: "CY", FirstYear: 2008},
	{Name: "estonia", Code: "EE", FirstYear: 2011},
	{Name: "finland", Code: "FI", FirstYear: 1999},
	{Name: "france", Code: "FR", FirstYear: 1999},
	{Name: "germany", Code: "DE", FirstYear: 2002, MintMarks: []string{"A", "D", "F", "G", "J"}},
	{Name: "greece", Code: "GR", FirstYear: 2002},
	{Name: "ireland", Code: "IE", FirstYear: 2002},
	{Name: "italy", Code: "IT", FirstYear: 2002},
	{Name: "latvia", Code: "LV", FirstYear: 2014},
	{Name: "lithuania", Code: "LT", FirstYear: 2015},
	{Name: "luxembourg", Code: "LU", FirstYear: 2002},
	{Name: "malta", Code: "MT", FirstYear: 2008},
	{Name: "monaco", Code: "MC", FirstYear: 2002},
	{Name: "netherlands", Code: "NL", FirstYear: 1999},
	{Name: "portugal", Code: "PT", FirstYear: 2002},
	{Name: "san marino", Code: "SM", FirstYear: 2002},
	{Name: "slovakia", Code: "SK", FirstYear: 2009},
	{Name: "slovenia", Code: "SI", FirstYear: 2007},
	{Name: "spain", Code: "ES", FirstYear: 1999},
	{Name: "vatican", Code: "VA", FirstYear: 2002},
}

var countryIndex = func() map[Country]CountryInfo {
	m := make(map[Country]CountryInfo, len(countryTable))
	for _, c := range countryTable {
		m[c.Name] = c
	}
	return m
}()

// Countries returns the country metadata sorted by name.
func Countries() []CountryInfo {
	out := make([]CountryInfo, len(countryTable))
	copy(out, countryTable)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CountryByName looks up country metadata by canonical name.
func CountryByName(name Country) (CountryInfo, bool) {
	c, ok := countryIndex[name]
	return c, ok
}

// UsesMintMarks reports whether the country strikes coins at multiple
// facilities and therefore requires a mint mark for identification.
func UsesMintMarks(name Country) bool {
	c, ok := countryIndex[name]
	return ok && len(c.MintMarks) > 0
}
