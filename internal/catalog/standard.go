package catalog

// Standard builds the full circulation-coin universe up to and
// including currentYear: every denomination for every year a country
// has been striking coins, with one variant per mint mark for
// countries that use them. Mintage figures are left at zero; a caller
// with real mintage data can decorate the returned variants before
// constructing the catalog.
func Standard(currentYear int) []Variant {
	var variants []Variant
	for _, ci := range Countries() {
		marks := ci.MintMarks
		if len(marks) == 0 {
			marks = []string{""}
		}
		for year := ci.FirstYear; year <= currentYear; year++ {
			for _, value := range Denominations {
				for _, mark := range marks {
					variants = append(variants, Variant{
						Key: Key{Value: value, Country: ci.Name, Year: year, Mint: mark},
					})
				}
			}
		}
	}
	return variants
}
