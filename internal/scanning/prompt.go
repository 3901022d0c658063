package scanning

// coinScanPrompt is shared by all LLM providers.
const coinScanPrompt = `You are analyzing a photo of a single euro coin. Carefully inspect both the common side (the value side) and the national side, then extract:

1. **Value**: the face value of the coin. One of: 1 cent, 2 cent, 5 cent, 10 cent, 20 cent, 50 cent, 1 euro, 2 euro. Never use fractional euro amounts; say "10 cent", not "0.1 euro".

2. **Country**: the issuing country, identified from the national side design, the country name or its abbreviation on the coin. Examples: "Germany", "France", "San Marino".

3. **Year**: the four-digit year stamped on the national side.

4. **Mint**: the mint mark, if the coin carries one. German coins carry a single letter: A, D, F, G or J. Most other countries have no mint mark; in that case use null.

Return ONLY valid JSON in this exact format:
{
  "value": "2 euro",
  "country": "Germany",
  "year": "2015",
  "mint": "D",
  "confidence": {"value": 0.99, "country": 0.95, "year": 0.9, "mint": 0.8}
}

Important:
- Every attribute value must be a string; use null for anything you cannot read
- The confidence object maps each extracted field to a 0..1 estimate; omit fields you returned as null
- Do not guess a mint mark if none is visible
- Do not include any text before or after the JSON
- Do not use markdown code blocks`
