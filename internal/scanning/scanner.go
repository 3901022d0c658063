package scanning

// CoinData is the raw attribute guess extracted from a coin photo.
// Fields are free text exactly as the model produced them; the
// normalize package owns turning them into canonical values.
type CoinData struct {
	Value      string             `json:"value"`
	Country    string             `json:"country"`
	Year       string             `json:"year"`
	Mint       string             `json:"mint"`
	Confidence map[string]float64 `json:"confidence,omitempty"`
}

// Scanner extracts a coin description from an image.
type Scanner interface {
	// ScanCoin analyzes a coin photo and extracts its attributes.
	ScanCoin(imageData []byte, contentType string) (*CoinData, error)
	// Close releases scanner resources.
	Close() error
}
