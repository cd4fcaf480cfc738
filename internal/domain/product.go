package domain

// CatalogProduct is a curated product eligible to be matched against
// extracted dish names. Aliases are checked in order during matching.
type CatalogProduct struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// MatchOutcome is the result of matching one extracted dish name against
// the catalog. Matched implies ProductID is set and Confidence >= 0.80.
type MatchOutcome struct {
	QueryName   string  `json:"queryName"`
	Matched     bool    `json:"matched"`
	Confidence  float64 `json:"confidence"`
	ProductID   string  `json:"productId,omitempty"`
	MatchedName string  `json:"matchedName,omitempty"`
}

// ImageSourcePlaceholder tags image records synthesized when no real
// image could be retrieved.
const ImageSourcePlaceholder = "placeholder"

// ImageRecord is a single representative photo for a dish.
type ImageRecord struct {
	URL             string `json:"url"`
	Source          string `json:"source"`
	Photographer    string `json:"photographer,omitempty"`
	PhotographerURL string `json:"photographerUrl,omitempty"`
}

// EnrichedItem is a matched dish with its OCR display fields. Images and
// ImageURL are empty when the item is first built and are filled in by the
// background enrichment run.
type EnrichedItem struct {
	Name         string        `json:"name"`
	NameEnglish  string        `json:"nameEnglish,omitempty"`
	Matched      bool          `json:"matched"`
	Confidence   float64       `json:"confidence"`
	ProductID    string        `json:"productId,omitempty"`
	MatchedName  string        `json:"matchedName,omitempty"`
	Price        string        `json:"price,omitempty"`
	Description  string        `json:"description,omitempty"`
	ParsingError string        `json:"parsingError,omitempty"`
	Images       []ImageRecord `json:"images,omitempty"`
	ImageURL     string        `json:"imageUrl,omitempty"`
}
