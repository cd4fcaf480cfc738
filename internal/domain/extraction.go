package domain

// ExtractedItem is one dish detected on a menu image by the vision model.
// Name is the original-language text as printed on the menu; NameEnglish
// is the model's translation used for image search.
type ExtractedItem struct {
	Name         string `json:"name"`
	NameEnglish  string `json:"nameEnglish,omitempty"`
	Price        string `json:"price,omitempty"`
	Description  string `json:"description,omitempty"`
	ParsingError string `json:"parsingError,omitempty"`
}

// Extraction is the full vision result for one menu image. Error is set
// for recoverable extraction failures (unreadable menu, malformed model
// output) with an empty Items list; it is not a transport failure.
type Extraction struct {
	Items []ExtractedItem `json:"products"`
	Error string          `json:"error,omitempty"`
}
