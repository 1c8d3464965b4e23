package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amount fields must serialize as JSON numbers (total: 42.99, not "42.99")
	// to match the response contract consumed by the frontend.
	decimal.MarshalJSONWithoutQuotes = true
}

// EngineSource identifies which OCR engine produced a result.
type EngineSource string

const (
	SourceLocal EngineSource = "local"
	SourceCloud EngineSource = "cloud"
)

// Engine selector values accepted from callers.
const (
	EngineLocal  = "local"
	EngineCloud  = "cloud"
	EngineHybrid = "hybrid"
)

// ExtractedData is the structured purchase data parsed from receipt text.
// Total, Date and Merchant are independently optional; a miss on one never
// blocks the others. Items is never nil.
type ExtractedData struct {
	Total      *decimal.Decimal `json:"total"`
	Date       *string          `json:"date"` // normalized YYYY-MM-DD
	Merchant   *string          `json:"merchant"`
	Items      []ItemData       `json:"items"`
	Confidence float64          `json:"confidence"` // always in [0,1]
	Source     EngineSource     `json:"source"`
}

// ItemData is a single line item on a receipt.
type ItemData struct {
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity int              `json:"quantity"` // defaults to 1 when a price is found
}

// OcrResult is the externally visible unit of work: one per processed image,
// never mutated after construction.
type OcrResult struct {
	Text           string        `json:"text"`
	ExtractedData  ExtractedData `json:"extractedData"`
	Confidence     float64       `json:"confidence"`
	ProcessingTime float64       `json:"processingTime"` // seconds
	Source         EngineSource  `json:"source"`
	Engine         string        `json:"engine"` // echoes the requested selector
}
