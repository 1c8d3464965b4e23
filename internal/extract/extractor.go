// Package extract parses structured receipt fields out of raw OCR text.
// All parsing runs ordered regex cascades over the text line by line, so a
// match earlier in the document always wins over a later one.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/receiptly/receipt-ocr-service/internal/models"
)

const (
	merchantScanLines = 10
	minItemLineLen    = 5
)

// amountRe captures a monetary value with a mandatory 1-2 digit fraction.
// Thousands may be separated by commas or spaces; a currency marker may
// prefix or suffix the number.
var amountRe = regexp.MustCompile(
	`(?:[$€£¥฿]\s*)?((?:\d{1,3}(?:[,\s]\d{3})+|\d+)\.\d{1,2})\b(?:\s*(?:฿|บาท))?`)

// numericDateRe matches day/month/year with /, - or . separators.
var numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{2,4})\b`)

// isoDateRe matches year-first dates as printed by POS systems.
var isoDateRe = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)

// itemRe matches "name [qty x] price" lines. Quantity is optional and
// separated from the price by x or *. The name/price separator is
// whitespace or a dotted leader; a single dot stays part of the price so
// "x 5.00" cannot split as name "x 5" price "00".
var itemRe = regexp.MustCompile(
	`^(.{2,}?)(?:\s+|\s*\.{2,}\s*)(?:(\d+)\s*[xX*]\s*)?(?:[$€£¥฿]\s*)?(\d+(?:\.\d{1,2})?)(?:\s*(?:฿|บาท))?$`)

var timeRe = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)

// Extract runs every field parser over the text and assembles the result.
// Fields that cannot be parsed stay nil; Items is always non-nil.
func Extract(text string) models.ExtractedData {
	data := models.ExtractedData{
		Total:    Total(text),
		Date:     Date(text),
		Merchant: Merchant(text),
		Items:    Items(text),
	}
	return data
}

// Total finds the receipt total. Lines carrying a total keyword are checked
// first in document order; if none of them yields an amount, the first
// amount anywhere in the text is used.
func Total(text string) *decimal.Decimal {
	lines := splitLines(text)
	for _, line := range lines {
		if !containsAny(line, totalKeywords) {
			continue
		}
		if amt := firstAmount(line); amt != nil {
			return amt
		}
	}
	for _, line := range lines {
		if amt := firstAmount(line); amt != nil {
			return amt
		}
	}
	return nil
}

// Date finds the receipt date and normalizes it to YYYY-MM-DD. Numeric
// day-first dates are tried before ISO dates, then localized month names.
// Two-digit years are assumed to be 20xx; Buddhist-era years are shifted
// back to Gregorian.
func Date(text string) *string {
	for _, m := range numericDateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d := formatDate(year, month, day); d != nil {
			return d
		}
	}
	for _, m := range isoDateRe.FindAllStringSubmatch(text, -1) {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if d := formatDate(year, month, day); d != nil {
			return d
		}
	}
	for _, m := range englishMonthRe.FindAllStringSubmatch(text, -1) {
		month, ok := englishMonths[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if d := formatDate(year, int(month), day); d != nil {
			return d
		}
	}
	for _, m := range thaiMonthRe.FindAllStringSubmatch(text, -1) {
		month, ok := thaiMonths[m[2]]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if d := formatDate(year, int(month), day); d != nil {
			return d
		}
	}
	return nil
}

// Merchant picks the business name. Lines in the top of the receipt that
// carry a merchant keyword win; otherwise the first line that is not a
// date, a time or mostly numeric is taken.
func Merchant(text string) *string {
	lines := splitLines(text)
	scan := lines
	if len(scan) > merchantScanLines {
		scan = scan[:merchantScanLines]
	}
	for _, line := range scan {
		if containsAny(line, merchantKeywords) {
			name := strings.TrimSpace(line)
			return &name
		}
	}
	seen := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		seen++
		if seen > 3 {
			break
		}
		if looksLikeDateOrTime(trimmed) || mostlyNumeric(trimmed) {
			continue
		}
		return &trimmed
	}
	return nil
}

// Items parses line items of the form "name [qty x] price". Summary lines
// and lines too short to carry an item are skipped. Quantity defaults to 1.
func Items(text string) []models.ItemData {
	items := []models.ItemData{}
	for _, line := range splitLines(text) {
		if utf8.RuneCountInString(line) < minItemLineLen {
			continue
		}
		if containsAny(line, itemSkipKeywords) {
			continue
		}
		m := itemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.Trim(m[1], " .:-")
		if utf8.RuneCountInString(name) < 2 || !containsLetter(name) {
			continue
		}
		price, err := decimal.NewFromString(m[3])
		if err != nil {
			continue
		}
		qty := 1
		if m[2] != "" {
			if q, err := strconv.Atoi(m[2]); err == nil && q > 0 {
				qty = q
			}
		}
		items = append(items, models.ItemData{Name: name, Price: &price, Quantity: qty})
	}
	return items
}

func firstAmount(line string) *decimal.Decimal {
	m := amountRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	raw := strings.NewReplacer(",", "", " ", "").Replace(m[1])
	amt, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &amt
}

// formatDate validates the components and renders YYYY-MM-DD, applying the
// two-digit-year and Buddhist-era adjustments. Returns nil when the
// components cannot form a date.
func formatDate(year, month, day int) *string {
	if year < 100 {
		year += 2000
	}
	if year > buddhistYearCutoff {
		year -= buddhistEraOffset
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	s := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	return &s
}

func looksLikeDateOrTime(line string) bool {
	return numericDateRe.MatchString(line) ||
		isoDateRe.MatchString(line) ||
		timeRe.MatchString(line)
}

// mostlyNumeric reports whether more than half of the non-space runes are
// digits or punctuation, which marks receipt numbers and phone lines.
func mostlyNumeric(line string) bool {
	total, numeric := 0, 0
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			numeric++
		}
	}
	return total > 0 && numeric*2 > total
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}
