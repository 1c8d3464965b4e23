package extract

import (
	"regexp"
	"strings"
	"time"
)

// Thai receipts print years in the Buddhist era; anything past the cutoff is
// normalized back to Gregorian by subtracting the fixed offset.
const (
	buddhistYearCutoff = 2500
	buddhistEraOffset  = 543
)

// totalKeywords flag a line as carrying the receipt total. English plus Thai;
// matching is containment on the lowercased line.
var totalKeywords = []string{
	"total", "amount", "sum",
	"รวม", "ยอดรวม", "รวมทั้งสิ้น", "ยอดสุทธิ", "จำนวนเงิน", "สุทธิ",
}

// itemSkipKeywords disqualify a line from item parsing (summary rows, taxes,
// tendered cash and change).
var itemSkipKeywords = []string{
	"total", "subtotal", "tax", "vat", "change", "cash",
	"รวม", "ยอด", "ภาษี", "เงินสด", "เงินทอน",
}

// merchantKeywords mark a line as a business name. Thai terms cover
// company/shop/branch/receipt/tax-invoice/Ltd.
var merchantKeywords = []string{
	"store", "shop", "restaurant", "cafe", "market",
	"บริษัท", "ร้าน", "สาขา", "ใบเสร็จ", "ใบกำกับภาษี", "จำกัด",
}

var thaiMonths = map[string]time.Month{
	"มกราคม":     time.January,
	"กุมภาพันธ์": time.February,
	"มีนาคม":     time.March,
	"เมษายน":     time.April,
	"พฤษภาคม":    time.May,
	"มิถุนายน":   time.June,
	"กรกฎาคม":    time.July,
	"สิงหาคม":    time.August,
	"กันยายน":    time.September,
	"ตุลาคม":     time.October,
	"พฤศจิกายน":  time.November,
	"ธันวาคม":    time.December,
	"ม.ค.":       time.January,
	"ก.พ.":       time.February,
	"มี.ค.":      time.March,
	"เม.ย.":      time.April,
	"พ.ค.":       time.May,
	"มิ.ย.":      time.June,
	"ก.ค.":       time.July,
	"ส.ค.":       time.August,
	"ก.ย.":       time.September,
	"ต.ค.":       time.October,
	"พ.ย.":       time.November,
	"ธ.ค.":       time.December,
}

var englishMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// englishMonthRe matches month-first textual dates like "Jan 1, 2023" or
// "February 14 2024".
var englishMonthRe = regexp.MustCompile(
	`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{2,4})\b`)

// thaiMonthRe matches day-first Thai dates like "1 มกราคม 2566" or
// "15 ธ.ค. 2567"; built from the month table so both full and abbreviated
// names are covered.
var thaiMonthRe = regexp.MustCompile(
	`(\d{1,2})\s*(` + thaiMonthAlternation() + `)\s*(\d{2,4})`)

func thaiMonthAlternation() string {
	names := make([]string, 0, len(thaiMonths))
	for name := range thaiMonths {
		names = append(names, regexp.QuoteMeta(name))
	}
	// Longest-first so full names win over abbreviations.
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if len(names[j]) > len(names[i]) {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	return strings.Join(names, "|")
}

func containsAny(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
