package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotal_KeywordLine(t *testing.T) {
	total := Total("Grocery Store\nMilk 1.50\nTOTAL: $42.99")
	require.NotNil(t, total)
	assert.Equal(t, "42.99", total.String())
}

func TestTotal_ThaiKeyword(t *testing.T) {
	total := Total("ร้านอาหาร\nข้าวผัด 45.00\nรวมทั้งสิ้น 150.00 บาท")
	require.NotNil(t, total)
	assert.Equal(t, "150", total.String())
}

func TestTotal_KeywordWinsOverEarlierAmount(t *testing.T) {
	// An item amount appears before the total line; the keyword line wins.
	total := Total("Coffee 3.50\nSandwich 8.00\nTotal 11.50")
	require.NotNil(t, total)
	assert.Equal(t, "11.5", total.String())
}

func TestTotal_NoKeywordFallsBackToFirstAmount(t *testing.T) {
	total := Total("Coffee 3.50\nSandwich 8.00")
	require.NotNil(t, total)
	assert.Equal(t, "3.5", total.String())
}

func TestTotal_ThousandsSeparators(t *testing.T) {
	total := Total("TOTAL 1,234.56")
	require.NotNil(t, total)
	assert.Equal(t, "1234.56", total.String())
}

func TestTotal_RejectsThreeDecimalDigits(t *testing.T) {
	assert.Nil(t, Total("TOTAL 9.999"))
}

func TestTotal_NoAmount(t *testing.T) {
	assert.Nil(t, Total("no numbers here\njust text"))
}

func TestDate_NumericDayFirst(t *testing.T) {
	date := Date("01/02/2024")
	require.NotNil(t, date)
	assert.Equal(t, "2024-02-01", *date)
}

func TestDate_TwoDigitYear(t *testing.T) {
	date := Date("31/12/23")
	require.NotNil(t, date)
	assert.Equal(t, "2023-12-31", *date)
}

func TestDate_ISO(t *testing.T) {
	date := Date("Receipt #1234\n2024-02-01 14:30")
	require.NotNil(t, date)
	assert.Equal(t, "2024-02-01", *date)
}

func TestDate_EnglishMonthName(t *testing.T) {
	date := Date("Jan 1, 2023")
	require.NotNil(t, date)
	assert.Equal(t, "2023-01-01", *date)

	date = Date("February 14 2024")
	require.NotNil(t, date)
	assert.Equal(t, "2024-02-14", *date)
}

func TestDate_ThaiMonthName(t *testing.T) {
	date := Date("15 ธันวาคม 2566")
	require.NotNil(t, date)
	assert.Equal(t, "2023-12-15", *date)

	date = Date("1 ม.ค. 2567")
	require.NotNil(t, date)
	assert.Equal(t, "2024-01-01", *date)
}

func TestDate_BuddhistEraNumeric(t *testing.T) {
	// POS systems print numeric dates in the Buddhist era too.
	date := Date("01/02/2567")
	require.NotNil(t, date)
	assert.Equal(t, "2024-02-01", *date)
}

func TestDate_RejectsInvalidComponents(t *testing.T) {
	assert.Nil(t, Date("13/13/2024"))
	assert.Nil(t, Date("32/01/2024"))
	assert.Nil(t, Date("no date here"))
}

func TestDate_InvalidMatchDoesNotMaskLaterValid(t *testing.T) {
	date := Date("ref 99/99/2024\nprinted 05/06/2024")
	require.NotNil(t, date)
	assert.Equal(t, "2024-06-05", *date)
}

func TestMerchant_Keyword(t *testing.T) {
	m := Merchant("Receipt #55\n7-Eleven Store\n01/02/2024")
	require.NotNil(t, m)
	assert.Equal(t, "7-Eleven Store", *m)
}

func TestMerchant_ThaiKeyword(t *testing.T) {
	m := Merchant("ใบเสร็จรับเงิน\n01/02/2567")
	require.NotNil(t, m)
	assert.Equal(t, "ใบเสร็จรับเงิน", *m)
}

func TestMerchant_FallbackSkipsDateAndNumericLines(t *testing.T) {
	m := Merchant("123-456-7890\nJoe's Diner\nsomething else")
	require.NotNil(t, m)
	assert.Equal(t, "Joe's Diner", *m)
}

func TestMerchant_NoCandidate(t *testing.T) {
	assert.Nil(t, Merchant("01/02/2024\n12:30\n42.99"))
}

func TestItems_QuantityAndDefault(t *testing.T) {
	items := Items("Milk 2x1.50\nBread 2.00")
	require.Len(t, items, 2)

	assert.Equal(t, "Milk", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "1.5", items[0].Price.String())

	assert.Equal(t, "Bread", items[1].Name)
	assert.Equal(t, 1, items[1].Quantity)
	assert.Equal(t, "2", items[1].Price.String())
}

func TestItems_ThaiName(t *testing.T) {
	items := Items("ข้าวผัด 2 x 45.00")
	require.Len(t, items, 1)
	assert.Equal(t, "ข้าวผัด", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "45", items[0].Price.String())
}

func TestItems_SkipsSummaryLines(t *testing.T) {
	items := Items("Coffee 3.50\nSubtotal 3.50\nTax 0.25\nTOTAL 3.75")
	require.Len(t, items, 1)
	assert.Equal(t, "Coffee", items[0].Name)
}

func TestItems_RejectsShortAndLetterlessNames(t *testing.T) {
	assert.Empty(t, Items("ab 1"))       // below minimum line length
	assert.Empty(t, Items("1234 5.00")) // no letter in name
	assert.Empty(t, Items("x 5.00"))    // name too short
}

func TestItems_NeverNil(t *testing.T) {
	items := Items("")
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestExtract_FullReceipt(t *testing.T) {
	text := "Grocery Store\n01/02/2024\nMilk 2x1.50\nBread 2.00\nTOTAL: $5.00"

	data := Extract(text)

	require.NotNil(t, data.Total)
	assert.Equal(t, "5", data.Total.String())

	require.NotNil(t, data.Date)
	assert.Equal(t, "2024-02-01", *data.Date)

	require.NotNil(t, data.Merchant)
	assert.Equal(t, "Grocery Store", *data.Merchant)

	require.Len(t, data.Items, 2)
	assert.Equal(t, "Milk", data.Items[0].Name)
	assert.Equal(t, 2, data.Items[0].Quantity)
	assert.Equal(t, "Bread", data.Items[1].Name)
	assert.Equal(t, 1, data.Items[1].Quantity)
}

func TestExtract_PartialFieldsStayIndependent(t *testing.T) {
	// A missing date must not block total or merchant extraction.
	data := Extract("Corner Shop\nTOTAL 12.00")
	assert.NotNil(t, data.Total)
	assert.NotNil(t, data.Merchant)
	assert.Nil(t, data.Date)
	assert.NotNil(t, data.Items)
}
