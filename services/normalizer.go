package services

import (
	"regexp"
	"strconv"
	"strings"

	"airbnb-harvester/models"
)

var (
	// countRegexp captures the first integer run in a noisy string
	countRegexp = regexp.MustCompile(`\d+`)
	// decimalRegexp captures the first float-like run (digits, optional single dot)
	decimalRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// nonDigitRegexp matches everything a currency amount is not
	nonDigitRegexp = regexp.MustCompile(`[^\d]`)
)

// Normalizer turns a noisy substring into a canonical typed value. All
// normalizers are pure and total: un-parseable input yields the sentinel,
// never an error.
type Normalizer func(string) models.Value

// ToCount extracts the first integer run. Used for bedrooms, beds and
// guest limits ("2 bedrooms" → 2).
func ToCount(text string) models.Value {
	m := countRegexp.FindString(text)
	if m == "" {
		return models.Unknown()
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return models.Unknown()
	}
	return models.IntVal(n)
}

// ToDecimal extracts the first float-like run. Used for ratings and
// fractional counts ("4.93 (120 reviews)" → 4.93, "1.5 baths" → 1.5).
func ToDecimal(text string) models.Value {
	m := decimalRegexp.FindString(text)
	if m == "" {
		return models.Unknown()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return models.Unknown()
	}
	return models.DecimalVal(f)
}

// ToCurrency strips every non-digit character and returns the remaining
// integer amount. The currency symbol is discarded, so amounts are in
// minor-agnostic units of whatever currency the page displayed.
func ToCurrency(text string) models.Value {
	digits := nonDigitRegexp.ReplaceAllString(text, "")
	if digits == "" {
		return models.Unknown()
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return models.Unknown()
	}
	return models.CurrencyVal(n)
}

// ToText trims and collapses whitespace. Blank or placeholder text is the
// sentinel, not an empty known value.
func ToText(text string) models.Value {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" || strings.EqualFold(s, "n/a") {
		return models.Unknown()
	}
	return models.TextVal(s)
}

// DerivePricePerNight floor-divides a total stay price by the night count.
// Unknown inputs or a non-positive night count yield the sentinel.
func DerivePricePerNight(total, nights models.Value) models.Value {
	if !total.Known() || !nights.Known() {
		return models.Unknown()
	}
	n := nights.Int()
	if n <= 0 {
		return models.Unknown()
	}
	return models.CurrencyVal(total.Int() / n)
}
