package pricing

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ApplyDiscount reduces a plot's unit rate by a per-unit discount and derives
// the new total price from the plot size. Discounts are modeled as rate
// reductions rather than lump subtractions from the total, so several discount
// events on the same plot compose exactly like a single combined one.
//
// The discount is clamped to [0, currentRate]: the rate never goes negative,
// and a retried approval carrying an oversized discount converges to the same
// result instead of failing.
func ApplyDiscount(size, currentRate, perUnitDiscount float64) (newRate, newTotal float64) {
	rate := decimal.NewFromFloat(currentRate)
	disc := decimal.NewFromFloat(perUnitDiscount)

	if disc.IsNegative() {
		disc = decimal.Zero
	}
	if disc.GreaterThan(rate) {
		disc = rate
	}

	adjusted := rate.Sub(disc)
	total := decimal.NewFromFloat(size).Mul(adjusted)

	newRate, _ = adjusted.Float64()
	newTotal, _ = total.Float64()
	return newRate, newTotal
}

// TotalPrice derives a plot's total price from size and unit rate.
func TotalPrice(size, rate float64) float64 {
	v, _ := decimal.NewFromFloat(size).Mul(decimal.NewFromFloat(rate)).Float64()
	return v
}

// ParseSize extracts the numeric magnitude from a free-text plot size such as
// "1000 sq ft" or "1,250.5 sqft". Missing or malformed input yields 0 rather
// than an error so one bad row never aborts a batch recompute.
func ParseSize(text string) float64 {
	return firstNumber(text)
}

// ParseCharges extracts an embedded surcharge amount from a receipt's
// free-text "other charges" field (e.g. "Development charges 5000").
// Returns 0 when the text carries no number.
func ParseCharges(text string) float64 {
	return firstNumber(text)
}

// firstNumber returns the first decimal number embedded in text, ignoring
// thousands separators. Returns 0 when none is found.
func firstNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	var b strings.Builder
	seen := false
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
			seen = true
		case r == '.' && seen && !strings.ContainsRune(b.String(), '.'):
			b.WriteRune(r)
		case r == ',' && seen:
			// thousands separator inside the number
		default:
			if seen {
				goto done
			}
		}
	}
done:
	if !seen {
		return 0
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(b.String(), "."))
	if err != nil {
		return 0
	}
	v, _ := d.Float64()
	return v
}
