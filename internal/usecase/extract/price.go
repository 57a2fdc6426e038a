package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var numberRe = regexp.MustCompile(`\d+(\.\d*)?`)

// PriceAmount returns the numerically largest number in text.
// "Under 50 or 120.5" yields 120.5; text without digits yields an invalid NullDecimal.
func PriceAmount(text string) decimal.NullDecimal {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, m := range numberRe.FindAllString(text, -1) {
		d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
		if err != nil {
			continue
		}
		if !found || d.GreaterThan(best) {
			best, found = d, true
		}
	}
	if !found {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(best)
}

// HasNumber reports whether text contains any numeric substring.
func HasNumber(text string) bool {
	return numberRe.MatchString(text)
}
