package sales

import (
	"fmt"
	"strings"
)

const (
	QuotationCodePrefix = "COT"
	OrderCodePrefix     = "PED"
)

// CodePrefixForYear returns the "PREFIX-YYYY-" part of a document code
func CodePrefixForYear(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// NextCode returns the code following lastCode within the year. An empty or
// foreign lastCode starts the sequence at 1.
func NextCode(prefix string, year int, lastCode string) string {
	p := CodePrefixForYear(prefix, year)
	n := 0
	if strings.HasPrefix(lastCode, p) {
		if _, err := fmt.Sscanf(strings.TrimPrefix(lastCode, p), "%d", &n); err != nil {
			n = 0
		}
	}
	return fmt.Sprintf("%s%04d", p, n+1)
}
