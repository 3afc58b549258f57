// internal/fienta/usage.go
package fienta

import (
	"regexp"
	"strconv"
)

// usagePatterns are tried in order against the free text of a usage cell.
// Fienta renders the counters as e.g. "3 / 5 orders • 4 / 10 tickets", but
// the separator glyph and pluralization drift between console revisions, so
// each tier is progressively looser. The last tier only requires four
// numbers in two slash pairs.
var usagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*orders\b.*?(\d+)\s*/\s*(\d+)\s*tickets\b`),
	regexp.MustCompile(`(?i)(\d+)\s*/\s*(\d+)\s*order\b.*?(\d+)\s*/\s*(\d+)\s*ticket\b`),
	regexp.MustCompile(`(\d+)\s*/\s*(\d+)\D+?(\d+)\s*/\s*(\d+)`),
}

// ParseUsage extracts the four usage counters from free-text cell content.
// When no pattern matches it returns a zero-valued Usage and
// ErrParseMismatch; callers emit the row anyway and flag it for inspection.
// Partial data beats silent loss.
func ParseUsage(text string) (Usage, error) {
	for _, re := range usagePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return Usage{
			OrdersUsed:  atoiLoose(m[1]),
			OrderLimit:  atoiLoose(m[2]),
			TicketsUsed: atoiLoose(m[3]),
			TicketLimit: atoiLoose(m[4]),
		}, nil
	}
	return Usage{}, ErrParseMismatch
}

func atoiLoose(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
