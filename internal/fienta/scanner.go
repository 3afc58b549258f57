// internal/fienta/scanner.go
package fienta

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// maxListingPages bounds a scan so a pagination glitch can never loop the
// engine forever. No real event carries anywhere near this many pages.
const maxListingPages = 500

// Scanner paginates the discount listing and extracts each row into a
// DiscountCode. Scanning never mutates remote state.
type Scanner struct {
	page Page
	site Site
	log  *zap.Logger
}

// NewScanner returns a Scanner bound to the shared page handle.
func NewScanner(page Page, site Site, log *zap.Logger) *Scanner {
	return &Scanner{page: page, site: site, log: log.Named("scanner")}
}

// Each walks the listing page by page, starting from page 1, and invokes fn
// for every extracted row. It stops when a page yields zero rows, when no
// enabled "next" control is present, or when fn returns an error. A scan
// that stops on a missing next control before the page limit is normal; the
// ambiguity between true end-of-data and a transient UI glitch is surfaced
// as a debug log, not an error.
func (s *Scanner) Each(ctx context.Context, fn func(DiscountCode) error) error {
	for n := 1; n <= maxListingPages; n++ {
		pageURL := s.site.PageURL(n)
		if err := s.page.Navigate(ctx, pageURL); err != nil {
			return &NavigationError{URL: pageURL, Err: err}
		}

		html, err := s.page.HTML(ctx)
		if err != nil {
			return fmt.Errorf("snapshot of page %d: %w", n, err)
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return fmt.Errorf("parse page %d: %w", n, err)
		}

		rows := extractListingRows(doc, s.site)
		s.log.Debug("Listing page scanned.", zap.Int("page", n), zap.Int("rows", len(rows)))
		if len(rows) == 0 {
			return nil
		}
		for _, code := range rows {
			if code.NeedsReview {
				s.log.Warn("Usage text unparseable; counters zeroed.",
					zap.String("code", code.Code), zap.Int("page", n))
			}
			if err := fn(code); err != nil {
				return err
			}
		}

		if !hasEnabledNext(doc) {
			s.log.Debug("No next-page control; scan complete.", zap.Int("pages", n))
			return nil
		}
	}
	s.log.Warn("Scan aborted at page limit.", zap.Int("limit", maxListingPages))
	return nil
}

// Scan collects the whole listing into a slice.
func (s *Scanner) Scan(ctx context.Context) ([]DiscountCode, error) {
	var out []DiscountCode
	err := s.Each(ctx, func(c DiscountCode) error {
		out = append(out, c)
		return nil
	})
	return out, err
}

// amountRe matches the discount cell, e.g. "-10%", "10 %", "-5,00 €".
var amountRe = regexp.MustCompile(`-?\s*(\d+(?:[.,]\d+)?)\s*(%|€|EUR|USD|\$)`)

// extractListingRows pulls every visible row out of a listing document.
func extractListingRows(doc *goquery.Document, site Site) []DiscountCode {
	var codes []DiscountCode
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		code := extractRow(row, site)
		if code.Code == "" {
			return
		}
		codes = append(codes, code)
	})
	return codes
}

func extractRow(row *goquery.Selection, site Site) DiscountCode {
	var c DiscountCode

	// The code cell carries a copy-to-clipboard button with the raw code in
	// a data attribute; older layouts put the code in the first link.
	if v, ok := row.Find("button[data-code]").First().Attr("data-code"); ok {
		c.Code = strings.TrimSpace(v)
	}
	if c.Code == "" {
		c.Code = strings.TrimSpace(row.Find("td a").First().Text())
	}

	if href, ok := row.Find(`a[href$="/edit"]`).First().Attr("href"); ok {
		if id := DiscountIDFromHref(href); id != "" {
			c.DiscountID = id
			c.EditURL = site.Resolve(href)
		}
	}

	rowText := normalizeSpace(row.Text())
	usage, err := ParseUsage(rowText)
	c.Usage = usage
	if errors.Is(err, ErrParseMismatch) {
		c.NeedsReview = true
	}

	if m := amountRe.FindStringSubmatch(rowText); m != nil {
		c.Amount = parseDecimal(m[1])
		if m[2] == "%" {
			c.Unit = UnitPercent
		} else {
			c.Unit = UnitAbsolute
		}
	}

	if row.HasClass("disabled") || row.Find(".badge, .label").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(strings.TrimSpace(s.Text()), "disabled")
	}).Length() > 0 {
		c.Disabled = true
	}

	return c
}

// codesOnListing returns the set of code identifiers visible in a listing
// document. Used by delete verification.
func codesOnListing(doc *goquery.Document, site Site) map[string]bool {
	seen := make(map[string]bool)
	for _, c := range extractListingRows(doc, site) {
		seen[Normalize(c.Code)] = true
	}
	return seen
}

// hasEnabledNext reports whether the document carries a usable next-page
// control. The console hides or disables it on the last page, and sometimes
// drops the pagination block entirely.
func hasEnabledNext(doc *goquery.Document) bool {
	next := doc.Find(`a[rel="next"], .pagination a[aria-label="Next"], .pagination li.next a`).First()
	if next.Length() == 0 {
		return false
	}
	if next.HasClass("disabled") || next.Parent().HasClass("disabled") {
		return false
	}
	return true
}

func parseDecimal(s string) float64 {
	s = strings.ReplaceAll(s, ",", ".")
	var f float64
	_, err := fmt.Sscanf(s, "%f", &f)
	if err != nil {
		return 0
	}
	return f
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
