// internal/fienta/details.go
package fienta

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DetailScraper follows secondary navigation from a discount code to its
// linked orders and per-order ticket detail. Every field extraction failure
// degrades to an empty or default value; a malformed cell never aborts the
// transaction it belongs to.
type DetailScraper struct {
	page Page
	site Site
	log  *zap.Logger
}

// NewDetailScraper returns a scraper bound to the shared page handle.
func NewDetailScraper(page Page, site Site, log *zap.Logger) *DetailScraper {
	return &DetailScraper{page: page, site: site, log: log.Named("details")}
}

// Enrich returns the orders placed with the given code. Codes with zero
// recorded usage or an undiscovered remote id are skipped without touching
// the network.
func (d *DetailScraper) Enrich(ctx context.Context, code DiscountCode) ([]Order, error) {
	if code.Usage.OrdersUsed == 0 {
		return nil, nil
	}
	if code.DiscountID == "" {
		d.log.Warn("Code has usage but no discovered remote id; cannot enrich.",
			zap.String("code", code.Code))
		return nil, nil
	}

	ordersURL := d.site.OrdersURL(code.DiscountID)
	if err := d.page.Navigate(ctx, ordersURL); err != nil {
		return nil, &NavigationError{URL: ordersURL, Err: err}
	}
	html, err := d.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot of orders view: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse orders view: %w", err)
	}

	orders := extractOrderRows(doc, code.Code)
	for i := range orders {
		tickets, err := d.scrapeTickets(ctx, orders[i].OrderID)
		if err != nil {
			d.log.Warn("Could not extract ticket detail; keeping order summary.",
				zap.String("order", orders[i].OrderID), zap.Error(err))
			continue
		}
		orders[i].Tickets = tickets
	}
	return orders, nil
}

// scrapeTickets opens the order detail view and extracts the ticket lines.
// The itemized-block layout is tried first; when it yields nothing, the
// tabular layout is parsed instead, skipping header and total rows.
func (d *DetailScraper) scrapeTickets(ctx context.Context, orderID string) ([]TicketDetail, error) {
	detailURL := d.site.OrderEditURL(orderID)
	if err := d.page.Navigate(ctx, detailURL); err != nil {
		return nil, &NavigationError{URL: detailURL, Err: err}
	}
	html, err := d.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot of order detail: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse order detail: %w", err)
	}

	tickets := extractItemizedTickets(doc)
	if len(tickets) == 0 {
		tickets = extractTabularTickets(doc)
	}
	return tickets, nil
}

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	dateRe     = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}\s+\d{2}:\d{2}`)
	totalRe    = regexp.MustCompile(`(\d+(?:[.,]\d{2})?)\s*(€|EUR|USD|GBP|\$)`)
	ticketNoRe = regexp.MustCompile(`(?i)\b(\d+)\s+tickets?\b`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)
)

// extractOrderRows parses the order listing into summaries.
func extractOrderRows(doc *goquery.Document, discountCode string) []Order {
	var orders []Order
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		o := Order{DiscountCode: discountCode}

		if href, ok := row.Find(`a[href$="/edit"]`).First().Attr("href"); ok {
			o.OrderID = OrderIDFromHref(href)
		}
		if o.OrderID == "" {
			// Rows without an edit link are headers or summary lines.
			return
		}

		text := normalizeSpace(row.Text())
		if m := dateRe.FindString(text); m != "" {
			o.Date = m
		}
		if m := emailRe.FindString(text); m != "" {
			o.CustomerEmail = m
		}
		if name := strings.TrimSpace(row.Find(".buyer-name, .customer").First().Text()); name != "" {
			o.CustomerName = name
		}
		if m := phoneRe.FindString(row.Find(".buyer-phone, .phone").Text()); m != "" {
			o.CustomerPhone = strings.TrimSpace(m)
		}
		if m := totalRe.FindStringSubmatch(text); m != nil {
			o.TotalAmount = m[1]
			o.Currency = canonicalCurrency(m[2])
		}
		if m := ticketNoRe.FindStringSubmatch(text); m != nil {
			o.TicketCount, _ = strconv.Atoi(m[1])
		}
		if status := strings.TrimSpace(row.Find(".badge, .label, .status").First().Text()); status != "" {
			o.Status = status
		}

		orders = append(orders, o)
	})
	return orders
}

// extractItemizedTickets parses the primary detail layout: one block per
// ticket.
func extractItemizedTickets(doc *goquery.Document) []TicketDetail {
	var tickets []TicketDetail
	doc.Find(".ticket, .order-ticket").Each(func(_ int, block *goquery.Selection) {
		t := TicketDetail{}
		t.TicketID = strings.TrimSpace(block.Find(".ticket-id, .ticket-number").First().Text())
		t.TicketType = strings.TrimSpace(block.Find(".ticket-type, h4, h5").First().Text())
		t.AttendeeName = strings.TrimSpace(block.Find(".attendee-name, .attendee").First().Text())
		text := normalizeSpace(block.Text())
		if m := emailRe.FindString(text); m != "" {
			t.AttendeeEmail = m
		}
		if m := totalRe.FindStringSubmatch(text); m != nil {
			t.Price = m[1] + " " + canonicalCurrency(m[2])
		}
		if t.TicketID != "" || t.TicketType != "" || t.AttendeeEmail != "" {
			tickets = append(tickets, t)
		}
	})
	return tickets
}

// extractTabularTickets parses the fallback table layout, skipping rows
// recognizable as headers or totals.
func extractTabularTickets(doc *goquery.Document) []TicketDetail {
	var tickets []TicketDetail
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		text := normalizeSpace(row.Text())
		lower := strings.ToLower(text)
		if strings.HasPrefix(lower, "total") || strings.Contains(lower, "subtotal") ||
			strings.Contains(lower, "service fee") {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		t := TicketDetail{}
		t.TicketType = strings.TrimSpace(cells.Eq(0).Text())
		if cells.Length() > 1 {
			t.AttendeeName = strings.TrimSpace(cells.Eq(1).Text())
		}
		if m := emailRe.FindString(text); m != "" {
			t.AttendeeEmail = m
			if t.AttendeeName == m {
				t.AttendeeName = ""
			}
		}
		if m := totalRe.FindStringSubmatch(text); m != nil {
			t.Price = m[1] + " " + canonicalCurrency(m[2])
		}
		if t.TicketType == "" && t.AttendeeEmail == "" {
			return
		}
		tickets = append(tickets, t)
	})
	return tickets
}

func canonicalCurrency(sym string) string {
	switch sym {
	case "€":
		return "EUR"
	case "$":
		return "USD"
	default:
		return sym
	}
}
