// internal/fienta/urls.go
package fienta

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBaseURL is the public Fienta console origin.
const DefaultBaseURL = "https://fienta.com"

// Site builds and recognizes the console URL shapes for one event.
type Site struct {
	BaseURL string
	EventID string
}

// NewSite normalizes the base URL (no trailing slash) and pins the event.
func NewSite(baseURL, eventID string) Site {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Site{BaseURL: strings.TrimRight(baseURL, "/"), EventID: eventID}
}

// ListingURL is the paginated discount overview for the event.
func (s Site) ListingURL() string {
	return fmt.Sprintf("%s/my/events/%s/discounts", s.BaseURL, s.EventID)
}

// SearchURL is the listing filtered by a search term.
func (s Site) SearchURL(term string) string {
	return s.ListingURL() + "?search=" + url.QueryEscape(term)
}

// PageURL is page n of the listing, n starting at 1.
func (s Site) PageURL(n int) string {
	if n <= 1 {
		return s.ListingURL()
	}
	return fmt.Sprintf("%s?page=%d", s.ListingURL(), n)
}

// NewDiscountURL is the raw-URL fallback for the "add new" control.
func (s Site) NewDiscountURL() string {
	return s.ListingURL() + "/new"
}

// EditURL is the single-entity form page for a discovered discount id.
func (s Site) EditURL(discountID string) string {
	return fmt.Sprintf("%s/my/events/%s/discounts/%s/edit", s.BaseURL, s.EventID, discountID)
}

// OrdersURL is the transaction listing filtered by discount id.
func (s Site) OrdersURL(discountID string) string {
	return fmt.Sprintf("%s/my/events/%s/orders?discount=%s", s.BaseURL, s.EventID, url.QueryEscape(discountID))
}

// OrderEditURL is the transaction detail view.
func (s Site) OrderEditURL(orderID string) string {
	return fmt.Sprintf("%s/my/orders/%s/edit", s.BaseURL, orderID)
}

// Resolve turns a relative console href into an absolute URL.
func (s Site) Resolve(href string) string {
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return s.BaseURL + "/" + strings.TrimLeft(href, "/")
}

var (
	listingPathRe = regexp.MustCompile(`/events/\d+/discounts/?(?:\?.*)?$`)
	editPathRe    = regexp.MustCompile(`/discounts/(\d+)/edit`)
	orderEditRe   = regexp.MustCompile(`/orders/(\d+)/edit`)
)

// IsListingURL reports whether u points at the discount listing view.
func IsListingURL(u string) bool {
	return listingPathRe.MatchString(u)
}

// IsEditURL reports whether u points at a single-entity edit view.
func IsEditURL(u string) bool {
	return editPathRe.MatchString(u)
}

// DiscountIDFromHref extracts the opaque remote id from an edit link, or ""
// when the href does not look like an edit location.
func DiscountIDFromHref(href string) string {
	m := editPathRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// OrderIDFromHref extracts the order id from an order edit link.
func OrderIDFromHref(href string) string {
	m := orderEditRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}
