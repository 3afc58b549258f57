// internal/fienta/urls_test.go
package fienta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteURLs(t *testing.T) {
	site := NewSite("https://fienta.com/", "12345")

	assert.Equal(t, "https://fienta.com/my/events/12345/discounts", site.ListingURL())
	assert.Equal(t, "https://fienta.com/my/events/12345/discounts?search=SUMMER+10", site.SearchURL("SUMMER 10"))
	assert.Equal(t, site.ListingURL(), site.PageURL(1))
	assert.Equal(t, "https://fienta.com/my/events/12345/discounts?page=3", site.PageURL(3))
	assert.Equal(t, "https://fienta.com/my/events/12345/discounts/new", site.NewDiscountURL())
	assert.Equal(t, "https://fienta.com/my/events/12345/discounts/987/edit", site.EditURL("987"))
	assert.Equal(t, "https://fienta.com/my/events/12345/orders?discount=987", site.OrdersURL("987"))
	assert.Equal(t, "https://fienta.com/my/orders/555/edit", site.OrderEditURL("555"))
}

func TestSiteResolve(t *testing.T) {
	site := NewSite("https://fienta.com", "1")

	assert.Equal(t, "https://fienta.com/my/events/1/discounts/9/edit", site.Resolve("/my/events/1/discounts/9/edit"))
	assert.Equal(t, "https://other.example/x", site.Resolve("https://other.example/x"))
	assert.Equal(t, "", site.Resolve(""))
}

func TestURLClassification(t *testing.T) {
	assert.True(t, IsListingURL("https://fienta.com/my/events/12345/discounts"))
	assert.True(t, IsListingURL("https://fienta.com/my/events/12345/discounts?page=2"))
	assert.True(t, IsListingURL("https://fienta.com/my/events/12345/discounts?search=X"))
	assert.False(t, IsListingURL("https://fienta.com/my/events/12345/discounts/9/edit"))
	assert.False(t, IsListingURL("https://fienta.com/my/events/12345/orders"))

	assert.True(t, IsEditURL("https://fienta.com/my/events/12345/discounts/9/edit"))
	assert.False(t, IsEditURL("https://fienta.com/my/events/12345/discounts"))
}

func TestIDExtraction(t *testing.T) {
	assert.Equal(t, "987", DiscountIDFromHref("/my/events/1/discounts/987/edit"))
	assert.Equal(t, "", DiscountIDFromHref("/my/events/1/discounts"))
	assert.Equal(t, "555", OrderIDFromHref("/my/orders/555/edit"))
	assert.Equal(t, "", OrderIDFromHref("/my/orders"))
}
