// internal/fienta/mutator_test.go
package fienta

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fastOptions keeps verification polling from eating real test time.
func fastOptions() EngineOptions {
	return EngineOptions{
		ResolveWait: 5 * time.Millisecond,
		ConfirmWait: 5 * time.Millisecond,
		VerifyWait:  30 * time.Millisecond,
		Settle:      time.Millisecond,
	}
}

func searchPageFor(code, discountID string) string {
	return `<html><body><table><tbody>
<tr>
  <td><button data-code="` + code + `">Copy</button> ` + code + `</td>
  <td>-10%</td>
  <td>0 / 5 orders &bull; 0 / 10 tickets</td>
  <td><a href="/my/events/42/discounts/` + discountID + `/edit">Edit</a></td>
</tr>
</tbody></table></body></html>`
}

const editFormHTML = `<html><body><form>
<input name="code" value="OLD10">
<input name="discount" value="10">
<input name="unit" value="percent" checked>
<input name="unit" value="absolute">
<input name="order_limit" value="5">
<input name="ticket_limit" value="10">
<button type="submit">Save</button>
<button class="btn-delete">Delete</button>
</form></body></html>`

// newMutationFixture wires a fake console where OLD10 exists with remote id
// 101 and every form control resolves. Submitting redirects to the listing.
func newMutationFixture() (*fakePage, Site) {
	site := testSite()
	page := newFakePage()

	page.pages[site.SearchURL("OLD10")] = searchPageFor("OLD10", "101")
	page.pages[site.EditURL("101")] = editFormHTML
	page.pages[site.ListingURL()] = searchPageFor("OLD10", "101")

	for _, s := range [][]Strategy{
		codeFieldStrategies, amountFieldStrategies,
		orderLimitStrategies, ticketLimitStrategies,
		submitStrategies, deleteStrategies,
		unitPercentStrategies, unitAbsoluteStrategies,
	} {
		page.visible[s[0].Selector] = true
	}

	page.onClick = func(p *fakePage, selector string) {
		if selector == submitStrategies[0].Selector || selector == deleteStrategies[0].Selector {
			p.setLocation(site.ListingURL())
		}
	}
	return page, site
}

func TestRenameRewritesCodeAndVerifiesListingTransition(t *testing.T) {
	page, site := newMutationFixture()
	e := NewEngine(page, site, zap.NewNop(), fastOptions())

	err := e.Rename(context.Background(), RenamePair{Old: "OLD10", New: "NEW10"}, RenameOptions{})
	require.NoError(t, err)

	assert.Equal(t, "NEW10", page.fills[`input[name="code"]`])
	assert.Contains(t, page.clicks, `button[type="submit"]`)
	// The operation ends back on the unfiltered listing.
	assert.Equal(t, site.ListingURL(), page.navigations[len(page.navigations)-1])
}

func TestRenameLimitsOnlyLeavesCodeAlone(t *testing.T) {
	page, site := newMutationFixture()
	e := NewEngine(page, site, zap.NewNop(), fastOptions())

	err := e.Rename(context.Background(), RenamePair{Old: "OLD10", New: "OLD10X"}, RenameOptions{
		LimitsOnly: true,
		SetLimits:  true,
		OrderLimit: 7,
	})
	require.NoError(t, err)

	_, touched := page.fills[`input[name="code"]`]
	assert.False(t, touched)
	assert.Equal(t, "7", page.fills[`input[name="order_limit"]`])
}

func TestRenameFailsWhenNoListingTransition(t *testing.T) {
	page, site := newMutationFixture()
	page.onClick = nil // submit no longer redirects

	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	err := e.Rename(context.Background(), RenamePair{Old: "OLD10", New: "NEW10"}, RenameOptions{})

	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rename", verr.Op)
}

func TestRenameMissingCodeReportsElementNotFound(t *testing.T) {
	page, site := newMutationFixture()
	e := NewEngine(page, site, zap.NewNop(), fastOptions())

	err := e.Rename(context.Background(), RenamePair{Old: "GONE", New: "STILL-GONE"}, RenameOptions{})
	require.ErrorIs(t, err, ErrElementNotFound)
}

func TestRenameBatchWritesOneAuditRowPerPair(t *testing.T) {
	page, site := newMutationFixture()
	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	sink := &fakeSink{}

	pairs := []RenamePair{
		{Old: "OLD10", New: "NEW10"},
		{Old: "same", New: "SAME "}, // normalizes equal, skipped pre-network
		{Old: "", New: "X"},         // invalid
		{Old: "GONE", New: "ALSO-GONE"},
	}
	err := e.RenameBatch(context.Background(), pairs, RenameOptions{}, sink)
	require.NoError(t, err)
	require.Len(t, sink.rows, len(pairs))

	assert.Equal(t, StatusOK, sink.rows[0][2])
	assert.Equal(t, StatusSkipped, sink.rows[1][2])
	assert.Equal(t, StatusError, sink.rows[2][2])
	assert.Equal(t, StatusError, sink.rows[3][2])
	assert.Contains(t, sink.rows[3][3], "element not found")
}

func TestNoOpPairNeverTouchesTheNetwork(t *testing.T) {
	page, site := newMutationFixture()
	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	sink := &fakeSink{}

	err := e.RenameBatch(context.Background(), []RenamePair{{Old: "abc", New: " ABC"}}, RenameOptions{}, sink)
	require.NoError(t, err)
	assert.Empty(t, page.navigations)
	require.Len(t, sink.rows, 1)
	assert.Equal(t, StatusSkipped, sink.rows[0][2])
}

func TestCreateFillsFormAndReturnsToListing(t *testing.T) {
	page, site := newMutationFixture()
	page.visible[addNewStrategies[0].Selector] = true
	page.visible[descriptionStrategies[0].Selector] = true

	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	err := e.Create(context.Background(), CreateSpec{
		Code:        "FRESH25",
		Amount:      25,
		Unit:        UnitPercent,
		OrderLimit:  100,
		TicketLimit: 200,
		Description: "press allocation",
	})
	require.NoError(t, err)

	assert.Equal(t, "FRESH25", page.fills[`input[name="code"]`])
	assert.Equal(t, "25", page.fills[`input[name="discount"]`])
	assert.Equal(t, "100", page.fills[`input[name="order_limit"]`])
	assert.Equal(t, "200", page.fills[`input[name="ticket_limit"]`])
	assert.Equal(t, "press allocation", page.fills[`textarea[name="description"]`])
}

func TestCreateFallsBackToRawURLWhenNoAddControl(t *testing.T) {
	page, site := newMutationFixture()
	// No add-new strategy is visible; the engine should deep-link instead.

	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	err := e.Create(context.Background(), CreateSpec{Code: "FRESH25", Amount: 25, Unit: UnitPercent})
	require.NoError(t, err)

	assert.Contains(t, page.navigations, site.NewDiscountURL())
}

func TestCreateRejectsEmptyCode(t *testing.T) {
	page, site := newMutationFixture()
	e := NewEngine(page, site, zap.NewNop(), fastOptions())

	err := e.Create(context.Background(), CreateSpec{Code: "  "})
	require.Error(t, err)
	assert.Empty(t, page.navigations)
}

func TestUpdateTogglesUnitWhenItDiffers(t *testing.T) {
	page, site := newMutationFixture()

	// The edit form reports percent as checked; flipping to absolute must
	// click the toggle, and the follow-up read must show it applied.
	toggled := strings.Replace(editFormHTML,
		`<input name="unit" value="percent" checked>
<input name="unit" value="absolute">`,
		`<input name="unit" value="percent">
<input name="unit" value="absolute" checked>`, 1)

	page.onClick = func(p *fakePage, selector string) {
		switch selector {
		case unitAbsoluteStrategies[0].Selector:
			p.mu.Lock()
			p.pages[site.EditURL("101")] = toggled
			p.mu.Unlock()
		case submitStrategies[0].Selector:
			p.setLocation(site.ListingURL())
		}
	}

	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	err := e.Update(context.Background(), UpdateSpec{Code: "OLD10", Amount: 5, Unit: UnitAbsolute})
	require.NoError(t, err)

	assert.Contains(t, page.clicks, unitAbsoluteStrategies[0].Selector)
	assert.Equal(t, "5", page.fills[`input[name="discount"]`])
}

func TestUpdateSkipsUnitToggleWhenAlreadyRight(t *testing.T) {
	page, site := newMutationFixture()
	e := NewEngine(page, site, zap.NewNop(), fastOptions())

	err := e.Update(context.Background(), UpdateSpec{Code: "OLD10", Amount: 15, Unit: UnitPercent})
	require.NoError(t, err)
	assert.NotContains(t, page.clicks, unitPercentStrategies[0].Selector)
	assert.NotContains(t, page.clicks, unitAbsoluteStrategies[0].Selector)
}

func TestDeleteRequiresBothVerificationChecks(t *testing.T) {
	t.Run("success when listing reached and code gone", func(t *testing.T) {
		page, site := newMutationFixture()
		page.onClick = func(p *fakePage, selector string) {
			if selector == deleteStrategies[0].Selector {
				p.mu.Lock()
				p.pages[site.ListingURL()] = `<html><body><table><tbody></tbody></table></body></html>`
				p.mu.Unlock()
				p.setLocation(site.ListingURL())
			}
		}

		e := NewEngine(page, site, zap.NewNop(), fastOptions())
		err := e.Delete(context.Background(), "OLD10", "101")
		require.NoError(t, err)
	})

	t.Run("failure when code still on listing", func(t *testing.T) {
		page, site := newMutationFixture()
		// Delete click reaches the listing, but the row survives.

		e := NewEngine(page, site, zap.NewNop(), fastOptions())
		err := e.Delete(context.Background(), "OLD10", "101")

		var verr *VerificationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "delete", verr.Op)
		assert.Contains(t, verr.Reason, "still visible")
	})

	t.Run("failure when stuck on edit view", func(t *testing.T) {
		page, site := newMutationFixture()
		page.onClick = nil // delete click goes nowhere

		e := NewEngine(page, site, zap.NewNop(), fastOptions())
		err := e.Delete(context.Background(), "OLD10", "101")

		var verr *VerificationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Reason, "still on")
	})
}

func TestDeleteToleratesMissingConfirmDialog(t *testing.T) {
	page, site := newMutationFixture()
	page.onClick = func(p *fakePage, selector string) {
		if selector == deleteStrategies[0].Selector {
			p.mu.Lock()
			p.pages[site.ListingURL()] = `<html><body><table><tbody></tbody></table></body></html>`
			p.mu.Unlock()
			p.setLocation(site.ListingURL())
		}
	}

	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	require.NoError(t, e.Delete(context.Background(), "OLD10", "101"))

	for _, c := range confirmStrategies {
		assert.NotContains(t, page.clicks, c.Selector)
	}
}

func TestDeleteBatchRecordsEveryOutcome(t *testing.T) {
	page, site := newMutationFixture()
	page.pages[site.SearchURL("GONE")] = `<html><body><table><tbody></tbody></table></body></html>`
	page.onClick = func(p *fakePage, selector string) {
		if selector == deleteStrategies[0].Selector {
			p.mu.Lock()
			p.pages[site.ListingURL()] = `<html><body><table><tbody></tbody></table></body></html>`
			p.mu.Unlock()
			p.setLocation(site.ListingURL())
		}
	}

	e := NewEngine(page, site, zap.NewNop(), fastOptions())
	sink := &fakeSink{}
	err := e.DeleteBatch(context.Background(), []string{"OLD10", "GONE"}, sink)
	require.NoError(t, err)
	require.Len(t, sink.rows, 2)
	assert.Equal(t, StatusOK, sink.rows[0][2])
	assert.Equal(t, StatusError, sink.rows[1][2])
}
