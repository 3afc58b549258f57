// internal/fienta/mutator.go
package fienta

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AuditSink receives one outcome row per processed batch item. Rows are
// appended incrementally so a crash mid-run leaves a truthful partial log.
type AuditSink interface {
	Record(oldCode, newCode, status, message string) error
}

// Audit status values. Skipped no-op pairs are logged with a distinct
// status rather than silently dropped.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// EngineOptions tunes the mutation state machines.
type EngineOptions struct {
	// ResolveWait bounds each element-resolution attempt.
	ResolveWait time.Duration
	// ConfirmWait bounds the optional confirmation-dialog lookup.
	ConfirmWait time.Duration
	// VerifyWait bounds post-submit verification polling.
	VerifyWait time.Duration
	// Settle is the fixed pause after actions whose effect is asynchronous.
	Settle time.Duration
	// ItemInterval paces batch items; zero disables pacing.
	ItemInterval time.Duration
}

func (o *EngineOptions) fillDefaults() {
	if o.ResolveWait <= 0 {
		o.ResolveWait = 3 * time.Second
	}
	if o.ConfirmWait <= 0 {
		o.ConfirmWait = 2 * time.Second
	}
	if o.VerifyWait <= 0 {
		o.VerifyWait = 10 * time.Second
	}
	if o.Settle <= 0 {
		o.Settle = time.Second
	}
}

// Engine implements Create, Rename, Update and Delete as bounded,
// verifiable state machines operating one entity at a time. Every operation
// borrows the shared page handle and returns it to the listing view, with
// any search filter cleared, before yielding.
type Engine struct {
	page    Page
	site    Site
	res     *Resolver
	confirm *Resolver
	log     *zap.Logger
	opts    EngineOptions
	limiter *rate.Limiter
}

// NewEngine builds a mutation engine around the shared page handle.
func NewEngine(page Page, site Site, log *zap.Logger, opts EngineOptions) *Engine {
	opts.fillDefaults()
	e := &Engine{
		page:    page,
		site:    site,
		res:     NewResolver(page, opts.ResolveWait, log.Named("resolver")),
		confirm: NewResolver(page, opts.ConfirmWait, log.Named("resolver")),
		log:     log.Named("mutator"),
		opts:    opts,
	}
	if opts.ItemInterval > 0 {
		e.limiter = rate.NewLimiter(rate.Every(opts.ItemInterval), 1)
	}
	return e
}

// -- Create --

// Create adds a new discount code: navigate to the listing, resolve the
// "add new" control (direct link preferred, menu fallback, raw URL last),
// fill the form, submit, and verify loosely. The console does not always
// redirect back to the listing on success.
func (e *Engine) Create(ctx context.Context, spec CreateSpec) error {
	if strings.TrimSpace(spec.Code) == "" {
		return errors.New("create: empty code")
	}
	if err := e.navigate(ctx, e.site.ListingURL()); err != nil {
		return err
	}

	if _, err := e.res.Click(ctx, addNewStrategies...); err != nil {
		if !errors.Is(err, ErrElementNotFound) {
			return err
		}
		// Raw URL fallback when no add control resolves.
		if err := e.navigate(ctx, e.site.NewDiscountURL()); err != nil {
			return err
		}
	}

	if _, err := e.res.Fill(ctx, spec.Code, codeFieldStrategies...); err != nil {
		return err
	}
	if err := e.fillParameters(ctx, spec.Amount, spec.Unit, spec.OrderLimit, spec.TicketLimit, spec.Description, true); err != nil {
		return err
	}
	if _, err := e.res.Click(ctx, submitStrategies...); err != nil {
		return err
	}

	// Either the URL transitions back to the listing or the bounded wait
	// elapses; both count as success here.
	if !e.waitForListing(ctx, e.opts.VerifyWait) {
		e.log.Debug("No redirect after create; accepting after timeout.", zap.String("code", spec.Code))
	}
	return e.returnToListing(ctx)
}

// CreateBatch processes specs in strict input order, one audit row each.
func (e *Engine) CreateBatch(ctx context.Context, specs []CreateSpec, sink AuditSink) error {
	for _, spec := range specs {
		if err := e.pace(ctx); err != nil {
			return err
		}
		if err := e.Create(ctx, spec); err != nil {
			e.recordItem(sink, "", spec.Code, StatusError, itemMessage(err))
			e.recoverListing(ctx)
			continue
		}
		e.recordItem(sink, "", spec.Code, StatusOK, "")
	}
	return nil
}

// -- Rename --

// Rename locates the entity by its old identifier (falling back to the new
// one, which handles re-runs after partial success), rewrites the code
// field, optionally updates the caps, submits, and verifies by the URL
// transition back to the listing.
func (e *Engine) Rename(ctx context.Context, pair RenamePair, opts RenameOptions) error {
	editURL, err := e.locate(ctx, pair.Old)
	if err != nil {
		return err
	}
	if editURL == "" {
		editURL, err = e.locate(ctx, pair.New)
		if err != nil {
			return err
		}
		if editURL == "" {
			return fmt.Errorf("code %q (or %q) not on listing: %w", pair.Old, pair.New, ErrElementNotFound)
		}
		e.log.Info("Located entity under its new identifier; likely a re-run.",
			zap.String("old", pair.Old), zap.String("new", pair.New))
	}

	if err := e.navigate(ctx, editURL); err != nil {
		return err
	}
	if !opts.LimitsOnly {
		if _, err := e.res.Fill(ctx, pair.New, codeFieldStrategies...); err != nil {
			return err
		}
	}
	if opts.SetLimits {
		if err := e.fillLimits(ctx, opts.OrderLimit, opts.TicketLimit); err != nil {
			return err
		}
	}
	if _, err := e.res.Click(ctx, submitStrategies...); err != nil {
		return err
	}

	if !e.waitForListing(ctx, e.opts.VerifyWait) {
		return &VerificationError{Op: "rename", Code: pair.Old, Reason: "no transition back to listing after submit"}
	}
	return e.returnToListing(ctx)
}

// RenameBatch processes pairs in strict input order. No-op pairs (old and
// new normalize equal) are skipped before any network interaction and logged
// with a skipped status. A single bad item never aborts the batch.
func (e *Engine) RenameBatch(ctx context.Context, pairs []RenamePair, opts RenameOptions, sink AuditSink) error {
	for _, pair := range pairs {
		if !pair.Valid() {
			e.recordItem(sink, pair.Old, pair.New, StatusError, "both sides of a rename pair must be non-empty")
			continue
		}
		if pair.NoOp() {
			e.log.Debug("Skipping no-op rename.", zap.String("code", pair.Old))
			e.recordItem(sink, pair.Old, pair.New, StatusSkipped, "old and new are the same code")
			continue
		}
		if err := e.pace(ctx); err != nil {
			return err
		}
		if err := e.Rename(ctx, pair, opts); err != nil {
			e.recordItem(sink, pair.Old, pair.New, StatusError, itemMessage(err))
			e.recoverListing(ctx)
			continue
		}
		e.recordItem(sink, pair.Old, pair.New, StatusOK, "")
	}
	return nil
}

// -- Update --

// Update sets the discount magnitude and, optionally, the description. The
// unit toggle is only touched when the current unit differs from the target
// and is retried once, because the console sometimes silently ignores the
// first toggle click. Verification is loose: this form's success signal is
// not reliable.
func (e *Engine) Update(ctx context.Context, spec UpdateSpec) error {
	editURL, err := e.locate(ctx, spec.Code)
	if err != nil {
		return err
	}
	if editURL == "" {
		return fmt.Errorf("code %q not on listing: %w", spec.Code, ErrElementNotFound)
	}
	if err := e.navigate(ctx, editURL); err != nil {
		return err
	}

	if spec.Unit != "" {
		if err := e.ensureUnit(ctx, spec.Unit); err != nil {
			return err
		}
	}
	amount := strconv.FormatFloat(spec.Amount, 'f', -1, 64)
	if _, err := e.res.Fill(ctx, amount, amountFieldStrategies...); err != nil {
		return err
	}
	if spec.SetDescription {
		if _, err := e.res.Fill(ctx, spec.Description, descriptionStrategies...); err != nil {
			return err
		}
	}
	if _, err := e.res.Click(ctx, submitStrategies...); err != nil {
		return err
	}

	e.waitForListing(ctx, e.opts.VerifyWait)
	return e.returnToListing(ctx)
}

// UpdateBatch processes specs in strict input order, one audit row each.
func (e *Engine) UpdateBatch(ctx context.Context, specs []UpdateSpec, sink AuditSink) error {
	for _, spec := range specs {
		if err := e.pace(ctx); err != nil {
			return err
		}
		if err := e.Update(ctx, spec); err != nil {
			e.recordItem(sink, spec.Code, spec.Code, StatusError, itemMessage(err))
			e.recoverListing(ctx)
			continue
		}
		e.recordItem(sink, spec.Code, spec.Code, StatusOK, "")
	}
	return nil
}

// ensureUnit reads the currently selected unit and toggles it when it
// differs from the target, with one retry if the toggle does not visibly
// apply.
func (e *Engine) ensureUnit(ctx context.Context, want DiscountUnit) error {
	current, err := e.currentUnit(ctx)
	if err != nil {
		return err
	}
	if current == want {
		return nil
	}
	strategies := unitPercentStrategies
	if want == UnitAbsolute {
		strategies = unitAbsoluteStrategies
	}
	for attempt := 0; attempt < 2; attempt++ {
		if _, err := e.res.Click(ctx, strategies...); err != nil {
			return err
		}
		if err := e.page.Settle(ctx, e.opts.Settle); err != nil {
			return err
		}
		current, err = e.currentUnit(ctx)
		if err != nil {
			return err
		}
		if current == want {
			return nil
		}
		e.log.Warn("Unit toggle did not apply; retrying once.", zap.String("want", string(want)))
	}
	return &VerificationError{Op: "update", Reason: fmt.Sprintf("unit toggle stuck on %q", current)}
}

// currentUnit inspects the edit form for the selected discount unit.
func (e *Engine) currentUnit(ctx context.Context) (DiscountUnit, error) {
	html, err := e.page.HTML(ctx)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	checked := doc.Find(`input[name="unit"][checked]`).First()
	if v, ok := checked.Attr("value"); ok {
		if v == "absolute" {
			return UnitAbsolute, nil
		}
		return UnitPercent, nil
	}
	// Toggle-button variant: the active label names the unit.
	active := doc.Find(`label.active[for^="unit-"]`).First()
	if id, ok := active.Attr("for"); ok && strings.HasSuffix(id, "absolute") {
		return UnitAbsolute, nil
	}
	return UnitPercent, nil
}

// -- Delete --

// Delete removes an entity. Deletion is reported successful only when both
// independent checks pass: the resulting location matches the listing
// pattern and not the edit pattern, and the deleted identifier is absent
// from the identifiers visible on the resulting listing page. A
// location-only check produces false positives.
func (e *Engine) Delete(ctx context.Context, code, discountID string) error {
	editURL := ""
	if discountID != "" {
		editURL = e.site.EditURL(discountID)
	} else {
		located, err := e.locate(ctx, code)
		if err != nil {
			return err
		}
		editURL = located
	}
	if editURL == "" {
		return fmt.Errorf("code %q not on listing: %w", code, ErrElementNotFound)
	}

	if err := e.navigate(ctx, editURL); err != nil {
		return err
	}
	if _, err := e.res.Click(ctx, deleteStrategies...); err != nil {
		return err
	}

	// The confirmation dialog is optional; a missing one is not an error.
	if _, err := e.confirm.Click(ctx, confirmStrategies...); err != nil {
		if !errors.Is(err, ErrElementNotFound) {
			return err
		}
		e.log.Debug("No confirmation dialog appeared.", zap.String("code", code))
	}

	if !e.waitForListing(ctx, e.opts.VerifyWait) {
		loc, _ := e.page.Location(ctx)
		return &VerificationError{Op: "delete", Code: code,
			Reason: fmt.Sprintf("still on %s after delete", loc)}
	}

	html, err := e.page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("snapshot after delete: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse listing after delete: %w", err)
	}
	if codesOnListing(doc, e.site)[Normalize(code)] {
		return &VerificationError{Op: "delete", Code: code, Reason: "code still visible on listing"}
	}
	return e.returnToListing(ctx)
}

// DeleteBatch processes codes in strict input order, one audit row each.
func (e *Engine) DeleteBatch(ctx context.Context, codes []string, sink AuditSink) error {
	for _, code := range codes {
		if err := e.pace(ctx); err != nil {
			return err
		}
		if err := e.Delete(ctx, code, ""); err != nil {
			e.recordItem(sink, code, "", StatusError, itemMessage(err))
			e.recoverListing(ctx)
			continue
		}
		e.recordItem(sink, code, "", StatusOK, "")
	}
	return nil
}

// -- Shared sub-steps --

// locate searches the listing for a code and returns its edit URL, or ""
// when the code is not present. The search filter stays applied until the
// operation returns to the listing.
func (e *Engine) locate(ctx context.Context, code string) (string, error) {
	searchURL := e.site.SearchURL(code)
	if err := e.navigate(ctx, searchURL); err != nil {
		return "", err
	}
	html, err := e.page.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot of search results: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse search results: %w", err)
	}
	want := Normalize(code)
	for _, row := range extractListingRows(doc, e.site) {
		if Normalize(row.Code) == want && row.EditURL != "" {
			return row.EditURL, nil
		}
	}
	return "", nil
}

// fillParameters writes the magnitude, unit, caps and description fields.
// Missing optional fields on a console revision are tolerated during create.
func (e *Engine) fillParameters(ctx context.Context, amount float64, unit DiscountUnit, orderLimit, ticketLimit int, description string, optionalTolerated bool) error {
	amountStr := strconv.FormatFloat(amount, 'f', -1, 64)
	if _, err := e.res.Fill(ctx, amountStr, amountFieldStrategies...); err != nil {
		return err
	}
	if unit != "" {
		if err := e.ensureUnit(ctx, unit); err != nil {
			if !optionalTolerated {
				return err
			}
			e.log.Debug("Unit control not settable on this form.", zap.Error(err))
		}
	}
	if err := e.fillLimits(ctx, orderLimit, ticketLimit); err != nil {
		if !optionalTolerated {
			return err
		}
	}
	if description != "" {
		if _, err := e.res.Fill(ctx, description, descriptionStrategies...); err != nil {
			if !optionalTolerated {
				return err
			}
			e.log.Debug("Description field not present on this form.")
		}
	}
	return nil
}

func (e *Engine) fillLimits(ctx context.Context, orderLimit, ticketLimit int) error {
	if orderLimit > 0 {
		if _, err := e.res.Fill(ctx, strconv.Itoa(orderLimit), orderLimitStrategies...); err != nil {
			return err
		}
	}
	if ticketLimit > 0 {
		if _, err := e.res.Fill(ctx, strconv.Itoa(ticketLimit), ticketLimitStrategies...); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) navigate(ctx context.Context, url string) error {
	if err := e.page.Navigate(ctx, url); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	return nil
}

// waitForListing polls the location until it matches the listing pattern
// (and not the edit pattern) or the wait elapses.
func (e *Engine) waitForListing(ctx context.Context, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for {
		loc, err := e.page.Location(ctx)
		if err == nil && IsListingURL(loc) && !IsEditURL(loc) {
			return true
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			return false
		}
		if err := e.page.Settle(ctx, 250*time.Millisecond); err != nil {
			return false
		}
	}
}

// returnToListing points the page handle back at the unfiltered listing,
// the stable precondition every operation hands to the next.
func (e *Engine) returnToListing(ctx context.Context) error {
	return e.navigate(ctx, e.site.ListingURL())
}

// recoverListing is returnToListing for the failure path: best effort, the
// next item re-navigates anyway.
func (e *Engine) recoverListing(ctx context.Context) {
	if err := e.returnToListing(ctx); err != nil {
		e.log.Warn("Could not return to listing after failed item.", zap.Error(err))
	}
}

func (e *Engine) pace(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.limiter.Wait(ctx)
}

func (e *Engine) recordItem(sink AuditSink, oldCode, newCode, status, message string) {
	if sink == nil {
		return
	}
	if err := sink.Record(oldCode, newCode, status, message); err != nil {
		e.log.Error("Failed to append audit row.", zap.Error(err),
			zap.String("old", oldCode), zap.String("new", newCode))
	}
}

func itemMessage(err error) string {
	return classify(err) + ": " + err.Error()
}
