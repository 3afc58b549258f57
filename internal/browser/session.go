// internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/config"
	"github.com/eventops/fienta-codectl/internal/fienta"
)

// Session is one browser tab: the single mutable page handle every
// operation borrows. It implements fienta.Page.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	logger *zap.Logger

	// seed holds the snapshot the session was warmed with, if any, so
	// origin storage can be restored after the first navigation.
	seed *AuthSnapshot

	closeOnce sync.Once
}

var _ fienta.Page = (*Session)(nil)

func newSession(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, logger *zap.Logger) *Session {
	sessionID := uuid.New().String()
	return &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger.With(zap.String("session_id", sessionID)),
	}
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string {
	return s.id
}

// Close releases the tab. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session.")
		s.cancel()
	})
}

// Navigate loads the URL, waits for the document body, and settles for the
// configured post-load period.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))

	navTimeout := s.cfg.Network.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	err := s.runActions(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("navigation timed out after %s: %w", navTimeout, err)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}

	return s.Settle(ctx, s.cfg.Network.PostLoadWait)
}

// Location returns the current URL of the tab.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.runActions(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return loc, nil
}

// HTML returns a snapshot of the current document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.runActions(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to snapshot document: %w", err)
	}
	return html, nil
}

// Click clicks the first element matching the CSS selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.logger.Debug("Clicking.", zap.String("selector", selector))

	clickCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := s.runActions(clickCtx,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click failed for selector %q: %w", selector, err)
	}
	return nil
}

// Fill replaces the value of a text field as select-all, delete, then type.
// A plain overwrite would leave trailing characters behind whenever the new
// value is shorter than the old one.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	s.logger.Debug("Filling field.", zap.String("selector", selector), zap.Int("value_length", len(value)))

	fillCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	selectAll := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); if (el && el.select) el.select(); })()`,
		selector)

	err := s.runActions(fillCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.Evaluate(selectAll, nil),
		chromedp.SendKeys(selector, kb.Delete, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill failed for selector %q: %w", selector, err)
	}
	return nil
}

// WaitVisible blocks until the selector is present and visible, or the wait
// elapses.
func (s *Session) WaitVisible(ctx context.Context, selector string, wait time.Duration) error {
	if wait <= 0 {
		wait = 2 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := s.runActions(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("selector %q not visible within %s: %w", selector, wait, err)
	}
	return nil
}

// Settle pauses for a fixed post-action delay.
func (s *Session) Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// runActions executes chromedp actions, respecting both the session
// lifetime and the incoming request context.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// combineContext creates a context canceled when either input is canceled.
// The returned context carries the chromedp target of parentCtx.
func combineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
