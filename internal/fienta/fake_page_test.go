// internal/fienta/fake_page_test.go
package fienta

// Tests live inside the package to reach the unexported extraction helpers
// and strategy lists.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakePage implements Page against an in-memory map of URL -> HTML. Hooks
// let a test mutate the fake's state when the engine clicks or navigates,
// which is how form submissions and redirects are simulated.
type fakePage struct {
	mu       sync.Mutex
	location string
	pages    map[string]string
	visible  map[string]bool

	navigations []string
	clicks      []string
	fills       map[string]string

	onClick    func(p *fakePage, selector string)
	navFailURL string
}

func newFakePage() *fakePage {
	return &fakePage{
		pages:   make(map[string]string),
		visible: make(map[string]bool),
		fills:   make(map[string]string),
	}
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigations = append(p.navigations, url)
	if p.navFailURL != "" && url == p.navFailURL {
		return errors.New("net::ERR_CONNECTION_RESET")
	}
	p.location = url
	return nil
}

func (p *fakePage) Location(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.location, nil
}

func (p *fakePage) HTML(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	html, ok := p.pages[p.location]
	if !ok {
		return "<html><body></body></html>", nil
	}
	return html, nil
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.mu.Lock()
	hook := p.onClick
	p.clicks = append(p.clicks, selector)
	p.mu.Unlock()
	if hook != nil {
		hook(p, selector)
	}
	return nil
}

func (p *fakePage) Fill(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fills[selector] = value
	return nil
}

func (p *fakePage) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.visible[selector] {
		return nil
	}
	return fmt.Errorf("selector %q never became visible", selector)
}

func (p *fakePage) Settle(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (p *fakePage) setLocation(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.location = url
}

// fakeSink collects audit rows in memory.
type fakeSink struct {
	mu   sync.Mutex
	rows [][4]string
}

func (s *fakeSink) Record(oldCode, newCode, status, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, [4]string{oldCode, newCode, status, message})
	return nil
}
