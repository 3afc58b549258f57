// internal/fienta/resolver.go
package fienta

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Strategy is one candidate way of locating a conceptual UI element.
type Strategy struct {
	Name     string
	Selector string
}

// Resolver returns the first candidate strategy whose element is present and
// visible within a short bounded wait. The console offers no contract
// guarantees, so every element the engine touches is located through an
// ordered fallback list; DOM drift in a secondary attribute then only
// invalidates one strategy instead of the whole engine.
type Resolver struct {
	page Page
	wait time.Duration
	log  *zap.Logger
}

// NewResolver creates a resolver with the given per-candidate wait.
func NewResolver(page Page, wait time.Duration, log *zap.Logger) *Resolver {
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &Resolver{page: page, wait: wait, log: log}
}

// Resolve tries each candidate in order and returns the first that is
// visible. When all candidates fail it returns ErrElementNotFound.
func (r *Resolver) Resolve(ctx context.Context, candidates ...Strategy) (Strategy, error) {
	for _, c := range candidates {
		if err := r.page.WaitVisible(ctx, c.Selector, r.wait); err != nil {
			if ctx.Err() != nil {
				return Strategy{}, ctx.Err()
			}
			r.log.Debug("Strategy did not resolve.",
				zap.String("strategy", c.Name),
				zap.String("selector", c.Selector))
			continue
		}
		return c, nil
	}
	return Strategy{}, fmt.Errorf("no candidate of %d resolved: %w", len(candidates), ErrElementNotFound)
}

// Click resolves the element and clicks it.
func (r *Resolver) Click(ctx context.Context, candidates ...Strategy) (Strategy, error) {
	s, err := r.Resolve(ctx, candidates...)
	if err != nil {
		return Strategy{}, err
	}
	if err := r.page.Click(ctx, s.Selector); err != nil {
		return s, fmt.Errorf("click via %s: %w", s.Name, err)
	}
	return s, nil
}

// Fill resolves the element and replaces its value.
func (r *Resolver) Fill(ctx context.Context, value string, candidates ...Strategy) (Strategy, error) {
	s, err := r.Resolve(ctx, candidates...)
	if err != nil {
		return Strategy{}, err
	}
	if err := r.page.Fill(ctx, s.Selector, value); err != nil {
		return s, fmt.Errorf("fill via %s: %w", s.Name, err)
	}
	return s, nil
}
