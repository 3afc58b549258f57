// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/config"
)

// Manager owns the Chrome process allocator. Sessions (tabs) are created
// from it; Shutdown releases the browser unconditionally.
type Manager struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         *config.Config
	logger      *zap.Logger
}

// NewManager prepares a Chrome exec allocator. The browser process itself
// starts lazily with the first session.
func NewManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Manager {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Browser.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.Browser.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.Browser.UserAgent))
	}
	for _, arg := range cfg.Browser.Args {
		name, value, _ := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if value == "" {
			opts = append(opts, chromedp.Flag(name, true))
		} else {
			opts = append(opts, chromedp.Flag(name, value))
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	return &Manager{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		cfg:         cfg,
		logger:      logger.Named("browser_manager"),
	}
}

// NewSession opens a tab, connects CDP, and seeds it from the persisted
// AuthSnapshot when one exists.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	tabCtx, tabCancel := chromedp.NewContext(m.allocCtx)

	// Ensure the target is created and CDP is connected.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	s := newSession(tabCtx, tabCancel, m.cfg, m.logger)

	snap, err := LoadSnapshot(m.cfg.Fienta.AuthStatePath)
	if err != nil {
		s.logger.Warn("Could not read persisted auth state; starting cold.", zap.Error(err))
	}
	if snap != nil {
		if err := s.applySnapshot(ctx, snap); err != nil {
			s.logger.Warn("Could not apply persisted auth state.", zap.Error(err))
		} else {
			s.logger.Info("Seeded session from persisted auth state.",
				zap.Int("cookies", len(snap.Cookies)))
		}
	}

	m.logger.Info("New session created.", zap.String("session_id", s.ID()))
	return s, nil
}

// Shutdown releases the browser process. It must run even when prior steps
// failed.
func (m *Manager) Shutdown() {
	m.logger.Debug("Shutting down browser manager.")
	m.allocCancel()
}
