// internal/browser/login.go
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/config"
	"github.com/eventops/fienta-codectl/internal/fienta"
)

// authState tracks progress through the login flow.
type authState int

const (
	authUnknown authState = iota
	authFormDetected
	authLoggedIn
)

const loginPollInterval = 2 * time.Second

// loginFormJS reports whether the page is showing a credential form.
const loginFormJS = `(function() {
	const email = document.querySelector('input[type="email"], input[name="email"]');
	const pass = document.querySelector('input[type="password"]');
	return !!(email && pass);
})()`

// Authenticator drives the console through the login flow, either by
// submitting configured credentials or by waiting for a human to complete
// the form in a headful window.
type Authenticator struct {
	session *Session
	cfg     *config.Config
	logger  *zap.Logger
}

// NewAuthenticator builds an Authenticator bound to one session.
func NewAuthenticator(session *Session, cfg *config.Config, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		session: session,
		cfg:     cfg,
		logger:  logger.Named("auth"),
	}
}

// Ensure navigates to startURL and makes sure the session is authenticated
// before returning. On success the fresh cookie jar is persisted so the next
// run can skip the form entirely.
func (a *Authenticator) Ensure(ctx context.Context, startURL string) error {
	if err := a.session.Navigate(ctx, startURL); err != nil {
		return err
	}

	// Seeded localStorage only takes effect once the tab is on the target
	// origin, so restore it now and load the page again.
	if a.session.seed != nil && len(a.session.seed.Origins) > 0 {
		a.session.applySeedStorage(ctx)
		if err := a.session.Navigate(ctx, startURL); err != nil {
			return err
		}
	}

	state, err := a.detect(ctx)
	if err != nil {
		return err
	}

	if state == authFormDetected {
		a.logger.Info("Login form detected.")
		if a.cfg.Fienta.ManualLogin || a.cfg.Fienta.Email == "" {
			if err := a.waitForManualLogin(ctx); err != nil {
				return err
			}
		} else {
			if err := a.submitCredentials(ctx); err != nil {
				return err
			}
		}
	} else {
		a.logger.Info("Session already authenticated.")
	}

	a.persist(ctx)
	return nil
}

// detect classifies the current page.
func (a *Authenticator) detect(ctx context.Context) (authState, error) {
	var hasForm bool
	if err := a.session.runActions(ctx, chromedp.Evaluate(loginFormJS, &hasForm)); err != nil {
		return authUnknown, fmt.Errorf("inspect page for login form: %w", err)
	}
	if hasForm {
		return authFormDetected, nil
	}
	return authLoggedIn, nil
}

// waitForManualLogin polls until the credential form disappears, bounded by
// the configured timeout. The human completes the form in the live window.
func (a *Authenticator) waitForManualLogin(ctx context.Context) error {
	timeout := a.cfg.Fienta.ManualLoginTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	a.logger.Info("Waiting for manual login.", zap.Duration("timeout", timeout))

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(loginPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		state, err := a.detect(ctx)
		if err != nil {
			a.logger.Debug("Login poll failed, retrying.", zap.Error(err))
		} else if state == authLoggedIn {
			a.logger.Info("Manual login completed.")
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("manual login not completed within %s: %w", timeout, fienta.ErrAuthTimeout)
		}
	}
}

// submitCredentials fills the form from config and submits it. The caller's
// next navigation surfaces any failure; a wrong password shows up as the
// form again on the following page load.
func (a *Authenticator) submitCredentials(ctx context.Context) error {
	a.logger.Info("Submitting configured credentials.")

	if err := a.session.Fill(ctx, `input[type="email"], input[name="email"]`, a.cfg.Fienta.Email); err != nil {
		return fmt.Errorf("fill email field: %w", err)
	}
	if err := a.session.Fill(ctx, `input[type="password"]`, a.cfg.Fienta.Password); err != nil {
		return fmt.Errorf("fill password field: %w", err)
	}
	if err := a.session.Click(ctx, `button[type="submit"], input[type="submit"]`); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}

	a.session.Settle(ctx, a.cfg.Network.PostLoadWait)
	return nil
}

// persist captures the live session state to disk. Failures are logged and
// tolerated; a stale state file only costs the next run a login.
func (a *Authenticator) persist(ctx context.Context) {
	snap, err := a.session.captureSnapshot(ctx)
	if err != nil {
		a.logger.Warn("Could not capture session state.", zap.Error(err))
		return
	}
	if err := SaveSnapshot(a.cfg.Fienta.AuthStatePath, snap); err != nil {
		a.logger.Warn("Could not persist session state.", zap.Error(err))
		return
	}
	a.logger.Debug("Session state persisted.", zap.String("path", a.cfg.Fienta.AuthStatePath))
}
