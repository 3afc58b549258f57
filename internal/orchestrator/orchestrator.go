// Package orchestrator assembles a run: browser lifecycle, authentication,
// the mutation/scan collaborators and the audit log, torn down in reverse
// order no matter how the job ends. Commands describe what to do as a Job;
// everything else lives here.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventops/fienta-codectl/internal/audit"
	"github.com/eventops/fienta-codectl/internal/browser"
	"github.com/eventops/fienta-codectl/internal/config"
	"github.com/eventops/fienta-codectl/internal/fienta"
	"github.com/eventops/fienta-codectl/internal/observability"
)

// Env is everything a job can touch during a run.
type Env struct {
	RunID   string
	Site    fienta.Site
	Session *browser.Session
	Engine  *fienta.Engine
	Scanner *fienta.Scanner
	Scraper *fienta.DetailScraper
	Audit   *audit.Writer
	Logger  *zap.Logger
}

// Job is one unit of work executed against an authenticated session.
type Job func(ctx context.Context, env *Env) error

// Result reports where the run's artifacts ended up.
type Result struct {
	RunID     string
	AuditPath string
}

// Run stands up a browser session, authenticates it, executes the job and
// tears everything down. The audit path in the result is valid even when
// the job returns an error, so callers can point operators at the partial
// log.
func Run(ctx context.Context, cfg *config.Config, job Job) (*Result, error) {
	runID := uuid.New().String()[:8]
	logger := observability.GetLogger().With(zap.String("run_id", runID))
	result := &Result{RunID: runID}

	if err := cfg.Validate(); err != nil {
		return result, err
	}
	site := fienta.NewSite(cfg.Fienta.BaseURL, cfg.Fienta.EventID)

	sink, err := audit.NewWriter(cfg.Audit.Dir, runID)
	if err != nil {
		return result, fmt.Errorf("open audit log: %w", err)
	}
	defer sink.Close()
	result.AuditPath = sink.Path()
	logger.Info("Audit log opened.", zap.String("path", sink.Path()))

	manager := browser.NewManager(ctx, cfg, logger)
	defer manager.Shutdown()

	session, err := manager.NewSession(ctx)
	if err != nil {
		return result, fmt.Errorf("start browser session: %w", err)
	}
	defer session.Close()

	auth := browser.NewAuthenticator(session, cfg, logger)
	if err := auth.Ensure(ctx, site.ListingURL()); err != nil {
		return result, fmt.Errorf("authenticate: %w", err)
	}

	env := &Env{
		RunID:   runID,
		Site:    site,
		Session: session,
		Audit:   sink,
		Logger:  logger,
		Engine: fienta.NewEngine(session, site, logger, fienta.EngineOptions{
			ResolveWait:  cfg.Network.ResolveWait,
			VerifyWait:   cfg.Network.VerifyWait,
			Settle:       cfg.Network.SettleDelay,
			ItemInterval: cfg.Network.ItemInterval,
		}),
		Scanner: fienta.NewScanner(session, site, logger),
		Scraper: fienta.NewDetailScraper(session, site, logger),
	}

	if err := job(ctx, env); err != nil {
		return result, err
	}
	return result, nil
}
