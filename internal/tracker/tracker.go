// Package tracker ties the template store, the progress overlay and the
// aggregator together. It owns the load-apply-save cycle for mentee progress.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/terra-clan/roadmap-engine/internal/aggregate"
	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/progress"
)

// Tracker records mentee progress and serves derived reports
type Tracker struct {
	mu        sync.Mutex
	templates progress.TemplateFinder
	repo      progress.Repository
	overlay   *progress.Overlay
	cache     *aggregate.Cache
}

// New creates a new Tracker. cache may be nil, in which case every report is
// computed on demand.
func New(finder progress.TemplateFinder, repo progress.Repository, overlay *progress.Overlay, cache *aggregate.Cache) *Tracker {
	return &Tracker{
		templates: finder,
		repo:      repo,
		overlay:   overlay,
		cache:     cache,
	}
}

// Start returns the mentee's overlay for a template, creating and storing an
// empty one on first use
func (t *Tracker) Start(ctx context.Context, menteeID, templateID string) (*models.MenteeRoadmapProgress, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, err := t.repo.Get(ctx, menteeID, templateID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	p, err = t.overlay.New(menteeID, templateID)
	if err != nil {
		return nil, err
	}
	if err := t.repo.Save(ctx, p); err != nil {
		if errors.Is(err, progress.ErrVersionConflict) {
			return t.repo.Get(ctx, menteeID, templateID)
		}
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}

	slog.Info("roadmap started", "mentee", menteeID, "template", templateID, "progress_id", p.ID)
	return p, nil
}

// Import stores an overlay produced elsewhere, e.g. a snapshot file.
// The overlay is checked against its template first.
func (t *Tracker) Import(ctx context.Context, p *models.MenteeRoadmapProgress) error {
	if err := t.overlay.Check(p); err != nil {
		return err
	}
	if p.MenteeID == "" {
		return errors.New("mentee id is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	slog.Info("progress imported", "mentee", p.MenteeID, "template", p.TemplateID, "version", p.Version)
	return nil
}

// Progress returns the stored overlay, or ErrNotFound if the mentee has not
// engaged with the template yet
func (t *Tracker) Progress(ctx context.Context, menteeID, templateID string) (*models.MenteeRoadmapProgress, error) {
	return t.repo.Get(ctx, menteeID, templateID)
}

// MarkProblem records a problem status and returns the refreshed report
func (t *Tracker) MarkProblem(ctx context.Context, menteeID, templateID, topicID, problemID string, status models.ItemStatus) (*models.RoadmapReport, error) {
	report, err := t.mutate(ctx, menteeID, templateID, func(p *models.MenteeRoadmapProgress) (*models.MenteeRoadmapProgress, error) {
		return t.overlay.RecordProblemStatus(p, topicID, problemID, status)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("problem status recorded",
		"mentee", menteeID,
		"template", templateID,
		"topic", topicID,
		"problem", problemID,
		"status", status,
		"version", report.Version,
	)
	return report, nil
}

// MarkResource records a resource status and returns the refreshed report
func (t *Tracker) MarkResource(ctx context.Context, menteeID, templateID, topicID, resourceID string, status models.ItemStatus) (*models.RoadmapReport, error) {
	report, err := t.mutate(ctx, menteeID, templateID, func(p *models.MenteeRoadmapProgress) (*models.MenteeRoadmapProgress, error) {
		return t.overlay.RecordResourceStatus(p, topicID, resourceID, status)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("resource status recorded",
		"mentee", menteeID,
		"template", templateID,
		"topic", topicID,
		"resource", resourceID,
		"status", status,
		"version", report.Version,
	)
	return report, nil
}

// SetCurrentPhase moves the mentee's cursor and returns the refreshed report
func (t *Tracker) SetCurrentPhase(ctx context.Context, menteeID, templateID, phaseID string) (*models.RoadmapReport, error) {
	report, err := t.mutate(ctx, menteeID, templateID, func(p *models.MenteeRoadmapProgress) (*models.MenteeRoadmapProgress, error) {
		return t.overlay.SetCurrentPhase(p, phaseID)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("current phase set", "mentee", menteeID, "template", templateID, "phase", phaseID)
	return report, nil
}

// Report returns the derived view of a template for a mentee. A mentee
// without an overlay gets a valid report with every topic available.
func (t *Tracker) Report(ctx context.Context, menteeID, templateID string) (*models.RoadmapReport, error) {
	tmpl, err := t.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	p, err := t.repo.Get(ctx, menteeID, templateID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to get progress: %w", err)
		}
		p = nil
	}

	report, err := t.report(tmpl, p)
	if err != nil {
		return nil, err
	}
	if p == nil {
		// shared cached value; copy before personalising
		r := *report
		r.MenteeID = menteeID
		report = &r
	}
	return report, nil
}

// Overview lists every mentee working on a template, ordered by mentee ID
func (t *Tracker) Overview(ctx context.Context, templateID string) ([]models.MenteeSummary, error) {
	tmpl, err := t.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	overlays, err := t.repo.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	summaries := make([]models.MenteeSummary, 0, len(overlays))
	for _, p := range overlays {
		report, err := t.report(tmpl, p)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize mentee %s: %w", p.MenteeID, err)
		}
		summaries = append(summaries, models.MenteeSummary{
			MenteeID:        p.MenteeID,
			OverallPercent:  report.OverallPercent,
			CompletedPhases: report.CompletedPhases,
			TotalPhases:     len(tmpl.Phases),
			CurrentPhaseID:  p.CurrentPhaseID,
			UpdatedAt:       p.UpdatedAt,
		})
	}
	return summaries, nil
}

// mutate loads the overlay (creating it lazily), applies op and stores the
// result if op changed anything
func (t *Tracker) mutate(ctx context.Context, menteeID, templateID string, op func(*models.MenteeRoadmapProgress) (*models.MenteeRoadmapProgress, error)) (*models.RoadmapReport, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tmpl, err := t.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	cur, stored, err := t.load(ctx, menteeID, templateID)
	if err != nil {
		return nil, err
	}

	next, err := op(cur)
	if err != nil {
		return nil, err
	}

	if !stored || next.Version != cur.Version {
		if err := t.repo.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save progress: %w", err)
		}
	}

	return t.report(tmpl, next)
}

// load returns the stored overlay, or a fresh unsaved one and stored=false
func (t *Tracker) load(ctx context.Context, menteeID, templateID string) (*models.MenteeRoadmapProgress, bool, error) {
	p, err := t.repo.Get(ctx, menteeID, templateID)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get progress: %w", err)
	}

	p, err = t.overlay.New(menteeID, templateID)
	if err != nil {
		return nil, false, err
	}
	return p, false, nil
}

func (t *Tracker) report(tmpl *models.RoadmapTemplate, p *models.MenteeRoadmapProgress) (*models.RoadmapReport, error) {
	if t.cache != nil {
		return t.cache.Report(tmpl, p)
	}
	return aggregate.Summarize(tmpl, p)
}
