// Package progress records a mentee's work on a roadmap as an overlay on top
// of the shared template.
//
// Overlay values are replaced on write. Every mutation returns a new
// *models.MenteeRoadmapProgress and leaves its argument untouched.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/roadmap-engine/internal/aggregate"
	"github.com/terra-clan/roadmap-engine/internal/models"
)

// TemplateFinder resolves template references. *templates.Loader implements it.
type TemplateFinder interface {
	Get(id string) (*models.RoadmapTemplate, error)
	FindPhase(templateID, phaseID string) (*models.Phase, error)
	FindTopic(templateID, topicID string) (*models.Topic, error)
	FindProblem(templateID, topicID, problemID string) (*models.Problem, error)
	FindResource(templateID, topicID, resourceID string) (*models.Resource, error)
}

// Overlay applies status transitions to mentee progress
type Overlay struct {
	finder TemplateFinder
	now    func() time.Time
}

// Option configures an Overlay
type Option func(*Overlay)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(o *Overlay) {
		o.now = now
	}
}

// NewOverlay creates a new Overlay resolving references through finder
func NewOverlay(finder TemplateFinder, opts ...Option) *Overlay {
	o := &Overlay{
		finder: finder,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New creates an empty overlay for a mentee. The cursor starts at the first
// phase of the template.
func (o *Overlay) New(menteeID, templateID string) (*models.MenteeRoadmapProgress, error) {
	if menteeID == "" {
		return nil, errors.New("mentee id is required")
	}

	tmpl, err := o.finder.Get(templateID)
	if err != nil {
		return nil, err
	}

	now := o.now().UTC()
	p := &models.MenteeRoadmapProgress{
		ID:         uuid.New().String(),
		MenteeID:   menteeID,
		TemplateID: tmpl.ID,
		Topics:     make(map[string]*models.TopicProgress),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if len(tmpl.Phases) > 0 {
		p.CurrentPhaseID = tmpl.Phases[0].ID
	}
	return p, nil
}

// RecordProblemStatus sets the status of one problem.
//
// StartedAt is set the first time the problem enters in_progress and
// CompletedAt the first time it enters completed. Neither is ever cleared, so
// a regression from completed keeps the first completion time. Recording
// the status the problem already has returns p unchanged.
func (o *Overlay) RecordProblemStatus(p *models.MenteeRoadmapProgress, topicID, problemID string, status models.ItemStatus) (*models.MenteeRoadmapProgress, error) {
	topic, err := o.resolve(p, topicID, status)
	if err != nil {
		return nil, err
	}
	if _, err := o.finder.FindProblem(p.TemplateID, topicID, problemID); err != nil {
		return nil, unknownReference(err)
	}

	if pp := p.Topic(topicID).Problem(problemID); pp != nil && pp.Status == status {
		return p, nil
	}

	now := o.now().UTC()
	out := p.Clone()
	tp := topicRecord(out, topicID, now)

	pp := tp.Problems[problemID]
	if pp == nil {
		pp = &models.ProblemProgress{}
		tp.Problems[problemID] = pp
	}
	pp.Status = status
	switch status {
	case models.ItemInProgress:
		if pp.StartedAt == nil {
			pp.StartedAt = stamp(now)
		}
	case models.ItemCompleted:
		if pp.CompletedAt == nil {
			pp.CompletedAt = stamp(now)
		}
	}

	commit(out, topic, tp, now)
	return out, nil
}

// RecordResourceStatus sets the status of one resource. Only CompletedAt is
// tracked, with the same append-only rule as problems. Resources never change
// the topic percent.
func (o *Overlay) RecordResourceStatus(p *models.MenteeRoadmapProgress, topicID, resourceID string, status models.ItemStatus) (*models.MenteeRoadmapProgress, error) {
	topic, err := o.resolve(p, topicID, status)
	if err != nil {
		return nil, err
	}
	if _, err := o.finder.FindResource(p.TemplateID, topicID, resourceID); err != nil {
		return nil, unknownReference(err)
	}

	if rp := p.Topic(topicID).Resource(resourceID); rp != nil && rp.Status == status {
		return p, nil
	}

	now := o.now().UTC()
	out := p.Clone()
	tp := topicRecord(out, topicID, now)

	rp := tp.Resources[resourceID]
	if rp == nil {
		rp = &models.ResourceProgress{}
		tp.Resources[resourceID] = rp
	}
	rp.Status = status
	if status == models.ItemCompleted && rp.CompletedAt == nil {
		rp.CompletedAt = stamp(now)
	}

	commit(out, topic, tp, now)
	return out, nil
}

// SetCurrentPhase moves the mentee's cursor. The cursor is informational and
// does not restrict which phases can be worked on.
func (o *Overlay) SetCurrentPhase(p *models.MenteeRoadmapProgress, phaseID string) (*models.MenteeRoadmapProgress, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: progress is nil", models.ErrNotFound)
	}
	if _, err := o.finder.Get(p.TemplateID); err != nil {
		return nil, err
	}
	if _, err := o.finder.FindPhase(p.TemplateID, phaseID); err != nil {
		return nil, unknownReference(err)
	}

	if p.CurrentPhaseID == phaseID {
		return p, nil
	}

	out := p.Clone()
	out.CurrentPhaseID = phaseID
	out.Version++
	out.UpdatedAt = o.now().UTC()
	return out, nil
}

// Check verifies that an overlay obtained from outside (an import or a
// durable store) fits its template: every topic, problem and resource key
// must exist and every item status must be a known value. The cursor, when
// set, must name a phase of the template.
func (o *Overlay) Check(p *models.MenteeRoadmapProgress) error {
	if p == nil {
		return fmt.Errorf("%w: progress is nil", models.ErrNotFound)
	}
	if _, err := o.finder.Get(p.TemplateID); err != nil {
		return err
	}

	if p.CurrentPhaseID != "" {
		if _, err := o.finder.FindPhase(p.TemplateID, p.CurrentPhaseID); err != nil {
			return unknownReference(err)
		}
	}

	for topicID, tp := range p.Topics {
		if _, err := o.finder.FindTopic(p.TemplateID, topicID); err != nil {
			return unknownReference(err)
		}
		if tp == nil {
			continue
		}
		for problemID, pp := range tp.Problems {
			if _, err := o.finder.FindProblem(p.TemplateID, topicID, problemID); err != nil {
				return unknownReference(err)
			}
			if pp != nil && !pp.Status.Valid() {
				return fmt.Errorf("%w: %q for problem %q in topic %q", models.ErrInvalidStatus, pp.Status, problemID, topicID)
			}
		}
		for resourceID, rp := range tp.Resources {
			if _, err := o.finder.FindResource(p.TemplateID, topicID, resourceID); err != nil {
				return unknownReference(err)
			}
			if rp != nil && !rp.Status.Valid() {
				return fmt.Errorf("%w: %q for resource %q in topic %q", models.ErrInvalidStatus, rp.Status, resourceID, topicID)
			}
		}
	}
	return nil
}

// resolve checks the arguments shared by the record operations and returns the
// template topic
func (o *Overlay) resolve(p *models.MenteeRoadmapProgress, topicID string, status models.ItemStatus) (*models.Topic, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: progress is nil", models.ErrNotFound)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	if _, err := o.finder.Get(p.TemplateID); err != nil {
		return nil, err
	}

	topic, err := o.finder.FindTopic(p.TemplateID, topicID)
	if err != nil {
		return nil, unknownReference(err)
	}
	return topic, nil
}

// topicRecord returns the topic record of out, creating it on first engagement
func topicRecord(out *models.MenteeRoadmapProgress, topicID string, now time.Time) *models.TopicProgress {
	tp := out.Topics[topicID]
	if tp == nil {
		tp = &models.TopicProgress{
			Status:    models.StatusAvailable,
			StartedAt: stamp(now),
			Problems:  make(map[string]*models.ProblemProgress),
			Resources: make(map[string]*models.ResourceProgress),
		}
		out.Topics[topicID] = tp
	}
	return tp
}

// commit refreshes the cached topic status and bumps the overlay version
func commit(out *models.MenteeRoadmapProgress, topic *models.Topic, tp *models.TopicProgress, now time.Time) {
	tp.Status = aggregate.TopicStatus(topic, out)
	if tp.Status == models.StatusCompleted && tp.CompletedAt == nil {
		tp.CompletedAt = stamp(now)
	}

	out.Version++
	out.UpdatedAt = now
}

// unknownReference reports a missing template element as a dangling reference
func unknownReference(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s", models.ErrUnknownReference, err.Error())
	}
	return err
}

func stamp(t time.Time) *time.Time {
	return &t
}
