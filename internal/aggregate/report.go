package aggregate

import (
	"fmt"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// Summarize builds the full derived view of tmpl for the mentee owning p.
// p may be nil. The template is only read.
func Summarize(tmpl *models.RoadmapTemplate, p *models.MenteeRoadmapProgress) (*models.RoadmapReport, error) {
	if p != nil && p.TemplateID != tmpl.ID {
		return nil, fmt.Errorf("%w: progress %s overlays template %q, not %q",
			models.ErrUnknownReference, p.ID, p.TemplateID, tmpl.ID)
	}

	report := &models.RoadmapReport{
		TemplateID: tmpl.ID,
		Title:      tmpl.Title,
		Phases:     make([]models.PhaseReport, 0, len(tmpl.Phases)),
	}
	if p != nil {
		report.MenteeID = p.MenteeID
		report.Version = p.Version
		report.CurrentPhaseID = p.CurrentPhaseID
	}

	for i := range tmpl.Phases {
		phase := &tmpl.Phases[i]

		pr, err := summarizePhase(phase, p)
		if err != nil {
			return nil, err
		}
		pr.Current = phase.ID == report.CurrentPhaseID
		if pr.Status == models.StatusCompleted {
			report.CompletedPhases++
		}
		report.Phases = append(report.Phases, pr)
	}

	overall, err := OverallTemplateProgress(tmpl, p)
	if err != nil {
		return nil, err
	}
	report.OverallPercent = overall

	return report, nil
}

func summarizePhase(phase *models.Phase, p *models.MenteeRoadmapProgress) (models.PhaseReport, error) {
	percent, err := PhaseProgressPercent(phase, p)
	if err != nil {
		return models.PhaseReport{}, err
	}

	pr := models.PhaseReport{
		ID:      phase.ID,
		Title:   phase.Title,
		Percent: percent,
		Status:  DeriveStatus(percent, phaseEngaged(phase, p)),
		Topics:  make([]models.TopicReport, 0, len(phase.Topics)),
	}

	for i := range phase.Topics {
		tr := summarizeTopic(&phase.Topics[i], p)
		if tr.Status == models.StatusCompleted {
			pr.CompletedTopics++
		}
		pr.Topics = append(pr.Topics, tr)
	}
	return pr, nil
}

func summarizeTopic(topic *models.Topic, p *models.MenteeRoadmapProgress) models.TopicReport {
	tp := p.Topic(topic.ID)

	tr := models.TopicReport{
		ID:             topic.ID,
		Title:          topic.Title,
		Difficulty:     topic.Difficulty,
		Percent:        TopicProgressPercent(topic, p),
		Status:         TopicStatus(topic, p),
		Engaged:        Engaged(topic, p),
		TotalProblems:  len(topic.Problems),
		TotalResources: len(topic.Resources),
		Problems:       make([]models.ProblemView, 0, len(topic.Problems)),
		Resources:      make([]models.ResourceView, 0, len(topic.Resources)),
	}

	for _, pr := range topic.Problems {
		view := models.ProblemView{
			ID:         pr.ID,
			Title:      pr.Title,
			Difficulty: pr.Difficulty,
			URL:        pr.URL,
			Status:     ProblemStatus(&pr, tp),
		}
		if pp := tp.Problem(pr.ID); pp != nil {
			view.StartedAt = pp.StartedAt
			view.CompletedAt = pp.CompletedAt
			if pp.Status == models.ItemCompleted {
				tr.CompletedProblems++
			}
		}
		tr.Problems = append(tr.Problems, view)
	}

	for _, rs := range topic.Resources {
		view := models.ResourceView{
			ID:        rs.ID,
			Title:     rs.Title,
			URL:       rs.URL,
			Required:  rs.Required,
			Important: rs.Important,
			Status:    models.ItemNotStarted,
		}
		if rp := tp.Resource(rs.ID); rp != nil {
			view.Status = rp.Status
			view.CompletedAt = rp.CompletedAt
		}
		if view.Status == models.ItemCompleted {
			tr.CompletedResources++
		} else if rs.Required {
			tr.RequiredRemaining++
		}
		tr.Resources = append(tr.Resources, view)
	}

	return tr
}

// ProblemStatus returns the status to display for a problem: the overlay entry
// when there is one, otherwise the template default.
func ProblemStatus(pr *models.Problem, tp *models.TopicProgress) models.ItemStatus {
	if pp := tp.Problem(pr.ID); pp != nil {
		return pp.Status
	}
	if pr.DefaultStatus == "" {
		return models.ItemNotStarted
	}
	return pr.DefaultStatus
}
