// Package aggregate derives percent-complete and status for topics, phases and
// whole roadmaps from a template and an optional mentee overlay.
//
// Every function here is pure: nothing is cached at package level and neither
// the template nor the overlay is modified. A nil overlay is the normal state
// for a mentee who has not started yet.
package aggregate

import (
	"fmt"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// AvailablePercent is shown for a topic with problems that the mentee has not
// engaged with. It signals "reachable", not work done, and never turns into
// in_progress on its own (see DeriveStatus).
const AvailablePercent = 10

// TopicProgressPercent returns 0..100 for a topic.
//
// A topic without problems is always 100. Without an overlay record for the
// topic the result is AvailablePercent. Otherwise it is the share of the
// topic's problems whose overlay status is exactly completed; resources never
// count.
func TopicProgressPercent(topic *models.Topic, p *models.MenteeRoadmapProgress) int {
	total := len(topic.Problems)
	if total == 0 {
		return 100
	}

	tp := p.Topic(topic.ID)
	if tp == nil {
		return AvailablePercent
	}

	return roundPercent(completedProblems(topic, tp), total)
}

// TopicStatus derives a topic's status from its percent and overlay presence
func TopicStatus(topic *models.Topic, p *models.MenteeRoadmapProgress) models.RoadmapStatus {
	return DeriveStatus(TopicProgressPercent(topic, p), Engaged(topic, p))
}

// Engaged reports whether the mentee has engaged with a topic, i.e. the
// overlay holds a record for it. A topic without problems and resources can
// never get a record, so it counts as engaged as soon as the mentee has an
// overlay at all.
func Engaged(topic *models.Topic, p *models.MenteeRoadmapProgress) bool {
	if p.Topic(topic.ID) != nil {
		return true
	}
	return p != nil && len(topic.Problems) == 0 && len(topic.Resources) == 0
}

// DeriveStatus maps a percent to a status. Without an overlay the result is
// always available, whatever the percent says.
func DeriveStatus(percent int, hasOverlay bool) models.RoadmapStatus {
	switch {
	case !hasOverlay:
		return models.StatusAvailable
	case percent >= 100:
		return models.StatusCompleted
	case percent > 0:
		return models.StatusInProgress
	default:
		return models.StatusAvailable
	}
}

// PhaseProgressPercent is the mean of the topic percents of the phase,
// rounded half up. A phase without topics is an authoring error.
func PhaseProgressPercent(phase *models.Phase, p *models.MenteeRoadmapProgress) (int, error) {
	n := len(phase.Topics)
	if n == 0 {
		return 0, fmt.Errorf("%w: phase %q has no topics", models.ErrInvalidTemplate, phase.ID)
	}

	sum := 0
	for i := range phase.Topics {
		sum += TopicProgressPercent(&phase.Topics[i], p)
	}
	return (2*sum + n) / (2 * n), nil
}

// PhaseStatus applies DeriveStatus to PhaseProgressPercent. The phase counts
// as engaged once any of its topics is Engaged.
func PhaseStatus(phase *models.Phase, p *models.MenteeRoadmapProgress) (models.RoadmapStatus, error) {
	percent, err := PhaseProgressPercent(phase, p)
	if err != nil {
		return "", err
	}
	return DeriveStatus(percent, phaseEngaged(phase, p)), nil
}

// OverallTemplateProgress is the share of phases whose status is completed.
// It counts finished phases rather than averaging phase percents, so a phase
// at 99% adds nothing.
func OverallTemplateProgress(tmpl *models.RoadmapTemplate, p *models.MenteeRoadmapProgress) (int, error) {
	completed, err := CompletedPhases(tmpl, p)
	if err != nil {
		return 0, err
	}
	return roundPercent(completed, len(tmpl.Phases)), nil
}

// CompletedPhases counts the phases of tmpl whose status is completed
func CompletedPhases(tmpl *models.RoadmapTemplate, p *models.MenteeRoadmapProgress) (int, error) {
	if len(tmpl.Phases) == 0 {
		return 0, fmt.Errorf("%w: template %q has no phases", models.ErrInvalidTemplate, tmpl.ID)
	}

	completed := 0
	for i := range tmpl.Phases {
		status, err := PhaseStatus(&tmpl.Phases[i], p)
		if err != nil {
			return 0, err
		}
		if status == models.StatusCompleted {
			completed++
		}
	}
	return completed, nil
}

// completedProblems counts template problems whose overlay entry is completed.
// Overlay keys that are not in the template are ignored.
func completedProblems(topic *models.Topic, tp *models.TopicProgress) int {
	n := 0
	for _, pr := range topic.Problems {
		if pp := tp.Problem(pr.ID); pp != nil && pp.Status == models.ItemCompleted {
			n++
		}
	}
	return n
}

func phaseEngaged(phase *models.Phase, p *models.MenteeRoadmapProgress) bool {
	for i := range phase.Topics {
		if Engaged(&phase.Topics[i], p) {
			return true
		}
	}
	return false
}

// roundPercent returns round(100*num/den) with halves rounded up
func roundPercent(num, den int) int {
	return (200*num + den) / (2 * den)
}
