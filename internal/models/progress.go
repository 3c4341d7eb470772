package models

import "time"

// ItemStatus is the completion state of a problem or resource
type ItemStatus string

const (
	ItemNotStarted ItemStatus = "not_started"
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
)

// Valid reports whether s is one of the known item statuses
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemNotStarted, ItemInProgress, ItemCompleted:
		return true
	}
	return false
}

// RoadmapStatus is the derived state of a topic or phase. There is no locked
// state: every phase and topic is reachable.
type RoadmapStatus string

const (
	StatusAvailable  RoadmapStatus = "available"
	StatusInProgress RoadmapStatus = "in_progress"
	StatusCompleted  RoadmapStatus = "completed"
)

// ProblemProgress tracks one mentee's work on a problem
type ProblemProgress struct {
	Status      ItemStatus `json:"status" yaml:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// ResourceProgress tracks one mentee's work on a resource
type ResourceProgress struct {
	Status      ItemStatus `json:"status" yaml:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// TopicProgress is the overlay record for a single topic.
// Status is a cached derivation refreshed on every mutation; readers that need
// the live value go through the aggregate package.
type TopicProgress struct {
	Status      RoadmapStatus                `json:"status" yaml:"status"`
	StartedAt   *time.Time                   `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *time.Time                   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Problems    map[string]*ProblemProgress  `json:"problems" yaml:"problems"`
	Resources   map[string]*ResourceProgress `json:"resources" yaml:"resources"`
}

// Problem returns the overlay entry for a problem or nil
func (tp *TopicProgress) Problem(id string) *ProblemProgress {
	if tp == nil {
		return nil
	}
	return tp.Problems[id]
}

// Resource returns the overlay entry for a resource or nil
func (tp *TopicProgress) Resource(id string) *ResourceProgress {
	if tp == nil {
		return nil
	}
	return tp.Resources[id]
}

// Clone returns a deep copy of the topic record
func (tp *TopicProgress) Clone() *TopicProgress {
	if tp == nil {
		return nil
	}
	out := &TopicProgress{
		Status:      tp.Status,
		StartedAt:   cloneTime(tp.StartedAt),
		CompletedAt: cloneTime(tp.CompletedAt),
		Problems:    make(map[string]*ProblemProgress, len(tp.Problems)),
		Resources:   make(map[string]*ResourceProgress, len(tp.Resources)),
	}
	for id, pp := range tp.Problems {
		if pp == nil {
			continue
		}
		out.Problems[id] = &ProblemProgress{
			Status:      pp.Status,
			StartedAt:   cloneTime(pp.StartedAt),
			CompletedAt: cloneTime(pp.CompletedAt),
		}
	}
	for id, rp := range tp.Resources {
		if rp == nil {
			continue
		}
		out.Resources[id] = &ResourceProgress{
			Status:      rp.Status,
			CompletedAt: cloneTime(rp.CompletedAt),
		}
	}
	return out
}

// MenteeRoadmapProgress is the per-mentee overlay on top of a RoadmapTemplate.
// Values are replaced on write: mutation helpers always return a new value and
// leave the receiver untouched, so snapshots can be shared between readers.
type MenteeRoadmapProgress struct {
	ID         string `json:"id" yaml:"id"`
	MenteeID   string `json:"mentee_id" yaml:"mentee_id"`
	TemplateID string `json:"template_id" yaml:"template_id"`

	// CurrentPhaseID is a cursor only; every phase stays reachable
	CurrentPhaseID string `json:"current_phase_id,omitempty" yaml:"current_phase_id,omitempty"`

	Topics map[string]*TopicProgress `json:"topics" yaml:"topics"`

	// Version increases by one on every effective mutation
	Version   int64     `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Topic returns the overlay record for a topic, or nil when the mentee has not
// engaged with it. Safe to call on a nil receiver.
func (p *MenteeRoadmapProgress) Topic(id string) *TopicProgress {
	if p == nil {
		return nil
	}
	return p.Topics[id]
}

// Clone returns a deep copy of the overlay
func (p *MenteeRoadmapProgress) Clone() *MenteeRoadmapProgress {
	if p == nil {
		return nil
	}
	out := *p
	out.Topics = make(map[string]*TopicProgress, len(p.Topics))
	for id, tp := range p.Topics {
		if tp == nil {
			continue
		}
		out.Topics[id] = tp.Clone()
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
