package models

import "time"

// ProblemView is a problem with its effective status for one mentee
type ProblemView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Difficulty  Difficulty `json:"difficulty"`
	URL         string     `json:"url,omitempty"`
	Status      ItemStatus `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ResourceView is a resource with its effective status for one mentee
type ResourceView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	Required    bool       `json:"required"`
	Important   bool       `json:"important"`
	Status      ItemStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TopicReport is the derived view of a topic
type TopicReport struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Difficulty         Difficulty     `json:"difficulty"`
	Percent            int            `json:"percent"`
	Status             RoadmapStatus  `json:"status"`
	Engaged            bool           `json:"engaged"`
	CompletedProblems  int            `json:"completed_problems"`
	TotalProblems      int            `json:"total_problems"`
	CompletedResources int            `json:"completed_resources"`
	TotalResources     int            `json:"total_resources"`
	RequiredRemaining  int            `json:"required_resources_remaining"`
	Problems           []ProblemView  `json:"problems"`
	Resources          []ResourceView `json:"resources"`
}

// PhaseReport is the derived view of a phase
type PhaseReport struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Percent         int           `json:"percent"`
	Status          RoadmapStatus `json:"status"`
	Current         bool          `json:"current"`
	CompletedTopics int           `json:"completed_topics"`
	Topics          []TopicReport `json:"topics"`
}

// RoadmapReport is the full derived view of a template for one mentee.
// MenteeID is empty when no overlay exists.
type RoadmapReport struct {
	TemplateID      string        `json:"template_id"`
	Title           string        `json:"title"`
	MenteeID        string        `json:"mentee_id,omitempty"`
	Version         int64         `json:"version"`
	OverallPercent  int           `json:"overall_percent"`
	CompletedPhases int           `json:"completed_phases"`
	CurrentPhaseID  string        `json:"current_phase_id,omitempty"`
	Phases          []PhaseReport `json:"phases"`
}

// MenteeSummary is one row of a mentor's overview of a template
type MenteeSummary struct {
	MenteeID        string    `json:"mentee_id"`
	OverallPercent  int       `json:"overall_percent"`
	CompletedPhases int       `json:"completed_phases"`
	TotalPhases     int       `json:"total_phases"`
	CurrentPhaseID  string    `json:"current_phase_id,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
