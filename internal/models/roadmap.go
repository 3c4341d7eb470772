package models

// Difficulty is the difficulty of a problem or topic
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Rank orders difficulties from easiest (1) to hardest (3); unknown values rank 0
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

// Tier is the overall difficulty tier of a roadmap
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
)

// Problem is a single practice unit within a topic
type Problem struct {
	ID         string     `json:"id" yaml:"id" validate:"required,ident"`
	Title      string     `json:"title" yaml:"title" validate:"required"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	URL        string     `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`

	// DefaultStatus is what gets displayed before a mentee has touched the problem.
	// Overlay data always wins over it.
	DefaultStatus ItemStatus `json:"default_status" yaml:"default_status" validate:"omitempty,oneof=not_started in_progress completed"`
}

// Resource is a study material reference. Important is a display hint only.
type Resource struct {
	ID        string `json:"id" yaml:"id" validate:"required,ident"`
	Title     string `json:"title" yaml:"title" validate:"required"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,url"`
	Required  bool   `json:"required" yaml:"required"`
	Important bool   `json:"important" yaml:"important"`
}

// Topic is the unit of learning focus. Problem order is significant.
type Topic struct {
	ID          string     `json:"id" yaml:"id" validate:"required,ident"`
	Title       string     `json:"title" yaml:"title" validate:"required"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Problems    []Problem  `json:"problems" yaml:"problems" validate:"unique=ID,dive"`
	Resources   []Resource `json:"resources" yaml:"resources" validate:"unique=ID,dive"`
}

// Problem returns the problem with the given ID or nil
func (t *Topic) Problem(id string) *Problem {
	for i := range t.Problems {
		if t.Problems[i].ID == id {
			return &t.Problems[i]
		}
	}
	return nil
}

// Resource returns the resource with the given ID or nil
func (t *Topic) Resource(id string) *Resource {
	for i := range t.Resources {
		if t.Resources[i].ID == id {
			return &t.Resources[i]
		}
	}
	return nil
}

// Phase groups topics into one stage of a learning path
type Phase struct {
	ID          string  `json:"id" yaml:"id" validate:"required,ident"`
	Title       string  `json:"title" yaml:"title" validate:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Topics      []Topic `json:"topics" yaml:"topics" validate:"min=1,unique=ID,dive"`
}

// Topic returns the topic with the given ID or nil
func (p *Phase) Topic(id string) *Topic {
	for i := range p.Topics {
		if p.Topics[i].ID == id {
			return &p.Topics[i]
		}
	}
	return nil
}

// RoadmapTemplate is the shared, read-only definition of a learning path.
// It never carries mentee-specific state; see MenteeRoadmapProgress for that.
type RoadmapTemplate struct {
	ID          string  `json:"id" yaml:"id" validate:"required,ident"`
	Title       string  `json:"title" yaml:"title" validate:"required"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Tier        Tier    `json:"tier" yaml:"tier" validate:"required,oneof=beginner intermediate advanced"`
	Phases      []Phase `json:"phases" yaml:"phases" validate:"min=1,unique=ID,dive"`
}

// Phase returns the phase with the given ID or nil
func (r *RoadmapTemplate) Phase(id string) *Phase {
	for i := range r.Phases {
		if r.Phases[i].ID == id {
			return &r.Phases[i]
		}
	}
	return nil
}

// Topic returns the topic with the given ID from any phase, or nil
func (r *RoadmapTemplate) Topic(id string) *Topic {
	for i := range r.Phases {
		if t := r.Phases[i].Topic(id); t != nil {
			return t
		}
	}
	return nil
}

// TopicCount returns the number of topics across all phases
func (r *RoadmapTemplate) TopicCount() int {
	n := 0
	for _, ph := range r.Phases {
		n += len(ph.Topics)
	}
	return n
}
