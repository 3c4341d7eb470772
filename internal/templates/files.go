package templates

import (
	"strings"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// headerFileName marks a directory as a split roadmap
const headerFileName = "roadmap.yaml"

// --- YAML file structs ---

// roadmapFile represents a single-file roadmap or the header of a split one
type roadmapFile struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Tier        string      `yaml:"tier"`
	Phases      []phaseFile `yaml:"phases"`
}

// phaseFile represents a phase, inline or as its own file under phases/
type phaseFile struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Topics      []topicFile `yaml:"topics"`
}

type topicFile struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Difficulty  string         `yaml:"difficulty"`
	Problems    []problemFile  `yaml:"problems"`
	Resources   []resourceFile `yaml:"resources"`
}

type problemFile struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	Difficulty string `yaml:"difficulty"`
	URL        string `yaml:"url"`
	Status     string `yaml:"status"`
}

type resourceFile struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	Required  bool   `yaml:"required"`
	Important bool   `yaml:"important"`
}

// toModel converts the file representation and applies defaults:
// tier falls back to beginner, a problem without difficulty inherits the
// topic's, a topic without difficulty takes its hardest problem's, and
// problem statuses default to not_started.
func (rf roadmapFile) toModel() *models.RoadmapTemplate {
	tmpl := &models.RoadmapTemplate{
		ID:          strings.TrimSpace(rf.ID),
		Title:       rf.Title,
		Description: rf.Description,
		Tier:        models.Tier(strings.ToLower(strings.TrimSpace(rf.Tier))),
		Phases:      make([]models.Phase, 0, len(rf.Phases)),
	}
	if tmpl.Tier == "" {
		tmpl.Tier = models.TierBeginner
	}

	for _, pf := range rf.Phases {
		phase := models.Phase{
			ID:          strings.TrimSpace(pf.ID),
			Title:       pf.Title,
			Description: pf.Description,
			Topics:      make([]models.Topic, 0, len(pf.Topics)),
		}
		for _, tf := range pf.Topics {
			phase.Topics = append(phase.Topics, tf.toModel())
		}
		tmpl.Phases = append(tmpl.Phases, phase)
	}

	return tmpl
}

func (tf topicFile) toModel() models.Topic {
	topic := models.Topic{
		ID:          strings.TrimSpace(tf.ID),
		Title:       tf.Title,
		Description: tf.Description,
		Difficulty:  parseDifficulty(tf.Difficulty),
		Problems:    make([]models.Problem, 0, len(tf.Problems)),
		Resources:   make([]models.Resource, 0, len(tf.Resources)),
	}

	hardest := models.Difficulty("")
	for _, pf := range tf.Problems {
		problem := models.Problem{
			ID:            strings.TrimSpace(pf.ID),
			Title:         pf.Title,
			Difficulty:    parseDifficulty(pf.Difficulty),
			URL:           strings.TrimSpace(pf.URL),
			DefaultStatus: models.ItemStatus(strings.ToLower(strings.TrimSpace(pf.Status))),
		}
		if problem.Difficulty == "" {
			problem.Difficulty = topic.Difficulty
		}
		if problem.DefaultStatus == "" {
			problem.DefaultStatus = models.ItemNotStarted
		}
		if problem.Difficulty.Rank() > hardest.Rank() {
			hardest = problem.Difficulty
		}
		topic.Problems = append(topic.Problems, problem)
	}

	if topic.Difficulty == "" {
		topic.Difficulty = hardest
	}
	if topic.Difficulty == "" {
		topic.Difficulty = models.DifficultyEasy
	}
	for i := range topic.Problems {
		if topic.Problems[i].Difficulty == "" {
			topic.Problems[i].Difficulty = topic.Difficulty
		}
	}

	for _, rf := range tf.Resources {
		topic.Resources = append(topic.Resources, models.Resource{
			ID:        strings.TrimSpace(rf.ID),
			Title:     rf.Title,
			URL:       strings.TrimSpace(rf.URL),
			Required:  rf.Required,
			Important: rf.Important,
		})
	}

	return topic
}

// parseDifficulty accepts any casing ("easy", "EASY", "Easy").
// Unknown values are kept verbatim so validation can report them.
func parseDifficulty(s string) models.Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "easy":
		return models.DifficultyEasy
	case "medium":
		return models.DifficultyMedium
	case "hard":
		return models.DifficultyHard
	}
	return models.Difficulty(s)
}
