package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// Loader loads roadmap templates and serves read-only lookups over them.
// Returned templates are shared between callers and must not be modified.
type Loader struct {
	mu        sync.RWMutex
	templates map[string]*models.RoadmapTemplate
	validator *Validator
}

// NewLoader creates a new template loader
func NewLoader() *Loader {
	return &Loader{
		templates: make(map[string]*models.RoadmapTemplate),
		validator: NewValidator(),
	}
}

// LoadFromDir loads all roadmaps from a directory: single-file roadmaps
// (*.yaml, *.yml, also one level down) and split roadmaps (a directory with
// roadmap.yaml and a phases/ subdirectory).
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading roadmaps from directory", "dir", dir)

	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to stat templates dir: %w", err)
	}

	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)

		subMatches, err := filepath.Glob(filepath.Join(dir, "*", pattern))
		if err != nil {
			continue
		}
		files = append(files, subMatches...)
	}

	loaded := 0
	for _, file := range files {
		// Split roadmap headers are handled by loadSplitFromDir
		if isHeaderFile(file) {
			continue
		}

		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load roadmap", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("roadmaps loaded (flat)", "count", loaded, "total_files", len(files))

	if err := l.loadSplitFromDir(dir); err != nil {
		slog.Warn("failed to load split roadmaps", "error", err)
	}

	return nil
}

// LoadFromFile loads a single roadmap from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	return l.LoadFromBytes(data)
}

// LoadFromBytes parses, validates and registers a single roadmap
func (l *Loader) LoadFromBytes(data []byte) error {
	tmpl, err := l.Parse(data)
	if err != nil {
		return err
	}

	l.Add(tmpl)
	slog.Info("roadmap loaded", "id", tmpl.ID, "phases", len(tmpl.Phases), "topics", tmpl.TopicCount())
	return nil
}

// Parse decodes and validates a single-file roadmap without registering it
func (l *Loader) Parse(data []byte) (*models.RoadmapTemplate, error) {
	var rf roadmapFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	tmpl := rf.toModel()
	if err := l.validator.Validate(tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Validate checks a roadmap against the authoring rules
func (l *Loader) Validate(tmpl *models.RoadmapTemplate) error {
	return l.validator.Validate(tmpl)
}

// Add registers a template as-is, replacing any template with the same ID.
// No validation is applied.
func (l *Loader) Add(tmpl *models.RoadmapTemplate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[tmpl.ID] = tmpl
}

// Remove removes a template by ID
func (l *Loader) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.templates, id)
}

// List returns all loaded templates ordered by ID
func (l *Loader) List() []*models.RoadmapTemplate {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*models.RoadmapTemplate, 0, len(l.templates))
	for _, tmpl := range l.templates {
		result = append(result, tmpl)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// --- Lookups ---

// Get returns the template with the exact ID
func (l *Loader) Get(id string) (*models.RoadmapTemplate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tmpl, ok := l.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: template %q", models.ErrNotFound, id)
	}
	return tmpl, nil
}

// FindPhase returns a phase of a template
func (l *Loader) FindPhase(templateID, phaseID string) (*models.Phase, error) {
	tmpl, err := l.Get(templateID)
	if err != nil {
		return nil, err
	}

	phase := tmpl.Phase(phaseID)
	if phase == nil {
		return nil, fmt.Errorf("%w: phase %q in template %q", models.ErrNotFound, phaseID, templateID)
	}
	return phase, nil
}

// FindTopic returns a topic of a template, searching all phases
func (l *Loader) FindTopic(templateID, topicID string) (*models.Topic, error) {
	tmpl, err := l.Get(templateID)
	if err != nil {
		return nil, err
	}

	topic := tmpl.Topic(topicID)
	if topic == nil {
		return nil, fmt.Errorf("%w: topic %q in template %q", models.ErrNotFound, topicID, templateID)
	}
	return topic, nil
}

// FindProblem returns a problem of a topic
func (l *Loader) FindProblem(templateID, topicID, problemID string) (*models.Problem, error) {
	topic, err := l.FindTopic(templateID, topicID)
	if err != nil {
		return nil, err
	}

	problem := topic.Problem(problemID)
	if problem == nil {
		return nil, fmt.Errorf("%w: problem %q in topic %q", models.ErrNotFound, problemID, topicID)
	}
	return problem, nil
}

// FindResource returns a resource of a topic
func (l *Loader) FindResource(templateID, topicID, resourceID string) (*models.Resource, error) {
	topic, err := l.FindTopic(templateID, topicID)
	if err != nil {
		return nil, err
	}

	resource := topic.Resource(resourceID)
	if resource == nil {
		return nil, fmt.Errorf("%w: resource %q in topic %q", models.ErrNotFound, resourceID, topicID)
	}
	return resource, nil
}

// --- Split roadmap loading ---

// loadSplitFromDir scans for directories holding roadmap.yaml and assembles
// each into one template
func (l *Loader) loadSplitFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		roadmapDir := filepath.Join(dir, entry.Name())
		header := filepath.Join(roadmapDir, headerFileName)

		if _, err := os.Stat(header); os.IsNotExist(err) {
			continue // not a split roadmap
		}

		tmpl, err := l.loadSplit(entry.Name(), roadmapDir)
		if err != nil {
			slog.Warn("failed to load split roadmap", "dir", entry.Name(), "error", err)
			continue
		}

		l.Add(tmpl)
		slog.Info("split roadmap loaded", "id", tmpl.ID, "phases", len(tmpl.Phases), "topics", tmpl.TopicCount())
	}

	return nil
}

// loadSplit reads a roadmap header and its phase files
func (l *Loader) loadSplit(dirName, dir string) (*models.RoadmapTemplate, error) {
	data, err := os.ReadFile(filepath.Join(dir, headerFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", headerFileName, err)
	}

	var rf roadmapFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", headerFileName, err)
	}
	if rf.ID == "" {
		rf.ID = dirName
	}

	phases, err := loadPhases(filepath.Join(dir, "phases"))
	if err != nil {
		return nil, err
	}
	rf.Phases = append(rf.Phases, phases...)

	tmpl := rf.toModel()
	if err := l.validator.Validate(tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// loadPhases loads phase files in file name order
func loadPhases(dir string) ([]phaseFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read phases dir: %w", err)
	}

	var phases []phaseFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read phase file %s: %w", entry.Name(), err)
		}

		var pf phaseFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("failed to parse phase file %s: %w", entry.Name(), err)
		}

		// Use id from YAML, fall back to filename without extension
		if pf.ID == "" {
			pf.ID = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}
		phases = append(phases, pf)
	}

	return phases, nil
}

func isHeaderFile(path string) bool {
	return filepath.Base(path) == headerFileName
}
