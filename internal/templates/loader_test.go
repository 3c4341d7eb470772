package templates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

func TestLoadFromDir(t *testing.T) {
	// Use the actual templates directory
	templatesDir := filepath.Join("..", "..", "templates")

	// Check it exists
	if _, err := os.Stat(templatesDir); os.IsNotExist(err) {
		t.Skip("templates directory not found, skipping")
	}

	loader := NewLoader()
	if err := loader.LoadFromDir(templatesDir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	list := loader.List()
	if len(list) < 2 {
		t.Errorf("expected at least 2 roadmaps, got %d", len(list))
	}

	// Single-file roadmap
	dsa, err := loader.Get("dsa-foundations")
	if err != nil {
		t.Fatalf("dsa-foundations not found: %v", err)
	}
	if len(dsa.Phases) != 3 {
		t.Errorf("expected 3 phases, got %d", len(dsa.Phases))
	}
	if dsa.Phases[0].Topics[0].ID != "arrays-hashing" {
		t.Errorf("expected first topic 'arrays-hashing', got '%s'", dsa.Phases[0].Topics[0].ID)
	}

	twoSum, err := loader.FindProblem("dsa-foundations", "arrays-hashing", "two-sum")
	if err != nil {
		t.Fatalf("two-sum not found: %v", err)
	}
	if twoSum.Difficulty != models.DifficultyEasy {
		t.Errorf("expected difficulty 'Easy', got '%s'", twoSum.Difficulty)
	}
	if twoSum.DefaultStatus != models.ItemNotStarted {
		t.Errorf("expected default status 'not_started', got '%s'", twoSum.DefaultStatus)
	}

	// Difficulty inherited from the topic
	lca, err := loader.FindProblem("dsa-foundations", "binary-trees", "lca-bst")
	if err != nil {
		t.Fatalf("lca-bst not found: %v", err)
	}
	if lca.Difficulty != models.DifficultyMedium {
		t.Errorf("expected inherited difficulty 'Medium', got '%s'", lca.Difficulty)
	}

	// Split roadmap, phases ordered by file name
	sd, err := loader.Get("system-design")
	if err != nil {
		t.Fatalf("system-design not found: %v", err)
	}
	if sd.Tier != models.TierIntermediate {
		t.Errorf("expected tier 'intermediate', got '%s'", sd.Tier)
	}
	if len(sd.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(sd.Phases))
	}
	if sd.Phases[0].ID != "sd-fundamentals" {
		t.Errorf("expected first phase 'sd-fundamentals', got '%s'", sd.Phases[0].ID)
	}
	if sd.Phases[1].ID != "02-building-blocks" {
		t.Errorf("expected phase id from file name '02-building-blocks', got '%s'", sd.Phases[1].ID)
	}

	// Topic difficulty derived from its hardest problem
	caching, err := loader.FindTopic("system-design", "caching")
	if err != nil {
		t.Fatalf("caching topic not found: %v", err)
	}
	if caching.Difficulty != models.DifficultyHard {
		t.Errorf("expected topic difficulty 'Hard', got '%s'", caching.Difficulty)
	}

	// Log summary
	t.Logf("Roadmaps: %d", len(list))
	for _, r := range list {
		t.Logf("  %s (%s): %d phases, %d topics", r.ID, r.Title, len(r.Phases), r.TopicCount())
	}
}

func TestLoadFromDir_MissingDir(t *testing.T) {
	err := NewLoader().LoadFromDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadFromDir_SkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.yaml"), validRoadmap)
	writeFile(t, filepath.Join(dir, "broken.yaml"), "id: [unterminated")
	writeFile(t, filepath.Join(dir, "empty-phase.yml"), `
id: empty-phase
title: Empty
phases:
  - id: p1
    title: Nothing here
`)

	loader := NewLoader()
	require.NoError(t, loader.LoadFromDir(dir))

	list := loader.List()
	require.Len(t, list, 1)
	assert.Equal(t, "go-basics", list[0].ID)
}

func TestLoadFromBytes_Defaults(t *testing.T) {
	loader := NewLoader()
	require.NoError(t, loader.LoadFromBytes([]byte(validRoadmap)))

	tmpl, err := loader.Get("go-basics")
	require.NoError(t, err)

	assert.Equal(t, models.TierBeginner, tmpl.Tier)

	syntax := tmpl.Phases[0].Topics[0]
	assert.Equal(t, models.DifficultyMedium, syntax.Difficulty, "hardest problem wins")
	assert.Equal(t, models.ItemNotStarted, syntax.Problems[0].DefaultStatus)
	assert.Equal(t, models.ItemCompleted, syntax.Problems[1].DefaultStatus)

	tour := tmpl.Phases[0].Topics[1]
	assert.Equal(t, models.DifficultyEasy, tour.Difficulty, "topic without problems")
	require.Len(t, tour.Resources, 1)
	assert.True(t, tour.Resources[0].Required)
}

func TestLookups(t *testing.T) {
	loader := NewLoader()
	require.NoError(t, loader.LoadFromBytes([]byte(validRoadmap)))

	tests := []struct {
		name   string
		lookup func() error
	}{
		{name: "template", lookup: func() error { _, err := loader.Get("missing"); return err }},
		{name: "phase", lookup: func() error { _, err := loader.FindPhase("go-basics", "missing"); return err }},
		{name: "topic", lookup: func() error { _, err := loader.FindTopic("go-basics", "missing"); return err }},
		{name: "problem", lookup: func() error { _, err := loader.FindProblem("go-basics", "syntax", "missing"); return err }},
		{name: "problem in missing topic", lookup: func() error { _, err := loader.FindProblem("go-basics", "missing", "hello"); return err }},
		{name: "resource", lookup: func() error { _, err := loader.FindResource("go-basics", "tour", "missing"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lookup()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrNotFound), "got %v", err)
		})
	}

	problem, err := loader.FindProblem("go-basics", "syntax", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", problem.Title)

	resource, err := loader.FindResource("go-basics", "tour", "go-tour")
	require.NoError(t, err)
	assert.Equal(t, "https://go.dev/tour/", resource.URL)

	phase, err := loader.FindPhase("go-basics", "start")
	require.NoError(t, err)
	assert.Len(t, phase.Topics, 2)
}

func TestAddRemove(t *testing.T) {
	loader := NewLoader()

	// Add skips validation so structurally broken templates can still be registered
	loader.Add(&models.RoadmapTemplate{ID: "b"})
	loader.Add(&models.RoadmapTemplate{ID: "a"})

	list := loader.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	loader.Remove("a")
	_, err := loader.Get("a")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

const validRoadmap = `
id: go-basics
title: Go Basics
phases:
  - id: start
    title: Getting started
    topics:
      - id: syntax
        title: Syntax
        problems:
          - id: hello
            title: Hello, world
            difficulty: Easy
          - id: fizzbuzz
            title: FizzBuzz
            difficulty: MEDIUM
            status: completed
      - id: tour
        title: Tour
        resources:
          - id: go-tour
            title: A Tour of Go
            url: https://go.dev/tour/
            required: true
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
