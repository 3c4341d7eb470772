package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

func sampleTemplate() *models.RoadmapTemplate {
	arrays := topicWith("arrays", 2)
	arrays.Problems[1].DefaultStatus = models.ItemInProgress
	arrays.Resources = []models.Resource{
		{ID: "arrays-notes", Title: "Notes", Required: true},
		{ID: "arrays-video", Title: "Video", Important: true},
	}

	return &models.RoadmapTemplate{
		ID:    "dsa",
		Title: "DSA",
		Phases: []models.Phase{
			{ID: "basics", Title: "Basics", Topics: []models.Topic{arrays, topicWith("strings", 1)}},
			{ID: "graphs", Title: "Graphs", Topics: []models.Topic{topicWith("bfs", 2)}},
		},
	}
}

func TestSummarize_NoOverlay(t *testing.T) {
	tmpl := sampleTemplate()

	report, err := Summarize(tmpl, nil)
	require.NoError(t, err)

	assert.Equal(t, "dsa", report.TemplateID)
	assert.Empty(t, report.MenteeID)
	assert.Equal(t, 0, report.OverallPercent)
	require.Len(t, report.Phases, 2)

	basics := report.Phases[0]
	assert.Equal(t, 10, basics.Percent)
	assert.Equal(t, models.StatusAvailable, basics.Status)
	assert.False(t, basics.Current)

	arrays := basics.Topics[0]
	assert.False(t, arrays.Engaged)
	assert.Equal(t, models.StatusAvailable, arrays.Status)
	assert.Equal(t, models.ItemNotStarted, arrays.Problems[0].Status)
	assert.Equal(t, models.ItemInProgress, arrays.Problems[1].Status, "template default shown without overlay")
	assert.Equal(t, 1, arrays.RequiredRemaining)
}

func TestSummarize_WithOverlay(t *testing.T) {
	tmpl := sampleTemplate()
	completedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	p := newProgress("dsa")
	p.CurrentPhaseID = "basics"
	p.Version = 4
	engage(p, tmpl.Phases[0].Topics[0], 2)
	engage(p, tmpl.Phases[0].Topics[1], 1)
	p.Topics["arrays"].Problems["arrays-p1"].CompletedAt = &completedAt
	p.Topics["arrays"].Resources["arrays-notes"] = &models.ResourceProgress{
		Status:      models.ItemCompleted,
		CompletedAt: &completedAt,
	}

	report, err := Summarize(tmpl, p)
	require.NoError(t, err)

	assert.Equal(t, "mentee-1", report.MenteeID)
	assert.EqualValues(t, 4, report.Version)
	assert.Equal(t, 1, report.CompletedPhases)
	assert.Equal(t, 50, report.OverallPercent)

	basics := report.Phases[0]
	assert.True(t, basics.Current)
	assert.Equal(t, 100, basics.Percent)
	assert.Equal(t, models.StatusCompleted, basics.Status)
	assert.Equal(t, 2, basics.CompletedTopics)

	arrays := basics.Topics[0]
	assert.Equal(t, 2, arrays.CompletedProblems)
	assert.Equal(t, 1, arrays.CompletedResources)
	assert.Equal(t, 0, arrays.RequiredRemaining)
	assert.Equal(t, &completedAt, arrays.Problems[0].CompletedAt)
	assert.Equal(t, models.ItemCompleted, arrays.Problems[1].Status, "overlay wins over template default")

	graphs := report.Phases[1]
	assert.Equal(t, models.StatusAvailable, graphs.Status)
	assert.Equal(t, 10, graphs.Percent)
}

func TestSummarize_RejectsForeignOverlay(t *testing.T) {
	_, err := Summarize(sampleTemplate(), newProgress("other"))
	require.ErrorIs(t, err, models.ErrUnknownReference)
}

func TestSummarize_DoesNotModifyInputs(t *testing.T) {
	tmpl := sampleTemplate()
	before := sampleTemplate()

	p := engage(newProgress("dsa"), tmpl.Phases[0].Topics[0], 1)
	snapshot := p.Clone()

	_, err := Summarize(tmpl, p)
	require.NoError(t, err)

	assert.Equal(t, before, tmpl)
	assert.Equal(t, snapshot, p)
}

func TestCache_Report(t *testing.T) {
	tmpl := sampleTemplate()
	cache := NewCache()

	p := engage(newProgress("dsa"), tmpl.Phases[0].Topics[0], 1)
	p.Version = 1

	first, err := cache.Report(tmpl, p)
	require.NoError(t, err)
	second, err := cache.Report(tmpl, p)
	require.NoError(t, err)
	assert.Same(t, first, second)

	next := engage(p.Clone(), tmpl.Phases[0].Topics[0], 2)
	next.Version = 2

	third, err := cache.Report(tmpl, next)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 100, third.Phases[0].Topics[0].Percent)
	assert.Equal(t, 1, cache.Len(), "older versions are replaced")

	_, err = cache.Report(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestCache_ReplacedTemplate(t *testing.T) {
	tmpl := sampleTemplate()
	cache := NewCache()

	p := engage(newProgress("dsa"), tmpl.Phases[0].Topics[0], 1)
	p.Version = 1

	first, err := cache.Report(tmpl, p)
	require.NoError(t, err)
	require.Equal(t, "Topic arrays", first.Phases[0].Topics[0].Title)

	// same ID and overlay version, new template value
	replaced := sampleTemplate()
	replaced.Phases[0].Topics[0].Title = "Arrays and Hashing"

	second, err := cache.Report(replaced, p)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "Arrays and Hashing", second.Phases[0].Topics[0].Title)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_DoesNotStoreErrors(t *testing.T) {
	cache := NewCache()

	_, err := cache.Report(&models.RoadmapTemplate{ID: "broken"}, nil)
	require.ErrorIs(t, err, models.ErrInvalidTemplate)
	assert.Zero(t, cache.Len())
}
