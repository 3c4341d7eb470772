package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

func overlayFor(menteeID, templateID string, version int64) *models.MenteeRoadmapProgress {
	return &models.MenteeRoadmapProgress{
		ID:         menteeID + "/" + templateID,
		MenteeID:   menteeID,
		TemplateID: templateID,
		Topics:     make(map[string]*models.TopicProgress),
		Version:    version,
	}
}

func TestMemoryRepository_GetSave(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Get(ctx, "mentee-1", "dsa")
	assert.ErrorIs(t, err, models.ErrNotFound)

	p := overlayFor("mentee-1", "dsa", 0)
	require.NoError(t, repo.Save(ctx, p))

	got, err := repo.Get(ctx, "mentee-1", "dsa")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// stored values are copies
	got.Topics["arrays"] = &models.TopicProgress{Status: models.StatusCompleted}
	p.Topics["bfs"] = &models.TopicProgress{Status: models.StatusCompleted}
	again, err := repo.Get(ctx, "mentee-1", "dsa")
	require.NoError(t, err)
	assert.Empty(t, again.Topics)
}

func TestMemoryRepository_VersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Save(ctx, overlayFor("mentee-1", "dsa", 0)))
	require.NoError(t, repo.Save(ctx, overlayFor("mentee-1", "dsa", 1)))

	err := repo.Save(ctx, overlayFor("mentee-1", "dsa", 1))
	assert.ErrorIs(t, err, ErrVersionConflict)

	err = repo.Save(ctx, overlayFor("mentee-1", "dsa", 0))
	assert.ErrorIs(t, err, ErrVersionConflict)

	assert.Error(t, repo.Save(ctx, nil))
}

func TestMemoryRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Save(ctx, overlayFor("mentee-b", "dsa", 0)))
	require.NoError(t, repo.Save(ctx, overlayFor("mentee-a", "dsa", 0)))
	require.NoError(t, repo.Save(ctx, overlayFor("mentee-a", "system-design", 0)))

	byTemplate, err := repo.ListByTemplate(ctx, "dsa")
	require.NoError(t, err)
	require.Len(t, byTemplate, 2)
	assert.Equal(t, "mentee-a", byTemplate[0].MenteeID)
	assert.Equal(t, "mentee-b", byTemplate[1].MenteeID)

	byMentee, err := repo.ListByMentee(ctx, "mentee-a")
	require.NoError(t, err)
	require.Len(t, byMentee, 2)
	assert.Equal(t, "dsa", byMentee[0].TemplateID)
	assert.Equal(t, "system-design", byMentee[1].TemplateID)

	none, err := repo.ListByTemplate(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryRepository()
	assert.ErrorIs(t, repo.Save(ctx, overlayFor("mentee-1", "dsa", 0)), context.Canceled)

	_, err := repo.Get(ctx, "mentee-1", "dsa")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.ListByMentee(ctx, "mentee-1")
	assert.ErrorIs(t, err, context.Canceled)
}
