package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// ErrVersionConflict is returned by Save when a newer overlay is already stored
var ErrVersionConflict = errors.New("progress version conflict")

// Repository defines the interface for overlay persistence.
// Overlays are keyed by (mentee, template).
type Repository interface {
	Get(ctx context.Context, menteeID, templateID string) (*models.MenteeRoadmapProgress, error)
	Save(ctx context.Context, p *models.MenteeRoadmapProgress) error
	ListByTemplate(ctx context.Context, templateID string) ([]*models.MenteeRoadmapProgress, error)
	ListByMentee(ctx context.Context, menteeID string) ([]*models.MenteeRoadmapProgress, error)
}

type repoKey struct {
	menteeID   string
	templateID string
}

// MemoryRepository keeps overlays in memory. Values are copied on the way in
// and on the way out, so callers never share state with the store.
type MemoryRepository struct {
	mu       sync.RWMutex
	overlays map[repoKey]*models.MenteeRoadmapProgress
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		overlays: make(map[repoKey]*models.MenteeRoadmapProgress),
	}
}

// Get retrieves the overlay of a mentee for a template
func (r *MemoryRepository) Get(ctx context.Context, menteeID, templateID string) (*models.MenteeRoadmapProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.overlays[repoKey{menteeID: menteeID, templateID: templateID}]
	if !ok {
		return nil, fmt.Errorf("%w: progress of mentee %q on template %q", models.ErrNotFound, menteeID, templateID)
	}
	return p.Clone(), nil
}

// Save stores p, replacing the previous overlay of the same mentee and
// template. An overlay whose version is not newer than the stored one is
// rejected with ErrVersionConflict.
func (r *MemoryRepository) Save(ctx context.Context, p *models.MenteeRoadmapProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p == nil {
		return errors.New("progress is nil")
	}

	key := repoKey{menteeID: p.MenteeID, templateID: p.TemplateID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.overlays[key]; ok && cur.Version >= p.Version {
		return fmt.Errorf("%w: stored version %d, got %d", ErrVersionConflict, cur.Version, p.Version)
	}
	r.overlays[key] = p.Clone()
	return nil
}

// ListByTemplate returns every overlay on a template ordered by mentee ID
func (r *MemoryRepository) ListByTemplate(ctx context.Context, templateID string) ([]*models.MenteeRoadmapProgress, error) {
	result, err := r.list(ctx, func(k repoKey) bool { return k.templateID == templateID })
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MenteeID < result[j].MenteeID })
	return result, nil
}

// ListByMentee returns every overlay of a mentee ordered by template ID
func (r *MemoryRepository) ListByMentee(ctx context.Context, menteeID string) ([]*models.MenteeRoadmapProgress, error) {
	result, err := r.list(ctx, func(k repoKey) bool { return k.menteeID == menteeID })
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TemplateID < result[j].TemplateID })
	return result, nil
}

func (r *MemoryRepository) list(ctx context.Context, match func(repoKey) bool) ([]*models.MenteeRoadmapProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.MenteeRoadmapProgress, 0)
	for k, p := range r.overlays {
		if match(k) {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}
